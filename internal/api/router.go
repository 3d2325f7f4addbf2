package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/danielroh/hackmate/internal/auth"
	"github.com/danielroh/hackmate/internal/middleware"
	"github.com/danielroh/hackmate/internal/services"
)

// Services bundles the service layer the router exposes over HTTP.
type Services struct {
	Users      *services.UserService
	Hackathons *services.HackathonService
	Teams      *services.TeamService
	Requests   *services.JoinRequestService
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, tokens *iauth.TokenService, svcs Services) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service must be provided")
	}
	if svcs.Users == nil || svcs.Hackathons == nil || svcs.Teams == nil || svcs.Requests == nil {
		return nil, fmt.Errorf("all services must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	registerHealthRoutes(r, db)

	requireAuth := middleware.Auth(tokens)

	registerAuthRoutes(r, requireAuth, svcs, tokens)
	registerHackathonRoutes(r, requireAuth, svcs)
	registerTeamRoutes(r, requireAuth, svcs)

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
