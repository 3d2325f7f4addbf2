package api

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/danielroh/hackmate/internal/auth"
	"github.com/danielroh/hackmate/internal/handlers"
)

func registerAuthRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, svcs Services, tokens *iauth.TokenService) {
	authHandler := handlers.NewAuthHandler(svcs.Users, tokens)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Authenticated auth routes
	r.GET("/api/auth/me", requireAuth, authHandler.Me)
}
