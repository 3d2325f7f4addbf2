package api

import (
	"github.com/gin-gonic/gin"

	"github.com/danielroh/hackmate/internal/handlers"
)

func registerHackathonRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, svcs Services) {
	hackathonHandler := handlers.NewHackathonHandler(svcs.Hackathons, svcs.Teams)

	hackathons := r.Group("/api/hackathons")
	hackathons.Use(requireAuth)
	{
		hackathons.POST("", hackathonHandler.Create)
		hackathons.GET("", hackathonHandler.List)
		hackathons.GET("/:id", hackathonHandler.Get)
		hackathons.PATCH("/:id/settings", hackathonHandler.UpdateSettings)
		hackathons.POST("/:id/teams", hackathonHandler.CreateTeam)
		hackathons.POST("/:id/teams/for-user", hackathonHandler.CreateTeamForUser)
		hackathons.GET("/:id/teams", hackathonHandler.ListTeams)
	}
}
