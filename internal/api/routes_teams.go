package api

import (
	"github.com/gin-gonic/gin"

	"github.com/danielroh/hackmate/internal/handlers"
)

func registerTeamRoutes(r *gin.Engine, requireAuth gin.HandlerFunc, svcs Services) {
	teamHandler := handlers.NewTeamHandler(svcs.Teams)
	joinRequestHandler := handlers.NewJoinRequestHandler(svcs.Requests)

	teams := r.Group("/api/teams")
	teams.Use(requireAuth)
	{
		teams.GET("/:id", teamHandler.Get)
		teams.PATCH("/:id", teamHandler.Update)
		teams.DELETE("/:id", teamHandler.Delete)
		teams.POST("/:id/join", teamHandler.Join)
		teams.POST("/:id/join-link", teamHandler.GenerateInviteLink)
		teams.POST("/:id/join-link/redeem", teamHandler.RedeemInviteLink)
		teams.POST("/:id/invitations", teamHandler.InviteMember)
		teams.POST("/:id/external-members", teamHandler.AddExternalMember)
		teams.DELETE("/:id/members/:userID", teamHandler.RemoveMember)
		teams.POST("/:id/join-requests", joinRequestHandler.Create)
		teams.GET("/:id/join-requests", joinRequestHandler.ListForTeam)
	}

	r.POST("/api/join-requests/:id/handle", requireAuth, joinRequestHandler.Handle)
}
