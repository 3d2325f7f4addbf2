package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielroh/hackmate/internal/services"
	"github.com/danielroh/hackmate/pkg/response"
)

// TeamHandler exposes team membership operations.
type TeamHandler struct {
	teams *services.TeamService
}

func NewTeamHandler(teams *services.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

type updateTeamRequest struct {
	Name              *string `json:"name" validate:"omitempty,min=3,max=128"`
	Description       *string `json:"description" validate:"omitempty,max=2048"`
	ProjectName       *string `json:"project_name" validate:"omitempty,max=128"`
	LookingForMembers *bool   `json:"looking_for_members"`
}

type redeemInviteLinkRequest struct {
	HackathonID string `json:"hackathon_id" validate:"required"`
}

type inviteMemberRequest struct {
	HackathonID string `json:"hackathon_id" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
}

type addExternalMemberRequest struct {
	HackathonID string `json:"hackathon_id" validate:"required"`
	Name        string `json:"name" validate:"required,min=1,max=128"`
}

type removeMemberRequest struct {
	HackathonID string `json:"hackathon_id" validate:"required"`
}

// GET /api/teams/:id
func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.teams.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, team)
}

// PATCH /api/teams/:id
func (h *TeamHandler) Update(c *gin.Context) {
	var req updateTeamRequest
	if !bindAndValidate(c, &req) {
		return
	}

	team, err := h.teams.Update(requestContext(c), currentUserID(c), c.Param("id"), services.UpdateTeamInput{
		Name:              req.Name,
		Description:       req.Description,
		ProjectName:       req.ProjectName,
		LookingForMembers: req.LookingForMembers,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, team)
}

// DELETE /api/teams/:id
func (h *TeamHandler) Delete(c *gin.Context) {
	if err := h.teams.Delete(requestContext(c), currentUserID(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/teams/:id/join
func (h *TeamHandler) Join(c *gin.Context) {
	result, err := h.teams.Join(requestContext(c), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// POST /api/teams/:id/join-link
func (h *TeamHandler) GenerateInviteLink(c *gin.Context) {
	link, err := h.teams.GenerateInviteLink(requestContext(c), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"invite_link": link})
}

// POST /api/teams/:id/join-link/redeem
func (h *TeamHandler) RedeemInviteLink(c *gin.Context) {
	var req redeemInviteLinkRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.teams.JoinViaInviteLink(requestContext(c), currentUserID(c), c.Param("id"), req.HackathonID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// POST /api/teams/:id/invitations
func (h *TeamHandler) InviteMember(c *gin.Context) {
	var req inviteMemberRequest
	if !bindAndValidate(c, &req) {
		return
	}

	invitation, err := h.teams.InviteMember(requestContext(c), currentUserID(c), c.Param("id"), req.HackathonID, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, invitation)
}

// POST /api/teams/:id/external-members
func (h *TeamHandler) AddExternalMember(c *gin.Context) {
	var req addExternalMemberRequest
	if !bindAndValidate(c, &req) {
		return
	}

	member, err := h.teams.AddExternalMember(requestContext(c), currentUserID(c), c.Param("id"), req.HackathonID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, member)
}

// DELETE /api/teams/:id/members/:userID
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	hackathonID := c.Query("hackathon_id")
	if hackathonID == "" {
		var req removeMemberRequest
		if !bindAndValidate(c, &req) {
			return
		}
		hackathonID = req.HackathonID
	}

	err := h.teams.RemoveMember(requestContext(c), currentUserID(c), c.Param("id"), c.Param("userID"), hackathonID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}
