package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/danielroh/hackmate/internal/services"
	"github.com/danielroh/hackmate/pkg/response"
)

// HackathonHandler exposes hackathon configuration and team rosters.
type HackathonHandler struct {
	hackathons *services.HackathonService
	teams      *services.TeamService
}

func NewHackathonHandler(hackathons *services.HackathonService, teams *services.TeamService) *HackathonHandler {
	return &HackathonHandler{hackathons: hackathons, teams: teams}
}

type createHackathonRequest struct {
	Name        string         `json:"name" validate:"required,min=3,max=128"`
	Slug        string         `json:"slug" validate:"max=128"`
	Description string         `json:"description" validate:"max=2048"`
	MinTeamSize int            `json:"min_team_size" validate:"required,min=1"`
	MaxTeamSize int            `json:"max_team_size" validate:"required,min=1"`
	MaxTeams    *int           `json:"max_teams"`
	Settings    datatypes.JSON `json:"settings"`
}

type updateHackathonRequest struct {
	Name               *string        `json:"name"`
	Description        *string        `json:"description"`
	RegistrationStatus *string        `json:"registration_status" validate:"omitempty,oneof=open closed"`
	MinTeamSize        *int           `json:"min_team_size"`
	MaxTeamSize        *int           `json:"max_team_size"`
	MaxTeams           *int           `json:"max_teams"`
	ClearMaxTeams      bool           `json:"clear_max_teams"`
	Settings           datatypes.JSON `json:"settings"`
}

type createTeamRequest struct {
	Name              string `json:"name" validate:"required,min=3,max=128"`
	Description       string `json:"description" validate:"max=2048"`
	LookingForMembers bool   `json:"looking_for_members"`
}

type createTeamForUserRequest struct {
	UserID            string `json:"user_id" validate:"required"`
	Name              string `json:"name" validate:"required,min=3,max=128"`
	Description       string `json:"description" validate:"max=2048"`
	LookingForMembers bool   `json:"looking_for_members"`
}

// POST /api/hackathons
func (h *HackathonHandler) Create(c *gin.Context) {
	var req createHackathonRequest
	if !bindAndValidate(c, &req) {
		return
	}

	hackathon, err := h.hackathons.Create(requestContext(c), currentUserID(c), services.CreateHackathonInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		MinTeamSize: req.MinTeamSize,
		MaxTeamSize: req.MaxTeamSize,
		MaxTeams:    req.MaxTeams,
		Settings:    req.Settings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, hackathon)
}

// GET /api/hackathons
func (h *HackathonHandler) List(c *gin.Context) {
	hackathons, err := h.hackathons.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, hackathons)
}

// GET /api/hackathons/:id
func (h *HackathonHandler) Get(c *gin.Context) {
	ctx := requestContext(c)
	id := c.Param("id")

	hackathon, err := h.hackathons.GetByID(ctx, id)
	if err != nil {
		// Fall back to slug lookup so share links stay short.
		hackathon, err = h.hackathons.GetBySlug(ctx, id)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, hackathon)
}

// PATCH /api/hackathons/:id/settings
func (h *HackathonHandler) UpdateSettings(c *gin.Context) {
	var req updateHackathonRequest
	if !bindAndValidate(c, &req) {
		return
	}

	hackathon, err := h.hackathons.UpdateSettings(requestContext(c), currentUserID(c), c.Param("id"), services.UpdateHackathonInput{
		Name:               req.Name,
		Description:        req.Description,
		RegistrationStatus: req.RegistrationStatus,
		MinTeamSize:        req.MinTeamSize,
		MaxTeamSize:        req.MaxTeamSize,
		MaxTeams:           req.MaxTeams,
		ClearMaxTeams:      req.ClearMaxTeams,
		Settings:           req.Settings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, hackathon)
}

// POST /api/hackathons/:id/teams
func (h *HackathonHandler) CreateTeam(c *gin.Context) {
	var req createTeamRequest
	if !bindAndValidate(c, &req) {
		return
	}

	team, err := h.teams.Create(requestContext(c), currentUserID(c), services.CreateTeamInput{
		HackathonID:       c.Param("id"),
		Name:              req.Name,
		Description:       req.Description,
		LookingForMembers: req.LookingForMembers,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, team)
}

// POST /api/hackathons/:id/teams/for-user
func (h *HackathonHandler) CreateTeamForUser(c *gin.Context) {
	var req createTeamForUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	team, err := h.teams.CreateForUser(requestContext(c), currentUserID(c), req.UserID, services.CreateTeamInput{
		HackathonID:       c.Param("id"),
		Name:              req.Name,
		Description:       req.Description,
		LookingForMembers: req.LookingForMembers,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, team)
}

// GET /api/hackathons/:id/teams
func (h *HackathonHandler) ListTeams(c *gin.Context) {
	teams, err := h.teams.ListByHackathon(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, teams)
}
