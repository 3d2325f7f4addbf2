package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielroh/hackmate/internal/services"
	"github.com/danielroh/hackmate/pkg/response"
)

// JoinRequestHandler exposes the request-to-join workflow.
type JoinRequestHandler struct {
	requests *services.JoinRequestService
}

func NewJoinRequestHandler(requests *services.JoinRequestService) *JoinRequestHandler {
	return &JoinRequestHandler{requests: requests}
}

type createJoinRequestRequest struct {
	Message string `json:"message" validate:"max=1024"`
}

type handleJoinRequestRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accept reject"`
}

// POST /api/teams/:id/join-requests
func (h *JoinRequestHandler) Create(c *gin.Context) {
	var req createJoinRequestRequest
	if !bindAndValidate(c, &req) {
		return
	}

	request, err := h.requests.Create(requestContext(c), currentUserID(c), c.Param("id"), req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, request)
}

// GET /api/teams/:id/join-requests
func (h *JoinRequestHandler) ListForTeam(c *gin.Context) {
	requests, err := h.requests.ListForTeam(requestContext(c), currentUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, requests)
}

// POST /api/join-requests/:id/handle
func (h *JoinRequestHandler) Handle(c *gin.Context) {
	var req handleJoinRequestRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.requests.Handle(requestContext(c), currentUserID(c), c.Param("id"), services.JoinRequestDecision(req.Decision))
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{"status": "resolved"}
	if result != nil {
		payload["membership"] = result
	}
	response.Success(c, http.StatusOK, payload)
}
