package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/danielroh/hackmate/internal/auth"
	"github.com/danielroh/hackmate/internal/database/testutil"
	"github.com/danielroh/hackmate/internal/middleware"
	"github.com/danielroh/hackmate/internal/services"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	tokens, err := iauth.NewTokenService(iauth.Config{Secret: "test-secret", Issuer: "hackmate"})
	require.NoError(t, err)

	audit, err := services.NewAuditService(db)
	require.NoError(t, err)
	users, err := services.NewUserService(db)
	require.NoError(t, err)
	hackathons, err := services.NewHackathonService(db, audit)
	require.NoError(t, err)
	teams, err := services.NewTeamService(db, audit, hackathons,
		services.WithInviteLinkBaseURL("https://hackmate.test"))
	require.NoError(t, err)
	requests, err := services.NewJoinRequestService(db, audit)
	require.NoError(t, err)

	authHandler := NewAuthHandler(users, tokens)
	hackathonHandler := NewHackathonHandler(hackathons, teams)
	teamHandler := NewTeamHandler(teams)
	joinRequestHandler := NewJoinRequestHandler(requests)

	router := gin.New()
	router.Use(middleware.Recovery())

	api := router.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.Auth(tokens))
	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/hackathons", hackathonHandler.Create)
	authed.GET("/hackathons", hackathonHandler.List)
	authed.GET("/hackathons/:id", hackathonHandler.Get)
	authed.PATCH("/hackathons/:id/settings", hackathonHandler.UpdateSettings)
	authed.POST("/hackathons/:id/teams", hackathonHandler.CreateTeam)
	authed.GET("/hackathons/:id/teams", hackathonHandler.ListTeams)
	authed.POST("/teams/:id/join", teamHandler.Join)
	authed.POST("/teams/:id/join-requests", joinRequestHandler.Create)
	authed.GET("/teams/:id/join-requests", joinRequestHandler.ListForTeam)
	authed.POST("/join-requests/:id/handle", joinRequestHandler.Handle)

	return &testEnv{router: router, db: db}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, rec.Body.String())
	return envelope.Data
}

func (e *testEnv) registerUser(t *testing.T, username string) (token, userID string) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	token = data["token"].(string)
	userID = data["user"].(map[string]any)["id"].(string)
	return token, userID
}

func TestRegisterLoginAndMe(t *testing.T) {
	env := newTestEnv(t)

	token, userID := env.registerUser(t, "alice")
	require.NotEmpty(t, token)

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeData(t, rec)
	require.Equal(t, userID, me["id"])

	rec = env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")
}

func TestHackathonAndTeamFlow(t *testing.T) {
	env := newTestEnv(t)

	organizerToken, _ := env.registerUser(t, "organizer")
	aliceToken, _ := env.registerUser(t, "alice")
	bobToken, _ := env.registerUser(t, "bob")

	rec := env.do(t, http.MethodPost, "/api/hackathons", organizerToken, gin.H{
		"name":          "Spring Hack",
		"min_team_size": 1,
		"max_team_size": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	hackathonID := decodeData(t, rec)["id"].(string)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/hackathons/%s/teams", hackathonID), aliceToken, gin.H{
		"name":                "Night Owls",
		"looking_for_members": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	teamID := decodeData(t, rec)["id"].(string)

	// Direct join by a second user.
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/teams/%s/join", teamID), bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The same user cannot create another team in this hackathon.
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/hackathons/%s/teams", hackathonID), bobToken, gin.H{
		"name": "Second Wind",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "ALREADY_ON_TEAM")

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/hackathons/%s/teams", hackathonID), aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Night Owls")
}

func TestJoinRequestFlowOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	organizerToken, _ := env.registerUser(t, "organizer")
	aliceToken, _ := env.registerUser(t, "alice")
	bobToken, bobID := env.registerUser(t, "bob")

	rec := env.do(t, http.MethodPost, "/api/hackathons", organizerToken, gin.H{
		"name":          "Spring Hack",
		"min_team_size": 1,
		"max_team_size": 4,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	hackathonID := decodeData(t, rec)["id"].(string)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/hackathons/%s/teams", hackathonID), aliceToken, gin.H{
		"name":                "Night Owls",
		"looking_for_members": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	teamID := decodeData(t, rec)["id"].(string)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/teams/%s/join-requests", teamID), bobToken, gin.H{
		"message": "let me in",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	requestID := decodeData(t, rec)["id"].(string)

	// Requester cannot resolve their own request.
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/join-requests/%s/handle", requestID), bobToken, gin.H{
		"decision": "accept",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Invalid decisions are rejected before touching the service.
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/join-requests/%s/handle", requestID), aliceToken, gin.H{
		"decision": "maybe",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/join-requests/%s/handle", requestID), aliceToken, gin.H{
		"decision": "accept",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/teams/%s/join-requests", teamID), aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), bobID)
	require.Contains(t, rec.Body.String(), "accepted")
}
