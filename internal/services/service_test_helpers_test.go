package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/danielroh/hackmate/internal/database/testutil"
	"github.com/danielroh/hackmate/internal/models"
)

type coreServices struct {
	audit      *AuditService
	users      *UserService
	hackathons *HackathonService
	teams      *TeamService
	requests   *JoinRequestService
}

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
}

func newCoreServices(t *testing.T, db *gorm.DB) coreServices {
	t.Helper()

	audit, err := NewAuditService(db)
	require.NoError(t, err)

	users, err := NewUserService(db)
	require.NoError(t, err)

	hackathons, err := NewHackathonService(db, audit)
	require.NoError(t, err)

	teams, err := NewTeamService(db, audit, hackathons, WithInviteLinkBaseURL("https://hackmate.test"))
	require.NoError(t, err)

	requests, err := NewJoinRequestService(db, audit)
	require.NoError(t, err)

	return coreServices{audit: audit, users: users, hackathons: hackathons, teams: teams, requests: requests}
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

type hackathonParams struct {
	organizerID string
	maxTeamSize int
	minTeamSize int
	maxTeams    *int
	status      string
}

func createTestHackathon(t *testing.T, db *gorm.DB, slug string, params hackathonParams) *models.Hackathon {
	t.Helper()

	if params.minTeamSize == 0 {
		params.minTeamSize = 1
	}
	if params.maxTeamSize == 0 {
		params.maxTeamSize = 4
	}
	if params.status == "" {
		params.status = models.RegistrationOpen
	}

	hackathon := &models.Hackathon{
		Name:               "Hackathon " + slug,
		Slug:               slug,
		OrganizerID:        params.organizerID,
		RegistrationStatus: params.status,
		MinTeamSize:        params.minTeamSize,
		MaxTeamSize:        params.maxTeamSize,
		MaxTeams:           params.maxTeams,
	}
	require.NoError(t, db.Create(hackathon).Error)
	return hackathon
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func memberCount(t *testing.T, db *gorm.DB, teamID string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error)
	return count
}
