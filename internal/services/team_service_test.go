package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danielroh/hackmate/internal/models"
)

func TestCreateTeamInsertsOwnerMembership(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{organizerID: organizer.ID})

	team, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{
		HackathonID:       hackathon.ID,
		Name:              "Night Owls",
		Description:       "late risers",
		LookingForMembers: true,
	})
	require.NoError(t, err)
	require.Equal(t, hackathon.ID, team.HackathonID)

	var owner models.TeamMember
	require.NoError(t, db.First(&owner, "team_id = ? AND user_id = ?", team.ID, alice.ID).Error)
	require.Equal(t, models.TeamRoleOwner, owner.Role)
	require.Equal(t, hackathon.ID, owner.HackathonID)
}

func TestCreateTeamValidation(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{organizerID: organizer.ID})

	_, err := svc.teams.Create(ctx, "", CreateTeamInput{HackathonID: hackathon.ID, Name: "Valid Name"})
	require.ErrorContains(t, err, "Authentication required")

	_, err = svc.teams.Create(ctx, alice.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "ab"})
	require.ErrorContains(t, err, "at least 3 characters")

	_, err = svc.teams.Create(ctx, alice.ID, CreateTeamInput{HackathonID: "missing", Name: "Valid Name"})
	require.ErrorIs(t, err, ErrHackathonNotFound)
}

func TestCreateTeamRejectsSecondTeamInSameHackathon(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{organizerID: organizer.ID})

	_, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "First Team"})
	require.NoError(t, err)

	_, err = svc.teams.Create(ctx, alice.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "Second Team"})
	require.ErrorIs(t, err, ErrAlreadyOnTeam)

	// Cross-hackathon membership is unconstrained.
	other := createTestHackathon(t, db, "autumn", hackathonParams{organizerID: organizer.ID})
	_, err = svc.teams.Create(ctx, alice.ID, CreateTeamInput{HackathonID: other.ID, Name: "Second Team"})
	require.NoError(t, err)
}

func TestCreateTeamClosedRegistration(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{
		organizerID: organizer.ID,
		status:      models.RegistrationClosed,
	})

	_, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "Night Owls"})
	require.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestCreateTeamCapClosesRegistration(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{
		organizerID: organizer.ID,
		maxTeams:    intPtr(1),
	})

	_, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "Night Owls"})
	require.NoError(t, err)

	// The lifecycle trigger flipped registration to closed in the same transaction,
	// so the next creation fails on the registration gate, not the cap check.
	reloaded, err := svc.hackathons.GetByID(ctx, hackathon.ID)
	require.NoError(t, err)
	require.Equal(t, models.RegistrationClosed, reloaded.RegistrationStatus)

	_, err = svc.teams.Create(ctx, bob.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "Late Comers"})
	require.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestCreateTeamCapReachedWhileOpen(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	bob := createTestUser(t, db, "bob")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{
		organizerID: organizer.ID,
		maxTeams:    intPtr(1),
	})

	// A pre-existing team without a registered closure: the cap check itself fires.
	require.NoError(t, db.Create(&models.Team{HackathonID: hackathon.ID, Name: "Incumbents"}).Error)

	_, err := svc.teams.Create(ctx, bob.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "Late Comers"})
	require.ErrorIs(t, err, ErrTeamCapReached)
}

func TestCreateForUserOrganizerOverride(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{
		organizerID: organizer.ID,
		status:      models.RegistrationClosed,
	})

	// Non-organizer callers are refused.
	_, err := svc.teams.CreateForUser(ctx, alice.ID, bob.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "Night Owls"})
	require.ErrorContains(t, err, "Permission denied")

	// The organizer may create teams even with registration closed, and the target
	// user becomes the owner.
	team, err := svc.teams.CreateForUser(ctx, organizer.ID, bob.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "Night Owls"})
	require.NoError(t, err)

	var owner models.TeamMember
	require.NoError(t, db.First(&owner, "team_id = ?", team.ID).Error)
	require.Equal(t, bob.ID, owner.UserID)
	require.Equal(t, models.TeamRoleOwner, owner.Role)

	// The target user's one-team-per-hackathon invariant still holds.
	_, err = svc.teams.CreateForUser(ctx, organizer.ID, bob.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "Second Team"})
	require.ErrorIs(t, err, ErrAlreadyOnTeam)
}

func TestJoinTeamLifecycle(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{
		organizerID: organizer.ID,
		maxTeamSize: 2,
	})

	team, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{
		HackathonID:       hackathon.ID,
		Name:              "Night Owls",
		LookingForMembers: true,
	})
	require.NoError(t, err)

	result, err := svc.teams.Join(ctx, bob.ID, team.ID)
	require.NoError(t, err)
	require.Equal(t, team.ID, result.TeamID)
	require.Equal(t, hackathon.ID, result.HackathonID)
	require.EqualValues(t, 2, memberCount(t, db, team.ID))

	// Reaching capacity flips the recruiting flag off in the same transaction.
	reloaded, err := svc.teams.GetByID(ctx, team.ID)
	require.NoError(t, err)
	require.False(t, reloaded.LookingForMembers)

	_, err = svc.teams.Join(ctx, carol.ID, team.ID)
	require.ErrorIs(t, err, ErrTeamNotRecruiting)
	require.EqualValues(t, 2, memberCount(t, db, team.ID))
}

func TestJoinTeamChecksRecruitingAndMembership(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{organizerID: organizer.ID})

	team, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{
		HackathonID:       hackathon.ID,
		Name:              "Night Owls",
		LookingForMembers: false,
	})
	require.NoError(t, err)

	_, err = svc.teams.Join(ctx, bob.ID, team.ID)
	require.ErrorIs(t, err, ErrTeamNotRecruiting)

	require.NoError(t, db.Model(&models.Team{}).Where("id = ?", team.ID).
		Update("looking_for_members", true).Error)

	_, err = svc.teams.Join(ctx, alice.ID, team.ID)
	require.ErrorIs(t, err, ErrAlreadyOnTeam)

	_, err = svc.teams.Join(ctx, bob.ID, "missing")
	require.ErrorIs(t, err, ErrTeamNotFound)
}

func TestJoinTeamFullWhenOverCapacityIsRecruiting(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{
		organizerID: organizer.ID,
		maxTeamSize: 1,
	})

	team, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{
		HackathonID:       hackathon.ID,
		Name:              "Solo Act",
		LookingForMembers: true,
	})
	require.NoError(t, err)

	// Recruiting can be switched back on for a full team; the capacity check still
	// guards joining.
	require.NoError(t, db.Model(&models.Team{}).Where("id = ?", team.ID).
		Update("looking_for_members", true).Error)

	_, err = svc.teams.Join(ctx, bob.ID, team.ID)
	require.ErrorIs(t, err, ErrTeamFull)
}

func TestInviteLinkRoundTrip(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{organizerID: organizer.ID})

	team, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{
		HackathonID:       hackathon.ID,
		Name:              "Night Owls",
		LookingForMembers: false,
	})
	require.NoError(t, err)

	// Only the owner or organizer may generate links.
	_, err = svc.teams.GenerateInviteLink(ctx, bob.ID, team.ID)
	require.ErrorContains(t, err, "Permission denied")

	link, err := svc.teams.GenerateInviteLink(ctx, alice.ID, team.ID)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("https://hackmate.test/hackathons/%s/teams/%s/join", hackathon.ID, team.ID), link)

	// Redemption ignores the recruiting flag.
	result, err := svc.teams.JoinViaInviteLink(ctx, bob.ID, team.ID, hackathon.ID)
	require.NoError(t, err)
	require.Equal(t, team.ID, result.TeamID)
}

func TestInviteLinkRedemptionEnforcesRegistrationGate(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{organizerID: organizer.ID})

	team, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "Night Owls"})
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Hackathon{}).Where("id = ?", hackathon.ID).
		Update("registration_status", models.RegistrationClosed).Error)

	_, err = svc.teams.JoinViaInviteLink(ctx, bob.ID, team.ID, hackathon.ID)
	require.ErrorIs(t, err, ErrRegistrationClosed)

	// Mismatched hackathon id in the link is treated as an unknown team.
	_, err = svc.teams.JoinViaInviteLink(ctx, bob.ID, team.ID, "other")
	require.ErrorIs(t, err, ErrTeamNotFound)
}

func TestInviteMember(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{organizerID: organizer.ID})

	team, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "Night Owls"})
	require.NoError(t, err)

	invitation, err := svc.teams.InviteMember(ctx, alice.ID, team.ID, hackathon.ID, "Bob@Example.com")
	require.NoError(t, err)
	require.Equal(t, "bob@example.com", invitation.Email)
	require.Equal(t, models.InvitationPending, invitation.Status)

	// A second invitation for the same email fails; the first stays pending and unique.
	_, err = svc.teams.InviteMember(ctx, alice.ID, team.ID, hackathon.ID, "bob@example.com")
	require.ErrorIs(t, err, ErrAlreadyInvited)

	var pending int64
	require.NoError(t, db.Model(&models.TeamInvitation{}).
		Where("team_id = ? AND email = ? AND status = ?", team.ID, "bob@example.com", models.InvitationPending).
		Count(&pending).Error)
	require.EqualValues(t, 1, pending)

	// Invitations never create memberships.
	require.EqualValues(t, 1, memberCount(t, db, team.ID))

	_, err = svc.teams.InviteMember(ctx, alice.ID, team.ID, hackathon.ID, "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.teams.InviteMember(ctx, bob.ID, team.ID, hackathon.ID, "bob@example.com")
	require.ErrorContains(t, err, "Permission denied")
}

func TestExternalMembersOccupyCapacity(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{
		organizerID: organizer.ID,
		maxTeamSize: 2,
	})

	team, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{
		HackathonID:       hackathon.ID,
		Name:              "Night Owls",
		LookingForMembers: true,
	})
	require.NoError(t, err)

	external, err := svc.teams.AddExternalMember(ctx, alice.ID, team.ID, hackathon.ID, "Visiting Friend")
	require.NoError(t, err)
	require.Equal(t, team.ID, external.TeamID)

	// The external member filled the last slot and flipped recruiting off.
	reloaded, err := svc.teams.GetByID(ctx, team.ID)
	require.NoError(t, err)
	require.False(t, reloaded.LookingForMembers)

	_, err = svc.teams.AddExternalMember(ctx, alice.ID, team.ID, hackathon.ID, "One Too Many")
	require.ErrorIs(t, err, ErrTeamFull)

	require.NoError(t, db.Model(&models.Team{}).Where("id = ?", team.ID).
		Update("looking_for_members", true).Error)
	_, err = svc.teams.Join(ctx, bob.ID, team.ID)
	require.ErrorIs(t, err, ErrTeamFull)
}

func TestRemoveMemberRules(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{organizerID: organizer.ID})

	team, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{
		HackathonID:       hackathon.ID,
		Name:              "Night Owls",
		LookingForMembers: true,
	})
	require.NoError(t, err)

	_, err = svc.teams.Join(ctx, bob.ID, team.ID)
	require.NoError(t, err)

	// Non-managers cannot remove anyone.
	err = svc.teams.RemoveMember(ctx, carol.ID, team.ID, bob.ID, hackathon.ID)
	require.ErrorContains(t, err, "Permission denied")

	// The owner removes an ordinary member.
	require.NoError(t, svc.teams.RemoveMember(ctx, alice.ID, team.ID, bob.ID, hackathon.ID))
	require.EqualValues(t, 1, memberCount(t, db, team.ID))

	err = svc.teams.RemoveMember(ctx, alice.ID, team.ID, bob.ID, hackathon.ID)
	require.ErrorIs(t, err, ErrTeamMemberNotFound)

	// The owner may never remove themself.
	err = svc.teams.RemoveMember(ctx, alice.ID, team.ID, alice.ID, hackathon.ID)
	require.ErrorContains(t, err, "Permission denied")

	// Only the organizer removes an owner.
	require.NoError(t, svc.teams.RemoveMember(ctx, organizer.ID, team.ID, alice.ID, hackathon.ID))
	require.EqualValues(t, 0, memberCount(t, db, team.ID))
}

func TestUpdateTeamFields(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{organizerID: organizer.ID})

	team, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "Night Owls"})
	require.NoError(t, err)

	name := "Early Birds"
	project := "Sunrise Tracker"
	recruiting := false
	updated, err := svc.teams.Update(ctx, alice.ID, team.ID, UpdateTeamInput{
		Name:              &name,
		ProjectName:       &project,
		LookingForMembers: &recruiting,
	})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
	require.Equal(t, project, updated.ProjectName)
	require.False(t, updated.LookingForMembers)

	short := "ab"
	_, err = svc.teams.Update(ctx, alice.ID, team.ID, UpdateTeamInput{Name: &short})
	require.ErrorContains(t, err, "at least 3 characters")

	_, err = svc.teams.Update(ctx, bob.ID, team.ID, UpdateTeamInput{Name: &name})
	require.ErrorContains(t, err, "Permission denied")
}

func TestDeleteTeamCascades(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{organizerID: organizer.ID})

	team, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{
		HackathonID:       hackathon.ID,
		Name:              "Night Owls",
		LookingForMembers: true,
	})
	require.NoError(t, err)

	_, err = svc.teams.InviteMember(ctx, alice.ID, team.ID, hackathon.ID, bob.Email)
	require.NoError(t, err)
	_, err = svc.teams.AddExternalMember(ctx, alice.ID, team.ID, hackathon.ID, "Visiting Friend")
	require.NoError(t, err)
	_, err = svc.requests.Create(ctx, bob.ID, team.ID, "let me in")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Submission{
		TeamID:      team.ID,
		HackathonID: hackathon.ID,
		Title:       "Sunrise Tracker",
	}).Error)

	// Only the organizer may delete a team.
	err = svc.teams.Delete(ctx, alice.ID, team.ID)
	require.ErrorContains(t, err, "Permission denied")

	require.NoError(t, svc.teams.Delete(ctx, organizer.ID, team.ID))

	for _, model := range []any{
		&models.Team{},
		&models.TeamMember{},
		&models.TeamInvitation{},
		&models.TeamJoinRequest{},
		&models.ExternalTeamMember{},
		&models.Submission{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		require.Zero(t, count, "expected no %T rows after cascade", model)
	}

	// Deleting a team never reopens registration.
	reloaded, err := svc.hackathons.GetByID(ctx, hackathon.ID)
	require.NoError(t, err)
	require.Equal(t, models.RegistrationOpen, reloaded.RegistrationStatus)
}

func TestListByHackathon(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{organizerID: organizer.ID})

	_, err := svc.teams.Create(ctx, alice.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "Night Owls"})
	require.NoError(t, err)
	_, err = svc.teams.Create(ctx, bob.ID, CreateTeamInput{HackathonID: hackathon.ID, Name: "Early Birds"})
	require.NoError(t, err)

	teams, err := svc.teams.ListByHackathon(ctx, hackathon.ID)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	require.Equal(t, "Night Owls", teams[0].Name)
}

func TestConcurrentJoinersRespectCapacity(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)
	ctx := context.Background()

	organizer := createTestUser(t, db, "organizer")
	owner := createTestUser(t, db, "owner")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{organizerID: organizer.ID, maxTeamSize: 2})

	team, err := svc.teams.Create(ctx, owner.ID, CreateTeamInput{
		HackathonID:       hackathon.ID,
		Name:              "Night Owls",
		LookingForMembers: true,
	})
	require.NoError(t, err)

	// Two joiners race for the single remaining slot. Exactly one may win, and the
	// loser must see the tagged capacity failure rather than a raw driver error.
	racers := []*models.User{createTestUser(t, db, "bob"), createTestUser(t, db, "carol")}
	joinErrs := make([]error, len(racers))
	var wg sync.WaitGroup
	for i, racer := range racers {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			_, joinErrs[i] = svc.teams.Join(context.Background(), userID, team.ID)
		}(i, racer.ID)
	}
	wg.Wait()

	var joined, full int
	for _, err := range joinErrs {
		switch {
		case err == nil:
			joined++
		case errors.Is(err, ErrTeamFull):
			full++
		default:
			t.Fatalf("unexpected join error: %v", err)
		}
	}
	require.Equal(t, 1, joined)
	require.Equal(t, 1, full)
	require.Equal(t, int64(2), memberCount(t, db, team.ID))
}

func TestConcurrentCreatesRespectOneTeamPerHackathon(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCoreServices(t, db)

	organizer := createTestUser(t, db, "organizer")
	alice := createTestUser(t, db, "alice")
	hackathon := createTestHackathon(t, db, "spring", hackathonParams{organizerID: organizer.ID})

	createErrs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range createErrs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, createErrs[i] = svc.teams.Create(context.Background(), alice.ID, CreateTeamInput{
				HackathonID:       hackathon.ID,
				Name:              fmt.Sprintf("Racing Team %d", i),
				LookingForMembers: true,
			})
		}(i)
	}
	wg.Wait()

	var created, alreadyOn int
	for _, err := range createErrs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrAlreadyOnTeam):
			alreadyOn++
		default:
			t.Fatalf("unexpected create error: %v", err)
		}
	}
	require.Equal(t, 1, created)
	require.Equal(t, 1, alreadyOn)

	var memberships int64
	require.NoError(t, db.Model(&models.TeamMember{}).Where("user_id = ?", alice.ID).Count(&memberships).Error)
	require.Equal(t, int64(1), memberships)
}
