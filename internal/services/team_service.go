package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danielroh/hackmate/internal/models"
	apperrors "github.com/danielroh/hackmate/pkg/errors"
)

var (
	// ErrTeamNotFound indicates the requested team does not exist.
	ErrTeamNotFound = apperrors.New("TEAM_NOT_FOUND", "Team not found", http.StatusNotFound)
	// ErrTeamMemberNotFound indicates the requested membership does not exist.
	ErrTeamMemberNotFound = apperrors.New("TEAM_MEMBER_NOT_FOUND", "User is not a member of the team", http.StatusNotFound)
	// ErrTeamCapReached signals the hackathon already holds its configured number of teams.
	ErrTeamCapReached = apperrors.NewConflict("TEAM_CAP_REACHED", "The hackathon has reached its team limit")
	// ErrAlreadyOnTeam signals the user already belongs to a team in this hackathon.
	ErrAlreadyOnTeam = apperrors.NewConflict("ALREADY_ON_TEAM", "User already belongs to a team in this hackathon")
	// ErrTeamNotRecruiting signals the team is not looking for members.
	ErrTeamNotRecruiting = apperrors.NewConflict("TEAM_NOT_RECRUITING", "Team is not looking for new members")
	// ErrTeamFull signals the team has no remaining capacity.
	ErrTeamFull = apperrors.NewConflict("TEAM_FULL", "Team has no remaining capacity")
	// ErrAlreadyInvited signals a pending invitation already exists for this email.
	ErrAlreadyInvited = apperrors.NewConflict("ALREADY_INVITED", "A pending invitation already exists for this email")
)

// CreateTeamInput captures new team metadata.
type CreateTeamInput struct {
	HackathonID       string
	Name              string
	Description       string
	LookingForMembers bool
}

// UpdateTeamInput describes mutable team fields. Nil fields are untouched.
type UpdateTeamInput struct {
	Name              *string
	Description       *string
	ProjectName       *string
	LookingForMembers *bool
}

// MembershipResult reports which team and hackathon a membership change touched, so a
// caller-side notification layer can decide what to invalidate.
type MembershipResult struct {
	TeamID      string `json:"team_id"`
	HackathonID string `json:"hackathon_id"`
}

// TeamOption customises TeamService behaviour.
type TeamOption func(*TeamService)

// WithInviteLinkBaseURL configures the base URL used when generating team invite links.
func WithInviteLinkBaseURL(url string) TeamOption {
	return func(s *TeamService) {
		s.linkBaseURL = strings.TrimRight(url, "/")
	}
}

// TeamService is the team membership core: team creation, capacity accounting,
// join and invite workflows, and removal. Every mutating operation takes the caller
// identity explicitly and runs its read-validate-write pipeline in one transaction.
type TeamService struct {
	db           *gorm.DB
	auditService *AuditService
	hackathons   *HackathonService
	linkBaseURL  string
}

// NewTeamService constructs a TeamService instance.
func NewTeamService(db *gorm.DB, auditService *AuditService, hackathons *HackathonService, opts ...TeamOption) (*TeamService, error) {
	if db == nil {
		return nil, errors.New("team service: db is required")
	}
	if hackathons == nil {
		return nil, errors.New("team service: hackathon service is required")
	}

	service := &TeamService{
		db:           db,
		auditService: auditService,
		hackathons:   hackathons,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Create registers a new team with the caller as owner and invokes the registration
// lifecycle trigger in the same transaction.
func (s *TeamService) Create(ctx context.Context, callerID string, input CreateTeamInput) (team *models.Team, err error) {
	defer func() { observeMembership("create_team", err) }()
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if err := validateTeamName(input.Name); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hackathon, err := loadHackathonForUpdate(tx, input.HackathonID)
		if err != nil {
			return err
		}
		if hackathon.RegistrationStatus != models.RegistrationOpen {
			return ErrRegistrationClosed
		}
		if err := checkTeamCap(tx, hackathon); err != nil {
			return err
		}
		if err := checkNoMembership(tx, hackathon.ID, callerID); err != nil {
			return err
		}

		team = &models.Team{
			HackathonID:       hackathon.ID,
			Name:              strings.TrimSpace(input.Name),
			Description:       strings.TrimSpace(input.Description),
			LookingForMembers: input.LookingForMembers,
		}
		if err := tx.Create(team).Error; err != nil {
			return fmt.Errorf("team service: create team: %w", err)
		}

		owner := &models.TeamMember{
			TeamID:      team.ID,
			UserID:      callerID,
			HackathonID: hackathon.ID,
			Role:        models.TeamRoleOwner,
		}
		if err := tx.Create(owner).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrAlreadyOnTeam
			}
			return fmt.Errorf("team service: create owner membership: %w", err)
		}

		if _, err := s.hackathons.applyRegistrationCap(tx, hackathon.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &callerID,
		Action:   "team.create",
		Resource: team.ID,
		Result:   "success",
		Metadata: map[string]any{"hackathon_id": team.HackathonID, "name": team.Name},
	})

	return team, nil
}

// CreateForUser registers a team on behalf of another user. Only the hackathon
// organizer may do this, and the registration-open gate does not apply: the organizer
// override exists precisely for closed-registration adjustments. The team cap and the
// target user's one-team-per-hackathon invariant still hold.
func (s *TeamService) CreateForUser(ctx context.Context, callerID, targetUserID string, input CreateTeamInput) (team *models.Team, err error) {
	defer func() { observeMembership("create_team_for_user", err) }()
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	targetUserID = strings.TrimSpace(targetUserID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if targetUserID == "" {
		return nil, apperrors.NewBadRequest("target user id is required")
	}
	if err := validateTeamName(input.Name); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hackathon, err := loadHackathonForUpdate(tx, input.HackathonID)
		if err != nil {
			return err
		}
		if hackathon.OrganizerID != callerID {
			return apperrors.ErrForbidden
		}
		if err := checkTeamCap(tx, hackathon); err != nil {
			return err
		}

		var target models.User
		if err := tx.First(&target, "id = ?", targetUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("team service: load target user: %w", err)
		}
		if err := checkNoMembership(tx, hackathon.ID, target.ID); err != nil {
			return err
		}

		team = &models.Team{
			HackathonID:       hackathon.ID,
			Name:              strings.TrimSpace(input.Name),
			Description:       strings.TrimSpace(input.Description),
			LookingForMembers: input.LookingForMembers,
		}
		if err := tx.Create(team).Error; err != nil {
			return fmt.Errorf("team service: create team: %w", err)
		}

		owner := &models.TeamMember{
			TeamID:      team.ID,
			UserID:      target.ID,
			HackathonID: hackathon.ID,
			Role:        models.TeamRoleOwner,
		}
		if err := tx.Create(owner).Error; err != nil {
			if isUniqueConstraintError(err) {
				return ErrAlreadyOnTeam
			}
			return fmt.Errorf("team service: create owner membership: %w", err)
		}

		if _, err := s.hackathons.applyRegistrationCap(tx, hackathon.ID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &callerID,
		Action:   "team.create_for_user",
		Resource: team.ID,
		Result:   "success",
		Metadata: map[string]any{"hackathon_id": team.HackathonID, "target_user_id": targetUserID},
	})

	return team, nil
}

// Join adds the caller to a recruiting team, flipping the recruiting flag off in the
// same transaction once the team reaches capacity.
func (s *TeamService) Join(ctx context.Context, callerID, teamID string) (result *MembershipResult, err error) {
	defer func() { observeMembership("join_team", err) }()
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, hackathon, err := loadTeamWithHackathonForUpdate(tx, teamID)
		if err != nil {
			return err
		}
		if err := requireJoinEligibility(tx, team, hackathon, callerID, true); err != nil {
			return err
		}
		if err := insertMember(tx, team, hackathon, callerID, models.TeamRoleMember); err != nil {
			return err
		}
		result = &MembershipResult{TeamID: team.ID, HackathonID: hackathon.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &callerID,
		Action:   "team.join",
		Resource: result.TeamID,
		Result:   "success",
		Metadata: map[string]any{"hackathon_id": result.HackathonID},
	})

	return result, nil
}

// GenerateInviteLink returns a deterministic join URL for the team. The link carries
// no secret or expiry: possession of the URL is eligibility to redeem it.
func (s *TeamService) GenerateInviteLink(ctx context.Context, callerID, teamID string) (string, error) {
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return "", apperrors.ErrUnauthenticated
	}

	team, hackathon, err := loadTeamWithHackathon(s.db.WithContext(ctx), teamID)
	if err != nil {
		return "", err
	}
	if err := requireTeamManager(s.db.WithContext(ctx), team, hackathon, callerID); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/hackathons/%s/teams/%s/join", s.linkBaseURL, hackathon.ID, team.ID), nil
}

// JoinViaInviteLink redeems an invite link. Registration must still be open and
// capacity and one-team-per-hackathon still apply, but the recruiting flag is
// deliberately ignored: a link is an explicit invitation.
func (s *TeamService) JoinViaInviteLink(ctx context.Context, callerID, teamID, hackathonID string) (result *MembershipResult, err error) {
	defer func() { observeMembership("join_via_invite_link", err) }()
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, hackathon, err := loadTeamWithHackathonForUpdate(tx, teamID)
		if err != nil {
			return err
		}
		if team.HackathonID != strings.TrimSpace(hackathonID) {
			return ErrTeamNotFound
		}
		if err := requireJoinEligibility(tx, team, hackathon, callerID, false); err != nil {
			return err
		}
		if err := insertMember(tx, team, hackathon, callerID, models.TeamRoleMember); err != nil {
			return err
		}
		result = &MembershipResult{TeamID: team.ID, HackathonID: hackathon.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &callerID,
		Action:   "team.join_via_link",
		Resource: result.TeamID,
		Result:   "success",
		Metadata: map[string]any{"hackathon_id": result.HackathonID},
	})

	return result, nil
}

// InviteMember records a pending invitation for the given email. An invitation is not
// a membership: capacity is checked now so obviously-doomed invitations fail fast, and
// again when the invitation is eventually accepted.
func (s *TeamService) InviteMember(ctx context.Context, callerID, teamID, hackathonID, email string) (invitation *models.TeamInvitation, err error) {
	defer func() { observeMembership("invite_member", err) }()
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewBadRequest("a valid email address is required")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, hackathon, err := loadTeamWithHackathonForUpdate(tx, teamID)
		if err != nil {
			return err
		}
		if team.HackathonID != strings.TrimSpace(hackathonID) {
			return ErrTeamNotFound
		}
		if err := requireTeamManager(tx, team, hackathon, callerID); err != nil {
			return err
		}

		count, err := liveMemberCount(tx, team.ID)
		if err != nil {
			return err
		}
		if count >= int64(hackathon.MaxTeamSize) {
			return ErrTeamFull
		}

		var invitee models.User
		if err := tx.First(&invitee, "email = ?", email).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("team service: load invitee: %w", err)
		}
		if err := checkNoMembership(tx, hackathon.ID, invitee.ID); err != nil {
			return err
		}

		var pending int64
		if err := tx.Model(&models.TeamInvitation{}).
			Where("team_id = ? AND email = ? AND status = ?", team.ID, email, models.InvitationPending).
			Count(&pending).Error; err != nil {
			return fmt.Errorf("team service: check pending invitations: %w", err)
		}
		if pending > 0 {
			return ErrAlreadyInvited
		}

		invitation = &models.TeamInvitation{
			TeamID:      team.ID,
			HackathonID: hackathon.ID,
			Email:       email,
			InvitedByID: callerID,
			Status:      models.InvitationPending,
		}
		if err := tx.Create(invitation).Error; err != nil {
			return fmt.Errorf("team service: create invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &callerID,
		Action:   "team.invite_member",
		Resource: invitation.TeamID,
		Result:   "success",
		Metadata: map[string]any{"email": email},
	})

	return invitation, nil
}

// AddExternalMember registers a named, account-less member. External members occupy
// capacity slots like ordinary members.
func (s *TeamService) AddExternalMember(ctx context.Context, callerID, teamID, hackathonID, name string) (member *models.ExternalTeamMember, err error) {
	defer func() { observeMembership("add_external_member", err) }()
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewBadRequest("member name is required")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, hackathon, err := loadTeamWithHackathonForUpdate(tx, teamID)
		if err != nil {
			return err
		}
		if team.HackathonID != strings.TrimSpace(hackathonID) {
			return ErrTeamNotFound
		}
		if err := requireTeamManager(tx, team, hackathon, callerID); err != nil {
			return err
		}

		count, err := liveMemberCount(tx, team.ID)
		if err != nil {
			return err
		}
		if count >= int64(hackathon.MaxTeamSize) {
			return ErrTeamFull
		}

		member = &models.ExternalTeamMember{
			TeamID:    team.ID,
			Name:      name,
			AddedByID: callerID,
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("team service: create external member: %w", err)
		}

		if count+1 >= int64(hackathon.MaxTeamSize) && team.LookingForMembers {
			if err := tx.Model(team).Update("looking_for_members", false).Error; err != nil {
				return fmt.Errorf("team service: update recruiting flag: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &callerID,
		Action:   "team.add_external_member",
		Resource: member.TeamID,
		Result:   "success",
		Metadata: map[string]any{"name": name},
	})

	return member, nil
}

// RemoveMember deletes a membership row. Owners may remove ordinary members; removing
// an owner requires the hackathon organizer, and an owner can never remove themself.
// The recruiting flag is not recomputed: reopening recruitment stays a manual decision.
func (s *TeamService) RemoveMember(ctx context.Context, callerID, teamID, memberUserID, hackathonID string) (err error) {
	defer func() { observeMembership("remove_member", err) }()
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	memberUserID = strings.TrimSpace(memberUserID)
	if callerID == "" {
		return apperrors.ErrUnauthenticated
	}
	if memberUserID == "" {
		return apperrors.NewBadRequest("member user id is required")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, hackathon, err := loadTeamWithHackathonForUpdate(tx, teamID)
		if err != nil {
			return err
		}
		if team.HackathonID != strings.TrimSpace(hackathonID) {
			return ErrTeamNotFound
		}
		if err := requireTeamManager(tx, team, hackathon, callerID); err != nil {
			return err
		}

		var membership models.TeamMember
		if err := tx.First(&membership, "team_id = ? AND user_id = ?", team.ID, memberUserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeamMemberNotFound
			}
			return fmt.Errorf("team service: load membership: %w", err)
		}

		if membership.Role == models.TeamRoleOwner {
			if callerID == memberUserID {
				return apperrors.ErrForbidden
			}
			if hackathon.OrganizerID != callerID {
				return apperrors.ErrForbidden
			}
		}

		if err := tx.Delete(&membership).Error; err != nil {
			return fmt.Errorf("team service: delete membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &callerID,
		Action:   "team.remove_member",
		Resource: teamID,
		Result:   "success",
		Metadata: map[string]any{"member_user_id": memberUserID},
	})

	return nil
}

// Update overwrites mutable team fields. No capacity cross-check applies here: the
// recruiting flag may be switched back on even for a full team, as joining paths
// re-check capacity anyway.
func (s *TeamService) Update(ctx context.Context, callerID, teamID string, input UpdateTeamInput) (*models.Team, error) {
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	var result models.Team
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, hackathon, err := loadTeamWithHackathonForUpdate(tx, teamID)
		if err != nil {
			return err
		}
		if err := requireTeamManager(tx, team, hackathon, callerID); err != nil {
			return err
		}

		updates := map[string]any{}
		if input.Name != nil {
			if err := validateTeamName(*input.Name); err != nil {
				return err
			}
			updates["name"] = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			updates["description"] = strings.TrimSpace(*input.Description)
		}
		if input.ProjectName != nil {
			updates["project_name"] = strings.TrimSpace(*input.ProjectName)
		}
		if input.LookingForMembers != nil {
			updates["looking_for_members"] = *input.LookingForMembers
		}

		if len(updates) > 0 {
			if err := tx.Model(team).Updates(updates).Error; err != nil {
				return fmt.Errorf("team service: update team: %w", err)
			}
		}

		if err := tx.First(&result, "id = ?", team.ID).Error; err != nil {
			return fmt.Errorf("team service: reload team: %w", err)
		}

		recordAudit(s.auditService, ctx, AuditEntry{
			UserID:   &callerID,
			Action:   "team.update",
			Resource: team.ID,
			Result:   "success",
			Metadata: map[string]any{"fields": len(updates)},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetByID loads a team with its members and external members.
func (s *TeamService) GetByID(ctx context.Context, teamID string) (*models.Team, error) {
	ctx = ensureContext(ctx)

	var team models.Team
	err := s.db.WithContext(ctx).
		Preload("Members.User").
		Preload("ExternalMembers").
		First(&team, "id = ?", teamID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("team service: load team: %w", err)
	}
	return &team, nil
}

// ListByHackathon returns the hackathon's teams ordered by creation time.
func (s *TeamService) ListByHackathon(ctx context.Context, hackathonID string) ([]models.Team, error) {
	ctx = ensureContext(ctx)

	var teams []models.Team
	err := s.db.WithContext(ctx).
		Preload("Members").
		Preload("ExternalMembers").
		Where("hackathon_id = ?", hackathonID).
		Order("created_at ASC").
		Find(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("team service: list teams: %w", err)
	}
	return teams, nil
}

// Delete removes a team and everything it owns: submissions, join requests,
// invitations, external members, then members, then the team, in one transaction.
// Only the hackathon organizer may delete a team, and the deletion does not re-invoke
// the registration lifecycle trigger: closed registration stays closed.
func (s *TeamService) Delete(ctx context.Context, callerID, teamID string) (err error) {
	defer func() { observeMembership("delete_team", err) }()
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return apperrors.ErrUnauthenticated
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, hackathon, err := loadTeamWithHackathonForUpdate(tx, teamID)
		if err != nil {
			return err
		}
		if hackathon.OrganizerID != callerID {
			return apperrors.ErrForbidden
		}

		for _, model := range []any{
			&models.Submission{},
			&models.TeamJoinRequest{},
			&models.TeamInvitation{},
			&models.ExternalTeamMember{},
			&models.TeamMember{},
		} {
			if err := tx.Where("team_id = ?", team.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("team service: cascade delete %T: %w", model, err)
			}
		}

		if err := tx.Delete(team).Error; err != nil {
			return fmt.Errorf("team service: delete team: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &callerID,
		Action:   "team.delete",
		Resource: teamID,
		Result:   "success",
	})

	return nil
}

// --- shared pipeline helpers ---

func validateTeamName(name string) error {
	if len(strings.TrimSpace(name)) < 3 {
		return apperrors.NewBadRequest("team name must be at least 3 characters")
	}
	return nil
}

func loadHackathon(tx *gorm.DB, id string) (*models.Hackathon, error) {
	var hackathon models.Hackathon
	if err := tx.First(&hackathon, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHackathonNotFound
		}
		return nil, fmt.Errorf("team service: load hackathon: %w", err)
	}
	return &hackathon, nil
}

// loadHackathonForUpdate row-locks the hackathon so concurrent team-cap checks and
// lifecycle-trigger flips serialize on postgres and mysql. sqlite ignores the clause
// and serializes writers itself.
func loadHackathonForUpdate(tx *gorm.DB, id string) (*models.Hackathon, error) {
	return loadHackathon(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func loadTeamWithHackathon(tx *gorm.DB, teamID string) (*models.Team, *models.Hackathon, error) {
	var team models.Team
	if err := tx.First(&team, "id = ?", strings.TrimSpace(teamID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, fmt.Errorf("team service: load team: %w", err)
	}

	hackathon, err := loadHackathon(tx, team.HackathonID)
	if err != nil {
		return nil, nil, err
	}
	return &team, hackathon, nil
}

// loadTeamWithHackathonForUpdate row-locks both rows so the member-count check and the
// membership insert of concurrent joiners run one at a time per team.
func loadTeamWithHackathonForUpdate(tx *gorm.DB, teamID string) (*models.Team, *models.Hackathon, error) {
	var team models.Team
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&team, "id = ?", strings.TrimSpace(teamID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTeamNotFound
		}
		return nil, nil, fmt.Errorf("team service: load team: %w", err)
	}

	hackathon, err := loadHackathonForUpdate(tx, team.HackathonID)
	if err != nil {
		return nil, nil, err
	}
	return &team, hackathon, nil
}

func checkTeamCap(tx *gorm.DB, hackathon *models.Hackathon) error {
	if hackathon.MaxTeams == nil {
		return nil
	}
	var teams int64
	if err := tx.Model(&models.Team{}).Where("hackathon_id = ?", hackathon.ID).Count(&teams).Error; err != nil {
		return fmt.Errorf("team service: count teams: %w", err)
	}
	if teams >= int64(*hackathon.MaxTeams) {
		return ErrTeamCapReached
	}
	return nil
}

func checkNoMembership(tx *gorm.DB, hackathonID, userID string) error {
	var existing int64
	if err := tx.Model(&models.TeamMember{}).
		Where("hackathon_id = ? AND user_id = ?", hackathonID, userID).
		Count(&existing).Error; err != nil {
		return fmt.Errorf("team service: check membership: %w", err)
	}
	if existing > 0 {
		return ErrAlreadyOnTeam
	}
	return nil
}

// liveMemberCount folds external members into the same capacity math as ordinary
// members: both occupy slots.
func liveMemberCount(tx *gorm.DB, teamID string) (int64, error) {
	var members int64
	if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&members).Error; err != nil {
		return 0, fmt.Errorf("team service: count members: %w", err)
	}

	var external int64
	if err := tx.Model(&models.ExternalTeamMember{}).Where("team_id = ?", teamID).Count(&external).Error; err != nil {
		return 0, fmt.Errorf("team service: count external members: %w", err)
	}

	return members + external, nil
}

// requireJoinEligibility validates everything a direct join needs. Invite-link
// redemption and join-request acceptance pass requireRecruiting=false, since both
// represent explicit authorization that overrides the recruiting flag.
func requireJoinEligibility(tx *gorm.DB, team *models.Team, hackathon *models.Hackathon, userID string, requireRecruiting bool) error {
	if hackathon.RegistrationStatus != models.RegistrationOpen {
		return ErrRegistrationClosed
	}
	if requireRecruiting && !team.LookingForMembers {
		return ErrTeamNotRecruiting
	}
	if err := checkNoMembership(tx, hackathon.ID, userID); err != nil {
		return err
	}

	count, err := liveMemberCount(tx, team.ID)
	if err != nil {
		return err
	}
	if count >= int64(hackathon.MaxTeamSize) {
		return ErrTeamFull
	}
	return nil
}

// insertMember creates the membership row and flips the recruiting flag off in the
// same transaction once the post-insert live count reaches capacity.
func insertMember(tx *gorm.DB, team *models.Team, hackathon *models.Hackathon, userID, role string) error {
	member := &models.TeamMember{
		TeamID:      team.ID,
		UserID:      userID,
		HackathonID: hackathon.ID,
		Role:        role,
	}
	if err := tx.Create(member).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrAlreadyOnTeam
		}
		return fmt.Errorf("team service: create membership: %w", err)
	}

	count, err := liveMemberCount(tx, team.ID)
	if err != nil {
		return err
	}
	if count >= int64(hackathon.MaxTeamSize) && team.LookingForMembers {
		if err := tx.Model(team).Update("looking_for_members", false).Error; err != nil {
			return fmt.Errorf("team service: update recruiting flag: %w", err)
		}
	}
	return nil
}

// requireTeamManager allows the team owner or the hackathon organizer.
func requireTeamManager(tx *gorm.DB, team *models.Team, hackathon *models.Hackathon, callerID string) error {
	if hackathon.OrganizerID == callerID {
		return nil
	}

	var owner int64
	if err := tx.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ? AND role = ?", team.ID, callerID, models.TeamRoleOwner).
		Count(&owner).Error; err != nil {
		return fmt.Errorf("team service: check owner: %w", err)
	}
	if owner == 0 {
		return apperrors.ErrForbidden
	}
	return nil
}
