package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/danielroh/hackmate/internal/models"
	apperrors "github.com/danielroh/hackmate/pkg/errors"
	"github.com/danielroh/hackmate/pkg/metrics"
)

var (
	// ErrHackathonNotFound indicates the requested hackathon does not exist.
	ErrHackathonNotFound = apperrors.New("HACKATHON_NOT_FOUND", "Hackathon not found", http.StatusNotFound)
	// ErrRegistrationClosed signals that the hackathon no longer accepts teams or joins.
	ErrRegistrationClosed = apperrors.NewConflict("REGISTRATION_CLOSED", "Registration is closed for this hackathon")
	// ErrRegistrationReopen rejects attempts to reopen a closed registration.
	ErrRegistrationReopen = apperrors.NewConflict("REGISTRATION_REOPEN", "A closed registration cannot be reopened")
)

// CreateHackathonInput captures new hackathon configuration.
type CreateHackathonInput struct {
	Name        string
	Slug        string
	Description string
	MinTeamSize int
	MaxTeamSize int
	MaxTeams    *int
	Settings    datatypes.JSON
}

// UpdateHackathonInput describes mutable hackathon settings. Nil fields are untouched.
type UpdateHackathonInput struct {
	Name               *string
	Description        *string
	RegistrationStatus *string
	MinTeamSize        *int
	MaxTeamSize        *int
	MaxTeams           *int
	ClearMaxTeams      bool
	Settings           datatypes.JSON
}

// HackathonService owns hackathon-level configuration and the registration
// lifecycle trigger the membership core invokes after team-creating operations.
type HackathonService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewHackathonService constructs a HackathonService instance.
func NewHackathonService(db *gorm.DB, auditService *AuditService) (*HackathonService, error) {
	if db == nil {
		return nil, errors.New("hackathon service: db is required")
	}
	return &HackathonService{db: db, auditService: auditService}, nil
}

// Create registers a new hackathon with the caller as organizer.
func (s *HackathonService) Create(ctx context.Context, callerID string, input CreateHackathonInput) (*models.Hackathon, error) {
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	name := strings.TrimSpace(input.Name)
	if len(name) < 3 {
		return nil, apperrors.NewBadRequest("hackathon name must be at least 3 characters")
	}

	if err := validateTeamSizeBounds(input.MinTeamSize, input.MaxTeamSize); err != nil {
		return nil, err
	}
	if input.MaxTeams != nil && *input.MaxTeams <= 0 {
		return nil, apperrors.NewBadRequest("max teams must be a positive number")
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = slugify(name)
	}
	if slug == "" {
		return nil, apperrors.NewBadRequest("hackathon slug could not be derived from the name")
	}

	hackathon := &models.Hackathon{
		Name:               name,
		Slug:               slug,
		Description:        strings.TrimSpace(input.Description),
		OrganizerID:        callerID,
		RegistrationStatus: models.RegistrationOpen,
		MinTeamSize:        input.MinTeamSize,
		MaxTeamSize:        input.MaxTeamSize,
		MaxTeams:           input.MaxTeams,
		Settings:           input.Settings,
	}

	if err := s.db.WithContext(ctx).Create(hackathon).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewConflict("HACKATHON_EXISTS", "A hackathon with this slug already exists")
		}
		return nil, fmt.Errorf("hackathon service: create hackathon: %w", err)
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &callerID,
		Action:   "hackathon.create",
		Resource: hackathon.ID,
		Result:   "success",
		Metadata: map[string]any{"name": hackathon.Name, "slug": hackathon.Slug},
	})

	return hackathon, nil
}

// GetByID loads a hackathon by identifier.
func (s *HackathonService) GetByID(ctx context.Context, id string) (*models.Hackathon, error) {
	ctx = ensureContext(ctx)

	var hackathon models.Hackathon
	err := s.db.WithContext(ctx).First(&hackathon, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHackathonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("hackathon service: load hackathon: %w", err)
	}
	return &hackathon, nil
}

// GetBySlug loads a hackathon by its URL slug.
func (s *HackathonService) GetBySlug(ctx context.Context, slug string) (*models.Hackathon, error) {
	ctx = ensureContext(ctx)

	var hackathon models.Hackathon
	err := s.db.WithContext(ctx).First(&hackathon, "slug = ?", strings.TrimSpace(slug)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHackathonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("hackathon service: load hackathon: %w", err)
	}
	return &hackathon, nil
}

// List returns all hackathons ordered by creation time descending.
func (s *HackathonService) List(ctx context.Context) ([]models.Hackathon, error) {
	ctx = ensureContext(ctx)

	var hackathons []models.Hackathon
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&hackathons).Error; err != nil {
		return nil, fmt.Errorf("hackathon service: list hackathons: %w", err)
	}
	return hackathons, nil
}

// UpdateSettings modifies hackathon configuration. Only the organizer may change
// settings, and a closed registration can never be reopened here: open-to-closed is
// a one-way transition.
func (s *HackathonService) UpdateSettings(ctx context.Context, callerID, id string, input UpdateHackathonInput) (*models.Hackathon, error) {
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	var result models.Hackathon
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var hackathon models.Hackathon
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&hackathon, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrHackathonNotFound
			}
			return fmt.Errorf("hackathon service: load hackathon: %w", err)
		}

		if hackathon.OrganizerID != callerID {
			return apperrors.ErrForbidden
		}

		updates := map[string]any{}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if len(name) < 3 {
				return apperrors.NewBadRequest("hackathon name must be at least 3 characters")
			}
			updates["name"] = name
		}
		if input.Description != nil {
			updates["description"] = strings.TrimSpace(*input.Description)
		}

		minSize := hackathon.MinTeamSize
		maxSize := hackathon.MaxTeamSize
		if input.MinTeamSize != nil {
			minSize = *input.MinTeamSize
		}
		if input.MaxTeamSize != nil {
			maxSize = *input.MaxTeamSize
		}
		if err := validateTeamSizeBounds(minSize, maxSize); err != nil {
			return err
		}
		if input.MinTeamSize != nil {
			updates["min_team_size"] = minSize
		}
		if input.MaxTeamSize != nil {
			updates["max_team_size"] = maxSize
		}

		if input.ClearMaxTeams {
			updates["max_teams"] = nil
		} else if input.MaxTeams != nil {
			if *input.MaxTeams <= 0 {
				return apperrors.NewBadRequest("max teams must be a positive number")
			}
			updates["max_teams"] = *input.MaxTeams
		}

		if input.RegistrationStatus != nil {
			status := strings.TrimSpace(*input.RegistrationStatus)
			switch status {
			case models.RegistrationClosed:
				updates["registration_status"] = models.RegistrationClosed
			case models.RegistrationOpen:
				if hackathon.RegistrationStatus == models.RegistrationClosed {
					return ErrRegistrationReopen
				}
			default:
				return apperrors.NewBadRequest("registration status must be open or closed")
			}
		}

		if input.Settings != nil {
			updates["settings"] = input.Settings
		}

		if len(updates) > 0 {
			if err := tx.Model(&hackathon).Updates(updates).Error; err != nil {
				return fmt.Errorf("hackathon service: update hackathon: %w", err)
			}
		}

		if err := tx.First(&result, "id = ?", id).Error; err != nil {
			return fmt.Errorf("hackathon service: reload hackathon: %w", err)
		}

		recordAudit(s.auditService, ctx, AuditEntry{
			UserID:   &callerID,
			Action:   "hackathon.update_settings",
			Resource: hackathon.ID,
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

// CheckAndUpdateRegistrationStatus closes registration once the team cap is reached.
// It is idempotent and one-directional: it never reopens registration, and team
// deletion never re-invokes it. Returns whether a transition occurred.
func (s *HackathonService) CheckAndUpdateRegistrationStatus(ctx context.Context, hackathonID string) (bool, error) {
	ctx = ensureContext(ctx)

	var transitioned bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		transitioned, err = s.applyRegistrationCap(tx, hackathonID)
		return err
	})
	if err != nil {
		return false, err
	}

	if transitioned {
		recordAudit(s.auditService, ctx, AuditEntry{
			Action:   "hackathon.registration_closed",
			Resource: hackathonID,
			Result:   "success",
		})
	}

	return transitioned, nil
}

// applyRegistrationCap is the transaction-scoped body of the lifecycle trigger, shared
// with team-creating operations so the status flip commits with the team insert. The
// row lock serializes the team count against concurrent team-creating transactions.
func (s *HackathonService) applyRegistrationCap(tx *gorm.DB, hackathonID string) (bool, error) {
	var hackathon models.Hackathon
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&hackathon, "id = ?", hackathonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrHackathonNotFound
		}
		return false, fmt.Errorf("hackathon service: load hackathon: %w", err)
	}

	if hackathon.MaxTeams == nil || hackathon.RegistrationStatus != models.RegistrationOpen {
		return false, nil
	}

	var teams int64
	if err := tx.Model(&models.Team{}).Where("hackathon_id = ?", hackathonID).Count(&teams).Error; err != nil {
		return false, fmt.Errorf("hackathon service: count teams: %w", err)
	}

	if teams < int64(*hackathon.MaxTeams) {
		return false, nil
	}

	if err := tx.Model(&hackathon).
		Update("registration_status", models.RegistrationClosed).Error; err != nil {
		return false, fmt.Errorf("hackathon service: close registration: %w", err)
	}

	metrics.RegistrationClosures.Inc()
	return true, nil
}

func validateTeamSizeBounds(minSize, maxSize int) error {
	if minSize < 1 {
		return apperrors.NewBadRequest("min team size must be at least 1")
	}
	if maxSize < minSize {
		return apperrors.NewBadRequest("max team size must be greater than or equal to min team size")
	}
	return nil
}
