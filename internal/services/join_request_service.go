package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/danielroh/hackmate/internal/models"
	apperrors "github.com/danielroh/hackmate/pkg/errors"
)

var (
	// ErrJoinRequestNotFound indicates the requested join request does not exist.
	ErrJoinRequestNotFound = apperrors.New("JOIN_REQUEST_NOT_FOUND", "Join request not found", http.StatusNotFound)
	// ErrDuplicateJoinRequest signals a pending request already exists for this team.
	ErrDuplicateJoinRequest = apperrors.NewConflict("DUPLICATE_JOIN_REQUEST", "A pending join request already exists for this team")
	// ErrJoinRequestResolved rejects accepting a request that was already rejected.
	ErrJoinRequestResolved = apperrors.NewConflict("JOIN_REQUEST_RESOLVED", "Join request has already been resolved")
)

// JoinRequestDecision is the resolution applied by HandleJoinRequest.
type JoinRequestDecision string

const (
	DecisionAccept JoinRequestDecision = "accept"
	DecisionReject JoinRequestDecision = "reject"
)

// JoinRequestService owns the request-to-join workflow: a participant asks, and the
// team owner or hackathon organizer resolves. Acceptance re-validates every join
// invariant at resolution time, because state may have drifted since the request.
type JoinRequestService struct {
	db           *gorm.DB
	auditService *AuditService
}

// NewJoinRequestService constructs a JoinRequestService instance.
func NewJoinRequestService(db *gorm.DB, auditService *AuditService) (*JoinRequestService, error) {
	if db == nil {
		return nil, errors.New("join request service: db is required")
	}
	return &JoinRequestService{db: db, auditService: auditService}, nil
}

// Create files a pending join request for the caller. Preconditions mirror a direct
// join, plus at most one pending request per (team, user) pair.
func (s *JoinRequestService) Create(ctx context.Context, callerID, teamID, message string) (request *models.TeamJoinRequest, err error) {
	defer func() { observeMembership("request_to_join", err) }()
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team, hackathon, err := loadTeamWithHackathon(tx, teamID)
		if err != nil {
			return err
		}
		if err := requireJoinEligibility(tx, team, hackathon, callerID, true); err != nil {
			return err
		}

		var pending int64
		if err := tx.Model(&models.TeamJoinRequest{}).
			Where("team_id = ? AND user_id = ? AND status = ?", team.ID, callerID, models.JoinRequestPending).
			Count(&pending).Error; err != nil {
			return fmt.Errorf("join request service: check pending requests: %w", err)
		}
		if pending > 0 {
			return ErrDuplicateJoinRequest
		}

		request = &models.TeamJoinRequest{
			TeamID:      team.ID,
			HackathonID: hackathon.ID,
			UserID:      callerID,
			Message:     strings.TrimSpace(message),
			Status:      models.JoinRequestPending,
		}
		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("join request service: create request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &callerID,
		Action:   "join_request.create",
		Resource: request.TeamID,
		Result:   "success",
	})

	return request, nil
}

// Handle resolves a pending request. Accepting re-checks registration status,
// the requester's one-team-per-hackathon invariant, and capacity at acceptance time;
// when any of those fail the request is marked rejected and the failure is returned.
// Rejecting is unconditional and idempotent.
func (s *JoinRequestService) Handle(ctx context.Context, callerID, requestID string, decision JoinRequestDecision) (result *MembershipResult, err error) {
	defer func() { observeMembership("handle_join_request", err) }()
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if decision != DecisionAccept && decision != DecisionReject {
		return nil, apperrors.NewBadRequest("decision must be accept or reject")
	}

	var (
		action      string
		joinFailure error
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.TeamJoinRequest
		if err := tx.First(&request, "id = ?", strings.TrimSpace(requestID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrJoinRequestNotFound
			}
			return fmt.Errorf("join request service: load request: %w", err)
		}

		team, hackathon, err := loadTeamWithHackathonForUpdate(tx, request.TeamID)
		if err != nil {
			return err
		}
		if err := requireTeamManager(tx, team, hackathon, callerID); err != nil {
			return err
		}

		if decision == DecisionReject {
			action = "join_request.reject"
			if request.Status == models.JoinRequestRejected {
				return nil // already rejected, nothing to do
			}
			if request.Status == models.JoinRequestAccepted {
				return ErrJoinRequestResolved
			}
			return markRequest(tx, &request, models.JoinRequestRejected)
		}

		action = "join_request.accept"
		switch request.Status {
		case models.JoinRequestAccepted:
			result = &MembershipResult{TeamID: team.ID, HackathonID: hackathon.ID}
			return nil
		case models.JoinRequestRejected:
			return ErrJoinRequestResolved
		}

		// Re-validate at acceptance time; the recruiting flag is not re-checked
		// because the owner's approval is the authorization. A failed re-validation
		// must still commit the rejected status, so the failure is carried out of
		// the transaction instead of returned from it.
		if joinErr := requireJoinEligibility(tx, team, hackathon, request.UserID, false); joinErr != nil {
			if err := markRequest(tx, &request, models.JoinRequestRejected); err != nil {
				return err
			}
			joinFailure = joinErr
			return nil
		}

		if err := insertMember(tx, team, hackathon, request.UserID, models.TeamRoleMember); err != nil {
			return err
		}
		if err := markRequest(tx, &request, models.JoinRequestAccepted); err != nil {
			return err
		}

		result = &MembershipResult{TeamID: team.ID, HackathonID: hackathon.ID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if joinFailure != nil {
		recordAudit(s.auditService, ctx, AuditEntry{
			UserID:   &callerID,
			Action:   action,
			Resource: requestID,
			Result:   "rejected",
		})
		return nil, joinFailure
	}

	recordAudit(s.auditService, ctx, AuditEntry{
		UserID:   &callerID,
		Action:   action,
		Resource: requestID,
		Result:   "success",
	})

	return result, nil
}

// ListForTeam returns the team's join requests, newest first. Only the team owner or
// the hackathon organizer may list them.
func (s *JoinRequestService) ListForTeam(ctx context.Context, callerID, teamID string) ([]models.TeamJoinRequest, error) {
	ctx = ensureContext(ctx)

	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	db := s.db.WithContext(ctx)
	team, hackathon, err := loadTeamWithHackathon(db, teamID)
	if err != nil {
		return nil, err
	}
	if err := requireTeamManager(db, team, hackathon, callerID); err != nil {
		return nil, err
	}

	var requests []models.TeamJoinRequest
	if err := db.
		Preload("User").
		Where("team_id = ?", team.ID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("join request service: list requests: %w", err)
	}
	return requests, nil
}

func markRequest(tx *gorm.DB, request *models.TeamJoinRequest, status string) error {
	if err := tx.Model(request).Update("status", status).Error; err != nil {
		return fmt.Errorf("join request service: mark %s: %w", status, err)
	}
	request.Status = status
	return nil
}
