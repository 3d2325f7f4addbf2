package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/danielroh/hackmate/internal/models"
	"github.com/danielroh/hackmate/internal/services"
	"github.com/danielroh/hackmate/pkg/logger"
)

const (
	defaultAuditRetentionDays = 90
	defaultStaleRequestAge    = 30 * 24 * time.Hour
	defaultAuditSpec          = "@daily"
	defaultRequestSpec        = "@daily"
)

// Cleaner coordinates background maintenance tasks: pruning stale audit logs and
// removing pending join requests and invitations that were never resolved.
type Cleaner struct {
	db        *gorm.DB
	audit     *services.AuditService
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	enabled   bool
	retention int
	staleAge  time.Duration

	auditSchedule   string
	requestSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for scheduling and cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithStaleRequestAge adjusts how old a pending join request or invitation must be
// before it is pruned.
func WithStaleRequestAge(age time.Duration) Option {
	return func(cleaner *Cleaner) {
		if age > 0 {
			cleaner.staleAge = age
		}
	}
}

// WithAuditSchedule overrides the cron expression for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// WithRequestSchedule overrides the cron expression for stale request pruning.
func WithRequestSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.requestSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency results in
// the corresponding cleanup job being skipped.
func NewCleaner(db *gorm.DB, audit *services.AuditService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:              db,
		audit:           audit,
		now:             time.Now,
		retention:       defaultAuditRetentionDays,
		staleAge:        defaultStaleRequestAge,
		auditSchedule:   defaultAuditSpec,
		requestSchedule: defaultRequestSpec,
		log:             logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.audit != nil || cleaner.db != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at least one
// cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.audit != nil && c.retention > 0 {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			ctx := context.Background()
			if _, err := c.audit.CleanupOlderThan(ctx, c.retention); err != nil {
				c.log.Warn("audit cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.db != nil {
		if _, err := c.cron.AddFunc(c.requestSchedule, func() {
			ctx := context.Background()
			if _, err := CleanupStaleRequests(ctx, c.db, c.now().Add(-c.staleAge)); err != nil {
				c.log.Warn("stale request cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.audit != nil && c.retention > 0 {
		if _, err := c.audit.CleanupOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.db != nil {
		if _, err := CleanupStaleRequests(ctx, c.db, c.now().Add(-c.staleAge)); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// StaleRequestStats captures the number of records removed for each pending record type.
type StaleRequestStats struct {
	JoinRequests int64
	Invitations  int64
}

// CleanupStaleRequests removes pending join requests and invitations created before the
// cutoff. Resolved records are kept for history.
func CleanupStaleRequests(ctx context.Context, db *gorm.DB, cutoff time.Time) (StaleRequestStats, error) {
	if db == nil {
		return StaleRequestStats{}, errors.New("cleanup requests: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stats := StaleRequestStats{}

	if result := db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.JoinRequestPending, cutoff).
		Delete(&models.TeamJoinRequest{}); result.Error != nil {
		return stats, fmt.Errorf("cleanup requests: join requests: %w", result.Error)
	} else {
		stats.JoinRequests = result.RowsAffected
	}

	if result := db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.InvitationPending, cutoff).
		Delete(&models.TeamInvitation{}); result.Error != nil {
		return stats, fmt.Errorf("cleanup requests: invitations: %w", result.Error)
	} else {
		stats.Invitations = result.RowsAffected
	}

	return stats, nil
}
