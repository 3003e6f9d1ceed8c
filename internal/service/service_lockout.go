package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/metrics"
	"github.com/MKhiriev/go-field-keeper/internal/store"
	"github.com/MKhiriev/go-field-keeper/internal/validators"
	"github.com/MKhiriev/go-field-keeper/models"
)

// lockoutService keeps two gates with different expiry rules. The
// per-credential lock is derived from the attempt log and decays once the
// newest failure ages past the lock duration. The per-origin lock is a
// recorded row whose expiry ignores later traffic.
type lockoutService struct {
	attempts store.LoginAttemptRepository
	lockouts store.OriginLockoutRepository
	audit    AuditService
	metrics  *metrics.Metrics

	logger *logger.Logger
}

func NewLockoutService(attempts store.LoginAttemptRepository, lockouts store.OriginLockoutRepository, audit AuditService, m *metrics.Metrics, logger *logger.Logger) LockoutService {
	return &lockoutService{
		attempts: attempts,
		lockouts: lockouts,
		audit:    audit,
		metrics:  m,
		logger:   logger,
	}
}

func (l *lockoutService) ActiveOriginLock(ctx context.Context, origin string, now time.Time) (*models.OriginLockout, error) {
	lock, err := l.lockouts.FindActive(ctx, origin, now)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*lockoutService.ActiveOriginLock").Msg("error reading origin lockout")
		return nil, fmt.Errorf("error reading origin lockout: %w", err)
	}
	return lock, nil
}

func (l *lockoutService) CredentialLocked(ctx context.Context, username string, origin *string, settings models.Settings, now time.Time) (bool, error) {
	status, err := l.attempts.LockStatus(ctx, username, origin, now.Add(-settings.LockWindow()))
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*lockoutService.CredentialLocked").Msg("error reading lock status")
		return false, fmt.Errorf("error reading lock status: %w", err)
	}

	if status.RecentFailures < settings.LockMaxFailures || status.LastFailure == nil {
		return false, nil
	}
	return now.Sub(*status.LastFailure) < settings.LockDuration(), nil
}

func (l *lockoutService) RecordFailure(ctx context.Context, username string, origin *string, settings models.Settings, now time.Time) (*models.OriginLockout, error) {
	log := logger.FromContext(ctx)

	err := l.attempts.RecordAttempt(ctx, models.LoginAttempt{
		Username:  username,
		Origin:    origin,
		Succeeded: false,
		CreatedAt: now,
	})
	if err != nil {
		log.Err(err).Str("func", "*lockoutService.RecordFailure").Msg("error recording failed attempt")
		return nil, fmt.Errorf("error recording failed attempt: %w", err)
	}

	if origin == nil {
		return nil, nil
	}

	failures, err := l.attempts.CountOriginFailures(ctx, *origin, now.Add(-settings.IPWindow()))
	if err != nil {
		log.Err(err).Str("func", "*lockoutService.RecordFailure").Msg("error counting origin failures")
		return nil, fmt.Errorf("error counting origin failures: %w", err)
	}
	if failures <= settings.IPMaxFailures {
		return nil, nil
	}

	active, err := l.lockouts.FindActive(ctx, *origin, now)
	if err != nil {
		return nil, fmt.Errorf("error reading origin lockout: %w", err)
	}
	if active != nil {
		return active, nil
	}

	lock, err := l.lockouts.RecordLockout(ctx, models.OriginLockout{
		Origin:      *origin,
		Username:    &username,
		LockedAt:    now,
		LockedUntil: now.Add(settings.IPLockDuration()),
	})
	if err != nil {
		log.Err(err).Str("func", "*lockoutService.RecordFailure").Msg("error recording origin lockout")
		return nil, fmt.Errorf("error recording origin lockout: %w", err)
	}

	log.Warn().
		Str("ip", *origin).
		Int("failures", failures).
		Time("locked_until", lock.LockedUntil).
		Msg("origin locked out")
	l.metrics.OriginLocked()
	l.audit.Record(ctx, nil, models.AuditOriginLockout, nil, map[string]any{
		"ip":          *origin,
		"username":    username,
		"failures":    failures,
		"lockedUntil": lock.LockedUntil,
	})

	return &lock, nil
}

func (l *lockoutService) RecordSuccess(ctx context.Context, username string, origin *string, now time.Time) error {
	err := l.attempts.RecordAttempt(ctx, models.LoginAttempt{
		Username:  username,
		Origin:    origin,
		Succeeded: true,
		CreatedAt: now,
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*lockoutService.RecordSuccess").Msg("error recording attempt")
		return fmt.Errorf("error recording attempt: %w", err)
	}
	return nil
}

func (l *lockoutService) Clear(ctx context.Context, adminID int64, req models.ClearLockoutRequest) error {
	log := logger.FromContext(ctx)

	username := validators.CanonicalUsername(req.Username)
	if username == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, validators.ErrEmptyUsername)
	}

	origin := req.IP
	if origin != nil {
		trimmed := strings.TrimSpace(*origin)
		origin = &trimmed
		if trimmed == "" {
			origin = nil
		}
	}

	attempts, err := l.attempts.DeleteFailures(ctx, username, origin)
	if err != nil {
		log.Err(err).Str("func", "*lockoutService.Clear").Msg("error deleting failed attempts")
		return fmt.Errorf("error deleting failed attempts: %w", err)
	}

	lockouts, err := l.lockouts.DeleteLockouts(ctx, username, origin)
	if err != nil {
		log.Err(err).Str("func", "*lockoutService.Clear").Msg("error deleting origin lockouts")
		return fmt.Errorf("error deleting origin lockouts: %w", err)
	}

	details := map[string]any{
		"username":        username,
		"attemptsDeleted": attempts,
		"lockoutsDeleted": lockouts,
	}
	if origin != nil {
		details["ip"] = *origin
	}
	l.audit.Record(ctx, &adminID, models.AuditLockoutClear, nil, details)

	return nil
}
