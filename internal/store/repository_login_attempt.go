package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/models"
)

type loginAttemptRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewLoginAttemptRepository(db *DB, logger *logger.Logger) LoginAttemptRepository {
	logger.Debug().Msg("creating login attempt repository")
	return &loginAttemptRepository{
		db:     db,
		logger: logger,
	}
}

func (r *loginAttemptRepository) RecordAttempt(ctx context.Context, attempt models.LoginAttempt) error {
	log := logger.FromContext(ctx)

	_, err := r.db.ExecContext(ctx, recordLoginAttempt, attempt.Username, attempt.Origin, attempt.Succeeded, attempt.CreatedAt)
	if err != nil {
		log.Err(err).Str("func", "*loginAttemptRepository.RecordAttempt").Msg("error inserting login attempt")
		return r.db.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	return nil
}

func (r *loginAttemptRepository) LockStatus(ctx context.Context, username string, origin *string, since time.Time) (models.LockStatus, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildLockStatusQuery(username, origin, since)
	if err != nil {
		log.Err(err).Str("func", "*loginAttemptRepository.LockStatus").Msg("error building query")
		return models.LockStatus{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		status models.LockStatus
		last   sql.NullTime
	)
	if err = r.db.QueryRowContext(ctx, query, args...).Scan(&status.RecentFailures, &last); err != nil {
		log.Err(err).Str("func", "*loginAttemptRepository.LockStatus").Msg("error reading lock status")
		return models.LockStatus{}, r.db.classify(fmt.Errorf("%w: %w", ErrScanningRow, err))
	}

	if last.Valid {
		status.LastFailure = &last.Time
	}

	return status, nil
}

func (r *loginAttemptRepository) CountOriginFailures(ctx context.Context, origin string, since time.Time) (int, error) {
	log := logger.FromContext(ctx)

	var count int
	if err := r.db.QueryRowContext(ctx, countOriginFailures, origin, since).Scan(&count); err != nil {
		log.Err(err).Str("func", "*loginAttemptRepository.CountOriginFailures").Msg("error counting origin failures")
		return 0, r.db.classify(fmt.Errorf("%w: %w", ErrScanningRow, err))
	}

	return count, nil
}

func (r *loginAttemptRepository) DeleteFailures(ctx context.Context, username string, origin *string) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteFailuresQuery(username, origin)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*loginAttemptRepository.DeleteFailures").Msg("error deleting failed attempts")
		return 0, r.db.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	return result.RowsAffected()
}
