package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/models"
)

type originLockoutRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewOriginLockoutRepository(db *DB, logger *logger.Logger) OriginLockoutRepository {
	logger.Debug().Msg("creating origin lockout repository")
	return &originLockoutRepository{
		db:     db,
		logger: logger,
	}
}

func (r *originLockoutRepository) FindActive(ctx context.Context, origin string, now time.Time) (*models.OriginLockout, error) {
	log := logger.FromContext(ctx)

	var (
		lockout  models.OriginLockout
		username sql.NullString
	)
	err := r.db.QueryRowContext(ctx, findActiveOriginLockout, origin, now).Scan(
		&lockout.ID,
		&lockout.Origin,
		&username,
		&lockout.LockedAt,
		&lockout.LockedUntil,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Err(err).Str("func", "*originLockoutRepository.FindActive").Msg("error reading origin lockout")
		return nil, r.db.classify(fmt.Errorf("%w: %w", ErrScanningRow, err))
	}

	lockout.Username = nullStringPtr(username)
	return &lockout, nil
}

func (r *originLockoutRepository) RecordLockout(ctx context.Context, lockout models.OriginLockout) (models.OriginLockout, error) {
	log := logger.FromContext(ctx)

	err := r.db.QueryRowContext(ctx, recordOriginLockout, lockout.Origin, lockout.Username, lockout.LockedAt, lockout.LockedUntil).
		Scan(&lockout.ID)
	if err != nil {
		log.Err(err).Str("func", "*originLockoutRepository.RecordLockout").Str("ip", lockout.Origin).Msg("error recording origin lockout")
		return models.OriginLockout{}, r.db.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}

	return lockout, nil
}

func (r *originLockoutRepository) DeleteLockouts(ctx context.Context, username string, origin *string) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteLockoutsQuery(username, origin)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*originLockoutRepository.DeleteLockouts").Msg("error deleting origin lockouts")
		return 0, r.db.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	return result.RowsAffected()
}
