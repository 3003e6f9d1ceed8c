package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/models"
)

type localSessionRepository struct {
	*DB
	logger *logger.Logger
}

func NewLocalSessionRepository(db *DB, logger *logger.Logger) LocalSessionRepository {
	return &localSessionRepository{
		DB:     db,
		logger: logger,
	}
}

func (l *localSessionRepository) Save(ctx context.Context, session models.LocalSession) error {
	_, err := l.DB.ExecContext(ctx, saveLocalSession,
		session.ActorID,
		session.ProjectID,
		session.Token,
		session.ExpiresAt,
		session.Invalidated,
	)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "localSessionRepository.Save").Msg("failed to save local session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (l *localSessionRepository) Load(ctx context.Context) (models.LocalSession, error) {
	var session models.LocalSession

	err := l.DB.QueryRowContext(ctx, loadLocalSession).Scan(
		&session.ActorID,
		&session.ProjectID,
		&session.Token,
		&session.ExpiresAt,
		&session.Invalidated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LocalSession{}, ErrLocalSessionNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "localSessionRepository.Load").Msg("failed to load local session")
		return models.LocalSession{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return session, nil
}

func (l *localSessionRepository) MarkInvalidated(ctx context.Context) error {
	if _, err := l.DB.ExecContext(ctx, invalidateLocalSession); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (l *localSessionRepository) Clear(ctx context.Context) error {
	if _, err := l.DB.ExecContext(ctx, clearLocalSession); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}
