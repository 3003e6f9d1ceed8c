// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

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

// sessionRepository is the PostgreSQL-backed implementation of
// [SessionRepository]. Rows are never deleted: revocation and eviction set
// expires_at to the current time.
type sessionRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewSessionRepository(db *DB, logger *logger.Logger) SessionRepository {
	logger.Debug().Msg("creating session repository")
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

// CreateWithCap stores session and trims the actor's live sessions down to
// maxLive, newest first. The credential row is locked for the duration of the
// transaction so concurrent logins for one actor are admitted one at a time.
func (r *sessionRepository) CreateWithCap(ctx context.Context, session models.Session, maxLive int, now time.Time) (models.Session, int64, error) {
	log := logger.FromContext(ctx).With().
		Str("func", "*sessionRepository.CreateWithCap").
		Int64("actor_id", session.ActorID).
		Logger()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Msg("failed to begin transaction")
		return models.Session{}, 0, r.db.classify(fmt.Errorf("%w: %w", ErrBeginningTransaction, err))
	}
	defer tx.Rollback()

	var locked int64
	err = tx.QueryRowContext(ctx, lockCredentialRow, session.ActorID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, 0, ErrCredentialNotFound
	}
	if err != nil {
		log.Err(err).Msg("failed to lock credential row")
		return models.Session{}, 0, r.db.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}

	err = tx.QueryRowContext(ctx, insertSession,
		session.Token,
		session.ActorID,
		session.CreatedAt,
		session.ExpiresAt,
		session.IP,
		session.UserAgent,
		session.DeviceID,
		session.Comments,
	).Scan(&session.ID)
	if err != nil {
		log.Err(err).Msg("failed to insert session")
		return models.Session{}, 0, r.db.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}

	result, err := tx.ExecContext(ctx, evictSurplusSessions, session.ActorID, now, maxLive)
	if err != nil {
		log.Err(err).Msg("failed to evict surplus sessions")
		return models.Session{}, 0, r.db.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}
	evicted, err := result.RowsAffected()
	if err != nil {
		return models.Session{}, 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Msg("failed to commit transaction")
		return models.Session{}, 0, r.db.classify(fmt.Errorf("%w: %w", ErrCommitingTransaction, err))
	}

	if evicted > 0 {
		log.Info().Int64("evicted", evicted).Int("cap", maxLive).Msg("oldest live sessions evicted")
	}

	return session, evicted, nil
}

func (r *sessionRepository) FindByToken(ctx context.Context, token string) (models.Session, error) {
	log := logger.FromContext(ctx)

	session, err := scanSession(r.db.QueryRowContext(ctx, findSessionByToken, token))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.FindByToken").Msg("error reading session")
		return models.Session{}, r.db.classify(fmt.Errorf("%w: %w", ErrScanningRow, err))
	}

	return session, nil
}

func (r *sessionRepository) RevokeToken(ctx context.Context, actorID int64, token string, now time.Time) (int64, error) {
	return r.exec(ctx, "*sessionRepository.RevokeToken", revokeSessionToken, token, actorID, now)
}

func (r *sessionRepository) RevokeAll(ctx context.Context, actorID int64, exceptToken *string, now time.Time) (int64, error) {
	if exceptToken != nil {
		return r.exec(ctx, "*sessionRepository.RevokeAll", revokeOtherActorSessions, actorID, now, *exceptToken)
	}
	return r.exec(ctx, "*sessionRepository.RevokeAll", revokeActorSessions, actorID, now)
}

func (r *sessionRepository) exec(ctx context.Context, funcName, query string, args ...any) (int64, error) {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error revoking sessions")
		return 0, r.db.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	return result.RowsAffected()
}

// List returns one page of sessions and the total number of matches.
func (r *sessionRepository) List(ctx context.Context, filter models.SessionFilter, page models.Page, now time.Time) ([]models.Session, int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListSessionsQuery(filter, page, now)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.List").Msg("failed to create query")
		return nil, 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*sessionRepository.List").Msg("failed to execute query")
		return nil, 0, r.db.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}
	defer rows.Close()

	var (
		sessions = make([]models.Session, 0, page.Normalize().Limit)
		total    int64
	)
	for rows.Next() {
		session, scanErr := scanSession(rows, &total)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "*sessionRepository.List").Msg("failed to scan session row")
			return nil, 0, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		sessions = append(sessions, session)
	}
	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", "*sessionRepository.List").Msg("error occurred during rows iteration")
		return nil, 0, r.db.classify(fmt.Errorf("%w: %w", ErrScanningRows, err))
	}

	return sessions, total, nil
}

func (r *sessionRepository) CountLive(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, countLiveSessions, now).Scan(&count); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sessionRepository.CountLive").Msg("error counting live sessions")
		return 0, r.db.classify(fmt.Errorf("%w: %w", ErrScanningRow, err))
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession reads the session column list shared by lookups and listings.
// Extra destinations (such as a window count) are appended after it.
func scanSession(row rowScanner, extra ...any) (models.Session, error) {
	var (
		session   models.Session
		expiresAt sql.NullTime
		ip        sql.NullString
		userAgent sql.NullString
		deviceID  sql.NullString
		comments  sql.NullString
	)

	dest := []any{
		&session.ID,
		&session.Token,
		&session.ActorID,
		&session.ProjectID,
		&session.CreatedAt,
		&expiresAt,
		&ip,
		&userAgent,
		&deviceID,
		&comments,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return models.Session{}, err
	}

	if expiresAt.Valid {
		session.ExpiresAt = &expiresAt.Time
	}
	session.IP = nullStringPtr(ip)
	session.UserAgent = nullStringPtr(userAgent)
	session.DeviceID = nullStringPtr(deviceID)
	session.Comments = nullStringPtr(comments)

	return session, nil
}
