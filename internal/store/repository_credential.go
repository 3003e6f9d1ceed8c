package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

const credentialsPrimaryKey = "credentials_pkey"

// credentialRepository is the PostgreSQL-backed implementation of
// [CredentialRepository].
type credentialRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewCredentialRepository constructs a [CredentialRepository] backed by the
// provided database connection and logger.
func NewCredentialRepository(db *DB, logger *logger.Logger) CredentialRepository {
	logger.Debug().Msg("creating credential repository")
	return &credentialRepository{
		db:     db,
		logger: logger,
	}
}

// CreateCredential inserts a credential whose username is already canonical.
//
// Error handling:
//   - unique violation on the primary key → [ErrActorHasCredential].
//   - any other unique violation → [ErrUsernameTaken].
func (r *credentialRepository) CreateCredential(ctx context.Context, credential models.Credential) (models.Credential, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createCredential,
		credential.ActorID,
		credential.ProjectID,
		credential.Username,
		credential.PasswordDigest,
		credential.DisplayName,
		credential.Phone,
		credential.Active,
	)

	if err := row.Scan(&credential.CreatedAt, &credential.UpdatedAt); err != nil {
		log.Err(err).Str("func", "*credentialRepository.CreateCredential").Msg("error inserting credential")

		if postgresError(err) == pgerrcode.UniqueViolation {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == credentialsPrimaryKey {
				return models.Credential{}, ErrActorHasCredential
			}
			return models.Credential{}, ErrUsernameTaken
		}
		return models.Credential{}, r.db.classify(fmt.Errorf("%w: %w", ErrExecutingQuery, err))
	}

	return credential, nil
}

func (r *credentialRepository) FindByUsername(ctx context.Context, username string) (models.Credential, error) {
	return r.findOne(ctx, "*credentialRepository.FindByUsername", findCredentialByUsername, username)
}

func (r *credentialRepository) FindByActorID(ctx context.Context, actorID int64) (models.Credential, error) {
	return r.findOne(ctx, "*credentialRepository.FindByActorID", findCredentialByActorID, actorID)
}

func (r *credentialRepository) findOne(ctx context.Context, funcName, query string, arg any) (models.Credential, error) {
	log := logger.FromContext(ctx)

	var (
		found       models.Credential
		displayName sql.NullString
		phone       sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&found.ActorID,
		&found.ProjectID,
		&found.Username,
		&found.PasswordDigest,
		&displayName,
		&phone,
		&found.Active,
		&found.CreatedAt,
		&found.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Credential{}, ErrCredentialNotFound
	}
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error selecting credential")
		return models.Credential{}, r.db.classify(fmt.Errorf("%w: %w", ErrScanningRow, err))
	}

	found.DisplayName = nullStringPtr(displayName)
	found.Phone = nullStringPtr(phone)

	return found, nil
}

func (r *credentialRepository) UpdatePasswordDigest(ctx context.Context, actorID int64, digest string) error {
	return r.updateOne(ctx, "*credentialRepository.UpdatePasswordDigest", updatePasswordDigest, actorID, digest)
}

func (r *credentialRepository) SetActive(ctx context.Context, actorID int64, active bool) error {
	return r.updateOne(ctx, "*credentialRepository.SetActive", setCredentialActive, actorID, active)
}

func (r *credentialRepository) UpdatePhone(ctx context.Context, actorID int64, phone *string) error {
	return r.updateOne(ctx, "*credentialRepository.UpdatePhone", updateCredentialPhone, actorID, phone)
}

// updateOne runs a single-row UPDATE keyed by actor id and reports
// [ErrCredentialNotFound] when nothing matched.
func (r *credentialRepository) updateOne(ctx context.Context, funcName, query string, actorID int64, value any) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, query, actorID, value)
	if err != nil {
		log.Err(err).Str("func", funcName).Int64("actor_id", actorID).Msg("error updating credential")
		return r.db.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrCredentialNotFound
	}

	return nil
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
