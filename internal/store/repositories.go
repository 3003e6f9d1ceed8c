package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
)

// Repositories groups every PostgreSQL repository of the server.
type Repositories struct {
	DB *DB

	CredentialRepository    CredentialRepository
	LoginAttemptRepository  LoginAttemptRepository
	OriginLockoutRepository OriginLockoutRepository
	SessionRepository       SessionRepository
	TelemetryRepository     TelemetryRepository
	SettingsRepository      SettingsRepository
	AuditRepository         AuditRepository
}

// NewRepositories connects to PostgreSQL, applies migrations and builds all
// repositories on the shared pool.
func NewRepositories(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Repositories, error) {
	logger.Info().Msg("creating new repositories...")

	db, err := NewConnectPostgres(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return newRepositoriesOnDB(db, logger), nil
}

func newRepositoriesOnDB(db *DB, logger *logger.Logger) *Repositories {
	return &Repositories{
		DB:                      db,
		CredentialRepository:    NewCredentialRepository(db, logger),
		LoginAttemptRepository:  NewLoginAttemptRepository(db, logger),
		OriginLockoutRepository: NewOriginLockoutRepository(db, logger),
		SessionRepository:       NewSessionRepository(db, logger),
		TelemetryRepository:     NewTelemetryRepository(db, logger),
		SettingsRepository:      NewSettingsRepository(db, logger),
		AuditRepository:         NewAuditRepository(db, logger),
	}
}
