package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
)

// ClientStorages groups the device agent's local repositories.
type ClientStorages struct {
	DB *DB

	// OutboxRepository queues telemetry until the server accepts it.
	OutboxRepository OutboxRepository

	// SessionRepository holds the token of the last successful login.
	SessionRepository LocalSessionRepository
}

// NewClientStorages opens the SQLite file named by cfg.DB.DSN, applies the
// agent schema and wires the repositories on it.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.MigrateAgent(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		DB:                db,
		OutboxRepository:  NewOutboxRepository(db, logger),
		SessionRepository: NewLocalSessionRepository(db, logger),
	}, nil
}
