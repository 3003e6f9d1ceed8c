package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/models"
)

// auditRepository appends to the audits table. Details are stored as JSONB.
type auditRepository struct {
	logger *logger.Logger
	db     *DB
}

func NewAuditRepository(db *DB, logger *logger.Logger) AuditRepository {
	logger.Debug().Msg("creating audit repository")
	return &auditRepository{
		db:     db,
		logger: logger,
	}
}

func (r *auditRepository) Record(ctx context.Context, entry models.AuditEntry) error {
	log := logger.FromContext(ctx)

	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	encoded, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMarshallingJSON, err)
	}

	_, err = r.db.ExecContext(ctx, insertAudit, entry.ActorID, entry.Action, entry.Subject, string(encoded), entry.LoggedAt)
	if err != nil {
		log.Err(err).Str("func", "*auditRepository.Record").Str("action", entry.Action).Msg("failed to insert audit entry")
		return r.db.classify(fmt.Errorf("%w: %w", ErrExecutingStatement, err))
	}

	return nil
}
