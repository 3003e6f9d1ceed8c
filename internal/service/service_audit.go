package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/store"
	"github.com/MKhiriev/go-field-keeper/models"
)

type auditService struct {
	auditRepository store.AuditRepository

	now    func() time.Time
	logger *logger.Logger
}

func NewAuditService(auditRepository store.AuditRepository, logger *logger.Logger) AuditService {
	return &auditService{auditRepository: auditRepository, now: time.Now, logger: logger}
}

func (a *auditService) Record(ctx context.Context, actorID *int64, action string, subject *int64, details map[string]any) {
	entry := models.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Subject:  subject,
		Details:  details,
		LoggedAt: a.now().UTC(),
	}

	if err := a.auditRepository.Record(ctx, entry); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("func", "*auditService.Record").
			Str("action", action).
			Msg("audit entry was not recorded")
	}
}
