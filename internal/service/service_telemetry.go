package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/metrics"
	"github.com/MKhiriev/go-field-keeper/internal/store"
	"github.com/MKhiriev/go-field-keeper/internal/validators"
	"github.com/MKhiriev/go-field-keeper/models"
)

type telemetryService struct {
	telemetry store.TelemetryRepository
	metrics   *metrics.Metrics

	now    func() time.Time
	logger *logger.Logger
}

// NewTelemetryService expects payloads that were already validated, see
// [NewTelemetryValidationService].
func NewTelemetryService(telemetry store.TelemetryRepository, m *metrics.Metrics, logger *logger.Logger) TelemetryService {
	return &telemetryService{
		telemetry: telemetry,
		metrics:   m,
		now:       time.Now,
		logger:    logger,
	}
}

func (t *telemetryService) Submit(ctx context.Context, session models.SessionValidity, projectID int64, submission models.TelemetrySubmission) ([]models.TelemetryResult, error) {
	log := logger.FromContext(ctx)

	if session.ProjectID != projectID {
		return nil, fmt.Errorf("%w: project does not match the session", ErrEntityNotFound)
	}
	if submission.AppUserID != nil && *submission.AppUserID != session.ActorID {
		return nil, fmt.Errorf("%w: appUserId does not match the authenticated actor", ErrInvalidInput)
	}

	deviceTime, err := validators.ParseUTCDateTime(submission.DeviceDateTime)
	if err != nil {
		return nil, fmt.Errorf("%w: deviceDateTime: %w", ErrInvalidInput, err)
	}

	serverTime := t.now()
	base := models.TelemetryRecord{
		ActorID:        session.ActorID,
		ProjectID:      session.ProjectID,
		DeviceID:       strings.TrimSpace(submission.DeviceID),
		CollectVersion: strings.TrimSpace(submission.CollectVersion),
		DeviceDateTime: deviceTime,
		Location:       submission.Location,
		ReceivedAt:     serverTime,
	}

	records, err := buildTelemetryRecords(base, submissionEvents(submission))
	if err != nil {
		return nil, err
	}

	stored, err := t.telemetry.UpsertBatch(ctx, records)
	if err != nil {
		log.Err(err).
			Str("func", "*telemetryService.Submit").
			Int64("actor_id", session.ActorID).
			Int("count", len(records)).
			Msg("error storing telemetry")
		return nil, fmt.Errorf("error storing telemetry: %w", err)
	}

	results := make([]models.TelemetryResult, 0, len(stored))
	for _, record := range stored {
		results = append(results, models.TelemetryResult{
			ID:            record.ID,
			AppUserID:     record.ActorID,
			DeviceID:      record.DeviceID,
			ClientEventID: record.ClientEventID,
			DateTime:      record.ReceivedAt,
			ServerTime:    serverTime,
			Status:        session.Status,
		})
	}

	t.metrics.TelemetryStored(string(session.Status), len(results))
	if !session.Live() {
		log.Info().Int64("actor_id", session.ActorID).Int("count", len(results)).Msg("telemetry accepted on an invalidated session")
	}

	return results, nil
}

func (t *telemetryService) List(ctx context.Context, filter models.TelemetryFilter, page models.Page) ([]models.TelemetryRecord, int64, error) {
	records, total, err := t.telemetry.List(ctx, filter, page.Normalize())
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*telemetryService.List").Msg("error listing telemetry")
		return nil, 0, fmt.Errorf("error listing telemetry: %w", err)
	}
	if records == nil {
		records = []models.TelemetryRecord{}
	}
	return records, total, nil
}

func submissionEvents(s models.TelemetrySubmission) []models.TelemetryEvent {
	switch {
	case s.Event != nil:
		return []models.TelemetryEvent{*s.Event}
	case s.Events != nil:
		return *s.Events
	}
	return nil
}

// buildTelemetryRecords yields one record per distinct event id, keeping the
// position of the first occurrence and the payload of the last. A submission
// without events is a single ping record keyed by device time.
func buildTelemetryRecords(base models.TelemetryRecord, events []models.TelemetryEvent) ([]models.TelemetryRecord, error) {
	if len(events) == 0 {
		return []models.TelemetryRecord{base}, nil
	}

	records := make([]models.TelemetryRecord, 0, len(events))
	positions := make(map[string]int, len(events))
	for _, event := range events {
		event.ID = strings.TrimSpace(event.ID)

		payload, err := json.Marshal(event)
		if err != nil {
			return nil, fmt.Errorf("%w: event %q: %w", ErrInvalidInput, event.ID, err)
		}

		record := base
		id := event.ID
		record.ClientEventID = &id
		record.Event = payload

		if idx, seen := positions[id]; seen {
			records[idx] = record
			continue
		}
		positions[id] = len(records)
		records = append(records, record)
	}

	return records, nil
}
