package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/adapter"
	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/store"
	"github.com/MKhiriev/go-field-keeper/models"
)

// IDGenerator produces client event ids.
type IDGenerator interface {
	Generate() string
}

type clientTelemetryService struct {
	outbox   store.OutboxRepository
	sessions store.LocalSessionRepository
	adapter  adapter.ServerAdapter
	ids      IDGenerator
	device   config.ClientDevice

	now    func() time.Time
	logger *logger.Logger
}

func NewClientTelemetryService(
	outbox store.OutboxRepository,
	sessions store.LocalSessionRepository,
	serverAdapter adapter.ServerAdapter,
	ids IDGenerator,
	device config.ClientDevice,
	logger *logger.Logger,
) ClientTelemetryService {
	return &clientTelemetryService{
		outbox:   outbox,
		sessions: sessions,
		adapter:  serverAdapter,
		ids:      ids,
		device:   device,
		now:      time.Now,
		logger:   logger,
	}
}

func (c *clientTelemetryService) EnqueueEvent(ctx context.Context, eventType string, details json.RawMessage) (models.OutboxItem, error) {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return models.OutboxItem{}, fmt.Errorf("%w: event type is required", ErrInvalidInput)
	}
	if len(details) > 0 && !json.Valid(details) {
		return models.OutboxItem{}, fmt.Errorf("%w: details must be valid JSON", ErrInvalidInput)
	}

	submission, err := c.baseSubmission()
	if err != nil {
		return models.OutboxItem{}, err
	}

	occurredAt := submission.DeviceDateTime
	event := models.TelemetryEvent{
		ID:         c.ids.Generate(),
		Type:       eventType,
		OccurredAt: &occurredAt,
		Details:    details,
	}
	submission.Event = &event

	return c.enqueue(ctx, event.ID, submission)
}

func (c *clientTelemetryService) EnqueuePing(ctx context.Context, location *models.Location) (models.OutboxItem, error) {
	if location != nil && (location.Latitude == nil || location.Longitude == nil) {
		return models.OutboxItem{}, fmt.Errorf("%w: latitude and longitude are required", ErrInvalidInput)
	}

	submission, err := c.baseSubmission()
	if err != nil {
		return models.OutboxItem{}, err
	}
	submission.Location = location

	return c.enqueue(ctx, "", submission)
}

func (c *clientTelemetryService) enqueue(ctx context.Context, clientEventID string, submission models.TelemetrySubmission) (models.OutboxItem, error) {
	item, err := c.outbox.Enqueue(ctx, models.OutboxItem{
		ClientEventID: clientEventID,
		Submission:    submission,
		CreatedAt:     c.now().UTC(),
	})
	if err != nil {
		return models.OutboxItem{}, fmt.Errorf("error queueing telemetry: %w", err)
	}
	return item, nil
}

func (c *clientTelemetryService) baseSubmission() (models.TelemetrySubmission, error) {
	if c.device.DeviceID == "" || c.device.CollectVersion == "" || c.device.ProjectID <= 0 {
		return models.TelemetrySubmission{}, ErrMissingDeviceConfig
	}
	return models.TelemetrySubmission{
		DeviceID:       c.device.DeviceID,
		CollectVersion: c.device.CollectVersion,
		DeviceDateTime: c.now().UTC().Format(time.RFC3339),
	}, nil
}

// Flush drains the outbox in rounds of at most [models.MaxTelemetryBatch]
// items. Event items of a round travel together in one batch submission;
// pings keep their own device time and location and are sent one by one.
// Items stay queued on transport failures and on 401.
func (c *clientTelemetryService) Flush(ctx context.Context) (models.FlushReport, error) {
	var report models.FlushReport

	session, err := c.sessions.Load(ctx)
	if errors.Is(err, store.ErrLocalSessionNotFound) {
		return report, ErrNotLoggedIn
	}
	if err != nil {
		return report, fmt.Errorf("error loading local session: %w", err)
	}
	c.adapter.SetToken(session.Token)

	for {
		items, err := c.outbox.Pending(ctx, models.MaxTelemetryBatch)
		if err != nil {
			return report, fmt.Errorf("error reading outbox: %w", err)
		}
		if len(items) == 0 {
			break
		}

		if err = c.flushRound(ctx, session, items, &report); err != nil {
			report.Remaining, _ = c.outbox.Count(ctx)
			return report, err
		}
	}

	report.Remaining, _ = c.outbox.Count(ctx)
	return report, nil
}

func (c *clientTelemetryService) flushRound(ctx context.Context, session models.LocalSession, items []models.OutboxItem, report *models.FlushReport) error {
	var events []models.OutboxItem
	for _, item := range items {
		if item.Submission.Event == nil {
			if err := c.send(ctx, session, item.Submission, []models.OutboxItem{item}, report); err != nil {
				return err
			}
			continue
		}
		events = append(events, item)
	}

	if len(events) == 0 {
		return nil
	}

	batch := events[0].Submission
	batch.Event = nil
	batchEvents := make([]models.TelemetryEvent, 0, len(events))
	for _, item := range events {
		batchEvents = append(batchEvents, *item.Submission.Event)
	}
	batch.Events = &batchEvents

	return c.send(ctx, session, batch, events, report)
}

func (c *clientTelemetryService) send(ctx context.Context, session models.LocalSession, submission models.TelemetrySubmission, items []models.OutboxItem, report *models.FlushReport) error {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	results, err := c.adapter.SubmitTelemetry(ctx, session.ProjectID, submission)
	if err != nil {
		mapped := mapAdapterError(err)
		switch {
		case errors.Is(mapped, ErrInvalidInput), errors.Is(mapped, ErrEntityNotFound), errors.Is(mapped, ErrInsufficientRights):
			c.logger.Warn().Err(err).Int("count", len(ids)).Msg("server rejected telemetry, dropping items")
			if err = c.outbox.Delete(ctx, ids...); err != nil {
				return fmt.Errorf("error deleting rejected items: %w", err)
			}
			report.Dropped += len(ids)
			return nil

		case errors.Is(mapped, ErrAuthenticationFailed):
			c.markFailed(ctx, ids, err)
			if markErr := c.sessions.MarkInvalidated(ctx); markErr != nil {
				c.logger.Err(markErr).Msg("error marking local session invalidated")
			}
			report.Invalidated = true
			return ErrSessionInvalidated
		}

		c.markFailed(ctx, ids, err)
		return mapped
	}

	if err = c.outbox.Delete(ctx, ids...); err != nil {
		return fmt.Errorf("error deleting accepted items: %w", err)
	}
	report.Sent += len(ids)

	for _, result := range results {
		if result.Status == models.SessionStatusInvalidated {
			report.Invalidated = true
		}
	}
	if report.Invalidated && !session.Invalidated {
		if err = c.sessions.MarkInvalidated(ctx); err != nil {
			return fmt.Errorf("error marking local session invalidated: %w", err)
		}
	}

	return nil
}

func (c *clientTelemetryService) markFailed(ctx context.Context, ids []int64, cause error) {
	for _, id := range ids {
		if err := c.outbox.MarkFailed(ctx, id, cause.Error()); err != nil {
			c.logger.Err(err).Int64("outbox_id", id).Msg("error marking outbox item failed")
		}
	}
}

func (c *clientTelemetryService) Pending(ctx context.Context) (int, error) {
	return c.outbox.Count(ctx)
}
