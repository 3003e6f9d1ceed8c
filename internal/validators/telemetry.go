package validators

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-field-keeper/models"
)

const (
	FieldDeviceID       = "device_id"
	FieldCollectVersion = "collect_version"
	FieldDeviceDateTime = "device_date_time"
	FieldLocation       = "location"
	FieldEvents         = "events"

	FieldFilterProjectID = "filter_project_id"
	FieldFilterDeviceID  = "filter_device_id"
	FieldFilterActorID   = "filter_actor_id"
	FieldFilterDateRange = "filter_date_range"
)

// TelemetryValidator checks telemetry submissions and listing filters.
type TelemetryValidator struct {
}

func NewTelemetryValidator() Validator {
	return &TelemetryValidator{}
}

func (v *TelemetryValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.TelemetrySubmission:
		return v.validateSubmission(ctx, value, fields...)
	case *models.TelemetrySubmission:
		return v.validateSubmission(ctx, *value, fields...)

	case models.TelemetryFilter:
		return v.validateFilter(ctx, value, fields...)
	case *models.TelemetryFilter:
		return v.validateFilter(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *TelemetryValidator) validateSubmission(_ context.Context, s models.TelemetrySubmission, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldDeviceID, FieldCollectVersion, FieldDeviceDateTime, FieldLocation, FieldEvents}
	}

	for _, f := range fields {
		switch f {
		case FieldDeviceID:
			if strings.TrimSpace(s.DeviceID) == "" {
				return ErrEmptyDeviceID
			}
		case FieldCollectVersion:
			if strings.TrimSpace(s.CollectVersion) == "" {
				return ErrEmptyCollectVersion
			}
		case FieldDeviceDateTime:
			if strings.TrimSpace(s.DeviceDateTime) == "" {
				return ErrEmptyDeviceDateTime
			}
			if _, err := ParseUTCDateTime(s.DeviceDateTime); err != nil {
				return fmt.Errorf("deviceDateTime: %w", err)
			}
		case FieldLocation:
			if s.Location != nil && (s.Location.Latitude == nil || s.Location.Longitude == nil) {
				return ErrMissingCoordinates
			}
		case FieldEvents:
			if err := validateEvents(s); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func validateEvents(s models.TelemetrySubmission) error {
	if s.Event != nil && s.Events != nil {
		return ErrEventAndEvents
	}

	var events []models.TelemetryEvent
	switch {
	case s.Event != nil:
		events = []models.TelemetryEvent{*s.Event}
	case s.Events != nil:
		events = *s.Events
		if len(events) == 0 {
			return ErrEmptyEventBatch
		}
		if len(events) > models.MaxTelemetryBatch {
			return ErrEventBatchTooLarge
		}
	}

	for i, event := range events {
		if strings.TrimSpace(event.ID) == "" {
			return fmt.Errorf("event at index %d: %w", i, ErrEmptyEventID)
		}
		if strings.TrimSpace(event.Type) == "" {
			return fmt.Errorf("event at index %d: %w", i, ErrEmptyEventType)
		}
		if event.OccurredAt != nil {
			if _, err := ParseUTCDateTime(*event.OccurredAt); err != nil {
				return fmt.Errorf("event at index %d occurredAt: %w", i, err)
			}
		}
	}

	return nil
}

func (v *TelemetryValidator) validateFilter(_ context.Context, filter models.TelemetryFilter, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldFilterProjectID, FieldFilterDeviceID, FieldFilterActorID, FieldFilterDateRange}
	}

	for _, f := range fields {
		switch f {
		case FieldFilterProjectID:
			if filter.ProjectID != nil && *filter.ProjectID <= 0 {
				return ErrInvalidFilterProject
			}
		case FieldFilterDeviceID:
			if filter.DeviceID != nil && strings.TrimSpace(*filter.DeviceID) == "" {
				return ErrEmptyFilterDeviceID
			}
		case FieldFilterActorID:
			if filter.ActorID != nil && *filter.ActorID <= 0 {
				return ErrInvalidFilterActorID
			}
		case FieldFilterDateRange:
			if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
				return ErrInvalidDateRange
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// ParseUTCDateTime accepts RFC 3339 timestamps whose offset is explicitly UTC
// ("Z", "+00:00" or "-00:00"). Any other offset, or none, is rejected.
func ParseUTCDateTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, ErrEmptyDeviceDateTime
	}

	if !strings.HasSuffix(trimmed, "Z") && !strings.HasSuffix(trimmed, "+00:00") && !strings.HasSuffix(trimmed, "-00:00") {
		return time.Time{}, ErrNotUTCDateTime
	}

	parsed, err := time.Parse(time.RFC3339Nano, trimmed)
	if err != nil {
		return time.Time{}, ErrNotUTCDateTime
	}

	return parsed.UTC(), nil
}
