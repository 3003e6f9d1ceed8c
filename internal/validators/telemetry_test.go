package validators

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-field-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func validSubmission() models.TelemetrySubmission {
	return models.TelemetrySubmission{
		DeviceID:       "dev-1",
		CollectVersion: "2.4.0",
		DeviceDateTime: "2026-03-01T10:00:00Z",
	}
}

func events(n int) *[]models.TelemetryEvent {
	out := make([]models.TelemetryEvent, n)
	for i := range out {
		out[i] = models.TelemetryEvent{ID: "e" + string(rune('a'+i)), Type: "ping"}
	}
	return &out
}

func TestParseUTCDateTime(t *testing.T) {
	want := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, raw := range []string{"2026-03-01T10:00:00Z", "2026-03-01T10:00:00+00:00", "2026-03-01T10:00:00-00:00", " 2026-03-01T10:00:00.000Z "} {
		got, err := ParseUTCDateTime(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), raw)
	}

	for _, raw := range []string{"2026-03-01T10:00:00+02:00", "2026-03-01T10:00:00", "yesterday", "2026-13-01T10:00:00Z"} {
		_, err := ParseUTCDateTime(raw)
		assert.ErrorIs(t, err, ErrNotUTCDateTime, raw)
	}

	_, err := ParseUTCDateTime("")
	assert.ErrorIs(t, err, ErrEmptyDeviceDateTime)
}

func TestTelemetryValidator_Submission(t *testing.T) {
	v := NewTelemetryValidator()
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(s *models.TelemetrySubmission)
		wantErr error
	}{
		{name: "bare ping", mutate: func(s *models.TelemetrySubmission) {}},
		{name: "single event", mutate: func(s *models.TelemetrySubmission) {
			s.Event = &models.TelemetryEvent{ID: "e1", Type: "ping", OccurredAt: ptr("2026-03-01T09:59:00Z")}
		}},
		{name: "ten events", mutate: func(s *models.TelemetrySubmission) { s.Events = events(10) }},
		{name: "blank device", mutate: func(s *models.TelemetrySubmission) { s.DeviceID = " " }, wantErr: ErrEmptyDeviceID},
		{name: "blank version", mutate: func(s *models.TelemetrySubmission) { s.CollectVersion = "" }, wantErr: ErrEmptyCollectVersion},
		{name: "missing datetime", mutate: func(s *models.TelemetrySubmission) { s.DeviceDateTime = "" }, wantErr: ErrEmptyDeviceDateTime},
		{name: "offset datetime", mutate: func(s *models.TelemetrySubmission) { s.DeviceDateTime = "2026-03-01T10:00:00+03:00" }, wantErr: ErrNotUTCDateTime},
		{name: "location without lng", mutate: func(s *models.TelemetrySubmission) {
			lat := models.Number(1.5)
			s.Location = &models.Location{Latitude: &lat}
		}, wantErr: ErrMissingCoordinates},
		{name: "event and events", mutate: func(s *models.TelemetrySubmission) {
			s.Event = &models.TelemetryEvent{ID: "e1", Type: "ping"}
			s.Events = events(1)
		}, wantErr: ErrEventAndEvents},
		{name: "empty batch", mutate: func(s *models.TelemetrySubmission) { s.Events = events(0) }, wantErr: ErrEmptyEventBatch},
		{name: "eleven events", mutate: func(s *models.TelemetrySubmission) { s.Events = events(11) }, wantErr: ErrEventBatchTooLarge},
		{name: "event without id", mutate: func(s *models.TelemetrySubmission) {
			s.Event = &models.TelemetryEvent{Type: "ping"}
		}, wantErr: ErrEmptyEventID},
		{name: "event without type", mutate: func(s *models.TelemetrySubmission) {
			s.Event = &models.TelemetryEvent{ID: "e1"}
		}, wantErr: ErrEmptyEventType},
		{name: "event local time", mutate: func(s *models.TelemetrySubmission) {
			s.Event = &models.TelemetryEvent{ID: "e1", Type: "ping", OccurredAt: ptr("2026-03-01T09:59:00")}
		}, wantErr: ErrNotUTCDateTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubmission()
			tt.mutate(&s)

			err := v.Validate(ctx, &s)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTelemetryValidator_Filter(t *testing.T) {
	v := NewTelemetryValidator()
	ctx := context.Background()
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	assert.NoError(t, v.Validate(ctx, models.TelemetryFilter{}))
	assert.ErrorIs(t, v.Validate(ctx, models.TelemetryFilter{DateFrom: &from, DateTo: &to}), ErrInvalidDateRange)
	assert.ErrorIs(t, v.Validate(ctx, models.TelemetryFilter{ActorID: ptr(int64(0))}), ErrInvalidFilterActorID)
	assert.ErrorIs(t, v.Validate(ctx, models.TelemetryFilter{ProjectID: ptr(int64(-1))}), ErrInvalidFilterProject)
	assert.ErrorIs(t, v.Validate(ctx, models.TelemetryFilter{DeviceID: ptr(" ")}), ErrEmptyFilterDeviceID)
}

func TestTelemetryValidator_Errors(t *testing.T) {
	v := NewTelemetryValidator()

	assert.ErrorIs(t, v.Validate(context.Background(), 42), ErrUnsupportedType)
	assert.ErrorIs(t, v.Validate(context.Background(), validSubmission(), "nope"), ErrUnknownField)
}
