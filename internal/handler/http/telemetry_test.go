package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/service"
	"github.com/MKhiriev/go-field-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitTelemetry(t *testing.T) {
	received := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	eventID := "0190f2a4-0000-7000-8000-000000000001"

	var (
		gotProject    int64
		gotSession    models.SessionValidity
		gotSubmission models.TelemetrySubmission
	)
	services := newTestServices()
	services.TelemetryService = &fakeTelemetryService{
		submitFn: func(_ context.Context, session models.SessionValidity, projectID int64, submission models.TelemetrySubmission) ([]models.TelemetryResult, error) {
			gotProject, gotSession, gotSubmission = projectID, session, submission
			return []models.TelemetryResult{{
				ID:            11,
				AppUserID:     session.ActorID,
				DeviceID:      submission.DeviceID,
				ClientEventID: &eventID,
				DateTime:      received,
				ServerTime:    received,
				Status:        models.SessionStatusOK,
			}}, nil
		},
	}

	body := fmt.Sprintf(`{"deviceId":"dev-1","collectVersion":"3.2","deviceDateTime":"2026-05-01T07:59:00Z",
		"event":{"id":%q,"type":"shift.start","details":{"site":"north"}}}`, eventID)
	rec := serve(t, newTestRouter(services), http.MethodPost, "/api/projects/7/app-users/telemetry", sessionBearer, body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotProject)
	assert.Equal(t, liveSession.ActorID, gotSession.ActorID)
	require.NotNil(t, gotSubmission.Event)
	assert.Equal(t, "shift.start", gotSubmission.Event.Type)
	assert.JSONEq(t, `{"site":"north"}`, string(gotSubmission.Event.Details))

	var results []models.TelemetryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, models.SessionStatusOK, results[0].Status)
	assert.Equal(t, eventID, *results[0].ClientEventID)
}

func TestSubmitTelemetry_ValidationError(t *testing.T) {
	services := newTestServices()
	services.TelemetryService = &fakeTelemetryService{
		submitFn: func(context.Context, models.SessionValidity, int64, models.TelemetrySubmission) ([]models.TelemetryResult, error) {
			return nil, fmt.Errorf("%w: deviceDateTime must be UTC", service.ErrInvalidInput)
		},
	}

	rec := serve(t, newTestRouter(services), http.MethodPost, "/api/projects/7/app-users/telemetry", sessionBearer,
		`{"deviceId":"d","collectVersion":"1","deviceDateTime":"2026-05-01T07:59:00+03:00"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be UTC")
	assert.NotContains(t, rec.Body.String(), "invalid input:")
}

func TestListTelemetry_Filters(t *testing.T) {
	var (
		gotFilter models.TelemetryFilter
		gotPage   models.Page
	)
	services := newTestServices()
	services.TelemetryService = &fakeTelemetryService{
		listFn: func(_ context.Context, filter models.TelemetryFilter, page models.Page) ([]models.TelemetryRecord, int64, error) {
			gotFilter, gotPage = filter, page
			return []models.TelemetryRecord{{ID: 3, ActorID: 42, DeviceID: "dev-1"}}, 31, nil
		},
	}

	rec := serve(t, newTestRouter(services), http.MethodGet,
		"/api/system/app-users/telemetry?projectId=7&appUserId=42&deviceId=dev-1&dateFrom=2026-05-01T00:00:00Z&dateTo=2026-05-02T00:00:00Z&limit=10&offset=20",
		adminBearer, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "31", rec.Header().Get(totalCountHeader))
	require.NotNil(t, gotFilter.ProjectID)
	assert.Equal(t, int64(7), *gotFilter.ProjectID)
	require.NotNil(t, gotFilter.ActorID)
	assert.Equal(t, int64(42), *gotFilter.ActorID)
	require.NotNil(t, gotFilter.DeviceID)
	assert.Equal(t, "dev-1", *gotFilter.DeviceID)
	require.NotNil(t, gotFilter.DateFrom)
	assert.True(t, gotFilter.DateFrom.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.Page{Limit: 10, Offset: 20}, gotPage)
}

func TestListTelemetry_EmptyIsArray(t *testing.T) {
	services := newTestServices()
	services.TelemetryService = &fakeTelemetryService{
		listFn: func(context.Context, models.TelemetryFilter, models.Page) ([]models.TelemetryRecord, int64, error) {
			return nil, 0, nil
		},
	}

	rec := serve(t, newTestRouter(services), http.MethodGet, "/api/system/app-users/telemetry", adminBearer, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
	assert.Equal(t, "0", rec.Header().Get(totalCountHeader))
}

func TestListTelemetry_BadQuery(t *testing.T) {
	router := newTestRouter(newTestServices())

	for _, query := range []string{
		"projectId=seven",
		"dateFrom=2026-05-01T00:00:00%2B02:00",
		"dateFrom=2026-05-03T00:00:00Z&dateTo=2026-05-02T00:00:00Z",
		"limit=ten",
	} {
		t.Run(query, func(t *testing.T) {
			rec := serve(t, router, http.MethodGet, "/api/system/app-users/telemetry?"+query, adminBearer, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
