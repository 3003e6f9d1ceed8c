package http

import (
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/utils"
	"github.com/MKhiriev/go-field-keeper/models"
)

// submitTelemetry stores a device submission. The session may be within its
// grace window; every result reports the status it was received with.
func (h *Handler) submitTelemetry(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	session, _ := utils.GetSessionFromContext(r.Context())

	projectID, err := pathID(r, paramProjectID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var submission models.TelemetrySubmission
	if err = utils.ReadJSON(r, &submission); err != nil {
		writeServiceError(w, r, fmt.Errorf("%w: %w", ErrInvalidRequestBody, err))
		return
	}

	results, err := h.services.TelemetryService.Submit(r.Context(), session, projectID, submission)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if _, err = utils.WriteJSON(w, results, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing telemetry response")
	}
}

func (h *Handler) listTelemetry(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		filter models.TelemetryFilter
		err    error
	)
	if filter.ProjectID, err = queryInt64(q, "projectId"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if filter.ActorID, err = queryInt64(q, "appUserId"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	filter.DeviceID = queryString(q, "deviceId")
	if filter.DateFrom, err = queryTime(q, "dateFrom"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if filter.DateTo, err = queryTime(q, "dateTo"); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateFrom.After(*filter.DateTo) {
		writeServiceError(w, r, fmt.Errorf("%w: dateFrom must not exceed dateTo", ErrInvalidQueryParameter))
		return
	}

	page, err := pageFromQuery(q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	records, total, err := h.services.TelemetryService.List(r.Context(), filter, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []models.TelemetryRecord{}
	}

	setTotalCount(w, total)
	_, _ = utils.WriteJSON(w, records, http.StatusOK)
}
