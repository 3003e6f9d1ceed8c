package http

import (
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/service"
	"github.com/MKhiriev/go-field-keeper/internal/utils"
	"github.com/MKhiriev/go-field-keeper/models"
)

// actorTarget resolves {projectID} and {actorID} of an administrator route
// together with the calling admin id.
func actorTarget(r *http.Request) (adminID, projectID, actorID int64, err error) {
	adminID, _ = utils.GetAdminIDFromContext(r.Context())
	if projectID, err = pathID(r, paramProjectID); err != nil {
		return 0, 0, 0, err
	}
	if actorID, err = pathID(r, paramActorID); err != nil {
		return 0, 0, 0, err
	}
	return adminID, projectID, actorID, nil
}

func readBody(r *http.Request, dst any) error {
	if err := utils.ReadJSON(r, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequestBody, err)
	}
	return nil
}

func (h *Handler) createCredential(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	adminID, _ := utils.GetAdminIDFromContext(r.Context())

	projectID, err := pathID(r, paramProjectID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req models.CreateCredentialRequest
	if err = readBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	req.ProjectID = projectID

	cred, err := h.services.AuthService.CreateCredential(r.Context(), adminID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if _, err = utils.WriteJSON(w, cred, http.StatusCreated); err != nil {
		log.Err(err).Msg("error writing credential")
	}
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	adminID, projectID, actorID, err := actorTarget(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req models.ResetPasswordRequest
	if err = readBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err = h.services.AuthService.ResetPassword(r.Context(), adminID, projectID, actorID, req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// revokeAdmin is the deactivation shortcut kept for older admin tooling.
func (h *Handler) revokeAdmin(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) changeActive(w http.ResponseWriter, r *http.Request) {
	var req models.SetActiveRequest
	if err := readBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.Active == nil {
		writeServiceError(w, r, fmt.Errorf("%w: active is required", service.ErrInvalidInput))
		return
	}
	h.setActive(w, r, *req.Active)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	adminID, projectID, actorID, err := actorTarget(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err = h.services.AuthService.SetActive(r.Context(), adminID, projectID, actorID, active); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) revokeAllSessions(w http.ResponseWriter, r *http.Request) {
	adminID, projectID, actorID, err := actorTarget(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	revoked, err := h.services.AuthService.RevokeAllSessions(r.Context(), adminID, projectID, actorID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.RevokeResponse{Revoked: revoked}, http.StatusOK)
}

func (h *Handler) updatePhone(w http.ResponseWriter, r *http.Request) {
	adminID, projectID, actorID, err := actorTarget(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req models.UpdatePhoneRequest
	if err = readBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	cred, err := h.services.AuthService.UpdatePhone(r.Context(), adminID, projectID, actorID, req.Phone)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, cred, http.StatusOK)
}

func (h *Handler) listActorSessions(w http.ResponseWriter, r *http.Request) {
	_, projectID, actorID, err := actorTarget(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	page, err := pageFromQuery(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writeSessions(w, r, models.SessionFilter{ProjectID: &projectID, ActorID: &actorID}, page)
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		filter models.SessionFilter
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
	if filter.Active, err = queryBool(q, "active"); err != nil {
		writeServiceError(w, r, err)
		return
	}

	page, err := pageFromQuery(q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.writeSessions(w, r, filter, page)
}

func (h *Handler) writeSessions(w http.ResponseWriter, r *http.Request, filter models.SessionFilter, page models.Page) {
	sessions, total, err := h.services.SessionService.List(r.Context(), filter, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}

	setTotalCount(w, total)
	_, _ = utils.WriteJSON(w, sessions, http.StatusOK)
}

func (h *Handler) clearLockout(w http.ResponseWriter, r *http.Request) {
	adminID, _ := utils.GetAdminIDFromContext(r.Context())

	var req models.ClearLockoutRequest
	if err := readBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.services.LockoutService.Clear(r.Context(), adminID, req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.services.SettingsService.Current(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, settings, http.StatusOK)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	adminID, _ := utils.GetAdminIDFromContext(r.Context())

	var update models.SettingsUpdate
	if err := readBody(r, &update); err != nil {
		writeServiceError(w, r, err)
		return
	}

	settings, err := h.services.SettingsService.Update(r.Context(), adminID, update)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, settings, http.StatusOK)
}
