package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/utils"
	"github.com/MKhiriev/go-field-keeper/models"
)

// login is the unscoped login: any active credential may sign in.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	h.doLogin(w, r, nil)
}

// loginScoped only accepts credentials owned by the {projectID} project.
func (h *Handler) loginScoped(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, paramProjectID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.doLogin(w, r, &projectID)
}

func (h *Handler) doLogin(w http.ResponseWriter, r *http.Request, scopeID *int64) {
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		log.Debug().Err(err).Msg("invalid login body")
		writeServiceError(w, r, fmt.Errorf("%w: %w", ErrInvalidRequestBody, err))
		return
	}
	req.Origin = utils.ClientIP(r)
	req.UserAgent = utils.OptionalHeader(r, "User-Agent")
	req.ScopeID = scopeID

	result, err := h.services.AuthService.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if _, err = utils.WriteJSON(w, result, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing login response")
	}
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	session, _ := utils.GetSessionFromContext(r.Context())

	var req models.ChangePasswordRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		writeServiceError(w, r, fmt.Errorf("%w: %w", ErrInvalidRequestBody, err))
		return
	}

	if err := h.services.AuthService.ChangePassword(r.Context(), session.ActorID, req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// revokeCurrent expires the calling session. The body is optional.
func (h *Handler) revokeCurrent(w http.ResponseWriter, r *http.Request) {
	session, _ := utils.GetSessionFromContext(r.Context())

	var req models.RevokeRequest
	if err := utils.ReadJSON(r, &req); err != nil && !isEmptyBody(err) {
		writeServiceError(w, r, fmt.Errorf("%w: %w", ErrInvalidRequestBody, err))
		return
	}

	if err := h.services.AuthService.RevokeCurrentSession(r.Context(), session, req.DeviceID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) revokeOthers(w http.ResponseWriter, r *http.Request) {
	session, _ := utils.GetSessionFromContext(r.Context())

	revoked, err := h.services.AuthService.RevokeOtherSessions(r.Context(), session)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, models.RevokeResponse{Revoked: revoked}, http.StatusOK)
}

func isEmptyBody(err error) bool {
	return errors.Is(err, utils.ErrEmptyBody)
}
