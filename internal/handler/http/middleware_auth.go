package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-field-keeper/internal/app"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/service"
	"github.com/MKhiriev/go-field-keeper/internal/utils"
)

// bearerToken extracts the credential from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrEmptyAuthorizationHeader
	}
	token, err := utils.ParseBearerToken(header)
	if err != nil {
		return "", ErrInvalidAuthorizationHeader
	}
	return token, nil
}

// sessionAuth resolves the field actor session behind the bearer token.
// Sessions that expired within the grace window only pass when
// allowInvalidated is set; telemetry is the single route that accepts them.
func (h *Handler) sessionAuth(allowInvalidated bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromRequest(r)

			token, err := bearerToken(r)
			if err != nil {
				log.Debug().Err(err).Msg("session token missing")
				utils.WriteError(w, http.StatusUnauthorized, app.MsgAuthenticationFailed, 0)
				return
			}

			session, err := h.services.SessionService.Validate(r.Context(), token)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}

			if !session.Live() && !allowInvalidated {
				log.Debug().Int64("actor_id", session.ActorID).Msg("invalidated session rejected")
				utils.WriteError(w, http.StatusUnauthorized, app.MsgSessionInvalidated, 0)
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithSession(r.Context(), session)))
		})
	}
}

// sessionScope checks the {projectID} and optional {actorID} route
// parameters against the authenticated session: a foreign project looks like
// a missing one, a foreign actor is forbidden.
func (h *Handler) sessionScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := utils.GetSessionFromContext(r.Context())
		if !ok {
			writeServiceError(w, r, service.ErrAuthenticationFailed)
			return
		}

		projectID, err := pathID(r, paramProjectID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if projectID != session.ProjectID {
			writeServiceError(w, r, service.ErrEntityNotFound)
			return
		}

		if hasPathParam(r, paramActorID) {
			actorID, err := pathID(r, paramActorID)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			if actorID != session.ActorID {
				writeServiceError(w, r, service.ErrInsufficientRights)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// adminAuth accepts administrator JWTs and stores the admin id used as the
// audit actor.
func (h *Handler) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		token, err := bearerToken(r)
		if err != nil {
			log.Debug().Err(err).Msg("admin token missing")
			utils.WriteError(w, http.StatusUnauthorized, err.Error(), 0)
			return
		}

		parsed, err := h.services.AdminTokenService.ParseToken(r.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrTokenIsExpiredOrInvalid) {
				log.Err(err).Msg("error parsing admin token")
			}
			writeServiceError(w, r, service.ErrTokenIsExpiredOrInvalid)
			return
		}

		next.ServeHTTP(w, r.WithContext(utils.WithAdminID(r.Context(), parsed.AdminID)))
	})
}
