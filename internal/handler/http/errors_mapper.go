package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-field-keeper/internal/app"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/service"
	"github.com/MKhiriev/go-field-keeper/internal/store"
	"github.com/MKhiriev/go-field-keeper/internal/utils"
	"github.com/getsentry/sentry-go"
)

type errorStatus struct {
	target  error
	status  int
	message string
}

// errorStatusMap is ordered: the first matching target wins. Retryable
// datastore failures come first so that a wrapped service error never hides
// them.
var errorStatusMap = []errorStatus{
	{store.ErrTemporarilyUnavailable, http.StatusServiceUnavailable, app.MsgTemporarilyUnavailable},
	{service.ErrTooManyAttempts, http.StatusTooManyRequests, app.MsgTooManyAttempts},
	{service.ErrPolicyViolation, http.StatusBadRequest, app.MsgPolicyViolation},
	{ErrInvalidRequestBody, http.StatusBadRequest, app.MsgInvalidDataProvided},
	{service.ErrInvalidInput, http.StatusBadRequest, ""},
	{service.ErrEntityInvalid, http.StatusBadRequest, app.MsgEntityInvalid},
	{ErrInvalidPathParameter, http.StatusBadRequest, app.MsgInvalidPathParameter},
	{ErrInvalidQueryParameter, http.StatusBadRequest, ""},
	{service.ErrAuthenticationFailed, http.StatusUnauthorized, app.MsgAuthenticationFailed},
	{service.ErrTokenIsExpiredOrInvalid, http.StatusUnauthorized, app.MsgTokenIsExpiredOrInvalid},
	{service.ErrInsufficientRights, http.StatusForbidden, app.MsgInsufficientRights},
	{service.ErrEntityNotFound, http.StatusNotFound, app.MsgNotFound},
	{service.ErrConflict, http.StatusConflict, app.MsgConflict},
}

// statusFromError returns the status and the client-facing message for err.
// An empty message in the table means the innermost message of the chain is
// shown, see [innermostMessage].
func statusFromError(err error) (int, string) {
	for _, e := range errorStatusMap {
		if errors.Is(err, e.target) {
			if e.message == "" {
				return e.status, innermostMessage(err, e.target)
			}
			return e.status, e.message
		}
	}
	return http.StatusInternalServerError, app.MsgInternalServerError
}

// innermostMessage follows the last wrapped error of each link down to the
// deepest error that is not sentinel and returns its text without the
// sentinel prefix. "invalid input: deviceDateTime: <validator error>" yields
// the validator error alone, "invalid input: newPassword is required" yields
// "newPassword is required".
func innermostMessage(err, sentinel error) string {
	deepest := err
	for current := err; current != nil; {
		if current != sentinel {
			deepest = current
		}

		switch u := current.(type) {
		case interface{ Unwrap() []error }:
			wrapped := u.Unwrap()
			if len(wrapped) == 0 {
				current = nil
				continue
			}
			current = wrapped[len(wrapped)-1]
		case interface{ Unwrap() error }:
			current = u.Unwrap()
		default:
			current = nil
		}
	}

	return strings.TrimPrefix(deepest.Error(), sentinel.Error()+": ")
}

// writeServiceError logs err, reports server faults to Sentry and writes the
// uniform error body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)
	status, message := statusFromError(err)

	retryAfter := 0
	var tooMany *service.TooManyAttemptsError
	if errors.As(err, &tooMany) {
		retryAfter = tooMany.RetryAfterSeconds()
	}

	if status >= http.StatusInternalServerError {
		log.Err(err).Int("status", status).Msg("request failed")
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	utils.WriteError(w, status, message, retryAfter)
}
