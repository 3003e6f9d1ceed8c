// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/adapter"
	"github.com/MKhiriev/go-field-keeper/internal/app"
)

// mapAdapterError translates the adapter's transport error into a service
// business error. The server message is kept in the chain for display.
func mapAdapterError(err error) error {
	if err == nil {
		return nil
	}

	var retryErr *adapter.RetryAfterError
	switch {
	case errors.As(err, &retryErr):
		return NewTooManyAttemptsError(time.Duration(retryErr.Seconds) * time.Second)

	case errors.Is(err, adapter.ErrBadRequest):
		if extractBody(err) == app.MsgPolicyViolation {
			return ErrPolicyViolation
		}
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)

	case errors.Is(err, adapter.ErrUnauthorized):
		return ErrAuthenticationFailed

	case errors.Is(err, adapter.ErrForbidden):
		return ErrInsufficientRights

	case errors.Is(err, adapter.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrEntityNotFound, err)

	case errors.Is(err, adapter.ErrConflict):
		return ErrConflict

	case errors.Is(err, adapter.ErrServerUnavailable), errors.Is(err, adapter.ErrInternalServerError):
		return fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}

	return err
}

// extractBody extracts the body from a message of the form "bad request: <body>".
func extractBody(err error) string {
	msg := err.Error()
	for i := 0; i+1 < len(msg); i++ {
		if msg[i] == ':' && msg[i+1] == ' ' {
			return msg[i+2:]
		}
	}
	return msg
}
