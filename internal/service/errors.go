package service

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Field actor error taxonomy. The transport maps each of these to exactly one
// status code.
var (
	// ErrInvalidInput covers malformed or missing fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPolicyViolation is returned when a new password is too weak.
	ErrPolicyViolation = errors.New("password does not satisfy the password policy")

	// ErrAuthenticationFailed is deliberately undifferentiated: unknown
	// username, inactive credential, wrong password, scope mismatch and a
	// per-credential lock all surface as this error.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrTooManyAttempts is matched by [*TooManyAttemptsError].
	ErrTooManyAttempts = errors.New("too many login attempts")

	ErrInsufficientRights = errors.New("insufficient rights")
	ErrEntityNotFound     = errors.New("entity not found")

	// ErrEntityInvalid is returned when the target is in a state that forbids
	// the operation, e.g. resetting the password of a deactivated credential.
	ErrEntityInvalid = errors.New("entity is in an invalid state")

	ErrConflict = errors.New("conflict")
)

var (
	ErrVersionIsNotSpecified   = errors.New("app version is not specified")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")
)

// Device agent errors.
var (
	ErrNotLoggedIn         = errors.New("not logged in, run the login command first")
	ErrSessionInvalidated  = errors.New("session was invalidated by the server, log in again")
	ErrServerUnavailable   = errors.New("server is unavailable, submissions stay queued")
	ErrNothingToSubmit     = errors.New("outbox is empty")
	ErrMissingDeviceConfig = errors.New("device id, project id and collect version must be configured")
)

// TooManyAttemptsError is returned while the caller's origin is locked out.
// It matches [ErrTooManyAttempts] with [errors.Is].
type TooManyAttemptsError struct {
	RetryAfter time.Duration
}

func NewTooManyAttemptsError(retryAfter time.Duration) *TooManyAttemptsError {
	return &TooManyAttemptsError{RetryAfter: retryAfter}
}

func (e *TooManyAttemptsError) Error() string {
	return fmt.Sprintf("%s, retry after %d seconds", ErrTooManyAttempts, e.RetryAfterSeconds())
}

func (e *TooManyAttemptsError) Is(target error) bool {
	return target == ErrTooManyAttempts
}

// RetryAfterSeconds rounds up and never returns less than one second.
func (e *TooManyAttemptsError) RetryAfterSeconds() int {
	seconds := int(math.Ceil(e.RetryAfter.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}
