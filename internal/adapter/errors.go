package adapter

import "errors"

// Transport errors, one per answered status class. Bodies are appended to the
// message after ": ".
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("internal server error")
	ErrServerUnavailable   = errors.New("server unavailable")
)

// RetryAfterError carries the Retry-After hint of a 429 answer.
type RetryAfterError struct {
	Seconds int
	Message string
}

func (e *RetryAfterError) Error() string {
	return ErrTooManyRequests.Error() + ": " + e.Message
}

func (e *RetryAfterError) Is(target error) bool {
	return target == ErrTooManyRequests
}
