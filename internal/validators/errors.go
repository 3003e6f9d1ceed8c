package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")
)

// Credential policy errors.
var (
	ErrEmptyUsername        = errors.New("username is required")
	ErrInvalidUsername      = errors.New("username contains invalid characters")
	ErrEmptyPassword        = errors.New("password is required")
	ErrWeakPassword         = errors.New("password does not meet policy")
	ErrInvalidDisplayName   = errors.New("invalid display name")
	ErrInvalidPhone         = errors.New("invalid phone")
	ErrInvalidActorID       = errors.New("invalid actor id")
	ErrInvalidSettingsValue = errors.New("setting values must be positive integers")
)

// Telemetry payload errors.
var (
	ErrEmptyDeviceID        = errors.New("deviceId is required")
	ErrEmptyCollectVersion  = errors.New("collectVersion is required")
	ErrEmptyDeviceDateTime  = errors.New("deviceDateTime is required")
	ErrNotUTCDateTime       = errors.New("datetime must be an ISO 8601 UTC timestamp (Z or +00:00)")
	ErrMissingCoordinates   = errors.New("location.latitude and location.longitude are required")
	ErrEventAndEvents       = errors.New("event and events are mutually exclusive")
	ErrEmptyEventBatch      = errors.New("events must contain at least one item")
	ErrEventBatchTooLarge   = errors.New("events must contain at most 10 items")
	ErrEmptyEventID         = errors.New("event id is required")
	ErrEmptyEventType       = errors.New("event type is required")
	ErrInvalidDateRange     = errors.New("dateFrom must be before dateTo")
	ErrEmptyFilterDeviceID  = errors.New("deviceId filter must be a non-empty string")
	ErrInvalidFilterActorID = errors.New("appUserId filter must be positive")
	ErrInvalidFilterProject = errors.New("projectId filter must be positive")
)
