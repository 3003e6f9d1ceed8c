package models

import (
	"encoding/json"
	"time"
)

// MaxTelemetryBatch is the largest number of events accepted in one request.
const MaxTelemetryBatch = 10

// TelemetrySubmission is the payload a field actor device posts. At most one
// of Event and Events may be set; when neither is present the submission is
// a bare location/heartbeat ping.
type TelemetrySubmission struct {
	// AppUserID is an optional cross-check; it must match the authenticated
	// actor when supplied.
	AppUserID *int64 `json:"appUserId,omitempty"`

	DeviceID       string `json:"deviceId"`
	CollectVersion string `json:"collectVersion"`

	// DeviceDateTime must be an RFC 3339 timestamp in UTC ("Z", "+00:00" or
	// "-00:00" suffix).
	DeviceDateTime string `json:"deviceDateTime"`

	Location *Location `json:"location,omitempty"`

	Event *TelemetryEvent `json:"event,omitempty"`

	// Events is a pointer so an explicit empty batch can be told apart from an
	// absent one.
	Events *[]TelemetryEvent `json:"events,omitempty"`
}

// TelemetryEvent is a single client event. ID is assigned by the client and
// is the idempotency key together with the actor and the device.
type TelemetryEvent struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt *string         `json:"occurredAt,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
}

// Location is an optional position fix. Latitude and Longitude are required
// whenever a location object is present.
type Location struct {
	Latitude  *Number `json:"latitude"`
	Longitude *Number `json:"longitude"`
	Altitude  *Number `json:"altitude,omitempty"`
	Accuracy  *Number `json:"accuracy,omitempty"`
	Speed     *Number `json:"speed,omitempty"`
	Bearing   *Number `json:"bearing,omitempty"`
	Provider  *string `json:"provider,omitempty"`
}

// TelemetryRecord is one stored telemetry row.
type TelemetryRecord struct {
	ID             int64           `json:"id"`
	ActorID        int64           `json:"appUserId"`
	ProjectID      int64           `json:"projectId"`
	DeviceID       string          `json:"deviceId"`
	CollectVersion string          `json:"collectVersion"`
	DeviceDateTime time.Time       `json:"deviceDateTime"`
	ClientEventID  *string         `json:"clientEventId"`
	Event          json.RawMessage `json:"event"`
	Location       *Location       `json:"location"`
	ReceivedAt     time.Time       `json:"dateTime"`
}

// TelemetryResult reports the outcome of one ingested item.
type TelemetryResult struct {
	ID            int64         `json:"id"`
	AppUserID     int64         `json:"appUserId"`
	DeviceID      string        `json:"deviceId"`
	ClientEventID *string       `json:"clientEventId"`
	DateTime      time.Time     `json:"dateTime"`
	ServerTime    time.Time     `json:"serverTime"`
	Status        SessionStatus `json:"status"`
}

// TelemetryFilter narrows the administrative telemetry listing. Dates apply
// to the server receive time.
type TelemetryFilter struct {
	ProjectID *int64
	DeviceID  *string
	ActorID   *int64
	DateFrom  *time.Time
	DateTo    *time.Time
}
