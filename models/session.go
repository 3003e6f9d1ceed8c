package models

import "time"

// Session is an opaque bearer token issued to a field actor. Expiry is a
// logical state: revoked and elapsed sessions keep their rows.
type Session struct {
	ID        int64      `json:"id"`
	Token     string     `json:"-"`
	ActorID   int64      `json:"actorId"`
	ProjectID int64      `json:"projectId"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt"`

	SessionProvenance
}

// SessionProvenance is optional information about where a session was opened.
type SessionProvenance struct {
	IP        *string `json:"ip,omitempty"`
	UserAgent *string `json:"userAgent,omitempty"`
	DeviceID  *string `json:"deviceId,omitempty"`
	Comments  *string `json:"comments,omitempty"`
}

// IsLive reports whether the session has not expired at now.
func (s Session) IsLive(now time.Time) bool {
	return s.ExpiresAt == nil || s.ExpiresAt.After(now)
}

// SessionStatus annotates telemetry results with the validity of the caller's
// session at receipt time.
type SessionStatus string

const (
	SessionStatusOK          SessionStatus = "ok"
	SessionStatusInvalidated SessionStatus = "invalidated"
)

// SessionValidity is what bearer authentication resolves a token to.
type SessionValidity struct {
	Token     string
	ActorID   int64
	ProjectID int64
	Status    SessionStatus
}

// Live reports whether the session was live (not expired, not revoked).
func (v SessionValidity) Live() bool {
	return v.Status == SessionStatusOK
}

// SessionFilter narrows administrative session listings.
type SessionFilter struct {
	ProjectID *int64
	ActorID   *int64
	DeviceID  *string

	// Active restricts to live (true) or expired (false) sessions.
	Active *bool
}
