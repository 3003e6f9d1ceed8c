package models

import "time"

// LoginRequest carries everything the authentication state machine needs for
// a single login call.
type LoginRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	DeviceID *string `json:"deviceId,omitempty"`
	Comments *string `json:"comments,omitempty"`

	// Origin is the caller network address. Nil when unknown.
	Origin *string `json:"-"`

	// UserAgent is copied from the transport, if any.
	UserAgent *string `json:"-"`

	// ScopeID restricts the login to credentials owned by this project.
	ScopeID *int64 `json:"-"`
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	ActorID    int64     `json:"actorId"`
	Token      string    `json:"token"`
	ProjectID  int64     `json:"projectId"`
	ExpiresAt  time.Time `json:"expiresAt"`
	ServerTime time.Time `json:"serverTime"`
}

// LoginAttempt is an append-only fact written for every login call that
// reaches verification or is rejected by a lockout gate.
type LoginAttempt struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Origin    *string   `json:"ip,omitempty"`
	Succeeded bool      `json:"succeeded"`
	CreatedAt time.Time `json:"createdAt"`
}

// LockStatus is the aggregate the per-credential gate is derived from.
type LockStatus struct {
	// RecentFailures counts failed attempts inside the trailing window.
	RecentFailures int

	// LastFailure is the newest failed attempt regardless of the window.
	LastFailure *time.Time
}

// OriginLockout is an explicitly recorded per-origin lock. Its expiry does
// not depend on later failure traffic.
type OriginLockout struct {
	ID          int64     `json:"id"`
	Origin      string    `json:"ip"`
	Username    *string   `json:"username,omitempty"`
	LockedAt    time.Time `json:"lockedAt"`
	LockedUntil time.Time `json:"lockedUntil"`
}

// FailureReason tags a failed login for diagnostics. It is written to the
// audit trail and logs only; callers always see a generic failure.
type FailureReason string

const (
	FailureLocked            FailureReason = "locked"
	FailureInactiveOrMissing FailureReason = "inactive_or_missing"
	FailureBadPassword       FailureReason = "bad_password"
	FailureScopeMismatch     FailureReason = "scope_mismatch"
	FailureOriginLocked      FailureReason = "ip_rate_limit"
)
