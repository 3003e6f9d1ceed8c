package models

import "time"

// Credential is the username/password pair attached to a field actor.
// Exactly one Credential exists per actor and its Username is unique across
// all credentials in canonical (trimmed, lower-cased) form.
type Credential struct {
	// ActorID is the identifier of the owning field actor. The actor itself is
	// created and stored outside of this service.
	ActorID int64 `json:"actorId"`

	// ProjectID is the scope the owning actor belongs to. Scoped logins must
	// match it exactly.
	ProjectID int64 `json:"projectId"`

	// Username is the canonical login name.
	Username string `json:"username"`

	// PasswordDigest is the opaque hasher output. It is only ever produced by
	// the policy-gated creation, change and reset paths and never leaves the
	// server.
	PasswordDigest string `json:"-"`

	// DisplayName is an optional human readable label.
	DisplayName *string `json:"displayName,omitempty"`

	// Phone is an optional contact number, at most 25 characters.
	Phone *string `json:"phone,omitempty"`

	// Active reports whether the credential may log in.
	Active bool `json:"active"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateCredentialRequest is the administrative payload used to attach a
// credential to an already existing actor.
type CreateCredentialRequest struct {
	ActorID     int64   `json:"actorId"`
	ProjectID   int64   `json:"-"`
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	DisplayName *string `json:"displayName,omitempty"`
	Phone       *string `json:"phone,omitempty"`

	// Active defaults to true when omitted.
	Active *bool `json:"active,omitempty"`
}

// ChangePasswordRequest is sent by a field actor to rotate its own password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ResetPasswordRequest is sent by an administrator.
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// SetActiveRequest toggles a credential.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// UpdatePhoneRequest replaces the stored phone number. A nil Phone clears it.
type UpdatePhoneRequest struct {
	Phone *string `json:"phone"`
}

// ClearLockoutRequest removes failed attempts for Username and, when IP is
// set, only those recorded for that origin.
type ClearLockoutRequest struct {
	Username string  `json:"username"`
	IP       *string `json:"ip,omitempty"`
}
