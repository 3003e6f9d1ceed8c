package models

import "time"

// Audit actions written by the service.
const (
	AuditLoginSuccess   = "app_user.login.success"
	AuditLoginFailure   = "app_user.login.failure"
	AuditOriginLockout  = "app_user.login.ip.lockout"
	AuditCredentialNew  = "app_user.create"
	AuditPasswordChange = "app_user.password.change"
	AuditPasswordReset  = "app_user.password.reset"
	AuditSessionsRevoke = "app_user.sessions.revoke"
	AuditActiveChange   = "app_user.active"
	AuditPhoneUpdate    = "app_user.phone.update"
	AuditLockoutClear   = "app_user.lockout.clear"
	AuditSettingsUpdate = "app_user.settings.update"
)

// AuditEntry is one append-only audit record.
type AuditEntry struct {
	ID int64 `json:"id"`

	// ActorID is the acting party; nil for anonymous calls such as logins.
	ActorID *int64 `json:"actorId"`

	Action string `json:"action"`

	// Subject is the actor the action applies to, if any.
	Subject *int64 `json:"subject"`

	Details map[string]any `json:"details"`

	LoggedAt time.Time `json:"loggedAt"`
}
