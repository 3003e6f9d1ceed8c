package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-field-keeper/models"
)

// AuthService runs the login state machine and the credential lifecycle of
// field actors.
type AuthService interface {
	// Login resolves the credential, consults both lockout gates and opens a
	// capped session. Failures are recorded before being returned as
	// [ErrAuthenticationFailed] or [*TooManyAttemptsError].
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResult, error)

	// ChangePassword verifies the old password, enforces the policy on the new
	// one and revokes every session of the actor.
	ChangePassword(ctx context.Context, actorID int64, req models.ChangePasswordRequest) error

	CreateCredential(ctx context.Context, adminID int64, req models.CreateCredentialRequest) (models.Credential, error)
	ResetPassword(ctx context.Context, adminID, projectID, actorID int64, req models.ResetPasswordRequest) error
	// SetActive toggles the credential. Deactivation revokes all sessions;
	// requesting the current state is a successful no-op.
	SetActive(ctx context.Context, adminID, projectID, actorID int64, active bool) error
	UpdatePhone(ctx context.Context, adminID, projectID, actorID int64, phone *string) (models.Credential, error)

	RevokeCurrentSession(ctx context.Context, session models.SessionValidity, deviceID *string) error
	RevokeOtherSessions(ctx context.Context, session models.SessionValidity) (int64, error)
	RevokeAllSessions(ctx context.Context, adminID, projectID, actorID int64) (int64, error)
}

// LockoutService owns both lockout gates.
type LockoutService interface {
	// ActiveOriginLock returns the recorded lock of origin in force at now,
	// or nil.
	ActiveOriginLock(ctx context.Context, origin string, now time.Time) (*models.OriginLockout, error)

	// CredentialLocked derives the per-credential lock from recent failures.
	CredentialLocked(ctx context.Context, username string, origin *string, settings models.Settings, now time.Time) (bool, error)

	// RecordFailure appends a failed attempt. When origin crosses its own
	// threshold a lock is recorded and returned.
	RecordFailure(ctx context.Context, username string, origin *string, settings models.Settings, now time.Time) (*models.OriginLockout, error)
	RecordSuccess(ctx context.Context, username string, origin *string, now time.Time) error

	// Clear removes failed attempts and recorded locks of username, narrowed
	// to req.IP when set.
	Clear(ctx context.Context, adminID int64, req models.ClearLockoutRequest) error
}

// SessionService issues, validates and expires bearer sessions.
type SessionService interface {
	// Create issues a new token for cred and restores the per-actor cap in
	// the same unit of work.
	Create(ctx context.Context, cred models.Credential, provenance models.SessionProvenance, settings models.Settings, now time.Time) (models.Session, error)

	// Validate resolves token. Live sessions are [models.SessionStatusOK];
	// sessions expired within the telemetry grace window are
	// [models.SessionStatusInvalidated]; anything else is
	// [ErrAuthenticationFailed].
	Validate(ctx context.Context, token string) (models.SessionValidity, error)

	RevokeToken(ctx context.Context, actorID int64, token string, now time.Time) (int64, error)
	RevokeAll(ctx context.Context, actorID int64, exceptToken *string, cause string, now time.Time) (int64, error)

	List(ctx context.Context, filter models.SessionFilter, page models.Page) ([]models.Session, int64, error)
	CountLive(ctx context.Context) (int64, error)
}

// TelemetryService ingests device telemetry.
type TelemetryService interface {
	// Submit stores every item of submission on behalf of session and tags
	// each result with the session status at receipt time.
	Submit(ctx context.Context, session models.SessionValidity, projectID int64, submission models.TelemetrySubmission) ([]models.TelemetryResult, error)
	List(ctx context.Context, filter models.TelemetryFilter, page models.Page) ([]models.TelemetryRecord, int64, error)
}

// TelemetryServiceWrapper decorates a TelemetryService, e.g. with payload
// validation.
type TelemetryServiceWrapper interface {
	Wrap(TelemetryService) TelemetryService
}

// SettingsService is the typed view over runtime settings. Values are read on
// every call.
type SettingsService interface {
	Current(ctx context.Context) (models.Settings, error)
	Update(ctx context.Context, adminID int64, update models.SettingsUpdate) (models.Settings, error)
}

// AuditService is a best-effort sink: failures are logged and never reach the
// caller.
type AuditService interface {
	Record(ctx context.Context, actorID *int64, action string, subject *int64, details map[string]any)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// AdminTokenService issues and verifies administrator bearer tokens.
type AdminTokenService interface {
	CreateToken(ctx context.Context, adminID int64) (models.AdminToken, error)
	ParseToken(ctx context.Context, tokenString string) (models.AdminToken, error)
}
