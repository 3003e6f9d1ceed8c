package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-field-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// ErrorClassificator decides whether a failed database operation may succeed
// when repeated.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// CredentialRepository stores field actor credentials.
type CredentialRepository interface {
	// CreateCredential inserts cred and returns it with timestamps filled.
	// A duplicate username yields [ErrUsernameTaken], a second credential
	// for the same actor [ErrActorHasCredential].
	CreateCredential(ctx context.Context, cred models.Credential) (models.Credential, error)
	// FindByUsername looks up a canonical username.
	FindByUsername(ctx context.Context, username string) (models.Credential, error)
	FindByActorID(ctx context.Context, actorID int64) (models.Credential, error)
	UpdatePasswordDigest(ctx context.Context, actorID int64, digest string) error
	SetActive(ctx context.Context, actorID int64, active bool) error
	UpdatePhone(ctx context.Context, actorID int64, phone *string) error
}

// LoginAttemptRepository is the append-only attempt log behind both lockout
// gates.
type LoginAttemptRepository interface {
	RecordAttempt(ctx context.Context, attempt models.LoginAttempt) error
	// LockStatus aggregates failed attempts for username, narrowed to origin
	// when it is not nil. RecentFailures counts failures at or after since.
	LockStatus(ctx context.Context, username string, origin *string, since time.Time) (models.LockStatus, error)
	// CountOriginFailures counts failures from origin, for any username, at
	// or after since.
	CountOriginFailures(ctx context.Context, origin string, since time.Time) (int, error)
	// DeleteFailures removes failed attempts for username, narrowed to origin
	// when it is not nil.
	DeleteFailures(ctx context.Context, username string, origin *string) (int64, error)
}

// OriginLockoutRepository stores explicit per-origin locks.
type OriginLockoutRepository interface {
	// FindActive returns the lock with the latest expiry that is still in
	// force at now, or nil.
	FindActive(ctx context.Context, origin string, now time.Time) (*models.OriginLockout, error)
	RecordLockout(ctx context.Context, lockout models.OriginLockout) (models.OriginLockout, error)
	// DeleteLockouts removes locks for origin, or for username when origin
	// is nil.
	DeleteLockouts(ctx context.Context, username string, origin *string) (int64, error)
}

// SessionRepository stores bearer sessions. Expiry is always logical:
// revocation sets expires_at, rows are never deleted.
type SessionRepository interface {
	// CreateWithCap inserts session and, in the same transaction, expires
	// the oldest live sessions of the actor so that at most maxLive remain.
	// It returns the stored session and the number of evicted sessions.
	CreateWithCap(ctx context.Context, session models.Session, maxLive int, now time.Time) (models.Session, int64, error)
	FindByToken(ctx context.Context, token string) (models.Session, error)
	// RevokeToken expires the session identified by token if it belongs to
	// actorID and is still live.
	RevokeToken(ctx context.Context, actorID int64, token string, now time.Time) (int64, error)
	// RevokeAll expires every live session of actorID except exceptToken.
	RevokeAll(ctx context.Context, actorID int64, exceptToken *string, now time.Time) (int64, error)
	List(ctx context.Context, filter models.SessionFilter, page models.Page, now time.Time) ([]models.Session, int64, error)
	CountLive(ctx context.Context, now time.Time) (int64, error)
}

// TelemetryRepository stores device telemetry.
type TelemetryRepository interface {
	// UpsertBatch inserts or overwrites records in one transaction and
	// returns them with ID and ReceivedAt filled, in input order.
	UpsertBatch(ctx context.Context, records []models.TelemetryRecord) ([]models.TelemetryRecord, error)
	List(ctx context.Context, filter models.TelemetryFilter, page models.Page) ([]models.TelemetryRecord, int64, error)
}

// SettingsRepository is the runtime key/value settings table.
type SettingsRepository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Upsert(ctx context.Context, values map[string]int) error
}

// AuditRepository appends audit entries.
type AuditRepository interface {
	Record(ctx context.Context, entry models.AuditEntry) error
}

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}
