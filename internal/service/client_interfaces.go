package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/MKhiriev/go-field-keeper/models"
)

// ClientAuthService manages the device agent's single session.
type ClientAuthService interface {
	// Login authenticates against the configured project and persists the
	// session locally. Server rejections are mapped to [ErrAuthenticationFailed]
	// and [*TooManyAttemptsError].
	Login(ctx context.Context, username, password string) (models.LocalSession, error)

	// Logout revokes the session on the server when reachable and always
	// forgets it locally.
	Logout(ctx context.Context) error

	// ChangePassword rotates the password. The server revokes every session,
	// so the local one is cleared on success.
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error

	// Session returns the stored session or [ErrNotLoggedIn].
	Session(ctx context.Context) (models.LocalSession, error)
}

// ClientTelemetryService queues telemetry locally and drains the queue to the
// server.
type ClientTelemetryService interface {
	// EnqueueEvent stores an event with a fresh client event id.
	EnqueueEvent(ctx context.Context, eventType string, details json.RawMessage) (models.OutboxItem, error)

	// EnqueuePing stores a bare location/heartbeat submission.
	EnqueuePing(ctx context.Context, location *models.Location) (models.OutboxItem, error)

	// Flush submits queued items until the outbox is empty or the server
	// stops accepting them.
	Flush(ctx context.Context) (models.FlushReport, error)

	Pending(ctx context.Context) (int, error)
}

// ClientFlushJob periodically calls Flush in the background.
type ClientFlushJob interface {
	// Start launches the background goroutine. It flushes every interval,
	// defaulting to 30 seconds if interval is zero or negative. Any previously
	// running job is stopped before the new one begins.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the background goroutine to exit and blocks until it has
	// fully terminated.
	Stop()
}
