package store

import (
	"context"

	"github.com/MKhiriev/go-field-keeper/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// OutboxRepository is the device-side queue of telemetry submissions that
// have not been accepted by the server yet.
type OutboxRepository interface {
	Enqueue(ctx context.Context, item models.OutboxItem) (models.OutboxItem, error)
	// Pending returns up to limit items, oldest first.
	Pending(ctx context.Context, limit int) ([]models.OutboxItem, error)
	Delete(ctx context.Context, ids ...int64) error
	// MarkFailed bumps the attempt counter and stores the last error.
	MarkFailed(ctx context.Context, id int64, reason string) error
	Count(ctx context.Context) (int, error)
}

// LocalSessionRepository keeps the single session of the device agent.
type LocalSessionRepository interface {
	Save(ctx context.Context, session models.LocalSession) error
	// Load returns [ErrLocalSessionNotFound] when the agent never logged in
	// or logged out.
	Load(ctx context.Context) (models.LocalSession, error)
	MarkInvalidated(ctx context.Context) error
	Clear(ctx context.Context) error
}
