package utils

import (
	"context"

	"github.com/MKhiriev/go-field-keeper/models"
)

type contextKey string

func (c contextKey) String() string {
	return string(c)
}

var (
	// SessionCtxKey holds the [models.SessionValidity] of a field actor
	// request.
	SessionCtxKey = contextKey("session")

	// AdminIDCtxKey holds the administrator id taken from a verified admin
	// token.
	AdminIDCtxKey = contextKey("adminID")
)

func WithSession(ctx context.Context, session models.SessionValidity) context.Context {
	return context.WithValue(ctx, SessionCtxKey, session)
}

func GetSessionFromContext(ctx context.Context) (models.SessionValidity, bool) {
	session, ok := ctx.Value(SessionCtxKey).(models.SessionValidity)
	return session, ok
}

func WithAdminID(ctx context.Context, adminID int64) context.Context {
	return context.WithValue(ctx, AdminIDCtxKey, adminID)
}

// GetAdminIDFromContext returns the acting administrator, if any.
func GetAdminIDFromContext(ctx context.Context) (int64, bool) {
	adminID, ok := ctx.Value(AdminIDCtxKey).(int64)
	return adminID, ok
}
