// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport the field-keeper device agent uses
// to talk to the server.
//
// The primary abstraction is [ServerAdapter], which decouples the agent's
// services from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrTooManyRequests] for 429, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-field-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the
// field-keeper server. Implementations handle serialisation, the bearer
// header and mapping transport errors to the sentinels of this package.
type ServerAdapter interface {
	// SetToken stores the session token attached to all authenticated
	// requests.
	SetToken(token string)

	// Token returns the stored token, or an empty string.
	Token() string

	// Login authenticates against the project-scoped login route and stores
	// the returned token via SetToken.
	Login(ctx context.Context, projectID int64, req models.LoginRequest) (models.LoginResult, error)

	// SubmitTelemetry posts one submission. The server answers with one
	// result per stored item.
	SubmitTelemetry(ctx context.Context, projectID int64, submission models.TelemetrySubmission) ([]models.TelemetryResult, error)

	ChangePassword(ctx context.Context, projectID, actorID int64, req models.ChangePasswordRequest) error

	// RevokeCurrentSession expires the session behind the stored token.
	RevokeCurrentSession(ctx context.Context, projectID, actorID int64, deviceID *string) error

	// Version returns the server version string.
	Version(ctx context.Context) (string, error)
}
