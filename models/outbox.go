// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// OutboxItem is a telemetry submission queued on the device until the server
// accepts it.
type OutboxItem struct {
	ID int64

	// ClientEventID is the idempotency key sent as the event id, or empty for
	// a bare ping.
	ClientEventID string

	Submission TelemetrySubmission

	CreatedAt time.Time
	Attempts  int
	LastError *string
}

// LocalSession is the device-side copy of the last successful login.
type LocalSession struct {
	ActorID   int64
	ProjectID int64
	Token     string
	ExpiresAt time.Time

	// Invalidated is set once the server tags telemetry as invalidated; the
	// device must log in again before the token is used for anything else.
	Invalidated bool
}

// FlushReport summarises one outbox flush.
type FlushReport struct {
	// Sent counts items the server accepted.
	Sent int

	// Dropped counts items the server rejected as malformed; they are removed
	// from the outbox because resending cannot succeed.
	Dropped int

	// Remaining is the outbox size after the flush.
	Remaining int

	// Invalidated is set when the server tagged results as invalidated.
	Invalidated bool
}
