// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// field-keeper server handlers and the device agent.
//
// All Msg* constants are human-readable message strings that are written into
// the "error" field of HTTP response bodies. The device agent matches some of
// them to recover the business error behind a status code.
package app

const (
	// MsgInvalidDataProvided is returned when the request body is not valid
	// JSON for the route.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgPolicyViolation is returned when a new password is too weak.
	MsgPolicyViolation = "password does not satisfy the password policy"

	// MsgAuthenticationFailed covers every rejected login and every unknown,
	// expired or revoked session token. It never says which.
	MsgAuthenticationFailed = "authentication failed"

	// MsgTooManyAttempts accompanies 429 answers with a Retry-After header.
	MsgTooManyAttempts = "too many login attempts"

	MsgInsufficientRights = "insufficient rights"
	MsgNotFound           = "not found"

	// MsgEntityInvalid is returned when the target credential is in a state
	// that forbids the operation.
	MsgEntityInvalid = "credential is deactivated"

	// MsgConflict is returned when the username is taken or the actor already
	// owns a credential.
	MsgConflict = "credential already exists"

	// MsgTemporarilyUnavailable marks failures that are safe to retry.
	MsgTemporarilyUnavailable = "service temporarily unavailable"

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgTokenIsExpiredOrInvalid is returned when an administrator token is
	// expired or cannot be verified.
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgSessionInvalidated is returned on routes that require a live session
	// when the caller presents one that expired within the grace window.
	MsgSessionInvalidated = "session is no longer valid, log in again"

	// MsgInvalidPathParameter is returned when a numeric route parameter
	// cannot be parsed.
	MsgInvalidPathParameter = "invalid path parameter"
)
