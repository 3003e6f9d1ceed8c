// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the minimal lifecycle contract for the device agent.
type Client interface {
	// Run executes one command line and blocks until it finishes. The run
	// command blocks until ctx is cancelled.
	Run(ctx context.Context, args []string) error
}

// VersionReporter reports the server version; the adapter implements it.
type VersionReporter interface {
	Version(ctx context.Context) (string, error)
}
