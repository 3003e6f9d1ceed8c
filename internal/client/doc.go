// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the device agent command line.
//
// Each subcommand maps onto a client service call: login and logout manage
// the single local session, event and ping queue telemetry in the SQLite
// outbox, flush drains it once and run keeps the flush job going until the
// process is signalled.
package client
