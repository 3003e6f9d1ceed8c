// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

// errNoServersAreCreated is returned by [NewServer] when neither an HTTP nor a
// gRPC handler was built, i.e. both listen addresses are empty.
var errNoServersAreCreated = errors.New("no servers are created: set SERVER_ADDRESS or SERVER_GRPC_ADDRESS")
