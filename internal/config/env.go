// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg (a *StructuredConfig or *ClientConfig) from the process
// environment through caarlos0/env, e.g. SERVER_TRUST_PROXY_HEADERS or
// DEVICE_PROJECT_ID. Variables from an optional .env file are already in the
// environment at this point, see withDotEnv. An unconvertible value such as
// SERVER_REQUEST_TIMEOUT=soon fails the whole parse.
func parseEnv(cfg any) error {
	err := env.Parse(cfg)
	if err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}

	return nil
}
