// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"strings"

	"github.com/robfig/cron/v3"
)

// validate checks the merged server configuration before startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.App.TokenSignKey == "" || cfg.App.TokenIssuer == "" || cfg.App.TokenDuration <= 0 {
		return ErrInvalidAppConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	for _, schedule := range []string{cfg.Workers.HealthProbeSchedule, cfg.Workers.SessionGaugeSchedule} {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return ErrInvalidWorkerConfigs
		}
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.FlushInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	if strings.TrimSpace(cfg.Device.DeviceID) == "" || strings.TrimSpace(cfg.Device.CollectVersion) == "" {
		return ErrInvalidDeviceConfigs
	}

	return nil
}
