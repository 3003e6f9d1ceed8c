package service

import (
	"github.com/MKhiriev/go-field-keeper/internal/adapter"
	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/store"
	"github.com/MKhiriev/go-field-keeper/internal/utils"
)

type ClientServices struct {
	AuthService      ClientAuthService
	TelemetryService ClientTelemetryService
	FlushJob         ClientFlushJob
}

func NewClientServices(storages *store.ClientStorages, serverAdapter adapter.ServerAdapter, device config.ClientDevice, logger *logger.Logger) *ClientServices {
	authSvc := NewClientAuthService(storages.SessionRepository, serverAdapter, device, logger)
	telemetrySvc := NewClientTelemetryService(
		storages.OutboxRepository,
		storages.SessionRepository,
		serverAdapter,
		utils.NewUUIDGenerator(),
		device,
		logger,
	)

	return &ClientServices{
		AuthService:      authSvc,
		TelemetryService: telemetrySvc,
		FlushJob:         NewClientFlushJob(telemetrySvc, logger),
	}
}
