package service

import (
	"fmt"

	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/MKhiriev/go-field-keeper/internal/crypto"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/metrics"
	"github.com/MKhiriev/go-field-keeper/internal/store"
)

type Services struct {
	AuthService       AuthService
	LockoutService    LockoutService
	SessionService    SessionService
	TelemetryService  TelemetryService
	SettingsService   SettingsService
	AuditService      AuditService
	AppInfoService    AppInfoService
	AdminTokenService AdminTokenService
}

func NewServices(repositories *store.Repositories, cfg config.StructuredConfig, m *metrics.Metrics, logger *logger.Logger) (*Services, error) {
	audit := NewAuditService(repositories.AuditRepository, logger)
	settings := NewSettingsService(repositories.SettingsRepository, audit, logger)
	lockouts := NewLockoutService(repositories.LoginAttemptRepository, repositories.OriginLockoutRepository, audit, m, logger)
	sessions := NewSessionService(repositories.SessionRepository, settings, crypto.NewTokenGenerator(), m, logger)

	auth, err := NewAuthService(
		repositories.CredentialRepository,
		crypto.NewBcryptHasher(cfg.App.BcryptCost),
		settings,
		lockouts,
		sessions,
		audit,
		m,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("error creating auth service: %w", err)
	}

	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating app info service: %w", err)
	}

	telemetry := NewTelemetryValidationService().Wrap(
		NewTelemetryService(repositories.TelemetryRepository, m, logger),
	)

	return &Services{
		AuthService:       auth,
		LockoutService:    lockouts,
		SessionService:    sessions,
		TelemetryService:  telemetry,
		SettingsService:   settings,
		AuditService:      audit,
		AppInfoService:    appInfo,
		AdminTokenService: NewAdminTokenService(cfg.App, logger),
	}, nil
}
