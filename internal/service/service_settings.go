package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/store"
	"github.com/MKhiriev/go-field-keeper/internal/validators"
	"github.com/MKhiriev/go-field-keeper/models"
)

type settingsService struct {
	settingsRepository store.SettingsRepository
	audit              AuditService

	logger *logger.Logger
}

func NewSettingsService(settingsRepository store.SettingsRepository, audit AuditService, logger *logger.Logger) SettingsService {
	return &settingsService{
		settingsRepository: settingsRepository,
		audit:              audit,
		logger:             logger,
	}
}

// Current reads every stored key. Missing, non-integer and non-positive
// values fall back to [models.DefaultSettings].
func (s *settingsService) Current(ctx context.Context) (models.Settings, error) {
	stored, err := s.settingsRepository.GetAll(ctx)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*settingsService.Current").Msg("error reading settings")
		return models.Settings{}, fmt.Errorf("error reading settings: %w", err)
	}

	settings := models.DefaultSettings()
	for key, target := range settingTargets(&settings) {
		if value, ok := positiveInt(stored[key]); ok {
			*target = value
		}
	}

	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, adminID int64, update models.SettingsUpdate) (models.Settings, error) {
	log := logger.FromContext(ctx)

	pairs := update.Pairs()
	if len(pairs) == 0 {
		return models.Settings{}, fmt.Errorf("%w: no settings provided", ErrInvalidInput)
	}
	for key, value := range pairs {
		if value <= 0 {
			return models.Settings{}, fmt.Errorf("%w: %s: %w", ErrInvalidInput, key, validators.ErrInvalidSettingsValue)
		}
	}

	if err := s.settingsRepository.Upsert(ctx, pairs); err != nil {
		log.Err(err).Str("func", "*settingsService.Update").Msg("error storing settings")
		return models.Settings{}, fmt.Errorf("error storing settings: %w", err)
	}

	details := make(map[string]any, len(pairs))
	for key, value := range pairs {
		details[key] = value
	}
	s.audit.Record(ctx, &adminID, models.AuditSettingsUpdate, nil, details)

	return s.Current(ctx)
}

func settingTargets(s *models.Settings) map[string]*int {
	return map[string]*int{
		models.SettingSessionTTLDays:        &s.SessionTTLDays,
		models.SettingSessionCap:            &s.SessionCap,
		models.SettingLockMaxFailures:       &s.LockMaxFailures,
		models.SettingLockWindowMinutes:     &s.LockWindowMinutes,
		models.SettingLockDurationMinutes:   &s.LockDurationMinutes,
		models.SettingIPMaxFailures:         &s.IPMaxFailures,
		models.SettingIPWindowMinutes:       &s.IPWindowMinutes,
		models.SettingIPLockDurationMinutes: &s.IPLockDurationMinutes,
		models.SettingTelemetryGraceDays:    &s.TelemetryGraceDays,
	}
}

func positiveInt(raw string) (int, bool) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}
