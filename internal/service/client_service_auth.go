package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-field-keeper/internal/adapter"
	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/store"
	"github.com/MKhiriev/go-field-keeper/models"
)

type clientAuthService struct {
	sessions store.LocalSessionRepository
	adapter  adapter.ServerAdapter
	device   config.ClientDevice

	logger *logger.Logger
}

func NewClientAuthService(sessions store.LocalSessionRepository, serverAdapter adapter.ServerAdapter, device config.ClientDevice, logger *logger.Logger) ClientAuthService {
	return &clientAuthService{sessions: sessions, adapter: serverAdapter, device: device, logger: logger}
}

func (a *clientAuthService) Login(ctx context.Context, username, password string) (models.LocalSession, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return models.LocalSession{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	req := models.LoginRequest{Username: username, Password: password}
	if a.device.DeviceID != "" {
		deviceID := a.device.DeviceID
		req.DeviceID = &deviceID
	}

	result, err := a.adapter.Login(ctx, a.device.ProjectID, req)
	if err != nil {
		a.logger.Err(err).Str("func", "*clientAuthService.Login").Msg("login rejected by server")
		return models.LocalSession{}, mapAdapterError(err)
	}

	session := models.LocalSession{
		ActorID:   result.ActorID,
		ProjectID: result.ProjectID,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}
	if err = a.sessions.Save(ctx, session); err != nil {
		return models.LocalSession{}, fmt.Errorf("error saving local session: %w", err)
	}

	a.logger.Info().Int64("actor_id", session.ActorID).Time("expires_at", session.ExpiresAt).Msg("logged in")
	return session, nil
}

func (a *clientAuthService) Logout(ctx context.Context) error {
	session, err := a.Session(ctx)
	if err != nil {
		return err
	}

	a.adapter.SetToken(session.Token)
	deviceID := a.device.DeviceID
	err = a.adapter.RevokeCurrentSession(ctx, session.ProjectID, session.ActorID, &deviceID)
	if err != nil && !errors.Is(err, adapter.ErrUnauthorized) {
		a.logger.Warn().Err(err).Str("func", "*clientAuthService.Logout").Msg("server revoke failed, forgetting session locally")
	}

	if err = a.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("error clearing local session: %w", err)
	}
	return nil
}

func (a *clientAuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	session, err := a.Session(ctx)
	if err != nil {
		return err
	}
	if session.Invalidated {
		return ErrSessionInvalidated
	}

	a.adapter.SetToken(session.Token)
	err = a.adapter.ChangePassword(ctx, session.ProjectID, session.ActorID, models.ChangePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
	if err != nil {
		return mapAdapterError(err)
	}

	if err = a.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("error clearing local session: %w", err)
	}
	return nil
}

func (a *clientAuthService) Session(ctx context.Context) (models.LocalSession, error) {
	session, err := a.sessions.Load(ctx)
	if errors.Is(err, store.ErrLocalSessionNotFound) {
		return models.LocalSession{}, ErrNotLoggedIn
	}
	if err != nil {
		return models.LocalSession{}, fmt.Errorf("error loading local session: %w", err)
	}
	return session, nil
}
