// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/crypto"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/metrics"
	"github.com/MKhiriev/go-field-keeper/internal/store"
	"github.com/MKhiriev/go-field-keeper/models"
)

// Revocation causes reported to metrics.
const (
	RevokeCauseSelf           = "self"
	RevokeCauseOthers         = "others"
	RevokeCauseAdmin          = "admin"
	RevokeCausePasswordChange = "password_change"
	RevokeCausePasswordReset  = "password_reset"
	RevokeCauseDeactivated    = "deactivated"
)

type sessionService struct {
	sessions store.SessionRepository
	settings SettingsService
	tokens   crypto.TokenGenerator
	metrics  *metrics.Metrics

	now    func() time.Time
	logger *logger.Logger
}

func NewSessionService(sessions store.SessionRepository, settings SettingsService, tokens crypto.TokenGenerator, m *metrics.Metrics, logger *logger.Logger) SessionService {
	return &sessionService{
		sessions: sessions,
		settings: settings,
		tokens:   tokens,
		metrics:  m,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *sessionService) Create(ctx context.Context, cred models.Credential, provenance models.SessionProvenance, settings models.Settings, now time.Time) (models.Session, error) {
	log := logger.FromContext(ctx)

	token, err := s.tokens.Generate()
	if err != nil {
		log.Err(err).Str("func", "*sessionService.Create").Msg("error generating session token")
		return models.Session{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	expiresAt := now.Add(settings.SessionTTL())
	session, evicted, err := s.sessions.CreateWithCap(ctx, models.Session{
		Token:             token,
		ActorID:           cred.ActorID,
		ProjectID:         cred.ProjectID,
		CreatedAt:         now,
		ExpiresAt:         &expiresAt,
		SessionProvenance: provenance,
	}, settings.SessionCap, now)
	if err != nil {
		log.Err(err).Str("func", "*sessionService.Create").Int64("actor_id", cred.ActorID).Msg("error creating session")
		return models.Session{}, fmt.Errorf("error creating session: %w", err)
	}

	if evicted > 0 {
		log.Info().Int64("actor_id", cred.ActorID).Int64("evicted", evicted).Msg("session cap enforced")
		s.metrics.SessionsCapped(evicted)
	}

	session.Token = token
	return session, nil
}

func (s *sessionService) Validate(ctx context.Context, token string) (models.SessionValidity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.SessionValidity{}, ErrAuthenticationFailed
	}

	session, err := s.sessions.FindByToken(ctx, token)
	if errors.Is(err, store.ErrSessionNotFound) {
		return models.SessionValidity{}, ErrAuthenticationFailed
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sessionService.Validate").Msg("error looking up session")
		return models.SessionValidity{}, fmt.Errorf("error looking up session: %w", err)
	}

	validity := models.SessionValidity{
		Token:     token,
		ActorID:   session.ActorID,
		ProjectID: session.ProjectID,
		Status:    models.SessionStatusOK,
	}

	now := s.now()
	if session.IsLive(now) {
		return validity, nil
	}

	settings, err := s.settings.Current(ctx)
	if err != nil {
		return models.SessionValidity{}, err
	}
	if now.Sub(*session.ExpiresAt) > settings.TelemetryGrace() {
		return models.SessionValidity{}, ErrAuthenticationFailed
	}

	validity.Status = models.SessionStatusInvalidated
	return validity, nil
}

func (s *sessionService) RevokeToken(ctx context.Context, actorID int64, token string, now time.Time) (int64, error) {
	revoked, err := s.sessions.RevokeToken(ctx, actorID, token, now)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sessionService.RevokeToken").Msg("error revoking session")
		return 0, fmt.Errorf("error revoking session: %w", err)
	}
	s.metrics.SessionsRevokedBy(RevokeCauseSelf, revoked)
	return revoked, nil
}

func (s *sessionService) RevokeAll(ctx context.Context, actorID int64, exceptToken *string, cause string, now time.Time) (int64, error) {
	revoked, err := s.sessions.RevokeAll(ctx, actorID, exceptToken, now)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sessionService.RevokeAll").Str("cause", cause).Msg("error revoking sessions")
		return 0, fmt.Errorf("error revoking sessions: %w", err)
	}
	s.metrics.SessionsRevokedBy(cause, revoked)
	return revoked, nil
}

func (s *sessionService) List(ctx context.Context, filter models.SessionFilter, page models.Page) ([]models.Session, int64, error) {
	sessions, total, err := s.sessions.List(ctx, filter, page.Normalize(), s.now())
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*sessionService.List").Msg("error listing sessions")
		return nil, 0, fmt.Errorf("error listing sessions: %w", err)
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return sessions, total, nil
}

func (s *sessionService) CountLive(ctx context.Context) (int64, error) {
	return s.sessions.CountLive(ctx, s.now())
}
