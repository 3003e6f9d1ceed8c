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
	"github.com/MKhiriev/go-field-keeper/internal/validators"
	"github.com/MKhiriev/go-field-keeper/models"
)

const loginOutcomeSuccess = "success"

// decoySecret is hashed once at construction. Logins for unknown usernames
// verify against its digest so they cost as much as real ones.
const decoySecret = "field-keeper-decoy-secret"

// authService is the concrete implementation of AuthService.
type authService struct {
	credentials store.CredentialRepository
	hasher      crypto.PasswordHasher

	settings SettingsService
	lockouts LockoutService
	sessions SessionService
	audit    AuditService
	metrics  *metrics.Metrics

	// decoyDigest is verified when no credential resolves.
	decoyDigest string

	now    func() time.Time
	logger *logger.Logger
}

// NewAuthService wires the login state machine. It fails only when the decoy
// digest cannot be computed.
func NewAuthService(
	credentials store.CredentialRepository,
	hasher crypto.PasswordHasher,
	settings SettingsService,
	lockouts LockoutService,
	sessions SessionService,
	audit AuditService,
	m *metrics.Metrics,
	logger *logger.Logger,
) (AuthService, error) {
	decoy, err := hasher.Hash(decoySecret)
	if err != nil {
		return nil, fmt.Errorf("error computing decoy digest: %w", err)
	}

	return &authService{
		credentials: credentials,
		hasher:      hasher,
		settings:    settings,
		lockouts:    lockouts,
		sessions:    sessions,
		audit:       audit,
		metrics:     m,
		decoyDigest: decoy,
		now:         time.Now,
		logger:      logger,
	}, nil
}

// Login evaluates, in order: the per-origin gate, the per-credential gate and
// the password. Every rejection past input validation is written to the
// attempt log and the audit trail before it is returned.
func (a *authService) Login(ctx context.Context, req models.LoginRequest) (models.LoginResult, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return models.LoginResult{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	now := a.now()
	username := validators.CanonicalUsername(req.Username)

	settings, err := a.settings.Current(ctx)
	if err != nil {
		return models.LoginResult{}, err
	}

	if req.Origin != nil {
		lock, err := a.lockouts.ActiveOriginLock(ctx, *req.Origin, now)
		if err != nil {
			return models.LoginResult{}, err
		}
		if lock != nil {
			err = a.loginFailed(ctx, username, req.Origin, nil, models.FailureOriginLocked, settings, now)
			if errors.Is(err, ErrAuthenticationFailed) || errors.Is(err, ErrTooManyAttempts) {
				return models.LoginResult{}, NewTooManyAttemptsError(lock.LockedUntil.Sub(now))
			}
			return models.LoginResult{}, err
		}
	}

	locked, err := a.lockouts.CredentialLocked(ctx, username, req.Origin, settings, now)
	if err != nil {
		return models.LoginResult{}, err
	}
	if locked {
		return models.LoginResult{}, a.loginFailed(ctx, username, req.Origin, nil, models.FailureLocked, settings, now)
	}

	cred, found, err := a.resolveCredential(ctx, req.Username)
	if err != nil {
		return models.LoginResult{}, err
	}

	digest := a.decoyDigest
	if found {
		digest = cred.PasswordDigest
	}
	passwordOK := a.hasher.Verify(req.Password, digest)

	var subject *int64
	if found {
		subject = &cred.ActorID
	}
	switch {
	case !found || !cred.Active:
		return models.LoginResult{}, a.loginFailed(ctx, username, req.Origin, subject, models.FailureInactiveOrMissing, settings, now)
	case req.ScopeID != nil && *req.ScopeID != cred.ProjectID:
		return models.LoginResult{}, a.loginFailed(ctx, username, req.Origin, subject, models.FailureScopeMismatch, settings, now)
	case !passwordOK:
		return models.LoginResult{}, a.loginFailed(ctx, username, req.Origin, subject, models.FailureBadPassword, settings, now)
	}

	if err = a.lockouts.RecordSuccess(ctx, username, req.Origin, now); err != nil {
		return models.LoginResult{}, err
	}

	session, err := a.sessions.Create(ctx, cred, models.SessionProvenance{
		IP:        req.Origin,
		UserAgent: req.UserAgent,
		DeviceID:  req.DeviceID,
		Comments:  req.Comments,
	}, settings, now)
	if err != nil {
		return models.LoginResult{}, err
	}

	a.metrics.LoginOutcome(loginOutcomeSuccess)
	a.audit.Record(ctx, &cred.ActorID, models.AuditLoginSuccess, &cred.ActorID, map[string]any{
		"username":  username,
		"ip":        req.Origin,
		"deviceId":  req.DeviceID,
		"sessionId": session.ID,
	})
	log.Info().Int64("actor_id", cred.ActorID).Str("username", username).Msg("field actor logged in")

	return models.LoginResult{
		ActorID:    cred.ActorID,
		Token:      session.Token,
		ProjectID:  cred.ProjectID,
		ExpiresAt:  *session.ExpiresAt,
		ServerTime: now,
	}, nil
}

// resolveCredential treats a username that fails normalization exactly like
// an unknown one.
func (a *authService) resolveCredential(ctx context.Context, raw string) (models.Credential, bool, error) {
	username, err := validators.NormalizeUsername(raw)
	if err != nil {
		return models.Credential{}, false, nil
	}

	cred, err := a.credentials.FindByUsername(ctx, username)
	if errors.Is(err, store.ErrCredentialNotFound) {
		return models.Credential{}, false, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*authService.resolveCredential").Msg("error looking up credential")
		return models.Credential{}, false, fmt.Errorf("error looking up credential: %w", err)
	}

	return cred, true, nil
}

// loginFailed writes the attempt, the audit entry and the metric for a
// rejected login. The reason never leaves the server. It returns
// [*TooManyAttemptsError] when this failure locked the origin and
// [ErrAuthenticationFailed] otherwise.
func (a *authService) loginFailed(ctx context.Context, username string, origin *string, subject *int64, reason models.FailureReason, settings models.Settings, now time.Time) error {
	lock, err := a.lockouts.RecordFailure(ctx, username, origin, settings, now)
	if err != nil {
		return err
	}

	a.metrics.LoginOutcome(string(reason))
	a.audit.Record(ctx, nil, models.AuditLoginFailure, subject, map[string]any{
		"username": username,
		"ip":       origin,
		"reason":   string(reason),
	})
	logger.FromContext(ctx).Info().
		Str("username", username).
		Str("reason", string(reason)).
		Msg("login failed")

	if lock != nil {
		return NewTooManyAttemptsError(lock.LockedUntil.Sub(now))
	}
	return ErrAuthenticationFailed
}

func (a *authService) ChangePassword(ctx context.Context, actorID int64, req models.ChangePasswordRequest) error {
	log := logger.FromContext(ctx)

	if req.OldPassword == "" || req.NewPassword == "" {
		return fmt.Errorf("%w: oldPassword and newPassword are required", ErrInvalidInput)
	}

	cred, err := a.findCredential(ctx, actorID)
	if err != nil {
		return err
	}

	if !a.hasher.Verify(req.OldPassword, cred.PasswordDigest) {
		log.Info().Int64("actor_id", actorID).Msg("password change rejected: old password mismatch")
		return ErrAuthenticationFailed
	}

	if err = a.storeNewPassword(ctx, actorID, req.NewPassword); err != nil {
		return err
	}

	revoked, err := a.sessions.RevokeAll(ctx, actorID, nil, RevokeCausePasswordChange, a.now())
	if err != nil {
		return err
	}

	a.audit.Record(ctx, &actorID, models.AuditPasswordChange, &actorID, map[string]any{"sessionsRevoked": revoked})
	return nil
}

func (a *authService) ResetPassword(ctx context.Context, adminID, projectID, actorID int64, req models.ResetPasswordRequest) error {
	if req.NewPassword == "" {
		return fmt.Errorf("%w: newPassword is required", ErrInvalidInput)
	}

	cred, err := a.findScopedCredential(ctx, projectID, actorID)
	if err != nil {
		return err
	}
	if !cred.Active {
		return fmt.Errorf("%w: credential is deactivated", ErrEntityInvalid)
	}

	if err = a.storeNewPassword(ctx, actorID, req.NewPassword); err != nil {
		return err
	}

	revoked, err := a.sessions.RevokeAll(ctx, actorID, nil, RevokeCausePasswordReset, a.now())
	if err != nil {
		return err
	}

	a.audit.Record(ctx, &adminID, models.AuditPasswordReset, &actorID, map[string]any{"sessionsRevoked": revoked})
	return nil
}

func (a *authService) SetActive(ctx context.Context, adminID, projectID, actorID int64, active bool) error {
	cred, err := a.findScopedCredential(ctx, projectID, actorID)
	if err != nil {
		return err
	}
	if cred.Active == active {
		return nil
	}

	if err = a.credentials.SetActive(ctx, actorID, active); err != nil {
		return a.credentialWriteError(ctx, "SetActive", err)
	}

	details := map[string]any{"active": active}
	if !active {
		revoked, err := a.sessions.RevokeAll(ctx, actorID, nil, RevokeCauseDeactivated, a.now())
		if err != nil {
			return err
		}
		details["sessionsRevoked"] = revoked
	}

	a.audit.Record(ctx, &adminID, models.AuditActiveChange, &actorID, details)
	return nil
}

func (a *authService) CreateCredential(ctx context.Context, adminID int64, req models.CreateCredentialRequest) (models.Credential, error) {
	log := logger.FromContext(ctx)

	if req.ActorID <= 0 {
		return models.Credential{}, fmt.Errorf("%w: %w", ErrInvalidInput, validators.ErrInvalidActorID)
	}
	username, err := validators.NormalizeUsername(req.Username)
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if req.Password == "" {
		return models.Credential{}, fmt.Errorf("%w: %w", ErrInvalidInput, validators.ErrEmptyPassword)
	}
	if err = validators.ValidateDisplayName(req.DisplayName); err != nil {
		return models.Credential{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err = validators.ValidatePhone(req.Phone); err != nil {
		return models.Credential{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !validators.CheckPasswordStrength(req.Password) {
		return models.Credential{}, ErrPolicyViolation
	}

	digest, err := a.hasher.Hash(req.Password)
	if err != nil {
		log.Err(err).Str("func", "*authService.CreateCredential").Msg("error hashing password")
		return models.Credential{}, fmt.Errorf("error hashing password: %w", err)
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	cred, err := a.credentials.CreateCredential(ctx, models.Credential{
		ActorID:        req.ActorID,
		ProjectID:      req.ProjectID,
		Username:       username,
		PasswordDigest: digest,
		DisplayName:    req.DisplayName,
		Phone:          req.Phone,
		Active:         active,
	})
	if errors.Is(err, store.ErrUsernameTaken) || errors.Is(err, store.ErrActorHasCredential) {
		return models.Credential{}, fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if err != nil {
		log.Err(err).Str("func", "*authService.CreateCredential").Msg("error creating credential")
		return models.Credential{}, fmt.Errorf("error creating credential: %w", err)
	}

	a.audit.Record(ctx, &adminID, models.AuditCredentialNew, &cred.ActorID, map[string]any{
		"username":  cred.Username,
		"projectId": cred.ProjectID,
		"active":    cred.Active,
	})
	return cred, nil
}

func (a *authService) UpdatePhone(ctx context.Context, adminID, projectID, actorID int64, phone *string) (models.Credential, error) {
	if phone != nil {
		trimmed := strings.TrimSpace(*phone)
		phone = &trimmed
		if trimmed == "" {
			phone = nil
		}
	}
	if err := validators.ValidatePhone(phone); err != nil {
		return models.Credential{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	cred, err := a.findScopedCredential(ctx, projectID, actorID)
	if err != nil {
		return models.Credential{}, err
	}

	if err = a.credentials.UpdatePhone(ctx, actorID, phone); err != nil {
		return models.Credential{}, a.credentialWriteError(ctx, "UpdatePhone", err)
	}

	a.audit.Record(ctx, &adminID, models.AuditPhoneUpdate, &actorID, map[string]any{"phone": phone})

	cred.Phone = phone
	return cred, nil
}

func (a *authService) RevokeCurrentSession(ctx context.Context, session models.SessionValidity, deviceID *string) error {
	revoked, err := a.sessions.RevokeToken(ctx, session.ActorID, session.Token, a.now())
	if err != nil {
		return err
	}

	a.audit.Record(ctx, &session.ActorID, models.AuditSessionsRevoke, &session.ActorID, map[string]any{
		"scope":           "current",
		"deviceId":        deviceID,
		"sessionsRevoked": revoked,
	})
	return nil
}

func (a *authService) RevokeOtherSessions(ctx context.Context, session models.SessionValidity) (int64, error) {
	revoked, err := a.sessions.RevokeAll(ctx, session.ActorID, &session.Token, RevokeCauseOthers, a.now())
	if err != nil {
		return 0, err
	}

	a.audit.Record(ctx, &session.ActorID, models.AuditSessionsRevoke, &session.ActorID, map[string]any{
		"scope":           "others",
		"sessionsRevoked": revoked,
	})
	return revoked, nil
}

func (a *authService) RevokeAllSessions(ctx context.Context, adminID, projectID, actorID int64) (int64, error) {
	if _, err := a.findScopedCredential(ctx, projectID, actorID); err != nil {
		return 0, err
	}

	revoked, err := a.sessions.RevokeAll(ctx, actorID, nil, RevokeCauseAdmin, a.now())
	if err != nil {
		return 0, err
	}

	a.audit.Record(ctx, &adminID, models.AuditSessionsRevoke, &actorID, map[string]any{
		"scope":           "all",
		"sessionsRevoked": revoked,
	})
	return revoked, nil
}

func (a *authService) storeNewPassword(ctx context.Context, actorID int64, secret string) error {
	if !validators.CheckPasswordStrength(secret) {
		return ErrPolicyViolation
	}

	digest, err := a.hasher.Hash(secret)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*authService.storeNewPassword").Msg("error hashing password")
		return fmt.Errorf("error hashing password: %w", err)
	}

	if err = a.credentials.UpdatePasswordDigest(ctx, actorID, digest); err != nil {
		return a.credentialWriteError(ctx, "UpdatePasswordDigest", err)
	}
	return nil
}

func (a *authService) findCredential(ctx context.Context, actorID int64) (models.Credential, error) {
	cred, err := a.credentials.FindByActorID(ctx, actorID)
	if errors.Is(err, store.ErrCredentialNotFound) {
		return models.Credential{}, fmt.Errorf("%w: %w", ErrEntityNotFound, err)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*authService.findCredential").Int64("actor_id", actorID).Msg("error looking up credential")
		return models.Credential{}, fmt.Errorf("error looking up credential: %w", err)
	}
	return cred, nil
}

// findScopedCredential hides credentials of other projects behind
// [ErrEntityNotFound].
func (a *authService) findScopedCredential(ctx context.Context, projectID, actorID int64) (models.Credential, error) {
	cred, err := a.findCredential(ctx, actorID)
	if err != nil {
		return models.Credential{}, err
	}
	if cred.ProjectID != projectID {
		return models.Credential{}, fmt.Errorf("%w: credential belongs to another project", ErrEntityNotFound)
	}
	return cred, nil
}

func (a *authService) credentialWriteError(ctx context.Context, op string, err error) error {
	if errors.Is(err, store.ErrCredentialNotFound) {
		return fmt.Errorf("%w: %w", ErrEntityNotFound, err)
	}
	logger.FromContext(ctx).Err(err).Str("func", "*authService."+op).Msg("error updating credential")
	return fmt.Errorf("error updating credential: %w", err)
}
