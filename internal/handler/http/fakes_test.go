package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/service"
	"github.com/MKhiriev/go-field-keeper/models"
)

// Hand-written service fakes. Each method delegates to its function field;
// a nil field panics, which surfaces unexpected calls in a test.

type fakeAuthService struct {
	loginFn             func(ctx context.Context, req models.LoginRequest) (models.LoginResult, error)
	changePasswordFn    func(ctx context.Context, actorID int64, req models.ChangePasswordRequest) error
	createCredentialFn  func(ctx context.Context, adminID int64, req models.CreateCredentialRequest) (models.Credential, error)
	resetPasswordFn     func(ctx context.Context, adminID, projectID, actorID int64, req models.ResetPasswordRequest) error
	setActiveFn         func(ctx context.Context, adminID, projectID, actorID int64, active bool) error
	updatePhoneFn       func(ctx context.Context, adminID, projectID, actorID int64, phone *string) (models.Credential, error)
	revokeCurrentFn     func(ctx context.Context, session models.SessionValidity, deviceID *string) error
	revokeOthersFn      func(ctx context.Context, session models.SessionValidity) (int64, error)
	revokeAllSessionsFn func(ctx context.Context, adminID, projectID, actorID int64) (int64, error)
}

func (f *fakeAuthService) Login(ctx context.Context, req models.LoginRequest) (models.LoginResult, error) {
	return f.loginFn(ctx, req)
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, actorID int64, req models.ChangePasswordRequest) error {
	return f.changePasswordFn(ctx, actorID, req)
}

func (f *fakeAuthService) CreateCredential(ctx context.Context, adminID int64, req models.CreateCredentialRequest) (models.Credential, error) {
	return f.createCredentialFn(ctx, adminID, req)
}

func (f *fakeAuthService) ResetPassword(ctx context.Context, adminID, projectID, actorID int64, req models.ResetPasswordRequest) error {
	return f.resetPasswordFn(ctx, adminID, projectID, actorID, req)
}

func (f *fakeAuthService) SetActive(ctx context.Context, adminID, projectID, actorID int64, active bool) error {
	return f.setActiveFn(ctx, adminID, projectID, actorID, active)
}

func (f *fakeAuthService) UpdatePhone(ctx context.Context, adminID, projectID, actorID int64, phone *string) (models.Credential, error) {
	return f.updatePhoneFn(ctx, adminID, projectID, actorID, phone)
}

func (f *fakeAuthService) RevokeCurrentSession(ctx context.Context, session models.SessionValidity, deviceID *string) error {
	return f.revokeCurrentFn(ctx, session, deviceID)
}

func (f *fakeAuthService) RevokeOtherSessions(ctx context.Context, session models.SessionValidity) (int64, error) {
	return f.revokeOthersFn(ctx, session)
}

func (f *fakeAuthService) RevokeAllSessions(ctx context.Context, adminID, projectID, actorID int64) (int64, error) {
	return f.revokeAllSessionsFn(ctx, adminID, projectID, actorID)
}

type fakeSessionService struct {
	validateFn func(ctx context.Context, token string) (models.SessionValidity, error)
	listFn     func(ctx context.Context, filter models.SessionFilter, page models.Page) ([]models.Session, int64, error)
}

func (f *fakeSessionService) Create(context.Context, models.Credential, models.SessionProvenance, models.Settings, time.Time) (models.Session, error) {
	panic("not used by the http handler")
}

func (f *fakeSessionService) Validate(ctx context.Context, token string) (models.SessionValidity, error) {
	return f.validateFn(ctx, token)
}

func (f *fakeSessionService) RevokeToken(context.Context, int64, string, time.Time) (int64, error) {
	panic("not used by the http handler")
}

func (f *fakeSessionService) RevokeAll(context.Context, int64, *string, string, time.Time) (int64, error) {
	panic("not used by the http handler")
}

func (f *fakeSessionService) List(ctx context.Context, filter models.SessionFilter, page models.Page) ([]models.Session, int64, error) {
	return f.listFn(ctx, filter, page)
}

func (f *fakeSessionService) CountLive(context.Context) (int64, error) {
	panic("not used by the http handler")
}

type fakeTelemetryService struct {
	submitFn func(ctx context.Context, session models.SessionValidity, projectID int64, submission models.TelemetrySubmission) ([]models.TelemetryResult, error)
	listFn   func(ctx context.Context, filter models.TelemetryFilter, page models.Page) ([]models.TelemetryRecord, int64, error)
}

func (f *fakeTelemetryService) Submit(ctx context.Context, session models.SessionValidity, projectID int64, submission models.TelemetrySubmission) ([]models.TelemetryResult, error) {
	return f.submitFn(ctx, session, projectID, submission)
}

func (f *fakeTelemetryService) List(ctx context.Context, filter models.TelemetryFilter, page models.Page) ([]models.TelemetryRecord, int64, error) {
	return f.listFn(ctx, filter, page)
}

type fakeSettingsService struct {
	currentFn func(ctx context.Context) (models.Settings, error)
	updateFn  func(ctx context.Context, adminID int64, update models.SettingsUpdate) (models.Settings, error)
}

func (f *fakeSettingsService) Current(ctx context.Context) (models.Settings, error) {
	return f.currentFn(ctx)
}

func (f *fakeSettingsService) Update(ctx context.Context, adminID int64, update models.SettingsUpdate) (models.Settings, error) {
	return f.updateFn(ctx, adminID, update)
}

type fakeLockoutService struct {
	service.LockoutService
	clearFn func(ctx context.Context, adminID int64, req models.ClearLockoutRequest) error
}

func (f *fakeLockoutService) Clear(ctx context.Context, adminID int64, req models.ClearLockoutRequest) error {
	return f.clearFn(ctx, adminID, req)
}

type fakeAdminTokenService struct {
	parseFn func(ctx context.Context, token string) (models.AdminToken, error)
}

func (f *fakeAdminTokenService) CreateToken(context.Context, int64) (models.AdminToken, error) {
	panic("not used by the http handler")
}

func (f *fakeAdminTokenService) ParseToken(ctx context.Context, token string) (models.AdminToken, error) {
	return f.parseFn(ctx, token)
}

type fakeAppInfoService struct {
	version string
}

func (f *fakeAppInfoService) GetAppVersion(context.Context) string {
	return f.version
}

const (
	adminBearer   = "Bearer admin-jwt"
	sessionBearer = "Bearer device-token"
	testAdminID   = int64(900)
)

// liveSession is the session behind sessionBearer unless a test overrides
// SessionService.
var liveSession = models.SessionValidity{
	Token:     "device-token",
	ActorID:   42,
	ProjectID: 7,
	Status:    models.SessionStatusOK,
}

// newTestServices returns services whose session and admin token checks
// accept the test bearers. Everything else is left for the test to fill.
func newTestServices() *service.Services {
	return &service.Services{
		AuthService:      &fakeAuthService{},
		TelemetryService: &fakeTelemetryService{},
		SettingsService:  &fakeSettingsService{},
		LockoutService:   &fakeLockoutService{},
		AppInfoService:   &fakeAppInfoService{version: "1.4.0"},
		SessionService: &fakeSessionService{
			validateFn: func(_ context.Context, token string) (models.SessionValidity, error) {
				if token == liveSession.Token {
					return liveSession, nil
				}
				return models.SessionValidity{}, service.ErrAuthenticationFailed
			},
		},
		AdminTokenService: &fakeAdminTokenService{
			parseFn: func(_ context.Context, token string) (models.AdminToken, error) {
				if token == "admin-jwt" {
					return models.AdminToken{AdminID: testAdminID}, nil
				}
				return models.AdminToken{}, service.ErrTokenIsExpiredOrInvalid
			},
		},
	}
}

func newTestRouter(services *service.Services) http.Handler {
	return NewHandler(services, nil, config.Server{}, logger.Nop()).Init()
}

// newProxiedTestRouter trusts proxy address headers.
func newProxiedTestRouter(services *service.Services) http.Handler {
	return NewHandler(services, nil, config.Server{TrustProxyHeaders: true}, logger.Nop()).Init()
}

func newJSONRequest(method, path, body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(method, path, nil)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func record(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// serve sends a request through the full router.
func serve(t *testing.T, router http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := newJSONRequest(method, path, body)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	return record(router, req)
}
