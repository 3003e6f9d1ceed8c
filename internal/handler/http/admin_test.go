package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/MKhiriev/go-field-keeper/internal/service"
	"github.com/MKhiriev/go-field-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCredential(t *testing.T) {
	var (
		gotAdmin int64
		gotReq   models.CreateCredentialRequest
	)
	services := newTestServices()
	services.AuthService = &fakeAuthService{
		createCredentialFn: func(_ context.Context, adminID int64, req models.CreateCredentialRequest) (models.Credential, error) {
			gotAdmin, gotReq = adminID, req
			if req.Username == "taken" {
				return models.Credential{}, service.ErrConflict
			}
			return models.Credential{ActorID: req.ActorID, ProjectID: req.ProjectID, Username: req.Username, Active: true}, nil
		},
	}
	router := newTestRouter(services)

	rec := serve(t, router, http.MethodPost, "/api/projects/7/app-users", adminBearer,
		`{"actorId":42,"username":"unit-07","password":"Field-Pass1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, testAdminID, gotAdmin)
	assert.Equal(t, int64(7), gotReq.ProjectID)
	assert.Equal(t, int64(42), gotReq.ActorID)
	assert.NotContains(t, rec.Body.String(), "Field-Pass1")

	var cred models.Credential
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cred))
	assert.Equal(t, "unit-07", cred.Username)

	rec = serve(t, router, http.MethodPost, "/api/projects/7/app-users", adminBearer,
		`{"actorId":43,"username":"taken","password":"Field-Pass1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSetActive(t *testing.T) {
	var calls []bool
	services := newTestServices()
	services.AuthService = &fakeAuthService{
		setActiveFn: func(_ context.Context, adminID, projectID, actorID int64, active bool) error {
			assert.Equal(t, testAdminID, adminID)
			assert.Equal(t, int64(7), projectID)
			assert.Equal(t, int64(42), actorID)
			calls = append(calls, active)
			return nil
		},
	}
	router := newTestRouter(services)

	rec := serve(t, router, http.MethodPost, "/api/projects/7/app-users/42/active", adminBearer, `{"active":true}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, router, http.MethodPost, "/api/projects/7/app-users/42/active", adminBearer, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, router, http.MethodPost, "/api/projects/7/app-users/42/revoke-admin", adminBearer, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, []bool{true, false}, calls)
}

func TestResetPassword(t *testing.T) {
	services := newTestServices()
	services.AuthService = &fakeAuthService{
		resetPasswordFn: func(_ context.Context, _, _, actorID int64, _ models.ResetPasswordRequest) error {
			switch actorID {
			case 404:
				return service.ErrEntityNotFound
			case 410:
				return service.ErrEntityInvalid
			}
			return nil
		},
	}
	router := newTestRouter(services)

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/api/projects/7/app-users/42/password/reset", http.StatusNoContent},
		{"/api/projects/7/app-users/404/password/reset", http.StatusNotFound},
		{"/api/projects/7/app-users/410/password/reset", http.StatusBadRequest},
		{"/api/projects/7/app-users/0/password/reset", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(t, router, http.MethodPost, tt.path, adminBearer, `{"newPassword":"Rotated-Pass2"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRevokeAllSessionsAndPhone(t *testing.T) {
	services := newTestServices()
	services.AuthService = &fakeAuthService{
		revokeAllSessionsFn: func(context.Context, int64, int64, int64) (int64, error) {
			return 3, nil
		},
		updatePhoneFn: func(_ context.Context, _, projectID, actorID int64, phone *string) (models.Credential, error) {
			return models.Credential{ActorID: actorID, ProjectID: projectID, Phone: phone}, nil
		},
	}
	router := newTestRouter(services)

	rec := serve(t, router, http.MethodPost, "/api/projects/7/app-users/42/sessions/revoke-all", adminBearer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"revoked":3}`, rec.Body.String())

	rec = serve(t, router, http.MethodPut, "/api/projects/7/app-users/42/phone", adminBearer, `{"phone":"+15550100"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"phone":"+15550100"`)
}

func TestListSessions(t *testing.T) {
	var gotFilter models.SessionFilter
	services := newTestServices()
	services.SessionService = &fakeSessionService{
		validateFn: services.SessionService.(*fakeSessionService).validateFn,
		listFn: func(_ context.Context, filter models.SessionFilter, page models.Page) ([]models.Session, int64, error) {
			gotFilter = filter
			return []models.Session{{ID: 1, ActorID: 42, ProjectID: 7, Token: "secret-token"}}, 1, nil
		},
	}
	router := newTestRouter(services)

	rec := serve(t, router, http.MethodGet, "/api/projects/7/app-users/42/sessions?limit=5", adminBearer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(totalCountHeader))
	assert.NotContains(t, rec.Body.String(), "secret-token")
	require.NotNil(t, gotFilter.ActorID)
	assert.Equal(t, int64(42), *gotFilter.ActorID)
	assert.Nil(t, gotFilter.Active)

	rec = serve(t, router, http.MethodGet, "/api/system/app-users/sessions?deviceId=dev-1&active=true", adminBearer, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, gotFilter.ProjectID)
	require.NotNil(t, gotFilter.Active)
	assert.True(t, *gotFilter.Active)
	require.NotNil(t, gotFilter.DeviceID)
	assert.Equal(t, "dev-1", *gotFilter.DeviceID)

	rec = serve(t, router, http.MethodGet, "/api/system/app-users/sessions?active=maybe", adminBearer, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearLockout(t *testing.T) {
	var got models.ClearLockoutRequest
	services := newTestServices()
	services.LockoutService = &fakeLockoutService{
		clearFn: func(_ context.Context, adminID int64, req models.ClearLockoutRequest) error {
			assert.Equal(t, testAdminID, adminID)
			got = req
			return nil
		},
	}

	rec := serve(t, newTestRouter(services), http.MethodPost, "/api/system/app-users/lockouts/clear", adminBearer,
		`{"username":"unit-07","ip":"198.51.100.4"}`)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "unit-07", got.Username)
	require.NotNil(t, got.IP)
	assert.Equal(t, "198.51.100.4", *got.IP)
}

func TestSettings(t *testing.T) {
	services := newTestServices()
	services.SettingsService = &fakeSettingsService{
		updateFn: func(_ context.Context, _ int64, update models.SettingsUpdate) (models.Settings, error) {
			if update.SessionCap != nil && *update.SessionCap <= 0 {
				return models.Settings{}, service.ErrInvalidInput
			}
			s := models.DefaultSettings()
			s.SessionCap = *update.SessionCap
			return s, nil
		},
	}
	router := newTestRouter(services)

	rec := serve(t, router, http.MethodPut, "/api/system/app-users/settings", adminBearer, `{"sessionCap":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sessionCap":5`)

	rec = serve(t, router, http.MethodPut, "/api/system/app-users/settings", adminBearer, `{"sessionCap":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
