package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/utils"
	"github.com/MKhiriev/go-field-keeper/models"
	"github.com/go-resty/resty/v2"
)

// requestRetries is applied to gateway errors only; 4xx answers are final.
const requestRetries = 2

type httpServerAdapter struct {
	client *utils.HTTPClient

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := utils.NewHTTPClient(adapterCfg.RequestTimeout, requestRetries)
	client.SetBaseURL(baseURL)

	return &httpServerAdapter{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Login implements [ServerAdapter]. It POSTs to
// /api/projects/{projectID}/app-users/login.
func (h *httpServerAdapter) Login(ctx context.Context, projectID int64, req models.LoginRequest) (models.LoginResult, error) {
	var result models.LoginResult

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("projectID", fmt.Sprint(projectID)).
		SetBody(req).
		SetResult(&result).
		Post("/api/projects/{projectID}/app-users/login")
	if err != nil {
		return models.LoginResult{}, fmt.Errorf("%w: login request: %w", ErrServerUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.LoginResult{}, err
	}

	h.SetToken(result.Token)
	return result, nil
}

// SubmitTelemetry implements [ServerAdapter]. It POSTs to
// /api/projects/{projectID}/app-users/telemetry.
func (h *httpServerAdapter) SubmitTelemetry(ctx context.Context, projectID int64, submission models.TelemetrySubmission) ([]models.TelemetryResult, error) {
	var results []models.TelemetryResult

	resp, err := h.authedRequest(ctx).
		SetPathParam("projectID", fmt.Sprint(projectID)).
		SetBody(submission).
		SetResult(&results).
		Post("/api/projects/{projectID}/app-users/telemetry")
	if err != nil {
		return nil, fmt.Errorf("%w: telemetry request: %w", ErrServerUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return results, nil
}

func (h *httpServerAdapter) ChangePassword(ctx context.Context, projectID, actorID int64, req models.ChangePasswordRequest) error {
	resp, err := h.authedRequest(ctx).
		SetPathParams(actorPath(projectID, actorID)).
		SetBody(req).
		Post("/api/projects/{projectID}/app-users/{actorID}/password/change")
	if err != nil {
		return fmt.Errorf("%w: change password request: %w", ErrServerUnavailable, err)
	}
	return mapHTTPError(resp)
}

func (h *httpServerAdapter) RevokeCurrentSession(ctx context.Context, projectID, actorID int64, deviceID *string) error {
	resp, err := h.authedRequest(ctx).
		SetPathParams(actorPath(projectID, actorID)).
		SetBody(map[string]*string{"deviceId": deviceID}).
		Post("/api/projects/{projectID}/app-users/{actorID}/revoke")
	if err != nil {
		return fmt.Errorf("%w: revoke request: %w", ErrServerUnavailable, err)
	}
	return mapHTTPError(resp)
}

func (h *httpServerAdapter) Version(ctx context.Context) (string, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/plain").
		Get("/api/version")
	if err != nil {
		return "", fmt.Errorf("%w: version request: %w", ErrServerUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.String()), nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetAuthToken(token)
	}
	return req
}

func actorPath(projectID, actorID int64) map[string]string {
	return map[string]string{
		"projectID": fmt.Sprint(projectID),
		"actorID":   fmt.Sprint(actorID),
	}
}
