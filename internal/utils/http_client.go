package utils

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient wraps resty.Client with the device agent defaults: JSON content
// type, a bounded timeout and retries on transport errors and 502/503/504.
//
// Example usage:
//
//	client := utils.NewHTTPClient(15*time.Second, 2)
//	resp, err := client.R().Get("https://example.com/api/version")
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates an independent client. A zero timeout keeps resty's
// default (none); retries below zero are treated as zero.
func NewHTTPClient(timeout time.Duration, retries int) *HTTPClient {
	if retries < 0 {
		retries = 0
	}

	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(retryOnGatewayErrors)

	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &HTTPClient{Client: client}
}

func retryOnGatewayErrors(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	switch resp.StatusCode() {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
