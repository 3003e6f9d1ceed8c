package server

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/getsentry/sentry-go"
)

const sentryFlushTimeout = 2 * time.Second

// InitSentry configures the global Sentry client. Without a DSN it does
// nothing and the returned flush is a no-op.
func InitSentry(cfg config.App) (flush func(), err error) {
	if cfg.SentryDSN == "" {
		return func() {}, nil
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     cfg.Version,
	})
	if err != nil {
		return func() {}, fmt.Errorf("sentry init: %w", err)
	}

	return func() { sentry.Flush(sentryFlushTimeout) }, nil
}
