package http

import (
	"github.com/MKhiriev/go-field-keeper/internal/config"
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/metrics"
	"github.com/MKhiriev/go-field-keeper/internal/service"
)

type Handler struct {
	services *service.Services
	metrics  *metrics.Metrics

	// trustProxyHeaders enables chi's RealIP, which rewrites RemoteAddr from
	// client-supplied headers.
	trustProxyHeaders bool

	logger *logger.Logger
}

func NewHandler(services *service.Services, m *metrics.Metrics, cfg config.Server, logger *logger.Logger) *Handler {
	logger.Info().Bool("trust_proxy_headers", cfg.TrustProxyHeaders).Msg("http handler created")
	return &Handler{
		services:          services,
		metrics:           m,
		trustProxyHeaders: cfg.TrustProxyHeaders,
		logger:            logger,
	}
}
