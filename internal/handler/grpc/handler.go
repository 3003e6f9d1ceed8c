// Package grpc exposes the standard gRPC health service of the field-keeper
// server. Serving status is driven by the database health probe.
package grpc

import (
	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health check name clients may query in addition to the
// empty overall name.
const ServiceName = "fieldkeeper.v1.FieldKeeper"

// Handler is the root gRPC transport handler.
//
// A handler instance is created once at startup and shared by the gRPC server
// and the health probe worker.
type Handler struct {
	health *health.Server

	logger *logger.Logger
}

// NewHandler returns a handler reporting NOT_SERVING until the first
// successful probe.
func NewHandler(logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")

	h := &Handler{
		health: health.NewServer(),
		logger: logger,
	}
	h.SetServing(false)
	return h
}

// Register attaches the health and reflection services to s.
func (h *Handler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
	reflection.Register(s)
}

// SetServing updates both the overall and the named service status.
func (h *Handler) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Shutdown flips every status to NOT_SERVING so clients drain before the
// server stops.
func (h *Handler) Shutdown() {
	h.health.Shutdown()
}
