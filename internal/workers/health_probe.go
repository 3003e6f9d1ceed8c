package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/metrics"
	"github.com/MKhiriev/go-field-keeper/internal/store"
)

const healthProbeTimeout = 5 * time.Second

type healthProbe struct {
	pinger  store.Pinger
	health  HealthReporter
	metrics *metrics.Metrics

	// up is the last observed state; transitions are logged.
	up *bool

	logger *logger.Logger
}

// NewHealthProbe pings the database on every tick and publishes the result
// to the db_up gauge and, when set, to the gRPC health service.
func NewHealthProbe(pinger store.Pinger, health HealthReporter, m *metrics.Metrics, logger *logger.Logger) Worker {
	return &healthProbe{
		pinger:  pinger,
		health:  health,
		metrics: m,
		logger:  logger,
	}
}

func (p *healthProbe) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), healthProbeTimeout)
	defer cancel()

	err := p.pinger.PingContext(ctx)
	up := err == nil

	p.metrics.SetDBUp(up)
	if p.health != nil {
		p.health.SetServing(up)
	}

	if p.up == nil || *p.up != up {
		if up {
			p.logger.Info().Str("func", "*healthProbe.Run").Msg("database is reachable")
		} else {
			p.logger.Err(err).Str("func", "*healthProbe.Run").Msg("database is unreachable")
		}
	}
	p.up = &up
}
