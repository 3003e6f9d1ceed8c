package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/metrics"
)

const sessionGaugeTimeout = 10 * time.Second

type sessionGauge struct {
	sessions LiveSessionCounter
	metrics  *metrics.Metrics

	logger *logger.Logger
}

// NewSessionGauge publishes the number of live sessions. A failed count keeps
// the previous value.
func NewSessionGauge(sessions LiveSessionCounter, m *metrics.Metrics, logger *logger.Logger) Worker {
	return &sessionGauge{
		sessions: sessions,
		metrics:  m,
		logger:   logger,
	}
}

func (g *sessionGauge) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sessionGaugeTimeout)
	defer cancel()

	n, err := g.sessions.CountLive(ctx)
	if err != nil {
		g.logger.Err(err).Str("func", "*sessionGauge.Run").Msg("error counting live sessions")
		return
	}
	g.metrics.SetLiveSessions(n)
}
