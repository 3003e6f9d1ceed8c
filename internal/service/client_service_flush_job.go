package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
)

const defaultFlushInterval = 30 * time.Second

type clientFlushJob struct {
	telemetry ClientTelemetryService
	logger    *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClientFlushJob creates a job that calls telemetry.Flush on a ticker. The
// job is idle until Start is called.
func NewClientFlushJob(telemetry ClientTelemetryService, logger *logger.Logger) ClientFlushJob {
	return &clientFlushJob{telemetry: telemetry, logger: logger}
}

// Start stops any previously running job, then flushes every interval until
// ctx is cancelled or Stop is called.
func (j *clientFlushJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultFlushInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.flush(jobCtx)
			}
		}
	}()
}

func (j *clientFlushJob) flush(ctx context.Context) {
	report, err := j.telemetry.Flush(ctx)
	switch {
	case err == nil:
		if report.Sent > 0 || report.Dropped > 0 {
			j.logger.Info().
				Int("sent", report.Sent).
				Int("dropped", report.Dropped).
				Int("remaining", report.Remaining).
				Msg("outbox flushed")
		}
	case errors.Is(err, ErrNotLoggedIn), errors.Is(err, ErrSessionInvalidated):
		j.logger.Warn().Err(err).Int("remaining", report.Remaining).Msg("outbox kept, login required")
	default:
		j.logger.Err(err).Int("remaining", report.Remaining).Msg("outbox flush failed")
	}
}

// Stop cancels the background goroutine and waits for it to exit. Safe to
// call when the job is not running.
func (j *clientFlushJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
