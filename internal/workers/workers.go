package workers

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/robfig/cron/v3"
)

type Workers struct {
	cron    *cron.Cron
	workers []Worker

	logger *logger.Logger
}

func NewWorkers(logger *logger.Logger) *Workers {
	return &Workers{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
	}
}

// Add schedules w using a standard cron spec or a descriptor such as
// "@every 30s".
func (w *Workers) Add(schedule string, worker Worker) error {
	if _, err := w.cron.AddJob(schedule, worker); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidSchedule, schedule, err)
	}
	w.workers = append(w.workers, worker)
	return nil
}

// Run executes every registered worker once, in registration order.
func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}

// Start runs every worker once and then hands them to the scheduler.
func (w *Workers) Start() {
	w.Run()
	w.cron.Start()
	w.logger.Info().Int("jobs", len(w.workers)).Msg("workers started")
}

// Stop stops scheduling and waits for running jobs or ctx, whichever ends
// first.
func (w *Workers) Stop(ctx context.Context) {
	select {
	case <-w.cron.Stop().Done():
		w.logger.Info().Msg("workers stopped")
	case <-ctx.Done():
		w.logger.Warn().Msg("workers did not stop in time")
	}
}
