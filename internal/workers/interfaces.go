// Package workers runs the server's periodic background jobs on a
// robfig/cron scheduler: the database health probe and the live session
// gauge.
package workers

import "context"

// Worker performs a single tick of background work. It satisfies
// [cron.Job], so a worker can be scheduled directly.
type Worker interface {
	Run()
}

// HealthReporter receives the outcome of every database probe. The gRPC
// health handler implements it.
type HealthReporter interface {
	SetServing(serving bool)
}

// LiveSessionCounter is the part of the session service the gauge needs.
type LiveSessionCounter interface {
	CountLive(ctx context.Context) (int64, error)
}
