// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-field-keeper/internal/logger"
	"github.com/MKhiriev/go-field-keeper/internal/metrics"
	"github.com/MKhiriev/go-field-keeper/internal/mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// orderWorker appends its id to a shared slice on Run.
type orderWorker struct {
	id    int
	order *[]int
}

func (o *orderWorker) Run() {
	*o.order = append(*o.order, o.id)
}

type fakeHealth struct {
	states []bool
}

func (f *fakeHealth) SetServing(serving bool) {
	f.states = append(f.states, serving)
}

type fakeCounter struct {
	n   int64
	err error
}

func (f *fakeCounter) CountLive(context.Context) (int64, error) {
	return f.n, f.err
}

func TestWorkers_RunInOrder(t *testing.T) {
	var order []int
	ws := NewWorkers(logger.Nop())

	for i := 1; i <= 3; i++ {
		require.NoError(t, ws.Add("@every 1h", &orderWorker{id: i, order: &order}))
	}
	ws.Run()

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestWorkers_Empty(t *testing.T) {
	ws := NewWorkers(logger.Nop())
	ws.Run()

	ws.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ws.Stop(ctx)
}

func TestWorkers_InvalidSchedule(t *testing.T) {
	ws := NewWorkers(logger.Nop())

	err := ws.Add("every now and then", &orderWorker{order: new([]int)})

	require.ErrorIs(t, err, ErrInvalidSchedule)
	assert.Empty(t, ws.workers)
}

func TestHealthProbe(t *testing.T) {
	ctrl := gomock.NewController(t)
	pinger := mock.NewMockPinger(ctrl)
	m := metrics.New(prometheus.NewRegistry())
	health := &fakeHealth{}

	gomock.InOrder(
		pinger.EXPECT().PingContext(gomock.Any()).Return(nil),
		pinger.EXPECT().PingContext(gomock.Any()).Return(errors.New("connection refused")),
	)

	probe := NewHealthProbe(pinger, health, m, logger.Nop())

	probe.Run()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBUp))

	probe.Run()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DBUp))

	assert.Equal(t, []bool{true, false}, health.states)
}

func TestHealthProbe_WithoutGRPC(t *testing.T) {
	ctrl := gomock.NewController(t)
	pinger := mock.NewMockPinger(ctrl)
	pinger.EXPECT().PingContext(gomock.Any()).Return(nil)

	NewHealthProbe(pinger, nil, nil, logger.Nop()).Run()
}

func TestSessionGauge(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	counter := &fakeCounter{n: 17}
	gauge := NewSessionGauge(counter, m, logger.Nop())

	gauge.Run()
	assert.Equal(t, 17.0, testutil.ToFloat64(m.LiveSessions))

	counter.err = errors.New("timeout")
	counter.n = 0
	gauge.Run()
	assert.Equal(t, 17.0, testutil.ToFloat64(m.LiveSessions))
}
