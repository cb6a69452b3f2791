package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/clock"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler(quietLogger())
	var runs atomic.Int32
	s.AddJob("count", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start()
	s.Start()
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_RunOnceContinuesAfterFailure(t *testing.T) {
	s := NewScheduler(quietLogger())
	var second bool
	s.AddJob("fails", time.Hour, func(ctx context.Context) error { return errors.New("boom") })
	s.AddJob("ok", time.Hour, func(ctx context.Context) error {
		second = true
		return nil
	})

	s.RunOnce(context.Background())
	assert.True(t, second)
	assert.Len(t, s.Jobs(), 2)
}

type clockServiceMock struct {
	mock.Mock
	clock.ClockService
}

func (m *clockServiceMock) CloseStaleSessions(ctx context.Context, maxOpen time.Duration) (int, error) {
	args := m.Called(ctx, maxOpen)
	return args.Int(0), args.Error(1)
}

func TestClockJobs_AutoCloseStaleSessions(t *testing.T) {
	svc := new(clockServiceMock)
	svc.On("CloseStaleSessions", mock.Anything, 16*time.Hour).Return(3, nil).Once()

	jobs := NewClockJobs(svc, time.Hour, 16*time.Hour, quietLogger())
	require.NoError(t, jobs.AutoCloseStaleSessions(context.Background()))
	svc.AssertExpectations(t)

	s := NewScheduler(quietLogger())
	jobs.RegisterJobs(s)
	require.Len(t, s.Jobs(), 1)
	assert.Equal(t, JobAutoCloseStaleSessions, s.Jobs()[0].Name)
}

func TestClockJobs_PropagatesError(t *testing.T) {
	svc := new(clockServiceMock)
	svc.On("CloseStaleSessions", mock.Anything, time.Hour).Return(0, errors.New("db down"))

	err := NewClockJobs(svc, time.Hour, time.Hour, quietLogger()).AutoCloseStaleSessions(context.Background())
	assert.ErrorContains(t, err, "db down")
}
