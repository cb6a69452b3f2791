package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/clock"
)

const JobAutoCloseStaleSessions = "auto_close_stale_sessions"

// ClockJobs holds the periodic maintenance of clock sessions.
type ClockJobs struct {
	clockService clock.ClockService
	interval     time.Duration
	staleAfter   time.Duration
	logger       *slog.Logger
}

func NewClockJobs(clockService clock.ClockService, interval, staleAfter time.Duration, logger *slog.Logger) *ClockJobs {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClockJobs{
		clockService: clockService,
		interval:     interval,
		staleAfter:   staleAfter,
		logger:       logger,
	}
}

func (j *ClockJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(JobAutoCloseStaleSessions, j.interval, j.AutoCloseStaleSessions)
}

// AutoCloseStaleSessions closes sessions forgotten open for longer than the
// configured threshold.
func (j *ClockJobs) AutoCloseStaleSessions(ctx context.Context) error {
	closed, err := j.clockService.CloseStaleSessions(ctx, j.staleAfter)
	if err != nil {
		return fmt.Errorf("failed to close stale sessions: %w", err)
	}
	if closed > 0 {
		j.logger.Info("Cron: closed stale sessions", "count", closed)
	}
	return nil
}
