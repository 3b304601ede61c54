// Package scheduler runs periodic background jobs such as the membership
// maintenance sweep.
package scheduler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

// Job is one unit of periodic work.
type Job func(ctx context.Context)

// Scheduler runs a Job after an initial delay and then on every interval
// until its context is cancelled.
type Scheduler struct {
	name         string
	job          Job
	interval     time.Duration
	initialDelay time.Duration
	logger       echo.Logger
}

func New(name string, job Job, interval, initialDelay time.Duration, logger echo.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if initialDelay < 0 {
		initialDelay = 0
	}
	return &Scheduler{name: name, job: job, interval: interval, initialDelay: initialDelay, logger: logger}
}

// Start blocks until ctx is done. A job run in progress is given the same
// ctx and is expected to return promptly once it is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.infof("%s scheduler started (interval %s, first run in %s)", s.name, s.interval, s.initialDelay)

	delay := time.NewTimer(s.initialDelay)
	defer delay.Stop()
	select {
	case <-ctx.Done():
		s.infof("%s scheduler stopped", s.name)
		return
	case <-delay.C:
		s.job(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.infof("%s scheduler stopped", s.name)
			return
		case <-ticker.C:
			s.job(ctx)
		}
	}
}

func (s *Scheduler) infof(format string, args ...any) {
	if s.logger != nil {
		s.logger.Infof(format, args...)
	}
}
