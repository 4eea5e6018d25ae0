package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// IdleEvicter drops sessions that have not been touched for ttl.
type IdleEvicter interface {
	EvictIdle(ttl time.Duration) int
}

// SessionSweeper evicts idle quiz sessions on a cron schedule.
type SessionSweeper struct {
	evicter  IdleEvicter
	schedule string
	ttl      time.Duration
	logger   *zap.Logger
}

// NewSessionSweeper creates a sweeper for the given cron schedule and idle ttl.
func NewSessionSweeper(evicter IdleEvicter, schedule string, ttl time.Duration, logger *zap.Logger) *SessionSweeper {
	return &SessionSweeper{
		evicter:  evicter,
		schedule: schedule,
		ttl:      ttl,
		logger:   logger,
	}
}

// Run schedules the sweep and blocks until ctx is done.
func (s *SessionSweeper) Run(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(s.schedule, s.sweep)
	if err != nil {
		return fmt.Errorf("add sweep job %q: %w", s.schedule, err)
	}

	c.Start()
	s.logger.Info("session sweeper started",
		zap.String("schedule", s.schedule),
		zap.Duration("ttl", s.ttl),
	)

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("session sweeper stopped")

	return nil
}

func (s *SessionSweeper) sweep() {
	if n := s.evicter.EvictIdle(s.ttl); n > 0 {
		s.logger.Info("idle quiz sessions evicted", zap.Int("count", n))
	}
}
