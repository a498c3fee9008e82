package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// DefaultSweepInterval is how often timed-out sessions are closed
const DefaultSweepInterval = time.Minute

// Sweeper force-completes sessions that ran past their time limit
type Sweeper interface {
	ExpireStaleSessions(ctx context.Context) (int, error)
}

// Scheduler runs the periodic session sweep
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
	log       *zap.Logger
}

// New creates a scheduler. Runs never overlap.
func New(sweeper Sweeper, interval time.Duration, log *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{scheduler: s, sweeper: sweeper, interval: interval, log: log}
}

// Start schedules the sweep and runs it in the background
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.Sweep); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	s.scheduler.StartAsync()
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Stop terminates scheduled runs
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("scheduler stopped")
}

// Sweep runs one expiry pass and returns how many sessions it closed
func (s *Scheduler) Sweep() int {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	n, err := s.sweeper.ExpireStaleSessions(ctx)
	if err != nil {
		s.log.Error("session sweep failed", zap.Error(err), zap.Int("expired", n))
		return n
	}
	if n > 0 {
		s.log.Info("session sweep", zap.Int("expired", n))
	}
	return n
}
