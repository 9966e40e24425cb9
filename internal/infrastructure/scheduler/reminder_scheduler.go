// Package scheduler runs background jobs on a daily schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/duka/backend/internal/application/reminder"
	"go.uber.org/zap"
)

// Sweeper runs one reminder sweep across all shops
type Sweeper interface {
	Sweep(ctx context.Context) (*reminder.SweepResult, error)
}

// ReminderSchedulerConfig holds configuration for the reminder scheduler
type ReminderSchedulerConfig struct {
	Enabled bool

	// Hour is the local hour (0-23) when the daily sweep runs
	Hour int

	// Location is the timezone the hour is read in
	Location *time.Location

	// Timeout is the maximum time for one sweep
	Timeout time.Duration
}

// DefaultReminderSchedulerConfig returns default configuration
func DefaultReminderSchedulerConfig() ReminderSchedulerConfig {
	return ReminderSchedulerConfig{
		Enabled:  true,
		Hour:     9,
		Location: time.Local,
		Timeout:  10 * time.Minute,
	}
}

// ReminderScheduler sends overdue debt reminders once a day
type ReminderScheduler struct {
	sweeper   Sweeper
	logger    *zap.Logger
	config    ReminderSchedulerConfig
	now       func() time.Time
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewReminderScheduler creates a new reminder scheduler
func NewReminderScheduler(sweeper Sweeper, logger *zap.Logger, config ReminderSchedulerConfig) (*ReminderScheduler, error) {
	if sweeper == nil {
		return nil, fmt.Errorf("%w: sweeper is required", ErrInvalidConfig)
	}
	if config.Hour < 0 || config.Hour > 23 {
		return nil, fmt.Errorf("%w: hour must be between 0 and 23", ErrInvalidConfig)
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultReminderSchedulerConfig().Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderScheduler{
		sweeper: sweeper,
		logger:  logger,
		config:  config,
		now:     time.Now,
	}, nil
}

// Start starts the daily sweep loop
func (s *ReminderScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Reminder scheduler is disabled")
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go s.runDaily(ctx)

	s.logger.Info("Reminder scheduler started",
		zap.Int("hour", s.config.Hour),
		zap.String("timezone", s.config.Location.String()),
	)
	return nil
}

// Stop cancels the loop and waits for a running sweep to finish
func (s *ReminderScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reminder scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reminder scheduler stop timed out")
		return ctx.Err()
	}
}

// NextRun returns the first sweep time strictly after now
func (s *ReminderScheduler) NextRun(now time.Time) time.Time {
	local := now.In(s.config.Location)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.config.Hour, 0, 0, 0, s.config.Location)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *ReminderScheduler) runDaily(ctx context.Context) {
	defer s.wg.Done()

	for {
		nextRun := s.NextRun(s.now())
		delay := nextRun.Sub(s.now())

		s.logger.Info("Reminder sweep scheduled",
			zap.Time("next_run", nextRun),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Debug("Reminder loop stopping")
			return
		case <-timer.C:
			s.execute(ctx)
		}
	}
}

func (s *ReminderScheduler) execute(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	startTime := time.Now()
	result, err := s.sweeper.Sweep(sweepCtx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Reminder sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}
	if result.Locked {
		s.logger.Info("Reminder sweep skipped, another instance holds the lock")
		return
	}
	s.logger.Info("Reminder sweep finished",
		zap.Duration("duration", duration),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
	)
}

// TriggerImmediate runs a sweep now without waiting for the schedule
func (s *ReminderScheduler) TriggerImmediate(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate reminder sweep")

	go func() {
		defer s.wg.Done()
		s.execute(ctx)
	}()
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *ReminderScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
