// Package scheduler fires the daily notification fan-out on a fixed period.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"weatherbot.app/internal/core/notification"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// State of the scheduler. There is no paused state.
type State int

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Notifier runs one fan-out over all subscribers
type Notifier interface {
	SendDailyUpdates(ctx context.Context) notification.Report
}

type Scheduler struct {
	notifier Notifier
	config   ports.SchedulerConfig
	logger   ports.Logger
	metrics  ports.MetricsCollector
	newID    func() string

	mu     sync.Mutex
	state  State
	cron   *gocron.Scheduler
	cancel context.CancelFunc
}

type Options struct {
	Notifier Notifier
	Config   ports.SchedulerConfig
	Logger   ports.Logger
	Metrics  ports.MetricsCollector
	// NewID generates tick ids; defaults to uuid.NewString
	NewID func() string
}

func New(opts Options) (*Scheduler, error) {
	if opts.Notifier == nil {
		return nil, errors.NewValidationError("notifier is required")
	}
	if opts.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if opts.Metrics == nil {
		return nil, errors.NewValidationError("metrics is required")
	}
	if opts.Config.Interval <= 0 {
		return nil, errors.NewValidationError("scheduler interval must be positive")
	}
	if opts.Config.InitialDelay < 0 {
		return nil, errors.NewValidationError("scheduler initial delay cannot be negative")
	}

	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &Scheduler{
		notifier: opts.Notifier,
		config:   opts.Config,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		newID:    newID,
		state:    StateStopped,
	}, nil
}

// State reports whether the periodic job is scheduled
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start schedules the tick job; the first tick fires after the initial delay.
// Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	cron := gocron.NewScheduler(time.UTC)

	firstRun := time.Now().Add(s.config.InitialDelay)
	_, err := cron.Every(s.config.Interval).
		StartAt(firstRun).
		SingletonMode().
		Do(s.Tick, runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("schedule notification job: %w", err)
	}

	cron.StartAsync()
	s.cron = cron
	s.cancel = cancel
	s.state = StateRunning

	s.logger.Info("Notification scheduler started",
		ports.F("interval", s.config.Interval.String()),
		ports.F("first_run", firstRun.UTC().Format(time.RFC3339)))
	return nil
}

// Stop cancels the running fan-out and removes the job. Missed ticks are not replayed.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateStopped {
		return
	}

	s.cancel()
	s.cron.Stop()
	s.cron = nil
	s.cancel = nil
	s.state = StateStopped

	s.logger.Info("Notification scheduler stopped")
}

// Tick runs one fan-out. It never panics, so a failing tick cannot cancel the next one.
func (s *Scheduler) Tick(ctx context.Context) {
	tickID := s.newID()
	ctx = notification.WithTickID(ctx, tickID)
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Notification tick panicked",
				ports.F("tick_id", tickID),
				ports.F("panic", fmt.Sprint(r)))
		}
		s.metrics.ObserveTick(ctx, time.Since(started))
	}()

	s.logger.Info("Notification tick started", ports.F("tick_id", tickID))

	report := s.notifier.SendDailyUpdates(ctx)
	if report.Err != nil {
		s.logger.Error("Notification tick failed",
			ports.F("tick_id", tickID),
			ports.F("error", report.Err))
		return
	}

	s.logger.Info("Notification tick finished",
		ports.F("tick_id", tickID),
		ports.F("subscribers", len(report.Results)),
		ports.F("sent", report.Count(notification.OutcomeSent)),
		ports.F("not_found", report.Count(notification.OutcomeNotFound)),
		ports.F("failed", report.Count(notification.OutcomeFailed)),
		ports.F("send_failed", report.Count(notification.OutcomeSendFailed)),
		ports.F("skipped", report.Count(notification.OutcomeSkipped)),
		ports.F("duration", time.Since(started).String()))
}
