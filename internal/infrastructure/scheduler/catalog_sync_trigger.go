package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// DueScheduler enqueues syncs of due suppliers
type DueScheduler interface {
	ScheduleDue(frequency dropship.SyncFrequency, trigger JobTrigger) (CatalogSyncJob, error)
}

// CatalogSyncTriggerConfig maps each sync frequency to how often it fires.
// A zero interval disables that frequency.
type CatalogSyncTriggerConfig struct {
	HourlyInterval time.Duration
	DailyInterval  time.Duration
	WeeklyInterval time.Duration
}

// DefaultCatalogSyncTriggerConfig returns default configuration
func DefaultCatalogSyncTriggerConfig() CatalogSyncTriggerConfig {
	return CatalogSyncTriggerConfig{
		HourlyInterval: time.Hour,
		DailyInterval:  24 * time.Hour,
		WeeklyInterval: 7 * 24 * time.Hour,
	}
}

func (c CatalogSyncTriggerConfig) intervals() map[dropship.SyncFrequency]time.Duration {
	return map[dropship.SyncFrequency]time.Duration{
		dropship.SyncHourly: c.HourlyInterval,
		dropship.SyncDaily:  c.DailyInterval,
		dropship.SyncWeekly: c.WeeklyInterval,
	}
}

// CatalogSyncTrigger enqueues due-supplier jobs on a gocron schedule, one job per frequency
type CatalogSyncTrigger struct {
	config    CatalogSyncTriggerConfig
	scheduler DueScheduler
	logger    *zap.Logger

	mu   sync.Mutex
	cron gocron.Scheduler
	jobs map[dropship.SyncFrequency]gocron.Job
}

// NewCatalogSyncTrigger creates a new trigger
func NewCatalogSyncTrigger(config CatalogSyncTriggerConfig, scheduler DueScheduler, logger *zap.Logger) *CatalogSyncTrigger {
	return &CatalogSyncTrigger{
		config:    config,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Start registers the frequency jobs and starts the cron scheduler. It is a no-op when already running.
func (t *CatalogSyncTrigger) Start(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cron != nil {
		return nil
	}

	cron, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create cron scheduler: %w", err)
	}

	jobs := make(map[dropship.SyncFrequency]gocron.Job)
	for frequency, interval := range t.config.intervals() {
		if interval <= 0 {
			t.logger.Info("Catalog sync frequency disabled", zap.String("frequency", string(frequency)))
			continue
		}
		job, err := cron.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(t.enqueue, frequency),
			gocron.WithName("catalog-sync-"+string(frequency)),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = cron.Shutdown()
			return fmt.Errorf("failed to register %s catalog sync: %w", frequency, err)
		}
		jobs[frequency] = job
	}

	cron.Start()
	t.cron = cron
	t.jobs = jobs

	t.logger.Info("Catalog sync trigger started",
		zap.Duration("hourly_interval", t.config.HourlyInterval),
		zap.Duration("daily_interval", t.config.DailyInterval),
		zap.Duration("weekly_interval", t.config.WeeklyInterval),
	)
	return nil
}

// Stop shuts the cron scheduler down
func (t *CatalogSyncTrigger) Stop(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cron == nil {
		return nil
	}
	err := t.cron.Shutdown()
	t.cron = nil
	t.jobs = nil
	t.logger.Info("Catalog sync trigger stopped")
	return err
}

// NextRuns returns when each registered frequency fires next
func (t *CatalogSyncTrigger) NextRuns() map[dropship.SyncFrequency]time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[dropship.SyncFrequency]time.Time, len(t.jobs))
	for frequency, job := range t.jobs {
		if next, err := job.NextRun(); err == nil {
			out[frequency] = next
		}
	}
	return out
}

// RunNow fires the job for frequency immediately
func (t *CatalogSyncTrigger) RunNow(frequency dropship.SyncFrequency) error {
	t.mu.Lock()
	job, ok := t.jobs[frequency]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: no trigger for frequency %q", ErrInvalidConfig, frequency)
	}
	return job.RunNow()
}

func (t *CatalogSyncTrigger) enqueue(frequency dropship.SyncFrequency) {
	job, err := t.scheduler.ScheduleDue(frequency, TriggerSchedule)
	switch {
	case errors.Is(err, ErrJobQueueFull):
		t.logger.Warn("Catalog sync queue full, skipping scheduled run", zap.String("frequency", string(frequency)))
	case err != nil:
		t.logger.Error("Failed to schedule catalog sync", zap.String("frequency", string(frequency)), zap.Error(err))
	default:
		t.logger.Debug("Scheduled catalog sync enqueued",
			zap.String("frequency", string(frequency)),
			zap.String("job_id", job.ID.String()),
		)
	}
}
