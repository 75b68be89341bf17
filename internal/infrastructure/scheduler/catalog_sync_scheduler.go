package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogSyncExecutor runs a catalog sync job
type CatalogSyncExecutor interface {
	// Execute runs the job and records results on it
	Execute(ctx context.Context, job *CatalogSyncJob) error
}

// CatalogSyncSchedulerConfig holds configuration for the catalog sync scheduler
type CatalogSyncSchedulerConfig struct {
	// MaxConcurrentJobs is the number of queue workers
	MaxConcurrentJobs int

	// QueueSize is the job queue capacity; submissions beyond it fail fast
	QueueSize int

	// JobTimeout bounds a single job attempt
	JobTimeout time.Duration

	// RetryAttempts is the number of retries after a failed attempt
	RetryAttempts int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// MaxHistory is the number of finished jobs kept in memory
	MaxHistory int
}

// DefaultCatalogSyncSchedulerConfig returns default configuration
func DefaultCatalogSyncSchedulerConfig() CatalogSyncSchedulerConfig {
	return CatalogSyncSchedulerConfig{
		MaxConcurrentJobs: 3,
		QueueSize:         100,
		JobTimeout:        30 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
		MaxHistory:        100,
	}
}

// Validate validates the configuration
func (c CatalogSyncSchedulerConfig) Validate() error {
	if c.MaxConcurrentJobs < 1 {
		return fmt.Errorf("%w: max concurrent jobs must be at least 1", ErrInvalidConfig)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", ErrInvalidConfig)
	}
	if c.RetryAttempts > 0 && c.RetryDelay <= 0 {
		return fmt.Errorf("%w: retry delay must be positive when retries are enabled", ErrInvalidConfig)
	}
	return nil
}

// CatalogSyncScheduler runs catalog sync jobs on a bounded worker pool with
// retry and an in-memory history of finished jobs.
type CatalogSyncScheduler struct {
	config   CatalogSyncSchedulerConfig
	executor CatalogSyncExecutor
	logger   *zap.Logger

	jobs      chan *CatalogSyncJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	retries   map[*CatalogSyncJob]*time.Timer

	historyMu sync.RWMutex
	history   []CatalogSyncJob
}

// NewCatalogSyncScheduler creates a new catalog sync scheduler
func NewCatalogSyncScheduler(config CatalogSyncSchedulerConfig, executor CatalogSyncExecutor, logger *zap.Logger) (*CatalogSyncScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 100
	}
	if config.MaxHistory <= 0 {
		config.MaxHistory = 100
	}

	return &CatalogSyncScheduler{
		config:   config,
		executor: executor,
		logger:   logger,
		history:  make([]CatalogSyncJob, 0, config.MaxHistory),
	}, nil
}

// MaxRetries is the retry budget given to new jobs
func (s *CatalogSyncScheduler) MaxRetries() int {
	return s.config.RetryAttempts
}

// Start starts the worker pool. It is a no-op when already running.
func (s *CatalogSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.jobs = make(chan *CatalogSyncJob, s.config.QueueSize)
	s.retries = make(map[*CatalogSyncJob]*time.Timer)
	s.isRunning = true

	for i := 0; i < s.config.MaxConcurrentJobs; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i, s.jobs)
	}

	s.logger.Info("Catalog sync scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels running jobs, drops pending retries and waits for workers
func (s *CatalogSyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	for job, timer := range s.retries {
		if timer.Stop() {
			job.Cancel()
			s.addToHistory(job)
		}
	}
	s.retries = nil
	s.cancel()
	jobs := s.jobs
	close(jobs)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		for job := range jobs {
			job.Cancel()
			s.addToHistory(job)
		}
		s.logger.Info("Catalog sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Catalog sync scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler accepts jobs
func (s *CatalogSyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// SubmitJob enqueues a job without blocking
func (s *CatalogSyncScheduler) SubmitJob(job *CatalogSyncJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	select {
	case s.jobs <- job:
		s.logger.Debug("Catalog sync job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("scope", job.Scope()),
			zap.String("trigger", string(job.Trigger)),
		)
		return nil
	default:
		return ErrJobQueueFull
	}
}

func (s *CatalogSyncScheduler) worker(ctx context.Context, workerID int, jobs <-chan *CatalogSyncJob) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			s.processJob(ctx, job, workerID)
		}
	}
}

func (s *CatalogSyncScheduler) processJob(ctx context.Context, job *CatalogSyncJob, workerID int) {
	job.Start()
	s.logger.Info("Processing catalog sync job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("scope", job.Scope()),
		zap.Int("attempt", job.RetryCount+1),
	)

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	err := s.executor.Execute(jobCtx, job)
	if err != nil && errors.Is(jobCtx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", ErrCatalogSyncTimeout, err)
	}
	if err == nil {
		s.logger.Info("Catalog sync job completed",
			zap.String("job_id", job.ID.String()),
			zap.String("scope", job.Scope()),
			zap.String("status", string(job.Status)),
			zap.Int("suppliers", job.Suppliers),
			zap.Int("failed", job.Failed),
			zap.Int("created", job.Created),
			zap.Int("updated", job.Updated),
		)
		s.addToHistory(job)
		return
	}

	job.Fail(err.Error())
	s.logger.Error("Catalog sync job failed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("scope", job.Scope()),
		zap.Error(err),
	)

	if errors.Is(err, ErrNonRetryable) || ctx.Err() != nil || !job.ShouldRetry() {
		s.addToHistory(job)
		return
	}
	s.scheduleRetry(job)
}

// scheduleRetry resubmits the job once its backoff elapses
func (s *CatalogSyncScheduler) scheduleRetry(job *CatalogSyncJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		job.Cancel()
		s.addToHistory(job)
		return
	}

	delay := job.ScheduleRetry(s.config.RetryDelay)
	s.logger.Info("Catalog sync job scheduled for retry",
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Time("next_retry_at", *job.NextRetryAt),
	)

	s.retries[job] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.retries != nil {
			delete(s.retries, job)
		}
		s.mu.Unlock()

		if err := s.SubmitJob(job); err != nil {
			s.logger.Warn("Failed to re-queue catalog sync job for retry",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
			job.Fail(err.Error())
			s.addToHistory(job)
		}
	})
}

func (s *CatalogSyncScheduler) addToHistory(job *CatalogSyncJob) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	s.history = append([]CatalogSyncJob{job.snapshot()}, s.history...)
	if len(s.history) > s.config.MaxHistory {
		s.history = s.history[:s.config.MaxHistory]
	}
}

// GetJobHistory returns recent finished jobs, newest first
func (s *CatalogSyncScheduler) GetJobHistory(limit int) []CatalogSyncJob {
	s.historyMu.RLock()
	defer s.historyMu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	result := make([]CatalogSyncJob, limit)
	copy(result, s.history[:limit])
	return result
}

// ScheduleDue enqueues a sync of the suppliers due at the given frequency;
// an empty frequency covers every active supplier with sync enabled.
func (s *CatalogSyncScheduler) ScheduleDue(frequency dropship.SyncFrequency, trigger JobTrigger) (CatalogSyncJob, error) {
	return s.submit(NewCatalogSyncJob(frequency, trigger, s.config.RetryAttempts))
}

// ScheduleSupplier enqueues a sync of a single supplier
func (s *CatalogSyncScheduler) ScheduleSupplier(supplierID uuid.UUID, trigger JobTrigger) (CatalogSyncJob, error) {
	return s.submit(NewSupplierSyncJob(supplierID, trigger, s.config.RetryAttempts))
}

// submit returns a snapshot taken before workers can touch the job
func (s *CatalogSyncScheduler) submit(job *CatalogSyncJob) (CatalogSyncJob, error) {
	snap := job.snapshot()
	if err := s.SubmitJob(job); err != nil {
		return CatalogSyncJob{}, err
	}
	return snap, nil
}
