package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when trying to submit a job to a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrJobQueueFull is returned when the job queue is full
	ErrJobQueueFull = errors.New("job queue is full")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrCatalogSyncFailed is returned when every supplier in a run failed
	ErrCatalogSyncFailed = errors.New("catalog sync failed")

	// ErrCatalogSyncTimeout is returned when a run exceeds the job timeout
	ErrCatalogSyncTimeout = errors.New("catalog sync timed out")

	// ErrNonRetryable marks failures that a retry cannot fix (disabled sync, missing endpoint, unknown supplier)
	ErrNonRetryable = errors.New("catalog sync failure is not retryable")
)
