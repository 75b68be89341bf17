package scheduler

import (
	"fmt"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/google/uuid"
)

// CatalogSyncJobStatus represents the status of a catalog sync job
type CatalogSyncJobStatus string

const (
	CatalogSyncJobStatusPending   CatalogSyncJobStatus = "PENDING"
	CatalogSyncJobStatusRunning   CatalogSyncJobStatus = "RUNNING"
	CatalogSyncJobStatusSuccess   CatalogSyncJobStatus = "SUCCESS"
	CatalogSyncJobStatusPartial   CatalogSyncJobStatus = "PARTIAL"
	CatalogSyncJobStatusFailed    CatalogSyncJobStatus = "FAILED"
	CatalogSyncJobStatusCancelled CatalogSyncJobStatus = "CANCELLED"
)

// JobTrigger records what enqueued a job
type JobTrigger string

const (
	TriggerSchedule JobTrigger = "schedule"
	TriggerManual   JobTrigger = "manual"
)

const maxRetryBackoff = 30 * time.Minute

// CatalogSyncJob is one unit of queued sync work. SupplierID scopes it to a
// single supplier; otherwise Frequency selects the due suppliers, and an
// empty Frequency means every active supplier with sync enabled.
type CatalogSyncJob struct {
	ID         uuid.UUID              `json:"id"`
	SupplierID *uuid.UUID             `json:"supplier_id,omitempty"`
	Frequency  dropship.SyncFrequency `json:"frequency,omitempty"`
	Trigger    JobTrigger             `json:"trigger"`
	Status     CatalogSyncJobStatus   `json:"status"`

	Suppliers int `json:"suppliers"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	RowErrors int `json:"row_errors"`

	Error          string   `json:"error,omitempty"`
	SupplierErrors []string `json:"supplier_errors,omitempty"`

	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
	NextRetryAt *time.Time `json:"next_retry_at,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewCatalogSyncJob creates a job over the suppliers due at frequency
func NewCatalogSyncJob(frequency dropship.SyncFrequency, trigger JobTrigger, maxRetries int) *CatalogSyncJob {
	return &CatalogSyncJob{
		ID:         uuid.New(),
		Frequency:  frequency,
		Trigger:    trigger,
		Status:     CatalogSyncJobStatusPending,
		MaxRetries: maxRetries,
		CreatedAt:  time.Now(),
	}
}

// NewSupplierSyncJob creates a job for a single supplier
func NewSupplierSyncJob(supplierID uuid.UUID, trigger JobTrigger, maxRetries int) *CatalogSyncJob {
	job := NewCatalogSyncJob("", trigger, maxRetries)
	job.SupplierID = &supplierID
	return job
}

// Scope describes the suppliers the job covers, for logs
func (j *CatalogSyncJob) Scope() string {
	switch {
	case j.SupplierID != nil:
		return "supplier:" + j.SupplierID.String()
	case j.Frequency != "":
		return "due:" + string(j.Frequency)
	default:
		return "all"
	}
}

// Start marks the job as running
func (j *CatalogSyncJob) Start() {
	now := time.Now()
	j.Status = CatalogSyncJobStatusRunning
	j.StartedAt = &now
	j.Error = ""
	j.SupplierErrors = nil
}

// Complete tallies per-supplier results and sets the final status
func (j *CatalogSyncJob) Complete(results []dropship.SyncResult) {
	now := time.Now()
	j.CompletedAt = &now
	j.Suppliers = len(results)
	j.Succeeded, j.Failed = 0, 0
	j.Created, j.Updated, j.RowErrors = 0, 0, 0

	for _, r := range results {
		if r.Failed() {
			j.Failed++
			j.SupplierErrors = append(j.SupplierErrors, fmt.Sprintf("%s: %v", r.SupplierCode, r.Err))
			continue
		}
		j.Succeeded++
		if r.Report != nil {
			j.Created += r.Report.Created
			j.Updated += r.Report.Updated
			j.RowErrors += r.Report.Errors
		}
	}

	switch {
	case j.Failed == 0:
		j.Status = CatalogSyncJobStatusSuccess
	case j.Succeeded == 0:
		j.Status = CatalogSyncJobStatusFailed
	default:
		j.Status = CatalogSyncJobStatusPartial
	}
}

// Fail marks the job as failed
func (j *CatalogSyncJob) Fail(errMsg string) {
	now := time.Now()
	j.Status = CatalogSyncJobStatusFailed
	j.CompletedAt = &now
	j.Error = errMsg
}

// Cancel marks a job that never ran because the scheduler stopped
func (j *CatalogSyncJob) Cancel() {
	now := time.Now()
	j.Status = CatalogSyncJobStatusCancelled
	j.CompletedAt = &now
}

// ShouldRetry checks if the job should be retried
func (j *CatalogSyncJob) ShouldRetry() bool {
	return j.Status == CatalogSyncJobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff and
// returns the delay until the next attempt
func (j *CatalogSyncJob) ScheduleRetry(baseDelay time.Duration) time.Duration {
	j.RetryCount++
	delay := baseDelay * time.Duration(1<<uint(j.RetryCount-1))
	if delay > maxRetryBackoff || delay <= 0 {
		delay = maxRetryBackoff
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.Status = CatalogSyncJobStatusPending
	j.CompletedAt = nil
	return delay
}

// snapshot copies the job for history readers
func (j *CatalogSyncJob) snapshot() CatalogSyncJob {
	c := *j
	c.SupplierErrors = append([]string(nil), j.SupplierErrors...)
	return c
}
