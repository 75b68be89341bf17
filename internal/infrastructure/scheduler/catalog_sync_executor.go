package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogSyncer is the sync surface the executor drives
type CatalogSyncer interface {
	Sync(ctx context.Context, supplierID uuid.UUID) (*dropship.SyncReport, error)
	SyncAll(ctx context.Context) ([]dropship.SyncResult, error)
	SyncDue(ctx context.Context, frequency dropship.SyncFrequency) ([]dropship.SyncResult, error)
}

// SyncServiceExecutor executes jobs against the catalog sync service
type SyncServiceExecutor struct {
	syncer CatalogSyncer
	logger *zap.Logger
}

var _ CatalogSyncExecutor = (*SyncServiceExecutor)(nil)

// NewSyncServiceExecutor creates a new executor
func NewSyncServiceExecutor(syncer CatalogSyncer, logger *zap.Logger) *SyncServiceExecutor {
	return &SyncServiceExecutor{syncer: syncer, logger: logger}
}

// Execute runs the job's scope and records per-supplier results on it.
// A job where every supplier failed is returned as ErrCatalogSyncFailed so it can be retried.
func (e *SyncServiceExecutor) Execute(ctx context.Context, job *CatalogSyncJob) error {
	if job.SupplierID != nil {
		return e.executeOne(ctx, job, *job.SupplierID)
	}

	var (
		results []dropship.SyncResult
		err     error
	)
	if job.Frequency == "" {
		results, err = e.syncer.SyncAll(ctx)
	} else {
		results, err = e.syncer.SyncDue(ctx, job.Frequency)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCatalogSyncFailed, err)
	}

	job.Complete(results)
	for _, r := range results {
		if r.Failed() {
			e.logger.Warn("Supplier sync failed within job",
				zap.String("job_id", job.ID.String()),
				zap.String("supplier_code", r.SupplierCode),
				zap.Error(r.Err),
			)
		}
	}
	if job.Status == CatalogSyncJobStatusFailed {
		return fmt.Errorf("%w: all %d suppliers failed", ErrCatalogSyncFailed, job.Failed)
	}
	return nil
}

func (e *SyncServiceExecutor) executeOne(ctx context.Context, job *CatalogSyncJob, supplierID uuid.UUID) error {
	report, err := e.syncer.Sync(ctx, supplierID)
	if err != nil {
		if isPermanent(err) {
			return fmt.Errorf("%w: %w", ErrNonRetryable, err)
		}
		return err
	}
	job.Complete([]dropship.SyncResult{{
		SupplierID:   supplierID,
		SupplierCode: report.SupplierCode,
		Report:       report,
	}})
	return nil
}

// isPermanent reports failures caused by supplier configuration rather than the feed
func isPermanent(err error) bool {
	return errors.Is(err, dropship.ErrSyncDisabled) ||
		errors.Is(err, dropship.ErrNoEndpoint) ||
		errors.Is(err, shared.ErrNotFound)
}
