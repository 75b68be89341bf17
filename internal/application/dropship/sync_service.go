package dropship

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/domain/shared"
	"github.com/erp/dropship/internal/infrastructure/logger"
	"github.com/erp/dropship/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultSyncWorkers bounds concurrent supplier syncs in SyncAll and SyncDue
const DefaultSyncWorkers = 4

// SyncService reconciles supplier feeds into supplier products
type SyncService struct {
	suppliers dropship.SupplierRepository
	products  dropship.SupplierProductRepository
	fetcher   dropship.CatalogFetcher
	locker    dropship.SupplierLocker
	archive   dropship.FeedArchive
	notifier  dropship.StorefrontNotifier
	metrics   *telemetry.CatalogMetrics
	logger    *zap.Logger
	workers   int
	now       func() time.Time
}

// SyncOption configures a SyncService
type SyncOption func(*SyncService)

// WithFeedArchive stores every fetched feed body before it is applied
func WithFeedArchive(a dropship.FeedArchive) SyncOption {
	return func(s *SyncService) {
		s.archive = a
	}
}

// WithStorefrontNotifier notifies the storefront after a sync that wrote rows
func WithStorefrontNotifier(n dropship.StorefrontNotifier) SyncOption {
	return func(s *SyncService) {
		s.notifier = n
	}
}

// WithSyncMetrics records sync runs and feed fetches
func WithSyncMetrics(m *telemetry.CatalogMetrics) SyncOption {
	return func(s *SyncService) {
		s.metrics = m
	}
}

// WithSyncWorkers sets how many suppliers SyncAll processes at once
func WithSyncWorkers(n int) SyncOption {
	return func(s *SyncService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithSyncClock overrides the clock used for sync timestamps
func WithSyncClock(now func() time.Time) SyncOption {
	return func(s *SyncService) {
		s.now = now
	}
}

// NewSyncService creates a new SyncService
func NewSyncService(
	suppliers dropship.SupplierRepository,
	products dropship.SupplierProductRepository,
	fetcher dropship.CatalogFetcher,
	locker dropship.SupplierLocker,
	log *zap.Logger,
	opts ...SyncOption,
) *SyncService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &SyncService{
		suppliers: suppliers,
		products:  products,
		fetcher:   fetcher,
		locker:    locker,
		logger:    log,
		workers:   DefaultSyncWorkers,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync pulls one supplier's feed and upserts its rows.
// A fetch failure aborts before any row is written; row failures are counted in the report.
// When ctx ends mid-feed the partial report is returned with the error.
func (s *SyncService) Sync(ctx context.Context, supplierID uuid.UUID) (*dropship.SyncReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog_sync", "sync", telemetry.SpanAttrSupplierID, supplierID.String())
	defer span.End()

	unlock, err := s.locker.Lock(ctx, supplierID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer unlock()

	report, err := s.syncLocked(ctx, supplierID)
	if err != nil {
		telemetry.RecordError(span, err)
		return report, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSupplierCode, report.SupplierCode,
		telemetry.SpanAttrCreated, report.Created,
		telemetry.SpanAttrUpdated, report.Updated,
		telemetry.SpanAttrErrors, report.Errors,
	)
	return report, nil
}

func (s *SyncService) syncLocked(ctx context.Context, supplierID uuid.UUID) (*dropship.SyncReport, error) {
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithSupplierID(ctx, supplier.ID.String())
	log := logger.Enrich(ctx, s.logger).With(zap.String("supplier_code", supplier.Code))

	if err := supplier.CanSync(); err != nil {
		return nil, err
	}
	endpoint, err := s.fetcher.Resolve(supplier)
	if err != nil {
		return nil, err
	}

	started := s.now()
	fetchStart := time.Now()
	feed, err := s.fetcher.Fetch(ctx, endpoint)
	s.metrics.RecordFetch(ctx, supplier.Code, string(endpoint.Source), time.Since(fetchStart), err)
	if err != nil {
		log.Warn("Catalog fetch failed", zap.String("endpoint_source", string(endpoint.Source)), zap.Error(err))
		s.metrics.RecordSync(ctx, supplier.Code, 0, 0, 0, time.Since(fetchStart), err)
		return nil, err
	}
	s.archiveFeed(ctx, supplier, feed, log)

	report := &dropship.SyncReport{
		SupplierID:   supplier.ID,
		SupplierCode: supplier.Code,
		RowErrors:    []dropship.RowError{},
		StartedAt:    started,
	}

	for _, row := range feed.Rows {
		if err := ctx.Err(); err != nil {
			return report, s.interrupted(ctx, supplier, report, err, log)
		}

		now := s.now()
		created, err := s.applyRow(ctx, supplier, row, now, log)
		if err != nil {
			report.Errors++
			report.RowErrors = append(report.RowErrors, dropship.RowError{SKU: row.SKU, Message: rowMessage(err)})
			log.Warn("Catalog row failed", zap.String("supplier_sku", row.SKU), zap.Error(err))
			if markErr := s.products.MarkSyncError(ctx, supplier.ID, row.SKU, rowMessage(err), now); markErr != nil {
				log.Warn("Failed to flag catalog row", zap.String("supplier_sku", row.SKU), zap.Error(markErr))
			}
			continue
		}
		if created {
			report.Created++
		} else {
			report.Updated++
		}
	}

	syncedAt := s.now()
	if err := s.suppliers.RefreshProductStats(ctx, supplier.ID, &syncedAt); err != nil {
		return nil, fmt.Errorf("failed to refresh supplier stats: %w", err)
	}
	report.FinishedAt = s.now()

	if report.Changed() && s.notifier != nil {
		if err := s.notifier.CatalogChanged(ctx, supplier.ID); err != nil {
			log.Warn("Storefront revalidation failed", zap.Error(err))
		}
	}

	duration := report.FinishedAt.Sub(report.StartedAt)
	s.metrics.RecordSync(ctx, supplier.Code, report.Created, report.Updated, report.Errors, duration, nil)
	log.Info("Catalog sync finished",
		zap.Int("rows", len(feed.Rows)),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("errors", report.Errors),
		zap.Duration("duration", duration),
	)
	return report, nil
}

// applyRow upserts one feed row and reports whether it created a product
func (s *SyncService) applyRow(ctx context.Context, supplier *dropship.Supplier, row dropship.CatalogRow, now time.Time, log *zap.Logger) (bool, error) {
	var (
		product *dropship.SupplierProduct
		warning *dropship.PricingWarning
		created bool
	)

	existing, err := s.products.FindBySupplierAndSKU(ctx, supplier.ID, row.SKU)
	switch {
	case err == nil:
		product = existing
		warning = product.ApplyFeedRow(row, now)
	case errors.Is(err, shared.ErrNotFound):
		product, warning = dropship.NewSupplierProductFromFeed(supplier, row, now)
		created = true
	default:
		return false, &dropship.PersistenceError{SKU: row.SKU, Err: err}
	}

	if warning != nil {
		log.Warn("Markup clamps selling price", zap.String("supplier_sku", row.SKU), zap.Error(warning))
	}
	if err := s.products.Save(ctx, product); err != nil {
		return false, &dropship.PersistenceError{SKU: row.SKU, Err: err}
	}
	return created, nil
}

// interrupted keeps the counters consistent for rows already written.
// last_sync_at is left alone since the feed was not fully applied.
func (s *SyncService) interrupted(ctx context.Context, supplier *dropship.Supplier, report *dropship.SyncReport, cause error, log *zap.Logger) error {
	applied := report.Created + report.Updated + report.Errors
	report.FinishedAt = s.now()
	ctx = context.WithoutCancel(ctx)
	if err := s.suppliers.RefreshProductStats(ctx, supplier.ID, nil); err != nil {
		log.Warn("Failed to refresh supplier stats", zap.Error(err))
	}
	s.metrics.RecordSync(ctx, supplier.Code, report.Created, report.Updated, report.Errors, s.now().Sub(report.StartedAt), cause)
	log.Warn("Catalog sync interrupted", zap.Int("applied", applied), zap.Error(cause))
	return fmt.Errorf("catalog sync interrupted after %d rows: %w", applied, cause)
}

func (s *SyncService) archiveFeed(ctx context.Context, supplier *dropship.Supplier, feed *dropship.CatalogFeed, log *zap.Logger) {
	if s.archive == nil {
		return
	}
	key, err := s.archive.Store(ctx, supplier.Code, feed)
	if err != nil {
		log.Warn("Failed to archive catalog feed", zap.Error(err))
		return
	}
	log.Debug("Catalog feed archived", zap.String("key", key))
}

func rowMessage(err error) string {
	var pe *dropship.PersistenceError
	if errors.As(err, &pe) && pe.Err != nil {
		return pe.Err.Error()
	}
	return err.Error()
}

// SyncAll syncs every active supplier with sync enabled.
// Per-supplier failures are reported in the results, not returned.
func (s *SyncService) SyncAll(ctx context.Context) ([]dropship.SyncResult, error) {
	return s.syncMany(ctx, "")
}

// SyncDue syncs the active suppliers scheduled at the given frequency
func (s *SyncService) SyncDue(ctx context.Context, frequency dropship.SyncFrequency) ([]dropship.SyncResult, error) {
	if frequency != "" && !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_SYNC_FREQUENCY", "Sync frequency must be manual, hourly, daily or weekly")
	}
	return s.syncMany(ctx, frequency)
}

func (s *SyncService) syncMany(ctx context.Context, frequency dropship.SyncFrequency) ([]dropship.SyncResult, error) {
	suppliers, err := s.suppliers.FindSyncable(ctx, frequency)
	if err != nil {
		return nil, err
	}

	results := make([]dropship.SyncResult, len(suppliers))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range suppliers {
		supplier := suppliers[i]
		g.Go(func() error {
			report, err := s.Sync(ctx, supplier.ID)
			results[i] = dropship.SyncResult{
				SupplierID:   supplier.ID,
				SupplierCode: supplier.Code,
				Report:       report,
				Err:          err,
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	logger.Enrich(ctx, s.logger).Info("Catalog sync run finished",
		zap.String("frequency", string(frequency)),
		zap.Int("suppliers", len(results)),
		zap.Int("failed", failed),
	)
	return results, nil
}
