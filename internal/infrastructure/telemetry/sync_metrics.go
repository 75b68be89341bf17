package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Outcomes recorded on sync and materialize runs
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// CatalogMetrics records catalog sync and materialization activity.
// A nil *CatalogMetrics is valid and records nothing.
type CatalogMetrics struct {
	syncRuns         *Counter
	syncRows         *Counter
	syncDuration     *Histogram
	fetchDuration    *Histogram
	materializedRows *Counter
}

// NewCatalogMetrics registers the catalog instruments on meter
func NewCatalogMetrics(meter metric.Meter) (*CatalogMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   CatalogMetrics
		err error
	)
	if m.syncRuns, err = NewCounter(meter, "dropship_sync_runs_total", "Supplier catalog syncs by outcome", "{run}"); err != nil {
		return nil, err
	}
	if m.syncRows, err = NewCounter(meter, "dropship_sync_rows_total", "Feed rows reconciled by result", "{row}"); err != nil {
		return nil, err
	}
	if m.materializedRows, err = NewCounter(meter, "dropship_materialized_rows_total", "Supplier products promoted to catalog listings by result", "{row}"); err != nil {
		return nil, err
	}
	if m.syncDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "dropship_sync_duration_seconds",
		Description: "Duration of a full supplier sync",
		Unit:        "s",
		Boundaries:  SyncDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.fetchDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "dropship_feed_fetch_duration_seconds",
		Description: "Duration of supplier feed downloads",
		Unit:        "s",
		Boundaries:  SyncDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordFetch records one feed download
func (m *CatalogMetrics) RecordFetch(ctx context.Context, supplierCode, source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailed
	}
	m.fetchDuration.RecordDuration(ctx, d, AttrSupplierCode.String(supplierCode), AttrEndpoint.String(source), AttrOutcome.String(outcome))
}

// RecordSync records a finished sync run and its row counts
func (m *CatalogMetrics) RecordSync(ctx context.Context, supplierCode string, created, updated, failed int, d time.Duration, err error) {
	if m == nil {
		return
	}
	code := AttrSupplierCode.String(supplierCode)
	m.syncRuns.Inc(ctx, code, AttrOutcome.String(outcomeOf(failed, err)))
	m.syncDuration.RecordDuration(ctx, d, code)
	m.syncRows.Add(ctx, int64(created), code, AttrRowResult.String("created"))
	m.syncRows.Add(ctx, int64(updated), code, AttrRowResult.String("updated"))
	m.syncRows.Add(ctx, int64(failed), code, AttrRowResult.String("error"))
}

// RecordMaterialize records a finished materialization batch
func (m *CatalogMetrics) RecordMaterialize(ctx context.Context, supplierCode string, created, failed int) {
	if m == nil {
		return
	}
	code := AttrSupplierCode.String(supplierCode)
	m.materializedRows.Add(ctx, int64(created), code, AttrRowResult.String("created"))
	m.materializedRows.Add(ctx, int64(failed), code, AttrRowResult.String("error"))
}

func outcomeOf(failed int, err error) string {
	switch {
	case err != nil:
		return OutcomeFailed
	case failed > 0:
		return OutcomePartial
	default:
		return OutcomeSuccess
	}
}
