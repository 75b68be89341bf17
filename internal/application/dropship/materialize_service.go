package dropship

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/infrastructure/logger"
	"github.com/erp/dropship/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaterializeService promotes unlinked supplier products to catalog listings
type MaterializeService struct {
	suppliers dropship.SupplierRepository
	products  dropship.SupplierProductRepository
	publisher dropship.ListingPublisher
	locker    dropship.SupplierLocker
	metrics   *telemetry.CatalogMetrics
	logger    *zap.Logger
	limit     int
}

// MaterializeOption configures a MaterializeService
type MaterializeOption func(*MaterializeService)

// WithMaterializeMetrics records materialized rows
func WithMaterializeMetrics(m *telemetry.CatalogMetrics) MaterializeOption {
	return func(s *MaterializeService) {
		s.metrics = m
	}
}

// WithBatchLimit caps rows promoted per call; it cannot exceed dropship.MaterializeBatchLimit
func WithBatchLimit(n int) MaterializeOption {
	return func(s *MaterializeService) {
		if n > 0 && n <= dropship.MaterializeBatchLimit {
			s.limit = n
		}
	}
}

// NewMaterializeService creates a new MaterializeService
func NewMaterializeService(
	suppliers dropship.SupplierRepository,
	products dropship.SupplierProductRepository,
	publisher dropship.ListingPublisher,
	locker dropship.SupplierLocker,
	log *zap.Logger,
	opts ...MaterializeOption,
) *MaterializeService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &MaterializeService{
		suppliers: suppliers,
		products:  products,
		publisher: publisher,
		locker:    locker,
		logger:    log,
		limit:     dropship.MaterializeBatchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Materialize publishes up to one batch of a supplier's unlinked products.
// When ids is non-empty only those products are considered.
// A product is linked at most once; rows that fail are reported and left unlinked.
func (s *MaterializeService) Materialize(ctx context.Context, supplierID uuid.UUID, ids []uuid.UUID) (*dropship.MaterializeReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog_materialize", "materialize", telemetry.SpanAttrSupplierID, supplierID.String())
	defer span.End()

	unlock, err := s.locker.Lock(ctx, supplierID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer unlock()

	report, err := s.materializeLocked(ctx, supplierID, ids)
	if err != nil {
		telemetry.RecordError(span, err)
		return report, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCreated, report.Created,
		telemetry.SpanAttrErrors, report.Errors,
	)
	return report, nil
}

func (s *MaterializeService) materializeLocked(ctx context.Context, supplierID uuid.UUID, ids []uuid.UUID) (*dropship.MaterializeReport, error) {
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	ctx = logger.WithSupplierID(ctx, supplier.ID.String())
	log := logger.Enrich(ctx, s.logger).With(zap.String("supplier_code", supplier.Code))

	products, err := s.products.FindUnlinked(ctx, supplier.ID, ids, s.limit)
	if err != nil {
		return nil, err
	}

	report := &dropship.MaterializeReport{
		SupplierID: supplier.ID,
		RowErrors:  []dropship.RowError{},
	}
	for i := range products {
		if err := ctx.Err(); err != nil {
			log.Warn("Materialization interrupted", zap.Int("created", report.Created), zap.Error(err))
			break
		}

		product := &products[i]
		listing, err := s.publish(ctx, supplier, product, log)
		if err != nil {
			report.Errors++
			report.RowErrors = append(report.RowErrors, dropship.RowError{SKU: product.SupplierSKU, Message: rowMessage(err)})
			log.Warn("Failed to materialize supplier product",
				zap.String("supplier_product_id", product.ID.String()),
				zap.String("supplier_sku", product.SupplierSKU),
				zap.Error(err),
			)
			continue
		}
		report.Created++
		log.Debug("Supplier product materialized",
			zap.String("supplier_sku", product.SupplierSKU),
			zap.String("product_id", listing.ProductID),
			zap.Bool("reused", listing.Reused),
		)
	}

	// remaining is counted after the loop, also when ctx ended it early
	remaining, err := s.products.CountUnlinked(context.WithoutCancel(ctx), supplier.ID)
	if err != nil {
		return nil, err
	}
	report.Remaining = remaining

	s.metrics.RecordMaterialize(ctx, supplier.Code, report.Created, report.Errors)
	log.Info("Materialization finished",
		zap.Int("candidates", len(products)),
		zap.Int("created", report.Created),
		zap.Int("errors", report.Errors),
		zap.Int64("remaining", report.Remaining),
	)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// publish creates the listing for one product. A concurrent link is an error for this row.
func (s *MaterializeService) publish(ctx context.Context, supplier *dropship.Supplier, product *dropship.SupplierProduct, log *zap.Logger) (*dropship.Listing, error) {
	if product.IsLinked() {
		return nil, dropship.ErrAlreadyMaterialized
	}

	price, warning := dropship.SellingPrice(product.SupplierPrice, product.MarkupType, product.MarkupValue)
	if warning != nil {
		log.Warn("Markup clamps selling price", zap.String("supplier_sku", product.SupplierSKU), zap.Error(warning))
	}

	currency := product.SupplierCurrency
	if currency == "" {
		currency = supplier.Currency
	}
	draft := dropship.ListingDraft{
		SupplierProductID: product.ID,
		SupplierID:        supplier.ID,
		SupplierCode:      supplier.Code,
		SupplierSKU:       product.SupplierSKU,
		Title:             product.Title(),
		Handle:            dropship.Handle(supplier.Code, product.SupplierSKU),
		VariantSKU:        dropship.VariantSKU(supplier.Code, product.SupplierSKU),
		Currency:          strings.ToLower(currency),
		Amount:            price,
		Stock:             product.SupplierStock,
	}

	listing, err := s.publisher.Publish(ctx, draft)
	if err != nil {
		if errors.Is(err, dropship.ErrAlreadyMaterialized) {
			return nil, err
		}
		return nil, &dropship.PersistenceError{SKU: product.SupplierSKU, Err: err}
	}
	return listing, nil
}
