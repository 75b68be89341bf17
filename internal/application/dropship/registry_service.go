// Package dropship holds the application services of the supplier catalog:
// the registry, catalog sync, product materialization and supplier orders.
package dropship

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/domain/shared"
	"github.com/erp/dropship/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegistryService handles supplier and supplier product administration
type RegistryService struct {
	suppliers   dropship.SupplierRepository
	products    dropship.SupplierProductRepository
	orders      dropship.SupplierOrderRepository
	provisioner dropship.StockLocationProvisioner
	logger      *zap.Logger
}

// RegistryOption configures a RegistryService
type RegistryOption func(*RegistryService)

// WithStockLocationProvisioner provisions a stock location for new dropship suppliers
func WithStockLocationProvisioner(p dropship.StockLocationProvisioner) RegistryOption {
	return func(s *RegistryService) {
		s.provisioner = p
	}
}

// NewRegistryService creates a new RegistryService
func NewRegistryService(
	suppliers dropship.SupplierRepository,
	products dropship.SupplierProductRepository,
	orders dropship.SupplierOrderRepository,
	log *zap.Logger,
	opts ...RegistryOption,
) *RegistryService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &RegistryService{
		suppliers: suppliers,
		products:  products,
		orders:    orders,
		logger:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a supplier
func (s *RegistryService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := dropship.NewSupplier(req.Name, req.Code)
	if err != nil {
		return nil, err
	}

	exists, err := s.suppliers.ExistsByCode(ctx, supplier.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, dropship.ErrDuplicateCode
	}

	if err := applySupplierPatch(supplier, req.patch()); err != nil {
		return nil, err
	}
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}

	log := logger.Enrich(ctx, s.logger)
	log.Info("Supplier created", zap.String("supplier_id", supplier.ID.String()), zap.String("supplier_code", supplier.Code))

	if supplier.IsDropship && s.provisioner != nil {
		s.provisionStockLocation(ctx, supplier, log)
	}

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// provisionStockLocation is best-effort; the supplier exists either way
func (s *RegistryService) provisionStockLocation(ctx context.Context, supplier *dropship.Supplier, log *zap.Logger) {
	locationID, err := s.provisioner.ProvisionStockLocation(ctx, supplier)
	if err != nil {
		log.Warn("Failed to provision stock location",
			zap.String("supplier_id", supplier.ID.String()),
			zap.Error(err),
		)
		return
	}
	supplier.AttachStockLocation(locationID)
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		log.Warn("Failed to record stock location",
			zap.String("supplier_id", supplier.ID.String()),
			zap.String("stock_location_id", locationID),
			zap.Error(err),
		)
	}
}

// Get returns a supplier by ID
func (s *RegistryService) Get(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Update applies a partial update. Code uniqueness is re-checked only when the code changes.
func (s *RegistryService) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		changed, err := supplier.ChangeCode(*req.Code)
		if err != nil {
			return nil, err
		}
		if changed {
			exists, err := s.suppliers.ExistsByCode(ctx, supplier.Code)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, dropship.ErrDuplicateCode
			}
		}
	}

	if err := applySupplierPatch(supplier, req); err != nil {
		return nil, err
	}
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Delete removes a supplier with its products and orders.
// Suppliers with active products or open orders are kept.
func (s *RegistryService) Delete(ctx context.Context, id uuid.UUID) error {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return err
	}

	active, err := s.products.CountActive(ctx, supplier.ID)
	if err != nil {
		return err
	}
	if active > 0 {
		return dropship.ErrHasActiveProducts
	}

	open, err := s.orders.CountOpen(ctx, supplier.ID)
	if err != nil {
		return err
	}
	if open > 0 {
		return dropship.ErrHasPendingOrders
	}

	if err := s.suppliers.DeleteCascade(ctx, supplier.ID); err != nil {
		return err
	}
	logger.Enrich(ctx, s.logger).Info("Supplier deleted",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("supplier_code", supplier.Code),
	)
	return nil
}

// List returns suppliers ordered by name and the total matching count
func (s *RegistryService) List(ctx context.Context, filter SupplierListFilter) ([]SupplierResponse, int64, error) {
	query := dropship.SupplierFilter{
		Filter:     pageFilter(filter.Page, filter.PageSize),
		IsActive:   filter.IsActive,
		IsDropship: filter.IsDropship,
	}
	query.Search = strings.TrimSpace(filter.Search)
	query.OrderBy = filter.OrderBy
	query.OrderDir = filter.OrderDir

	suppliers, total, err := s.suppliers.FindAll(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	items := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		items[i] = ToSupplierResponse(&suppliers[i])
	}
	return items, total, nil
}

// ListProducts returns a supplier's products with their current selling prices
func (s *RegistryService) ListProducts(ctx context.Context, supplierID uuid.UUID, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		return nil, 0, err
	}

	query := dropship.ProductFilter{
		Filter:     pageFilter(filter.Page, filter.PageSize),
		SyncStatus: dropship.SyncStatus(filter.SyncStatus),
		IsActive:   filter.IsActive,
		Linked:     filter.Linked,
	}
	query.Search = strings.TrimSpace(filter.Search)

	products, total, err := s.products.FindAll(ctx, supplierID, query)
	if err != nil {
		return nil, 0, err
	}

	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	return items, total, nil
}

// AddProduct adds a supplier product by hand. It stays pending until the next sync.
func (s *RegistryService) AddProduct(ctx context.Context, supplierID uuid.UUID, req AddProductRequest) (*ProductResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if req.SupplierPrice == nil {
		return nil, shared.NewDomainError("INVALID_PRICE", "Supplier price is required")
	}

	_, err = s.products.FindBySupplierAndSKU(ctx, supplier.ID, strings.TrimSpace(req.SupplierSKU))
	switch {
	case err == nil:
		return nil, dropship.ErrDuplicateSKU
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}

	var stock int64
	if req.SupplierStock != nil {
		stock = *req.SupplierStock
	}
	product, warning, err := dropship.NewManualSupplierProduct(
		supplier,
		req.SupplierSKU,
		dropship.ToMinorUnits(*req.SupplierPrice),
		stock,
		dropship.MarkupType(req.MarkupType),
		req.MarkupValue,
	)
	if err != nil {
		return nil, err
	}

	log := logger.Enrich(ctx, s.logger)
	if warning != nil {
		log.Warn("Markup clamps selling price", zap.String("supplier_sku", product.SupplierSKU), zap.Error(warning))
	}
	product.Name = strings.TrimSpace(req.Name)
	if req.ProductID != nil && *req.ProductID != "" {
		product.ProductID = req.ProductID
	}

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	if err := s.suppliers.RefreshProductStats(ctx, supplier.ID, nil); err != nil {
		log.Warn("Failed to refresh product stats", zap.String("supplier_id", supplier.ID.String()), zap.Error(err))
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// applySupplierPatch applies every non-nil field of req except the code
func applySupplierPatch(s *dropship.Supplier, req UpdateSupplierRequest) error {
	if req.Name != nil {
		if err := s.Rename(*req.Name); err != nil {
			return err
		}
	}

	if req.Email != nil || req.Phone != nil || req.Website != nil || req.Country != nil {
		s.SetContact(
			valueOr(req.Email, s.Email),
			valueOr(req.Phone, s.Phone),
			valueOr(req.Website, s.Website),
			strings.ToUpper(valueOr(req.Country, s.Country)),
		)
	}

	if req.APIURL != nil || req.APIKey != nil || req.APIFormat != nil {
		format := dropship.APIFormat(valueOr(req.APIFormat, string(s.APIFormat)))
		if err := s.SetIntegration(valueOr(req.APIURL, s.APIURL), valueOr(req.APIKey, s.APIKey), format); err != nil {
			return err
		}
	}

	if req.SyncEnabled != nil || req.SyncFrequency != nil {
		frequency := dropship.SyncFrequency(valueOr(req.SyncFrequency, string(s.SyncFrequency)))
		if err := s.SetSchedule(valueOr(req.SyncEnabled, s.SyncEnabled), frequency); err != nil {
			return err
		}
	}

	if req.CommissionRate != nil || req.MinOrderValue != nil || req.LeadTimeDays != nil || req.Currency != nil {
		minOrder := s.MinOrderValue
		if req.MinOrderValue != nil {
			minOrder = dropship.ToMinorUnits(*req.MinOrderValue)
		}
		if err := s.SetTerms(
			valueOr(req.CommissionRate, s.CommissionRate),
			minOrder,
			valueOr(req.LeadTimeDays, s.LeadTimeDays),
			valueOr(req.Currency, s.Currency),
		); err != nil {
			return err
		}
	}

	if req.IsActive != nil || req.IsDropship != nil || req.ShowInStore != nil {
		s.SetFlags(
			valueOr(req.IsActive, s.IsActive),
			valueOr(req.IsDropship, s.IsDropship),
			valueOr(req.ShowInStore, s.ShowInStore),
		)
	}

	if req.Notes != nil || req.Metadata != nil {
		s.SetNotes(valueOr(req.Notes, s.Notes), req.Metadata)
	}
	return nil
}
