package persistence

import (
	"context"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierProductRepository implements dropship.SupplierProductRepository using GORM
type GormSupplierProductRepository struct {
	db *gorm.DB
}

// NewGormSupplierProductRepository creates a new GormSupplierProductRepository
func NewGormSupplierProductRepository(db *gorm.DB) *GormSupplierProductRepository {
	return &GormSupplierProductRepository{db: db}
}

// FindByID finds a supplier product by its ID
func (r *GormSupplierProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*dropship.SupplierProduct, error) {
	var model models.SupplierProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySupplierAndSKU finds the offer of one supplier for one SKU
func (r *GormSupplierProductRepository) FindBySupplierAndSKU(ctx context.Context, supplierID uuid.UUID, sku string) (*dropship.SupplierProduct, error) {
	var model models.SupplierProductModel
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND supplier_sku = ?", supplierID, sku).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists a supplier's products matching the filter together with the total count
func (r *GormSupplierProductRepository) FindAll(ctx context.Context, supplierID uuid.UUID, filter dropship.ProductFilter) ([]dropship.SupplierProduct, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.SupplierProductModel{}), supplierID, filter).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "supplier_sku ASC"
	if filter.OrderBy != "" {
		order = orderClause(filter.OrderBy, filter.OrderDir, SupplierProductSortFields, "supplier_sku")
	}

	var rows []models.SupplierProductModel
	query := r.applyFilter(r.db.WithContext(ctx), supplierID, filter)
	if err := paginate(query, filter.Filter).Order(order).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toSupplierProducts(rows), total, nil
}

// FindUnlinked returns products without a catalog product, oldest first
func (r *GormSupplierProductRepository) FindUnlinked(ctx context.Context, supplierID uuid.UUID, ids []uuid.UUID, limit int) ([]dropship.SupplierProduct, error) {
	query := r.db.WithContext(ctx).
		Where("supplier_id = ? AND product_id IS NULL", supplierID)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.SupplierProductModel
	if err := query.Order("created_at ASC, supplier_sku ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSupplierProducts(rows), nil
}

// CountUnlinked counts a supplier's products still waiting for materialization
func (r *GormSupplierProductRepository) CountUnlinked(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SupplierProductModel{}).
		Where("supplier_id = ? AND product_id IS NULL", supplierID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountActive counts a supplier's active products
func (r *GormSupplierProductRepository) CountActive(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SupplierProductModel{}).
		Where("supplier_id = ? AND is_active = ?", supplierID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save writes the product and its recorded price changes in one transaction
func (r *GormSupplierProductRepository) Save(ctx context.Context, product *dropship.SupplierProduct) error {
	model := models.SupplierProductModelFromDomain(product)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		for _, event := range product.GetDomainEvents() {
			changed, ok := event.(*dropship.PriceChangedEvent)
			if !ok {
				continue
			}
			if err := tx.Create(models.PriceChangeModelFromEvent(changed)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if isDuplicateKey(err) {
		return dropship.ErrDuplicateSKU
	}
	if err != nil {
		return err
	}
	product.ClearDomainEvents()
	return nil
}

// MarkSyncError flags the row for (supplierID, sku) as failed; missing rows are ignored
func (r *GormSupplierProductRepository) MarkSyncError(ctx context.Context, supplierID uuid.UUID, sku, message string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.SupplierProductModel{}).
		Where("supplier_id = ? AND supplier_sku = ?", supplierID, sku).
		UpdateColumns(map[string]any{
			"sync_status": string(dropship.SyncStatusError),
			"sync_error":  message,
			"updated_at":  at,
		}).Error
}

// PriceHistory returns the recorded price changes of a supplier product, newest first
func (r *GormSupplierProductRepository) PriceHistory(ctx context.Context, productID uuid.UUID) ([]models.PriceChangeModel, error) {
	var rows []models.PriceChangeModel
	if err := r.db.WithContext(ctx).
		Where("supplier_product_id = ?", productID).
		Order("changed_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormSupplierProductRepository) applyFilter(query *gorm.DB, supplierID uuid.UUID, filter dropship.ProductFilter) *gorm.DB {
	query = query.Where("supplier_id = ?", supplierID)
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(supplier_sku) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}
	if filter.SyncStatus != "" {
		query = query.Where("sync_status = ?", string(filter.SyncStatus))
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Linked != nil {
		if *filter.Linked {
			query = query.Where("product_id IS NOT NULL")
		} else {
			query = query.Where("product_id IS NULL")
		}
	}
	return query
}

func toSupplierProducts(rows []models.SupplierProductModel) []dropship.SupplierProduct {
	products := make([]dropship.SupplierProduct, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}
