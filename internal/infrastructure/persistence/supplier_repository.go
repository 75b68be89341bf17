package persistence

import (
	"context"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/domain/shared"
	"github.com/erp/dropship/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierRepository implements dropship.SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*dropship.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a supplier by its normalized code
func (r *GormSupplierRepository) FindByCode(ctx context.Context, code string) (*dropship.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", dropship.NormalizeCode(code)).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByCode checks if a supplier with the given code exists
func (r *GormSupplierRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SupplierModel{}).
		Where("UPPER(code) = ?", dropship.NormalizeCode(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists suppliers matching the filter together with the total count
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter dropship.SupplierFilter) ([]dropship.Supplier, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.SupplierModel{}), filter).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "name ASC"
	if filter.OrderBy != "" {
		order = orderClause(filter.OrderBy, filter.OrderDir, SupplierSortFields, "name")
	}

	var rows []models.SupplierModel
	query := r.applyFilter(r.db.WithContext(ctx), filter)
	if err := paginate(query, filter.Filter).Order(order).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	suppliers := make([]dropship.Supplier, len(rows))
	for i := range rows {
		suppliers[i] = *rows[i].ToDomain()
	}
	return suppliers, total, nil
}

// FindSyncable returns active suppliers with sync enabled, optionally restricted to one frequency
func (r *GormSupplierRepository) FindSyncable(ctx context.Context, frequency dropship.SyncFrequency) ([]dropship.Supplier, error) {
	query := r.db.WithContext(ctx).
		Where("is_active = ? AND sync_enabled = ?", true, true)
	if frequency != "" {
		query = query.Where("sync_frequency = ?", string(frequency))
	}

	var rows []models.SupplierModel
	if err := query.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	suppliers := make([]dropship.Supplier, len(rows))
	for i := range rows {
		suppliers[i] = *rows[i].ToDomain()
	}
	return suppliers, nil
}

// Save creates or updates a supplier. Counter columns are left untouched on update.
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *dropship.Supplier) error {
	model := models.SupplierModelFromDomain(supplier)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.SupplierModel{}).
			Where("id = ?", model.ID).
			Select(models.SupplierEditableColumns).
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		return tx.Create(model).Error
	})
	if isDuplicateKey(err) {
		return dropship.ErrDuplicateCode
	}
	return err
}

// DeleteCascade removes the supplier with its price history, products and orders
func (r *GormSupplierRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("supplier_id = ?", id).Delete(&models.PriceChangeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("supplier_id = ?", id).Delete(&models.SupplierProductModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("supplier_id = ?", id).Delete(&models.SupplierOrderModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.SupplierModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// RefreshProductStats recomputes products_count from all supplier products and stamps last_sync_at
func (r *GormSupplierRepository) RefreshProductStats(ctx context.Context, id uuid.UUID, syncedAt *time.Time) error {
	updates := map[string]any{
		"products_count": gorm.Expr("(SELECT COUNT(*) FROM supplier_products WHERE supplier_id = ?)", id),
	}
	if syncedAt != nil {
		updates["last_sync_at"] = *syncedAt
	}
	return r.refresh(ctx, id, updates)
}

// RefreshOrderStats recomputes orders_count and the revenue of delivered orders
func (r *GormSupplierRepository) RefreshOrderStats(ctx context.Context, id uuid.UUID) error {
	return r.refresh(ctx, id, map[string]any{
		"orders_count": gorm.Expr("(SELECT COUNT(*) FROM supplier_orders WHERE supplier_id = ?)", id),
		"total_revenue": gorm.Expr(
			"(SELECT COALESCE(SUM(supplier_total + your_margin), 0) FROM supplier_orders WHERE supplier_id = ? AND status = ?)",
			id, string(dropship.OrderDelivered)),
	})
}

func (r *GormSupplierRepository) refresh(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.SupplierModel{}).
		Where("id = ?", id).
		UpdateColumns(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options without pagination or ordering
func (r *GormSupplierRepository) applyFilter(query *gorm.DB, filter dropship.SupplierFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsDropship != nil {
		query = query.Where("is_dropship = ?", *filter.IsDropship)
	}
	return query
}
