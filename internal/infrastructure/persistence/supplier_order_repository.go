package persistence

import (
	"context"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/domain/shared"
	"github.com/erp/dropship/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSupplierOrderRepository implements dropship.SupplierOrderRepository using GORM
type GormSupplierOrderRepository struct {
	db *gorm.DB
}

// NewGormSupplierOrderRepository creates a new GormSupplierOrderRepository
func NewGormSupplierOrderRepository(db *gorm.DB) *GormSupplierOrderRepository {
	return &GormSupplierOrderRepository{db: db}
}

// FindByID finds a supplier order by its ID
func (r *GormSupplierOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*dropship.SupplierOrder, error) {
	var model models.SupplierOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsBySupplierAndOrder checks whether the supplier already has an order for orderID
func (r *GormSupplierOrderRepository) ExistsBySupplierAndOrder(ctx context.Context, supplierID uuid.UUID, orderID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SupplierOrderModel{}).
		Where("supplier_id = ? AND order_id = ?", supplierID, orderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists a supplier's orders, newest first unless another order is requested
func (r *GormSupplierOrderRepository) FindAll(ctx context.Context, supplierID uuid.UUID, filter dropship.OrderFilter) ([]dropship.SupplierOrder, int64, error) {
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.SupplierOrderModel{}), supplierID, filter).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SupplierOrderModel
	query := r.applyFilter(r.db.WithContext(ctx), supplierID, filter)
	order := orderClause(filter.OrderBy, filter.OrderDir, SupplierOrderSortFields, "created_at")
	if err := paginate(query, filter.Filter).Order(order).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]dropship.SupplierOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

// CountOpen counts orders that have not shipped yet
func (r *GormSupplierOrderRepository) CountOpen(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	statuses := make([]string, len(dropship.OpenOrderStatuses))
	for i, s := range dropship.OpenOrderStatuses {
		statuses[i] = string(s)
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SupplierOrderModel{}).
		Where("supplier_id = ? AND status IN ?", supplierID, statuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a supplier order
func (r *GormSupplierOrderRepository) Save(ctx context.Context, order *dropship.SupplierOrder) error {
	err := r.db.WithContext(ctx).Save(models.SupplierOrderModelFromDomain(order)).Error
	if isDuplicateKey(err) {
		return dropship.ErrDuplicateOrder
	}
	return err
}

// Delete deletes a supplier order
func (r *GormSupplierOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.SupplierOrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormSupplierOrderRepository) applyFilter(query *gorm.DB, supplierID uuid.UUID, filter dropship.OrderFilter) *gorm.DB {
	query = query.Where("supplier_id = ?", supplierID)
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(order_id) LIKE ? OR LOWER(tracking_number) LIKE ?", pattern, pattern)
	}
	return query
}
