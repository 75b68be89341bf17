package dropship

import (
	"context"
	"time"

	"github.com/erp/dropship/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplierFilter narrows supplier listings
type SupplierFilter struct {
	shared.Filter
	IsActive   *bool
	IsDropship *bool
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByID finds a supplier by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindByCode finds a supplier by its normalized code
	FindByCode(ctx context.Context, code string) (*Supplier, error)

	// ExistsByCode checks code uniqueness, case-insensitively
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// FindAll lists suppliers and the total matching count
	FindAll(ctx context.Context, filter SupplierFilter) ([]Supplier, int64, error)

	// FindSyncable returns active suppliers with sync enabled; an empty frequency matches all
	FindSyncable(ctx context.Context, frequency SyncFrequency) ([]Supplier, error)

	// Save creates or updates a supplier. Counters are never written by Save.
	Save(ctx context.Context, supplier *Supplier) error

	// DeleteCascade removes the supplier with its products, price history and orders in one transaction
	DeleteCascade(ctx context.Context, id uuid.UUID) error

	// RefreshProductStats recomputes products_count and, when syncedAt is set, last_sync_at
	RefreshProductStats(ctx context.Context, id uuid.UUID, syncedAt *time.Time) error

	// RefreshOrderStats recomputes orders_count and total_revenue
	RefreshOrderStats(ctx context.Context, id uuid.UUID) error
}

// ProductFilter narrows supplier product listings
type ProductFilter struct {
	shared.Filter
	SyncStatus SyncStatus
	IsActive   *bool
	Linked     *bool
}

// SupplierProductRepository defines the interface for supplier product persistence
type SupplierProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierProduct, error)

	// FindBySupplierAndSKU returns shared.ErrNotFound when the supplier does not offer sku
	FindBySupplierAndSKU(ctx context.Context, supplierID uuid.UUID, sku string) (*SupplierProduct, error)

	FindAll(ctx context.Context, supplierID uuid.UUID, filter ProductFilter) ([]SupplierProduct, int64, error)

	// FindUnlinked returns products without a catalog product, oldest first.
	// When ids is non-empty only those ids are considered.
	FindUnlinked(ctx context.Context, supplierID uuid.UUID, ids []uuid.UUID, limit int) ([]SupplierProduct, error)

	CountUnlinked(ctx context.Context, supplierID uuid.UUID) (int64, error)

	CountActive(ctx context.Context, supplierID uuid.UUID) (int64, error)

	// Save writes the product and its pending price history in one transaction
	Save(ctx context.Context, product *SupplierProduct) error

	// MarkSyncError flags the row for (supplierID, sku) as failed, if it exists
	MarkSyncError(ctx context.Context, supplierID uuid.UUID, sku, message string, at time.Time) error
}

// OrderFilter narrows supplier order listings
type OrderFilter struct {
	shared.Filter
	Status OrderStatus
}

// SupplierOrderRepository defines the interface for supplier order persistence
type SupplierOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierOrder, error)

	ExistsBySupplierAndOrder(ctx context.Context, supplierID uuid.UUID, orderID string) (bool, error)

	FindAll(ctx context.Context, supplierID uuid.UUID, filter OrderFilter) ([]SupplierOrder, int64, error)

	// CountOpen counts orders in pending, sent or confirmed
	CountOpen(ctx context.Context, supplierID uuid.UUID) (int64, error)

	Save(ctx context.Context, order *SupplierOrder) error

	Delete(ctx context.Context, id uuid.UUID) error
}
