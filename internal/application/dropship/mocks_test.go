package dropship

import (
	"context"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSupplierRepository is a mock implementation of SupplierRepository
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*dropship.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropship.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByCode(ctx context.Context, code string) (*dropship.Supplier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropship.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter dropship.SupplierFilter) ([]dropship.Supplier, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]dropship.Supplier), args.Get(1).(int64), args.Error(2)
}

func (m *MockSupplierRepository) FindSyncable(ctx context.Context, frequency dropship.SyncFrequency) ([]dropship.Supplier, error) {
	args := m.Called(ctx, frequency)
	return args.Get(0).([]dropship.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *dropship.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

func (m *MockSupplierRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSupplierRepository) RefreshProductStats(ctx context.Context, id uuid.UUID, syncedAt *time.Time) error {
	args := m.Called(ctx, id, syncedAt)
	return args.Error(0)
}

func (m *MockSupplierRepository) RefreshOrderStats(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSupplierProductRepository is a mock implementation of SupplierProductRepository
type MockSupplierProductRepository struct {
	mock.Mock
}

func (m *MockSupplierProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*dropship.SupplierProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropship.SupplierProduct), args.Error(1)
}

func (m *MockSupplierProductRepository) FindBySupplierAndSKU(ctx context.Context, supplierID uuid.UUID, sku string) (*dropship.SupplierProduct, error) {
	args := m.Called(ctx, supplierID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropship.SupplierProduct), args.Error(1)
}

func (m *MockSupplierProductRepository) FindAll(ctx context.Context, supplierID uuid.UUID, filter dropship.ProductFilter) ([]dropship.SupplierProduct, int64, error) {
	args := m.Called(ctx, supplierID, filter)
	return args.Get(0).([]dropship.SupplierProduct), args.Get(1).(int64), args.Error(2)
}

func (m *MockSupplierProductRepository) FindUnlinked(ctx context.Context, supplierID uuid.UUID, ids []uuid.UUID, limit int) ([]dropship.SupplierProduct, error) {
	args := m.Called(ctx, supplierID, ids, limit)
	return args.Get(0).([]dropship.SupplierProduct), args.Error(1)
}

func (m *MockSupplierProductRepository) CountUnlinked(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	args := m.Called(ctx, supplierID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierProductRepository) CountActive(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	args := m.Called(ctx, supplierID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierProductRepository) Save(ctx context.Context, product *dropship.SupplierProduct) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockSupplierProductRepository) MarkSyncError(ctx context.Context, supplierID uuid.UUID, sku, message string, at time.Time) error {
	args := m.Called(ctx, supplierID, sku, message, at)
	return args.Error(0)
}

// MockSupplierOrderRepository is a mock implementation of SupplierOrderRepository
type MockSupplierOrderRepository struct {
	mock.Mock
}

func (m *MockSupplierOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*dropship.SupplierOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropship.SupplierOrder), args.Error(1)
}

func (m *MockSupplierOrderRepository) ExistsBySupplierAndOrder(ctx context.Context, supplierID uuid.UUID, orderID string) (bool, error) {
	args := m.Called(ctx, supplierID, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierOrderRepository) FindAll(ctx context.Context, supplierID uuid.UUID, filter dropship.OrderFilter) ([]dropship.SupplierOrder, int64, error) {
	args := m.Called(ctx, supplierID, filter)
	return args.Get(0).([]dropship.SupplierOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockSupplierOrderRepository) CountOpen(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	args := m.Called(ctx, supplierID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSupplierOrderRepository) Save(ctx context.Context, order *dropship.SupplierOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockSupplierOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStockLocationProvisioner is a mock implementation of StockLocationProvisioner
type MockStockLocationProvisioner struct {
	mock.Mock
}

func (m *MockStockLocationProvisioner) ProvisionStockLocation(ctx context.Context, s *dropship.Supplier) (string, error) {
	args := m.Called(ctx, s)
	return args.String(0), args.Error(1)
}

// MockOrderDispatcher is a mock implementation of OrderDispatcher
type MockOrderDispatcher struct {
	mock.Mock
}

func (m *MockOrderDispatcher) Dispatch(ctx context.Context, s *dropship.Supplier, o *dropship.SupplierOrder, order *dropship.ExternalOrder) (string, error) {
	args := m.Called(ctx, s, o, order)
	return args.String(0), args.Error(1)
}
