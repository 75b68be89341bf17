package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dropshipapp "github.com/erp/dropship/internal/application/dropship"
	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/infrastructure/scheduler"
	"github.com/erp/dropship/internal/interfaces/http/dto"
	"github.com/erp/dropship/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// =============================================================================
// Mocks
// =============================================================================

type MockSupplierRegistry struct {
	mock.Mock
}

func (m *MockSupplierRegistry) Create(ctx context.Context, req dropshipapp.CreateSupplierRequest) (*dropshipapp.SupplierResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropshipapp.SupplierResponse), args.Error(1)
}

func (m *MockSupplierRegistry) Get(ctx context.Context, id uuid.UUID) (*dropshipapp.SupplierResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropshipapp.SupplierResponse), args.Error(1)
}

func (m *MockSupplierRegistry) Update(ctx context.Context, id uuid.UUID, req dropshipapp.UpdateSupplierRequest) (*dropshipapp.SupplierResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropshipapp.SupplierResponse), args.Error(1)
}

func (m *MockSupplierRegistry) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSupplierRegistry) List(ctx context.Context, filter dropshipapp.SupplierListFilter) ([]dropshipapp.SupplierResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dropshipapp.SupplierResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockSupplierRegistry) ListProducts(ctx context.Context, supplierID uuid.UUID, filter dropshipapp.ProductListFilter) ([]dropshipapp.ProductResponse, int64, error) {
	args := m.Called(ctx, supplierID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dropshipapp.ProductResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockSupplierRegistry) AddProduct(ctx context.Context, supplierID uuid.UUID, req dropshipapp.AddProductRequest) (*dropshipapp.ProductResponse, error) {
	args := m.Called(ctx, supplierID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropshipapp.ProductResponse), args.Error(1)
}

type MockCatalogSyncer struct {
	mock.Mock
}

func (m *MockCatalogSyncer) Sync(ctx context.Context, supplierID uuid.UUID) (*dropship.SyncReport, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropship.SyncReport), args.Error(1)
}

type MockCatalogMaterializer struct {
	mock.Mock
}

func (m *MockCatalogMaterializer) Materialize(ctx context.Context, supplierID uuid.UUID, ids []uuid.UUID) (*dropship.MaterializeReport, error) {
	args := m.Called(ctx, supplierID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropship.MaterializeReport), args.Error(1)
}

type MockSupplierOrders struct {
	mock.Mock
}

func (m *MockSupplierOrders) Create(ctx context.Context, supplierID uuid.UUID, req dropshipapp.CreateOrderRequest) (*dropshipapp.OrderResponse, error) {
	args := m.Called(ctx, supplierID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropshipapp.OrderResponse), args.Error(1)
}

func (m *MockSupplierOrders) Get(ctx context.Context, id uuid.UUID) (*dropshipapp.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropshipapp.OrderResponse), args.Error(1)
}

func (m *MockSupplierOrders) Advance(ctx context.Context, id uuid.UUID, req dropshipapp.AdvanceOrderRequest) (*dropshipapp.OrderResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropshipapp.OrderResponse), args.Error(1)
}

func (m *MockSupplierOrders) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSupplierOrders) List(ctx context.Context, supplierID uuid.UUID, filter dropshipapp.OrderListFilter) ([]dropshipapp.OrderResponse, int64, error) {
	args := m.Called(ctx, supplierID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]dropshipapp.OrderResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockSupplierOrders) Send(ctx context.Context, id uuid.UUID) (*dropshipapp.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dropshipapp.OrderResponse), args.Error(1)
}

type MockSyncJobQueue struct {
	mock.Mock
}

func (m *MockSyncJobQueue) ScheduleDue(frequency dropship.SyncFrequency, trigger scheduler.JobTrigger) (scheduler.CatalogSyncJob, error) {
	args := m.Called(frequency, trigger)
	return args.Get(0).(scheduler.CatalogSyncJob), args.Error(1)
}

func (m *MockSyncJobQueue) ScheduleSupplier(supplierID uuid.UUID, trigger scheduler.JobTrigger) (scheduler.CatalogSyncJob, error) {
	args := m.Called(supplierID, trigger)
	return args.Get(0).(scheduler.CatalogSyncJob), args.Error(1)
}

func (m *MockSyncJobQueue) GetJobHistory(limit int) []scheduler.CatalogSyncJob {
	args := m.Called(limit)
	return args.Get(0).([]scheduler.CatalogSyncJob)
}

// =============================================================================
// Request helpers
// =============================================================================

func newTestRouter() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success, w.Body.String())
	return resp.Data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error, w.Body.String())
	return resp.Error.Code
}

var _ http.Handler = (*gin.Engine)(nil)
