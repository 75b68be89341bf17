package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	dropshipapp "github.com/erp/dropship/internal/application/dropship"
	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/infrastructure/cache"
	"github.com/erp/dropship/internal/infrastructure/persistence"
	"github.com/erp/dropship/internal/infrastructure/supplierfeed"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type services struct {
	registry    *dropshipapp.RegistryService
	sync        *dropshipapp.SyncService
	materialize *dropshipapp.MaterializeService
	orders      *dropshipapp.OrderService
}

func newServices(t *testing.T, tdb *TestDB, feedURL string) services {
	t.Helper()
	log := zaptest.NewLogger(t)
	db := tdb.DB

	suppliers := persistence.NewGormSupplierRepository(db)
	products := persistence.NewGormSupplierProductRepository(db)
	orders := persistence.NewGormSupplierOrderRepository(db)
	locker := cache.NewInMemorySupplierLocker()
	fetcher := supplierfeed.NewClient(
		dropship.NewFeedRoutes(map[string]string{"ACME": feedURL}, "shared-key"), 0)

	return services{
		registry:    dropshipapp.NewRegistryService(suppliers, products, orders, log),
		sync:        dropshipapp.NewSyncService(suppliers, products, fetcher, locker, log),
		materialize: dropshipapp.NewMaterializeService(suppliers, products, persistence.NewGormCatalogStore(db), locker, log),
		orders:      dropshipapp.NewOrderService(suppliers, orders, persistence.NewGormOrderDirectory(db), log),
	}
}

// feedServer serves the current body and checks the shared key
func feedServer(t *testing.T, body *atomic.Value) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "shared-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body.Load().(string)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDropshipFlow(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()

	var feed atomic.Value
	feed.Store(`{"products":[
		{"sku":"A1","name":"Widget","price":10.00,"stock":5},
		{"code":"B2","price":"20.5","quantity":-3}
	]}`)
	svc := newServices(t, tdb, feedServer(t, &feed).URL)

	commission := decimal.NewFromInt(25)
	enabled := true
	supplier, err := svc.registry.Create(ctx, dropshipapp.CreateSupplierRequest{
		Name:           "Acme Supply",
		Code:           "acme",
		SyncEnabled:    &enabled,
		CommissionRate: &commission,
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME", supplier.Code)

	t.Run("duplicate code is rejected case-insensitively", func(t *testing.T) {
		_, err := svc.registry.Create(ctx, dropshipapp.CreateSupplierRequest{Name: "Other", Code: "Acme"})
		assert.ErrorIs(t, err, dropship.ErrDuplicateCode)
	})

	t.Run("first sync creates every row", func(t *testing.T) {
		report, err := svc.sync.Sync(ctx, supplier.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Created)
		assert.Equal(t, 0, report.Updated)
		assert.Equal(t, 0, report.Errors)

		got, err := svc.registry.Get(ctx, supplier.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.ProductsCount)
		assert.NotNil(t, got.LastSyncAt)

		items, total, err := svc.registry.ListProducts(ctx, supplier.ID, dropshipapp.ProductListFilter{Search: "a1"})
		require.NoError(t, err)
		require.Equal(t, int64(1), total)
		assert.True(t, items[0].SellingPrice.Equal(decimal.RequireFromString("12.50")))
		assert.Equal(t, "synced", items[0].SyncStatus)
	})

	t.Run("unchanged feed is idempotent", func(t *testing.T) {
		report, err := svc.sync.Sync(ctx, supplier.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Created)
		assert.Equal(t, 2, report.Updated)
		assert.Zero(t, tdb.Count("supplier_price_changes"))
	})

	t.Run("price change is recorded in history", func(t *testing.T) {
		feed.Store(`{"products":[{"sku":"A1","price":11.00,"stock":5},{"code":"B2","price":"20.5","quantity":0}]}`)
		_, err := svc.sync.Sync(ctx, supplier.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), tdb.Count("supplier_price_changes"))
	})

	t.Run("materialize publishes unlinked rows", func(t *testing.T) {
		report, err := svc.materialize.Materialize(ctx, supplier.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Created)
		assert.Equal(t, 0, report.Errors)
		assert.Zero(t, report.Remaining)

		assert.Equal(t, int64(2), tdb.Count("product"))
		assert.Equal(t, int64(2), tdb.Count("product_variant"))

		var handles []string
		require.NoError(t, tdb.DB.Table("product").Order("handle").Pluck("handle", &handles).Error)
		assert.Equal(t, []string{"acme-a1", "acme-b2"}, handles)

		again, err := svc.materialize.Materialize(ctx, supplier.ID, nil)
		require.NoError(t, err)
		assert.Zero(t, again.Created)
	})

	t.Run("order lifecycle updates revenue", func(t *testing.T) {
		tdb.InsertOrder("order_01", 1001)

		total := decimal.RequireFromString("100.00")
		margin := decimal.RequireFromString("20.00")
		order, err := svc.orders.Create(ctx, supplier.ID, dropshipapp.CreateOrderRequest{
			OrderID:       "order_01",
			SupplierTotal: &total,
			YourMargin:    &margin,
			Items:         []dropshipapp.OrderItemRequest{{SKU: "A1", Quantity: 2}},
		})
		require.NoError(t, err)
		assert.Equal(t, "pending", order.Status)

		_, err = svc.orders.Create(ctx, supplier.ID, dropshipapp.CreateOrderRequest{OrderID: "order_01", SupplierTotal: &total})
		assert.ErrorIs(t, err, dropship.ErrDuplicateOrder)

		_, err = svc.orders.Create(ctx, supplier.ID, dropshipapp.CreateOrderRequest{OrderID: "missing", SupplierTotal: &total})
		assert.ErrorIs(t, err, dropship.ErrUnknownOrder)

		_, err = svc.orders.Advance(ctx, order.ID, dropshipapp.AdvanceOrderRequest{Status: "shipped"})
		assert.ErrorIs(t, err, dropship.ErrInvalidTransition)

		for _, step := range []dropshipapp.AdvanceOrderRequest{
			{Status: "sent"},
			{Status: "confirmed"},
			{Status: "shipped", TrackingNumber: "TRK-1"},
			{Status: "delivered"},
		} {
			order, err = svc.orders.Advance(ctx, order.ID, step)
			require.NoError(t, err, step.Status)
		}
		assert.Equal(t, "TRK-1", order.TrackingNumber)
		assert.NotNil(t, order.DeliveredAt)

		got, err := svc.registry.Get(ctx, supplier.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.OrdersCount)
		assert.True(t, got.TotalRevenue.Equal(decimal.RequireFromString("120")), got.TotalRevenue.String())
	})

	t.Run("supplier with active products cannot be deleted", func(t *testing.T) {
		err := svc.registry.Delete(ctx, supplier.ID)
		assert.ErrorIs(t, err, dropship.ErrHasActiveProducts)
	})

	t.Run("unknown supplier", func(t *testing.T) {
		_, err := svc.sync.Sync(ctx, uuid.New())
		assert.Error(t, err)
	})
}
