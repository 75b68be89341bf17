package dropship

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/domain/shared"
	"github.com/erp/dropship/internal/infrastructure/persistence"
	"github.com/erp/dropship/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var orderClock = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newOrderService(t *testing.T, env *testEnv, opts ...OrderOption) *OrderService {
	t.Helper()
	opts = append([]OrderOption{WithOrderClock(func() time.Time { return orderClock })}, opts...)
	return NewOrderService(env.suppliers, env.orders, persistence.NewGormOrderDirectory(env.db), zaptest.NewLogger(t), opts...)
}

// seedOrder inserts a platform order the tracker can reference
func seedOrder(t *testing.T, env *testEnv, id string) {
	t.Helper()
	addressID := "oaddr_" + id
	require.NoError(t, env.db.Create(&models.CommerceOrderAddressModel{
		ID: addressID, FirstName: "Jan", LastName: "Kowalski", Address1: "ul. Prosta 1",
		City: "Warszawa", PostalCode: "00-001", CountryCode: "pl",
	}).Error)
	require.NoError(t, env.db.Create(&models.CommerceOrderModel{
		ID: id, DisplayID: 1001, ShippingAddressID: &addressID, CreatedAt: time.Now(),
	}).Error)
}

func money(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func orderRequest(orderID string) CreateOrderRequest {
	return CreateOrderRequest{
		OrderID:       orderID,
		SupplierTotal: money("80.00"),
		YourMargin:    money("20.50"),
		Items:         []OrderItemRequest{{SKU: "A-1", Quantity: 2, Name: "Widget"}},
	}
}

// slowDispatcher counts remote placements and takes a while to answer
type slowDispatcher struct {
	delay time.Duration
	calls atomic.Int32
}

func (d *slowDispatcher) Dispatch(ctx context.Context, _ *dropship.Supplier, _ *dropship.SupplierOrder, _ *dropship.ExternalOrder) (string, error) {
	n := d.calls.Add(1)
	time.Sleep(d.delay)
	return fmt.Sprintf("wc-%d", n), nil
}

// ============================================================================
// Create
// ============================================================================

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	supplier := env.createSupplier(t, "ACME")
	seedOrder(t, env, "order_1")
	svc := newOrderService(t, env)

	t.Run("records a pending order", func(t *testing.T) {
		resp, err := svc.Create(ctx, supplier.ID, orderRequest("order_1"))
		require.NoError(t, err)

		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "order_1", resp.OrderID)
		assert.Equal(t, "PLN", resp.Currency)
		assert.True(t, decimal.RequireFromString("80").Equal(resp.SupplierTotal))
		assert.True(t, decimal.RequireFromString("20.5").Equal(resp.YourMargin))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, 2, resp.Items[0].Quantity)

		reloaded := env.reload(t, supplier.ID)
		assert.Equal(t, int64(1), reloaded.OrdersCount)
		assert.Equal(t, int64(0), reloaded.TotalRevenue, "revenue counts delivered orders only")
	})

	t.Run("one supplier order per order", func(t *testing.T) {
		_, err := svc.Create(ctx, supplier.ID, orderRequest("order_1"))
		assert.ErrorIs(t, err, dropship.ErrDuplicateOrder)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := svc.Create(ctx, supplier.ID, orderRequest("order_missing"))
		assert.ErrorIs(t, err, dropship.ErrUnknownOrder)
	})

	t.Run("deleted order", func(t *testing.T) {
		deletedAt := time.Now()
		require.NoError(t, env.db.Create(&models.CommerceOrderModel{ID: "order_deleted", DeletedAt: &deletedAt}).Error)
		_, err := svc.Create(ctx, supplier.ID, orderRequest("order_deleted"))
		assert.ErrorIs(t, err, dropship.ErrUnknownOrder)
	})

	t.Run("unknown supplier", func(t *testing.T) {
		_, err := svc.Create(ctx, uuid.New(), orderRequest("order_1"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("missing total", func(t *testing.T) {
		req := orderRequest("order_1")
		req.SupplierTotal = nil
		_, err := svc.Create(ctx, supplier.ID, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
	})
}

// ============================================================================
// Advance
// ============================================================================

func TestOrderService_Advance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	supplier := env.createSupplier(t, "ACME")
	seedOrder(t, env, "order_1")
	svc := newOrderService(t, env)

	created, err := svc.Create(ctx, supplier.ID, orderRequest("order_1"))
	require.NoError(t, err)

	t.Run("skipping a state is rejected", func(t *testing.T) {
		_, err := svc.Advance(ctx, created.ID, AdvanceOrderRequest{Status: "shipped"})
		assert.ErrorIs(t, err, dropship.ErrInvalidTransition)

		current, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "pending", current.Status)
	})

	t.Run("moves forward one step at a time", func(t *testing.T) {
		for _, status := range []string{"sent", "confirmed", "shipped"} {
			resp, err := svc.Advance(ctx, created.ID, AdvanceOrderRequest{Status: status})
			require.NoError(t, err)
			assert.Equal(t, status, resp.Status)
		}

		current, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, current.SentAt)
		require.NotNil(t, current.ShippedAt)
		assert.True(t, orderClock.Equal(*current.ShippedAt))
		assert.Nil(t, current.DeliveredAt)
	})

	t.Run("earlier status is a no-op that still records tracking", func(t *testing.T) {
		resp, err := svc.Advance(ctx, created.ID, AdvanceOrderRequest{Status: "sent", TrackingNumber: " TRK-42 "})
		require.NoError(t, err)
		assert.Equal(t, "shipped", resp.Status)
		assert.Equal(t, "TRK-42", resp.TrackingNumber)

		current, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "TRK-42", current.TrackingNumber)
	})

	t.Run("delivery updates revenue", func(t *testing.T) {
		resp, err := svc.Advance(ctx, created.ID, AdvanceOrderRequest{Status: "delivered"})
		require.NoError(t, err)
		assert.Equal(t, "delivered", resp.Status)
		assert.Equal(t, int64(10050), env.reload(t, supplier.ID).TotalRevenue)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := svc.Advance(ctx, created.ID, AdvanceOrderRequest{Status: "lost"})
		assert.ErrorIs(t, err, dropship.ErrInvalidTransition)
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := svc.Advance(ctx, uuid.New(), AdvanceOrderRequest{Status: "sent"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

// ============================================================================
// Delete / List
// ============================================================================

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	supplier := env.createSupplier(t, "ACME")
	seedOrder(t, env, "order_1")
	seedOrder(t, env, "order_2")
	svc := newOrderService(t, env)

	pending, err := svc.Create(ctx, supplier.ID, orderRequest("order_1"))
	require.NoError(t, err)
	sent, err := svc.Create(ctx, supplier.ID, orderRequest("order_2"))
	require.NoError(t, err)
	_, err = svc.Advance(ctx, sent.ID, AdvanceOrderRequest{Status: "sent"})
	require.NoError(t, err)

	t.Run("sent orders are kept", func(t *testing.T) {
		err := svc.Delete(ctx, sent.ID)
		assert.ErrorIs(t, err, dropship.ErrInvalidTransition)
	})

	t.Run("pending orders are removed", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, pending.ID))
		_, err := svc.Get(ctx, pending.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, int64(1), env.reload(t, supplier.ID).OrdersCount)
	})
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	supplier := env.createSupplier(t, "ACME")
	svc := newOrderService(t, env)
	for _, id := range []string{"order_1", "order_2", "order_3"} {
		seedOrder(t, env, id)
		_, err := svc.Create(ctx, supplier.ID, orderRequest(id))
		require.NoError(t, err)
	}
	items, _, err := svc.List(ctx, supplier.ID, OrderListFilter{})
	require.NoError(t, err)
	_, err = svc.Advance(ctx, items[0].ID, AdvanceOrderRequest{Status: "sent"})
	require.NoError(t, err)

	t.Run("all", func(t *testing.T) {
		items, total, err := svc.List(ctx, supplier.ID, OrderListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, items, 3)
	})

	t.Run("by status", func(t *testing.T) {
		items, total, err := svc.List(ctx, supplier.ID, OrderListFilter{Status: "pending"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 2)
	})

	t.Run("paged", func(t *testing.T) {
		items, total, err := svc.List(ctx, supplier.ID, OrderListFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, items, 1)
	})

	t.Run("unknown supplier", func(t *testing.T) {
		_, _, err := svc.List(ctx, uuid.New(), OrderListFilter{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

// ============================================================================
// Send
// ============================================================================

func TestOrderService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("without a dispatcher", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := newOrderService(t, env).Send(ctx, uuid.New())
		assert.ErrorIs(t, err, dropship.ErrMissingDispatchConfig)
	})

	t.Run("places the order once", func(t *testing.T) {
		env := newTestEnv(t)
		supplier := env.createSupplier(t, "ACME")
		seedOrder(t, env, "order_1")
		dispatcher := new(MockOrderDispatcher)
		svc := newOrderService(t, env, WithOrderDispatcher(dispatcher))

		created, err := svc.Create(ctx, supplier.ID, orderRequest("order_1"))
		require.NoError(t, err)

		dispatcher.On("Dispatch", mock.Anything,
			mock.MatchedBy(func(s *dropship.Supplier) bool { return s.ID == supplier.ID }),
			mock.MatchedBy(func(o *dropship.SupplierOrder) bool { return o.ID == created.ID }),
			mock.MatchedBy(func(o *dropship.ExternalOrder) bool {
				return o.ID == "order_1" && o.Shipping != nil && o.Shipping.City == "Warszawa"
			}),
		).Return("wc-9001", nil).Once()

		resp, err := svc.Send(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "sent", resp.Status)
		assert.Equal(t, "wc-9001", resp.SupplierOrderID)
		require.NotNil(t, resp.SentAt)
		assert.True(t, orderClock.Equal(*resp.SentAt))

		_, err = svc.Send(ctx, created.ID)
		assert.ErrorIs(t, err, dropship.ErrOrderNotDispatchable)
		dispatcher.AssertExpectations(t)
	})

	t.Run("remote failure leaves the order pending", func(t *testing.T) {
		env := newTestEnv(t)
		supplier := env.createSupplier(t, "ACME")
		seedOrder(t, env, "order_1")
		dispatcher := new(MockOrderDispatcher)
		svc := newOrderService(t, env, WithOrderDispatcher(dispatcher))

		created, err := svc.Create(ctx, supplier.ID, orderRequest("order_1"))
		require.NoError(t, err)
		dispatcher.On("Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("HTTP 401"))

		_, err = svc.Send(ctx, created.ID)
		require.Error(t, err)

		current, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "pending", current.Status)
		assert.Empty(t, current.SupplierOrderID)
	})

	t.Run("concurrent sends place the order once", func(t *testing.T) {
		env := newTestEnv(t)
		supplier := env.createSupplier(t, "ACME")
		seedOrder(t, env, "order_1")
		dispatcher := &slowDispatcher{delay: 50 * time.Millisecond}
		svc := newOrderService(t, env, WithOrderDispatcher(dispatcher), WithOrderLocker(env.locker))

		created, err := svc.Create(ctx, supplier.ID, orderRequest("order_1"))
		require.NoError(t, err)

		const callers = 4
		errs := make([]error, callers)
		var wg sync.WaitGroup
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = svc.Send(ctx, created.ID)
			}()
		}
		wg.Wait()

		sent := 0
		for _, err := range errs {
			if err == nil {
				sent++
				continue
			}
			assert.ErrorIs(t, err, dropship.ErrOrderNotDispatchable)
		}
		assert.Equal(t, 1, sent)
		assert.Equal(t, int32(1), dispatcher.calls.Load())

		current, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "sent", current.Status)
		assert.Equal(t, "wc-1", current.SupplierOrderID)
	})

	t.Run("orders without items cannot be sent", func(t *testing.T) {
		env := newTestEnv(t)
		supplier := env.createSupplier(t, "ACME")
		seedOrder(t, env, "order_1")
		dispatcher := new(MockOrderDispatcher)
		svc := newOrderService(t, env, WithOrderDispatcher(dispatcher))

		req := orderRequest("order_1")
		req.Items = nil
		created, err := svc.Create(ctx, supplier.ID, req)
		require.NoError(t, err)

		_, err = svc.Send(ctx, created.ID)
		assert.ErrorIs(t, err, dropship.ErrOrderNotDispatchable)
		dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
