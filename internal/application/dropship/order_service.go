package dropship

import (
	"context"
	"errors"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/domain/shared"
	"github.com/erp/dropship/internal/infrastructure/cache"
	"github.com/erp/dropship/internal/infrastructure/logger"
	"github.com/erp/dropship/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService tracks orders placed with suppliers
type OrderService struct {
	suppliers  dropship.SupplierRepository
	orders     dropship.SupplierOrderRepository
	directory  dropship.OrderDirectory
	dispatcher dropship.OrderDispatcher
	locker     dropship.SupplierLocker
	logger     *zap.Logger
	now        func() time.Time
}

// OrderOption configures an OrderService
type OrderOption func(*OrderService)

// WithOrderDispatcher enables sending pending orders to the supplier's store
func WithOrderDispatcher(d dropship.OrderDispatcher) OrderOption {
	return func(s *OrderService) {
		s.dispatcher = d
	}
}

// WithOrderLocker serializes sends per supplier across instances.
// Without it sends are serialized within the process only.
func WithOrderLocker(l dropship.SupplierLocker) OrderOption {
	return func(s *OrderService) {
		s.locker = l
	}
}

// WithOrderClock overrides the clock used for status timestamps
func WithOrderClock(now func() time.Time) OrderOption {
	return func(s *OrderService) {
		s.now = now
	}
}

// NewOrderService creates a new OrderService
func NewOrderService(
	suppliers dropship.SupplierRepository,
	orders dropship.SupplierOrderRepository,
	directory dropship.OrderDirectory,
	log *zap.Logger,
	opts ...OrderOption,
) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	s := &OrderService{
		suppliers: suppliers,
		orders:    orders,
		directory: directory,
		logger:    log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locker == nil {
		s.locker = cache.NewInMemorySupplierLocker()
	}
	return s
}

// Create records a supplier order for an existing external order
func (s *OrderService) Create(ctx context.Context, supplierID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	supplier, err := s.suppliers.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if req.SupplierTotal == nil {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Supplier total is required")
	}

	exists, err := s.orders.ExistsBySupplierAndOrder(ctx, supplier.ID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, dropship.ErrDuplicateOrder
	}

	if _, err := s.findExternalOrder(ctx, req.OrderID); err != nil {
		return nil, err
	}

	var margin int64
	if req.YourMargin != nil {
		margin = dropship.ToMinorUnits(*req.YourMargin)
	}
	items := make([]dropship.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = dropship.OrderItem{SKU: item.SKU, Quantity: item.Quantity, Name: item.Name}
	}

	order, err := dropship.NewSupplierOrder(supplier, req.OrderID, dropship.ToMinorUnits(*req.SupplierTotal), margin, items)
	if err != nil {
		return nil, err
	}
	order.Notes = req.Notes

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	s.refreshStats(ctx, supplier.ID)

	logger.Enrich(ctx, s.logger).Info("Supplier order created",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("order_id", order.OrderID),
		zap.String("supplier_order_id", order.ID.String()),
	)
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Get returns a supplier order by ID
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Advance moves an order forward. Re-applying the current or an earlier status changes nothing.
func (s *OrderService) Advance(ctx context.Context, id uuid.UUID, req AdvanceOrderRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier_order", "advance",
		telemetry.SpanAttrOrderID, id.String(),
		telemetry.SpanAttrOrderStatus, req.Status,
	)
	defer span.End()

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	changed, err := order.Advance(dropship.OrderStatus(req.Status), s.now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	previous := order.TrackingNumber
	order.SetTracking(req.TrackingNumber)

	if changed || order.TrackingNumber != previous {
		if err := s.orders.Save(ctx, order); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	if changed && order.Status == dropship.OrderDelivered {
		s.refreshStats(ctx, order.SupplierID)
	}

	if changed {
		logger.Enrich(ctx, s.logger).Info("Supplier order advanced",
			zap.String("supplier_order_id", order.ID.String()),
			zap.String("status", string(order.Status)),
		)
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// Delete removes an order that has not been sent yet
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := order.CanDelete(); err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, order.ID); err != nil {
		return err
	}
	s.refreshStats(ctx, order.SupplierID)
	return nil
}

// List returns a supplier's orders and the total matching count
func (s *OrderService) List(ctx context.Context, supplierID uuid.UUID, filter OrderListFilter) ([]OrderResponse, int64, error) {
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		return nil, 0, err
	}

	orders, total, err := s.orders.FindAll(ctx, supplierID, dropship.OrderFilter{
		Filter: pageFilter(filter.Page, filter.PageSize),
		Status: dropship.OrderStatus(filter.Status),
	})
	if err != nil {
		return nil, 0, err
	}

	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	return items, total, nil
}

// Send places a pending order with the supplier's store and marks it sent
func (s *OrderService) Send(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier_order", "send", telemetry.SpanAttrOrderID, id.String())
	defer span.End()

	if s.dispatcher == nil {
		return nil, dropship.ErrMissingDispatchConfig
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := order.CanDispatch(); err != nil {
		return nil, err
	}

	// the order is re-read under the lock so only one caller places it remotely
	unlock, err := s.locker.Lock(ctx, order.SupplierID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer unlock()

	order, err = s.orders.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := order.CanDispatch(); err != nil {
		return nil, err
	}
	supplier, err := s.suppliers.FindByID(ctx, order.SupplierID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	external, err := s.findExternalOrder(ctx, order.OrderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	remoteID, err := s.dispatcher.Dispatch(ctx, supplier, order, external)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.Enrich(ctx, s.logger).Warn("Failed to send supplier order",
			zap.String("supplier_order_id", order.ID.String()),
			zap.String("supplier_code", supplier.Code),
			zap.Error(err),
		)
		return nil, err
	}

	if err := order.MarkDispatched(remoteID, s.now()); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("Supplier order sent",
		zap.String("supplier_order_id", order.ID.String()),
		zap.String("remote_order_id", remoteID),
		zap.String("supplier_code", supplier.Code),
	)
	resp := ToOrderResponse(order)
	return &resp, nil
}

func (s *OrderService) findExternalOrder(ctx context.Context, orderID string) (*dropship.ExternalOrder, error) {
	order, err := s.directory.FindOrder(ctx, orderID)
	if errors.Is(err, shared.ErrNotFound) || (err == nil && order == nil) {
		return nil, dropship.ErrUnknownOrder
	}
	return order, err
}

// refreshStats is best-effort; the order change is already committed
func (s *OrderService) refreshStats(ctx context.Context, supplierID uuid.UUID) {
	if err := s.suppliers.RefreshOrderStats(ctx, supplierID); err != nil {
		logger.Enrich(ctx, s.logger).Warn("Failed to refresh order stats",
			zap.String("supplier_id", supplierID.String()),
			zap.Error(err),
		)
	}
}
