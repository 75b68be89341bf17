package dropship

import (
	"strings"
	"time"

	"github.com/erp/dropship/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of a supplier order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderSent      OrderStatus = "sent"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

var orderRank = map[OrderStatus]int{
	OrderPending:   0,
	OrderSent:      1,
	OrderConfirmed: 2,
	OrderShipped:   3,
	OrderDelivered: 4,
}

// OpenOrderStatuses block supplier deletion
var OpenOrderStatuses = []OrderStatus{OrderPending, OrderSent, OrderConfirmed}

// IsValid checks if the status is known
func (s OrderStatus) IsValid() bool {
	_, ok := orderRank[s]
	return ok
}

// OrderItem is one line sourced from the supplier
type OrderItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name,omitempty"`
}

// SupplierOrder records what was ordered from a supplier for an external order.
// (SupplierID, OrderID) is unique. Status only moves forward.
type SupplierOrder struct {
	shared.BaseAggregateRoot
	SupplierID      uuid.UUID
	OrderID         string
	SupplierOrderID string
	Status          OrderStatus
	SupplierTotal   int64
	YourMargin      int64
	Currency        string
	TrackingNumber  string
	Items           []OrderItem
	Notes           string
	SentAt          *time.Time
	ConfirmedAt     *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
}

// NewSupplierOrder creates a pending supplier order
func NewSupplierOrder(s *Supplier, orderID string, supplierTotal, margin int64, items []OrderItem) (*SupplierOrder, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_ID", "Order ID cannot be empty")
	}
	if supplierTotal < 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Supplier total cannot be negative")
	}
	for _, item := range items {
		if item.SKU == "" || item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_ITEM", "Order items need a SKU and a positive quantity")
		}
	}
	return &SupplierOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        s.ID,
		OrderID:           orderID,
		Status:            OrderPending,
		SupplierTotal:     supplierTotal,
		YourMargin:        margin,
		Currency:          s.Currency,
		Items:             items,
	}, nil
}

// Advance moves the order forward to status and stamps the matching timestamp.
// Re-applying the current or an earlier status is a no-op and returns false.
// Skipping a state returns ErrInvalidTransition.
func (o *SupplierOrder) Advance(to OrderStatus, at time.Time) (bool, error) {
	target, ok := orderRank[to]
	if !ok {
		return false, invalidTransition(o.Status, to)
	}
	current := orderRank[o.Status]
	if target <= current {
		return false, nil
	}
	if target != current+1 {
		return false, invalidTransition(o.Status, to)
	}

	stamp := at
	switch to {
	case OrderSent:
		o.SentAt = &stamp
	case OrderConfirmed:
		o.ConfirmedAt = &stamp
	case OrderShipped:
		o.ShippedAt = &stamp
	case OrderDelivered:
		o.DeliveredAt = &stamp
	}
	o.Status = to
	o.Touch(at)
	return true, nil
}

// SetTracking records the carrier tracking number
func (o *SupplierOrder) SetTracking(number string) {
	number = strings.TrimSpace(number)
	if number == "" {
		return
	}
	o.TrackingNumber = number
	o.Touch(time.Now())
}

// CanDelete allows deletion only while the order has not left pending
func (o *SupplierOrder) CanDelete() error {
	if o.Status != OrderPending {
		return invalidTransition(o.Status, "deleted")
	}
	return nil
}

// CanDispatch reports whether the order can be placed with the supplier
func (o *SupplierOrder) CanDispatch() error {
	if o.Status != OrderPending || o.SupplierOrderID != "" {
		return ErrOrderNotDispatchable
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("ORDER_NOT_DISPATCHABLE", "Supplier order has no items to send")
	}
	return nil
}

// MarkDispatched stores the supplier-side order id and advances to sent
func (o *SupplierOrder) MarkDispatched(remoteID string, at time.Time) error {
	if err := o.CanDispatch(); err != nil {
		return err
	}
	o.SupplierOrderID = remoteID
	_, err := o.Advance(OrderSent, at)
	return err
}

// Revenue is the customer-facing amount routed through the supplier
func (o *SupplierOrder) Revenue() int64 {
	return o.SupplierTotal + o.YourMargin
}
