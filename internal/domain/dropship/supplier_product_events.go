package dropship

import (
	"time"

	"github.com/erp/dropship/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeSupplierProduct is the aggregate type of supplier product events
const AggregateTypeSupplierProduct = "SupplierProduct"

// EventTypeSupplierPriceChanged is emitted when a sync observes a new supplier price
const EventTypeSupplierPriceChanged = "SupplierPriceChanged"

// PriceChangedEvent records a supplier price change observed during sync
type PriceChangedEvent struct {
	shared.BaseDomainEvent
	SupplierID uuid.UUID
	SKU        string
	OldPrice   int64
	NewPrice   int64
}

// NewPriceChangedEvent creates a new PriceChangedEvent
func NewPriceChangedEvent(p *SupplierProduct, oldPrice, newPrice int64, at time.Time) *PriceChangedEvent {
	return &PriceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierPriceChanged, AggregateTypeSupplierProduct, p.ID, at),
		SupplierID:      p.SupplierID,
		SKU:             p.SupplierSKU,
		OldPrice:        oldPrice,
		NewPrice:        newPrice,
	}
}
