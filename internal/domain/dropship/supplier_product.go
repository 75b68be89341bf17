package dropship

import (
	"strings"
	"time"

	"github.com/erp/dropship/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SyncStatus tracks the outcome of the last sync of a supplier product
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusError   SyncStatus = "error"
)

// SupplierProduct is one supplier's offer for one SKU.
// (SupplierID, SupplierSKU) is unique. ProductID is set once by materialization.
type SupplierProduct struct {
	shared.BaseAggregateRoot
	SupplierID       uuid.UUID
	ProductID        *string
	SupplierSKU      string
	Name             string
	SupplierPrice    int64
	SupplierCurrency string
	SupplierStock    int64
	MarkupType       MarkupType
	MarkupValue      decimal.Decimal
	SellingPrice     int64
	IsActive         bool
	SyncStatus       SyncStatus
	SyncError        string
	LastSyncAt       *time.Time
}

// NewSupplierProductFromFeed creates a product discovered by a sync
func NewSupplierProductFromFeed(s *Supplier, row CatalogRow, now time.Time) (*SupplierProduct, *PricingWarning) {
	p := &SupplierProduct{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        s.ID,
		SupplierSKU:       row.SKU,
		Name:              row.Name,
		SupplierPrice:     row.Price,
		SupplierCurrency:  s.Currency,
		SupplierStock:     clampStock(row.Stock),
		MarkupType:        MarkupPercentage,
		MarkupValue:       s.DefaultMarkup(),
		IsActive:          s.ShowInStore,
		SyncStatus:        SyncStatusSynced,
		LastSyncAt:        &now,
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return p, p.Reprice()
}

// NewManualSupplierProduct creates a product added by an administrator.
// It stays pending until the next sync confirms it.
func NewManualSupplierProduct(s *Supplier, sku string, price, stock int64, markupType MarkupType, markupValue *decimal.Decimal) (*SupplierProduct, *PricingWarning, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, nil, shared.NewDomainError("INVALID_SKU", "Supplier SKU cannot be empty")
	}
	if price < 0 {
		return nil, nil, shared.NewDomainError("INVALID_PRICE", "Supplier price cannot be negative")
	}
	if markupType == "" {
		markupType = MarkupPercentage
	}
	if !markupType.IsValid() {
		return nil, nil, shared.NewDomainError("INVALID_MARKUP_TYPE", "Markup type must be percentage or fixed")
	}
	value := s.DefaultMarkup()
	if markupValue != nil {
		value = *markupValue
	}

	p := &SupplierProduct{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        s.ID,
		SupplierSKU:       sku,
		SupplierPrice:     price,
		SupplierCurrency:  s.Currency,
		SupplierStock:     clampStock(stock),
		MarkupType:        markupType,
		MarkupValue:       value,
		IsActive:          s.ShowInStore,
		SyncStatus:        SyncStatusPending,
	}
	return p, p.Reprice(), nil
}

// ApplyFeedRow refreshes price and stock from a feed row and marks the product synced.
// A price change is recorded as a domain event.
func (p *SupplierProduct) ApplyFeedRow(row CatalogRow, now time.Time) *PricingWarning {
	if row.Price != p.SupplierPrice {
		p.AddDomainEvent(NewPriceChangedEvent(p, p.SupplierPrice, row.Price, now))
	}
	p.SupplierPrice = row.Price
	p.SupplierStock = clampStock(row.Stock)
	if row.Name != "" {
		p.Name = row.Name
	}
	p.SyncStatus = SyncStatusSynced
	p.SyncError = ""
	p.LastSyncAt = &now
	p.Touch(now)
	return p.Reprice()
}

// Reprice recomputes the cached selling price
func (p *SupplierProduct) Reprice() *PricingWarning {
	price, warning := SellingPrice(p.SupplierPrice, p.MarkupType, p.MarkupValue)
	p.SellingPrice = price
	return warning
}

// IsLinked reports whether the product has been materialized
func (p *SupplierProduct) IsLinked() bool {
	return p.ProductID != nil && *p.ProductID != ""
}

// LinkProduct records the catalog product created for this offer and activates it
func (p *SupplierProduct) LinkProduct(productID string, sellingPrice int64, now time.Time) error {
	if p.IsLinked() {
		return ErrAlreadyMaterialized
	}
	p.ProductID = &productID
	p.SellingPrice = sellingPrice
	p.IsActive = true
	p.Touch(now)
	return nil
}

// Title is the catalog title used when materializing
func (p *SupplierProduct) Title() string {
	if p.Name != "" {
		return p.Name
	}
	return p.SupplierSKU
}

func clampStock(stock int64) int64 {
	if stock < 0 {
		return 0
	}
	return stock
}
