package models

import (
	"encoding/json"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierModel is the persistence model for the Supplier aggregate.
// Counter columns are only written by aggregate recomputation queries.
type SupplierModel struct {
	BaseModel
	Name            string          `gorm:"type:varchar(200);not null"`
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_suppliers_code"`
	Email           string          `gorm:"type:varchar(200)"`
	Phone           string          `gorm:"type:varchar(50)"`
	Website         string          `gorm:"type:varchar(500)"`
	Country         string          `gorm:"type:varchar(2);not null"`
	APIURL          string          `gorm:"column:api_url;type:text"`
	APIKey          string          `gorm:"column:api_key;type:text"`
	APIFormat       string          `gorm:"column:api_format;type:varchar(20);not null"`
	SyncEnabled     bool            `gorm:"column:sync_enabled;not null"`
	SyncFrequency   string          `gorm:"column:sync_frequency;type:varchar(20);not null"`
	LastSyncAt      *time.Time      `gorm:"column:last_sync_at"`
	CommissionRate  decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	MinOrderValue   int64           `gorm:"not null"`
	LeadTimeDays    int             `gorm:"not null"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	IsActive        bool            `gorm:"not null;index"`
	IsDropship      bool            `gorm:"not null"`
	ShowInStore     bool            `gorm:"not null"`
	StockLocationID string          `gorm:"column:stock_location_id;type:varchar(100)"`
	ProductsCount   int64           `gorm:"not null;default:0"`
	OrdersCount     int64           `gorm:"not null;default:0"`
	TotalRevenue    int64           `gorm:"not null;default:0"`
	Notes           string          `gorm:"type:text"`
	Metadata        string          `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// SupplierEditableColumns are the columns an update may write
var SupplierEditableColumns = []string{
	"name", "code", "email", "phone", "website", "country",
	"api_url", "api_key", "api_format", "sync_enabled", "sync_frequency",
	"commission_rate", "min_order_value", "lead_time_days", "currency",
	"is_active", "is_dropship", "show_in_store", "stock_location_id",
	"notes", "metadata", "updated_at",
}

// ToDomain converts the persistence model to a domain Supplier
func (m *SupplierModel) ToDomain() *dropship.Supplier {
	metadata := map[string]any{}
	if m.Metadata != "" {
		_ = json.Unmarshal([]byte(m.Metadata), &metadata)
	}
	return &dropship.Supplier{
		BaseAggregateRoot: m.aggregateRoot(),
		Name:              m.Name,
		Code:              m.Code,
		Email:             m.Email,
		Phone:             m.Phone,
		Website:           m.Website,
		Country:           m.Country,
		APIURL:            m.APIURL,
		APIKey:            m.APIKey,
		APIFormat:         dropship.APIFormat(m.APIFormat),
		SyncEnabled:       m.SyncEnabled,
		SyncFrequency:     dropship.SyncFrequency(m.SyncFrequency),
		LastSyncAt:        m.LastSyncAt,
		CommissionRate:    m.CommissionRate,
		MinOrderValue:     m.MinOrderValue,
		LeadTimeDays:      m.LeadTimeDays,
		Currency:          m.Currency,
		IsActive:          m.IsActive,
		IsDropship:        m.IsDropship,
		ShowInStore:       m.ShowInStore,
		StockLocationID:   m.StockLocationID,
		ProductsCount:     m.ProductsCount,
		OrdersCount:       m.OrdersCount,
		TotalRevenue:      m.TotalRevenue,
		Notes:             m.Notes,
		Metadata:          metadata,
	}
}

// FromDomain populates the persistence model from a domain Supplier
func (m *SupplierModel) FromDomain(s *dropship.Supplier) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Name = s.Name
	m.Code = s.Code
	m.Email = s.Email
	m.Phone = s.Phone
	m.Website = s.Website
	m.Country = s.Country
	m.APIURL = s.APIURL
	m.APIKey = s.APIKey
	m.APIFormat = string(s.APIFormat)
	m.SyncEnabled = s.SyncEnabled
	m.SyncFrequency = string(s.SyncFrequency)
	m.LastSyncAt = s.LastSyncAt
	m.CommissionRate = s.CommissionRate
	m.MinOrderValue = s.MinOrderValue
	m.LeadTimeDays = s.LeadTimeDays
	m.Currency = s.Currency
	m.IsActive = s.IsActive
	m.IsDropship = s.IsDropship
	m.ShowInStore = s.ShowInStore
	m.StockLocationID = s.StockLocationID
	m.ProductsCount = s.ProductsCount
	m.OrdersCount = s.OrdersCount
	m.TotalRevenue = s.TotalRevenue
	m.Notes = s.Notes
	m.Metadata = EncodeJSON(s.Metadata, "{}")
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier
func SupplierModelFromDomain(s *dropship.Supplier) *SupplierModel {
	m := &SupplierModel{}
	m.FromDomain(s)
	return m
}

// SupplierProductModel is the persistence model for SupplierProduct
type SupplierProductModel struct {
	BaseModel
	SupplierID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_supplier_products_supplier_sku,priority:1"`
	ProductID        *string         `gorm:"column:product_id;type:varchar(100);index"`
	SupplierSKU      string          `gorm:"column:supplier_sku;type:varchar(200);not null;uniqueIndex:idx_supplier_products_supplier_sku,priority:2"`
	Name             string          `gorm:"type:varchar(500)"`
	SupplierPrice    int64           `gorm:"not null"`
	SupplierCurrency string          `gorm:"type:varchar(3);not null"`
	SupplierStock    int64           `gorm:"not null"`
	MarkupType       string          `gorm:"type:varchar(20);not null"`
	MarkupValue      decimal.Decimal `gorm:"type:decimal(10,4);not null"`
	SellingPrice     int64           `gorm:"not null"`
	IsActive         bool            `gorm:"not null;index"`
	SyncStatus       string          `gorm:"type:varchar(20);not null"`
	SyncError        string          `gorm:"type:text"`
	LastSyncAt       *time.Time
}

// TableName returns the table name for GORM
func (SupplierProductModel) TableName() string {
	return "supplier_products"
}

// ToDomain converts the persistence model to a domain SupplierProduct
func (m *SupplierProductModel) ToDomain() *dropship.SupplierProduct {
	return &dropship.SupplierProduct{
		BaseAggregateRoot: m.aggregateRoot(),
		SupplierID:        m.SupplierID,
		ProductID:         m.ProductID,
		SupplierSKU:       m.SupplierSKU,
		Name:              m.Name,
		SupplierPrice:     m.SupplierPrice,
		SupplierCurrency:  m.SupplierCurrency,
		SupplierStock:     m.SupplierStock,
		MarkupType:        dropship.MarkupType(m.MarkupType),
		MarkupValue:       m.MarkupValue,
		SellingPrice:      m.SellingPrice,
		IsActive:          m.IsActive,
		SyncStatus:        dropship.SyncStatus(m.SyncStatus),
		SyncError:         m.SyncError,
		LastSyncAt:        m.LastSyncAt,
	}
}

// FromDomain populates the persistence model from a domain SupplierProduct
func (m *SupplierProductModel) FromDomain(p *dropship.SupplierProduct) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.SupplierID = p.SupplierID
	m.ProductID = p.ProductID
	m.SupplierSKU = p.SupplierSKU
	m.Name = p.Name
	m.SupplierPrice = p.SupplierPrice
	m.SupplierCurrency = p.SupplierCurrency
	m.SupplierStock = p.SupplierStock
	m.MarkupType = string(p.MarkupType)
	m.MarkupValue = p.MarkupValue
	m.SellingPrice = p.SellingPrice
	m.IsActive = p.IsActive
	m.SyncStatus = string(p.SyncStatus)
	m.SyncError = p.SyncError
	m.LastSyncAt = p.LastSyncAt
}

// SupplierProductModelFromDomain creates a new persistence model from a domain SupplierProduct
func SupplierProductModelFromDomain(p *dropship.SupplierProduct) *SupplierProductModel {
	m := &SupplierProductModel{}
	m.FromDomain(p)
	return m
}

// PriceChangeModel is an append-only record of supplier price changes seen by sync
type PriceChangeModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	SupplierProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	SupplierID        uuid.UUID `gorm:"type:uuid;not null;index"`
	SupplierSKU       string    `gorm:"column:supplier_sku;type:varchar(200);not null"`
	OldPrice          int64     `gorm:"not null"`
	NewPrice          int64     `gorm:"not null"`
	ChangedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PriceChangeModel) TableName() string {
	return "supplier_price_changes"
}

// PriceChangeModelFromEvent maps a price change event to its history row
func PriceChangeModelFromEvent(e *dropship.PriceChangedEvent) *PriceChangeModel {
	return &PriceChangeModel{
		ID:                e.EventID(),
		SupplierProductID: e.AggregateID(),
		SupplierID:        e.SupplierID,
		SupplierSKU:       e.SKU,
		OldPrice:          e.OldPrice,
		NewPrice:          e.NewPrice,
		ChangedAt:         e.OccurredAt(),
	}
}

// SupplierOrderModel is the persistence model for SupplierOrder
type SupplierOrderModel struct {
	BaseModel
	SupplierID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_supplier_orders_supplier_order,priority:1"`
	OrderID         string     `gorm:"column:order_id;type:varchar(100);not null;uniqueIndex:idx_supplier_orders_supplier_order,priority:2"`
	SupplierOrderID string     `gorm:"column:supplier_order_id;type:varchar(100)"`
	Status          string     `gorm:"type:varchar(20);not null;index"`
	SupplierTotal   int64      `gorm:"not null"`
	YourMargin      int64      `gorm:"not null"`
	Currency        string     `gorm:"type:varchar(3);not null"`
	TrackingNumber  string     `gorm:"type:varchar(100)"`
	Items           string     `gorm:"type:jsonb"`
	Notes           string     `gorm:"type:text"`
	SentAt          *time.Time `gorm:"column:sent_at"`
	ConfirmedAt     *time.Time `gorm:"column:confirmed_at"`
	ShippedAt       *time.Time `gorm:"column:shipped_at"`
	DeliveredAt     *time.Time `gorm:"column:delivered_at"`
}

// TableName returns the table name for GORM
func (SupplierOrderModel) TableName() string {
	return "supplier_orders"
}

// ToDomain converts the persistence model to a domain SupplierOrder
func (m *SupplierOrderModel) ToDomain() *dropship.SupplierOrder {
	var items []dropship.OrderItem
	if m.Items != "" {
		_ = json.Unmarshal([]byte(m.Items), &items)
	}
	return &dropship.SupplierOrder{
		BaseAggregateRoot: m.aggregateRoot(),
		SupplierID:        m.SupplierID,
		OrderID:           m.OrderID,
		SupplierOrderID:   m.SupplierOrderID,
		Status:            dropship.OrderStatus(m.Status),
		SupplierTotal:     m.SupplierTotal,
		YourMargin:        m.YourMargin,
		Currency:          m.Currency,
		TrackingNumber:    m.TrackingNumber,
		Items:             items,
		Notes:             m.Notes,
		SentAt:            m.SentAt,
		ConfirmedAt:       m.ConfirmedAt,
		ShippedAt:         m.ShippedAt,
		DeliveredAt:       m.DeliveredAt,
	}
}

// FromDomain populates the persistence model from a domain SupplierOrder
func (m *SupplierOrderModel) FromDomain(o *dropship.SupplierOrder) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.SupplierID = o.SupplierID
	m.OrderID = o.OrderID
	m.SupplierOrderID = o.SupplierOrderID
	m.Status = string(o.Status)
	m.SupplierTotal = o.SupplierTotal
	m.YourMargin = o.YourMargin
	m.Currency = o.Currency
	m.TrackingNumber = o.TrackingNumber
	m.Items = EncodeJSON(o.Items, "[]")
	m.Notes = o.Notes
	m.SentAt = o.SentAt
	m.ConfirmedAt = o.ConfirmedAt
	m.ShippedAt = o.ShippedAt
	m.DeliveredAt = o.DeliveredAt
}

// SupplierOrderModelFromDomain creates a new persistence model from a domain SupplierOrder
func SupplierOrderModelFromDomain(o *dropship.SupplierOrder) *SupplierOrderModel {
	m := &SupplierOrderModel{}
	m.FromDomain(o)
	return m
}
