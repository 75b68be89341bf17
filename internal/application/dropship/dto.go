package dropship

import (
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pagination bounds for list endpoints
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// CreateSupplierRequest represents a request to register a supplier
type CreateSupplierRequest struct {
	Name           string           `json:"name" binding:"required,min=1,max=200"`
	Code           string           `json:"code" binding:"required,min=1,max=50"`
	Email          string           `json:"email" binding:"omitempty,email"`
	Phone          string           `json:"phone" binding:"max=50"`
	Website        string           `json:"website" binding:"omitempty,url"`
	Country        string           `json:"country" binding:"omitempty,len=2"`
	APIURL         string           `json:"api_url" binding:"omitempty,url"`
	APIKey         string           `json:"api_key"`
	APIFormat      string           `json:"api_format" binding:"omitempty,oneof=json woocommerce"`
	SyncEnabled    *bool            `json:"sync_enabled"`
	SyncFrequency  string           `json:"sync_frequency" binding:"omitempty,oneof=manual hourly daily weekly"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	MinOrderValue  *decimal.Decimal `json:"min_order_value"`
	LeadTimeDays   *int             `json:"lead_time_days" binding:"omitempty,min=0"`
	Currency       string           `json:"currency" binding:"omitempty,len=3"`
	IsActive       *bool            `json:"is_active"`
	IsDropship     *bool            `json:"is_dropship"`
	ShowInStore    *bool            `json:"show_in_store"`
	Notes          string           `json:"notes" binding:"max=2000"`
	Metadata       map[string]any   `json:"metadata"`
}

// UpdateSupplierRequest is a partial update; nil fields are left unchanged.
// Counters are not part of the request.
type UpdateSupplierRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Code           *string          `json:"code" binding:"omitempty,min=1,max=50"`
	Email          *string          `json:"email" binding:"omitempty,email"`
	Phone          *string          `json:"phone" binding:"omitempty,max=50"`
	Website        *string          `json:"website" binding:"omitempty,url"`
	Country        *string          `json:"country" binding:"omitempty,len=2"`
	APIURL         *string          `json:"api_url" binding:"omitempty"`
	APIKey         *string          `json:"api_key"`
	APIFormat      *string          `json:"api_format" binding:"omitempty,oneof=json woocommerce"`
	SyncEnabled    *bool            `json:"sync_enabled"`
	SyncFrequency  *string          `json:"sync_frequency" binding:"omitempty,oneof=manual hourly daily weekly"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	MinOrderValue  *decimal.Decimal `json:"min_order_value"`
	LeadTimeDays   *int             `json:"lead_time_days" binding:"omitempty,min=0"`
	Currency       *string          `json:"currency" binding:"omitempty,len=3"`
	IsActive       *bool            `json:"is_active"`
	IsDropship     *bool            `json:"is_dropship"`
	ShowInStore    *bool            `json:"show_in_store"`
	Notes          *string          `json:"notes" binding:"omitempty,max=2000"`
	Metadata       map[string]any   `json:"metadata"`
}

// patch turns a create request into the update applied to a fresh supplier
func (r CreateSupplierRequest) patch() UpdateSupplierRequest {
	p := UpdateSupplierRequest{
		SyncEnabled:    r.SyncEnabled,
		CommissionRate: r.CommissionRate,
		MinOrderValue:  r.MinOrderValue,
		LeadTimeDays:   r.LeadTimeDays,
		IsActive:       r.IsActive,
		IsDropship:     r.IsDropship,
		ShowInStore:    r.ShowInStore,
		Metadata:       r.Metadata,
	}
	p.Email = nonEmpty(r.Email)
	p.Phone = nonEmpty(r.Phone)
	p.Website = nonEmpty(r.Website)
	p.Country = nonEmpty(r.Country)
	p.APIURL = nonEmpty(r.APIURL)
	p.APIKey = nonEmpty(r.APIKey)
	p.APIFormat = nonEmpty(r.APIFormat)
	p.SyncFrequency = nonEmpty(r.SyncFrequency)
	p.Currency = nonEmpty(r.Currency)
	p.Notes = nonEmpty(r.Notes)
	return p
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SupplierListFilter represents supplier list query parameters
type SupplierListFilter struct {
	Search     string `form:"search"`
	IsActive   *bool  `form:"is_active"`
	IsDropship *bool  `form:"is_dropship"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductListFilter represents supplier product list query parameters
type ProductListFilter struct {
	Search     string `form:"search"`
	SyncStatus string `form:"sync_status" binding:"omitempty,oneof=pending synced error"`
	IsActive   *bool  `form:"is_active"`
	Linked     *bool  `form:"linked"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1"`
}

// OrderListFilter represents supplier order list query parameters
type OrderListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending sent confirmed shipped delivered"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1"`
}

// pageFilter applies the list defaults: page 1, 50 rows, at most 100
func pageFilter(page, pageSize int) shared.Filter {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return shared.Filter{Page: page, PageSize: pageSize}
}

// SupplierResponse represents a supplier in API responses.
// The API key itself is never returned.
type SupplierResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Code            string          `json:"code"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	Website         string          `json:"website"`
	Country         string          `json:"country"`
	APIURL          string          `json:"api_url"`
	HasAPIKey       bool            `json:"has_api_key"`
	APIFormat       string          `json:"api_format"`
	SyncEnabled     bool            `json:"sync_enabled"`
	SyncFrequency   string          `json:"sync_frequency"`
	LastSyncAt      *time.Time      `json:"last_sync_at"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	MinOrderValue   decimal.Decimal `json:"min_order_value"`
	LeadTimeDays    int             `json:"lead_time_days"`
	Currency        string          `json:"currency"`
	IsActive        bool            `json:"is_active"`
	IsDropship      bool            `json:"is_dropship"`
	ShowInStore     bool            `json:"show_in_store"`
	StockLocationID string          `json:"stock_location_id,omitempty"`
	ProductsCount   int64           `json:"products_count"`
	OrdersCount     int64           `json:"orders_count"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	Notes           string          `json:"notes"`
	Metadata        map[string]any  `json:"metadata"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToSupplierResponse converts a domain supplier to a response DTO
func ToSupplierResponse(s *dropship.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:              s.ID,
		Name:            s.Name,
		Code:            s.Code,
		Email:           s.Email,
		Phone:           s.Phone,
		Website:         s.Website,
		Country:         s.Country,
		APIURL:          s.APIURL,
		HasAPIKey:       s.APIKey != "",
		APIFormat:       string(s.APIFormat),
		SyncEnabled:     s.SyncEnabled,
		SyncFrequency:   string(s.SyncFrequency),
		LastSyncAt:      s.LastSyncAt,
		CommissionRate:  s.CommissionRate,
		MinOrderValue:   dropship.FromMinorUnits(s.MinOrderValue),
		LeadTimeDays:    s.LeadTimeDays,
		Currency:        s.Currency,
		IsActive:        s.IsActive,
		IsDropship:      s.IsDropship,
		ShowInStore:     s.ShowInStore,
		StockLocationID: s.StockLocationID,
		ProductsCount:   s.ProductsCount,
		OrdersCount:     s.OrdersCount,
		TotalRevenue:    dropship.FromMinorUnits(s.TotalRevenue),
		Notes:           s.Notes,
		Metadata:        s.Metadata,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// AddProductRequest represents a manually added supplier product. Prices are in major units.
type AddProductRequest struct {
	SupplierSKU   string           `json:"supplier_sku" binding:"required,min=1,max=100"`
	SupplierPrice *decimal.Decimal `json:"supplier_price" binding:"required"`
	Name          string           `json:"name" binding:"max=500"`
	ProductID     *string          `json:"product_id"`
	SupplierStock *int64           `json:"supplier_stock"`
	MarkupType    string           `json:"markup_type" binding:"omitempty,oneof=percentage fixed"`
	MarkupValue   *decimal.Decimal `json:"markup_value"`
}

// ProductResponse represents a supplier product with its current selling price
type ProductResponse struct {
	ID               uuid.UUID       `json:"id"`
	SupplierID       uuid.UUID       `json:"supplier_id"`
	ProductID        *string         `json:"product_id"`
	SupplierSKU      string          `json:"supplier_sku"`
	Name             string          `json:"name"`
	SupplierPrice    decimal.Decimal `json:"supplier_price"`
	SupplierCurrency string          `json:"supplier_currency"`
	SupplierStock    int64           `json:"supplier_stock"`
	MarkupType       string          `json:"markup_type"`
	MarkupValue      decimal.Decimal `json:"markup_value"`
	SellingPrice     decimal.Decimal `json:"selling_price"`
	IsActive         bool            `json:"is_active"`
	SyncStatus       string          `json:"sync_status"`
	SyncError        string          `json:"sync_error,omitempty"`
	LastSyncAt       *time.Time      `json:"last_sync_at"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToProductResponse converts a supplier product, pricing it with its current markup
func ToProductResponse(p *dropship.SupplierProduct) ProductResponse {
	selling, _ := dropship.SellingPrice(p.SupplierPrice, p.MarkupType, p.MarkupValue)
	return ProductResponse{
		ID:               p.ID,
		SupplierID:       p.SupplierID,
		ProductID:        p.ProductID,
		SupplierSKU:      p.SupplierSKU,
		Name:             p.Name,
		SupplierPrice:    dropship.FromMinorUnits(p.SupplierPrice),
		SupplierCurrency: p.SupplierCurrency,
		SupplierStock:    p.SupplierStock,
		MarkupType:       string(p.MarkupType),
		MarkupValue:      p.MarkupValue,
		SellingPrice:     dropship.FromMinorUnits(selling),
		IsActive:         p.IsActive,
		SyncStatus:       string(p.SyncStatus),
		SyncError:        p.SyncError,
		LastSyncAt:       p.LastSyncAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// RowErrorResponse is one failed row of a sync or materialization
type RowErrorResponse struct {
	SKU     string `json:"sku"`
	Message string `json:"message"`
}

func toRowErrors(errs []dropship.RowError) []RowErrorResponse {
	out := make([]RowErrorResponse, len(errs))
	for i, e := range errs {
		out[i] = RowErrorResponse{SKU: e.SKU, Message: e.Message}
	}
	return out
}

// SyncReportResponse represents the outcome of a catalog sync
type SyncReportResponse struct {
	SupplierID   uuid.UUID          `json:"supplier_id"`
	SupplierCode string             `json:"supplier_code"`
	Created      int                `json:"created"`
	Updated      int                `json:"updated"`
	Errors       int                `json:"errors"`
	RowErrors    []RowErrorResponse `json:"row_errors"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   time.Time          `json:"finished_at"`
	DurationMS   int64              `json:"duration_ms"`
}

// ToSyncReportResponse converts a sync report to a response DTO
func ToSyncReportResponse(r *dropship.SyncReport) SyncReportResponse {
	return SyncReportResponse{
		SupplierID:   r.SupplierID,
		SupplierCode: r.SupplierCode,
		Created:      r.Created,
		Updated:      r.Updated,
		Errors:       r.Errors,
		RowErrors:    toRowErrors(r.RowErrors),
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		DurationMS:   r.FinishedAt.Sub(r.StartedAt).Milliseconds(),
	}
}

// MaterializeRequest optionally restricts materialization to specific supplier products
type MaterializeRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// MaterializeResponse represents the outcome of one materialization batch
type MaterializeResponse struct {
	SupplierID uuid.UUID          `json:"supplier_id"`
	Created    int                `json:"created"`
	Errors     int                `json:"errors"`
	Remaining  int64              `json:"remaining"`
	RowErrors  []RowErrorResponse `json:"row_errors"`
}

// ToMaterializeResponse converts a materialize report to a response DTO
func ToMaterializeResponse(r *dropship.MaterializeReport) MaterializeResponse {
	return MaterializeResponse{
		SupplierID: r.SupplierID,
		Created:    r.Created,
		Errors:     r.Errors,
		Remaining:  r.Remaining,
		RowErrors:  toRowErrors(r.RowErrors),
	}
}

// OrderItemRequest is one item of a supplier order
type OrderItemRequest struct {
	SKU      string `json:"sku" binding:"required,min=1"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Name     string `json:"name"`
}

// CreateOrderRequest records an order placed with a supplier. Amounts are in major units.
type CreateOrderRequest struct {
	OrderID       string             `json:"order_id" binding:"required,min=1"`
	SupplierTotal *decimal.Decimal   `json:"supplier_total" binding:"required"`
	YourMargin    *decimal.Decimal   `json:"your_margin"`
	Items         []OrderItemRequest `json:"items" binding:"omitempty,dive"`
	Notes         string             `json:"notes" binding:"max=2000"`
}

// AdvanceOrderRequest moves an order forward, optionally recording a tracking number
type AdvanceOrderRequest struct {
	Status         string `json:"status" binding:"required,oneof=pending sent confirmed shipped delivered"`
	TrackingNumber string `json:"tracking_number" binding:"max=100"`
}

// OrderItemResponse is one item of a supplier order
type OrderItemResponse struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name,omitempty"`
}

// OrderResponse represents a supplier order in API responses
type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	SupplierID      uuid.UUID           `json:"supplier_id"`
	OrderID         string              `json:"order_id"`
	SupplierOrderID string              `json:"supplier_order_id,omitempty"`
	Status          string              `json:"status"`
	SupplierTotal   decimal.Decimal     `json:"supplier_total"`
	YourMargin      decimal.Decimal     `json:"your_margin"`
	Currency        string              `json:"currency"`
	TrackingNumber  string              `json:"tracking_number,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	Notes           string              `json:"notes"`
	SentAt          *time.Time          `json:"sent_at"`
	ConfirmedAt     *time.Time          `json:"confirmed_at"`
	ShippedAt       *time.Time          `json:"shipped_at"`
	DeliveredAt     *time.Time          `json:"delivered_at"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a supplier order to a response DTO
func ToOrderResponse(o *dropship.SupplierOrder) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{SKU: item.SKU, Quantity: item.Quantity, Name: item.Name}
	}
	return OrderResponse{
		ID:              o.ID,
		SupplierID:      o.SupplierID,
		OrderID:         o.OrderID,
		SupplierOrderID: o.SupplierOrderID,
		Status:          string(o.Status),
		SupplierTotal:   dropship.FromMinorUnits(o.SupplierTotal),
		YourMargin:      dropship.FromMinorUnits(o.YourMargin),
		Currency:        o.Currency,
		TrackingNumber:  o.TrackingNumber,
		Items:           items,
		Notes:           o.Notes,
		SentAt:          o.SentAt,
		ConfirmedAt:     o.ConfirmedAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
