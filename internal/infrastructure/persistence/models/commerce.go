package models

import "time"

// The models below map tables owned by the commerce platform. The dropship
// service writes listings and reads orders through them but does not migrate them.

// CommerceProductModel maps the platform's product table
type CommerceProductModel struct {
	ID           string `gorm:"type:varchar(100);primary_key"`
	Title        string `gorm:"type:text;not null"`
	Handle       string `gorm:"type:varchar(300);not null;uniqueIndex"`
	Status       string `gorm:"type:varchar(20);not null"`
	IsGiftcard   bool   `gorm:"column:is_giftcard;not null"`
	Discountable bool   `gorm:"not null"`
	Metadata     string `gorm:"type:jsonb"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// TableName returns the table name for GORM
func (CommerceProductModel) TableName() string {
	return "product"
}

// CommerceVariantModel maps the platform's product_variant table
type CommerceVariantModel struct {
	ID              string `gorm:"type:varchar(100);primary_key"`
	ProductID       string `gorm:"type:varchar(100);not null;index"`
	Title           string `gorm:"type:text;not null"`
	SKU             string `gorm:"column:sku;type:varchar(300)"`
	ManageInventory bool   `gorm:"not null"`
	AllowBackorder  bool   `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName returns the table name for GORM
func (CommerceVariantModel) TableName() string {
	return "product_variant"
}

// CommercePriceSetModel maps the platform's price_set table
type CommercePriceSetModel struct {
	ID        string `gorm:"type:varchar(100);primary_key"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (CommercePriceSetModel) TableName() string {
	return "price_set"
}

// CommercePriceModel maps the platform's price table. Amount is in minor units.
type CommercePriceModel struct {
	ID           string `gorm:"type:varchar(100);primary_key"`
	PriceSetID   string `gorm:"type:varchar(100);not null;index"`
	CurrencyCode string `gorm:"type:varchar(3);not null"`
	Amount       int64  `gorm:"not null"`
	RawAmount    string `gorm:"type:jsonb"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (CommercePriceModel) TableName() string {
	return "price"
}

// CommerceVariantPriceSetModel links a variant to its price set
type CommerceVariantPriceSetModel struct {
	ID         string `gorm:"type:varchar(100);primary_key"`
	VariantID  string `gorm:"type:varchar(100);not null;index"`
	PriceSetID string `gorm:"type:varchar(100);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM
func (CommerceVariantPriceSetModel) TableName() string {
	return "product_variant_price_set"
}

// CommerceSalesChannelModel maps the platform's sales_channel table
type CommerceSalesChannelModel struct {
	ID        string `gorm:"type:varchar(100);primary_key"`
	Name      string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (CommerceSalesChannelModel) TableName() string {
	return "sales_channel"
}

// CommerceProductSalesChannelModel publishes a product on a sales channel
type CommerceProductSalesChannelModel struct {
	ID             string `gorm:"type:varchar(100);primary_key"`
	ProductID      string `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_sales_channel_pair,priority:1"`
	SalesChannelID string `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_sales_channel_pair,priority:2"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName returns the table name for GORM
func (CommerceProductSalesChannelModel) TableName() string {
	return "product_sales_channel"
}

// CommerceStockLocationModel maps the platform's stock_location table
type CommerceStockLocationModel struct {
	ID        string `gorm:"type:varchar(100);primary_key"`
	Name      string `gorm:"type:text;not null"`
	Metadata  string `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (CommerceStockLocationModel) TableName() string {
	return "stock_location"
}

// CommerceOrderModel maps the columns of the platform's order table the tracker reads
type CommerceOrderModel struct {
	ID                string  `gorm:"type:varchar(100);primary_key"`
	DisplayID         int64   `gorm:"column:display_id"`
	ShippingAddressID *string `gorm:"column:shipping_address_id;type:varchar(100)"`
	CreatedAt         time.Time
	DeletedAt         *time.Time
}

// TableName returns the table name for GORM
func (CommerceOrderModel) TableName() string {
	return "order"
}

// CommerceOrderAddressModel maps the platform's order_address table
type CommerceOrderAddressModel struct {
	ID          string `gorm:"type:varchar(100);primary_key"`
	FirstName   string `gorm:"type:text"`
	LastName    string `gorm:"type:text"`
	Address1    string `gorm:"column:address_1;type:text"`
	Address2    string `gorm:"column:address_2;type:text"`
	City        string `gorm:"type:text"`
	PostalCode  string `gorm:"type:text"`
	CountryCode string `gorm:"type:varchar(2)"`
	Phone       string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CommerceOrderAddressModel) TableName() string {
	return "order_address"
}

// CommerceModels lists the platform tables, for test schemas
func CommerceModels() []any {
	return []any{
		&CommerceProductModel{},
		&CommerceVariantModel{},
		&CommercePriceSetModel{},
		&CommercePriceModel{},
		&CommerceVariantPriceSetModel{},
		&CommerceSalesChannelModel{},
		&CommerceProductSalesChannelModel{},
		&CommerceStockLocationModel{},
		&CommerceOrderModel{},
		&CommerceOrderAddressModel{},
	}
}

// DropshipModels lists the tables owned by this service
func DropshipModels() []any {
	return []any{
		&SupplierModel{},
		&SupplierProductModel{},
		&PriceChangeModel{},
		&SupplierOrderModel{},
	}
}
