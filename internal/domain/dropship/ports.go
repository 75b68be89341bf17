package dropship

import (
	"context"

	"github.com/google/uuid"
)

// CatalogFetcher resolves and downloads supplier feeds. Fetch is single-shot.
type CatalogFetcher interface {
	Resolve(s *Supplier) (FeedEndpoint, error)
	Fetch(ctx context.Context, endpoint FeedEndpoint) (*CatalogFeed, error)
}

// ListingDraft describes the catalog listing to create for a supplier product
type ListingDraft struct {
	SupplierProductID uuid.UUID
	SupplierID        uuid.UUID
	SupplierCode      string
	SupplierSKU       string
	Title             string
	Handle            string
	VariantSKU        string
	Currency          string
	Amount            int64
	Stock             int64
}

// Listing is what the catalog store created (or reused) for a draft
type Listing struct {
	ProductID      string
	Handle         string
	VariantID      string
	PriceSetID     string
	SalesChannelID string
	Reused         bool
}

// ListingPublisher writes a listing to the external catalog store and links the
// supplier product to it atomically. It returns ErrAlreadyMaterialized when the
// supplier product was linked concurrently.
type ListingPublisher interface {
	Publish(ctx context.Context, draft ListingDraft) (*Listing, error)
}

// StockLocationProvisioner creates the stock location backing a dropship supplier
type StockLocationProvisioner interface {
	ProvisionStockLocation(ctx context.Context, s *Supplier) (string, error)
}

// ShippingAddress is the delivery address of an external order
type ShippingAddress struct {
	FirstName   string
	LastName    string
	Address1    string
	Address2    string
	City        string
	PostalCode  string
	CountryCode string
	Phone       string
}

// ExternalOrder is the part of an externally owned order the tracker needs
type ExternalOrder struct {
	ID        string
	DisplayID string
	Shipping  *ShippingAddress
}

// OrderDirectory resolves externally owned orders
type OrderDirectory interface {
	FindOrder(ctx context.Context, orderID string) (*ExternalOrder, error)
}

// OrderDispatcher places a supplier order with the supplier's own store and returns its remote id
type OrderDispatcher interface {
	Dispatch(ctx context.Context, s *Supplier, o *SupplierOrder, order *ExternalOrder) (string, error)
}

// SupplierLocker serializes sync, materialization and order dispatch of a single supplier.
// Lock blocks until the lock is held or ctx is done; the returned func releases it.
type SupplierLocker interface {
	Lock(ctx context.Context, supplierID uuid.UUID) (func(), error)
}

// FeedArchive keeps raw feed bodies for later inspection
type FeedArchive interface {
	Store(ctx context.Context, supplierCode string, feed *CatalogFeed) (string, error)
}

// StorefrontNotifier tells the storefront that catalog data changed
type StorefrontNotifier interface {
	CatalogChanged(ctx context.Context, supplierID uuid.UUID) error
}
