package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCatalogStore writes listings and stock locations into the commerce platform tables.
// It implements dropship.ListingPublisher and dropship.StockLocationProvisioner.
type GormCatalogStore struct {
	db                    *gorm.DB
	defaultSalesChannelID string
	now                   func() time.Time
}

// CatalogStoreOption configures a GormCatalogStore
type CatalogStoreOption func(*GormCatalogStore)

// WithDefaultSalesChannel publishes new listings on the given channel instead of the oldest one
func WithDefaultSalesChannel(id string) CatalogStoreOption {
	return func(s *GormCatalogStore) {
		s.defaultSalesChannelID = id
	}
}

// WithCatalogClock overrides the clock used for row timestamps
func WithCatalogClock(now func() time.Time) CatalogStoreOption {
	return func(s *GormCatalogStore) {
		s.now = now
	}
}

// NewGormCatalogStore creates a new GormCatalogStore
func NewGormCatalogStore(db *gorm.DB, opts ...CatalogStoreOption) *GormCatalogStore {
	s := &GormCatalogStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// commerceID builds a platform-style identifier such as prod_0f3c...
func commerceID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Publish creates the product, variant, price set and price for the draft, publishes it
// on the default sales channel and links the supplier product, all in one transaction.
// A product already carrying the draft's handle is reused only when it was created for
// the same supplier product; otherwise the SKU-digest handle is tried.
func (s *GormCatalogStore) Publish(ctx context.Context, draft dropship.ListingDraft) (*dropship.Listing, error) {
	now := s.now()
	listing := &dropship.Listing{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.claimHandle(tx, draft, now, listing); err != nil {
			return err
		}

		channelID, err := s.salesChannel(tx)
		if err != nil {
			return err
		}
		if channelID != "" {
			link := models.CommerceProductSalesChannelModel{
				ID:             commerceID("prodsc"),
				ProductID:      listing.ProductID,
				SalesChannelID: channelID,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "product_id"}, {Name: "sales_channel_id"}},
				DoNothing: true,
			}).Create(&link).Error; err != nil {
				return fmt.Errorf("publish on sales channel: %w", err)
			}
			listing.SalesChannelID = channelID
		}

		result := tx.Model(&models.SupplierProductModel{}).
			Where("id = ? AND product_id IS NULL", draft.SupplierProductID).
			UpdateColumns(map[string]any{
				"product_id":    listing.ProductID,
				"selling_price": draft.Amount,
				"is_active":     true,
				"updated_at":    now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return dropship.ErrAlreadyMaterialized
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// claimHandle reuses the draft's own listing or creates one under the first free handle
func (s *GormCatalogStore) claimHandle(tx *gorm.DB, draft dropship.ListingDraft, now time.Time, listing *dropship.Listing) error {
	for _, handle := range []string{draft.Handle, dropship.UniqueHandle(draft.SupplierCode, draft.SupplierSKU)} {
		var existing models.CommerceProductModel
		err := tx.Where("handle = ? AND deleted_at IS NULL", handle).First(&existing).Error
		switch {
		case err == nil:
			if !ownedBy(existing, draft.SupplierProductID) {
				continue
			}
			if err := s.loadListing(tx, existing.ID, listing); err != nil {
				return err
			}
			listing.Handle = existing.Handle
			listing.Reused = true
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			draft.Handle = handle
			return s.createListing(tx, draft, now, listing)
		default:
			return err
		}
	}
	return dropship.ErrHandleConflict
}

// ownedBy reports whether the product was created for the given supplier product
func ownedBy(product models.CommerceProductModel, supplierProductID uuid.UUID) bool {
	var meta struct {
		SupplierProductID string `json:"supplier_product_id"`
	}
	if err := json.Unmarshal([]byte(product.Metadata), &meta); err != nil {
		return false
	}
	return meta.SupplierProductID == supplierProductID.String()
}

func (s *GormCatalogStore) createListing(tx *gorm.DB, draft dropship.ListingDraft, now time.Time, listing *dropship.Listing) error {
	product := models.CommerceProductModel{
		ID:           commerceID("prod"),
		Title:        draft.Title,
		Handle:       draft.Handle,
		Status:       "published",
		IsGiftcard:   false,
		Discountable: true,
		Metadata: models.EncodeJSON(map[string]any{
			"supplier_id":         draft.SupplierID.String(),
			"supplier_code":       draft.SupplierCode,
			"supplier_sku":        draft.SupplierSKU,
			"supplier_product_id": draft.SupplierProductID.String(),
			"dropship":            true,
		}, "{}"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Create(&product).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	variant := models.CommerceVariantModel{
		ID:              commerceID("variant"),
		ProductID:       product.ID,
		Title:           "Default",
		SKU:             draft.VariantSKU,
		ManageInventory: true,
		AllowBackorder:  false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := tx.Create(&variant).Error; err != nil {
		return fmt.Errorf("create variant: %w", err)
	}

	priceSet := models.CommercePriceSetModel{ID: commerceID("pset"), CreatedAt: now, UpdatedAt: now}
	if err := tx.Create(&priceSet).Error; err != nil {
		return fmt.Errorf("create price set: %w", err)
	}

	price := models.CommercePriceModel{
		ID:           commerceID("price"),
		PriceSetID:   priceSet.ID,
		CurrencyCode: strings.ToLower(draft.Currency),
		Amount:       draft.Amount,
		RawAmount: models.EncodeJSON(map[string]any{
			"value":     dropship.FromMinorUnits(draft.Amount).StringFixed(2),
			"precision": 20,
		}, "{}"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Create(&price).Error; err != nil {
		return fmt.Errorf("create price: %w", err)
	}

	link := models.CommerceVariantPriceSetModel{
		ID:         commerceID("pvps"),
		VariantID:  variant.ID,
		PriceSetID: priceSet.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.Create(&link).Error; err != nil {
		return fmt.Errorf("link variant price set: %w", err)
	}

	listing.ProductID = product.ID
	listing.Handle = product.Handle
	listing.VariantID = variant.ID
	listing.PriceSetID = priceSet.ID
	return nil
}

// loadListing fills the listing from an existing product; missing variant or price set rows are tolerated
func (s *GormCatalogStore) loadListing(tx *gorm.DB, productID string, listing *dropship.Listing) error {
	listing.ProductID = productID

	var variant models.CommerceVariantModel
	err := tx.Where("product_id = ?", productID).Order("created_at ASC").First(&variant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	listing.VariantID = variant.ID

	var link models.CommerceVariantPriceSetModel
	err = tx.Where("variant_id = ?", variant.ID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	listing.PriceSetID = link.PriceSetID
	return nil
}

// salesChannel returns the configured channel, else the oldest one, else ""
func (s *GormCatalogStore) salesChannel(tx *gorm.DB) (string, error) {
	if s.defaultSalesChannelID != "" {
		return s.defaultSalesChannelID, nil
	}
	var channel models.CommerceSalesChannelModel
	err := tx.Order("created_at ASC").First(&channel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

// ProvisionStockLocation creates the stock location backing a dropship supplier
func (s *GormCatalogStore) ProvisionStockLocation(ctx context.Context, supplier *dropship.Supplier) (string, error) {
	now := s.now()
	location := models.CommerceStockLocationModel{
		ID:   commerceID("sloc"),
		Name: "Magazyn: " + supplier.Name,
		Metadata: models.EncodeJSON(map[string]any{
			"supplier_id": supplier.ID.String(),
			"type":        "dropship",
		}, "{}"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&location).Error; err != nil {
		return "", fmt.Errorf("create stock location: %w", err)
	}
	return location.ID, nil
}
