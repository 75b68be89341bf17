package persistence

import (
	"context"
	"errors"
	"strconv"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/erp/dropship/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderDirectory reads orders owned by the commerce platform.
// It implements dropship.OrderDirectory.
type GormOrderDirectory struct {
	db *gorm.DB
}

// NewGormOrderDirectory creates a new GormOrderDirectory
func NewGormOrderDirectory(db *gorm.DB) *GormOrderDirectory {
	return &GormOrderDirectory{db: db}
}

// FindOrder loads a live order and its shipping address. Deleted orders are not found.
func (d *GormOrderDirectory) FindOrder(ctx context.Context, orderID string) (*dropship.ExternalOrder, error) {
	var order models.CommerceOrderModel
	if err := d.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", orderID).
		First(&order).Error; err != nil {
		return nil, notFound(err)
	}

	result := &dropship.ExternalOrder{
		ID:        order.ID,
		DisplayID: strconv.FormatInt(order.DisplayID, 10),
	}
	if order.ShippingAddressID == nil || *order.ShippingAddressID == "" {
		return result, nil
	}

	var address models.CommerceOrderAddressModel
	err := d.db.WithContext(ctx).First(&address, "id = ?", *order.ShippingAddressID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.Shipping = &dropship.ShippingAddress{
		FirstName:   address.FirstName,
		LastName:    address.LastName,
		Address1:    address.Address1,
		Address2:    address.Address2,
		City:        address.City,
		PostalCode:  address.PostalCode,
		CountryCode: address.CountryCode,
		Phone:       address.Phone,
	}
	return result, nil
}
