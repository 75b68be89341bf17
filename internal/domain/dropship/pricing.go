package dropship

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MarkupType selects how a markup value is applied to a supplier price
type MarkupType string

const (
	MarkupPercentage MarkupType = "percentage"
	MarkupFixed      MarkupType = "fixed"
)

// DefaultMarkupPercent applies when a supplier has no commission rate
var DefaultMarkupPercent = decimal.NewFromInt(20)

var hundred = decimal.NewFromInt(100)

// IsValid checks if the markup type is known
func (t MarkupType) IsValid() bool {
	return t == MarkupPercentage || t == MarkupFixed
}

// PricingWarning reports a markup that would have produced a negative price.
// The price is clamped to zero; the warning is informational.
type PricingWarning struct {
	SupplierPrice int64
	MarkupType    MarkupType
	MarkupValue   decimal.Decimal
	Computed      int64
}

func (w *PricingWarning) Error() string {
	return fmt.Sprintf("markup %s %s on %d yields %d, clamped to 0",
		w.MarkupType, w.MarkupValue.String(), w.SupplierPrice, w.Computed)
}

// SellingPrice computes the resale price in minor units.
//
// Percentage markup multiplies by (1 + value/100). Fixed markup takes value in
// major currency units and adds value*100 minor units. Results are rounded
// half away from zero. A negative result is clamped to 0 and reported through
// the returned warning.
func SellingPrice(supplierPrice int64, markupType MarkupType, markupValue decimal.Decimal) (int64, *PricingWarning) {
	base := decimal.NewFromInt(supplierPrice)

	var price int64
	switch markupType {
	case MarkupFixed:
		price = supplierPrice + markupValue.Mul(hundred).Round(0).IntPart()
	default:
		price = base.Mul(hundred.Add(markupValue)).Div(hundred).Round(0).IntPart()
	}

	if price < 0 {
		return 0, &PricingWarning{
			SupplierPrice: supplierPrice,
			MarkupType:    markupType,
			MarkupValue:   markupValue,
			Computed:      price,
		}
	}
	return price, nil
}

// ToMinorUnits converts a major-unit amount to minor units, rounding half away from zero
func ToMinorUnits(major decimal.Decimal) int64 {
	return major.Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts minor units to a major-unit decimal
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
