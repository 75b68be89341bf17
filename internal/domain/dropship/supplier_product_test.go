package dropship

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSupplier(t *testing.T) *Supplier {
	t.Helper()
	s, err := NewSupplier("Acme", "ACME")
	require.NoError(t, err)
	return s
}

func TestNewSupplierProductFromFeed(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("uses commission rate as percentage markup", func(t *testing.T) {
		s := newTestSupplier(t)
		require.NoError(t, s.SetTerms(decimal.NewFromInt(25), 0, 3, ""))
		s.SetFlags(true, true, true)

		p, warning := NewSupplierProductFromFeed(s, CatalogRow{SKU: "X-1", Price: 10000, Stock: 4}, now)
		assert.Nil(t, warning)
		assert.Equal(t, MarkupPercentage, p.MarkupType)
		assert.True(t, p.MarkupValue.Equal(decimal.NewFromInt(25)))
		assert.Equal(t, int64(12500), p.SellingPrice)
		assert.True(t, p.IsActive)
		assert.Equal(t, SyncStatusSynced, p.SyncStatus)
		assert.Equal(t, now, *p.LastSyncAt)
		assert.Nil(t, p.ProductID)
	})

	t.Run("falls back to 20 percent and hidden", func(t *testing.T) {
		s := newTestSupplier(t)
		p, _ := NewSupplierProductFromFeed(s, CatalogRow{SKU: "X-2", Price: 1000, Stock: -3}, now)
		assert.True(t, p.MarkupValue.Equal(decimal.NewFromInt(20)))
		assert.False(t, p.IsActive)
		assert.Equal(t, int64(0), p.SupplierStock)
	})
}

func TestSupplierProduct_ApplyFeedRow(t *testing.T) {
	s := newTestSupplier(t)
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p, _ := NewSupplierProductFromFeed(s, CatalogRow{SKU: "X-1", Price: 1000, Stock: 1}, first)
	p.SyncStatus = SyncStatusError
	p.SyncError = "boom"

	t.Run("same price records no event", func(t *testing.T) {
		p.ApplyFeedRow(CatalogRow{SKU: "X-1", Price: 1000, Stock: 2}, first.Add(time.Hour))
		assert.Empty(t, p.GetDomainEvents())
		assert.Equal(t, int64(2), p.SupplierStock)
		assert.Equal(t, SyncStatusSynced, p.SyncStatus)
		assert.Empty(t, p.SyncError)
	})

	t.Run("price change records event and reprices", func(t *testing.T) {
		later := first.Add(2 * time.Hour)
		p.ApplyFeedRow(CatalogRow{SKU: "X-1", Price: 2000, Stock: 2}, later)

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*PriceChangedEvent)
		require.True(t, ok)
		assert.Equal(t, int64(1000), evt.OldPrice)
		assert.Equal(t, int64(2000), evt.NewPrice)
		assert.Equal(t, int64(2400), p.SellingPrice)
		assert.Equal(t, later, *p.LastSyncAt)
	})
}

func TestNewManualSupplierProduct(t *testing.T) {
	s := newTestSupplier(t)

	p, warning, err := NewManualSupplierProduct(s, " M-1 ", 500, 3, MarkupFixed, ptrDecimal("2.5"))
	require.NoError(t, err)
	assert.Nil(t, warning)
	assert.Equal(t, "M-1", p.SupplierSKU)
	assert.Equal(t, SyncStatusPending, p.SyncStatus)
	assert.Equal(t, int64(750), p.SellingPrice)

	_, _, err = NewManualSupplierProduct(s, "", 500, 0, "", nil)
	assert.Error(t, err)
	_, _, err = NewManualSupplierProduct(s, "M-2", 500, 0, MarkupType("bogus"), nil)
	assert.Error(t, err)

	_, warning, err = NewManualSupplierProduct(s, "M-3", 500, 0, MarkupPercentage, ptrDecimal("-200"))
	require.NoError(t, err)
	assert.NotNil(t, warning)
}

func TestSupplierProduct_LinkProduct(t *testing.T) {
	s := newTestSupplier(t)
	p, _ := NewSupplierProductFromFeed(s, CatalogRow{SKU: "X-1", Price: 1000}, time.Now())

	require.NoError(t, p.LinkProduct("prod_1", 1200, time.Now()))
	assert.True(t, p.IsLinked())
	assert.True(t, p.IsActive)

	assert.ErrorIs(t, p.LinkProduct("prod_2", 1200, time.Now()), ErrAlreadyMaterialized)
	assert.Equal(t, "prod_1", *p.ProductID)
}

func ptrDecimal(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}
