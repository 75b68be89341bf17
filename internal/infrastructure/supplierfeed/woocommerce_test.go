package supplierfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wooSupplier(t *testing.T, apiURL, apiKey string) *dropship.Supplier {
	t.Helper()
	s, err := dropship.NewSupplier("Hurtownia", "HURT")
	require.NoError(t, err)
	require.NoError(t, s.SetIntegration(apiURL, apiKey, dropship.APIFormatWooCommerce))
	return s
}

func wooOrder(t *testing.T, s *dropship.Supplier) *dropship.SupplierOrder {
	t.Helper()
	o, err := dropship.NewSupplierOrder(s, "order_01", 10000, 2000, []dropship.OrderItem{
		{SKU: "KNOWN", Quantity: 2},
		{SKU: "CUSTOM", Quantity: 1, Name: "Custom part"},
	})
	require.NoError(t, err)
	return o
}

func TestWooCommerceDispatcher_Dispatch(t *testing.T) {
	var created wooOrderRequest
	var user, pass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, _ = r.BasicAuth()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/wp-json/wc/v3/products":
			if r.URL.Query().Get("sku") == "KNOWN" {
				_, _ = w.Write([]byte(`[{"id":77}]`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		case r.Method == http.MethodPost && r.URL.Path == "/wp-json/wc/v3/orders":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":9001,"number":"9001"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	s := wooSupplier(t, server.URL+"/wp-json/wc/v3", "ck_key:cs_secret")
	external := &dropship.ExternalOrder{
		ID:        "order_01",
		DisplayID: "1042",
		Shipping: &dropship.ShippingAddress{
			FirstName: "Jan", LastName: "Kowalski", Address1: "Prosta 1", Address2: "m. 4",
			City: "Warszawa", PostalCode: "00-001", CountryCode: "pl", Phone: "+48123",
		},
	}

	remoteID, err := NewWooCommerceDispatcher(time.Second).Dispatch(context.Background(), s, wooOrder(t, s), external)
	require.NoError(t, err)
	assert.Equal(t, "9001", remoteID)

	assert.Equal(t, "ck_key", user)
	assert.Equal(t, "cs_secret", pass)
	assert.Equal(t, "processing", created.Status)
	assert.Equal(t, "PL", created.Shipping.Country)
	assert.Equal(t, "00-001", created.Shipping.Postcode)
	assert.Equal(t, "m. 4", created.Shipping.Address2)
	assert.Empty(t, created.Billing.Address2)
	assert.NotEmpty(t, created.Billing.Email)
	assert.Contains(t, created.CustomerNote, "#1042")
	require.Len(t, created.LineItems, 2)
	assert.Equal(t, wooLineItem{ProductID: 77, Quantity: 2}, created.LineItems[0])
	assert.Equal(t, wooLineItem{Name: "Custom part", SKU: "CUSTOM", Quantity: 1}, created.LineItems[1])
	assert.Equal(t, []wooMeta{{Key: "_dropship_order", Value: "yes"}}, created.MetaData)
}

func TestWooCommerceDispatcher_Failures(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		for _, key := range []string{"", "only-key", ":secret", "key:"} {
			s := wooSupplier(t, "https://store.example.com", key)
			_, err := NewWooCommerceDispatcher(time.Second).Dispatch(context.Background(), s, wooOrder(t, s), nil)
			assert.ErrorIs(t, err, dropship.ErrMissingDispatchConfig, key)
		}
	})

	t.Run("missing store url", func(t *testing.T) {
		s := wooSupplier(t, "", "k:s")
		_, err := NewWooCommerceDispatcher(time.Second).Dispatch(context.Background(), s, wooOrder(t, s), nil)
		assert.ErrorIs(t, err, dropship.ErrMissingDispatchConfig)
	})

	t.Run("store rejects the order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		s := wooSupplier(t, server.URL, "k:s")
		_, err := NewWooCommerceDispatcher(time.Second).Dispatch(context.Background(), s, wooOrder(t, s), nil)
		assert.ErrorIs(t, err, ErrWooCommerceRequestFailed)
	})

	t.Run("response without id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				_, _ = w.Write([]byte(`{}`))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		s := wooSupplier(t, server.URL, "k:s")
		_, err := NewWooCommerceDispatcher(time.Second).Dispatch(context.Background(), s, wooOrder(t, s), nil)
		assert.ErrorIs(t, err, ErrWooCommerceBadResponse)
	})
}
