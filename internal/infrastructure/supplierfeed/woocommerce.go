package supplierfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
)

// WooCommerce errors
var (
	ErrWooCommerceRequestFailed = errors.New("woocommerce: request failed")
	ErrWooCommerceBadResponse   = errors.New("woocommerce: unexpected response")
)

const (
	wooAPIPath         = "/wp-json/wc/v3"
	wooDefaultCountry  = "PL"
	wooOrderStatus     = "processing"
	wooBillingEmail    = "dropship@localhost"
	wooDropshipMetaKey = "_dropship_order"
)

// WooCommerceDispatcher places supplier orders in a supplier's WooCommerce store.
// It implements dropship.OrderDispatcher.
type WooCommerceDispatcher struct {
	httpClient *http.Client
}

// NewWooCommerceDispatcher creates a dispatcher with the given request timeout
func NewWooCommerceDispatcher(timeout time.Duration) *WooCommerceDispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &WooCommerceDispatcher{httpClient: &http.Client{Timeout: timeout}}
}

// wooCredentials are parsed from a supplier's api_url and api_key ("key:secret")
type wooCredentials struct {
	storeURL string
	key      string
	secret   string
}

func credentialsFor(s *dropship.Supplier) (wooCredentials, error) {
	key, secret, ok := strings.Cut(s.APIKey, ":")
	if !ok || key == "" || secret == "" {
		return wooCredentials{}, dropship.ErrMissingDispatchConfig
	}
	store := strings.TrimSuffix(strings.TrimRight(s.APIURL, "/"), wooAPIPath)
	if _, err := url.ParseRequestURI(store); err != nil || store == "" {
		return wooCredentials{}, dropship.ErrMissingDispatchConfig
	}
	return wooCredentials{storeURL: store, key: key, secret: secret}, nil
}

type wooAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
}

type wooLineItem struct {
	ProductID int64  `json:"product_id,omitempty"`
	Name      string `json:"name,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Quantity  int    `json:"quantity"`
}

type wooMeta struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type wooOrderRequest struct {
	Status       string        `json:"status"`
	Shipping     wooAddress    `json:"shipping"`
	Billing      wooAddress    `json:"billing"`
	LineItems    []wooLineItem `json:"line_items"`
	CustomerNote string        `json:"customer_note"`
	MetaData     []wooMeta     `json:"meta_data"`
}

type wooOrderResponse struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
}

// Dispatch creates a processing order in the supplier's store and returns the remote order id.
// Items whose SKU is unknown to the store are sent as custom line items.
func (d *WooCommerceDispatcher) Dispatch(ctx context.Context, s *dropship.Supplier, o *dropship.SupplierOrder, order *dropship.ExternalOrder) (string, error) {
	creds, err := credentialsFor(s)
	if err != nil {
		return "", err
	}

	lines := make([]wooLineItem, 0, len(o.Items))
	for _, item := range o.Items {
		productID, err := d.findProductBySKU(ctx, creds, item.SKU)
		if err != nil {
			return "", err
		}
		if productID != 0 {
			lines = append(lines, wooLineItem{ProductID: productID, Quantity: item.Quantity})
			continue
		}
		name := item.Name
		if name == "" {
			name = item.SKU
		}
		lines = append(lines, wooLineItem{Name: name, SKU: item.SKU, Quantity: item.Quantity})
	}

	shipping := shippingFor(order)
	billing := shipping
	billing.Address2 = ""
	billing.Email = wooBillingEmail

	reference := o.OrderID
	if order != nil && order.DisplayID != "" {
		reference = order.DisplayID
	}

	payload := wooOrderRequest{
		Status:       wooOrderStatus,
		Shipping:     shipping,
		Billing:      billing,
		LineItems:    lines,
		CustomerNote: fmt.Sprintf("Dropship order #%s", reference),
		MetaData:     []wooMeta{{Key: wooDropshipMetaKey, Value: "yes"}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("woocommerce: encode order: %w", err)
	}

	respBody, err := d.doRequest(ctx, creds, http.MethodPost, creds.storeURL+wooAPIPath+"/orders", body)
	if err != nil {
		return "", err
	}

	var created wooOrderResponse
	if err := json.Unmarshal(respBody, &created); err != nil || created.ID == 0 {
		return "", fmt.Errorf("%w: missing order id", ErrWooCommerceBadResponse)
	}
	return strconv.FormatInt(created.ID, 10), nil
}

// findProductBySKU returns 0 when the store has no product with that SKU
func (d *WooCommerceDispatcher) findProductBySKU(ctx context.Context, creds wooCredentials, sku string) (int64, error) {
	endpoint := creds.storeURL + wooAPIPath + "/products?sku=" + url.QueryEscape(sku)
	body, err := d.doRequest(ctx, creds, http.MethodGet, endpoint, nil)
	if err != nil {
		if errors.Is(err, ErrWooCommerceRequestFailed) {
			return 0, nil
		}
		return 0, err
	}
	var products []struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &products); err != nil || len(products) == 0 {
		return 0, nil
	}
	return products[0].ID, nil
}

func (d *WooCommerceDispatcher) doRequest(ctx context.Context, creds wooCredentials, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to create request: %w", err)
	}
	req.SetBasicAuth(creds.key, creds.secret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("woocommerce: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("woocommerce: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrWooCommerceRequestFailed, resp.StatusCode)
	}
	return body, nil
}

func shippingFor(order *dropship.ExternalOrder) wooAddress {
	addr := wooAddress{Country: wooDefaultCountry}
	if order == nil || order.Shipping == nil {
		return addr
	}
	sh := order.Shipping
	addr.FirstName = sh.FirstName
	addr.LastName = sh.LastName
	addr.Address1 = sh.Address1
	addr.Address2 = sh.Address2
	addr.City = sh.City
	addr.Postcode = sh.PostalCode
	addr.Phone = sh.Phone
	if sh.CountryCode != "" {
		addr.Country = strings.ToUpper(sh.CountryCode)
	}
	return addr
}
