package supplierfeed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/shopspring/decimal"
)

// ErrMalformedFeed is returned when a feed body is not valid JSON
var ErrMalformedFeed = errors.New("supplierfeed: malformed feed")

// itemKeys are probed in order on a top-level object
var itemKeys = []string{"products", "items", "data"}

// ParseCatalog extracts catalog rows from a supplier feed body.
//
// The body is either an array of items or an object carrying the items under
// "products", "items" or "data" (first non-null key wins). A chosen value that
// is not an array yields no rows. Items without a usable SKU are skipped.
// Anything after the first JSON value makes the body malformed.
func ParseCatalog(body []byte) ([]dropship.CatalogRow, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFeed, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after feed value", ErrMalformedFeed)
	}

	var items []any
	switch v := root.(type) {
	case []any:
		items = v
	case map[string]any:
		for _, key := range itemKeys {
			raw, ok := v[key]
			if !ok || raw == nil {
				continue
			}
			items, _ = raw.([]any)
			break
		}
	}

	rows := make([]dropship.CatalogRow, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		row, ok := parseRow(obj)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(obj map[string]any) (dropship.CatalogRow, bool) {
	sku := firstString(obj, "sku", "code", "id")
	if sku == "" {
		return dropship.CatalogRow{}, false
	}

	row := dropship.CatalogRow{SKU: sku}
	if name, ok := obj["name"].(string); ok {
		row.Name = strings.TrimSpace(name)
	}
	if price, ok := toDecimal(obj["price"]); ok {
		row.Price = dropship.ToMinorUnits(price)
	}
	for _, key := range []string{"stock", "quantity"} {
		if qty, ok := toDecimal(obj[key]); ok {
			row.Stock = max(qty.Round(0).IntPart(), 0)
			break
		}
	}
	return row, true
}

// firstString returns the first non-empty identifier among keys.
// Numbers are rendered without exponent.
func firstString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			if d, err := decimal.NewFromString(v.String()); err == nil {
				return d.String()
			}
			return v.String()
		}
	}
	return ""
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	}
	return decimal.Zero, false
}
