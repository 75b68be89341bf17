package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is empty or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a whitelisted ORDER BY clause
func orderClause(orderBy, orderDir string, allowed map[string]bool, defaultField string) string {
	return ValidateSortField(orderBy, allowed, defaultField) + " " + ValidateSortOrder(orderDir)
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"code":           true,
	"name":           true,
	"country":        true,
	"last_sync_at":   true,
	"products_count": true,
	"orders_count":   true,
	"total_revenue":  true,
}

// SupplierProductSortFields contains allowed sort fields for supplier products
var SupplierProductSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"supplier_sku":   true,
	"name":           true,
	"supplier_price": true,
	"supplier_stock": true,
	"selling_price":  true,
	"sync_status":    true,
	"last_sync_at":   true,
}

// SupplierOrderSortFields contains allowed sort fields for supplier orders
var SupplierOrderSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"order_id":       true,
	"status":         true,
	"supplier_total": true,
	"your_margin":    true,
	"sent_at":        true,
	"delivered_at":   true,
}
