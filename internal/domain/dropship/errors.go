package dropship

import (
	"fmt"

	"github.com/erp/dropship/internal/domain/shared"
)

// Supplier registry errors
var (
	ErrDuplicateCode     = shared.NewDomainError("DUPLICATE_CODE", "Supplier code already exists")
	ErrHasActiveProducts = shared.NewDomainError("HAS_ACTIVE_PRODUCTS", "Supplier has active products")
	ErrHasPendingOrders  = shared.NewDomainError("HAS_PENDING_ORDERS", "Supplier has orders that are not yet shipped")
	ErrDuplicateSKU      = shared.NewDomainError("DUPLICATE_SKU", "Supplier already offers this SKU")
)

// Sync errors
var (
	ErrSyncDisabled = shared.NewDomainError("SYNC_DISABLED", "Sync is disabled for this supplier")
	ErrNoEndpoint   = shared.NewDomainError("NO_ENDPOINT", "No feed endpoint configured for this supplier")
	ErrFetchFailed  = shared.NewDomainError("FETCH_ERROR", "Failed to fetch supplier catalog")
	ErrPersistence  = shared.NewDomainError("PERSISTENCE_ERROR", "Failed to persist supplier product")
)

// Materialization errors
var (
	ErrAlreadyMaterialized = shared.NewDomainError("ALREADY_MATERIALIZED", "Supplier product is already linked to a catalog product")
	ErrHandleConflict      = shared.NewDomainError("HANDLE_CONFLICT", "Catalog handle belongs to another supplier product")
)

// Order errors
var (
	ErrDuplicateOrder        = shared.NewDomainError("DUPLICATE_ORDER", "Supplier order already exists for this order")
	ErrUnknownOrder          = shared.NewDomainError("UNKNOWN_ORDER", "Order does not exist")
	ErrInvalidTransition     = shared.NewDomainError("INVALID_TRANSITION", "Invalid supplier order status transition")
	ErrOrderNotDispatchable  = shared.NewDomainError("ORDER_NOT_DISPATCHABLE", "Supplier order cannot be sent to the supplier")
	ErrMissingDispatchConfig = shared.NewDomainError("MISSING_DISPATCH_CONFIG", "Supplier has no order API credentials")
)

// FetchError is returned when a supplier feed could not be retrieved or decoded.
// It matches ErrFetchFailed with errors.Is.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: HTTP %d", e.Endpoint, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("fetch %s failed", e.Endpoint)
	}
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Err}
}

// PersistenceError wraps a storage failure for a single catalog row.
type PersistenceError struct {
	SKU string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.SKU, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPersistence}
	}
	return []error{ErrPersistence, e.Err}
}

func invalidTransition(from, to OrderStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
