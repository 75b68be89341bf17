package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound     = "ERR_NOT_FOUND"
	ErrCodeUnknownOrder = "ERR_UNKNOWN_ORDER"
	ErrCodeConflict     = "ERR_CONFLICT"
)

// Supplier registry error codes
const (
	ErrCodeDuplicateCode     = "ERR_DUPLICATE_CODE"
	ErrCodeDuplicateSKU      = "ERR_DUPLICATE_SKU"
	ErrCodeHasActiveProducts = "ERR_HAS_ACTIVE_PRODUCTS"
	ErrCodeHasPendingOrders  = "ERR_HAS_PENDING_ORDERS"
)

// Catalog error codes
const (
	// ErrCodeSyncDisabled is used when a sync is requested for a supplier with sync switched off
	ErrCodeSyncDisabled = "ERR_SYNC_DISABLED"
	// ErrCodeNoEndpoint is used when no feed URL resolves for a supplier
	ErrCodeNoEndpoint = "ERR_NO_ENDPOINT"
	// ErrCodeFetchFailed is used when the supplier's feed could not be retrieved
	ErrCodeFetchFailed = "ERR_FETCH_FAILED"
	// ErrCodePersistence is used when a catalog row could not be stored
	ErrCodePersistence = "ERR_PERSISTENCE"
	// ErrCodeAlreadyMaterialized is used when a supplier product already has a listing
	ErrCodeAlreadyMaterialized = "ERR_ALREADY_MATERIALIZED"
	// ErrCodeHandleConflict is used when every candidate handle is owned by another listing
	ErrCodeHandleConflict = "ERR_HANDLE_CONFLICT"
)

// Supplier order error codes
const (
	ErrCodeDuplicateOrder        = "ERR_DUPLICATE_ORDER"
	ErrCodeInvalidState          = "ERR_INVALID_STATE"
	ErrCodeInvalidTransition     = "ERR_INVALID_TRANSITION"
	ErrCodeOrderNotDispatchable  = "ERR_ORDER_NOT_DISPATCHABLE"
	ErrCodeMissingDispatchConfig = "ERR_MISSING_DISPATCH_CONFIG"
)

// Scheduler error codes
const (
	ErrCodeSchedulerUnavailable = "ERR_SCHEDULER_UNAVAILABLE"
	ErrCodeQueueFull            = "ERR_QUEUE_FULL"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	// Resource errors
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeUnknownOrder: http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,

	// Duplicates and deletion guards -> 409 Conflict
	ErrCodeDuplicateCode:       http.StatusConflict,
	ErrCodeDuplicateSKU:        http.StatusConflict,
	ErrCodeDuplicateOrder:      http.StatusConflict,
	ErrCodeHasActiveProducts:   http.StatusConflict,
	ErrCodeHasPendingOrders:    http.StatusConflict,
	ErrCodeAlreadyMaterialized: http.StatusConflict,
	ErrCodeHandleConflict:      http.StatusConflict,

	// Preconditions and transitions -> 422 Unprocessable Entity
	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodeSyncDisabled:          http.StatusUnprocessableEntity,
	ErrCodeNoEndpoint:            http.StatusUnprocessableEntity,
	ErrCodeInvalidTransition:     http.StatusUnprocessableEntity,
	ErrCodeOrderNotDispatchable:  http.StatusUnprocessableEntity,
	ErrCodeMissingDispatchConfig: http.StatusUnprocessableEntity,

	// Upstream and storage failures
	ErrCodeFetchFailed: http.StatusBadGateway,
	ErrCodePersistence: http.StatusInternalServerError,

	// Scheduler
	ErrCodeSchedulerUnavailable: http.StatusServiceUnavailable,
	ErrCodeQueueFull:            http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 400 for unmapped validation codes raised by the domain, 500 otherwise
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if _, ok := validationCodes[code]; ok {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_STATE":           ErrCodeInvalidState,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"DUPLICATE_CODE":          ErrCodeDuplicateCode,
	"DUPLICATE_SKU":           ErrCodeDuplicateSKU,
	"HAS_ACTIVE_PRODUCTS":     ErrCodeHasActiveProducts,
	"HAS_PENDING_ORDERS":      ErrCodeHasPendingOrders,
	"SYNC_DISABLED":           ErrCodeSyncDisabled,
	"NO_ENDPOINT":             ErrCodeNoEndpoint,
	"FETCH_ERROR":             ErrCodeFetchFailed,
	"PERSISTENCE_ERROR":       ErrCodePersistence,
	"ALREADY_MATERIALIZED":    ErrCodeAlreadyMaterialized,
	"HANDLE_CONFLICT":         ErrCodeHandleConflict,
	"DUPLICATE_ORDER":         ErrCodeDuplicateOrder,
	"UNKNOWN_ORDER":           ErrCodeUnknownOrder,
	"INVALID_TRANSITION":      ErrCodeInvalidTransition,
	"ORDER_NOT_DISPATCHABLE":  ErrCodeOrderNotDispatchable,
	"MISSING_DISPATCH_CONFIG": ErrCodeMissingDispatchConfig,
}

// validationCodes are domain codes rejecting a single field value
var validationCodes = map[string]struct{}{
	"INVALID_NAME":            {},
	"INVALID_CODE":            {},
	"INVALID_API_FORMAT":      {},
	"INVALID_SYNC_FREQUENCY":  {},
	"INVALID_COMMISSION_RATE": {},
	"INVALID_LEAD_TIME":       {},
	"INVALID_MIN_ORDER_VALUE": {},
	"INVALID_SKU":             {},
	"INVALID_PRICE":           {},
	"INVALID_MARKUP_TYPE":     {},
	"INVALID_ORDER_ID":        {},
	"INVALID_AMOUNT":          {},
	"INVALID_ITEM":            {},
}

// NormalizeErrorCode converts a domain error code to the API format
// If the code is already in the API format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
