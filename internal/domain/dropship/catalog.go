package dropship

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CatalogRow is one normalized entry of a supplier feed
type CatalogRow struct {
	SKU   string
	Name  string
	Price int64
	Stock int64
}

// CatalogFeed is the result of one successful fetch
type CatalogFeed struct {
	Endpoint  string
	Rows      []CatalogRow
	Raw       []byte
	FetchedAt time.Time
}

// EndpointSource tells where a feed endpoint came from
type EndpointSource string

const (
	EndpointOverride EndpointSource = "override"
	EndpointRouting  EndpointSource = "routing"
)

// FeedEndpoint is a resolved feed location with its credentials
type FeedEndpoint struct {
	URL         string
	BearerToken string
	Source      EndpointSource
}

// FeedRoutes maps supplier codes to feed URLs sharing one API key
type FeedRoutes struct {
	urls   map[string]string
	apiKey string
}

// NewFeedRoutes builds a routing table; codes are normalized
func NewFeedRoutes(urls map[string]string, apiKey string) FeedRoutes {
	normalized := make(map[string]string, len(urls))
	for code, u := range urls {
		normalized[NormalizeCode(code)] = u
	}
	return FeedRoutes{urls: normalized, apiKey: apiKey}
}

// Resolve picks the supplier's own api_url when set, then the routing table entry for its code.
// Routed URLs carry the shared key in the "key" query parameter.
func (r FeedRoutes) Resolve(s *Supplier) (FeedEndpoint, error) {
	if s.APIURL != "" {
		return FeedEndpoint{URL: s.APIURL, BearerToken: s.APIKey, Source: EndpointOverride}, nil
	}
	raw, ok := r.urls[NormalizeCode(s.Code)]
	if !ok || raw == "" {
		return FeedEndpoint{}, ErrNoEndpoint
	}
	if r.apiKey == "" {
		return FeedEndpoint{URL: raw, Source: EndpointRouting}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return FeedEndpoint{}, ErrNoEndpoint
	}
	q := u.Query()
	q.Set("key", r.apiKey)
	u.RawQuery = q.Encode()
	return FeedEndpoint{URL: u.String(), Source: EndpointRouting}, nil
}

// RowError describes a single failed row of a batch
type RowError struct {
	SKU     string
	Message string
}

// SyncReport is the outcome of reconciling one supplier feed
type SyncReport struct {
	SupplierID   uuid.UUID
	SupplierCode string
	Created      int
	Updated      int
	Errors       int
	RowErrors    []RowError
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Changed reports whether any row was written
func (r *SyncReport) Changed() bool {
	return r.Created+r.Updated > 0
}

// MaterializeReport is the outcome of one materialization batch
type MaterializeReport struct {
	SupplierID uuid.UUID
	Created    int
	Errors     int
	Remaining  int64
	RowErrors  []RowError
}

// MaterializeBatchLimit caps rows promoted per invocation
const MaterializeBatchLimit = 100

var handleUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Handle builds the catalog handle for a supplier SKU. It depends only on code and SKU.
// Distinct SKUs may share a handle after slugging; see UniqueHandle.
func Handle(code, sku string) string {
	raw := strings.ToLower(NormalizeCode(code) + "-" + sku)
	return strings.Trim(handleUnsafe.ReplaceAllString(raw, "-"), "-")
}

var handleNamespace = uuid.MustParse("5b0c6c1e-8f4e-4d8a-9a57-3c1f0e2d7b44")

// UniqueHandle is Handle suffixed with a digest of the exact SKU. It is used when
// the plain handle already belongs to another supplier product.
func UniqueHandle(code, sku string) string {
	digest := uuid.NewSHA1(handleNamespace, []byte(NormalizeCode(code)+"/"+sku))
	return Handle(code, sku) + "-" + strings.ReplaceAll(digest.String(), "-", "")[:8]
}

// VariantSKU is the catalog variant SKU for a supplier SKU
func VariantSKU(code, sku string) string {
	return NormalizeCode(code) + "-" + sku
}

// SyncResult is one supplier's outcome within a multi-supplier run
type SyncResult struct {
	SupplierID   uuid.UUID
	SupplierCode string
	Report       *SyncReport
	Err          error
}

// Failed reports whether the supplier sync aborted
func (r SyncResult) Failed() bool {
	return r.Err != nil
}
