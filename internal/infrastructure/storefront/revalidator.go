// Package storefront notifies the public storefront that cached catalog pages are stale.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrRevalidateFailed is returned when the storefront rejects or misses a revalidation
var ErrRevalidateFailed = errors.New("storefront: revalidation failed")

// CatalogTags are invalidated after a catalog sync changed rows
var CatalogTags = []string{"products", "inventory", "pricing"}

const defaultTimeout = 5 * time.Second

// Revalidator posts cache tags to the storefront revalidation endpoint.
// It implements dropship.StorefrontNotifier.
type Revalidator struct {
	url        string
	secret     string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ dropship.StorefrontNotifier = (*Revalidator)(nil)

// NewRevalidator returns nil when url is empty so callers can skip notification
func NewRevalidator(url, secret string, timeout time.Duration, logger *zap.Logger) *Revalidator {
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Revalidator{
		url:        url,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type revalidateRequest struct {
	Tags   []string `json:"tags"`
	Secret string   `json:"secret,omitempty"`
}

// CatalogChanged invalidates product, inventory and pricing pages
func (r *Revalidator) CatalogChanged(ctx context.Context, supplierID uuid.UUID) error {
	if err := r.Revalidate(ctx, CatalogTags...); err != nil {
		return err
	}
	r.logger.Debug("Storefront revalidated", zap.String("supplier_id", supplierID.String()))
	return nil
}

// Revalidate posts tags to the storefront
func (r *Revalidator) Revalidate(ctx context.Context, tags ...string) error {
	body, err := json.Marshal(revalidateRequest{Tags: tags, Secret: r.secret})
	if err != nil {
		return fmt.Errorf("failed to encode revalidation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRevalidateFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRevalidateFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrRevalidateFailed, resp.StatusCode)
	}
	return nil
}
