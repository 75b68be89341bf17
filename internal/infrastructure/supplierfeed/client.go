package supplierfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/erp/dropship/internal/domain/dropship"
)

// maxResponseSize caps a feed body at 10MB
const maxResponseSize = 10 * 1024 * 1024

// ErrFeedTooLarge is returned when a feed body exceeds maxResponseSize
var ErrFeedTooLarge = errors.New("supplierfeed: response exceeds 10MB")

// DefaultTimeout applies when no fetch timeout is configured
const DefaultTimeout = 30 * time.Second

// Client downloads supplier catalog feeds over HTTP.
// It implements dropship.CatalogFetcher.
type Client struct {
	routes     dropship.FeedRoutes
	httpClient *http.Client
	now        func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClock overrides the fetch timestamp source
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a feed client over a routing table
func NewClient(routes dropship.FeedRoutes, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		routes:     routes,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve picks the feed endpoint for a supplier
func (c *Client) Resolve(s *dropship.Supplier) (dropship.FeedEndpoint, error) {
	return c.routes.Resolve(s)
}

// Fetch performs a single GET against the endpoint and parses the body.
// Every failure is reported as *dropship.FetchError.
func (c *Client) Fetch(ctx context.Context, endpoint dropship.FeedEndpoint) (*dropship.CatalogFeed, error) {
	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	rows, err := ParseCatalog(body)
	if err != nil {
		return nil, &dropship.FetchError{Endpoint: redact(endpoint.URL), Err: err}
	}

	return &dropship.CatalogFeed{
		Endpoint:  redact(endpoint.URL),
		Rows:      rows,
		Raw:       body,
		FetchedAt: c.now(),
	}, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint dropship.FeedEndpoint) ([]byte, error) {
	display := redact(endpoint.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.URL, nil)
	if err != nil {
		return nil, &dropship.FetchError{Endpoint: display, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if endpoint.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+endpoint.BearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the raw URL, key included
		var ue *url.Error
		if errors.As(err, &ue) {
			err = fmt.Errorf("%s: %w", ue.Op, ue.Err)
		}
		return nil, &dropship.FetchError{Endpoint: display, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &dropship.FetchError{Endpoint: display, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, &dropship.FetchError{Endpoint: display, Err: fmt.Errorf("read response: %w", err)}
	}
	if len(body) > maxResponseSize {
		return nil, &dropship.FetchError{Endpoint: display, Err: ErrFeedTooLarge}
	}
	return body, nil
}

// redact hides the shared key before an endpoint reaches logs or reports
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "***")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
