// Package plume is the HTTP adapter for the portal points API. It covers
// the paginated leaderboard endpoint, the per-wallet points-total endpoint
// and the optional token price lookup used by the network-stats scan.
package plume

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/plumescan/plumescan/pkg/logger"
)

// Default client configuration constants.
const (
	defaultPageSize       = 10_000
	defaultRequestTimeout = 30 * time.Second
	defaultMaxRetries     = 3
	defaultUserAgent      = "plume-fast-scan/1.0"
	maxRetryInterval      = 10 * time.Second
)

// Client talks to the portal API. One Client owns one connection pool;
// all requests of a pipeline run go through the same Client so in-flight
// connections stay bounded and are released together.
type Client struct {
	leaderboardURL string
	totalsURL      string
	priceURL       string
	priceAPIKey    string
	userAgent      string

	pageSize     int
	rangeWorkers int
	rangeSize    int
	maxRetries   int

	httpClient *http.Client
	limiter    *rate.Limiter

	logger logger.Logger
}

// NewClient creates a portal API client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		pageSize:     defaultPageSize,
		rangeWorkers: 1,
		rangeSize:    0,
		maxRetries:   defaultMaxRetries,
		userAgent:    defaultUserAgent,
		httpClient:   &http.Client{Timeout: defaultRequestTimeout},
		logger:       logger.Get().Named("plume"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// getJSON issues one GET with the configured user agent and decodes the
// body into out. Non-2xx statuses and malformed bodies are errors; the
// caller decides whether they abort or degrade.
func (c *Client) getJSON(ctx context.Context, url string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	return nil
}
