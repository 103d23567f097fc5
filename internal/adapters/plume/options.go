package plume

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/plumescan/plumescan/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithLeaderboardURL sets the paginated leaderboard endpoint.
func WithLeaderboardURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.leaderboardURL = url
		}
	}
}

// WithTotalsURL sets the per-wallet points-total endpoint.
func WithTotalsURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.totalsURL = url
		}
	}
}

// WithPriceLookup sets the token price endpoint and API key. An empty key
// disables the lookup.
func WithPriceLookup(url, apiKey string) Option {
	return func(c *Client) {
		c.priceURL = url
		c.priceAPIKey = apiKey
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithPageSize sets how many rows one leaderboard page requests.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithRangeWorkers enables parallel disjoint-range fetching when workers > 1.
// rangeSize is the width of every range except the unbounded last one.
func WithRangeWorkers(workers, rangeSize int) Option {
	return func(c *Client) {
		if workers > 0 {
			c.rangeWorkers = workers
		}
		if rangeSize > 0 {
			c.rangeSize = rangeSize
		}
	}
}

// WithMaxRetries bounds page-fetch retry attempts.
func WithMaxRetries(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.maxRetries = retries
		}
	}
}

// WithRequestTimeout bounds every single upstream request.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client, e.g. for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit caps upstream requests per second. Zero disables the limiter.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
