// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Validation happens at load time, before any network call is made.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// LeaderboardURL is the upstream paginated leaderboard endpoint.
	LeaderboardURL string `koanf:"leaderboard_url"`

	// TotalsURL is the upstream per-wallet points-total endpoint.
	TotalsURL string `koanf:"totals_url"`

	// PriceURL and PriceAPIKey configure the optional token price lookup
	// used by the network-stats scan. An empty key disables the lookup.
	PriceURL    string `koanf:"price_url"`
	PriceAPIKey string `koanf:"price_api_key"`

	// UserAgent is sent on every upstream request.
	UserAgent string `koanf:"user_agent"`

	// PageSize sets how many rows one leaderboard page requests.
	PageSize int `koanf:"page_size"`

	// Concurrency caps in-flight delta fetches for one pipeline run.
	Concurrency int `koanf:"concurrency"`

	// RequestTimeoutSecs bounds every single upstream request.
	RequestTimeoutSecs int `koanf:"request_timeout_secs"`

	// BatchSize partitions the ranked set for delta fetching; one progress
	// event is emitted per completed batch.
	BatchSize int `koanf:"batch_size"`

	// TopK sets how many gain records the terminal event carries.
	TopK int `koanf:"top_k"`

	// RangeWorkers > 1 enables parallel disjoint-range leaderboard fetching;
	// RangeSize is the width of each range.
	RangeWorkers int `koanf:"range_workers"`
	RangeSize    int `koanf:"range_size"`

	// FastApproximate stops collecting once TopK records arrived in
	// completion order. Off by default: the true top-K needs the full set.
	FastApproximate bool `koanf:"fast_approximate"`

	// RateLimit caps upstream delta requests per second. 0 disables the limiter.
	RateLimit float64 `koanf:"rate_limit"`

	// StreamBufferSize bounds the per-run progress event stream.
	StreamBufferSize int `koanf:"stream_buffer_size"`

	// PollTimeoutSecs is the consumer-side poll interval for the done check.
	PollTimeoutSecs int `koanf:"poll_timeout_secs"`

	// Network-stats scan tuning.
	StatsProbeStart int   `koanf:"stats_probe_start"`
	StatsBatchSize  int   `koanf:"stats_batch_size"`
	StatsWorkers    int   `koanf:"stats_workers"`
	TokenSupply     int64 `koanf:"token_supply"`
}

// New creates a Config with defaults. Upstream tunables follow the values
// observed in production scans of the portal API.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9090",
		LeaderboardURL:     "https://portal-api.plume.org/api/v1/stats/leaderboard",
		TotalsURL:          "https://portal-api.plume.org/api/v1/stats/pp-totals",
		PriceURL:           "https://pro-api.coinmarketcap.com/v1/cryptocurrency/quotes/latest",
		PriceAPIKey:        "",
		UserAgent:          "plume-fast-scan/1.0",
		PageSize:           10_000,
		Concurrency:        250,
		RequestTimeoutSecs: 30,
		BatchSize:          5_000,
		TopK:               20,
		RangeWorkers:       1,
		RangeSize:          50_000,
		FastApproximate:    false,
		RateLimit:          0,
		StreamBufferSize:   4_096,
		PollTimeoutSecs:    5,
		StatsProbeStart:    240_000,
		StatsBatchSize:     20_000,
		StatsWorkers:       8,
		TokenSupply:        150_000_000,
	}
}
