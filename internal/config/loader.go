package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if PLUMESCAN_CONFIG is set
//  3. env (prefix PLUMESCAN_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PLUMESCAN_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PLUMESCAN_ADDR, PLUMESCAN_PAGE_SIZE, ...
	// Map env keys like PLUMESCAN_PAGE_SIZE -> page_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PLUMESCAN_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "plumescan_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unusable tunables before any network call is made.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LeaderboardURL == "":
		return fmt.Errorf("%w: leaderboard_url must not be empty", ErrInvalidConfig)
	case c.TotalsURL == "":
		return fmt.Errorf("%w: totals_url must not be empty", ErrInvalidConfig)
	case c.PageSize < 1:
		return fmt.Errorf("%w: page_size must be positive", ErrInvalidConfig)
	case c.Concurrency < 1:
		return fmt.Errorf("%w: concurrency must be positive", ErrInvalidConfig)
	case c.RequestTimeoutSecs < 1:
		return fmt.Errorf("%w: request_timeout_secs must be positive", ErrInvalidConfig)
	case c.BatchSize < 1:
		return fmt.Errorf("%w: batch_size must be positive", ErrInvalidConfig)
	case c.TopK < 1:
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidConfig)
	case c.RangeWorkers < 1:
		return fmt.Errorf("%w: range_workers must be positive", ErrInvalidConfig)
	case c.RangeWorkers > 1 && c.RangeSize < 1:
		return fmt.Errorf("%w: range_size must be positive when range_workers > 1", ErrInvalidConfig)
	case c.RateLimit < 0:
		return fmt.Errorf("%w: rate_limit must not be negative", ErrInvalidConfig)
	case c.StreamBufferSize < 1:
		return fmt.Errorf("%w: stream_buffer_size must be positive", ErrInvalidConfig)
	case c.PollTimeoutSecs < 1:
		return fmt.Errorf("%w: poll_timeout_secs must be positive", ErrInvalidConfig)
	case c.StatsBatchSize < 1:
		return fmt.Errorf("%w: stats_batch_size must be positive", ErrInvalidConfig)
	case c.StatsWorkers < 1:
		return fmt.Errorf("%w: stats_workers must be positive", ErrInvalidConfig)
	}
	return nil
}
