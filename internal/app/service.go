// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/plumescan/plumescan/internal/adapters/plume"
	"github.com/plumescan/plumescan/internal/config"
	"github.com/plumescan/plumescan/internal/domain/model"
	"github.com/plumescan/plumescan/internal/pipeline"
	"github.com/plumescan/plumescan/pkg/logger"
)

// priceSymbol selects the token quote for the network-stats scan.
const priceSymbol = "PLUME"

// Service wires the upstream client and the pipeline orchestrator behind
// the HTTP API. Every stream request gets its own pipeline run; runs share
// the client's connection pool but nothing mutable.
type Service struct {
	mu sync.RWMutex

	cfg    *config.Config
	client *plume.Client
	orch   *pipeline.Orchestrator

	// State
	started    bool
	totalRuns  atomic.Int64
	activeRuns atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the service configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: config.New(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the upstream client and the orchestrator.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if err := s.cfg.Validate(); err != nil {
		return fmt.Errorf("service config: %w", err)
	}

	s.logger.Info(ctx, "starting scan service...")

	s.client = plume.NewClient(
		plume.WithLeaderboardURL(s.cfg.LeaderboardURL),
		plume.WithTotalsURL(s.cfg.TotalsURL),
		plume.WithPriceLookup(s.cfg.PriceURL, s.cfg.PriceAPIKey),
		plume.WithUserAgent(s.cfg.UserAgent),
		plume.WithPageSize(s.cfg.PageSize),
		plume.WithRangeWorkers(s.cfg.RangeWorkers, s.cfg.RangeSize),
		plume.WithRequestTimeout(time.Duration(s.cfg.RequestTimeoutSecs)*time.Second),
		plume.WithRateLimit(s.cfg.RateLimit),
		plume.WithLogger(s.logger.Named("plume")),
	)

	s.orch = pipeline.NewOrchestrator(
		s.client,
		s.client,
		pipeline.WithBatchSize(s.cfg.BatchSize),
		pipeline.WithTopK(s.cfg.TopK),
		pipeline.WithConcurrency(s.cfg.Concurrency),
		pipeline.WithFastApproximate(s.cfg.FastApproximate),
		pipeline.WithLogger(s.logger.Named("pipeline")),
	)

	s.started = true
	s.logger.Info(ctx, "scan service started",
		logger.Int("pageSize", s.cfg.PageSize),
		logger.Int("concurrency", s.cfg.Concurrency),
		logger.Int("topK", s.cfg.TopK),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping scan service...")
	s.started = false
	s.logger.Info(context.Background(), "scan service stopped")
}

// StreamTopEarners starts one pipeline run and returns its progress
// stream. The caller consumes events until the terminal one; abandoning
// the stream abandons the run with it.
func (s *Service) StreamTopEarners(ctx context.Context) *pipeline.Stream {
	stream := pipeline.NewStream(
		pipeline.WithBufferSize(s.cfg.StreamBufferSize),
		pipeline.WithPollTimeout(time.Duration(s.cfg.PollTimeoutSecs)*time.Second),
	)

	s.totalRuns.Add(1)
	s.activeRuns.Add(1)
	go func() {
		defer s.activeRuns.Add(-1)
		s.orch.Run(ctx, stream)
	}()

	return stream
}

// TopEarners is the synchronous fallback: it runs the pipeline to
// completion, discards progress events and returns the top-K directly.
func (s *Service) TopEarners(ctx context.Context) ([]model.GainRecord, error) {
	stream := s.StreamTopEarners(ctx)
	for {
		e, ok := stream.Next(ctx)
		if !ok {
			return nil, fmt.Errorf("%w: stream ended without terminal event", pipeline.ErrRunFailed)
		}
		switch e.Type {
		case model.EventCompleted:
			return e.Results, nil
		case model.EventError:
			return nil, fmt.Errorf("%w: %s", pipeline.ErrRunFailed, e.Message)
		case model.EventProgress:
			// drop; the caller only wants the final result
		}
	}
}

// NetworkStats scans the whole active population and summarizes it.
func (s *Service) NetworkStats(ctx context.Context) (plume.NetworkStats, error) {
	symbol := ""
	if s.cfg.PriceAPIKey != "" {
		symbol = priceSymbol
	}
	return s.client.ScanNetwork(ctx, plume.ScanOptions{
		ProbeStart:  s.cfg.StatsProbeStart,
		BatchSize:   s.cfg.StatsBatchSize,
		Workers:     s.cfg.StatsWorkers,
		Supply:      s.cfg.TokenSupply,
		PriceSymbol: symbol,
	})
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":     s.started,
		"pageSize":    s.cfg.PageSize,
		"concurrency": s.cfg.Concurrency,
		"batchSize":   s.cfg.BatchSize,
		"topK":        s.cfg.TopK,
		"totalRuns":   s.totalRuns.Load(),
		"activeRuns":  s.activeRuns.Load(),
	}
}
