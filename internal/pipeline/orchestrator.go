// Package pipeline drives the end-to-end scan: read the leaderboard, rank
// it, fan out delta fetches under a bounded pool, and stream progress plus
// a top-K result.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/plumescan/plumescan/internal/adapters/plume"
	"github.com/plumescan/plumescan/internal/domain/model"
	"github.com/plumescan/plumescan/internal/domain/ranking"
	"github.com/plumescan/plumescan/pkg/logger"
	"github.com/plumescan/plumescan/pkg/metrics"
)

// Default orchestrator configuration constants.
const (
	defaultBatchSize   = 5_000
	defaultTopK        = 20
	defaultConcurrency = 250
)

// State names one orchestrator phase.
type State string

// Run states. Failed is reachable from any state.
const (
	StateFetchingLeaderboard State = "fetching_leaderboard"
	StateRanking             State = "ranking"
	StateFetchingDeltas      State = "fetching_deltas"
	StateFinalizing          State = "finalizing"
	StateCompleted           State = "completed"
	StateFailed              State = "failed"
)

// Reader supplies the full deduplicated leaderboard snapshot.
type Reader interface {
	FetchAll(ctx context.Context) []model.Entry
}

// DeltaFetcher retrieves current and previous totals for one wallet.
type DeltaFetcher interface {
	FetchDelta(ctx context.Context, wallet string) (plume.Delta, error)
}

// Orchestrator runs the scan pipeline. One Orchestrator may serve many
// runs; each run owns its own stream, counters and rank map, so
// concurrent runs never interfere.
type Orchestrator struct {
	reader  Reader
	fetcher DeltaFetcher

	batchSize       int
	topK            int
	concurrency     int
	fastApproximate bool

	logger logger.Logger
}

// NewOrchestrator creates an orchestrator with configuration options.
func NewOrchestrator(reader Reader, fetcher DeltaFetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		reader:      reader,
		fetcher:     fetcher,
		batchSize:   defaultBatchSize,
		topK:        defaultTopK,
		concurrency: defaultConcurrency,
		logger:      logger.Get().Named("pipeline"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Run executes one pipeline run and publishes events into stream. The
// stream always terminates with exactly one completed or error event;
// panics from any stage surface as the error event, never as a silent
// hang.
func (o *Orchestrator) Run(ctx context.Context, stream *Stream) {
	runID := uuid.NewString()
	start := time.Now()
	state := StateFetchingLeaderboard

	metrics.RecordRunStarted()
	o.logger.Info(ctx, "pipeline run starting", logger.String("runID", runID))

	defer func() {
		if r := recover(); r != nil {
			metrics.RecordRunFailed()
			metrics.RecordErrorByComponent("pipeline", "panic")
			o.logger.Error(ctx, "pipeline run panicked",
				logger.String("runID", runID),
				logger.String("state", string(state)),
				logger.Any("panic", r),
			)
			stream.Finish(ctx, model.NewError(fmt.Sprintf("internal error in %s", state)))
		}
	}()

	entries := o.reader.FetchAll(ctx)
	if len(entries) == 0 {
		state = StateFailed
		metrics.RecordRunFailed()
		o.logger.Warn(ctx, "pipeline run failed: empty leaderboard", logger.String("runID", runID))
		stream.Finish(ctx, model.NewError("no wallets with positive XP found"))
		return
	}

	// Rank once, from the complete snapshot, before any delta fetch:
	// positions must never depend on delta completion order.
	state = StateRanking
	ranks := ranking.Rank(entries)
	sorted := ranking.Sort(entries)
	total := len(sorted)
	metrics.UpdateWalletsRanked(total)
	o.logger.Info(ctx, "leaderboard ranked",
		logger.String("runID", runID),
		logger.Int("wallets", total),
	)

	state = StateFetchingDeltas
	records := make([]model.GainRecord, 0, total)
	completed := 0

	for batchStart := 0; batchStart < total; batchStart += o.batchSize {
		batchEnd := batchStart + o.batchSize
		if batchEnd > total {
			batchEnd = total
		}
		batch := sorted[batchStart:batchEnd]

		records = append(records, o.fetchBatch(ctx, batch, ranks)...)
		completed += len(batch)
		stream.Publish(ctx, model.NewProgress(completed, total))

		// Approximate mode: stop once enough records arrived in completion
		// order. The true top-K needs the full set, so this is opt-in only.
		if o.fastApproximate && len(records) >= o.topK {
			o.logger.Info(ctx, "fast-approximate cutoff reached",
				logger.String("runID", runID),
				logger.Int("collected", len(records)),
			)
			break
		}
	}

	state = StateFinalizing
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Gain > records[j].Gain
	})
	k := o.topK
	if k > len(records) {
		k = len(records)
	}

	state = StateCompleted
	stream.Finish(ctx, model.NewCompleted(records[:k]))
	metrics.RecordRunCompleted(time.Since(start))
	o.logger.Info(ctx, "pipeline run completed",
		logger.String("runID", runID),
		logger.Int("wallets", total),
		logger.Duration("elapsed", time.Since(start)),
	)
}

// fetchBatch fans one batch out under the bounded pool and assembles gain
// records. Failed fetches follow the fail-zero policy: the wallet stays
// in the result with CurrentTotal 0 and Gain 0, so one flaky upstream
// response never terminates the run.
func (o *Orchestrator) fetchBatch(ctx context.Context, batch []model.Entry, ranks map[string]int) []model.GainRecord {
	start := time.Now()
	defer func() {
		metrics.RecordBatchLatency(float64(time.Since(start).Milliseconds()))
	}()

	out := make([]model.GainRecord, len(batch))
	p := pool.New().WithMaxGoroutines(o.concurrency)
	for i, entry := range batch {
		p.Go(func() {
			record := model.GainRecord{
				Wallet: entry.Wallet,
				Rank:   ranks[entry.Wallet],
			}
			if delta, err := o.fetcher.FetchDelta(ctx, entry.Wallet); err == nil {
				record.CurrentTotal = delta.Active
				record.Gain = delta.Gain
			} else {
				o.logger.Debug(ctx, "delta fetch failed; recording fail-zero",
					logger.String("wallet", entry.Wallet),
					logger.Error(err),
				)
			}
			out[i] = record
		})
	}
	p.Wait()
	return out
}
