// Package dedupe defines wallet deduplication for merged range fetches.
//
// Parallel sub-range fetches of the leaderboard may overlap at the edges;
// a wallet must never be double-ranked or double-fetched downstream. A
// Deduper is scoped to one pipeline run and never shared across runs.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen wallet IDs to suppress duplicates.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Size returns the number of distinct IDs recorded so far.
	Size() int64
}

// inMemoryDeduper implements Deduper with a mutex-guarded set. Entries
// live for one pipeline run, so there is no eviction.
type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
	size atomic.Int64
}

// NewInMemoryDeduper creates a run-scoped in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}

	cfg := options{initialCapacity: defaultInitialCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}

	d.seen = make(map[string]struct{}, cfg.initialCapacity)
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

// Size returns the number of distinct IDs recorded so far.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
