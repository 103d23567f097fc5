package plume

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sourcegraph/conc/pool"

	"github.com/plumescan/plumescan/internal/domain/dedupe"
	"github.com/plumescan/plumescan/internal/domain/model"
	"github.com/plumescan/plumescan/pkg/logger"
	"github.com/plumescan/plumescan/pkg/metrics"
)

// leaderboardResponse mirrors the portal leaderboard payload.
type leaderboardResponse struct {
	Data struct {
		Leaderboard []leaderboardRow `json:"leaderboard"`
	} `json:"data"`
}

type leaderboardRow struct {
	WalletAddress string `json:"walletAddress"`
	TotalXP       int64  `json:"totalXp"`
}

// FetchRange pages the leaderboard from start up to end (exclusive).
// end <= 0 means unbounded: page until the upstream runs out of data.
//
// Per page, rows with totalXp <= 0 are dropped but paging continues until
// an empty or short page; stopping at the first zero-score row would cut
// sub-ranges that do not start at offset 0. Wallet IDs are lowercased at
// this boundary.
//
// A page-fetch failure after the first page stops pagination and returns
// what was accumulated; a short result means "possibly incomplete", never
// an error. Callers treat an empty total result as upstream-unavailable.
func (c *Client) FetchRange(ctx context.Context, start, end int) []model.Entry {
	var entries []model.Entry
	offset := start

	for {
		count := c.pageSize
		if end > 0 && offset+count > end {
			count = end - offset
		}

		rows, err := c.fetchPage(ctx, offset, count)
		if err != nil {
			metrics.RecordPageFetchError()
			metrics.RecordErrorByComponent("reader", "page_error")
			c.logger.Warn(ctx, "leaderboard page fetch failed; returning partial range",
				logger.Int("offset", offset),
				logger.Int("accumulated", len(entries)),
				logger.Error(err),
			)
			return entries
		}
		metrics.RecordPageFetched()

		for _, row := range rows {
			if row.TotalXP <= 0 {
				continue
			}
			entries = append(entries, model.Entry{
				Wallet:  strings.ToLower(row.WalletAddress),
				TotalXP: row.TotalXP,
			})
		}

		// Termination order matters: empty page, bound reached, short page.
		if len(rows) == 0 {
			return entries
		}
		offset += count
		if end > 0 && offset >= end {
			return entries
		}
		if len(rows) < count {
			return entries
		}
	}
}

// FetchAll reads the whole active leaderboard. With one range worker this
// is a single unbounded sequential fetch; with more, disjoint ranges run
// in parallel and the last range is unbounded so the tail is never cut.
// Results are concatenated in range order and deduplicated by wallet.
func (c *Client) FetchAll(ctx context.Context) []model.Entry {
	if c.rangeWorkers <= 1 {
		return c.FetchRange(ctx, 0, 0)
	}

	ranges := make([][]model.Entry, c.rangeWorkers)
	p := pool.New().WithMaxGoroutines(c.rangeWorkers)
	for i := 0; i < c.rangeWorkers; i++ {
		start := i * c.rangeSize
		end := start + c.rangeSize
		if i == c.rangeWorkers-1 {
			end = 0 // last range is unbounded
		}
		p.Go(func() {
			ranges[i] = c.FetchRange(ctx, start, end)
		})
	}
	p.Wait()

	// Duplicate suppression is a hard invariant: a wallet must not be
	// double-ranked or double-fetched downstream.
	deduper := dedupe.NewInMemoryDeduper()
	var merged []model.Entry
	for _, r := range ranges {
		for _, e := range r {
			if deduper.SeenAndRecord(ctx, e.Wallet) {
				metrics.RecordWalletDeduped()
				continue
			}
			merged = append(merged, e)
		}
	}
	return merged
}

// fetchPage requests one leaderboard page with capped exponential backoff.
func (c *Client) fetchPage(ctx context.Context, offset, count int) ([]leaderboardRow, error) {
	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.MaxInterval = maxRetryInterval

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			sleep := backoffCfg.NextBackOff()
			if sleep == backoff.Stop {
				sleep = maxRetryInterval
			}
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("page fetch canceled: %w", ctx.Err())
			case <-time.After(sleep):
			}
		}

		rows, err := c.fetchPageOnce(ctx, offset, count)
		if err == nil {
			return rows, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (c *Client) fetchPageOnce(ctx context.Context, offset, count int) ([]leaderboardRow, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPageFetchLatency(float64(time.Since(start).Milliseconds()))
	}()

	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("count", strconv.Itoa(count))
	q.Set("overrideDay1Override", "false")
	q.Set("preview", "false")

	var out leaderboardResponse
	if err := c.getJSON(ctx, c.leaderboardURL+"?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("leaderboard page offset=%d: %w", offset, err)
	}
	return out.Data.Leaderboard, nil
}
