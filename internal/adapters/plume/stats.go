package plume

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/plumescan/plumescan/internal/domain/dedupe"
	"github.com/plumescan/plumescan/pkg/logger"
)

// ScanOptions tunes the whole-network stats scan.
type ScanOptions struct {
	// ProbeStart is the offset the tail probe starts from; anything below
	// is assumed active.
	ProbeStart int
	// BatchSize is the page width of one scan batch.
	BatchSize int
	// Workers bounds concurrent scan batches.
	Workers int
	// Supply is the season token supply used for the per-XP quotient.
	Supply int64
	// PriceSymbol selects the quote to look up; empty skips the lookup.
	PriceSymbol string
}

// NetworkStats summarizes the active wallet population.
type NetworkStats struct {
	TotalWallets int      `json:"totalWallets"`
	TotalXP      int64    `json:"totalXp"`
	AvgXP        float64  `json:"avgXp"`
	TokenPerXP   float64  `json:"tokenPerXp"`
	TokenPrice   *float64 `json:"tokenPrice"`
	Supply       int64    `json:"supply"`
}

// ScanNetwork estimates the active population size with a tail probe,
// then scans all wallets in parallel batches, deduplicating and summing
// XP. The price lookup is best effort: a missing key or a failed quote
// leaves TokenPrice nil rather than failing the scan.
func (c *Client) ScanNetwork(ctx context.Context, opts ScanOptions) (NetworkStats, error) {
	lastActive, err := c.lastActiveOffset(ctx, opts.ProbeStart)
	if err != nil {
		return NetworkStats{}, err
	}
	total := lastActive + 1

	deduper := dedupe.NewInMemoryDeduper(dedupe.WithInitialCapacity(total))
	var mu sync.Mutex
	var totalXP int64
	var walletCount int

	p := pool.New().WithMaxGoroutines(opts.Workers)
	for start := 0; start < total; start += opts.BatchSize {
		count := opts.BatchSize
		if start+count > total {
			count = total - start
		}
		p.Go(func() {
			rows, err := c.fetchPage(ctx, start, count)
			if err != nil {
				c.logger.Warn(ctx, "stats batch failed; skipping",
					logger.Int("offset", start),
					logger.Error(err),
				)
				return
			}
			var batchXP int64
			var batchWallets int
			for _, row := range rows {
				if row.TotalXP <= 0 {
					continue
				}
				if deduper.SeenAndRecord(ctx, strings.ToLower(row.WalletAddress)) {
					continue
				}
				batchXP += row.TotalXP
				batchWallets++
			}
			mu.Lock()
			totalXP += batchXP
			walletCount += batchWallets
			mu.Unlock()
		})
	}
	p.Wait()

	stats := NetworkStats{
		TotalWallets: walletCount,
		TotalXP:      totalXP,
		Supply:       opts.Supply,
	}
	if walletCount > 0 {
		stats.AvgXP = float64(totalXP) / float64(walletCount)
	}
	if totalXP > 0 {
		stats.TokenPerXP = float64(opts.Supply) / float64(totalXP)
	}

	if opts.PriceSymbol != "" {
		if price, err := c.FetchPrice(ctx, opts.PriceSymbol); err == nil {
			stats.TokenPrice = &price
		} else {
			c.logger.Warn(ctx, "price lookup failed", logger.Error(err))
		}
	}

	return stats, nil
}

// lastActiveOffset finds the highest offset whose row still has XP > 0.
// A coarse linear stride narrows the window, then a binary search pins
// the exact boundary; both probe with single-row pages.
func (c *Client) lastActiveOffset(ctx context.Context, probeStart int) (int, error) {
	if probeStart < 0 {
		probeStart = 0
	}
	step := c.pageSize
	offset := probeStart
	lastActive := probeStart

	for {
		active, err := c.probeActive(ctx, offset)
		if err != nil {
			if offset == probeStart {
				return 0, fmt.Errorf("%w: %w", ErrProbeFailed, err)
			}
			break
		}
		if !active {
			break
		}
		lastActive = offset
		offset += step
	}

	low, high := lastActive, lastActive+step
	for low <= high {
		mid := (low + high) / 2
		active, err := c.probeActive(ctx, mid)
		if err != nil {
			break
		}
		if active {
			lastActive = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}

	return lastActive, nil
}

// probeActive reports whether the row at offset has a positive score.
func (c *Client) probeActive(ctx context.Context, offset int) (bool, error) {
	rows, err := c.fetchPageOnce(ctx, offset, 1)
	if err != nil {
		return false, err
	}
	return len(rows) > 0 && rows[0].TotalXP > 0, nil
}

// priceResponse mirrors the CoinMarketCap quotes payload.
type priceResponse struct {
	Data map[string]struct {
		Quote map[string]struct {
			Price float64 `json:"price"`
		} `json:"quote"`
	} `json:"data"`
}

// FetchPrice looks up the USD quote for symbol. Requires a configured
// price URL and API key.
func (c *Client) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	if c.priceURL == "" || c.priceAPIKey == "" {
		return 0, ErrPriceDisabled
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("convert", "USD")

	header := http.Header{}
	header.Set("X-CMC_PRO_API_KEY", c.priceAPIKey)

	var out priceResponse
	if err := c.getJSON(ctx, c.priceURL+"?"+q.Encode(), header, &out); err != nil {
		return 0, fmt.Errorf("price quote %s: %w", symbol, err)
	}

	quote, ok := out.Data[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: no quote for %s", ErrMalformedBody, symbol)
	}
	usd, ok := quote.Quote["USD"]
	if !ok {
		return 0, fmt.Errorf("%w: no USD quote for %s", ErrMalformedBody, symbol)
	}
	return usd.Price, nil
}
