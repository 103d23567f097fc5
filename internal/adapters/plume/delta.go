package plume

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/plumescan/plumescan/pkg/metrics"
)

// Delta is the per-wallet join result from the points-total endpoint.
// Gain may be negative.
type Delta struct {
	Wallet string
	Active int64
	Prev   int64
	Gain   int64
}

// totalsResponse mirrors the portal pp-totals payload.
type totalsResponse struct {
	Data struct {
		PPScores struct {
			ActiveXP xpBucket `json:"activeXp"`
			PrevXP   xpBucket `json:"prevXp"`
		} `json:"ppScores"`
	} `json:"data"`
}

type xpBucket struct {
	TotalXP int64 `json:"totalXp"`
}

// FetchDelta retrieves the current and previous score for one wallet and
// computes the gain. Timeouts, non-200 statuses and malformed bodies come
// back as errors; the orchestrator decides the fail policy. No retries
// here: batch-level retry is the orchestrator's concern and blind retries
// amplify load on a rate-sensitive upstream.
func (c *Client) FetchDelta(ctx context.Context, wallet string) (Delta, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Delta{}, fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	defer func() {
		metrics.RecordDeltaFetchLatency(float64(time.Since(start).Milliseconds()))
	}()
	metrics.RecordDeltaFetch()

	q := url.Values{}
	q.Set("walletAddress", wallet)

	var out totalsResponse
	if err := c.getJSON(ctx, c.totalsURL+"?"+q.Encode(), nil, &out); err != nil {
		metrics.RecordDeltaFetchError()
		metrics.RecordErrorByComponent("delta", "fetch_error")
		return Delta{}, fmt.Errorf("delta fetch %s: %w", wallet, err)
	}

	active := out.Data.PPScores.ActiveXP.TotalXP
	prev := out.Data.PPScores.PrevXP.TotalXP
	return Delta{
		Wallet: wallet,
		Active: active,
		Prev:   prev,
		Gain:   active - prev,
	}, nil
}
