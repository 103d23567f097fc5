// Package ranking assigns leaderboard positions from a full entry snapshot.
package ranking

import (
	"sort"

	"github.com/plumescan/plumescan/internal/domain/model"
)

// Rank sorts entries by TotalXP descending and returns a lookup from
// wallet to 1-based position. The sort is stable: ties keep the relative
// order the entries were fetched in. Pure function; the input slice is
// not mutated.
//
// Rank must run once per pipeline run, before any delta fetch starts, so
// that positions never depend on delta completion order.
func Rank(entries []model.Entry) map[string]int {
	sorted := Sort(entries)
	ranks := make(map[string]int, len(sorted))
	for i, e := range sorted {
		ranks[e.Wallet] = i + 1
	}
	return ranks
}

// Sort returns a new slice sorted by TotalXP descending, stable on ties.
func Sort(entries []model.Entry) []model.Entry {
	sorted := make([]model.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalXP > sorted[j].TotalXP
	})
	return sorted
}

// Apply pairs every entry with its position from a Rank lookup.
func Apply(entries []model.Entry, ranks map[string]int) []model.RankedEntry {
	ranked := make([]model.RankedEntry, len(entries))
	for i, e := range entries {
		ranked[i] = model.RankedEntry{Entry: e, Rank: ranks[e.Wallet]}
	}
	return ranked
}
