package mockportal

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"sort"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	addressBytes       = 20
	archetypeDivisor   = 5
)

// XP ranges per wallet archetype.
const (
	whaleMin   = 1_000_000
	whaleRange = 9_000_000

	grinderMin   = 100_000
	grinderRange = 900_000

	activeMin   = 10_000
	activeRange = 90_000

	casualMin   = 1_000
	casualRange = 9_000

	dustMin   = 1
	dustRange = 999
)

// Constants for archetype cases.
const (
	caseWhale   = 0
	caseGrinder = 1
	caseActive  = 2
	caseCasual  = 3
	caseDust    = 4
)

// Gain fractions of the current total, scaled by gainDivisor.
const (
	gainDivisor     = 100
	maxGainPercent  = 15
	lossPercent     = 5
	lossProbability = 0.1
	idleProbability = 0.2
	zeroXPFraction  = 0.02
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt64 returns a random int64 in [min, min+span).
func getRandomInt64(min, span int64) int64 {
	if span <= 0 {
		return min
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(span))
	return min + n.Int64()
}

// randomAddress generates one 0x-prefixed lowercase hex address.
func randomAddress() string {
	buf := make([]byte, addressBytes)
	_, _ = rand.Read(buf)
	return "0x" + hex.EncodeToString(buf)
}

// GeneratePopulation builds a synthetic wallet population whose score
// distribution roughly follows the live portal: a few whales, a long tail
// of small accounts, and a slice of zero-XP stragglers at the bottom.
func GeneratePopulation(count int) []Wallet {
	wallets := make([]Wallet, 0, count)

	for i := 0; i < count; i++ {
		var active int64
		switch int(getRandomFloat() * archetypeDivisor) {
		case caseWhale:
			active = getRandomInt64(whaleMin, whaleRange)
		case caseGrinder:
			active = getRandomInt64(grinderMin, grinderRange)
		case caseActive:
			active = getRandomInt64(activeMin, activeRange)
		case caseCasual:
			active = getRandomInt64(casualMin, casualRange)
		default:
			active = getRandomInt64(dustMin, dustRange)
		}

		// A small fraction of accounts registered but never earned.
		if getRandomFloat() < zeroXPFraction {
			active = 0
		}

		wallets = append(wallets, Wallet{
			Address:  randomAddress(),
			ActiveXP: active,
			PrevXP:   previousTotal(active),
		})
	}

	// The live leaderboard is score-sorted, descending.
	sort.Slice(wallets, func(i, j int) bool {
		return wallets[i].ActiveXP > wallets[j].ActiveXP
	})
	return wallets
}

// previousTotal derives the prior-window total for a current total. Most
// wallets gained a little, some lost, some did not move at all.
func previousTotal(active int64) int64 {
	if active == 0 {
		return 0
	}
	roll := getRandomFloat()
	switch {
	case roll < idleProbability:
		return active
	case roll < idleProbability+lossProbability:
		return active + active*lossPercent/gainDivisor
	default:
		gain := active * getRandomInt64(1, maxGainPercent) / gainDivisor
		return active - gain
	}
}
