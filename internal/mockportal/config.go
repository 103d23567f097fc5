package mockportal

import "time"

// Config holds configuration for the mock portal server.
type Config struct {
	Addr      string        // Listen address
	Wallets   int           // Size of the synthetic population
	Latency   time.Duration // Artificial latency added to every response
	ErrorRate float64       // Fraction of requests answered with 502
	Verbose   bool          // Enable request logging
}

// Wallet is one synthetic account with its current and previous totals.
type Wallet struct {
	Address  string
	ActiveXP int64
	PrevXP   int64
}
