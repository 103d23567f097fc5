package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plumescan/plumescan/internal/mockportal"
)

// Default configuration constants.
const (
	defaultAddr    = ":9091"
	defaultWallets = 250000
	defaultLatency = 0 * time.Millisecond
)

func main() {
	var (
		addr      = flag.String("addr", defaultAddr, "Listen address")
		wallets   = flag.Int("wallets", defaultWallets, "Number of synthetic wallets to generate")
		latency   = flag.Duration("latency", defaultLatency, "Artificial latency per response")
		errorRate = flag.Float64("error-rate", 0, "Fraction of requests answered with 502")
		verbose   = flag.Bool("verbose", false, "Enable request logging")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := mockportal.NewServer(&mockportal.Config{
		Addr:      *addr,
		Wallets:   *wallets,
		Latency:   *latency,
		ErrorRate: *errorRate,
		Verbose:   *verbose,
	})

	if err := srv.Run(ctx); err != nil {
		os.Stderr.WriteString("mock portal failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
