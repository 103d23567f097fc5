package pipeline

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrNoWallets = errors.New("no wallets with positive XP")
	ErrRunFailed = errors.New("pipeline run failed")
)
