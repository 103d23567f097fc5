package pipeline

import (
	"github.com/plumescan/plumescan/pkg/logger"
)

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithBatchSize partitions the ranked set for delta fetching.
func WithBatchSize(size int) Option {
	return func(o *Orchestrator) {
		if size > 0 {
			o.batchSize = size
		}
	}
}

// WithTopK sets how many gain records the terminal event carries.
func WithTopK(k int) Option {
	return func(o *Orchestrator) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithConcurrency caps in-flight delta fetches for one run.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithFastApproximate opts into the early-stop approximation.
func WithFastApproximate(enabled bool) Option {
	return func(o *Orchestrator) {
		o.fastApproximate = enabled
	}
}

// WithLogger sets a custom logger for the orchestrator.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}
