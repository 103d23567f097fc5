package dedupe

// Default deduper configuration constants.
const (
	defaultInitialCapacity = 100_000
)

type options struct {
	initialCapacity int
}

// Option applies a configuration option to the deduper.
type Option func(*options)

// WithInitialCapacity pre-sizes the seen set for an expected wallet count.
func WithInitialCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.initialCapacity = capacity
		}
	}
}
