package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/plumescan/plumescan/internal/domain/model"
	"github.com/plumescan/plumescan/pkg/metrics"
)

// Default stream configuration constants.
const (
	defaultStreamBuffer = 4_096
	defaultPollTimeout  = 5 * time.Second
)

// Stream is the single-producer, single-consumer progress channel of one
// pipeline run. Events arrive in emission order and none is dropped: a
// saturated buffer blocks the producer instead.
//
// The producer marks completion through an explicit done flag set exactly
// once after the terminal event. The consumer must never infer completion
// from buffer emptiness alone; Next polls with a bounded timeout and
// checks the flag after every idle interval.
type Stream struct {
	events      chan model.ProgressEvent
	done        atomic.Bool
	pollTimeout time.Duration
}

// StreamOption applies a configuration option to a Stream.
type StreamOption func(*Stream)

// WithBufferSize bounds the in-flight event buffer.
func WithBufferSize(size int) StreamOption {
	return func(s *Stream) {
		if size > 0 {
			s.events = make(chan model.ProgressEvent, size)
		}
	}
}

// WithPollTimeout sets the consumer-side idle interval between done checks.
func WithPollTimeout(timeout time.Duration) StreamOption {
	return func(s *Stream) {
		if timeout > 0 {
			s.pollTimeout = timeout
		}
	}
}

// NewStream creates a progress stream with configuration options.
func NewStream(opts ...StreamOption) *Stream {
	s := &Stream{
		events:      make(chan model.ProgressEvent, defaultStreamBuffer),
		pollTimeout: defaultPollTimeout,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Publish enqueues one event, blocking while the buffer is full. Returns
// false only when ctx ends before the event is accepted.
func (s *Stream) Publish(ctx context.Context, e model.ProgressEvent) bool {
	select {
	case s.events <- e:
		metrics.RecordProgressEvent()
		return true
	case <-ctx.Done():
		metrics.RecordStreamDropped()
		return false
	}
}

// Finish publishes the terminal event and then sets the done flag. It must
// be called exactly once, after all progress events.
func (s *Stream) Finish(ctx context.Context, terminal model.ProgressEvent) {
	s.Publish(ctx, terminal)
	s.done.Store(true)
}

// Done reports whether the producer has finished.
func (s *Stream) Done() bool {
	return s.done.Load()
}

// Next blocks for the next event. It returns ok=false when the stream is
// finished and drained, or when ctx ends. On every poll timeout it
// re-checks the done flag so an abandoned consumer never hangs forever.
func (s *Stream) Next(ctx context.Context) (model.ProgressEvent, bool) {
	timer := time.NewTimer(s.pollTimeout)
	defer timer.Stop()

	for {
		select {
		case e := <-s.events:
			return e, true
		case <-ctx.Done():
			return model.ProgressEvent{}, false
		case <-timer.C:
			if s.done.Load() && len(s.events) == 0 {
				return model.ProgressEvent{}, false
			}
			timer.Reset(s.pollTimeout)
		}
	}
}

// Len returns the number of buffered events.
func (s *Stream) Len() int {
	return len(s.events)
}
