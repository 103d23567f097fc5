package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/plumescan/plumescan/internal/adapters/plume"
	"github.com/plumescan/plumescan/internal/domain/model"
	"github.com/plumescan/plumescan/internal/pipeline"
	"github.com/plumescan/plumescan/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// fakeReader returns a fixed snapshot.
type fakeReader struct {
	entries []model.Entry
}

func (r *fakeReader) FetchAll(_ context.Context) []model.Entry {
	return r.entries
}

// fakeFetcher derives deterministic deltas from the wallet suffix and can
// fail selected wallets.
type fakeFetcher struct {
	gains   map[string]int64
	failing map[string]bool
}

func (f *fakeFetcher) FetchDelta(_ context.Context, wallet string) (plume.Delta, error) {
	if f.failing[wallet] {
		return plume.Delta{}, errors.New("simulated timeout")
	}
	gain := f.gains[wallet]
	return plume.Delta{
		Wallet: wallet,
		Active: 1_000_000 + gain,
		Prev:   1_000_000,
		Gain:   gain,
	}, nil
}

// drain collects every event until the stream terminates.
func drain(ctx context.Context, s *pipeline.Stream) []model.ProgressEvent {
	var events []model.ProgressEvent
	for {
		e, ok := s.Next(ctx)
		if !ok {
			return events
		}
		events = append(events, e)
		if e.Terminal() {
			return events
		}
	}
}

func synthetic(n int) ([]model.Entry, map[string]int64) {
	entries := make([]model.Entry, n)
	gains := make(map[string]int64, n)
	for i := 0; i < n; i++ {
		wallet := fmt.Sprintf("0x%04d", i)
		entries[i] = model.Entry{Wallet: wallet, TotalXP: int64(n - i)}
		// Coprime multiplier keeps every gain distinct.
		gains[wallet] = int64((i * 7919) % 99991)
	}
	return entries, gains
}

func newStream() *pipeline.Stream {
	return pipeline.NewStream(
		pipeline.WithBufferSize(4096),
		pipeline.WithPollTimeout(20*time.Millisecond),
	)
}

func TestOrchestratorTopK(t *testing.T) {
	Convey("Given 1000 wallets with known distinct gains", t, func() {
		entries, gains := synthetic(1000)
		o := pipeline.NewOrchestrator(
			&fakeReader{entries: entries},
			&fakeFetcher{gains: gains},
			pipeline.WithBatchSize(64),
			pipeline.WithConcurrency(32),
			pipeline.WithTopK(20),
		)

		Convey("When running the pipeline", func() {
			stream := newStream()
			o.Run(context.Background(), stream)
			events := drain(context.Background(), stream)
			final := events[len(events)-1]

			Convey("Then the terminal event carries the 20 highest gains, descending", func() {
				So(final.Type, ShouldEqual, model.EventCompleted)
				So(len(final.Results), ShouldEqual, 20)

				expected := make([]int64, 0, len(gains))
				for _, g := range gains {
					expected = append(expected, g)
				}
				sort.Slice(expected, func(i, j int) bool { return expected[i] > expected[j] })

				for i, rec := range final.Results {
					So(rec.Gain, ShouldEqual, expected[i])
				}
			})

			Convey("And every record keeps the rank from the snapshot sort", func() {
				So(final.Type, ShouldEqual, model.EventCompleted)
				for _, rec := range final.Results {
					// Entries were generated in descending XP order, so the
					// wallet index is its rank minus one.
					So(rec.Wallet, ShouldEqual, fmt.Sprintf("0x%04d", rec.Rank-1))
				}
			})
		})
	})
}

func TestOrchestratorFailSoft(t *testing.T) {
	Convey("Given 500 wallets where one delta fetch times out", t, func() {
		entries, gains := synthetic(500)
		o := pipeline.NewOrchestrator(
			&fakeReader{entries: entries},
			&fakeFetcher{gains: gains, failing: map[string]bool{"0x0042": true}},
			pipeline.WithBatchSize(100),
			pipeline.WithConcurrency(50),
			pipeline.WithTopK(20),
		)

		Convey("When running the pipeline", func() {
			stream := newStream()
			o.Run(context.Background(), stream)
			events := drain(context.Background(), stream)
			final := events[len(events)-1]

			Convey("Then the run still completes", func() {
				So(final.Type, ShouldEqual, model.EventCompleted)
			})

			Convey("And no error event was ever published", func() {
				for _, e := range events {
					So(e.Type, ShouldNotEqual, model.EventError)
				}
			})

			Convey("And progress still reaches the full wallet count", func() {
				last := events[len(events)-2]
				So(last.Type, ShouldEqual, model.EventProgress)
				So(last.Completed, ShouldEqual, 500)
				So(last.Total, ShouldEqual, 500)
			})
		})
	})
}

func TestOrchestratorProgress(t *testing.T) {
	Convey("Given a pipeline over several batches", t, func() {
		entries, gains := synthetic(350)
		o := pipeline.NewOrchestrator(
			&fakeReader{entries: entries},
			&fakeFetcher{gains: gains},
			pipeline.WithBatchSize(100),
			pipeline.WithConcurrency(25),
			pipeline.WithTopK(10),
		)

		Convey("When running and draining all events", func() {
			stream := newStream()
			o.Run(context.Background(), stream)
			events := drain(context.Background(), stream)

			Convey("Then completed counts are monotonically non-decreasing", func() {
				prev := 0
				for _, e := range events {
					if e.Type != model.EventProgress {
						continue
					}
					So(e.Completed, ShouldBeGreaterThanOrEqualTo, prev)
					prev = e.Completed
				}
			})

			Convey("And the final progress value equals the wallet total", func() {
				var lastProgress model.ProgressEvent
				for _, e := range events {
					if e.Type == model.EventProgress {
						lastProgress = e
					}
				}
				So(lastProgress.Completed, ShouldEqual, 350)
				So(lastProgress.Percent, ShouldEqual, 100)
			})

			Convey("And exactly one terminal event ends the stream", func() {
				So(events[len(events)-1].Terminal(), ShouldBeTrue)
				for _, e := range events[:len(events)-1] {
					So(e.Terminal(), ShouldBeFalse)
				}
			})
		})
	})
}

func TestOrchestratorNoData(t *testing.T) {
	Convey("Given an upstream with an empty leaderboard", t, func() {
		o := pipeline.NewOrchestrator(
			&fakeReader{},
			&fakeFetcher{gains: map[string]int64{}},
		)

		Convey("When running the pipeline", func() {
			stream := newStream()
			o.Run(context.Background(), stream)
			events := drain(context.Background(), stream)

			Convey("Then exactly one error event is emitted and nothing else", func() {
				So(len(events), ShouldEqual, 1)
				So(events[0].Type, ShouldEqual, model.EventError)
				So(events[0].Message, ShouldContainSubstring, "no wallets")
			})
		})
	})
}

func TestOrchestratorFastApproximate(t *testing.T) {
	Convey("Given fast-approximate mode with a small K", t, func() {
		entries, gains := synthetic(1000)
		o := pipeline.NewOrchestrator(
			&fakeReader{entries: entries},
			&fakeFetcher{gains: gains},
			pipeline.WithBatchSize(50),
			pipeline.WithConcurrency(10),
			pipeline.WithTopK(20),
			pipeline.WithFastApproximate(true),
		)

		Convey("When running the pipeline", func() {
			stream := newStream()
			o.Run(context.Background(), stream)
			events := drain(context.Background(), stream)
			final := events[len(events)-1]

			Convey("Then it completes after the first batch that covers K", func() {
				So(final.Type, ShouldEqual, model.EventCompleted)
				So(len(final.Results), ShouldEqual, 20)

				progressEvents := 0
				for _, e := range events {
					if e.Type == model.EventProgress {
						progressEvents++
					}
				}
				So(progressEvents, ShouldEqual, 1)
			})
		})
	})
}
