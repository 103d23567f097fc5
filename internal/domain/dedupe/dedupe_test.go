package dedupe_test

import (
	"context"
	"sync"
	"testing"

	"github.com/plumescan/plumescan/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a fresh deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithInitialCapacity(16))
		ctx := context.Background()

		Convey("When recording a new wallet", func() {
			seen := d.SeenAndRecord(ctx, "0xabc")

			Convey("Then it reports unseen and is counted", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And recording it again reports seen without growing", func() {
				So(d.SeenAndRecord(ctx, "0xabc"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When many goroutines record the same wallet", func() {
			const workers = 32
			var wg sync.WaitGroup
			var firstCount sync.Map
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					if !d.SeenAndRecord(ctx, "0xshared") {
						firstCount.Store(n, true)
					}
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one goroutine wins the record", func() {
				wins := 0
				firstCount.Range(func(_, _ any) bool {
					wins++
					return true
				})
				So(wins, ShouldEqual, 1)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}
