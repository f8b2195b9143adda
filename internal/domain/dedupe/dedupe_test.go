package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/workpulse/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			So(d, ShouldNotBeNil)
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When recording fingerprints", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the fingerprint is new", func() {
				id, seen := d.SeenAndRecord(ctx, "fp-1", "analysis-1")

				Convey("Then it is recorded under the given id", func() {
					So(seen, ShouldBeFalse)
					So(id, ShouldEqual, "analysis-1")
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the fingerprint was already seen", func() {
				d.SeenAndRecord(ctx, "fp-1", "analysis-1")
				id, seen := d.SeenAndRecord(ctx, "fp-1", "analysis-2")

				Convey("Then the first analysis id is returned", func() {
					So(seen, ShouldBeTrue)
					So(id, ShouldEqual, "analysis-1")
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When unrecording fingerprints", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the fingerprint exists", func() {
				d.SeenAndRecord(ctx, "fp-1", "analysis-1")
				d.Unrecord(ctx, "fp-1")

				Convey("Then it can be recorded again with a new id", func() {
					So(d.Size(), ShouldEqual, 0)
					id, seen := d.SeenAndRecord(ctx, "fp-1", "analysis-2")
					So(seen, ShouldBeFalse)
					So(id, ShouldEqual, "analysis-2")
				})
			})

			Convey("And the fingerprint doesn't exist", func() {
				d.Unrecord(ctx, "nonexistent")
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When using bounded mode with eviction", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for i := 1; i <= 3; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("fp-%d", i), fmt.Sprintf("a-%d", i))
			}

			Convey("And a recently used fingerprint is touched before overflow", func() {
				_, seen := d.SeenAndRecord(ctx, "fp-1", "ignored")
				So(seen, ShouldBeTrue)
				d.SeenAndRecord(ctx, "fp-4", "a-4")

				Convey("Then the least recently used one is evicted", func() {
					So(d.Size(), ShouldEqual, 3)
					id, seen := d.SeenAndRecord(ctx, "fp-1", "other")
					So(seen, ShouldBeTrue)
					So(id, ShouldEqual, "a-1")

					_, seen = d.SeenAndRecord(ctx, "fp-2", "a-2b")
					So(seen, ShouldBeFalse)
				})
			})
		})

		Convey("When using unbounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			const n = 1000
			for i := 0; i < n; i++ {
				_, seen := d.SeenAndRecord(ctx, fmt.Sprintf("fp-%d", i), "a")
				So(seen, ShouldBeFalse)
			}

			Convey("Then all fingerprints are kept", func() {
				So(d.Size(), ShouldEqual, int64(n))
				_, seen := d.SeenAndRecord(ctx, "fp-0", "b")
				So(seen, ShouldBeTrue)
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper with concurrent access", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const numGoroutines = 10

		Convey("When many goroutines race on the same fingerprint", func() {
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
				ids   = map[string]struct{}{}
			)
			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					id, seen := d.SeenAndRecord(context.Background(), "same", fmt.Sprintf("a-%d", i))
					mu.Lock()
					defer mu.Unlock()
					if !seen {
						fresh++
					}
					ids[id] = struct{}{}
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one caller records it and all see the same id", func() {
				So(fresh, ShouldEqual, 1)
				So(len(ids), ShouldEqual, 1)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}
