package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/workpulse/internal/adapters/repository"
	"github.com/okian/workpulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestLRUStore(t *testing.T) {
	defer goleak.VerifyNone(t)

	Convey("Given an LRU store with capacity 3", t, func() {
		ctx := context.Background()
		store := repository.NewLRUStore(ctx, repository.WithCapacity(3), repository.WithMetricsUpdateInterval(10*time.Millisecond))
		defer func() { _ = store.Close() }()

		Convey("When an analysis is saved", func() {
			So(store.Save(ctx, &model.Analysis{ID: "a", Status: model.StatusPending}), ShouldBeNil)

			Convey("Then it can be read back", func() {
				got, err := store.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, model.StatusPending)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then a later save replaces it", func() {
				So(store.Save(ctx, &model.Analysis{ID: "a", Status: model.StatusDone}), ShouldBeNil)
				got, _ := store.Get(ctx, "a")
				So(got.Status, ShouldEqual, model.StatusDone)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When an unknown id is requested", func() {
			_, err := store.Get(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When an analysis has no id", func() {
			So(errors.Is(store.Save(ctx, &model.Analysis{}), repository.ErrInvalidID), ShouldBeTrue)
			So(errors.Is(store.Save(ctx, nil), repository.ErrInvalidID), ShouldBeTrue)
		})

		Convey("When more analyses than the capacity are saved", func() {
			for i := 0; i < 4; i++ {
				So(store.Save(ctx, &model.Analysis{ID: fmt.Sprintf("a%d", i)}), ShouldBeNil)
			}

			Convey("Then the oldest is evicted", func() {
				So(store.Count(ctx), ShouldEqual, 3)
				_, err := store.Get(ctx, "a0")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then List returns the newest first", func() {
				list, err := store.List(ctx, 2)
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 2)
				So(list[0].ID, ShouldEqual, "a3")
				So(list[1].ID, ShouldEqual, "a2")
			})
		})

		Convey("When List is called with a non-positive limit", func() {
			_, err := store.List(ctx, 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
		})
	})
}
