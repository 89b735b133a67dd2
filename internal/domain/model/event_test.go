package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/okian/penalty/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseOutcome(t *testing.T) {
	convey.Convey("Given raw outcome strings", t, func() {
		convey.Convey("When they name a recognized outcome", func() {
			for raw, want := range map[string]model.Outcome{"goal": model.Goal, " Saved ": model.Saved, "OUT": model.Out} {
				got, err := model.ParseOutcome(raw)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldEqual, want)
			}
		})

		convey.Convey("When the outcome is unknown", func() {
			_, err := model.ParseOutcome("post")

			convey.Convey("Then it is rejected rather than coerced", func() {
				convey.So(errors.Is(err, model.ErrInvalidOutcome), convey.ShouldBeTrue)
			})
		})
	})
}

func TestParseZone(t *testing.T) {
	convey.Convey("Given raw zone strings", t, func() {
		z, err := model.ParseZone("Top Left")
		convey.So(err, convey.ShouldBeNil)
		convey.So(z, convey.ShouldEqual, model.TopLeft)

		z, err = model.ParseZone("center_bottom")
		convey.So(err, convey.ShouldBeNil)
		convey.So(z, convey.ShouldEqual, model.CenterBottom)

		z, err = model.ParseZone("  ")
		convey.So(err, convey.ShouldBeNil)
		convey.So(z, convey.ShouldEqual, model.ZoneUnspecified)

		_, err = model.ParseZone("crossbar")
		convey.So(errors.Is(err, model.ErrInvalidZone), convey.ShouldBeTrue)
	})
}

func TestRole(t *testing.T) {
	convey.Convey("Given an event", t, func() {
		e, err := model.NewEvent(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "A", "K1", model.Goal, model.TopLeft)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then each role attributes it to exactly one actor", func() {
			convey.So(model.Shooter.Actor(e), convey.ShouldEqual, "A")
			convey.So(model.Keeper.Actor(e), convey.ShouldEqual, "K1")
			convey.So(model.Shooter.Opponent(e), convey.ShouldEqual, "K1")
			convey.So(model.Keeper.Opponent(e), convey.ShouldEqual, "A")
		})

		convey.Convey("And roles parse from their aliases", func() {
			r, err := model.ParseRole("Goalkeeper")
			convey.So(err, convey.ShouldBeNil)
			convey.So(r, convey.ShouldEqual, model.Keeper)
			r, err = model.ParseRole("players")
			convey.So(err, convey.ShouldBeNil)
			convey.So(r, convey.ShouldEqual, model.Shooter)
			_, err = model.ParseRole("referee")
			convey.So(errors.Is(err, model.ErrInvalidRole), convey.ShouldBeTrue)
		})
	})
}

func TestNewEvent(t *testing.T) {
	convey.Convey("Given event constructor arguments", t, func() {
		ts := time.Date(2025, 3, 1, 17, 45, 0, 0, time.UTC)

		convey.Convey("When they are valid", func() {
			e, err := model.NewEvent(ts, "A", "K1", model.Saved, model.ZoneUnspecified)

			convey.Convey("Then the date is truncated to its day", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(e.Date, convey.ShouldEqual, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
				convey.So(e.Zone, convey.ShouldEqual, model.ZoneUnspecified)
			})
		})

		convey.Convey("When a field is missing or invalid", func() {
			_, err := model.NewEvent(time.Time{}, "A", "K1", model.Goal, "")
			convey.So(errors.Is(err, model.ErrMissingField), convey.ShouldBeTrue)

			_, err = model.NewEvent(ts, "", "K1", model.Goal, "")
			convey.So(errors.Is(err, model.ErrMissingField), convey.ShouldBeTrue)

			_, err = model.NewEvent(ts, "A", "", model.Goal, "")
			convey.So(errors.Is(err, model.ErrMissingField), convey.ShouldBeTrue)

			_, err = model.NewEvent(ts, "A", "K1", model.Outcome("woodwork"), "")
			convey.So(errors.Is(err, model.ErrInvalidOutcome), convey.ShouldBeTrue)

			_, err = model.NewEvent(ts, "A", "K1", model.Goal, model.Zone("roof"))
			convey.So(errors.Is(err, model.ErrInvalidZone), convey.ShouldBeTrue)
		})
	})
}

func TestFilter(t *testing.T) {
	convey.Convey("Given events on three days", t, func() {
		day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
		var events []model.Event
		for _, d := range []int{1, 5, 9} {
			e, err := model.NewEvent(day(d), "A", "K", model.Goal, "")
			convey.So(err, convey.ShouldBeNil)
			events = append(events, e)
		}

		convey.Convey("Then bounds are inclusive", func() {
			convey.So(model.Filter(events, day(5), day(9)), convey.ShouldHaveLength, 2)
			convey.So(model.Filter(events, time.Time{}, day(5)), convey.ShouldHaveLength, 2)
			convey.So(model.Filter(events, time.Time{}, time.Time{}), convey.ShouldHaveLength, 3)
			convey.So(model.Filter(events, day(10), time.Time{}), convey.ShouldBeEmpty)
		})
	})
}
