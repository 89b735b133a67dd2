package trend_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/penalty/internal/domain/decay"
	"github.com/okian/penalty/internal/domain/model"
	"github.com/okian/penalty/internal/domain/ratio"
	"github.com/okian/penalty/internal/domain/scoring"
	"github.com/okian/penalty/internal/domain/trend"
	"github.com/smartystreets/goconvey/convey"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func event(at time.Time, shooter string, o model.Outcome) model.Event {
	e, err := model.NewEvent(at, shooter, "K", o, "")
	if err != nil {
		panic(err)
	}
	return e
}

func sampleLog() []model.Event {
	return []model.Event{
		event(date(2025, 1, 3), "A", model.Goal),
		event(date(2025, 1, 20), "A", model.Out),
		event(date(2025, 3, 2), "A", model.Goal),
		event(date(2025, 3, 2), "B", model.Saved),
		event(date(2025, 4, 9), "B", model.Goal),
	}
}

func TestBuckets(t *testing.T) {
	convey.Convey("Given a Wednesday", t, func() {
		wed := time.Date(2025, 1, 8, 15, 30, 0, 0, time.UTC)

		convey.So(trend.Day.Truncate(wed), convey.ShouldEqual, date(2025, 1, 8))
		convey.So(trend.Week.Truncate(wed), convey.ShouldEqual, date(2025, 1, 6))
		convey.So(trend.Month.Truncate(wed), convey.ShouldEqual, date(2025, 1, 1))
		convey.So(trend.Year.Truncate(wed), convey.ShouldEqual, date(2025, 1, 1))
		convey.So(trend.Week.Truncate(date(2025, 1, 12)), convey.ShouldEqual, date(2025, 1, 6))

		convey.So(trend.Week.Label(date(2024, 12, 30)), convey.ShouldEqual, "2025-W01")
		convey.So(trend.Month.Label(date(2025, 3, 1)), convey.ShouldEqual, "2025-03")
		convey.So(trend.Year.Label(date(2025, 1, 1)), convey.ShouldEqual, "2025")
		convey.So(trend.Day.Label(wed), convey.ShouldEqual, "2025-01-08")

		convey.So(trend.Month.Next(date(2025, 1, 1)), convey.ShouldEqual, date(2025, 2, 1))

		b, err := trend.ParseBucket("")
		convey.So(err, convey.ShouldBeNil)
		convey.So(b, convey.ShouldEqual, trend.Month)
		_, err = trend.ParseBucket("fortnight")
		convey.So(errors.Is(err, trend.ErrInvalidBucket), convey.ShouldBeTrue)
	})
}

func TestBuildCount(t *testing.T) {
	convey.Convey("Given a monthly count query for A", t, func() {
		q := trend.Query{Entity: "A", Role: model.Shooter, Bucket: trend.Month, Metric: trend.Count}

		convey.Convey("When periods without events are omitted", func() {
			got, err := trend.Build(sampleLog(), q)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then only active months appear, ascending", func() {
				convey.So(got, convey.ShouldHaveLength, 2)
				convey.So(got[0].Label, convey.ShouldEqual, "2025-01")
				convey.So(got[0].Value, convey.ShouldEqual, 2)
				convey.So(got[1].Label, convey.ShouldEqual, "2025-03")
				convey.So(got[1].Value, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the axis is zero-filled", func() {
			q.Fill = trend.FillZero
			got, err := trend.Build(sampleLog(), q)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then February is present with zero", func() {
				convey.So(got, convey.ShouldHaveLength, 3)
				convey.So(got[1].Label, convey.ShouldEqual, "2025-02")
				convey.So(got[1].Value, convey.ShouldEqual, 0)
				convey.So(got[1].Defined, convey.ShouldBeTrue)
			})

			convey.Convey("Then an explicit range extends the axis", func() {
				q.From, q.To = date(2024, 12, 15), date(2025, 5, 1)
				got, err := trend.Build(sampleLog(), q)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldHaveLength, 6)
				convey.So(got[0].Label, convey.ShouldEqual, "2024-12")
				convey.So(got[5].Label, convey.ShouldEqual, "2025-05")
			})
		})

		convey.Convey("When counting goals only across the whole log", func() {
			q.Entity = ""
			q.Outcomes = []model.Outcome{model.Goal}
			got, err := trend.Build(sampleLog(), q)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldHaveLength, 3)
			convey.So(got[0].Value, convey.ShouldEqual, 1)
			convey.So(got[2].Label, convey.ShouldEqual, "2025-04")
		})

		convey.Convey("When built twice", func() {
			a, err := trend.Build(sampleLog(), q)
			convey.So(err, convey.ShouldBeNil)
			b, err := trend.Build(sampleLog(), q)
			convey.So(err, convey.ShouldBeNil)
			convey.So(a, convey.ShouldResemble, b)
		})
	})
}

func TestBuildScoreAndRatio(t *testing.T) {
	convey.Convey("Given weighted metrics", t, func() {
		ref := date(2025, 3, 2)

		convey.Convey("When computing the monthly score", func() {
			got, err := trend.Build(sampleLog(), trend.Query{
				Entity: "A", Metric: trend.Score, Points: scoring.DefaultShooterPoints(),
				Rate: 0.01, Reference: ref,
			})
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldHaveLength, 2)
			convey.So(got[1].Value, convey.ShouldEqual, 1.5)
			want := 1.5*math.Exp(-0.01*58) - math.Exp(-0.01*41)
			convey.So(got[0].Value, convey.ShouldAlmostEqual, want, 1e-9)
		})

		convey.Convey("When the score rate is missing", func() {
			_, err := trend.Build(sampleLog(), trend.Query{Metric: trend.Score})
			convey.So(errors.Is(err, decay.ErrInvalidRate), convey.ShouldBeTrue)
		})

		convey.Convey("When computing a zero-filled goal rate", func() {
			got, err := trend.Build(sampleLog(), trend.Query{
				Entity: "A", Metric: trend.Ratio, Fill: trend.FillZero,
				Ratio: ratio.Spec{Numerator: []model.Outcome{model.Goal}},
			})
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then empty periods are undefined, not zero", func() {
				convey.So(got, convey.ShouldHaveLength, 3)
				convey.So(got[0].Value, convey.ShouldEqual, 0.5)
				convey.So(got[1].Defined, convey.ShouldBeFalse)
				convey.So(got[2].Value, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestBuildEdges(t *testing.T) {
	convey.Convey("Given unusual queries", t, func() {
		got, err := trend.Build(nil, trend.Query{Fill: trend.FillZero})
		convey.So(err, convey.ShouldBeNil)
		convey.So(got, convey.ShouldBeEmpty)

		got, err = trend.Build(sampleLog(), trend.Query{Entity: "nobody"})
		convey.So(err, convey.ShouldBeNil)
		convey.So(got, convey.ShouldBeEmpty)

		_, err = trend.Build(sampleLog(), trend.Query{Metric: "median"})
		convey.So(errors.Is(err, trend.ErrInvalidMetric), convey.ShouldBeTrue)

		_, err = trend.Build(sampleLog(), trend.Query{Fill: "pad"})
		convey.So(errors.Is(err, trend.ErrInvalidFill), convey.ShouldBeTrue)

		_, err = trend.Build(sampleLog(), trend.Query{Bucket: trend.Day, Fill: trend.FillZero, From: date(1900, 1, 1), To: date(2025, 1, 1)})
		convey.So(errors.Is(err, trend.ErrRangeTooLarge), convey.ShouldBeTrue)
	})
}
