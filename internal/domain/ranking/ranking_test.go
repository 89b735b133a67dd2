package ranking_test

import (
	"errors"
	"testing"

	"github.com/okian/penalty/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTopN(t *testing.T) {
	Convey("Given two entities tied at 5.0", t, func() {
		items := []ranking.Item{{ID: "beta", Value: 5}, {ID: "alpha", Value: 5}, {ID: "gamma", Value: 2}}

		Convey("When ranking with ascending ids", func() {
			got := ranking.TopN(items, 2, ranking.IDAsc)

			Convey("Then the smaller id comes first and both share rank 1", func() {
				So(ranking.IDs(got), ShouldResemble, []string{"alpha", "beta"})
				So(got[0].Rank, ShouldEqual, 1)
				So(got[1].Rank, ShouldEqual, 1)
			})
		})

		Convey("When ranking with descending ids", func() {
			So(ranking.IDs(ranking.TopN(items, 3, ranking.IDDesc)), ShouldResemble, []string{"beta", "alpha", "gamma"})
		})

		Convey("When n exceeds the entity count", func() {
			got := ranking.TopN(items, 10, ranking.IDAsc)
			So(got, ShouldHaveLength, 3)
			So(got[2].Rank, ShouldEqual, 2)
		})

		Convey("When n is not positive", func() {
			So(ranking.TopN(items, 0, ranking.IDAsc), ShouldHaveLength, 3)
		})

		Convey("When run twice", func() {
			So(ranking.TopN(items, 3, ranking.IDAsc), ShouldResemble, ranking.TopN(items, 3, ranking.IDAsc))
		})

		Convey("Then the input is untouched", func() {
			ranking.TopN(items, 3, ranking.IDAsc)
			So(items[0].ID, ShouldEqual, "beta")
		})
	})

	Convey("Given no entities", t, func() {
		So(ranking.TopN(nil, 5, ranking.IDAsc), ShouldBeEmpty)
	})
}

func TestPosition(t *testing.T) {
	Convey("Given a ranking built from a map", t, func() {
		items := ranking.FromMap(map[string]float64{"A": 2.67, "B": -1, "C": 2.67})

		r, ok := ranking.Position(items, "C", ranking.IDAsc)
		So(ok, ShouldBeTrue)
		So(r.Rank, ShouldEqual, 1)

		r, ok = ranking.Position(items, "B", ranking.IDAsc)
		So(ok, ShouldBeTrue)
		So(r.Rank, ShouldEqual, 2)
		So(r.Value, ShouldEqual, -1)

		_, ok = ranking.Position(items, "Z", ranking.IDAsc)
		So(ok, ShouldBeFalse)
	})
}

func TestParseTieBreak(t *testing.T) {
	Convey("Given tie-break names", t, func() {
		tb, err := ranking.ParseTieBreak("")
		So(err, ShouldBeNil)
		So(tb, ShouldEqual, ranking.IDAsc)
		tb, err = ranking.ParseTieBreak("id_desc")
		So(err, ShouldBeNil)
		So(tb, ShouldEqual, ranking.IDDesc)
		_, err = ranking.ParseTieBreak("random")
		So(errors.Is(err, ranking.ErrInvalidTieBreak), ShouldBeTrue)
	})
}
