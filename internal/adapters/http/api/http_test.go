package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/penalty/internal/adapters/http/api"
	"github.com/okian/penalty/internal/adapters/repository"
	service "github.com/okian/penalty/internal/app"
	"github.com/okian/penalty/internal/domain/decay"
	"github.com/okian/penalty/internal/domain/distribution"
	"github.com/okian/penalty/internal/domain/model"
	"github.com/okian/penalty/internal/domain/ranking"
	"github.com/okian/penalty/internal/domain/trend"
	"github.com/okian/penalty/internal/domain/types"
	"github.com/okian/penalty/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWriter(io.Discard, "text"); err != nil {
		panic(err)
	}
}

// mockDeps records the last query of each kind and returns canned results.
type mockDeps struct {
	err error

	leaderboardQuery  service.LeaderboardQuery
	rankID            string
	ratioQuery        service.RatioQuery
	trendQuery        service.TrendQuery
	distributionQuery service.DistributionQuery
	recordsWindow     service.Window
	recentN           int
	overviewQuery     service.OverviewQuery
	reloads           int
	team              string
}

func (m *mockDeps) Leaderboard(_ context.Context, q service.LeaderboardQuery) (types.Leaderboard, error) {
	m.leaderboardQuery = q
	return types.Leaderboard{
		Meta:    types.Meta{Fingerprint: "00ff", ReferenceDate: "2025-03-31", Origin: "primary"},
		Role:    string(q.Role),
		Metric:  string(q.Metric),
		Total:   2,
		Entries: []types.Entry{{Rank: 1, ID: "A", Value: 2.67, Count: 3}},
	}, m.err
}

func (m *mockDeps) Rank(_ context.Context, id string, q service.LeaderboardQuery) (types.Position, error) {
	m.rankID, m.leaderboardQuery = id, q
	if id == "nobody" {
		return types.Position{}, fmt.Errorf("%s %q: %w", q.Role, id, repository.ErrNotFound)
	}
	return types.Position{Role: string(q.Role), Entry: types.Entry{Rank: 2, ID: id}}, m.err
}

func (m *mockDeps) Ratios(_ context.Context, q service.RatioQuery) (types.Ratios, error) {
	m.ratioQuery = q
	return types.Ratios{Role: string(q.Role), Entries: []types.RatioEntry{{ID: "Z"}}}, m.err
}

func (m *mockDeps) Trend(_ context.Context, q service.TrendQuery) (types.Trend, error) {
	m.trendQuery = q
	return types.Trend{Points: []types.TrendPoint{}}, m.err
}

func (m *mockDeps) Distribution(_ context.Context, q service.DistributionQuery) (types.Distribution, error) {
	m.distributionQuery = q
	return types.Distribution{Counts: map[string]int{"goal": 1}}, m.err
}

func (m *mockDeps) Records(_ context.Context, team string, w service.Window) (types.Records, error) {
	m.team, m.recordsWindow = team, w
	return types.Records{}, m.err
}

func (m *mockDeps) Recent(_ context.Context, team string, n int) (types.Recent, error) {
	m.team, m.recentN = team, n
	return types.Recent{Penalties: []types.Penalty{}}, m.err
}

func (m *mockDeps) Overview(_ context.Context, q service.OverviewQuery) (types.Overview, error) {
	m.overviewQuery = q
	return types.Overview{Total: 4}, m.err
}

func (m *mockDeps) Stats(_ context.Context, team string) (types.Stats, error) {
	m.team = team
	return types.Stats{Events: 4}, m.err
}

func (m *mockDeps) Reload(_ context.Context, team string) (types.Reload, error) {
	m.team = team
	m.reloads++
	return types.Reload{Events: 4, Changed: true}, m.err
}

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestLeaderboardEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("When requesting a keeper ratio leaderboard", func() {
			w := do(mux, http.MethodGet, "/leaderboard?role=goalkeeper&metric=ratio&limit=5&tie_break=desc&weighted=true&start=2025-01-01")

			Convey("Then the parameters reach the service", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.leaderboardQuery.Role, ShouldEqual, model.Keeper)
				So(deps.leaderboardQuery.Metric, ShouldEqual, service.MetricRatio)
				So(deps.leaderboardQuery.N, ShouldEqual, 5)
				So(deps.leaderboardQuery.TieBreak, ShouldEqual, ranking.IDDesc)
				So(deps.leaderboardQuery.Weighted, ShouldBeTrue)
				So(deps.leaderboardQuery.From.Format("2006-01-02"), ShouldEqual, "2025-01-01")
				So(w.Body.String(), ShouldContainSubstring, `"fingerprint":"00ff"`)
				So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
			})
		})

		Convey("When parameters are invalid", func() {
			for _, target := range []string{
				"/leaderboard?limit=abc",
				"/leaderboard?limit=-1",
				"/leaderboard?metric=height",
				"/leaderboard?role=referee",
				"/leaderboard?tie_break=random",
				"/leaderboard?start=yesterday",
				"/leaderboard?weighted=maybe",
			} {
				w := do(mux, http.MethodGet, target)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			}
		})

		Convey("When the method is wrong", func() {
			w := do(mux, http.MethodPost, "/leaderboard")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("When requesting a rank", func() {
			w := do(mux, http.MethodGet, "/rank/keeper/K1?metric=score")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.rankID, ShouldEqual, "K1")
			So(deps.leaderboardQuery.Role, ShouldEqual, model.Keeper)

			So(do(mux, http.MethodGet, "/rank/K1").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/rank/referee/K1").Code, ShouldEqual, http.StatusBadRequest)

			missing := do(mux, http.MethodGet, "/rank/shooter/nobody")
			So(missing.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(missing), ShouldEqual, "not_found")
		})

		Convey("When the caller supplies a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/leaderboard", http.NoBody)
			req.Header.Set(api.RequestIDHeader, "req-1")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "req-1")
		})
	})
}

func TestAnalyticsEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("When requesting ratios", func() {
			w := do(mux, http.MethodGet, "/ratios?role=keeper&adjusted=1")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.ratioQuery.Adjusted, ShouldBeTrue)
			So(w.Body.String(), ShouldContainSubstring, `"ratio":null`)
		})

		Convey("When requesting a trend", func() {
			w := do(mux, http.MethodGet, "/trend?entity=A&bucket=week&metric=ratio&fill=zero&outcomes=goal,out")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.trendQuery.Entity, ShouldEqual, "A")
			So(deps.trendQuery.Bucket, ShouldEqual, trend.Week)
			So(deps.trendQuery.Metric, ShouldEqual, trend.Ratio)
			So(deps.trendQuery.Fill, ShouldEqual, trend.FillZero)
			So(deps.trendQuery.Outcomes, ShouldResemble, []model.Outcome{model.Goal, model.Out})
			So(w.Body.String(), ShouldContainSubstring, `"points":[]`)

			So(deps.trendQuery.Numerator, ShouldBeNil)

			So(do(mux, http.MethodGet, "/trend?bucket=fortnight").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/trend?outcomes=goal,post").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a ratio counts a custom numerator and denominator", func() {
			w := do(mux, http.MethodGet, "/trend?metric=ratio&numerator=out")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.trendQuery.Numerator, ShouldResemble, []model.Outcome{model.Out})
			So(deps.trendQuery.Denominator, ShouldBeNil)

			w = do(mux, http.MethodGet, "/ratios?numerator=goal&denominator=goal,out")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.ratioQuery.Numerator, ShouldResemble, []model.Outcome{model.Goal})
			So(deps.ratioQuery.Denominator, ShouldResemble, []model.Outcome{model.Goal, model.Out})

			So(do(mux, http.MethodGet, "/ratios?numerator=post").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/trend?denominator=goal,,out").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a team is named", func() {
			So(do(mux, http.MethodGet, "/leaderboard?team=female").Code, ShouldEqual, http.StatusOK)
			So(deps.leaderboardQuery.Team, ShouldEqual, "female")
			So(do(mux, http.MethodGet, "/ratios?team=female").Code, ShouldEqual, http.StatusOK)
			So(deps.ratioQuery.Team, ShouldEqual, "female")
			So(do(mux, http.MethodGet, "/trend?team=female").Code, ShouldEqual, http.StatusOK)
			So(deps.trendQuery.Team, ShouldEqual, "female")
			So(do(mux, http.MethodGet, "/distribution?team=female").Code, ShouldEqual, http.StatusOK)
			So(deps.distributionQuery.Team, ShouldEqual, "female")
			So(do(mux, http.MethodGet, "/overview?team=female").Code, ShouldEqual, http.StatusOK)
			So(deps.overviewQuery.Team, ShouldEqual, "female")
			So(do(mux, http.MethodGet, "/records?team=male").Code, ShouldEqual, http.StatusOK)
			So(deps.team, ShouldEqual, "male")
			So(do(mux, http.MethodGet, "/recent?team=female").Code, ShouldEqual, http.StatusOK)
			So(deps.team, ShouldEqual, "female")
		})

		Convey("When requesting a distribution", func() {
			w := do(mux, http.MethodGet, "/distribution?role=keeper&entity=K1&field=outcome&zero_fill=true")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.distributionQuery.Field, ShouldEqual, distribution.Outcome)
			So(deps.distributionQuery.ZeroFill, ShouldBeTrue)

			So(do(mux, http.MethodGet, "/distribution?outcome=post").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/distribution?field=height").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When requesting records, recent penalties and the overview", func() {
			So(do(mux, http.MethodGet, "/records?end=2025-03-31").Code, ShouldEqual, http.StatusOK)
			So(deps.recordsWindow.To.IsZero(), ShouldBeFalse)

			So(do(mux, http.MethodGet, "/recent?limit=3").Code, ShouldEqual, http.StatusOK)
			So(deps.recentN, ShouldEqual, 3)

			So(do(mux, http.MethodGet, "/overview?last=3&unit=months").Code, ShouldEqual, http.StatusOK)
			So(deps.overviewQuery.Last, ShouldEqual, 3)
			So(deps.overviewQuery.Unit, ShouldEqual, "months")
		})
	})
}

func TestStatusEndpoints(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("When reloading", func() {
			So(do(mux, http.MethodGet, "/reload").Code, ShouldEqual, http.StatusMethodNotAllowed)
			w := do(mux, http.MethodPost, "/reload")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.reloads, ShouldEqual, 1)
			So(deps.team, ShouldBeEmpty)

			So(do(mux, http.MethodPost, "/reload?team=female").Code, ShouldEqual, http.StatusOK)
			So(deps.team, ShouldEqual, "female")
		})

		Convey("When stats name a team", func() {
			So(do(mux, http.MethodGet, "/stats?team=male").Code, ShouldEqual, http.StatusOK)
			So(deps.team, ShouldEqual, "male")
		})

		Convey("When scraping metrics", func() {
			So(do(mux, http.MethodGet, "/healthz").Code, ShouldEqual, http.StatusOK)
		})

		Convey("When nothing is loaded yet", func() {
			deps.err = fmt.Errorf("snapshot: %w", repository.ErrNotLoaded)
			w := do(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(errorCode(w), ShouldEqual, "not_loaded")
		})

		Convey("When the service reports an integrity error", func() {
			deps.err = fmt.Errorf("ratio for A: %w", decay.ErrIntegrity)
			w := do(mux, http.MethodGet, "/ratios")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(errorCode(w), ShouldEqual, "integrity_error")
		})

		Convey("When the service rejects the query", func() {
			deps.err = fmt.Errorf("%w: start is after end", service.ErrInvalidQuery)
			So(do(mux, http.MethodGet, "/records").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the team is unknown", func() {
			deps.err = fmt.Errorf("%w: %w %q", service.ErrInvalidQuery, service.ErrUnknownTeam, "mixed")
			w := do(mux, http.MethodGet, "/leaderboard?team=mixed")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both the kind and the cause are visible", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
		})

		Convey("And Wrap keeps nil errors nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(api.NewKind("api.op", api.ErrBadRequest).Error(), ShouldEqual, "api.op: bad request")
		})
	})
}
