package api

import (
	"context"
	"net/http"

	service "github.com/okian/penalty/internal/app"
	"github.com/okian/penalty/internal/domain/trend"
	"github.com/okian/penalty/internal/domain/types"
)

// TrendDependencies defines the interface for time series queries.
type TrendDependencies interface {
	Trend(ctx context.Context, q service.TrendQuery) (types.Trend, error)
}

// TrendHandler handles trend requests.
type TrendHandler struct {
	deps TrendDependencies
}

// NewTrendHandler creates a new trend handler.
func NewTrendHandler(deps TrendDependencies) *TrendHandler {
	return &TrendHandler{deps: deps}
}

// HandleGetTrend handles GET /trend?team=&entity=&role=&bucket=&metric=&fill=&outcomes=&numerator=&denominator=&weighted=&start=&end=
func (h *TrendHandler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_trend"
	if r.Method != http.MethodGet {
		writeFailure(w, NewKind(op, ErrMethodNotAllowed))
		return
	}
	q := newQuery(op, r)
	tq := service.TrendQuery{
		Team:        q.team(),
		Entity:      q.str("entity"),
		Role:        q.role(),
		Outcomes:    q.outcomes(),
		Weighted:    q.bool("weighted"),
		Numerator:   q.outcomeList("numerator"),
		Denominator: q.outcomeList("denominator"),
		Window:      q.window(),
	}
	var err error
	if tq.Bucket, err = trend.ParseBucket(q.str("bucket")); err != nil {
		q.fail("bucket", err)
	}
	if tq.Metric, err = trend.ParseMetric(q.str("metric")); err != nil {
		q.fail("metric", err)
	}
	if tq.Fill, err = trend.ParseFill(q.str("fill")); err != nil {
		q.fail("fill", err)
	}
	if q.err != nil {
		writeFailure(w, q.err)
		return
	}
	out, err := h.deps.Trend(r.Context(), tq)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
