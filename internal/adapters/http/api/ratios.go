package api

import (
	"context"
	"net/http"

	service "github.com/okian/penalty/internal/app"
	"github.com/okian/penalty/internal/domain/types"
)

// RatioDependencies defines the interface for ratio queries.
type RatioDependencies interface {
	Ratios(ctx context.Context, q service.RatioQuery) (types.Ratios, error)
}

// RatioHandler handles ratio requests.
type RatioHandler struct {
	deps RatioDependencies
}

// NewRatioHandler creates a new ratio handler.
func NewRatioHandler(deps RatioDependencies) *RatioHandler {
	return &RatioHandler{deps: deps}
}

// HandleGetRatios handles GET /ratios?team=&role=&weighted=&adjusted=&numerator=&denominator=&start=&end=
func (h *RatioHandler) HandleGetRatios(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ratios"
	if r.Method != http.MethodGet {
		writeFailure(w, NewKind(op, ErrMethodNotAllowed))
		return
	}
	q := newQuery(op, r)
	rq := service.RatioQuery{
		Team:        q.team(),
		Role:        q.role(),
		Weighted:    q.bool("weighted"),
		Adjusted:    q.bool("adjusted"),
		Numerator:   q.outcomeList("numerator"),
		Denominator: q.outcomeList("denominator"),
		Window:      q.window(),
	}
	if q.err != nil {
		writeFailure(w, q.err)
		return
	}
	out, err := h.deps.Ratios(r.Context(), rq)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
