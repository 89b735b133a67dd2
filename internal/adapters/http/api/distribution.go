package api

import (
	"context"
	"net/http"

	service "github.com/okian/penalty/internal/app"
	"github.com/okian/penalty/internal/domain/distribution"
	"github.com/okian/penalty/internal/domain/types"
)

// DistributionDependencies defines the interface for distribution queries.
type DistributionDependencies interface {
	Distribution(ctx context.Context, q service.DistributionQuery) (types.Distribution, error)
}

// DistributionHandler handles distribution requests.
type DistributionHandler struct {
	deps DistributionDependencies
}

// NewDistributionHandler creates a new distribution handler.
func NewDistributionHandler(deps DistributionDependencies) *DistributionHandler {
	return &DistributionHandler{deps: deps}
}

// HandleGetDistribution handles GET /distribution?team=&entity=&role=&field=&outcome=&zero_fill=&start=&end=
func (h *DistributionHandler) HandleGetDistribution(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_distribution"
	if r.Method != http.MethodGet {
		writeFailure(w, NewKind(op, ErrMethodNotAllowed))
		return
	}
	q := newQuery(op, r)
	dq := service.DistributionQuery{
		Team:     q.team(),
		Entity:   q.str("entity"),
		Role:     q.role(),
		Outcome:  q.outcome(),
		ZeroFill: q.bool("zero_fill"),
		Window:   q.window(),
	}
	var err error
	if dq.Field, err = distribution.ParseField(q.str("field")); err != nil {
		q.fail("field", err)
	}
	if q.err != nil {
		writeFailure(w, q.err)
		return
	}
	out, err := h.deps.Distribution(r.Context(), dq)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
