package api

import (
	"context"
	"net/http"

	service "github.com/okian/penalty/internal/app"
	"github.com/okian/penalty/internal/domain/types"
)

// OverviewDependencies defines the interface for the summary view.
type OverviewDependencies interface {
	Overview(ctx context.Context, q service.OverviewQuery) (types.Overview, error)
}

// OverviewHandler handles overview requests.
type OverviewHandler struct {
	deps OverviewDependencies
}

// NewOverviewHandler creates a new overview handler.
func NewOverviewHandler(deps OverviewDependencies) *OverviewHandler {
	return &OverviewHandler{deps: deps}
}

// HandleGetOverview handles GET /overview?team=&last=N&unit=days|months|years or ?start=&end=
func (h *OverviewHandler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_overview"
	if r.Method != http.MethodGet {
		writeFailure(w, NewKind(op, ErrMethodNotAllowed))
		return
	}
	q := newQuery(op, r)
	oq := service.OverviewQuery{
		Team:   q.team(),
		Last:   q.int("last"),
		Unit:   q.str("unit"),
		Window: q.window(),
	}
	if q.err != nil {
		writeFailure(w, q.err)
		return
	}
	out, err := h.deps.Overview(r.Context(), oq)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
