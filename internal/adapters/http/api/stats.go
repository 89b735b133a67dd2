package api

import (
	"context"
	"net/http"

	"github.com/okian/penalty/internal/domain/types"
)

// StatsDependencies defines the interface for snapshot status and reloads.
type StatsDependencies interface {
	Stats(ctx context.Context, team string) (types.Stats, error)
	Reload(ctx context.Context, team string) (types.Reload, error)
}

// StatsHandler handles stats and reload requests.
type StatsHandler struct {
	deps StatsDependencies
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps StatsDependencies) *StatsHandler {
	return &StatsHandler{deps: deps}
}

// HandleStats handles GET /stats?team= requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_stats"
	if r.Method != http.MethodGet {
		writeFailure(w, NewKind(op, ErrMethodNotAllowed))
		return
	}
	out, err := h.deps.Stats(r.Context(), newQuery(op, r).team())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleReload handles POST /reload?team= requests.
func (h *StatsHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_reload"
	if r.Method != http.MethodPost {
		writeFailure(w, NewKind(op, ErrMethodNotAllowed))
		return
	}
	out, err := h.deps.Reload(r.Context(), newQuery(op, r).team())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}
