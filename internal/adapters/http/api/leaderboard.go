// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	service "github.com/okian/penalty/internal/app"
	"github.com/okian/penalty/internal/domain/model"
	"github.com/okian/penalty/internal/domain/ranking"
	"github.com/okian/penalty/internal/domain/types"
)

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, q service.LeaderboardQuery) (types.Leaderboard, error)
	Rank(ctx context.Context, id string, q service.LeaderboardQuery) (types.Position, error)
}

// LeaderboardHandler handles leaderboard and rank requests
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /leaderboard?team=&role=&metric=&limit=&tie_break=&weighted=&start=&end=
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		writeFailure(w, NewKind(op, ErrMethodNotAllowed))
		return
	}
	q := newQuery(op, r)
	lq := leaderboardQuery(q, q.role())
	if q.err != nil {
		writeFailure(w, q.err)
		return
	}
	lb, err := h.deps.Leaderboard(r.Context(), lq)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

// HandleGetRank handles GET /rank/{role}/{id} requests.
func (h *LeaderboardHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	if r.Method != http.MethodGet {
		writeFailure(w, NewKind(op, ErrMethodNotAllowed))
		return
	}
	rawRole, id, ok := strings.Cut(strings.TrimPrefix(r.URL.Path, "/rank/"), "/")
	if !ok || strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	role, err := model.ParseRole(rawRole)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	q := newQuery(op, r)
	lq := leaderboardQuery(q, role)
	if q.err != nil {
		writeFailure(w, q.err)
		return
	}
	pos, err := h.deps.Rank(r.Context(), id, lq)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

func leaderboardQuery(q *query, role model.Role) service.LeaderboardQuery {
	lq := service.LeaderboardQuery{
		Team:     q.team(),
		Role:     role,
		N:        q.int("limit"),
		Weighted: q.bool("weighted"),
		Window:   q.window(),
	}
	if q.err != nil {
		return lq
	}
	var err error
	if lq.Metric, err = service.ParseMetric(q.str("metric")); err != nil {
		q.fail("metric", err)
	}
	if lq.TieBreak, err = ranking.ParseTieBreak(q.str("tie_break")); err != nil {
		q.fail("tie_break", err)
	}
	return lq
}
