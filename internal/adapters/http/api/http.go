// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/penalty/internal/adapters/repository"
	"github.com/okian/penalty/internal/adapters/source"
	service "github.com/okian/penalty/internal/app"
	"github.com/okian/penalty/internal/domain/decay"
	"github.com/okian/penalty/internal/domain/distribution"
	"github.com/okian/penalty/internal/domain/model"
	"github.com/okian/penalty/internal/domain/ranking"
	"github.com/okian/penalty/internal/domain/trend"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	LeaderboardDependencies
	RatioDependencies
	TrendDependencies
	DistributionDependencies
	RecordsDependencies
	OverviewDependencies
	StatsDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	leaderboardHandler  *LeaderboardHandler
	ratioHandler        *RatioHandler
	trendHandler        *TrendHandler
	distributionHandler *DistributionHandler
	recordsHandler      *RecordsHandler
	overviewHandler     *OverviewHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(deps),
		leaderboardHandler:  NewLeaderboardHandler(deps),
		ratioHandler:        NewRatioHandler(deps),
		trendHandler:        NewTrendHandler(deps),
		distributionHandler: NewDistributionHandler(deps),
		recordsHandler:      NewRecordsHandler(deps),
		overviewHandler:     NewOverviewHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/reload", MetricsMiddleware(s.statsHandler.HandleReload, "reload"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.leaderboardHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/ratios", MetricsMiddleware(s.ratioHandler.HandleGetRatios, "ratios"))
	mux.HandleFunc("/trend", MetricsMiddleware(s.trendHandler.HandleGetTrend, "trend"))
	mux.HandleFunc("/distribution", MetricsMiddleware(s.distributionHandler.HandleGetDistribution, "distribution"))
	mux.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandleGetRecords, "records"))
	mux.HandleFunc("/recent", MetricsMiddleware(s.recordsHandler.HandleGetRecent, "recent"))
	mux.HandleFunc("/overview", MetricsMiddleware(s.overviewHandler.HandleGetOverview, "overview"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case isBadRequest(err):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrNotLoaded), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_loaded"
	case errors.Is(err, decay.ErrIntegrity):
		return http.StatusInternalServerError, "integrity_error"
	case errors.Is(err, source.ErrNoSource), errors.Is(err, source.ErrInvalidRow), errors.Is(err, source.ErrMissingColumn):
		return http.StatusBadGateway, "source_error"
	}
	return http.StatusInternalServerError, "internal_error"
}

func isBadRequest(err error) bool {
	for _, kind := range []error{
		ErrBadRequest,
		service.ErrInvalidQuery,
		model.ErrInvalidRole,
		model.ErrInvalidOutcome,
		model.ErrInvalidZone,
		trend.ErrInvalidBucket,
		trend.ErrInvalidMetric,
		trend.ErrInvalidFill,
		trend.ErrRangeTooLarge,
		distribution.ErrInvalidField,
		ranking.ErrInvalidTieBreak,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
