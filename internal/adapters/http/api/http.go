// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/courtstats/internal/domain/stats"
	"github.com/okian/courtstats/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SummaryDependencies
	PlayersDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	summaryHandler   *SummaryHandler
	playersHandler   *PlayersHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// players listing.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		summaryHandler:   NewSummaryHandler(deps),
		playersHandler:   NewPlayersHandler(deps, maxLimit),
		dashboardHandler: newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /api/v1/playerSummary/{playerID}", MetricsMiddleware(s.summaryHandler.HandleGetSummary, "player_summary"))
	mux.HandleFunc("GET /api/v1/players", MetricsMiddleware(s.playersHandler.HandleListPlayers, "players"))
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

// writeError writes a JSON error body. Server-side failures are logged and
// reported to the client by status text only.
func writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	msg := http.StatusText(status)
	switch {
	case status >= http.StatusInternalServerError || errors.Is(err, ErrInternal):
		logger.Get().Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path), logger.String("code", code), logger.Error(err))
	case err != nil:
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound reports whether err means an unknown player.
func isNotFound(err error) bool {
	return errors.Is(err, stats.ErrNotFound) || errors.Is(err, ErrNotFound)
}
