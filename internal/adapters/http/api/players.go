package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/courtstats/internal/domain/model"
)

// PlayersDependencies defines the interface for player listing
type PlayersDependencies interface {
	Players(ctx context.Context, limit int) ([]model.Player, error)
}

// PlayersHandler handles player listing requests
type PlayersHandler struct {
	deps     PlayersDependencies
	maxLimit int
}

// NewPlayersHandler creates a new players handler
func NewPlayersHandler(deps PlayersDependencies, maxLimit int) *PlayersHandler {
	return &PlayersHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleListPlayers handles GET /api/v1/players?limit=N requests. Without a
// limit it returns up to maxLimit players.
func (h *PlayersHandler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, r, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if v > h.maxLimit {
			writeError(w, r, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	players, err := h.deps.Players(r.Context(), n)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	if players == nil {
		players = []model.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}
