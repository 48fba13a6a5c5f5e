package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/courtstats/internal/domain/stats"
)

// SummaryDependencies defines the interface for player summary lookups.
type SummaryDependencies interface {
	PlayerSummary(ctx context.Context, playerID int64) (*stats.Summary, error)
}

// SummaryHandler handles player summary requests.
type SummaryHandler struct {
	deps SummaryDependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleGetSummary handles GET /api/v1/playerSummary/{playerID} requests.
func (h *SummaryHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player_summary"
	raw := r.PathValue("playerID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	summary, err := h.deps.PlayerSummary(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, r, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
