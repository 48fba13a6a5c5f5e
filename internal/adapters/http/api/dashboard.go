package api

import (
	"net/http"
)

// dashboardHandler handles dashboard requests
type dashboardHandler struct{}

// newdashboardHandler creates a new dashboard handler
func newdashboardHandler() *dashboardHandler {
	return &dashboardHandler{}
}

// HandleDashboard handles GET /dashboard requests.
// The page fetches /api/v1/players and /api/v1/playerSummary/{id} and draws
// totals, ranks and court locations client side.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, dashboardFS, "dashboard.html")
}
