// Package site serves the landing page linking the dashboard, API docs and
// monitoring endpoints.
package site

import (
	"context"
	"net/http"
)

// Register attaches the landing page to mux at exactly "/".
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /{$}", NewRootHandler())
}

// RootHandler serves the embedded landing page.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// ServeHTTP handles GET / requests.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}
