package api

import (
	"net/http"
	"time"

	"github.com/TheRibeiro/ApiWp/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ConnectionStatus exposes the connection state the health check reports.
type ConnectionStatus interface {
	Connected() bool
	State() domain.ConnectionState
}

// HealthHandler handles the health check endpoint.
type HealthHandler struct {
	status  ConnectionStatus
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(status ConnectionStatus) *HealthHandler {
	return &HealthHandler{status: status, started: time.Now()}
}

// Health returns the connection status. Always 200: a disconnected session
// is reported, not treated as a server failure.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]interface{}{
		"connected": h.status.Connected(),
		"state":     h.status.State(),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
