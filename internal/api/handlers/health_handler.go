package handlers

import (
	"database/sql"
	"net/http"
	"time"
)

// HealthHandler reports liveness of the service and its database.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check pings the database and reports overall health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if err := h.db.PingContext(r.Context()); err != nil {
		body["status"] = "unhealthy"
		body["database"] = "disconnected"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, body)
}
