package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness reports process health only; no dependency is touched.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "up"})
}

// Readiness additionally pings Postgres, the engine's only dependency.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		slog.Warn("readiness probe failed", "error", err)
		RespondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "degraded",
			"checks": map[string]string{"postgres": "unreachable"},
		})
		return
	}

	RespondJSON(w, http.StatusOK, map[string]any{
		"status": "up",
		"checks": map[string]string{"postgres": "up"},
	})
}
