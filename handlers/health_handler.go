package handlers

import (
	"database/sql"
	"net/http"
)

type HealthHandler struct {
	db *sql.DB
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthzHandler reports liveness and database reachability.
func (h *HealthHandler) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.db.PingContext(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	if err := writeJSON(w, code, map[string]string{"status": status}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
