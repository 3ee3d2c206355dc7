package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/christinepetrosyan/Timebook/pkg/response"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	timeout time.Duration
}

func NewHealthHandler(db Pinger, timeout time.Duration) *HealthHandler {
	return &HealthHandler{db: db, timeout: timeout}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		response.Error(w, http.StatusServiceUnavailable, "Database unreachable", map[string]string{"database": "down"})
		return
	}

	response.Success(w, http.StatusOK, "ok", map[string]string{"status": "ok", "database": "up"})
}
