package handlers

import (
	"context"
	"net/http"
	"time"
)

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	database := "up"
	if err := h.db.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		database = "down"
	}

	writeJSON(w, status, Response{
		Success: status == http.StatusOK,
		Message: "AdPay API",
		Data: map[string]interface{}{
			"database":    database,
			"environment": h.config.Environment,
			"timestamp":   time.Now().UTC(),
		},
	})
}
