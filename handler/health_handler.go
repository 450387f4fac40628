package handler

import (
	"context"
	"go-account-api/common"
	"net/http"
	"time"
)

// HealthCheck godoc
// @Summary      Show the status of server
// @Description  get the status of server
// @Tags         health
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "API is healthy and running"})
}

// Pinger is a dependency the readiness check pings.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Ready godoc
// @Summary      Show whether dependencies are reachable
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]interface{}
// @Router       /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{}
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			return common.NewAppError(http.StatusServiceUnavailable, name+" is unavailable", err)
		}
		status[name] = "ok"
	}
	writeJSON(w, http.StatusOK, status)
	return nil
}
