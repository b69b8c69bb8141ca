package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthCheck probes one backing dependency
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler provides health check endpoint
type HealthHandler struct {
	logger *slog.Logger
	checks []HealthCheck
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(logger *slog.Logger, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		checks: checks,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Version      string            `json:"version"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// ServeHTTP handles health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
	}
	status := http.StatusOK

	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		response.Dependencies = make(map[string]string, len(h.checks))
		for _, c := range h.checks {
			if err := c.Check(ctx); err != nil {
				h.logger.Warn("health check failed", "dependency", c.Name, "error", err)
				response.Dependencies[c.Name] = "unavailable"
				response.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			response.Dependencies[c.Name] = "ok"
		}
	}

	WriteJSON(w, status, response, h.logger)
}
