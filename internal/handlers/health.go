package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is a dependency that can report its own reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker handles health check requests
type HealthChecker struct {
	backend Pinger
	cache   Pinger
}

// NewHealthChecker creates a new health checker. Either dependency may be nil.
func NewHealthChecker(backend, cache Pinger) *HealthChecker {
	return &HealthChecker{backend: backend, cache: cache}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	statusCode := http.StatusOK
	if r.URL.Query().Get("mode") == "extended" {
		checks := make(map[string]string)
		for name, dep := range map[string]Pinger{"graphql_backend": h.backend, "cache": h.cache} {
			if dep == nil {
				checks[name] = "not configured"
				continue
			}
			if err := h.check(r.Context(), dep); err != nil {
				response.Status = "unhealthy"
				checks[name] = "unhealthy: " + sanitizeErrorMessage(err.Error())
				continue
			}
			checks[name] = "healthy"
		}
		response.Checks = checks

		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

func (h *HealthChecker) check(ctx context.Context, dep Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return dep.Ping(ctx)
}
