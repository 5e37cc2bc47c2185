package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	logger *slog.Logger
	db     HealthChecker
	cache  HealthChecker
}

// NewHealthHandler creates a new HealthHandler.
// Pass nil for db or cache if they are not yet initialized.
func NewHealthHandler(logger *slog.Logger, db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		db:     db,
		cache:  cache,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe endpoint. It never touches dependencies.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe endpoint.
// It pings PostgreSQL (users, keys, admins) and Redis (sessions) and
// returns 503 when either is down. Failure detail goes to the log only.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string, 2)
	healthy := h.check(ctx, checks, "postgres", h.db)
	healthy = h.check(ctx, checks, "redis", h.cache) && healthy

	status := "ok"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, HealthResponse{Status: status, Checks: checks})
}

func (h *HealthHandler) check(ctx context.Context, checks map[string]string, name string, dep HealthChecker) bool {
	if dep == nil {
		checks[name] = "not configured"
		return true
	}
	if err := dep.Ping(ctx); err != nil {
		h.logger.Error("readiness check failed",
			slog.String("dependency", name),
			slog.String("error", err.Error()),
		)
		checks[name] = "unavailable"
		return false
	}
	checks[name] = "ok"
	return true
}
