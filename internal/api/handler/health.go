package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"campus-assistant/internal/api/response"
	"campus-assistant/internal/repository/postgres"
	"campus-assistant/internal/repository/redis"
)

var validate = validator.New()

// HealthHandler handles health and readiness checks
type HealthHandler struct {
	db    *postgres.DB
	redis *redis.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *postgres.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

// Ready handles GET /ready. It reports not-ready when the database or
// Redis is unreachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
	}
	healthy := true

	if err := h.db.Ping(r.Context()); err != nil {
		checks["database"] = err.Error()
		healthy = false
	}
	if err := h.redis.Client().Ping(r.Context()).Err(); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	if !healthy {
		response.Error(w, http.StatusServiceUnavailable, checks)
		return
	}
	response.OK(w, checks)
}
