package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/upb/llm-datagen/services/orchestrator"
	"github.com/upb/llm-datagen/utils"
)

// Version reported by the status endpoint
const Version = "0.1.0"

// RedisPinger is the Redis surface readiness needs
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// ProviderLister reports the configured providers and their breaker states
type ProviderLister interface {
	Providers() []orchestrator.ProviderStatus
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// StatusResponse represents the public status response
type StatusResponse struct {
	Version     string                        `json:"version"`
	Environment string                        `json:"environment"`
	Providers   []orchestrator.ProviderStatus `json:"providers"`
}

// HealthHandler handles health and status requests
type HealthHandler struct {
	db          *sql.DB
	redis       RedisPinger
	providers   ProviderLister
	environment string
	logger      *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. Any dependency may be nil.
func NewHealthHandler(db *sql.DB, redisClient RedisPinger, providers ProviderLister, environment string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redis:       redisClient,
		providers:   providers,
		environment: environment,
		logger:      logger,
	}
}

// HandleHealth handles GET /healthz
// Liveness only - always returns 200 if the process is serving
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReadiness handles GET /readyz
// Validates that the database and Redis are reachable
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	ready := true

	switch {
	case h.db == nil:
		checks["database"] = "not_initialized"
		ready = false
	case h.checkDatabase(ctx) != nil:
		checks["database"] = "unhealthy"
		ready = false
	default:
		checks["database"] = "healthy"
	}

	switch {
	case h.redis == nil:
		checks["redis"] = "not_initialized"
		ready = false
	default:
		if err := h.redis.Ping(ctx).Err(); err != nil {
			h.logger.Warn("redis health check failed", zap.Error(err))
			checks["redis"] = "unhealthy"
			ready = false
		} else {
			checks["redis"] = "healthy"
		}
	}

	status := "ready"
	httpStatus := http.StatusOK
	if !ready {
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	response := ReadinessResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	if err := utils.WriteJSON(w, httpStatus, response); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}

// HandleStatus handles GET /api/v1/status
func (h *HealthHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{
		Version:     Version,
		Environment: h.environment,
		Providers:   []orchestrator.ProviderStatus{},
	}
	if h.providers != nil {
		response.Providers = h.providers.Providers()
	}

	_ = utils.WriteJSON(w, http.StatusOK, response)
}

// checkDatabase checks database connectivity
func (h *HealthHandler) checkDatabase(ctx context.Context) error {
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		return err
	}

	var result int
	if err := h.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		return err
	}
	return nil
}
