package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/roster-optimizer/pkg/database"
	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db        *database.DB
	redis     *redis.Client
	logger    *logrus.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(
	db *database.DB,
	redis *redis.Client,
	logger *logrus.Logger,
) *HealthHandler {
	return &HealthHandler{
		db:        db,
		redis:     redis,
		logger:    logger,
		startTime: time.Now(),
	}
}

// GetHealth returns the basic health status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	response := types.HealthStatus{
		Status:    "ok",
		Service:   "roster-optimizer",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	// Database failure degrades the service; runs still execute but are
	// not persisted.
	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			response.Status = "degraded"
			response.Checks["database"] = "failed: " + err.Error()
		} else {
			response.Checks["database"] = "ok"
		}
	} else {
		response.Checks["database"] = "not_configured"
	}

	// Redis backs result caching and is critical
	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		response.Status = "unhealthy"
		response.Checks["redis"] = "failed: " + err.Error()
	} else {
		response.Checks["redis"] = "ok"
	}

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	} else if response.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}

	c.JSON(statusCode, response)
}

// GetReady returns the readiness status
func (h *HealthHandler) GetReady(c *gin.Context) {
	response := types.HealthStatus{
		Status:    "ready",
		Service:   "roster-optimizer",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
		response.Status = "not_ready"
		response.Checks["redis"] = "failed: " + err.Error()
	} else {
		response.Checks["redis"] = "ok"
	}

	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			response.Checks["database"] = "failed: " + err.Error()
		} else {
			response.Checks["database"] = "ok"
		}
	}

	statusCode := http.StatusOK
	if response.Status != "ready" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetMetrics returns service metrics
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	metrics := map[string]interface{}{
		"service":   "roster-optimizer",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startTime).Seconds(),
	}

	if info, err := h.redis.Info(c.Request.Context()).Result(); err == nil {
		metrics["redis"] = map[string]interface{}{
			"connected":      true,
			"info_available": len(info) > 0,
		}
	}

	if dbSize, err := h.redis.DBSize(c.Request.Context()).Result(); err == nil {
		metrics["cache"] = map[string]interface{}{
			"total_keys": dbSize,
		}

		if optimizationKeys, err := h.redis.Keys(c.Request.Context(), "optimization:*").Result(); err == nil {
			metrics["optimization_cache"] = map[string]interface{}{
				"cached_results": len(optimizationKeys),
			}
		}

		if valuationKeys, err := h.redis.Keys(c.Request.Context(), "valuation:*").Result(); err == nil {
			metrics["valuation_cache"] = map[string]interface{}{
				"cached_pools": len(valuationKeys),
			}
		}
	}

	if h.db != nil {
		if sqlDB, err := h.db.DB.DB(); err == nil {
			stats := sqlDB.Stats()
			metrics["database"] = map[string]interface{}{
				"open_connections": stats.OpenConnections,
				"in_use":           stats.InUse,
				"idle":             stats.Idle,
			}
		}
	}

	c.JSON(http.StatusOK, metrics)
}
