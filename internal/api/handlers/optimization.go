package handlers

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/roster-optimizer/internal/engine"
	"github.com/stitts-dev/roster-optimizer/internal/storage"
	"github.com/stitts-dev/roster-optimizer/internal/valuation"
	"github.com/stitts-dev/roster-optimizer/internal/websocket"
	"github.com/stitts-dev/roster-optimizer/pkg/cache"
	"github.com/stitts-dev/roster-optimizer/pkg/config"
	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

// OptimizationHandler handles roster optimization endpoints
type OptimizationHandler struct {
	store  *storage.Store
	cache  *cache.OptimizationCacheService
	wsHub  *websocket.Hub
	config *config.Config
	logger *logrus.Logger
}

// NewOptimizationHandler creates a new optimization handler
func NewOptimizationHandler(
	store *storage.Store,
	cache *cache.OptimizationCacheService,
	wsHub *websocket.Hub,
	config *config.Config,
	logger *logrus.Logger,
) *OptimizationHandler {
	return &OptimizationHandler{
		store:  store,
		cache:  cache,
		wsHub:  wsHub,
		config: config,
		logger: logger,
	}
}

// OptimizeRoster runs the evolutionary search for a roster request
func (h *OptimizationHandler) OptimizeRoster(c *gin.Context) {
	var req types.OptimizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	if err := h.resolvePlayerPool(c.Request.Context(), &req); err != nil {
		if errors.Is(err, storage.ErrPoolNotFound) {
			c.JSON(http.StatusNotFound, types.ErrorResponse{
				Error: "Player pool not found",
				Code:  "POOL_NOT_FOUND",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to resolve player pool")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error: "Failed to load player pool",
			Code:  "POOL_LOOKUP_FAILED",
		})
		return
	}

	if err := h.validateRequest(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid optimization request",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	// Check cache first
	cacheKey := h.generateCacheKey(req)
	if cached, err := h.cache.GetOptimizationResult(c.Request.Context(), cacheKey); err == nil && cached != nil {
		h.logger.WithField("cache_key", cacheKey).Info("Returning cached optimization result")
		cached.Metadata.CacheHit = true
		c.JSON(http.StatusOK, cached)
		return
	}

	settings := types.EngineSettings{}
	if req.Settings != nil {
		settings = *req.Settings
	}
	if settings.EvalWorkers == 0 {
		settings.EvalWorkers = h.config.EvalWorkers
	}

	eng, err := engine.NewEngine(req.CurrentRoster, req.PlayerPool, req.Constraints, nil, settings, h.logger)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid optimization request",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	// Persist the run record. Persistence is best effort: the search
	// still runs when the database is unavailable.
	run := &types.OptimizationRun{
		UserID: req.UserID,
		Status: types.RunStatusPending,
	}
	if reqJSON, err := json.Marshal(req); err == nil {
		run.Request = reqJSON
	}
	if err := h.store.CreateRun(c.Request.Context(), run); err != nil {
		h.logger.WithError(err).Warn("Failed to persist optimization run")
	}
	if err := h.store.MarkRunRunning(c.Request.Context(), run.ID); err != nil {
		h.logger.WithError(err).Warn("Failed to mark optimization run running")
	}

	// Forward progress updates to WebSocket clients
	progressChan := make(chan types.ProgressUpdate, 100)
	defer close(progressChan)
	go h.forwardProgress(req.UserID, run.ID, progressChan)

	progressChan <- types.ProgressUpdate{
		Type:        "optimization",
		Progress:    0.0,
		Message:     "Starting optimization...",
		CurrentStep: "initialization",
		TotalSteps:  eng.Settings().Generations,
		Timestamp:   time.Now(),
	}

	timeout := time.Duration(h.config.OptimizationTimeout) * time.Second
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	startTime := time.Now()
	best, history, evolveErr := eng.EvolveWithProgress(ctx, progressChan)
	elapsed := time.Since(startTime)

	if best == nil {
		h.logger.WithError(evolveErr).Error("Optimization failed")
		if err := h.store.FailRun(context.Background(), run.ID, evolveErr.Error()); err != nil {
			h.logger.WithError(err).Warn("Failed to mark optimization run failed")
		}
		status := http.StatusInternalServerError
		code := "OPTIMIZATION_ERROR"
		if errors.Is(evolveErr, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
			code = "OPTIMIZATION_TIMEOUT"
		}
		c.JSON(status, types.ErrorResponse{
			Error: "Optimization failed",
			Code:  code,
			Details: map[string]string{
				"error": evolveErr.Error(),
			},
		})
		return
	}

	warnings := append([]string(nil), eng.Warnings()...)
	if evolveErr != nil {
		// The search was interrupted but a best roster exists; return
		// the partial result instead of failing the whole request.
		warnings = append(warnings, fmt.Sprintf("optimization stopped early: %v", evolveErr))
	}

	result := &types.OptimizationResult{
		RunID:          run.ID,
		BestRoster:     best.Records(),
		BestFitness:    eng.BestFitness(),
		TotalCap:       best.TotalCap(),
		PositionCounts: best.PositionCounts(),
		History:        history,
		Summary:        valuation.NewPortfolioAnalyzer(best.Players).SummaryReport(),
		Metadata: types.OptimizationMetadata{
			PopulationSize: eng.Settings().PopulationSize,
			Generations:    eng.Settings().Generations,
			Seed:           eng.Seed(),
			ExecutionTime:  elapsed,
			Warnings:       warnings,
		},
	}

	if resultJSON, err := json.Marshal(result); err == nil {
		if err := h.store.CompleteRun(context.Background(), run.ID, resultJSON, result.BestFitness, len(history), elapsed.Milliseconds()); err != nil {
			h.logger.WithError(err).Warn("Failed to persist optimization result")
		}
	}

	// Cache the result
	if err := h.cache.SetOptimizationResult(c.Request.Context(), cacheKey, result, h.config.CacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache optimization result")
	}

	progressChan <- types.ProgressUpdate{
		Type:        "optimization",
		Progress:    1.0,
		Message:     fmt.Sprintf("Optimization completed! Best fitness %.4f in %v", result.BestFitness, elapsed),
		CurrentStep: "completed",
		TotalSteps:  eng.Settings().Generations,
		Timestamp:   time.Now(),
	}

	h.logger.WithFields(logrus.Fields{
		"run_id":         run.ID,
		"best_fitness":   result.BestFitness,
		"generations":    len(history),
		"execution_time": elapsed,
		"user_id":        req.UserID,
	}).Info("Optimization completed successfully")

	c.JSON(http.StatusOK, result)
}

// ValidateOptimizationRequest validates an optimization request without running it
func (h *OptimizationHandler) ValidateOptimizationRequest(c *gin.Context) {
	var req types.OptimizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid request format",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := h.resolvePlayerPool(c.Request.Context(), &req); err != nil {
		if errors.Is(err, storage.ErrPoolNotFound) {
			c.JSON(http.StatusNotFound, types.ErrorResponse{
				Error: "Player pool not found",
				Code:  "POOL_NOT_FOUND",
			})
			return
		}
		h.logger.WithError(err).Error("Failed to resolve player pool")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error: "Failed to load player pool",
			Code:  "POOL_LOOKUP_FAILED",
		})
		return
	}

	if err := h.validateRequest(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid optimization request",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	settings := types.EngineSettings{}
	if req.Settings != nil {
		settings = *req.Settings
	}
	eng, err := engine.NewEngine(req.CurrentRoster, req.PlayerPool, req.Constraints, nil, settings, h.logger)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{
			Error: "Invalid optimization request",
			Code:  "INVALID_REQUEST",
			Details: map[string]string{
				"validation_error": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, types.SuccessResponse{
		Message: "Optimization request is valid",
		Data: map[string]interface{}{
			"player_count":    len(req.PlayerPool),
			"roster_count":    len(req.CurrentRoster),
			"population_size": eng.Settings().PopulationSize,
			"generations":     eng.Settings().Generations,
			"estimated_time":  h.estimateOptimizationTime(eng.Settings(), len(req.PlayerPool)),
		},
	})
}

// GetCacheStatus returns cache statistics
func (h *OptimizationHandler) GetCacheStatus(c *gin.Context) {
	status := h.cache.GetStatus(c.Request.Context())
	status["websocket_clients"] = h.wsHub.GetConnectionCount()
	c.JSON(http.StatusOK, status)
}

// Helper methods

// resolvePlayerPool loads the referenced pool when the request carries a
// pool ID instead of inline players. Valued pools are served from cache
// when possible.
func (h *OptimizationHandler) resolvePlayerPool(ctx context.Context, req *types.OptimizationRequest) error {
	if req.PoolID == nil || len(req.PlayerPool) > 0 {
		return nil
	}

	if players, err := h.cache.GetValuedPool(ctx, req.PoolID.String()); err == nil && len(players) > 0 {
		req.PlayerPool = players
		return nil
	}

	pool, err := h.store.GetPool(ctx, *req.PoolID)
	if err != nil {
		return err
	}
	req.PlayerPool = pool.Players

	if err := h.cache.SetValuedPool(ctx, pool.ID.String(), pool.Players, h.config.CacheTTL); err != nil {
		h.logger.WithError(err).Warn("Failed to cache valued pool")
	}
	return nil
}

func (h *OptimizationHandler) validateRequest(req *types.OptimizationRequest) error {
	if len(req.PlayerPool) == 0 {
		return fmt.Errorf("player pool must not be empty")
	}

	if req.Settings != nil {
		if req.Settings.PopulationSize > h.config.MaxPopulationSize {
			return fmt.Errorf("population size exceeds limit of %d", h.config.MaxPopulationSize)
		}
		if req.Settings.Generations > h.config.MaxGenerations {
			return fmt.Errorf("generations exceeds limit of %d", h.config.MaxGenerations)
		}
	}

	return nil
}

// generateCacheKey hashes the inputs that shape the search so identical
// problems share a cache entry regardless of who submitted them.
func (h *OptimizationHandler) generateCacheKey(req types.OptimizationRequest) string {
	payload, _ := json.Marshal(struct {
		CurrentRoster []types.PlayerRecord     `json:"current_roster"`
		PlayerPool    []types.PlayerRecord     `json:"player_pool"`
		Constraints   *types.RosterConstraints `json:"constraints"`
		Settings      *types.EngineSettings    `json:"settings"`
	}{req.CurrentRoster, req.PlayerPool, req.Constraints, req.Settings})
	return fmt.Sprintf("%x", md5.Sum(payload))
}

// forwardProgress drains the progress channel for the lifetime of a run
// and relays updates to the requesting user's WebSocket connections.
func (h *OptimizationHandler) forwardProgress(userID uuid.UUID, runID uuid.UUID, updates <-chan types.ProgressUpdate) {
	for update := range updates {
		if userID == uuid.Nil {
			continue
		}
		update.RunID = runID.String()
		h.wsHub.BroadcastToUser(userID, update)
	}
}

func (h *OptimizationHandler) estimateOptimizationTime(settings types.EngineSettings, poolSize int) string {
	// Rough estimate: one microsecond per pool player per evaluation
	evaluations := settings.PopulationSize * settings.Generations
	duration := time.Duration(evaluations*poolSize) * time.Microsecond
	return duration.String()
}
