package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/roster-optimizer/internal/storage"
	"github.com/stitts-dev/roster-optimizer/internal/valuation"
	"github.com/stitts-dev/roster-optimizer/pkg/cache"
	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

type PoolHandler struct {
	store  *storage.Store
	cache  *cache.OptimizationCacheService
	model  *valuation.Model
	logger *logrus.Logger
}

func NewPoolHandler(store *storage.Store, cache *cache.OptimizationCacheService, logger *logrus.Logger) *PoolHandler {
	return &PoolHandler{
		store:  store,
		cache:  cache,
		model:  valuation.NewModel(),
		logger: logger,
	}
}

// CreatePool values the submitted players and stores them as a reusable pool
func (h *PoolHandler) CreatePool(c *gin.Context) {
	var pool types.PlayerPool
	if err := c.ShouldBindJSON(&pool); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if pool.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pool name is required"})
		return
	}

	if len(pool.Players) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pool players are required"})
		return
	}

	for i := range pool.Players {
		if pool.Players[i].ID == uuid.Nil {
			pool.Players[i].ID = uuid.New()
		}
	}
	h.model.ValueRoster(pool.Players)

	if err := h.store.CreatePool(c.Request.Context(), &pool); err != nil {
		h.logger.WithError(err).Error("Failed to create player pool")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := h.cache.SetValuedPool(c.Request.Context(), pool.ID.String(), pool.Players, 24*time.Hour); err != nil {
		h.logger.WithError(err).Warn("Failed to cache valued pool")
	}

	h.logger.WithFields(logrus.Fields{
		"pool_id":      pool.ID,
		"player_count": len(pool.Players),
		"season":       pool.Season,
	}).Info("Created player pool")

	c.JSON(http.StatusCreated, pool)
}

func (h *PoolHandler) GetPool(c *gin.Context) {
	poolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pool ID"})
		return
	}

	pool, err := h.store.GetPool(c.Request.Context(), poolID)
	if err != nil {
		if errors.Is(err, storage.ErrPoolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Pool not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch player pool")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, pool)
}

func (h *PoolHandler) ListPools(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return
	}

	pools, err := h.store.ListPools(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to fetch player pools")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pools": pools,
		"count": len(pools),
	})
}
