package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

// OptimizationCacheService handles caching for roster optimization results
type OptimizationCacheService struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewOptimizationCacheService creates a new optimization cache service
func NewOptimizationCacheService(client *redis.Client, logger *logrus.Logger) *OptimizationCacheService {
	return &OptimizationCacheService{
		client: client,
		logger: logger,
	}
}

// SetOptimizationResult stores an optimization result in cache
func (c *OptimizationCacheService) SetOptimizationResult(ctx context.Context, key string, result *types.OptimizationResult, expiration time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal optimization result: %w", err)
	}

	fullKey := fmt.Sprintf("optimization:%s", key)
	if err := c.client.Set(ctx, fullKey, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set optimization result in cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":    fullKey,
		"expiration":   expiration,
		"best_fitness": result.BestFitness,
	}).Debug("Cached optimization result")

	return nil
}

// GetOptimizationResult retrieves an optimization result from cache
func (c *OptimizationCacheService) GetOptimizationResult(ctx context.Context, key string) (*types.OptimizationResult, error) {
	fullKey := fmt.Sprintf("optimization:%s", key)
	data, err := c.client.Get(ctx, fullKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("optimization result not found in cache")
		}
		return nil, fmt.Errorf("failed to get optimization result from cache: %w", err)
	}

	var result types.OptimizationResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal optimization result: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":    fullKey,
		"best_fitness": result.BestFitness,
	}).Debug("Retrieved optimization result from cache")

	return &result, nil
}

// SetValuedPool stores a valued player pool in cache
func (c *OptimizationCacheService) SetValuedPool(ctx context.Context, key string, players []types.PlayerRecord, expiration time.Duration) error {
	data, err := json.Marshal(players)
	if err != nil {
		return fmt.Errorf("failed to marshal valued pool: %w", err)
	}

	fullKey := fmt.Sprintf("valuation:%s", key)
	if err := c.client.Set(ctx, fullKey, data, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set valued pool in cache: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":    fullKey,
		"expiration":   expiration,
		"player_count": len(players),
	}).Debug("Cached valued player pool")

	return nil
}

// GetValuedPool retrieves a valued player pool from cache
func (c *OptimizationCacheService) GetValuedPool(ctx context.Context, key string) ([]types.PlayerRecord, error) {
	fullKey := fmt.Sprintf("valuation:%s", key)
	data, err := c.client.Get(ctx, fullKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("valued pool not found in cache")
		}
		return nil, fmt.Errorf("failed to get valued pool from cache: %w", err)
	}

	var players []types.PlayerRecord
	if err := json.Unmarshal([]byte(data), &players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal valued pool: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":    fullKey,
		"player_count": len(players),
	}).Debug("Retrieved valued pool from cache")

	return players, nil
}

// DeleteOptimizationResult removes an optimization result from cache
func (c *OptimizationCacheService) DeleteOptimizationResult(ctx context.Context, key string) error {
	fullKey := fmt.Sprintf("optimization:%s", key)
	if err := c.client.Del(ctx, fullKey).Err(); err != nil {
		return fmt.Errorf("failed to delete optimization result from cache: %w", err)
	}

	c.logger.WithField("cache_key", fullKey).Debug("Deleted optimization result from cache")
	return nil
}

// GetStatus returns cache statistics
func (c *OptimizationCacheService) GetStatus(ctx context.Context) map[string]interface{} {
	info := c.client.Info(ctx)
	dbSize := c.client.DBSize(ctx)

	status := map[string]interface{}{
		"service":   "optimization-cache",
		"timestamp": time.Now(),
		"connected": true,
	}

	if dbSize.Err() == nil {
		status["db_size"] = dbSize.Val()
	}

	if info.Err() == nil {
		status["redis_info"] = "available"
	}

	optimizationKeys, err := c.client.Keys(ctx, "optimization:*").Result()
	if err == nil {
		status["optimization_keys"] = len(optimizationKeys)
	}

	valuationKeys, err := c.client.Keys(ctx, "valuation:*").Result()
	if err == nil {
		status["valuation_keys"] = len(valuationKeys)
	}

	return status
}

// FlushOptimizationCache clears all optimization results from cache
func (c *OptimizationCacheService) FlushOptimizationCache(ctx context.Context) error {
	keys, err := c.client.Keys(ctx, "optimization:*").Result()
	if err != nil {
		return fmt.Errorf("failed to get optimization keys: %w", err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete optimization keys: %w", err)
		}
	}

	c.logger.WithField("deleted_keys", len(keys)).Info("Flushed optimization cache")
	return nil
}

// SetWithRetry attempts to set a cache entry with retries
func (c *OptimizationCacheService) SetWithRetry(ctx context.Context, key string, value interface{}, expiration time.Duration, maxRetries int) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
			lastErr = err
			c.logger.WithError(err).WithField("attempt", i+1).Warn("Cache set attempt failed")
			time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
			continue
		}
		return nil
	}

	return fmt.Errorf("failed to set cache after %d retries: %w", maxRetries, lastErr)
}
