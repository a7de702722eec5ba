package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/stitts-dev/roster-optimizer/pkg/database"
	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

// Sentinel errors so handlers can map storage misses to HTTP statuses
// without inspecting driver internals.
var (
	ErrRunNotFound  = errors.New("optimization run not found")
	ErrPoolNotFound = errors.New("player pool not found")
)

// Store persists optimization runs and player pools.
type Store struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewStore creates a store over an established database connection.
func NewStore(db *database.DB, logger *logrus.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// AutoMigrate creates or updates the run and pool tables to match the
// Go models. It never drops columns.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&types.OptimizationRun{}, &types.PlayerPool{}); err != nil {
		return fmt.Errorf("failed to migrate optimizer tables: %w", err)
	}
	return nil
}

// CreateRun inserts a new run record, assigning an ID and pending
// status when absent.
func (s *Store) CreateRun(ctx context.Context, run *types.OptimizationRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.Status == "" {
		run.Status = types.RunStatusPending
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create optimization run: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"run_id":  run.ID,
		"user_id": run.UserID,
	}).Debug("Optimization run created")
	return nil
}

// MarkRunRunning flips a pending run to running.
func (s *Store) MarkRunRunning(ctx context.Context, id uuid.UUID) error {
	return s.updateRun(ctx, id, map[string]interface{}{
		"status": types.RunStatusRunning,
	})
}

// CompleteRun stores the serialized result alongside the headline
// figures reporting queries sort on.
func (s *Store) CompleteRun(ctx context.Context, id uuid.UUID, result json.RawMessage, bestFitness float64, generations int, durationMs int64) error {
	return s.updateRun(ctx, id, map[string]interface{}{
		"status":       types.RunStatusCompleted,
		"result":       result,
		"best_fitness": bestFitness,
		"generations":  generations,
		"duration_ms":  durationMs,
	})
}

// FailRun records why a run never produced a result.
func (s *Store) FailRun(ctx context.Context, id uuid.UUID, cause string) error {
	return s.updateRun(ctx, id, map[string]interface{}{
		"status": types.RunStatusFailed,
		"error":  cause,
	})
}

func (s *Store) updateRun(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := s.db.WithContext(ctx).
		Model(&types.OptimizationRun{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update optimization run %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// GetRun loads one run by ID.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*types.OptimizationRun, error) {
	var run types.OptimizationRun
	err := s.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load optimization run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns a user's runs, newest first. Limits outside (0, 100]
// fall back to 20.
func (s *Store) ListRuns(ctx context.Context, userID uuid.UUID, limit int) ([]types.OptimizationRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var runs []types.OptimizationRun
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list optimization runs: %w", err)
	}
	return runs, nil
}

// CreatePool stores a named player pool, assigning an ID when absent.
func (s *Store) CreatePool(ctx context.Context, pool *types.PlayerPool) error {
	if pool.ID == uuid.Nil {
		pool.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(pool).Error; err != nil {
		return fmt.Errorf("failed to create player pool: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"pool_id": pool.ID,
		"players": len(pool.Players),
	}).Debug("Player pool created")
	return nil
}

// GetPool loads one pool by ID.
func (s *Store) GetPool(ctx context.Context, id uuid.UUID) (*types.PlayerPool, error) {
	var pool types.PlayerPool
	err := s.db.WithContext(ctx).First(&pool, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPoolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player pool %s: %w", id, err)
	}
	return &pool, nil
}

// ListPools returns stored pools, newest first.
func (s *Store) ListPools(ctx context.Context, limit int) ([]types.PlayerPool, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var pools []types.PlayerPool
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&pools).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list player pools: %w", err)
	}
	return pools, nil
}
