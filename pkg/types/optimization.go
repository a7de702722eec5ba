package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EngineSettings configures a single evolutionary search run. Zero-valued
// fields are filled from DefaultEngineSettings before the run starts.
type EngineSettings struct {
	PopulationSize int     `json:"population_size"`
	Generations    int     `json:"generations"`
	MutationRate   float64 `json:"mutation_rate"`
	CrossoverRate  float64 `json:"crossover_rate"`
	TournamentSize int     `json:"tournament_size"`
	ElitismCount   int     `json:"elitism_count"`
	// Seed fixes the random source for reproducible runs; 0 means derive
	// from the clock.
	Seed int64 `json:"seed,omitempty"`
	// EvalWorkers bounds concurrent fitness evaluation; 0 means one worker
	// per CPU, 1 forces fully serial evaluation.
	EvalWorkers int `json:"eval_workers,omitempty"`
}

// DefaultEngineSettings returns the standard search parameters.
func DefaultEngineSettings() EngineSettings {
	return EngineSettings{
		PopulationSize: 100,
		Generations:    100,
		MutationRate:   0.15,
		CrossoverRate:  0.8,
		TournamentSize: 5,
		ElitismCount:   5,
	}
}

// GenerationStats is one entry of the per-generation convergence history
type GenerationStats struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"best_fitness"`
	AvgFitness  float64 `json:"avg_fitness"`
	Diversity   float64 `json:"diversity"`
}

// OptimizationRequest represents a roster optimization request
type OptimizationRequest struct {
	UserID        uuid.UUID          `json:"user_id,omitempty"`
	PoolID        *uuid.UUID         `json:"pool_id,omitempty"`
	CurrentRoster []PlayerRecord     `json:"current_roster"`
	PlayerPool    []PlayerRecord     `json:"player_pool"`
	Constraints   *RosterConstraints `json:"constraints,omitempty"`
	Settings      *EngineSettings    `json:"settings,omitempty"`
}

// OptimizationMetadata describes how a result was produced
type OptimizationMetadata struct {
	PopulationSize int           `json:"population_size"`
	Generations    int           `json:"generations"`
	Seed           int64         `json:"seed"`
	ExecutionTime  time.Duration `json:"execution_time"`
	Warnings       []string      `json:"warnings,omitempty"`
	CacheHit       bool          `json:"cache_hit,omitempty"`
}

// OptimizationResult represents the outcome of a roster optimization run
type OptimizationResult struct {
	RunID          uuid.UUID            `json:"run_id"`
	BestRoster     []PlayerRecord       `json:"best_roster"`
	BestFitness    float64              `json:"best_fitness"`
	TotalCap       float64              `json:"total_cap"`
	PositionCounts map[string]int       `json:"position_counts"`
	History        []GenerationStats    `json:"history"`
	Summary        *PortfolioSummary    `json:"summary,omitempty"`
	Metadata       OptimizationMetadata `json:"metadata"`
}

// ValuationGap annotates a player whose cap hit sits far from fair value
type ValuationGap struct {
	Player  PlayerRecord `json:"player"`
	Amount  float64      `json:"amount"`
	Percent float64      `json:"percent"`
}

// PortfolioSummary aggregates roster-level valuation metrics
type PortfolioSummary struct {
	TotalValue         float64            `json:"total_value"`
	TotalCost          float64            `json:"total_cost"`
	Efficiency         float64            `json:"efficiency"`
	Risk               float64            `json:"risk"`
	RiskAdjustedReturn float64            `json:"sharpe_ratio"`
	PositionAllocation map[string]float64 `json:"position_allocation"`
	OverValued         []ValuationGap     `json:"overvalued"`
	UnderValued        []ValuationGap     `json:"undervalued"`
	AverageAge         float64            `json:"average_age"`
	PlayerCount        int                `json:"player_count"`
}

// Run lifecycle states persisted with each optimization run
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// OptimizationRun is the persisted record of one optimization request
type OptimizationRun struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Status      string          `gorm:"not null;default:'pending'" json:"status"`
	Request     json.RawMessage `gorm:"type:jsonb" json:"request,omitempty"`
	Result      json.RawMessage `gorm:"type:jsonb" json:"result,omitempty"`
	BestFitness float64         `json:"best_fitness"`
	Generations int             `json:"generations"`
	DurationMs  int64           `json:"duration_ms"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
