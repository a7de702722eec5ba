package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/roster-optimizer/internal/roster"
	"github.com/stitts-dev/roster-optimizer/internal/valuation"
	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

// Engine runs the evolutionary roster search. One engine owns one run:
// it keeps private copies of the player data and constraints, a single
// seeded random source, and the best candidate seen so far. Engines are
// not safe for concurrent use; run one search per engine.
type Engine struct {
	settings    types.EngineSettings
	constraints *types.RosterConstraints
	// constraint positions in sorted order, so every stochastic step
	// consumes randomness in a reproducible sequence
	positions []string

	current []*types.PlayerRecord
	pool    []*types.PlayerRecord

	model  *valuation.Model
	rng    *rand.Rand
	seed   int64
	logger *logrus.Logger

	bestEver        *roster.Candidate
	bestFitnessEver float64
	warnings        []string
}

// NewEngine validates the configuration and prepares a search over the
// given players. The engine copies and values every record it is handed,
// so callers keep ownership of their slices. Malformed settings or
// constraints fail here, before any generation runs.
func NewEngine(
	currentRoster []types.PlayerRecord,
	playerPool []types.PlayerRecord,
	constraints *types.RosterConstraints,
	model *valuation.Model,
	settings types.EngineSettings,
	log *logrus.Logger,
) (*Engine, error) {
	if constraints == nil {
		constraints = types.DefaultRosterConstraints()
	} else {
		constraints = constraints.Clone()
	}
	if err := constraints.Validate(); err != nil {
		return nil, fmt.Errorf("invalid roster constraints: %w", err)
	}

	applySettingsDefaults(&settings)
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid engine settings: %w", err)
	}

	if model == nil {
		model = valuation.NewModel()
	}
	if log == nil {
		log = logrus.New()
	}

	seed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	positions := make([]string, 0, len(constraints.PositionLimits))
	for position := range constraints.PositionLimits {
		positions = append(positions, position)
	}
	sort.Strings(positions)

	e := &Engine{
		settings:        settings,
		constraints:     constraints,
		positions:       positions,
		current:         copyRecords(currentRoster),
		pool:            copyRecords(playerPool),
		model:           model,
		rng:             rand.New(rand.NewSource(seed)),
		seed:            seed,
		logger:          log,
		bestFitnessEver: math.Inf(-1),
	}

	// Valuation is idempotent, so valuing here covers both raw and
	// already-valued inputs.
	for _, p := range e.current {
		e.model.ValuePlayer(p)
	}
	for _, p := range e.pool {
		e.model.ValuePlayer(p)
	}

	return e, nil
}

// ValidateSettings rejects search parameters that would make a run
// meaningless or unterminating.
func ValidateSettings(s types.EngineSettings) error {
	if s.PopulationSize <= 0 {
		return fmt.Errorf("population size must be positive, got %d", s.PopulationSize)
	}
	if s.Generations <= 0 {
		return fmt.Errorf("generations must be positive, got %d", s.Generations)
	}
	if s.MutationRate < 0 || s.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be between 0 and 1, got %.3f", s.MutationRate)
	}
	if s.CrossoverRate < 0 || s.CrossoverRate > 1 {
		return fmt.Errorf("crossover rate must be between 0 and 1, got %.3f", s.CrossoverRate)
	}
	if s.TournamentSize < 1 {
		return fmt.Errorf("tournament size must be at least 1, got %d", s.TournamentSize)
	}
	if s.ElitismCount < 0 {
		return fmt.Errorf("elitism count must not be negative, got %d", s.ElitismCount)
	}
	if s.ElitismCount >= s.PopulationSize {
		return fmt.Errorf("elitism count %d must be below population size %d", s.ElitismCount, s.PopulationSize)
	}
	if s.EvalWorkers < 0 {
		return fmt.Errorf("eval workers must not be negative, got %d", s.EvalWorkers)
	}
	return nil
}

func applySettingsDefaults(s *types.EngineSettings) {
	defaults := types.DefaultEngineSettings()
	if s.PopulationSize == 0 {
		s.PopulationSize = defaults.PopulationSize
	}
	if s.Generations == 0 {
		s.Generations = defaults.Generations
	}
	if s.MutationRate == 0 {
		s.MutationRate = defaults.MutationRate
	}
	if s.CrossoverRate == 0 {
		s.CrossoverRate = defaults.CrossoverRate
	}
	if s.TournamentSize == 0 {
		s.TournamentSize = defaults.TournamentSize
	}
	if s.ElitismCount == 0 {
		s.ElitismCount = defaults.ElitismCount
	}
}

// copyRecords takes ownership of the caller's records. Records without
// an ID get one here; roster membership checks rely on distinct IDs.
func copyRecords(records []types.PlayerRecord) []*types.PlayerRecord {
	out := make([]*types.PlayerRecord, len(records))
	for i := range records {
		copied := records[i]
		if copied.ID == uuid.Nil {
			copied.ID = uuid.New()
		}
		out[i] = &copied
	}
	return out
}

// Settings returns the effective search parameters.
func (e *Engine) Settings() types.EngineSettings {
	return e.settings
}

// Seed returns the seed driving this run's random source.
func (e *Engine) Seed() int64 {
	return e.seed
}

// BestFitness returns the best fitness observed so far.
func (e *Engine) BestFitness() float64 {
	return e.bestFitnessEver
}

// Warnings returns non-fatal degradations encountered during the run.
func (e *Engine) Warnings() []string {
	return e.warnings
}

// Evolve runs the full generational search and returns the best
// candidate found together with the per-generation history.
func (e *Engine) Evolve(ctx context.Context) (*roster.Candidate, []types.GenerationStats, error) {
	return e.EvolveWithProgress(ctx, nil)
}

// EvolveWithProgress runs the search, pushing a non-blocking progress
// update onto the channel after every generation. A nil channel is
// allowed. If the context is cancelled between generations, the best
// candidate so far and the partial history are returned alongside the
// context error.
func (e *Engine) EvolveWithProgress(ctx context.Context, progress chan<- types.ProgressUpdate) (*roster.Candidate, []types.GenerationStats, error) {
	start := time.Now()
	e.logger.WithFields(logrus.Fields{
		"population_size": e.settings.PopulationSize,
		"generations":     e.settings.Generations,
		"mutation_rate":   e.settings.MutationRate,
		"crossover_rate":  e.settings.CrossoverRate,
		"pool_size":       len(e.pool),
		"roster_size":     len(e.current),
		"seed":            e.seed,
	}).Info("Starting roster evolution")

	population := e.InitializePopulation()
	history := make([]types.GenerationStats, 0, e.settings.Generations)

	for generation := 0; generation < e.settings.Generations; generation++ {
		if err := ctx.Err(); err != nil {
			e.logger.WithFields(logrus.Fields{
				"generation":   generation,
				"best_fitness": e.bestFitnessEver,
			}).Warn("Evolution cancelled, returning best candidate so far")
			return e.bestEver, history, err
		}

		fitnesses := e.evaluatePopulation(population)

		// Rank indices by fitness, best first. Stable sort keeps the
		// earliest index ahead on ties.
		ranked := make([]int, len(population))
		for i := range ranked {
			ranked[i] = i
		}
		sort.SliceStable(ranked, func(a, b int) bool {
			return fitnesses[ranked[a]] > fitnesses[ranked[b]]
		})

		best := ranked[0]
		if fitnesses[best] > e.bestFitnessEver {
			e.bestFitnessEver = fitnesses[best]
			e.bestEver = population[best].Clone()
		}

		stats := types.GenerationStats{
			Generation:  generation,
			BestFitness: fitnesses[best],
			AvgFitness:  stat.Mean(fitnesses, nil),
			Diversity:   e.diversity(population),
		}
		history = append(history, stats)
		e.sendProgress(progress, generation, stats)

		if (generation+1)%10 == 0 {
			e.logger.WithFields(logrus.Fields{
				"generation":   generation + 1,
				"best_fitness": stats.BestFitness,
				"avg_fitness":  stats.AvgFitness,
				"diversity":    stats.Diversity,
			}).Debug("Generation complete")
		}

		population = e.nextGeneration(population, fitnesses, ranked)
	}

	e.logger.WithFields(logrus.Fields{
		"best_fitness": e.bestFitnessEver,
		"generations":  len(history),
		"duration":     time.Since(start),
	}).Info("Roster evolution complete")

	return e.bestEver, history, nil
}

// nextGeneration carries the elite candidates over unchanged and fills
// the remainder with offspring from tournament-selected parents.
func (e *Engine) nextGeneration(population []*roster.Candidate, fitnesses []float64, ranked []int) []*roster.Candidate {
	next := make([]*roster.Candidate, 0, len(population))

	eliteCount := e.settings.ElitismCount
	if eliteCount > len(population) {
		eliteCount = len(population)
	}
	for i := 0; i < eliteCount; i++ {
		next = append(next, population[ranked[i]].Clone())
	}

	for len(next) < len(population) {
		parent1 := e.TournamentSelect(population, fitnesses)
		parent2 := e.TournamentSelect(population, fitnesses)

		child1, child2 := e.Crossover(parent1, parent2)

		child1 = e.repair(e.Mutate(child1))
		next = append(next, child1)

		if len(next) < len(population) {
			child2 = e.repair(e.Mutate(child2))
			next = append(next, child2)
		}
	}

	return next
}

// diversity measures the fraction of distinct player identities across
// all roster slots in the population. 1.0 means no player appears twice;
// a converged population trends toward the size of a single roster over
// the population's total slots.
func (e *Engine) diversity(population []*roster.Candidate) float64 {
	seen := make(map[uuid.UUID]struct{})
	slots := 0
	for _, candidate := range population {
		slots += len(candidate.Players)
		for _, p := range candidate.Players {
			seen[p.ID] = struct{}{}
		}
	}
	if slots == 0 {
		return 0
	}
	return float64(len(seen)) / float64(slots)
}

func (e *Engine) sendProgress(progress chan<- types.ProgressUpdate, generation int, stats types.GenerationStats) {
	if progress == nil {
		return
	}
	update := types.ProgressUpdate{
		Type:        "optimization",
		Progress:    float64(generation+1) / float64(e.settings.Generations),
		Message:     fmt.Sprintf("Generation %d/%d, best fitness %.4f", generation+1, e.settings.Generations, stats.BestFitness),
		CurrentStep: "evolving",
		TotalSteps:  e.settings.Generations,
		Timestamp:   time.Now(),
	}
	// A slow or absent listener must never stall the search.
	select {
	case progress <- update:
	default:
	}
}
