package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/roster-optimizer/internal/roster"
	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

// maxInitAttempts bounds how many random builds the initializer tries
// before settling for a short population.
const maxInitAttempts = 10000

// InitializePopulation seeds the search. The current roster always
// occupies slot zero, valid or not, so the incumbent is never lost to
// sampling. The remaining slots are filled with randomly built
// constraint-respecting rosters; if the pool is too thin to produce
// enough of them within the attempt budget, the engine records a
// warning and continues with what it has.
func (e *Engine) InitializePopulation() []*roster.Candidate {
	population := make([]*roster.Candidate, 0, e.settings.PopulationSize)

	incumbent := make([]*types.PlayerRecord, len(e.current))
	copy(incumbent, e.current)
	population = append(population, roster.NewCandidate(incumbent))

	attempts := 0
	for len(population) < e.settings.PopulationSize && attempts < maxInitAttempts {
		attempts++
		candidate := e.randomCandidate()
		if candidate.IsValid(e.constraints) {
			population = append(population, candidate)
		}
	}

	if len(population) < e.settings.PopulationSize {
		warning := fmt.Sprintf(
			"population initialization produced %d of %d candidates after %d attempts; pool may be too small for the constraints",
			len(population), e.settings.PopulationSize, attempts,
		)
		e.warnings = append(e.warnings, warning)
		e.logger.WithFields(logrus.Fields{
			"requested": e.settings.PopulationSize,
			"built":     len(population),
			"attempts":  attempts,
			"pool_size": len(e.pool),
		}).Warn("Population initialization fell short, continuing with smaller population")
	}

	return population
}

// randomCandidate builds one roster by shuffling the pool, greedily
// admitting players that keep every constraint satisfiable, then
// topping up under-filled positions with the cheapest eligible players.
func (e *Engine) randomCandidate() *roster.Candidate {
	shuffled := make([]*types.PlayerRecord, len(e.pool))
	copy(shuffled, e.pool)
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	players := make([]*types.PlayerRecord, 0, e.constraints.MaxSize)
	counts := make(map[string]int)
	totalCap := 0.0

	for _, p := range shuffled {
		if len(players) >= e.constraints.MaxSize {
			break
		}
		limit, constrained := e.constraints.PositionLimits[p.Position]
		if !constrained || counts[p.Position] >= limit.Max {
			continue
		}
		if totalCap+p.CapHit > e.constraints.SalaryCap {
			continue
		}
		players = append(players, p)
		counts[p.Position]++
		totalCap += p.CapHit
	}

	// Fill positions still below their minimum, cheapest first, while
	// the size and cap allow it.
	for _, position := range e.positions {
		limit := e.constraints.PositionLimits[position]
		for counts[position] < limit.Min && len(players) < e.constraints.MaxSize {
			cheapest := e.cheapestEligible(shuffled, players, position, e.constraints.SalaryCap-totalCap)
			if cheapest == nil {
				break
			}
			players = append(players, cheapest)
			counts[position]++
			totalCap += cheapest.CapHit
		}
	}

	return roster.NewCandidate(players)
}

// cheapestEligible finds the lowest cap hit player at the given position
// who is not already rostered and fits in the remaining budget.
func (e *Engine) cheapestEligible(pool, rostered []*types.PlayerRecord, position string, budget float64) *types.PlayerRecord {
	onRoster := make(map[string]struct{}, len(rostered))
	for _, p := range rostered {
		onRoster[p.ID.String()] = struct{}{}
	}

	var cheapest *types.PlayerRecord
	for _, p := range pool {
		if p.Position != position || p.CapHit > budget {
			continue
		}
		if _, taken := onRoster[p.ID.String()]; taken {
			continue
		}
		if cheapest == nil || p.CapHit < cheapest.CapHit {
			cheapest = p
		}
	}
	return cheapest
}

// repair nudges an offspring back inside the size and cap constraints.
// Crossover preserves per-position counts, so only the total size and
// total cap can drift: over-budget or over-sized rosters shed their
// most expensive player at a position above its minimum, under-sized
// rosters pull in the cheapest pool player below a position maximum.
// Repairs never break a position bound; whatever cannot be fixed is
// admitted anyway and left to the fitness sentinel.
func (e *Engine) repair(candidate *roster.Candidate) *roster.Candidate {
	if candidate.IsValid(e.constraints) {
		return candidate
	}

	counts := candidate.PositionCounts()

	for guard := len(candidate.Players); guard > 0; guard-- {
		overSize := len(candidate.Players) > e.constraints.MaxSize
		overCap := candidate.TotalCap() > e.constraints.SalaryCap
		if !overSize && !overCap {
			break
		}
		dropIdx := -1
		for i, p := range candidate.Players {
			limit, constrained := e.constraints.PositionLimits[p.Position]
			if constrained && counts[p.Position] <= limit.Min {
				continue
			}
			if dropIdx == -1 || p.CapHit > candidate.Players[dropIdx].CapHit {
				dropIdx = i
			}
		}
		if dropIdx == -1 {
			break
		}
		counts[candidate.Players[dropIdx].Position]--
		candidate.Players = append(candidate.Players[:dropIdx], candidate.Players[dropIdx+1:]...)
	}

	for len(candidate.Players) < e.constraints.MinSize {
		var cheapest *types.PlayerRecord
		for _, p := range e.pool {
			limit, constrained := e.constraints.PositionLimits[p.Position]
			if !constrained || counts[p.Position] >= limit.Max {
				continue
			}
			if candidate.HasPlayer(p.ID) {
				continue
			}
			if candidate.TotalCap()+p.CapHit > e.constraints.SalaryCap {
				continue
			}
			if cheapest == nil || p.CapHit < cheapest.CapHit {
				cheapest = p
			}
		}
		if cheapest == nil {
			break
		}
		copied := *cheapest
		candidate.Players = append(candidate.Players, &copied)
		counts[copied.Position]++
	}

	return candidate
}
