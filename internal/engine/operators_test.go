package engine

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/roster-optimizer/internal/roster"
	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

func positionIDs(c *roster.Candidate, position string) map[uuid.UUID]int {
	ids := make(map[uuid.UUID]int)
	for _, p := range c.Players {
		if p.Position == position {
			ids[p.ID]++
		}
	}
	return ids
}

func TestTournamentSelect_FullTournamentPicksFittest(t *testing.T) {
	e := newSmallEngine(t, types.EngineSettings{Seed: 11, TournamentSize: 6})

	pool := smallTestPool()
	population := make([]*roster.Candidate, 6)
	for i := range population {
		population[i] = candidateFromRecords(pool[i : i+1])
	}
	fitnesses := []float64{0.12, 0.55, 0.31, 0.87, 0.44, 0.60}

	// A tournament over the whole population must always return the
	// single fittest candidate.
	for i := 0; i < 20; i++ {
		assert.Same(t, population[3], e.TournamentSelect(population, fitnesses))
	}
}

func TestTournamentSelect_FavorsFitterCandidates(t *testing.T) {
	e := newSmallEngine(t, types.EngineSettings{Seed: 3, TournamentSize: 3})

	pool := smallTestPool()
	population := make([]*roster.Candidate, 8)
	fitnesses := make([]float64, 8)
	for i := range population {
		population[i] = candidateFromRecords(pool[i : i+1])
		fitnesses[i] = 0.1 * float64(i+1)
	}

	wins := make(map[int]int)
	for i := 0; i < 200; i++ {
		winner := e.TournamentSelect(population, fitnesses)
		for idx, candidate := range population {
			if candidate == winner {
				wins[idx]++
				break
			}
		}
	}

	// With three distinct entrants per tournament the weakest candidate
	// can never win one, and the strongest should take plenty.
	assert.Zero(t, wins[0])
	assert.Greater(t, wins[7], 0)
	assert.Greater(t, wins[7], wins[1])
}

func TestTournamentSelect_ClampsOversizedTournament(t *testing.T) {
	e := newSmallEngine(t, types.EngineSettings{Seed: 17, TournamentSize: 50})

	pool := smallTestPool()
	population := []*roster.Candidate{
		candidateFromRecords(pool[0:1]),
		candidateFromRecords(pool[1:2]),
	}
	fitnesses := []float64{0.2, 0.9}

	for i := 0; i < 10; i++ {
		assert.Same(t, population[1], e.TournamentSelect(population, fitnesses))
	}
}

func TestCrossover_ConservesPositionCounts(t *testing.T) {
	e := newSmallEngine(t, types.EngineSettings{Seed: 21, CrossoverRate: 1.0})

	pool := smallTestPool()
	parent1 := candidateFromRecords([]types.PlayerRecord{pool[0], pool[4], pool[5], pool[9], pool[10]})
	parent2 := candidateFromRecords([]types.PlayerRecord{pool[1], pool[6], pool[11], pool[12], pool[13]})

	for i := 0; i < 10; i++ {
		child1, child2 := e.Crossover(parent1, parent2)

		parentCounts := make(map[string]int)
		for position, n := range parent1.PositionCounts() {
			parentCounts[position] += n
		}
		for position, n := range parent2.PositionCounts() {
			parentCounts[position] += n
		}
		childCounts := make(map[string]int)
		for position, n := range child1.PositionCounts() {
			childCounts[position] += n
		}
		for position, n := range child2.PositionCounts() {
			childCounts[position] += n
		}
		assert.Equal(t, parentCounts, childCounts,
			"children together must hold exactly the parents' position counts")

		// Each position group must travel intact from one parent.
		for _, child := range []*roster.Candidate{child1, child2} {
			for _, position := range []string{types.PositionQB, types.PositionRB, types.PositionWR} {
				group := positionIDs(child, position)
				fromParent1 := reflect.DeepEqual(group, positionIDs(parent1, position))
				fromParent2 := reflect.DeepEqual(group, positionIDs(parent2, position))
				assert.True(t, fromParent1 || fromParent2,
					"%s group should come whole from a single parent", position)
			}
		}
	}
}

func TestCrossover_PassThroughClonesWhenRateZero(t *testing.T) {
	e := newSmallEngine(t, types.EngineSettings{Seed: 5})
	e.settings.CrossoverRate = 0

	pool := smallTestPool()
	parent1 := candidateFromRecords([]types.PlayerRecord{pool[0], pool[4], pool[9], pool[10]})
	parent2 := candidateFromRecords([]types.PlayerRecord{pool[1], pool[5], pool[11], pool[12]})

	child1, child2 := e.Crossover(parent1, parent2)

	require.Equal(t, parent1.Size(), child1.Size())
	require.Equal(t, parent2.Size(), child2.Size())
	for i := range parent1.Players {
		assert.Equal(t, parent1.Players[i].ID, child1.Players[i].ID)
		assert.NotSame(t, parent1.Players[i], child1.Players[i],
			"pass-through children must still be clones")
	}
	for i := range parent2.Players {
		assert.Equal(t, parent2.Players[i].ID, child2.Players[i].ID)
	}
}

func TestMutate_SwapsExactlyOneSamePositionPlayer(t *testing.T) {
	e := newSmallEngine(t, types.EngineSettings{Seed: 9})
	e.settings.MutationRate = 1.0

	original := candidateFromRecords(smallCurrentRoster())
	before := idMultiset(original)

	poolIDs := make(map[uuid.UUID]bool)
	for _, p := range e.pool {
		poolIDs[p.ID] = true
	}

	mutated := e.Mutate(original)

	assert.Equal(t, before, idMultiset(original), "the original roster must stay untouched")

	swapped := 0
	for i := range original.Players {
		if original.Players[i].ID == mutated.Players[i].ID {
			continue
		}
		swapped++
		assert.Equal(t, original.Players[i].Position, mutated.Players[i].Position,
			"replacements must play the same position")
		assert.True(t, poolIDs[mutated.Players[i].ID], "replacement must come from the pool")
	}
	assert.Equal(t, 1, swapped, "exactly one slot should change")

	for _, n := range idMultiset(mutated) {
		assert.Equal(t, 1, n, "no player may appear twice after mutation")
	}
	assert.LessOrEqual(t, mutated.TotalCap(), e.constraints.SalaryCap)
}

func TestMutate_RateZeroReturnsUntouchedClone(t *testing.T) {
	e := newSmallEngine(t, types.EngineSettings{Seed: 13})
	e.settings.MutationRate = 0

	original := candidateFromRecords(smallCurrentRoster())
	mutated := e.Mutate(original)

	require.Equal(t, original.Size(), mutated.Size())
	for i := range original.Players {
		assert.Equal(t, original.Players[i].ID, mutated.Players[i].ID)
		assert.NotSame(t, original.Players[i], mutated.Players[i])
	}
}

func TestMutate_NoEligibleReplacementLeavesRosterAlone(t *testing.T) {
	current := smallCurrentRoster()

	// The pool holds nobody beyond the roster itself, so every swap
	// target is already rostered.
	e, err := NewEngine(current, current, smallTestConstraints(), nil, types.EngineSettings{Seed: 2}, testLogger())
	require.NoError(t, err)
	e.settings.MutationRate = 1.0

	original := candidateFromRecords(current)
	mutated := e.Mutate(original)

	assert.Equal(t, idMultiset(original), idMultiset(mutated))
}
