package engine

import (
	"sort"

	"github.com/stitts-dev/roster-optimizer/internal/roster"
	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

// TournamentSelect picks TournamentSize distinct candidates uniformly at
// random and returns the fittest. Ties go to the first sampled index.
// The tournament size is clamped to the population when the population
// is small.
func (e *Engine) TournamentSelect(population []*roster.Candidate, fitnesses []float64) *roster.Candidate {
	k := e.settings.TournamentSize
	if k > len(population) {
		k = len(population)
	}

	indices := e.rng.Perm(len(population))[:k]
	best := indices[0]
	for _, idx := range indices[1:] {
		if fitnesses[idx] > fitnesses[best] {
			best = idx
		}
	}
	return population[best]
}

// Crossover recombines two parents position by position: each position
// group travels intact to one child or the other on a fair coin flip,
// so every child inherits whole position units and per-position counts
// are conserved across the pair. With probability 1-CrossoverRate the
// parents pass through as plain clones instead.
func (e *Engine) Crossover(parent1, parent2 *roster.Candidate) (*roster.Candidate, *roster.Candidate) {
	if e.rng.Float64() > e.settings.CrossoverRate {
		return parent1.Clone(), parent2.Clone()
	}

	groups1 := groupByPosition(parent1)
	groups2 := groupByPosition(parent2)

	child1 := make([]*types.PlayerRecord, 0, len(parent1.Players))
	child2 := make([]*types.PlayerRecord, 0, len(parent2.Players))

	for _, position := range e.crossoverPositions(groups1, groups2) {
		if e.rng.Float64() < 0.5 {
			child1 = append(child1, groups1[position]...)
			child2 = append(child2, groups2[position]...)
		} else {
			child1 = append(child1, groups2[position]...)
			child2 = append(child2, groups1[position]...)
		}
	}

	return roster.NewCandidate(child1), roster.NewCandidate(child2)
}

// crossoverPositions returns the constrained positions plus any extra
// positions present on either parent, in a stable order so the random
// stream stays reproducible.
func (e *Engine) crossoverPositions(groups1, groups2 map[string][]*types.PlayerRecord) []string {
	positions := make([]string, len(e.positions))
	copy(positions, e.positions)

	known := make(map[string]struct{}, len(positions))
	for _, position := range positions {
		known[position] = struct{}{}
	}

	extras := make([]string, 0)
	for position := range groups1 {
		if _, ok := known[position]; !ok {
			known[position] = struct{}{}
			extras = append(extras, position)
		}
	}
	for position := range groups2 {
		if _, ok := known[position]; !ok {
			known[position] = struct{}{}
			extras = append(extras, position)
		}
	}
	sort.Strings(extras)

	return append(positions, extras...)
}

func groupByPosition(candidate *roster.Candidate) map[string][]*types.PlayerRecord {
	groups := make(map[string][]*types.PlayerRecord)
	for _, p := range candidate.Players {
		groups[p.Position] = append(groups[p.Position], p)
	}
	return groups
}

// Mutate returns a clone of the candidate with, at probability
// MutationRate, one randomly chosen player swapped for a pool player at
// the same position. Replacements must not already be on the roster and
// must keep the roster under the cap; if no such player exists the swap
// is skipped. The original candidate is never modified.
func (e *Engine) Mutate(candidate *roster.Candidate) *roster.Candidate {
	mutated := candidate.Clone()
	if len(mutated.Players) == 0 {
		return mutated
	}
	if e.rng.Float64() > e.settings.MutationRate {
		return mutated
	}

	idx := e.rng.Intn(len(mutated.Players))
	outgoing := mutated.Players[idx]
	capWithout := mutated.TotalCap() - outgoing.CapHit

	eligible := make([]*types.PlayerRecord, 0)
	for _, p := range e.pool {
		if p.Position != outgoing.Position || p.ID == outgoing.ID {
			continue
		}
		if mutated.HasPlayer(p.ID) {
			continue
		}
		if capWithout+p.CapHit > e.constraints.SalaryCap {
			continue
		}
		eligible = append(eligible, p)
	}
	if len(eligible) == 0 {
		return mutated
	}

	replacement := *eligible[e.rng.Intn(len(eligible))]
	mutated.Players[idx] = &replacement
	return mutated
}
