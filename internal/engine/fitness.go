package engine

import (
	"math"

	"github.com/stitts-dev/roster-optimizer/internal/roster"
	"github.com/stitts-dev/roster-optimizer/internal/valuation"
)

// InvalidFitness is the sentinel score for candidates that violate the
// roster constraints. It sits far below any achievable valid score, so
// selection pressure alone drives invalid rosters out of the population.
const InvalidFitness = -1000.0

// Fitness sub-score weights. Efficiency dominates, with risk, positional
// balance, and cap usage rounding out the objective.
const (
	weightEfficiency = 0.40
	weightRisk       = 0.25
	weightBalance    = 0.20
	weightCapUsage   = 0.15
)

// Cap utilization in this band scores a full 1.0: high enough to spend
// the budget, low enough to leave in-season flexibility.
const (
	capTargetLow  = 0.90
	capTargetHigh = 0.95
)

// Fitness scores a candidate roster. Invalid candidates get the
// sentinel; valid ones get a weighted blend of efficiency, inverse
// risk, positional balance, and cap utilization, each normalized to
// [0, 1] before weighting.
func (e *Engine) Fitness(candidate *roster.Candidate) float64 {
	if !candidate.IsValid(e.constraints) {
		return InvalidFitness
	}

	analyzer := valuation.NewPortfolioAnalyzer(candidate.Players)

	// An efficiency ratio of 1.5 (value 50% above cost) or better earns
	// the full score.
	efficiencyScore := math.Min(analyzer.Efficiency()/1.5, 1.0)
	riskScore := 1.0 - analyzer.Risk()
	balanceScore := e.positionBalance(candidate)
	capScore := e.capUtilization(candidate)

	return weightEfficiency*efficiencyScore +
		weightRisk*riskScore +
		weightBalance*balanceScore +
		weightCapUsage*capScore
}

// positionBalance rewards rosters whose position counts sit near the
// midpoint of their allowed range. A position outside its range scores
// zero, a count at either bound scores 0.5, and the midpoint scores a
// full 1.0. Positions pinned to a single legal count always score 1.0.
// The result is the mean across every constrained position.
func (e *Engine) positionBalance(candidate *roster.Candidate) float64 {
	if len(e.positions) == 0 {
		return 0
	}

	counts := candidate.PositionCounts()
	total := 0.0
	for _, position := range e.positions {
		limit := e.constraints.PositionLimits[position]
		count := counts[position]
		if count < limit.Min || count > limit.Max {
			continue
		}
		if limit.Min == limit.Max {
			total += 1.0
			continue
		}
		ideal := float64(limit.Min+limit.Max) / 2.0
		maxDistance := ideal - float64(limit.Min)
		total += 1.0 - 0.5*math.Abs(float64(count)-ideal)/maxDistance
	}
	return total / float64(len(e.positions))
}

// capUtilization scores how much of the salary cap the roster commits.
// The target band earns 1.0, under-spending scales linearly down to
// zero, and over-spending falls off twice as fast.
func (e *Engine) capUtilization(candidate *roster.Candidate) float64 {
	utilization := candidate.TotalCap() / e.constraints.SalaryCap
	switch {
	case utilization >= capTargetLow && utilization <= capTargetHigh:
		return 1.0
	case utilization < capTargetLow:
		return utilization / capTargetLow
	default:
		return math.Max(0, 2.0-utilization/capTargetHigh)
	}
}
