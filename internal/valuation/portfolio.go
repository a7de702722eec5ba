package valuation

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

// Thresholds flagging players whose cap hit sits far from fair value.
const (
	DefaultOvervaluedThreshold  = 1.15
	DefaultUndervaluedThreshold = 0.85
)

// PortfolioAnalyzer treats a valued roster as an asset portfolio and
// derives the aggregate metrics the fitness function and reporting
// endpoints consume. Players must already be valued.
type PortfolioAnalyzer struct {
	players []*types.PlayerRecord
}

// NewPortfolioAnalyzer creates an analyzer over a valued roster.
func NewPortfolioAnalyzer(players []*types.PlayerRecord) *PortfolioAnalyzer {
	return &PortfolioAnalyzer{players: players}
}

// TotalValue returns the summed expected value of the roster.
func (a *PortfolioAnalyzer) TotalValue() float64 {
	total := 0.0
	for _, p := range a.players {
		total += p.ExpectedValue
	}
	return total
}

// TotalCost returns the summed cap hit of the roster.
func (a *PortfolioAnalyzer) TotalCost() float64 {
	total := 0.0
	for _, p := range a.players {
		total += p.CapHit
	}
	return total
}

// Efficiency returns expected value produced per cap dollar spent.
func (a *PortfolioAnalyzer) Efficiency() float64 {
	cost := a.TotalCost()
	if cost <= 0 {
		return 0
	}
	return a.TotalValue() / cost
}

// Risk returns the cap-hit-weighted average of per-player risk scores,
// so expensive players dominate the portfolio risk profile.
func (a *PortfolioAnalyzer) Risk() float64 {
	if len(a.players) == 0 || a.TotalCost() <= 0 {
		return 0
	}
	risks := make([]float64, len(a.players))
	weights := make([]float64, len(a.players))
	for i, p := range a.players {
		risks[i] = p.RiskScore
		weights[i] = p.CapHit
	}
	return stat.Mean(risks, weights)
}

// RiskAdjustedReturn returns the portfolio-level Sharpe-like ratio:
// excess value over cost, scaled by portfolio risk.
func (a *PortfolioAnalyzer) RiskAdjustedReturn() float64 {
	cost := a.TotalCost()
	risk := a.Risk()
	if cost <= 0 || risk <= 0 {
		return 0
	}
	return (a.TotalValue() - cost) / (risk * cost)
}

// PositionAllocation returns the percentage of total cap spend committed
// to each position.
func (a *PortfolioAnalyzer) PositionAllocation() map[string]float64 {
	allocation := make(map[string]float64)
	cost := a.TotalCost()
	if cost <= 0 {
		return allocation
	}
	for _, p := range a.players {
		allocation[p.Position] += p.CapHit
	}
	for position, spend := range allocation {
		allocation[position] = spend / cost * 100
	}
	return allocation
}

// OverValued returns players whose cap hit exceeds fair value by the
// threshold factor, sorted by overage, largest first.
func (a *PortfolioAnalyzer) OverValued(threshold float64) []types.ValuationGap {
	gaps := make([]types.ValuationGap, 0)
	for _, p := range a.players {
		if p.CapHit <= p.FairValue*threshold {
			continue
		}
		amount := p.CapHit - p.FairValue
		percent := 0.0
		if p.FairValue > 0 {
			percent = amount / p.FairValue * 100
		}
		gaps = append(gaps, types.ValuationGap{Player: *p, Amount: amount, Percent: percent})
	}
	sort.Slice(gaps, func(i, j int) bool {
		return gaps[i].Amount > gaps[j].Amount
	})
	return gaps
}

// UnderValued returns players whose cap hit sits below fair value by the
// threshold factor, sorted by surplus, largest first.
func (a *PortfolioAnalyzer) UnderValued(threshold float64) []types.ValuationGap {
	gaps := make([]types.ValuationGap, 0)
	for _, p := range a.players {
		if p.CapHit >= p.FairValue*threshold {
			continue
		}
		amount := p.FairValue - p.CapHit
		percent := 0.0
		if p.FairValue > 0 {
			percent = amount / p.FairValue * 100
		}
		gaps = append(gaps, types.ValuationGap{Player: *p, Amount: amount, Percent: percent})
	}
	sort.Slice(gaps, func(i, j int) bool {
		return gaps[i].Amount > gaps[j].Amount
	})
	return gaps
}

// AverageAge returns the mean age across the roster.
func (a *PortfolioAnalyzer) AverageAge() float64 {
	if len(a.players) == 0 {
		return 0
	}
	ages := make([]float64, len(a.players))
	for i, p := range a.players {
		ages[i] = float64(p.Age)
	}
	return stat.Mean(ages, nil)
}

// SummaryReport aggregates every portfolio metric into one serializable
// report.
func (a *PortfolioAnalyzer) SummaryReport() *types.PortfolioSummary {
	return &types.PortfolioSummary{
		TotalValue:         a.TotalValue(),
		TotalCost:          a.TotalCost(),
		Efficiency:         a.Efficiency(),
		Risk:               a.Risk(),
		RiskAdjustedReturn: a.RiskAdjustedReturn(),
		PositionAllocation: a.PositionAllocation(),
		OverValued:         a.OverValued(DefaultOvervaluedThreshold),
		UnderValued:        a.UnderValued(DefaultUndervaluedThreshold),
		AverageAge:         a.AverageAge(),
		PlayerCount:        len(a.players),
	}
}
