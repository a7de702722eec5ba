package valuation

import (
	"math"

	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

// Fallbacks applied when a position is missing from the model tables.
const (
	defaultBaselineValue = 10_000_000.0
	defaultDollarsPerEPA = 1_000_000.0
	defaultPeakAge       = 27
	defaultPositionRisk  = 0.2
)

// Model converts raw contract and performance attributes into the value
// signals the optimizer ranks rosters by. All methods are pure functions
// of the record's raw attributes, so repeated valuation of the same
// player always yields the same result.
type Model struct {
	baselineValues map[string]float64
	dollarsPerEPA  map[string]float64
	peakAges       map[string]int
	positionRisk   map[string]float64
	riskFreeRate   float64
}

// NewModel builds a valuation model with the standard position tables.
// Tables are constructed fresh per instance so two models never share
// mutable state.
func NewModel() *Model {
	return &Model{
		baselineValues: map[string]float64{
			types.PositionQB:   35_000_000,
			types.PositionRB:   8_000_000,
			types.PositionWR:   18_000_000,
			types.PositionTE:   11_000_000,
			types.PositionOT:   18_000_000,
			types.PositionOG:   10_000_000,
			types.PositionC:    9_000_000,
			types.PositionEDGE: 20_000_000,
			types.PositionDL:   14_000_000,
			types.PositionLB:   10_000_000,
			types.PositionCB:   15_000_000,
			types.PositionS:    10_000_000,
			types.PositionK:    3_000_000,
			types.PositionP:    2_500_000,
			types.PositionLS:   1_300_000,
		},
		dollarsPerEPA: map[string]float64{
			types.PositionQB:   1_500_000,
			types.PositionRB:   700_000,
			types.PositionWR:   1_100_000,
			types.PositionTE:   900_000,
			types.PositionOT:   1_100_000,
			types.PositionOG:   900_000,
			types.PositionC:    800_000,
			types.PositionEDGE: 1_200_000,
			types.PositionDL:   1_000_000,
			types.PositionLB:   900_000,
			types.PositionCB:   1_100_000,
			types.PositionS:    900_000,
			types.PositionK:    300_000,
			types.PositionP:    250_000,
			types.PositionLS:   200_000,
		},
		peakAges: map[string]int{
			types.PositionQB:   29,
			types.PositionRB:   25,
			types.PositionWR:   26,
			types.PositionTE:   27,
			types.PositionOT:   28,
			types.PositionOG:   28,
			types.PositionC:    28,
			types.PositionEDGE: 26,
			types.PositionDL:   27,
			types.PositionLB:   26,
			types.PositionCB:   26,
			types.PositionS:    27,
			types.PositionK:    30,
			types.PositionP:    30,
			types.PositionLS:   30,
		},
		positionRisk: map[string]float64{
			types.PositionQB:   0.15,
			types.PositionRB:   0.35,
			types.PositionWR:   0.25,
			types.PositionTE:   0.25,
			types.PositionOT:   0.20,
			types.PositionOG:   0.20,
			types.PositionC:    0.15,
			types.PositionEDGE: 0.30,
			types.PositionDL:   0.30,
			types.PositionLB:   0.30,
			types.PositionCB:   0.30,
			types.PositionS:    0.25,
			types.PositionK:    0.05,
			types.PositionP:    0.05,
			types.PositionLS:   0.05,
		},
		riskFreeRate: 0.03,
	}
}

// ExpectedValue estimates the annual dollar value a player produces:
// position baseline plus EPA production, scaled by snap share. Snap
// participation above 1000 snaps caps out at a 1.5x multiplier. Never
// negative.
func (m *Model) ExpectedValue(p *types.PlayerRecord) float64 {
	base, ok := m.baselineValues[p.Position]
	if !ok {
		base = defaultBaselineValue
	}
	perEPA, ok := m.dollarsPerEPA[p.Position]
	if !ok {
		perEPA = defaultDollarsPerEPA
	}

	performance := p.EPATotal * perEPA
	snapFactor := math.Min(float64(p.SnapsPlayed)/1000.0, 1.5)

	return math.Max((base+performance)*snapFactor, 0)
}

// RiskScore combines injury history, age decline, and positional injury
// propensity into a probability-like scalar. Weighted 0.4/0.4/0.2.
func (m *Model) RiskScore(p *types.PlayerRecord) float64 {
	// 51 regular-season games over the three-season EPA window
	injuryRisk := math.Min(float64(p.GamesMissed)/51.0, 0.5)

	peak, ok := m.peakAges[p.Position]
	if !ok {
		peak = defaultPeakAge
	}
	var ageRisk float64
	switch yearsPast := p.Age - peak; {
	case yearsPast <= 0:
		ageRisk = 0.0
	case yearsPast <= 2:
		ageRisk = 0.1
	case yearsPast <= 4:
		ageRisk = 0.3
	default:
		ageRisk = 0.5
	}

	positional, ok := m.positionRisk[p.Position]
	if !ok {
		positional = defaultPositionRisk
	}

	return 0.4*injuryRisk + 0.4*ageRisk + 0.2*positional
}

// FairValue is the risk-discounted expected value.
func (m *Model) FairValue(p *types.PlayerRecord) float64 {
	return m.ExpectedValue(p) * (1 - m.RiskScore(p))
}

// EfficiencyRatio is expected value per cap dollar. Zero when the player
// carries no cap hit.
func (m *Model) EfficiencyRatio(p *types.PlayerRecord) float64 {
	if p.CapHit <= 0 {
		return 0
	}
	return m.ExpectedValue(p) / p.CapHit
}

// RiskAdjustedReturn is the excess value over cap hit scaled by risk,
// the roster equivalent of a Sharpe ratio. Zero when risk or cap hit is
// zero.
func (m *Model) RiskAdjustedReturn(p *types.PlayerRecord) float64 {
	risk := m.RiskScore(p)
	if risk <= 0 || p.CapHit <= 0 {
		return 0
	}
	return (m.ExpectedValue(p) - p.CapHit) / (risk * p.CapHit)
}

// NetPresentValue discounts the annual surplus over the remaining
// contract years. Riskier players discount at a steeper rate.
func (m *Model) NetPresentValue(p *types.PlayerRecord) float64 {
	risk := m.RiskScore(p)
	rate := m.riskFreeRate + 0.10*risk

	years := p.YearsRemaining
	divisor := years
	if divisor < 1 {
		divisor = 1
	}
	annualNet := m.ExpectedValue(p)/float64(divisor) - p.CapHit

	npv := 0.0
	for t := 0; t < years; t++ {
		npv += annualNet / math.Pow(1+rate, float64(t))
	}
	return npv
}

// ValuePlayer populates the record's computed fields from its raw
// attributes. Safe to call repeatedly.
func (m *Model) ValuePlayer(p *types.PlayerRecord) {
	p.ExpectedValue = m.ExpectedValue(p)
	p.RiskScore = m.RiskScore(p)
	p.FairValue = p.ExpectedValue * (1 - p.RiskScore)
	p.EfficiencyRatio = m.EfficiencyRatio(p)
	p.RiskAdjustedReturn = m.RiskAdjustedReturn(p)
	p.NetPresentValue = m.NetPresentValue(p)
}

// ValueRoster values every record in the slice in place.
func (m *Model) ValueRoster(players []types.PlayerRecord) {
	for i := range players {
		m.ValuePlayer(&players[i])
	}
}
