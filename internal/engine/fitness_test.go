package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/roster-optimizer/internal/roster"
	"github.com/stitts-dev/roster-optimizer/internal/valuation"
	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

func TestFitness_InvalidRosterGetsSentinel(t *testing.T) {
	e, err := NewEngine(nil, nil, nil, nil, types.EngineSettings{Seed: 1}, testLogger())
	require.NoError(t, err)

	// Five players cannot satisfy a 53-man roster rule.
	short := candidateFromRecords(buildFullRoster()[:5])
	assert.Equal(t, InvalidFitness, e.Fitness(short))
}

func TestFitness_ValidRosterScoresInUnitRange(t *testing.T) {
	e, err := NewEngine(nil, nil, nil, nil, types.EngineSettings{Seed: 1}, testLogger())
	require.NoError(t, err)

	records := buildFullRoster()
	valuation.NewModel().ValueRoster(records)
	full := candidateFromRecords(records)

	fitness := e.Fitness(full)
	assert.Greater(t, fitness, 0.0)
	assert.LessOrEqual(t, fitness, 1.0)
	assert.Greater(t, fitness, InvalidFitness)
}

func TestCapUtilization_Bands(t *testing.T) {
	e, err := NewEngine(nil, nil, nil, nil, types.EngineSettings{Seed: 1}, testLogger())
	require.NoError(t, err)

	salaryCap := types.DefaultRosterConstraints().SalaryCap

	tests := []struct {
		name        string
		utilization float64
		expected    float64
	}{
		{"well under target", 0.45, 0.5},
		{"bottom of target band", 0.90, 1.0},
		{"inside target band", 0.92, 1.0},
		{"top of target band", 0.95, 1.0},
		{"over the band", 1.045, 0.9},
		{"double the tolerated spend", 1.9, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := roster.NewCandidate([]*types.PlayerRecord{
				{ID: uuid.New(), Position: types.PositionQB, CapHit: tt.utilization * salaryCap},
			})
			assert.InDelta(t, tt.expected, e.capUtilization(candidate), 1e-9)
		})
	}
}

func TestPositionBalance_RewardsMidRangeCounts(t *testing.T) {
	constraints := &types.RosterConstraints{
		MinSize:   1,
		MaxSize:   60,
		SalaryCap: 400_000_000,
		PositionLimits: types.PositionLimits{
			types.PositionWR: {Min: 5, Max: 7},
		},
	}
	e, err := NewEngine(nil, nil, constraints, nil, types.EngineSettings{Seed: 1}, testLogger())
	require.NoError(t, err)

	tests := []struct {
		name     string
		wrCount  int
		expected float64
	}{
		{"below minimum", 4, 0.0},
		{"at minimum", 5, 0.5},
		{"midpoint", 6, 1.0},
		{"at maximum", 7, 0.5},
		{"above maximum", 8, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players := make([]*types.PlayerRecord, tt.wrCount)
			for i := range players {
				players[i] = &types.PlayerRecord{ID: uuid.New(), Position: types.PositionWR, CapHit: 1_000_000}
			}
			assert.InDelta(t, tt.expected, e.positionBalance(roster.NewCandidate(players)), 1e-9)
		})
	}
}

func TestPositionBalance_PinnedAndMissingPositions(t *testing.T) {
	constraints := &types.RosterConstraints{
		MinSize:   1,
		MaxSize:   60,
		SalaryCap: 400_000_000,
		PositionLimits: types.PositionLimits{
			types.PositionWR: {Min: 5, Max: 7},
			types.PositionK:  {Min: 1, Max: 1},
		},
	}
	e, err := NewEngine(nil, nil, constraints, nil, types.EngineSettings{Seed: 1}, testLogger())
	require.NoError(t, err)

	buildCandidate := func(wrCount, kCount int) *roster.Candidate {
		players := make([]*types.PlayerRecord, 0, wrCount+kCount)
		for i := 0; i < wrCount; i++ {
			players = append(players, &types.PlayerRecord{ID: uuid.New(), Position: types.PositionWR, CapHit: 1_000_000})
		}
		for i := 0; i < kCount; i++ {
			players = append(players, &types.PlayerRecord{ID: uuid.New(), Position: types.PositionK, CapHit: 1_000_000})
		}
		return roster.NewCandidate(players)
	}

	// A pinned position at its only legal count scores a full point.
	assert.InDelta(t, 1.0, e.positionBalance(buildCandidate(6, 1)), 1e-9)

	// A missing constrained position contributes zero, not an error.
	assert.InDelta(t, 0.5, e.positionBalance(buildCandidate(6, 0)), 1e-9)

	// Mixed: WR at its minimum (0.5) averaged with a perfect K (1.0).
	assert.InDelta(t, 0.75, e.positionBalance(buildCandidate(5, 1)), 1e-9)
}
