package engine

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/roster-optimizer/internal/roster"
	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func testRecord(name, position string, capHit, epa float64, snaps, missed, age int) types.PlayerRecord {
	return types.PlayerRecord{
		ID:             uuid.New(),
		Name:           name,
		Position:       position,
		Team:           "TST",
		Age:            age,
		CapHit:         capHit,
		YearsRemaining: 3,
		EPATotal:       epa,
		SnapsPlayed:    snaps,
		GamesMissed:    missed,
	}
}

var fullRosterPlan = []struct {
	position string
	count    int
	capHit   float64
}{
	{types.PositionQB, 3, 10_000_000},
	{types.PositionRB, 4, 3_000_000},
	{types.PositionWR, 6, 7_000_000},
	{types.PositionTE, 3, 4_000_000},
	{types.PositionOT, 5, 7_000_000},
	{types.PositionOG, 5, 5_000_000},
	{types.PositionC, 3, 4_000_000},
	{types.PositionEDGE, 5, 7_000_000},
	{types.PositionDL, 5, 5_000_000},
	{types.PositionLB, 4, 3_000_000},
	{types.PositionCB, 4, 4_000_000},
	{types.PositionS, 3, 3_000_000},
	{types.PositionK, 1, 1_400_000},
	{types.PositionP, 1, 1_100_000},
	{types.PositionLS, 1, 900_000},
}

// buildFullRoster returns a 53-man roster that satisfies the default
// constraints with cap spend inside the target utilization band.
func buildFullRoster() []types.PlayerRecord {
	players := make([]types.PlayerRecord, 0, 53)
	for _, plan := range fullRosterPlan {
		for i := 0; i < plan.count; i++ {
			name := fmt.Sprintf("%s Starter %d", plan.position, i+1)
			capHit := plan.capHit + float64(i)*100_000
			players = append(players, testRecord(name, plan.position, capHit, 4+float64(i), 800, i, 26))
		}
	}
	return players
}

// smallTestConstraints keeps evolve fixtures readable: five roster
// slots across three positions under a 100M budget.
func smallTestConstraints() *types.RosterConstraints {
	return &types.RosterConstraints{
		MinSize:   4,
		MaxSize:   5,
		SalaryCap: 100_000_000,
		PositionLimits: types.PositionLimits{
			types.PositionQB: {Min: 1, Max: 1},
			types.PositionRB: {Min: 1, Max: 2},
			types.PositionWR: {Min: 2, Max: 3},
		},
	}
}

// smallTestPool spreads cap hits so every legal five-man combination
// stays under the small-constraint budget.
func smallTestPool() []types.PlayerRecord {
	pool := make([]types.PlayerRecord, 0, 15)
	for i := 0; i < 4; i++ {
		pool = append(pool, testRecord(fmt.Sprintf("Pool QB %d", i+1),
			types.PositionQB, float64(12+3*i)*1_000_000, 8+float64(2*i), 950, i, 24+i))
	}
	for i := 0; i < 5; i++ {
		pool = append(pool, testRecord(fmt.Sprintf("Pool RB %d", i+1),
			types.PositionRB, float64(8+i)*1_000_000, 4+float64(i), 600, i, 23+i))
	}
	for i := 0; i < 6; i++ {
		pool = append(pool, testRecord(fmt.Sprintf("Pool WR %d", i+1),
			types.PositionWR, float64(9+2*i)*1_000_000, 5+float64(i), 850, i, 23+i))
	}
	return pool
}

func smallCurrentRoster() []types.PlayerRecord {
	return []types.PlayerRecord{
		testRecord("Incumbent QB", types.PositionQB, 14_000_000, 9, 980, 1, 27),
		testRecord("Incumbent RB", types.PositionRB, 9_500_000, 5, 620, 3, 25),
		testRecord("Incumbent WR1", types.PositionWR, 13_500_000, 8, 900, 0, 26),
		testRecord("Incumbent WR2", types.PositionWR, 10_500_000, 6, 840, 2, 25),
	}
}

func newSmallEngine(t *testing.T, settings types.EngineSettings) *Engine {
	t.Helper()
	e, err := NewEngine(smallCurrentRoster(), smallTestPool(), smallTestConstraints(), nil, settings, testLogger())
	require.NoError(t, err)
	return e
}

func candidateFromRecords(records []types.PlayerRecord) *roster.Candidate {
	players := make([]*types.PlayerRecord, len(records))
	for i := range records {
		copied := records[i]
		players[i] = &copied
	}
	return roster.NewCandidate(players)
}

func idMultiset(c *roster.Candidate) map[uuid.UUID]int {
	ids := make(map[uuid.UUID]int)
	for _, p := range c.Players {
		ids[p.ID]++
	}
	return ids
}
