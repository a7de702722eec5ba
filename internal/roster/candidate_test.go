package roster

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

func player(position string, capHit float64) *types.PlayerRecord {
	return &types.PlayerRecord{
		ID:       uuid.New(),
		Name:     "Player " + position,
		Position: position,
		CapHit:   capHit,
	}
}

// smallConstraints keeps fixtures readable: a five-man roster with a
// 100 budget instead of the full 53-man table.
func smallConstraints() *types.RosterConstraints {
	return &types.RosterConstraints{
		MinSize:   4,
		MaxSize:   5,
		SalaryCap: 100,
		PositionLimits: types.PositionLimits{
			types.PositionQB: {Min: 1, Max: 1},
			types.PositionRB: {Min: 1, Max: 2},
			types.PositionWR: {Min: 2, Max: 3},
		},
	}
}

func validSmallRoster() *Candidate {
	return NewCandidate([]*types.PlayerRecord{
		player(types.PositionQB, 30),
		player(types.PositionRB, 20),
		player(types.PositionWR, 20),
		player(types.PositionWR, 15),
	})
}

func TestCandidate_Accessors(t *testing.T) {
	candidate := validSmallRoster()

	assert.Equal(t, 4, candidate.Size())
	assert.InDelta(t, 85.0, candidate.TotalCap(), 1e-9)

	counts := candidate.PositionCounts()
	assert.Equal(t, 1, counts[types.PositionQB])
	assert.Equal(t, 1, counts[types.PositionRB])
	assert.Equal(t, 2, counts[types.PositionWR])

	assert.True(t, candidate.HasPlayer(candidate.Players[0].ID))
	assert.False(t, candidate.HasPlayer(uuid.New()))
}

func TestIsValid_AcceptsCompliantRoster(t *testing.T) {
	assert.True(t, validSmallRoster().IsValid(smallConstraints()))
}

func TestIsValid_RejectsEachViolation(t *testing.T) {
	tests := []struct {
		name    string
		players []*types.PlayerRecord
	}{
		{
			name: "below minimum size",
			players: []*types.PlayerRecord{
				player(types.PositionQB, 10),
				player(types.PositionWR, 10),
				player(types.PositionWR, 10),
			},
		},
		{
			name: "above maximum size",
			players: []*types.PlayerRecord{
				player(types.PositionQB, 10),
				player(types.PositionRB, 10),
				player(types.PositionRB, 10),
				player(types.PositionWR, 10),
				player(types.PositionWR, 10),
				player(types.PositionWR, 10),
			},
		},
		{
			name: "over the salary cap",
			players: []*types.PlayerRecord{
				player(types.PositionQB, 40),
				player(types.PositionRB, 30),
				player(types.PositionWR, 30),
				player(types.PositionWR, 30),
			},
		},
		{
			name: "position missing entirely",
			players: []*types.PlayerRecord{
				player(types.PositionRB, 20),
				player(types.PositionRB, 20),
				player(types.PositionWR, 20),
				player(types.PositionWR, 20),
			},
		},
		{
			name: "position above its maximum",
			players: []*types.PlayerRecord{
				player(types.PositionQB, 20),
				player(types.PositionRB, 20),
				player(types.PositionRB, 20),
				player(types.PositionRB, 20),
				player(types.PositionWR, 10),
			},
		},
	}

	constraints := smallConstraints()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, NewCandidate(tt.players).IsValid(constraints))
		})
	}
}

func TestIsValid_EmptyRosterAgainstEmptyConstraints(t *testing.T) {
	constraints := &types.RosterConstraints{
		MinSize:        0,
		MaxSize:        0,
		SalaryCap:      100,
		PositionLimits: types.PositionLimits{},
	}
	assert.True(t, NewCandidate(nil).IsValid(constraints))
}

func TestClone_SharesNoPlayerIdentity(t *testing.T) {
	original := validSmallRoster()
	clone := original.Clone()

	require.Equal(t, original.Size(), clone.Size())
	for i := range original.Players {
		assert.NotSame(t, original.Players[i], clone.Players[i],
			"clone must hold its own record instances")
		assert.Equal(t, original.Players[i].ID, clone.Players[i].ID)
	}

	// Mutating the clone must leave the original untouched.
	clone.Players[0].CapHit = 999
	clone.Players = clone.Players[:2]

	assert.Equal(t, 4, original.Size())
	assert.InDelta(t, 30.0, original.Players[0].CapHit, 1e-9)
}

func TestRecords_ReturnsValueCopies(t *testing.T) {
	candidate := validSmallRoster()
	records := candidate.Records()

	require.Len(t, records, 4)
	records[0].CapHit = 999
	assert.InDelta(t, 30.0, candidate.Players[0].CapHit, 1e-9)
}
