package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRosterConstraints_Values(t *testing.T) {
	constraints := DefaultRosterConstraints()

	assert.Equal(t, 53, constraints.MinSize)
	assert.Equal(t, 53, constraints.MaxSize)
	assert.InDelta(t, 295_500_000, constraints.SalaryCap, 0.01)
	assert.Len(t, constraints.PositionLimits, 15)

	assert.Equal(t, PositionLimit{Min: 2, Max: 3}, constraints.PositionLimits[PositionQB])
	assert.Equal(t, PositionLimit{Min: 5, Max: 7}, constraints.PositionLimits[PositionWR])
	assert.Equal(t, PositionLimit{Min: 1, Max: 1}, constraints.PositionLimits[PositionK])
	assert.Equal(t, PositionLimit{Min: 1, Max: 1}, constraints.PositionLimits[PositionLS])

	assert.NoError(t, constraints.Validate())
}

func TestDefaultRosterConstraints_ReturnsFreshMaps(t *testing.T) {
	first := DefaultRosterConstraints()
	second := DefaultRosterConstraints()

	first.PositionLimits[PositionQB] = PositionLimit{Min: 0, Max: 99}
	first.SalaryCap = 1

	assert.Equal(t, PositionLimit{Min: 2, Max: 3}, second.PositionLimits[PositionQB],
		"mutating one default must not leak into the next")
	assert.InDelta(t, 295_500_000, second.SalaryCap, 0.01)
}

func TestRosterConstraints_MinimumsFitInsideRoster(t *testing.T) {
	constraints := DefaultRosterConstraints()

	assert.LessOrEqual(t, constraints.PositionLimits.MinTotalPlayers(), constraints.MinSize,
		"position minimums must be satisfiable inside the roster floor")
}

func TestRosterConstraints_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RosterConstraints)
		wantErr string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *RosterConstraints) {},
			wantErr: "",
		},
		{
			name:    "non-positive minimum size",
			mutate:  func(c *RosterConstraints) { c.MinSize = 0 },
			wantErr: "min roster size",
		},
		{
			name:    "maximum below minimum",
			mutate:  func(c *RosterConstraints) { c.MaxSize = c.MinSize - 1 },
			wantErr: "max roster size",
		},
		{
			name:    "non-positive salary cap",
			mutate:  func(c *RosterConstraints) { c.SalaryCap = 0 },
			wantErr: "salary cap",
		},
		{
			name:    "no position limits",
			mutate:  func(c *RosterConstraints) { c.PositionLimits = PositionLimits{} },
			wantErr: "position limits",
		},
		{
			name: "negative position minimum",
			mutate: func(c *RosterConstraints) {
				c.PositionLimits[PositionQB] = PositionLimit{Min: -1, Max: 3}
			},
			wantErr: "QB",
		},
		{
			name: "position maximum below minimum",
			mutate: func(c *RosterConstraints) {
				c.PositionLimits[PositionWR] = PositionLimit{Min: 5, Max: 4}
			},
			wantErr: "WR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constraints := DefaultRosterConstraints()
			tt.mutate(constraints)

			err := constraints.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRosterConstraints_CloneIsIndependent(t *testing.T) {
	original := DefaultRosterConstraints()
	clone := original.Clone()

	clone.PositionLimits[PositionQB] = PositionLimit{Min: 0, Max: 0}
	clone.SalaryCap = 1
	clone.MaxSize = 99

	assert.Equal(t, PositionLimit{Min: 2, Max: 3}, original.PositionLimits[PositionQB])
	assert.InDelta(t, 295_500_000, original.SalaryCap, 0.01)
	assert.Equal(t, 53, original.MaxSize)
}
