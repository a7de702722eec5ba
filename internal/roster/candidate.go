package roster

import (
	"github.com/google/uuid"

	"github.com/stitts-dev/roster-optimizer/pkg/types"
)

// Candidate is one concrete roster under evaluation: an ordered list of
// player records. Cap total, position histogram, and validity are always
// derived from the player list, never stored, so a Candidate can not
// drift out of sync with its own roster.
type Candidate struct {
	Players []*types.PlayerRecord
}

// NewCandidate wraps a player list as a candidate roster. The slice is
// owned by the candidate afterwards.
func NewCandidate(players []*types.PlayerRecord) *Candidate {
	return &Candidate{Players: players}
}

// Size returns the roster size.
func (c *Candidate) Size() int {
	return len(c.Players)
}

// TotalCap returns the summed cap hit of the roster.
func (c *Candidate) TotalCap() float64 {
	total := 0.0
	for _, p := range c.Players {
		total += p.CapHit
	}
	return total
}

// PositionCounts returns the roster's position histogram.
func (c *Candidate) PositionCounts() map[string]int {
	counts := make(map[string]int)
	for _, p := range c.Players {
		counts[p.Position]++
	}
	return counts
}

// HasPlayer reports whether a player with the given id is on the roster.
func (c *Candidate) HasPlayer(id uuid.UUID) bool {
	for _, p := range c.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// IsValid checks the roster against the constraint set: size bounds, the
// salary cap, and every per-position quota. A position with no players
// on the roster counts as zero, so unmet minimums fail here too.
func (c *Candidate) IsValid(constraints *types.RosterConstraints) bool {
	size := len(c.Players)
	if size < constraints.MinSize || size > constraints.MaxSize {
		return false
	}
	if c.TotalCap() > constraints.SalaryCap {
		return false
	}

	counts := c.PositionCounts()
	for position, limit := range constraints.PositionLimits {
		count := counts[position]
		if count < limit.Min || count > limit.Max {
			return false
		}
	}
	return true
}

// Clone returns a candidate holding independent copies of every player,
// so mutating the clone's records can never touch the original or any
// sibling candidate.
func (c *Candidate) Clone() *Candidate {
	players := make([]*types.PlayerRecord, len(c.Players))
	for i, p := range c.Players {
		copied := *p
		players[i] = &copied
	}
	return &Candidate{Players: players}
}

// Records returns value copies of the roster for serialization.
func (c *Candidate) Records() []types.PlayerRecord {
	records := make([]types.PlayerRecord, len(c.Players))
	for i, p := range c.Players {
		records[i] = *p
	}
	return records
}
