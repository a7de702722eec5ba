package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PositionLimit bounds how many players a roster may carry at one position
type PositionLimit struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// PositionLimits maps a position code to its (min,max) roster quota
type PositionLimits map[string]PositionLimit

// Scan implements sql.Scanner for reading PositionLimits from jsonb
func (pl *PositionLimits) Scan(value interface{}) error {
	if value == nil {
		*pl = make(PositionLimits)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into PositionLimits", value)
	}
	result := make(map[string]PositionLimit)
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*pl = PositionLimits(result)
	return nil
}

// Value implements driver.Valuer for writing PositionLimits as jsonb
func (pl PositionLimits) Value() (driver.Value, error) {
	return json.Marshal(pl)
}

// RosterConstraints declares the legal shape of a roster: size bounds, the
// salary cap ceiling, and per-position quotas. It is configuration, not
// state; every consumer that needs to hold onto one should take a Clone.
type RosterConstraints struct {
	MinSize        int            `json:"min_size"`
	MaxSize        int            `json:"max_size"`
	SalaryCap      float64        `json:"salary_cap"`
	PositionLimits PositionLimits `gorm:"type:jsonb" json:"position_limits"`
}

// DefaultRosterConstraints returns the standard 53-man roster rules under
// the projected league cap. The limit map is built fresh on every call so
// callers can never share (and accidentally mutate) a single default.
func DefaultRosterConstraints() *RosterConstraints {
	return &RosterConstraints{
		MinSize:   53,
		MaxSize:   53,
		SalaryCap: 295_500_000,
		PositionLimits: PositionLimits{
			PositionQB:   {Min: 2, Max: 3},
			PositionRB:   {Min: 3, Max: 5},
			PositionWR:   {Min: 5, Max: 7},
			PositionTE:   {Min: 2, Max: 4},
			PositionOT:   {Min: 4, Max: 6},
			PositionOG:   {Min: 4, Max: 6},
			PositionC:    {Min: 2, Max: 3},
			PositionEDGE: {Min: 4, Max: 6},
			PositionDL:   {Min: 4, Max: 6},
			PositionLB:   {Min: 4, Max: 6},
			PositionCB:   {Min: 4, Max: 6},
			PositionS:    {Min: 3, Max: 5},
			PositionK:    {Min: 1, Max: 1},
			PositionP:    {Min: 1, Max: 1},
			PositionLS:   {Min: 1, Max: 1},
		},
	}
}

// Validate rejects malformed constraint sets. A constraint set that fails
// here must never reach an engine run.
func (rc *RosterConstraints) Validate() error {
	if rc.MinSize <= 0 {
		return fmt.Errorf("min roster size must be positive, got %d", rc.MinSize)
	}
	if rc.MaxSize < rc.MinSize {
		return fmt.Errorf("max roster size %d is below min roster size %d", rc.MaxSize, rc.MinSize)
	}
	if rc.SalaryCap <= 0 {
		return fmt.Errorf("salary cap must be positive, got %.0f", rc.SalaryCap)
	}
	if len(rc.PositionLimits) == 0 {
		return fmt.Errorf("position limits are required")
	}
	for position, limit := range rc.PositionLimits {
		if limit.Min < 0 {
			return fmt.Errorf("position %s: min count %d is negative", position, limit.Min)
		}
		if limit.Max < limit.Min {
			return fmt.Errorf("position %s: max count %d is below min count %d", position, limit.Max, limit.Min)
		}
	}
	return nil
}

// Clone returns an independent deep copy of the constraint set.
func (rc *RosterConstraints) Clone() *RosterConstraints {
	limits := make(PositionLimits, len(rc.PositionLimits))
	for position, limit := range rc.PositionLimits {
		limits[position] = limit
	}
	return &RosterConstraints{
		MinSize:        rc.MinSize,
		MaxSize:        rc.MaxSize,
		SalaryCap:      rc.SalaryCap,
		PositionLimits: limits,
	}
}

// MinTotalPlayers returns the sum of per-position minimums.
func (pl PositionLimits) MinTotalPlayers() int {
	total := 0
	for _, limit := range pl {
		total += limit.Min
	}
	return total
}
