package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Position codes for an NFL roster. Every constrained roster slot maps to
// exactly one of these.
const (
	PositionQB   = "QB"
	PositionRB   = "RB"
	PositionWR   = "WR"
	PositionTE   = "TE"
	PositionOT   = "OT"
	PositionOG   = "OG"
	PositionC    = "C"
	PositionEDGE = "EDGE"
	PositionDL   = "DL"
	PositionLB   = "LB"
	PositionCB   = "CB"
	PositionS    = "S"
	PositionK    = "K"
	PositionP    = "P"
	PositionLS   = "LS"
)

// AllPositions lists every roster position code in display order.
var AllPositions = []string{
	PositionQB, PositionRB, PositionWR, PositionTE,
	PositionOT, PositionOG, PositionC,
	PositionEDGE, PositionDL, PositionLB, PositionCB, PositionS,
	PositionK, PositionP, PositionLS,
}

// PlayerRecord represents a player as a cap asset: contract and
// performance attributes plus the valuation fields computed from them.
// Raw attributes are immutable once loaded; computed fields are populated
// by the valuation model and are safe to recompute at any time.
type PlayerRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID string    `gorm:"index" json:"external_id,omitempty"`
	Name       string    `gorm:"not null" json:"name"`
	Position   string    `gorm:"not null;index" json:"position"`
	Team       string    `json:"team"`
	Age        int       `json:"age"`

	// Contract attributes
	CapHit             float64 `gorm:"not null" json:"cap_hit"`
	YearsRemaining     int     `json:"years_remaining"`
	GuaranteedMoney    float64 `json:"guaranteed_money"`
	TotalContractValue float64 `json:"total_contract_value"`

	// Performance attributes
	EPATotal    float64 `json:"epa_total"`
	SnapsPlayed int     `json:"snaps_played"`
	GamesMissed int     `json:"games_missed"`

	// Computed by the valuation model
	ExpectedValue      float64 `json:"expected_value"`
	RiskScore          float64 `json:"risk_score"`
	FairValue          float64 `json:"fair_value"`
	EfficiencyRatio    float64 `json:"efficiency_ratio"`
	RiskAdjustedReturn float64 `json:"sharpe_ratio"`
	NetPresentValue    float64 `json:"net_present_value"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// PlayerList is a jsonb-persistable slice of player records
type PlayerList []PlayerRecord

// Scan implements sql.Scanner for reading PlayerList from jsonb
func (pl *PlayerList) Scan(value interface{}) error {
	if value == nil {
		*pl = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into PlayerList", value)
	}
	return json.Unmarshal(bytes, pl)
}

// Value implements driver.Valuer for writing PlayerList as jsonb
func (pl PlayerList) Value() (driver.Value, error) {
	if pl == nil {
		return nil, nil
	}
	return json.Marshal(pl)
}

// PlayerPool represents a stored collection of player records that can be
// referenced by optimization requests instead of resending the full pool
type PlayerPool struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	Season    int        `json:"season"`
	Players   PlayerList `gorm:"type:jsonb" json:"players"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
