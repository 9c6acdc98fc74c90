package plinko

import (
	"fmt"
	"strings"
)

type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Risks lists every level in display order.
var Risks = []Risk{RiskLow, RiskMedium, RiskHigh}

const (
	MinRows     = 8
	MaxRows     = 16
	DefaultRows = 16
)

func (r Risk) String() string { return string(r) }

func (r Risk) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// ParseRisk accepts the level name in any case.
func ParseRisk(s string) (Risk, error) {
	r := Risk(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRisk, s)
	}
	return r, nil
}

// BoardConfig is the player-facing board setup.
type BoardConfig struct {
	Rows int  `json:"rows" yaml:"rows"`
	Risk Risk `json:"risk" yaml:"risk"`
}

func DefaultBoard() BoardConfig {
	return BoardConfig{Rows: DefaultRows, Risk: RiskMedium}
}

func (c BoardConfig) BucketCount() int { return c.Rows + 1 }

// Validate rejects out of range values, it never clamps them.
func (c BoardConfig) Validate() error {
	if c.Rows < MinRows || c.Rows > MaxRows {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidRows, c.Rows, MinRows, MaxRows)
	}
	if !c.Risk.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRisk, string(c.Risk))
	}
	return nil
}
