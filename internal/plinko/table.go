package plinko

import (
	"fmt"
	"math"
)

// Profile shapes a multiplier table: Center at the middle bucket, Edge at the
// outermost ones, Curve controls how fast values rise toward the edge.
type Profile struct {
	Center float64 `json:"center" yaml:"center"`
	Edge   float64 `json:"edge" yaml:"edge"`
	Curve  float64 `json:"curve" yaml:"curve"`
}

// Profiles maps each risk level to its shape.
type Profiles map[Risk]Profile

// DefaultProfiles are tuned so both the binomial landing EV and the selector
// RTP stay below 1 for every row count in [MinRows, MaxRows].
func DefaultProfiles() Profiles {
	return Profiles{
		RiskLow:    {Center: 0.65, Edge: 3, Curve: 3.25},
		RiskMedium: {Center: 0.6, Edge: 17, Curve: 7.5},
		RiskHigh:   {Center: 0.5, Edge: 30, Curve: 9},
	}
}

func (p Profile) Validate() error {
	for _, v := range []float64{p.Center, p.Edge, p.Curve} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value", ErrInvalidProfile)
		}
	}
	if p.Center < 0 {
		return fmt.Errorf("%w: center must be >= 0", ErrInvalidProfile)
	}
	if p.Edge < p.Center {
		return fmt.Errorf("%w: edge must be >= center", ErrInvalidProfile)
	}
	if p.Curve <= 0 {
		return fmt.Errorf("%w: curve must be > 0", ErrInvalidProfile)
	}
	return nil
}

// Validate checks that every risk level has a usable profile.
func (ps Profiles) Validate() error {
	for _, r := range Risks {
		p, ok := ps[r]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrInvalidProfile, r)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%s: %w", r, err)
		}
	}
	return nil
}

func (ps Profiles) Clone() Profiles {
	out := make(Profiles, len(ps))
	for k, v := range ps {
		out[k] = v
	}
	return out
}

// Table holds one multiplier per bucket, left to right.
type Table []float64

// BuildTable generates the multiplier table for the board.
// The center is (n-1)/2 so odd row counts stay symmetric too.
func BuildTable(cfg BoardConfig, p Profile) (Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := cfg.BucketCount()
	c := float64(n-1) / 2
	t := make(Table, n)
	for i := range t {
		d := math.Abs(float64(i) - c)
		v := p.Center
		if d > 0 {
			v = p.Center + (p.Edge-p.Center)*math.Pow(d/c, p.Curve)
		}
		t[i] = truncate(v)
	}
	return t, nil
}

// truncate keeps one decimal below 10 and whole numbers above.
// The epsilon absorbs binary representation error (0.6*10 = 5.999...).
func truncate(v float64) float64 {
	const eps = 1e-9
	var out float64
	if v < 10 {
		out = math.Floor(v*10+eps) / 10
	} else {
		out = math.Floor(v + eps)
	}
	if out < 0 {
		return 0
	}
	return out
}

func (t Table) Clone() Table { return append(Table(nil), t...) }

// Multiplier returns the multiplier for bucket i, or 0 when out of range.
func (t Table) Multiplier(i int) float64 {
	if i < 0 || i >= len(t) {
		return 0
	}
	return t[i]
}

// Tier classifies a multiplier for bucket colouring.
type Tier string

const (
	TierDim    Tier = "dim"
	TierBlue   Tier = "blue"
	TierYellow Tier = "yellow"
	TierOrange Tier = "orange"
	TierRed    Tier = "red"
)

func TierOf(m float64) Tier {
	switch {
	case m >= 50:
		return TierRed
	case m >= 10:
		return TierOrange
	case m >= 3:
		return TierYellow
	case m >= 1.5:
		return TierBlue
	}
	return TierDim
}
