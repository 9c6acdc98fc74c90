// resolve.go
package game

import (
	"fmt"
	"time"

	"github.com/xtding233/plinko-backend/internal/physics"
	"github.com/xtding233/plinko-backend/internal/plinko"
)

// Overrides carries command-line overrides applied after the files.
type Overrides struct {
	Rows *int
	Risk *string
}

type Resolver interface {
	// Returns merged RawConfig and normalized Settings
	Resolve(overlay string, o Overrides) (RawConfig, Settings, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve loads default → overlay, applies overrides, validates and normalizes.
func (l *Loader) Resolve(overlay string, o Overrides) (RawConfig, Settings, error) {
	raw, err := l.LoadMerged(overlay)
	if err != nil {
		return RawConfig{}, Settings{}, err
	}
	if o.Rows != nil {
		raw.Board.Rows = o.Rows
	}
	if o.Risk != nil {
		raw.Board.Risk = o.Risk
	}
	s, err := Normalize(raw)
	if err != nil {
		return RawConfig{}, Settings{}, err
	}
	return raw, s, nil
}

// Normalize validates raw and fills unset fields from the built-in defaults.
func Normalize(raw RawConfig) (Settings, error) {
	if err := ValidateRaw(raw); err != nil {
		return Settings{}, err
	}

	s := Settings{
		Board:    plinko.DefaultBoard(),
		Profiles: plinko.DefaultProfiles(),
		Tuning:   physics.DefaultTuning(),
		Version:  raw.Version,
	}

	if raw.Board.Rows != nil {
		s.Board.Rows = *raw.Board.Rows
	}
	if raw.Board.Risk != nil {
		r, _ := plinko.ParseRisk(*raw.Board.Risk)
		s.Board.Risk = r
	}

	for name, pc := range raw.Profiles {
		r, _ := plinko.ParseRisk(name)
		p := s.Profiles[r]
		if pc.Center != nil {
			p.Center = *pc.Center
		}
		if pc.Edge != nil {
			p.Edge = *pc.Edge
		}
		if pc.Curve != nil {
			p.Curve = *pc.Curve
		}
		s.Profiles[r] = p
	}

	ph := raw.Physics
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	t := &s.Tuning
	set(&t.Gap, ph.Gap)
	set(&t.StartY, ph.StartY)
	set(&t.SpawnY, ph.SpawnY)
	set(&t.SpawnJitter, ph.SpawnJitter)
	set(&t.Gravity, ph.Gravity)
	set(&t.Restitution, ph.Restitution)
	set(&t.Guidance, ph.Guidance)
	set(&t.GuidanceGain, ph.GuidanceGain)
	set(&t.Jitter, ph.Jitter)
	set(&t.Homing, ph.Homing)
	set(&t.HomingDrag, ph.HomingDrag)
	set(&t.WallDamping, ph.WallDamping)
	set(&t.WallPush, ph.WallPush)
	if ph.MaxFrameMS != nil {
		t.MaxFrame = time.Duration(*ph.MaxFrameMS) * time.Millisecond
	}
	if ph.MaxTicks != nil {
		t.MaxTicks = *ph.MaxTicks
	}

	if raw.Wager != nil {
		// already checked by ValidateRaw
		if raw.Wager.Min != "" {
			s.MinWager, _ = plinko.ParseAmount(raw.Wager.Min)
		}
		if raw.Wager.Max != "" {
			s.MaxWager, _ = plinko.ParseAmount(raw.Wager.Max)
		}
	}

	// cross-field checks the raw pass cannot see
	if err := s.Board.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config validation failed: %w", err)
	}
	if err := s.Profiles.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config validation failed: %w", err)
	}
	if err := s.Tuning.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config validation failed: %w", err)
	}
	return s, nil
}
