package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/xtding233/plinko-backend/internal/plinko"
)

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// board
	if cfg.Board.Rows != nil {
		if r := *cfg.Board.Rows; r < plinko.MinRows || r > plinko.MaxRows {
			errs = append(errs, fmt.Sprintf("board.rows must be in [%d,%d]", plinko.MinRows, plinko.MaxRows))
		}
	}
	if cfg.Board.Risk != nil {
		if _, err := plinko.ParseRisk(*cfg.Board.Risk); err != nil {
			errs = append(errs, "board.risk must be one of: low, medium, high")
		}
	}

	// profiles
	for name, p := range cfg.Profiles {
		if _, err := plinko.ParseRisk(name); err != nil {
			errs = append(errs, fmt.Sprintf("profiles.%s is not a risk level", name))
			continue
		}
		if p.Center != nil && (bad(*p.Center) || *p.Center < 0) {
			errs = append(errs, fmt.Sprintf("profiles.%s.center must be >= 0", name))
		}
		if p.Curve != nil && (bad(*p.Curve) || *p.Curve <= 0) {
			errs = append(errs, fmt.Sprintf("profiles.%s.curve must be > 0", name))
		}
		if p.Edge != nil && bad(*p.Edge) {
			errs = append(errs, fmt.Sprintf("profiles.%s.edge must be finite", name))
		}
		if p.Center != nil && p.Edge != nil && *p.Edge < *p.Center {
			errs = append(errs, fmt.Sprintf("profiles.%s.edge must be >= center", name))
		}
	}

	// physics
	ph := cfg.Physics
	positive := map[string]*float64{"gap": ph.Gap, "gravity": ph.Gravity}
	for name, v := range positive {
		if v != nil && (bad(*v) || *v <= 0) {
			errs = append(errs, "physics."+name+" must be > 0")
		}
	}
	nonNegative := map[string]*float64{
		"spawn_jitter":  ph.SpawnJitter,
		"guidance":      ph.Guidance,
		"guidance_gain": ph.GuidanceGain,
		"jitter":        ph.Jitter,
		"homing":        ph.Homing,
		"homing_drag":   ph.HomingDrag,
		"wall_damping":  ph.WallDamping,
		"wall_push":     ph.WallPush,
	}
	for name, v := range nonNegative {
		if v != nil && (bad(*v) || *v < 0) {
			errs = append(errs, "physics."+name+" must be >= 0")
		}
	}
	if ph.Restitution != nil && (bad(*ph.Restitution) || *ph.Restitution < 0 || *ph.Restitution > 1) {
		errs = append(errs, "physics.restitution must be in [0,1]")
	}
	if ph.MaxFrameMS != nil && *ph.MaxFrameMS <= 0 {
		errs = append(errs, "physics.max_frame_ms must be >= 1")
	}
	if ph.MaxTicks != nil && *ph.MaxTicks <= 0 {
		errs = append(errs, "physics.max_ticks must be >= 1")
	}

	// wager (optional)
	if cfg.Wager != nil {
		var lo, hi plinko.Amount
		var err error
		if cfg.Wager.Min != "" {
			if lo, err = plinko.ParseAmount(cfg.Wager.Min); err != nil || lo < 0 {
				errs = append(errs, "wager.min must be a non-negative amount")
			}
		}
		if cfg.Wager.Max != "" {
			if hi, err = plinko.ParseAmount(cfg.Wager.Max); err != nil || hi <= 0 {
				errs = append(errs, "wager.max must be a positive amount")
			}
		}
		if lo > 0 && hi > 0 && lo > hi {
			errs = append(errs, "wager.min must be <= wager.max")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func bad(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
