package physics

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrInvalidTuning = errors.New("invalid physics tuning")

// Tuning holds the board scale and the forces applied to each ball.
// Lengths are in board units (pixels at 1x), time in seconds.
type Tuning struct {
	Gap          float64 // distance between neighbouring pegs
	StartY       float64 // y of the first peg row
	SpawnY       float64
	SpawnJitter  float64 // total width of the random spawn offset
	Gravity      float64
	Restitution  float64
	Guidance     float64 // steering toward the planned branch
	GuidanceGain float64
	Jitter       float64 // total width of the random guidance noise
	Homing       float64 // horizontal pull toward the planned lane, per unit offset
	HomingDrag   float64
	WallDamping  float64
	WallPush     float64

	MaxFrame time.Duration // dt is clamped to this
	MaxTicks int           // a ball still falling after this many steps is force settled
}

func DefaultTuning() Tuning {
	return Tuning{
		Gap:          40,
		StartY:       40,
		SpawnY:       20,
		SpawnJitter:  4,
		Gravity:      800,
		Restitution:  0.5,
		Guidance:     150,
		GuidanceGain: 5,
		Jitter:       50,
		Homing:       40,
		HomingDrag:   6,
		WallDamping:  0.5,
		WallPush:     50,
		MaxFrame:     100 * time.Millisecond,
		MaxTicks:     3600,
	}
}

func (t Tuning) Validate() error {
	var errs []string
	finite := func(name string, v float64) bool {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, name+" must be finite")
			return false
		}
		return true
	}
	if finite("gap", t.Gap) && t.Gap <= 0 {
		errs = append(errs, "gap must be > 0")
	}
	if finite("start_y", t.StartY) && finite("spawn_y", t.SpawnY) && t.SpawnY >= t.StartY {
		errs = append(errs, "spawn_y must be above start_y")
	}
	if finite("gravity", t.Gravity) && t.Gravity <= 0 {
		errs = append(errs, "gravity must be > 0")
	}
	if finite("restitution", t.Restitution) && (t.Restitution < 0 || t.Restitution > 1) {
		errs = append(errs, "restitution must be in [0,1]")
	}
	for name, v := range map[string]float64{
		"spawn_jitter":  t.SpawnJitter,
		"guidance":      t.Guidance,
		"guidance_gain": t.GuidanceGain,
		"jitter":        t.Jitter,
		"homing":        t.Homing,
		"homing_drag":   t.HomingDrag,
		"wall_damping":  t.WallDamping,
		"wall_push":     t.WallPush,
	} {
		if finite(name, v) && v < 0 {
			errs = append(errs, name+" must be >= 0")
		}
	}
	if t.MaxFrame <= 0 {
		errs = append(errs, "max_frame must be > 0")
	}
	if t.MaxTicks <= 0 {
		errs = append(errs, "max_ticks must be > 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTuning, strings.Join(errs, "; "))
	}
	return nil
}
