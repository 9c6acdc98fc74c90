// types.go
package game

import (
	"github.com/xtding233/plinko-backend/internal/physics"
	"github.com/xtding233/plinko-backend/internal/plinko"
)

// Raw config loaded from YAML. Pointer fields stay nil when a file does not
// set them, so an overlay only overrides what it mentions.
type RawConfig struct {
	Version  string                `yaml:"version"`
	Board    BoardCfg              `yaml:"board"`
	Profiles map[string]ProfileCfg `yaml:"profiles,omitempty"`
	Physics  PhysicsCfg            `yaml:"physics"`
	Wager    *WagerCfg             `yaml:"wager,omitempty"`
	Notes    string                `yaml:"notes,omitempty"`
}

type BoardCfg struct {
	Rows *int    `yaml:"rows"`
	Risk *string `yaml:"risk"`
}

type ProfileCfg struct {
	Center *float64 `yaml:"center"`
	Edge   *float64 `yaml:"edge"`
	Curve  *float64 `yaml:"curve"`
}

type PhysicsCfg struct {
	Gap          *float64 `yaml:"gap"`
	StartY       *float64 `yaml:"start_y"`
	SpawnY       *float64 `yaml:"spawn_y"`
	SpawnJitter  *float64 `yaml:"spawn_jitter"`
	Gravity      *float64 `yaml:"gravity"`
	Restitution  *float64 `yaml:"restitution"`
	Guidance     *float64 `yaml:"guidance"`
	GuidanceGain *float64 `yaml:"guidance_gain"`
	Jitter       *float64 `yaml:"jitter"`
	Homing       *float64 `yaml:"homing"`
	HomingDrag   *float64 `yaml:"homing_drag"`
	WallDamping  *float64 `yaml:"wall_damping"`
	WallPush     *float64 `yaml:"wall_push"`
	MaxFrameMS   *int     `yaml:"max_frame_ms"`
	MaxTicks     *int     `yaml:"max_ticks"`
}

// WagerCfg bounds a single wager, as decimal text ("0.10", "100").
type WagerCfg struct {
	Min string `yaml:"min"`
	Max string `yaml:"max"`
}

// Settings are the normalized values the engine and table run with.
type Settings struct {
	Board    plinko.BoardConfig
	Profiles plinko.Profiles
	Tuning   physics.Tuning
	MinWager plinko.Amount // 0 => no lower bound beyond > 0
	MaxWager plinko.Amount // 0 => unbounded
	Version  string        // effective config version for tracing
}
