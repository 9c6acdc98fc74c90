package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const defaultKey = "$default"

// Paths helper for default/overlay files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/configs
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "profiles", "default.yaml")
}
func (p Paths) OverlayPath(name string) string {
	return filepath.Join(p.BaseDir, "profiles", name+".yaml")
}

// Watched lists the files a hot reload should poll for this overlay.
func (p Paths) Watched(overlay string) []string {
	out := []string{p.DefaultPath()}
	if overlay != "" && overlay != "default" {
		out = append(out, p.OverlayPath(overlay))
	}
	return out
}

// Loader reads YAML configs and merges default → overlay.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: overlay name or "$default"
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads default.yaml and merges the overlay on top (overlay optional).
// It returns the merged RawConfig (without normalization).
func (l *Loader) LoadMerged(overlay string) (RawConfig, error) {
	key := overlay
	if key == "" || key == "default" {
		key = defaultKey
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if key != defaultKey {
		overCfg, err := readYAML(l.paths.OverlayPath(overlay)) // overlay file may not exist
		if err != nil {
			return RawConfig{}, fmt.Errorf("read overlay %s: %w", overlay, err)
		}
		merged = mergeRaw(defCfg, overCfg)
	}

	l.mu.Lock()
	l.cache[defaultKey] = defCfg
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// mergeRaw overlays b onto a: every field b sets wins.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// board
	if b.Board.Rows != nil {
		out.Board.Rows = b.Board.Rows
	}
	if b.Board.Risk != nil {
		out.Board.Risk = b.Board.Risk
	}

	// profiles merge per risk, per field
	if len(b.Profiles) > 0 {
		merged := make(map[string]ProfileCfg, len(a.Profiles)+len(b.Profiles))
		for k, v := range a.Profiles {
			merged[k] = v
		}
		for k, v := range b.Profiles {
			cur := merged[k]
			if v.Center != nil {
				cur.Center = v.Center
			}
			if v.Edge != nil {
				cur.Edge = v.Edge
			}
			if v.Curve != nil {
				cur.Curve = v.Curve
			}
			merged[k] = cur
		}
		out.Profiles = merged
	}

	out.Physics = mergePhysics(a.Physics, b.Physics)

	// wager
	switch {
	case out.Wager == nil && b.Wager != nil:
		c := *b.Wager
		out.Wager = &c
	case out.Wager != nil && b.Wager != nil:
		c := *out.Wager
		if b.Wager.Min != "" {
			c.Min = b.Wager.Min
		}
		if b.Wager.Max != "" {
			c.Max = b.Wager.Max
		}
		out.Wager = &c
	}

	return out
}

func mergePhysics(a, b PhysicsCfg) PhysicsCfg {
	out := a
	pick := func(dst **float64, src *float64) {
		if src != nil {
			*dst = src
		}
	}
	pick(&out.Gap, b.Gap)
	pick(&out.StartY, b.StartY)
	pick(&out.SpawnY, b.SpawnY)
	pick(&out.SpawnJitter, b.SpawnJitter)
	pick(&out.Gravity, b.Gravity)
	pick(&out.Restitution, b.Restitution)
	pick(&out.Guidance, b.Guidance)
	pick(&out.GuidanceGain, b.GuidanceGain)
	pick(&out.Jitter, b.Jitter)
	pick(&out.Homing, b.Homing)
	pick(&out.HomingDrag, b.HomingDrag)
	pick(&out.WallDamping, b.WallDamping)
	pick(&out.WallPush, b.WallPush)
	if b.MaxFrameMS != nil {
		out.MaxFrameMS = b.MaxFrameMS
	}
	if b.MaxTicks != nil {
		out.MaxTicks = b.MaxTicks
	}
	return out
}
