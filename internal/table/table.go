// Package table hosts one engine behind a mutex and drives its tick loop.
package table

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"github.com/xtding233/plinko-backend/internal/engine"
	"github.com/xtding233/plinko-backend/internal/game"
	"github.com/xtding233/plinko-backend/internal/lib/logger/sl"
	"github.com/xtding233/plinko-backend/internal/plinko"
)

// Update is what subscribers receive once per tick.
type Update struct {
	Frames []engine.Frame `json:"frames"`
	Events []engine.Event `json:"events,omitempty"`
	At     time.Time      `json:"at"`
}

// Limits bounds a single wager. Zero means unbounded.
type Limits struct {
	Min plinko.Amount `json:"min"`
	Max plinko.Amount `json:"max"`
}

type Options struct {
	Log    *slog.Logger
	Limits Limits
	Clock  func() time.Time
}

// Table serializes every access to the engine. Engine events are buffered
// and delivered with the next tick's frames.
type Table struct {
	mu      sync.Mutex
	eng     *engine.Engine
	limits  Limits
	pending *game.Settings
	events  []engine.Event

	// board last installed from config; a reload only reconfigures the
	// board when the file's board section differs from it
	fileBoard plinko.BoardConfig

	log   *slog.Logger
	clock func() time.Time

	subMu   sync.RWMutex
	subs    map[int]chan Update
	nextSub int
}

func New(eng *engine.Engine, opts Options) *Table {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	t := &Table{
		eng:    eng,
		limits: opts.Limits,
		log:    opts.Log,
		clock:  opts.Clock,
		subs:   make(map[int]chan Update),

		fileBoard: eng.Board().Config,
	}
	// called from inside engine methods, so t.mu is already held
	eng.Subscribe(func(ev engine.Event) { t.events = append(t.events, ev) })
	return t
}

// Drop validates the wager against the table limits and spawns a ball.
func (t *Table) Drop(amount plinko.Amount) (engine.BallView, error) {
	t.mu.Lock()
	lim := t.limits
	t.mu.Unlock()

	if amount <= 0 {
		return engine.BallView{}, fmt.Errorf("%w: %s", plinko.ErrInvalidWager, amount)
	}
	if lim.Min > 0 && amount < lim.Min {
		return engine.BallView{}, fmt.Errorf("%w: below minimum %s", plinko.ErrInvalidWager, lim.Min)
	}
	if lim.Max > 0 && amount > lim.Max {
		return engine.BallView{}, fmt.Errorf("%w: above maximum %s", plinko.ErrInvalidWager, lim.Max)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eng.Drop(amount)
}

func (t *Table) Configure(cfg plinko.BoardConfig) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eng.Configure(cfg)
}

func (t *Table) Board() engine.Board {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eng.Board()
}

func (t *Table) Stats() engine.RoundStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eng.Stats()
}

func (t *Table) Balls() []engine.BallView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eng.Balls()
}

func (t *Table) Falling() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eng.Falling()
}

func (t *Table) Limits() Limits {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limits
}

func (t *Table) Profiles() plinko.Profiles {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.eng.Profiles()
}

// ApplySettings installs reloaded profiles, tuning, limits and, when the
// board section changed, the board itself. A zero Board leaves the board
// alone. While balls are falling the settings are parked and applied on the
// first idle tick. Returns true when applied now.
func (t *Table) ApplySettings(s game.Settings) (bool, error) {
	if s.Board != (plinko.BoardConfig{}) {
		if err := s.Board.Validate(); err != nil {
			return false, err
		}
	}
	if err := s.Profiles.Validate(); err != nil {
		return false, err
	}
	if err := s.Tuning.Validate(); err != nil {
		return false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.eng.Falling() > 0 {
		t.pending = &s
		t.log.Info("config reload deferred until the board is idle", sl.String("version", s.Version))
		return false, nil
	}
	return true, t.applyLocked(s)
}

func (t *Table) applyLocked(s game.Settings) error {
	if err := t.eng.SetTuning(s.Tuning); err != nil {
		return err
	}
	if err := t.eng.SetProfiles(s.Profiles); err != nil {
		return err
	}
	if s.Board != (plinko.BoardConfig{}) && s.Board != t.fileBoard {
		if err := t.eng.Configure(s.Board); err != nil {
			return err
		}
		t.log.Info("board reconfigured from config",
			slog.Int("rows", s.Board.Rows),
			sl.String("risk", s.Board.Risk.String()),
		)
		t.fileBoard = s.Board
	}
	t.limits = Limits{Min: s.MinWager, Max: s.MaxWager}
	t.pending = nil
	t.log.Info("config applied", sl.String("version", s.Version))
	return nil
}

// Tick advances the simulation by dt and publishes the update.
func (t *Table) Tick(dt time.Duration) Update {
	t.mu.Lock()
	frames := t.eng.Step(dt)
	if t.pending != nil && t.eng.Falling() == 0 {
		if err := t.applyLocked(*t.pending); err != nil {
			t.log.Error("apply deferred config", sl.Err(err))
			t.pending = nil
		}
	}
	u := Update{Frames: frames, Events: t.events, At: t.clock()}
	t.events = nil
	t.mu.Unlock()

	if len(u.Frames) > 0 || len(u.Events) > 0 {
		t.publish(u)
	}
	return u
}

// Run ticks at interval until ctx is done. dt is wall time between ticks;
// the engine clamps it.
func (t *Table) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be > 0")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := t.clock()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			now := t.clock()
			t.Tick(now.Sub(last))
			last = now
		}
	}
}

// Subscribe returns a channel of updates. Slow readers miss updates rather
// than stall the loop. Call cancel to unsubscribe.
func (t *Table) Subscribe(buffer int) (<-chan Update, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Update, buffer)
	t.subMu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	t.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.subMu.Lock()
			delete(t.subs, id)
			t.subMu.Unlock()
			close(ch)
		})
	}
}

func (t *Table) publish(u Update) {
	t.subMu.RLock()
	defer t.subMu.RUnlock()
	for _, ch := range t.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
