package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/xtding233/plinko-backend/internal/lib/logger/sl"
	"github.com/xtding233/plinko-backend/internal/physics"
	"github.com/xtding233/plinko-backend/internal/plinko"
)

// Wallet is the balance collaborator.
type Wallet interface {
	// RequestWager reserves amount; no ball is spawned unless it returns true.
	RequestWager(amount plinko.Amount) bool
	// ReportOutcome is called exactly once per settled ball, with 0 for a loss.
	ReportOutcome(amount plinko.Amount)
}

// Board is an immutable snapshot shared by every ball spawned under it.
type Board struct {
	Config   plinko.BoardConfig `json:"config"`
	Table    plinko.Table       `json:"table"`
	Geometry physics.Geometry   `json:"geometry"`
}

type Config struct {
	Board    plinko.BoardConfig
	Profiles plinko.Profiles
	Tuning   physics.Tuning
	Wallet   Wallet

	RNG        plinko.RandomSource // nil => crypto backed
	Clock      func() time.Time    // nil => time.Now
	Log        *slog.Logger        // nil => slog.Default()
	WindowSize int                 // realized RTP window, 0 => 500
}

// Engine runs the drop simulation. It is not safe for concurrent use;
// wrap it in a table.Table to share it.
type Engine struct {
	wallet   Wallet
	rng      plinko.RandomSource
	clock    func() time.Time
	log      *slog.Logger
	profiles plinko.Profiles
	tuning   physics.Tuning

	board *Board
	balls []*Ball

	listeners listeners
	stats     *statsRecorder
}

func New(cfg Config) (*Engine, error) {
	if cfg.Wallet == nil {
		return nil, errors.New("engine: wallet is required")
	}
	if cfg.Board == (plinko.BoardConfig{}) {
		cfg.Board = plinko.DefaultBoard()
	}
	if cfg.Profiles == nil {
		cfg.Profiles = plinko.DefaultProfiles()
	}
	if cfg.Tuning == (physics.Tuning{}) {
		cfg.Tuning = physics.DefaultTuning()
	}
	if err := cfg.Profiles.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, err
	}
	if cfg.RNG == nil {
		cfg.RNG = plinko.DefaultRNG()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	e := &Engine{
		wallet:   cfg.Wallet,
		rng:      cfg.RNG,
		clock:    cfg.Clock,
		log:      cfg.Log,
		profiles: cfg.Profiles.Clone(),
		tuning:   cfg.Tuning,
		stats:    newStatsRecorder(cfg.WindowSize),
	}
	board, err := e.buildBoard(cfg.Board, e.profiles, e.tuning)
	if err != nil {
		return nil, err
	}
	e.board = board
	return e, nil
}

func (e *Engine) buildBoard(cfg plinko.BoardConfig, ps plinko.Profiles, t physics.Tuning) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, ok := ps[cfg.Risk]
	if !ok {
		return nil, fmt.Errorf("%w: no profile for %s", plinko.ErrInvalidProfile, cfg.Risk)
	}
	tab, err := plinko.BuildTable(cfg, p)
	if err != nil {
		return nil, err
	}
	return &Board{Config: cfg, Table: tab, Geometry: physics.NewGeometry(cfg.Rows, t)}, nil
}

// Board returns a copy of the current board.
func (e *Engine) Board() Board {
	b := *e.board
	b.Table = b.Table.Clone()
	return b
}

func (e *Engine) Profiles() plinko.Profiles { return e.profiles.Clone() }

func (e *Engine) Tuning() physics.Tuning { return e.tuning }

// Falling counts balls still in the air.
func (e *Engine) Falling() int {
	n := 0
	for _, b := range e.balls {
		if b.State == Falling {
			n++
		}
	}
	return n
}

// Balls returns read-only copies of in-flight balls.
func (e *Engine) Balls() []BallView {
	out := make([]BallView, 0, len(e.balls))
	for _, b := range e.balls {
		out = append(out, b.view())
	}
	return out
}

func (e *Engine) Ball(id uuid.UUID) (BallView, bool) {
	for _, b := range e.balls {
		if b.ID == id {
			return b.view(), true
		}
	}
	return BallView{}, false
}

func (e *Engine) Stats() RoundStats { return e.stats.snapshot() }

// Subscribe registers fn for every event; call the returned func to stop.
func (e *Engine) Subscribe(fn Listener) func() { return e.listeners.add(fn) }

// emit keeps a faulty listener from interrupting a step: the ball's state and
// the wallet are already updated when events go out.
func (e *Engine) emit(ev Event) {
	e.listeners.emit(ev, func(r any) {
		e.log.Error("event listener panicked",
			sl.String("kind", string(ev.Kind)),
			sl.String("ball", ev.BallID.String()),
			sl.Any("panic", r),
		)
	})
}

// Configure swaps the board. It fails while any ball is falling.
func (e *Engine) Configure(cfg plinko.BoardConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return e.rebuild(cfg, e.profiles, e.tuning)
}

// SetProfiles replaces the risk profiles and rebuilds the current table.
func (e *Engine) SetProfiles(ps plinko.Profiles) error {
	if err := ps.Validate(); err != nil {
		return err
	}
	return e.rebuild(e.board.Config, ps.Clone(), e.tuning)
}

func (e *Engine) SetTuning(t physics.Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return e.rebuild(e.board.Config, e.profiles, t)
}

func (e *Engine) rebuild(cfg plinko.BoardConfig, ps plinko.Profiles, t physics.Tuning) error {
	if n := e.Falling(); n > 0 {
		return fmt.Errorf("%w: %d in flight", plinko.ErrConfigurationLocked, n)
	}
	board, err := e.buildBoard(cfg, ps, t)
	if err != nil {
		return err
	}
	e.board, e.profiles, e.tuning = board, ps, t
	e.log.Info("board configured",
		slog.Int("rows", cfg.Rows),
		sl.String("risk", cfg.Risk.String()),
		sl.Any("table", board.Table),
	)
	return nil
}

// Drop accepts a wager and spawns a ball. The landing bucket is chosen here,
// before any physics runs.
func (e *Engine) Drop(wager plinko.Amount) (BallView, error) {
	if wager <= 0 {
		return BallView{}, fmt.Errorf("%w: %s", plinko.ErrInvalidWager, wager)
	}
	if !e.wallet.RequestWager(wager) {
		return BallView{}, plinko.ErrWagerRejected
	}

	board := e.board
	target := plinko.SelectBucket(board.Table, e.rng)
	path, err := plinko.PlanPath(target, board.Config.Rows, e.rng)
	if err != nil {
		// the selector only returns indices in range, so this is a defect;
		// the wager is already taken, settle it at the chosen bucket
		e.log.Error("plan path", sl.Err(err))
		path = nil
	}

	g := board.Geometry
	b := &Ball{
		ID: uuid.New(),
		Body: physics.Body{
			Pos:    physics.Vec{X: g.CenterX + (e.rng.Float64()-0.5)*e.tuning.SpawnJitter, Y: g.SpawnY},
			Radius: g.BallRadius,
		},
		Path:         path,
		Row:          -1,
		Target:       target,
		Wager:        wager,
		State:        Falling,
		VisualBucket: -1,
		board:        board,
	}
	e.balls = append(e.balls, b)

	e.log.Debug("ball dropped",
		sl.String("id", b.ID.String()),
		sl.String("wager", wager.String()),
		slog.Int("target", target),
	)
	e.emit(Event{
		Kind:         EventDropped,
		BallID:       b.ID,
		At:           e.clock(),
		Row:          -1,
		X:            b.Body.Pos.X,
		Y:            b.Body.Pos.Y,
		Bucket:       -1,
		VisualBucket: -1,
		Wager:        wager,
	})

	if path == nil {
		e.forceSettle(b, err)
		e.sweep()
	}
	return b.view(), nil
}
