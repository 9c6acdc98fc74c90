package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/xtding233/plinko-backend/internal/physics"
	"github.com/xtding233/plinko-backend/internal/plinko"
)

type State uint8

const (
	Falling State = iota
	Captured
	Settled
)

func (s State) String() string {
	switch s {
	case Falling:
		return "falling"
	case Captured:
		return "captured"
	case Settled:
		return "settled"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for _, v := range []State{Falling, Captured, Settled} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown ball state %q", b)
}

// Ball is one accepted wager in flight. The plan (Target, Path) and the
// board snapshot are fixed at spawn.
type Ball struct {
	ID     uuid.UUID
	Body   physics.Body
	Path   plinko.Path
	Row    int // last peg row passed, -1 before the first
	Target int
	Wager  plinko.Amount
	State  State
	Ticks  int

	VisualBucket int
	Payout       plinko.Amount
	Forced       bool

	board *Board
}

// advance moves the state forward only.
func (b *Ball) advance(to State) bool {
	if to <= b.State {
		return false
	}
	b.State = to
	return true
}

// Frame is the per-tick drawing data for one ball.
type Frame struct {
	BallID uuid.UUID `json:"ball_id"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	State  State     `json:"state"`
	Bucket int       `json:"bucket"` // authoritative bucket once captured, -1 before
}

func (b *Ball) frame() Frame {
	f := Frame{BallID: b.ID, X: b.Body.Pos.X, Y: b.Body.Pos.Y, State: b.State, Bucket: -1}
	if b.State >= Captured {
		f.Bucket = b.Target
	}
	return f
}

// BallView is a read-only copy of a ball.
type BallView struct {
	ID           uuid.UUID     `json:"id"`
	X            float64       `json:"x"`
	Y            float64       `json:"y"`
	Row          int           `json:"row"`
	Target       int           `json:"target"`
	Path         plinko.Path   `json:"-"`
	Wager        plinko.Amount `json:"wager"`
	State        State         `json:"state"`
	Ticks        int           `json:"ticks"`
	VisualBucket int           `json:"visual_bucket"`
}

func (b *Ball) view() BallView {
	return BallView{
		ID:           b.ID,
		X:            b.Body.Pos.X,
		Y:            b.Body.Pos.Y,
		Row:          b.Row,
		Target:       b.Target,
		Path:         append(plinko.Path(nil), b.Path...),
		Wager:        b.Wager,
		State:        b.State,
		Ticks:        b.Ticks,
		VisualBucket: b.VisualBucket,
	}
}
