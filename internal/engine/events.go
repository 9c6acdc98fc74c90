package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/plinko-backend/internal/plinko"
)

type EventKind string

const (
	EventDropped   EventKind = "dropped"
	EventPegHit    EventKind = "peg_hit"
	EventBucketHit EventKind = "bucket_hit"
	EventSettled   EventKind = "settled"
)

// Event is emitted at each collision, capture and settlement so feedback
// (sound, particles, history) can live outside the simulation.
type Event struct {
	Kind   EventKind `json:"kind"`
	BallID uuid.UUID `json:"ball_id"`
	At     time.Time `json:"at"`

	Row int     `json:"row"`
	Peg int     `json:"peg"`
	X   float64 `json:"x,omitempty"`
	Y   float64 `json:"y,omitempty"`

	Bucket       int           `json:"bucket"` // -1 until the ball reaches the line
	VisualBucket int           `json:"visual_bucket"`
	Multiplier   float64       `json:"multiplier,omitempty"`
	Wager        plinko.Amount `json:"wager,omitempty"`
	Payout       plinko.Amount `json:"payout,omitempty"`
	Forced       bool          `json:"forced,omitempty"`
}

type Listener func(Event)

type listeners struct {
	next int
	fns  map[int]Listener
}

func (l *listeners) add(fn Listener) func() {
	if l.fns == nil {
		l.fns = make(map[int]Listener)
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() { delete(l.fns, id) }
}

// emit calls every listener. A listener that panics is reported through
// onPanic and the rest still run.
func (l *listeners) emit(ev Event, onPanic func(any)) {
	for _, fn := range l.fns {
		l.call(fn, ev, onPanic)
	}
}

func (l *listeners) call(fn Listener, ev Event, onPanic func(any)) {
	defer func() {
		if r := recover(); r != nil && onPanic != nil {
			onPanic(r)
		}
	}()
	fn(ev)
}
