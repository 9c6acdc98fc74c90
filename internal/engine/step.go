package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/slog"

	"github.com/xtding233/plinko-backend/internal/lib/logger/sl"
	"github.com/xtding233/plinko-backend/internal/plinko"
)

var (
	errTickBudget = errors.New("tick budget exceeded before reaching the bucket line")
	errNonFinite  = errors.New("non-finite ball state")
)

// Step advances every falling ball by dt, clamped to the tuning's MaxFrame,
// and returns one frame per ball touched this tick. A fault in one ball only
// force settles that ball.
func (e *Engine) Step(dt time.Duration) []Frame {
	if dt < 0 {
		dt = 0
	}
	if dt > e.tuning.MaxFrame {
		dt = e.tuning.MaxFrame
	}
	secs := dt.Seconds()

	frames := make([]Frame, 0, len(e.balls))
	for _, b := range e.balls {
		if b.State != Falling {
			continue
		}
		if err := e.stepBall(b, secs); err != nil {
			e.forceSettle(b, err)
		} else if b.State == Captured {
			e.settle(b)
		}
		frames = append(frames, b.frame())
	}
	e.sweep()
	return frames
}

func (e *Engine) stepBall(b *Ball, dt float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in step: %v", r)
		}
	}()

	b.Ticks++
	if b.Ticks > e.tuning.MaxTicks {
		return errTickBudget
	}

	g := b.board.Geometry
	t := e.tuning
	physicsStep(b, g, t, dt, e)

	if !b.Body.Finite() {
		return errNonFinite
	}
	if g.Crossed(&b.Body) {
		e.capture(b, g.NearestBucket(b.Body.Pos.X), false)
	}
	return nil
}

// capture marks the ball as landed. The visual bucket is only reported;
// payout always uses the planned target.
func (e *Engine) capture(b *Ball, visual int, forced bool) {
	if !b.advance(Captured) {
		return
	}
	b.VisualBucket = visual
	b.Forced = forced
	if visual != b.Target {
		e.log.Debug("visual landing drifted from target",
			sl.String("id", b.ID.String()),
			slog.Int("visual", visual),
			slog.Int("target", b.Target),
		)
	}
	e.emit(Event{
		Kind:         EventBucketHit,
		BallID:       b.ID,
		At:           e.clock(),
		X:            b.Body.Pos.X,
		Y:            b.Body.Pos.Y,
		Bucket:       b.Target,
		VisualBucket: visual,
		Multiplier:   b.board.Table.Multiplier(b.Target),
		Forced:       forced,
	})
}

// settle pays the captured ball exactly once.
func (e *Engine) settle(b *Ball) {
	if b.State != Captured {
		return
	}
	m := b.board.Table.Multiplier(b.Target)
	b.Payout = plinko.Payout(b.Wager, m)
	b.advance(Settled)

	e.wallet.ReportOutcome(b.Payout)
	e.stats.record(b.Wager, b.Payout, m, b.Forced)

	e.log.Debug("ball settled",
		sl.String("id", b.ID.String()),
		slog.Int("bucket", b.Target),
		slog.Float64("multiplier", m),
		sl.String("payout", b.Payout.String()),
	)
	e.emit(Event{
		Kind:       EventSettled,
		BallID:     b.ID,
		At:         e.clock(),
		Bucket:     b.Target,
		Multiplier: m,
		Wager:      b.Wager,
		Payout:     b.Payout,
		Forced:     b.Forced,
	})
}

// forceSettle recovers a ball whose simulation broke: it lands at the planned
// target and is paid as normal.
func (e *Engine) forceSettle(b *Ball, cause error) {
	if b.State == Settled {
		return
	}
	e.log.Error("simulation invariant violated, forcing settlement",
		sl.String("id", b.ID.String()),
		slog.Int("target", b.Target),
		slog.Int("ticks", b.Ticks),
		sl.Err(cause),
	)
	g := b.board.Geometry
	x := g.BucketX(b.Target)
	if math.IsNaN(x) {
		x = g.CenterX
	}
	b.Body.Pos.X, b.Body.Pos.Y = x, g.CaptureLine()
	b.Body.Vel.X, b.Body.Vel.Y = 0, 0
	e.capture(b, b.Target, true)
	e.settle(b)
}

// sweep drops settled balls; presentation owns any fade out.
func (e *Engine) sweep() {
	kept := e.balls[:0]
	for _, b := range e.balls {
		if b.State != Settled {
			kept = append(kept, b)
		}
	}
	for i := len(kept); i < len(e.balls); i++ {
		e.balls[i] = nil
	}
	e.balls = kept
}
