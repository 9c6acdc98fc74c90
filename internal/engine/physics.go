package engine

import (
	"math"

	"github.com/xtding233/plinko-backend/internal/physics"
)

// physicsStep runs one integration tick: lane steering, gravity, funnel
// walls, pegs.
func physicsStep(b *Ball, g physics.Geometry, t physics.Tuning, dt float64, e *Engine) {
	// aim for the lane after the nearest row's decision so the ball meets
	// that peg on the planned side
	lane := max(-1, min(int(math.Round(g.EstimatedRow(b.Body.Pos.Y))), g.Rows-1))
	physics.Steer(&b.Body, g.LaneX(lane, b.Path.RightsThrough(lane)), t.Homing, t.HomingDrag, dt)
	physics.Integrate(&b.Body, t.Gravity, dt)
	g.ClampFunnel(&b.Body, t)

	row := int(math.Round(g.EstimatedRow(b.Body.Pos.Y)))
	dir := b.Path.At(row).Sign()
	for _, c := range g.ResolvePegs(&b.Body, dir, t, dt, e.rng) {
		e.emit(Event{
			Kind:   EventPegHit,
			BallID: b.ID,
			At:     e.clock(),
			Row:    c.Row,
			Peg:    c.Peg,
			X:      c.At.X,
			Y:      c.At.Y,

			Bucket:       -1,
			VisualBucket: -1,
		})
	}

	if r := int(math.Floor(g.EstimatedRow(b.Body.Pos.Y))); r > b.Row {
		b.Row = min(r, g.Rows-1)
	}
}
