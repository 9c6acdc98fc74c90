package physics

import "math"

// Source yields uniform values in [0, 1).
type Source interface {
	Float64() float64
}

// ClampFunnel keeps the ball inside the widening pyramid, one gap of margin
// on each side. Returns true when a wall was hit.
func (g Geometry) ClampFunnel(b *Body, t Tuning) bool {
	row := g.EstimatedRow(b.Pos.Y)
	half := (row+3)*g.Gap/2 + g.Gap
	left, right := g.CenterX-half, g.CenterX+half

	switch {
	case b.Pos.X < left:
		b.Pos.X = left
		b.Vel.X = b.Vel.X*-t.WallDamping + t.WallPush
		return true
	case b.Pos.X > right:
		b.Pos.X = right
		b.Vel.X = b.Vel.X*-t.WallDamping - t.WallPush
		return true
	}
	return false
}

// Contact describes one peg collision.
type Contact struct {
	Row int
	Peg int
	At  Vec
}

// ResolvePegs tests the ball against the pegs of its nearest row only and
// resolves every overlap found in a single pass. Each contact pushes the ball
// out, reflects it, then nudges it toward dir (+1 right, -1 left) with noise.
func (g Geometry) ResolvePegs(b *Body, dir float64, t Tuning, dt float64, rng Source) []Contact {
	row := int(math.Round(g.EstimatedRow(b.Pos.Y)))
	if row < 0 || row >= g.Rows {
		return nil
	}

	var hits []Contact
	minDist := g.PegRadius + b.Radius
	for i := 0; i < g.PegCount(row); i++ {
		peg := g.Peg(row, i)
		d := b.Pos.Sub(peg)
		dist := d.Len()
		if dist >= minDist {
			continue
		}

		n := Vec{0, -1}
		if dist > 0 {
			n = d.Scale(1 / dist)
		}
		b.Pos = b.Pos.Add(n.Scale(minDist - dist))
		Reflect(b, n, t.Restitution)

		jitter := 0.0
		if rng != nil {
			jitter = (rng.Float64() - 0.5) * t.Jitter
		}
		ApplyImpulse(b, (dir*t.Guidance+jitter)*dt*t.GuidanceGain, 0)

		hits = append(hits, Contact{Row: row, Peg: i, At: peg})
	}
	return hits
}

// Crossed reports whether the ball passed the bucket capture line.
func (g Geometry) Crossed(b *Body) bool {
	return b.Pos.Y > g.CaptureLine()
}
