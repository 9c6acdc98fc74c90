package physics

import "math"

type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }
func (v Vec) Dot(o Vec) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec) Len() float64        { return math.Hypot(v.X, v.Y) }
func (v Vec) Finite() bool        { return finite(v.X) && finite(v.Y) }
func finite(f float64) bool       { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Body is the kinetic state of one ball.
type Body struct {
	Pos    Vec
	Vel    Vec
	Radius float64
}

func (b *Body) Finite() bool { return b.Pos.Finite() && b.Vel.Finite() }

// Integrate performs semi-implicit Euler: v = v + g*dt; p = p + v*dt
func Integrate(b *Body, gravity, dt float64) {
	b.Vel.Y += gravity * dt
	b.Pos = b.Pos.Add(b.Vel.Scale(dt))
}

// ApplyImpulse adds velocity delta
func ApplyImpulse(b *Body, dx, dy float64) {
	b.Vel.X += dx
	b.Vel.Y += dy
}

// Reflect mirrors velocity about unit normal n and scales it by restitution.
func Reflect(b *Body, n Vec, restitution float64) {
	dot := b.Vel.Dot(n)
	b.Vel = b.Vel.Sub(n.Scale(2 * dot)).Scale(restitution)
}

// Steer pulls the ball horizontally toward targetX with spring gain k and
// drag d. Only the x axis is touched so gravity stays the sole vertical force.
func Steer(b *Body, targetX, k, d, dt float64) {
	b.Vel.X += (k*(targetX-b.Pos.X) - d*b.Vel.X) * dt
}
