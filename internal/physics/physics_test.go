package physics

import (
	"errors"
	"math"
	"testing"
)

type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

func TestIntegrate(t *testing.T) {
	b := Body{Vel: Vec{X: 10}}
	Integrate(&b, 800, 0.1)
	if b.Vel.Y != 80 {
		t.Fatalf("vy=%f want 80", b.Vel.Y)
	}
	if math.Abs(b.Pos.X-1) > 1e-12 || math.Abs(b.Pos.Y-8) > 1e-12 {
		t.Fatalf("pos=%+v", b.Pos)
	}
}

func TestGeometryLayout(t *testing.T) {
	g := NewGeometry(8, DefaultTuning())
	if g.PegCount(0) != 3 || g.PegCount(7) != 10 {
		t.Fatalf("peg counts wrong")
	}
	// row pegs are centered on CenterX
	for r := 0; r < g.Rows; r++ {
		n := g.PegCount(r)
		first, last := g.Peg(r, 0), g.Peg(r, n-1)
		if math.Abs(first.X+last.X) > 1e-9 || first.Y != last.Y {
			t.Fatalf("row %d not centered: %+v %+v", r, first, last)
		}
	}
	if g.BucketY != 40+8*40+25 {
		t.Fatalf("bucketY=%f", g.BucketY)
	}
	if g.CaptureLine() != g.BucketY-12 {
		t.Fatalf("capture line=%f", g.CaptureLine())
	}
}

func TestNearestBucket(t *testing.T) {
	g := NewGeometry(8, DefaultTuning())
	for i := 0; i < g.BucketCount(); i++ {
		if got := g.NearestBucket(g.BucketX(i) + 3); got != i {
			t.Fatalf("bucket %d: got %d", i, got)
		}
	}
	if g.NearestBucket(-1e6) != 0 || g.NearestBucket(1e6) != 8 {
		t.Fatalf("far positions must clamp to the edge buckets")
	}
	if g.NearestBucket(math.NaN()) != 4 {
		t.Fatalf("NaN falls back to the center bucket")
	}
}

func TestClampFunnel(t *testing.T) {
	tu := DefaultTuning()
	g := NewGeometry(8, tu)
	// at row 0 the half width is 3*gap/2 + gap = 100
	b := Body{Pos: Vec{X: -500, Y: g.StartY}, Vel: Vec{X: -100}}
	if !g.ClampFunnel(&b, tu) {
		t.Fatalf("expected wall hit")
	}
	if b.Pos.X != -100 || b.Vel.X != 100 {
		t.Fatalf("left clamp: %+v", b)
	}
	b = Body{Pos: Vec{X: 500, Y: g.StartY}, Vel: Vec{X: 100}}
	g.ClampFunnel(&b, tu)
	if b.Pos.X != 100 || b.Vel.X != -100 {
		t.Fatalf("right clamp: %+v", b)
	}
	b = Body{Pos: Vec{X: 0, Y: g.StartY}}
	if g.ClampFunnel(&b, tu) {
		t.Fatalf("center must not hit a wall")
	}
}

func TestResolvePegsPushesOutAndGuides(t *testing.T) {
	tu := DefaultTuning()
	g := NewGeometry(8, tu)
	peg := g.Peg(0, 1) // middle peg of the first row
	b := Body{Pos: Vec{X: peg.X + 1, Y: peg.Y - 5}, Vel: Vec{Y: 200}, Radius: g.BallRadius}

	hits := g.ResolvePegs(&b, 1, tu, 0.016, constSource(0.5))
	if len(hits) != 1 || hits[0].Row != 0 || hits[0].Peg != 1 {
		t.Fatalf("hits=%+v", hits)
	}
	if d := b.Pos.Sub(peg).Len(); d < g.PegRadius+g.BallRadius-1e-9 {
		t.Fatalf("ball still overlapping: dist=%f", d)
	}
	if b.Vel.Y >= 0 {
		t.Fatalf("ball should bounce upward, vy=%f", b.Vel.Y)
	}
	if b.Vel.X <= 0 {
		t.Fatalf("guidance right should leave vx > 0, vx=%f", b.Vel.X)
	}
}

func TestResolvePegsZeroDistance(t *testing.T) {
	tu := DefaultTuning()
	g := NewGeometry(8, tu)
	peg := g.Peg(2, 0)
	b := Body{Pos: peg, Vel: Vec{Y: 100}, Radius: g.BallRadius}
	g.ResolvePegs(&b, -1, tu, 0.016, nil)
	if !b.Finite() {
		t.Fatalf("zero distance overlap produced non-finite state: %+v", b)
	}
	if b.Pos.Y >= peg.Y {
		t.Fatalf("ball should be pushed above the peg")
	}
}

func TestResolvePegsOutsideRows(t *testing.T) {
	tu := DefaultTuning()
	g := NewGeometry(8, tu)
	b := Body{Pos: Vec{Y: g.BucketY}, Radius: g.BallRadius}
	if hits := g.ResolvePegs(&b, 1, tu, 0.016, nil); hits != nil {
		t.Fatalf("no pegs below the last row, got %+v", hits)
	}
}

func TestTuningValidate(t *testing.T) {
	if err := DefaultTuning().Validate(); err != nil {
		t.Fatal(err)
	}
	bad := DefaultTuning()
	bad.Gap = 0
	bad.Restitution = 2
	bad.MaxTicks = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidTuning) {
		t.Fatalf("want ErrInvalidTuning, got %v", err)
	}
	bad = DefaultTuning()
	bad.Gravity = math.Inf(1)
	if err := bad.Validate(); err == nil {
		t.Fatalf("infinite gravity must be rejected")
	}
}

func TestLaneXMatchesBuckets(t *testing.T) {
	g := NewGeometry(8, DefaultTuning())
	// after the last row the lane is the bucket the path lands in
	for k := 0; k <= g.Rows; k++ {
		if math.Abs(g.LaneX(g.Rows-1, k)-g.BucketX(k)) > 1e-9 {
			t.Fatalf("lane %d = %v, bucket x = %v", k, g.LaneX(g.Rows-1, k), g.BucketX(k))
		}
	}
	// before the first peg the lane is the center
	if g.LaneX(-1, 0) != g.CenterX {
		t.Fatalf("lane before row 0 = %v", g.LaneX(-1, 0))
	}
	// one right at row 0 sits half a gap right of center
	if math.Abs(g.LaneX(0, 1)-(g.CenterX+g.Gap/2)) > 1e-9 {
		t.Fatalf("lane(0,1) = %v", g.LaneX(0, 1))
	}
}

func TestSteerPullsTowardTarget(t *testing.T) {
	b := Body{Pos: Vec{X: 0, Y: 5}, Vel: Vec{Y: 7}}
	Steer(&b, 10, 40, 6, 0.1)
	if b.Vel.X <= 0 {
		t.Fatalf("vx = %v, want positive", b.Vel.X)
	}
	if b.Vel.Y != 7 || b.Pos != (Vec{X: 0, Y: 5}) {
		t.Fatalf("steer touched more than vx: %+v", b)
	}

	// at the target with rightward speed, drag slows it down
	b = Body{Pos: Vec{X: 10}, Vel: Vec{X: 5}}
	Steer(&b, 10, 40, 6, 0.1)
	if b.Vel.X >= 5 || b.Vel.X <= 0 {
		t.Fatalf("vx = %v, want damped", b.Vel.X)
	}
}
