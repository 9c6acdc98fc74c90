package plinko

import (
	"errors"
	"testing"
)

func TestPlanPathLandsOnTarget(t *testing.T) {
	rng := NewSeededRNG(2024)
	for rows := MinRows; rows <= MaxRows; rows++ {
		for target := 0; target <= rows; target++ {
			for k := 0; k < 1000; k++ {
				p, err := PlanPath(target, rows, rng)
				if err != nil {
					t.Fatal(err)
				}
				if len(p) != rows {
					t.Fatalf("len=%d want %d", len(p), rows)
				}
				if p.Rights() != target {
					t.Fatalf("rows=%d target=%d: rights=%d", rows, target, p.Rights())
				}
				if got := p.Landing(); got != target {
					t.Fatalf("rows=%d target=%d: landing=%d", rows, target, got)
				}
			}
		}
	}
}

func TestPlanPathShuffles(t *testing.T) {
	rng := NewSeededRNG(1)
	seen := map[string]bool{}
	for k := 0; k < 200; k++ {
		p, _ := PlanPath(4, 8, rng)
		key := ""
		for _, d := range p {
			key += d.String()[:1]
		}
		seen[key] = true
	}
	// C(8,4) = 70 orders exist
	if len(seen) < 20 {
		t.Fatalf("only %d distinct orders in 200 shuffles", len(seen))
	}
}

func TestPlanPathRejectsBadTarget(t *testing.T) {
	for _, tc := range [][2]int{{-1, 8}, {9, 8}, {0, 0}} {
		if _, err := PlanPath(tc[0], tc[1], nil); !errors.Is(err, ErrInvalidTarget) {
			t.Fatalf("target=%d rows=%d: want ErrInvalidTarget, got %v", tc[0], tc[1], err)
		}
	}
}

func TestPathAt(t *testing.T) {
	p := Path{Left, Right}
	if p.At(-3) != Left || p.At(1) != Right || p.At(10) != Right {
		t.Fatalf("At clamps to the path bounds")
	}
	if (Path{}).At(0) != Left {
		t.Fatalf("empty path defaults to Left")
	}
}

func TestLandingWalksLanes(t *testing.T) {
	cases := []struct {
		name string
		path Path
		want int
	}{
		{name: "AllLeft", path: Path{Left, Left, Left, Left}, want: 0},
		{name: "AllRight", path: Path{Right, Right, Right, Right}, want: 4},
		{name: "Zigzag", path: Path{Right, Left, Right, Left}, want: 2},
		{name: "LateRights", path: Path{Left, Left, Left, Right, Right}, want: 2},
		{name: "Odd", path: Path{Right, Right, Left}, want: 2},
		{name: "Empty", path: Path{}, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.path.Landing(); got != tc.want {
				t.Fatalf("landing=%d, want %d", got, tc.want)
			}
		})
	}
}
