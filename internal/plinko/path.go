package plinko

import "fmt"

type Direction uint8

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	if d == Right {
		return "right"
	}
	return "left"
}

// Sign is +1 for Right and -1 for Left.
func (d Direction) Sign() float64 {
	if d == Right {
		return 1
	}
	return -1
}

// Path is the branch decision taken at each peg row.
type Path []Direction

// PlanPath builds exactly target Rights and rows-target Lefts and shuffles them.
// Any order lands on target, so the route is random while the bucket is fixed.
func PlanPath(target, rows int, rng RandomSource) (Path, error) {
	if rows <= 0 || target < 0 || target > rows {
		return nil, fmt.Errorf("%w: %d for %d rows", ErrInvalidTarget, target, rows)
	}
	if rng == nil {
		rng = DefaultRNG()
	}

	p := make(Path, rows)
	for i := 0; i < target; i++ {
		p[i] = Right
	}
	// Fisher-Yates
	for i := rows - 1; i > 0; i-- {
		j := intn(rng, i+1)
		p[i], p[j] = p[j], p[i]
	}
	return p, nil
}

func (p Path) Rights() int {
	n := 0
	for _, d := range p {
		if d == Right {
			n++
		}
	}
	return n
}

// Landing walks the ball down the board. Each row shifts it half a gap left
// or right, and the final offset from the center names the bucket.
func (p Path) Landing() int {
	offset := 0 // half gaps right of center
	for _, d := range p {
		offset += int(d.Sign())
	}
	return (len(p) + offset) / 2
}

// At returns the decision for a row; rows past the end keep the last one.
func (p Path) At(row int) Direction {
	if len(p) == 0 {
		return Left
	}
	if row < 0 {
		row = 0
	}
	if row >= len(p) {
		row = len(p) - 1
	}
	return p[row]
}

// RightsThrough counts Right decisions in rows 0..row inclusive.
func (p Path) RightsThrough(row int) int {
	n := 0
	for i := 0; i <= row && i < len(p); i++ {
		if p[i] == Right {
			n++
		}
	}
	return n
}
