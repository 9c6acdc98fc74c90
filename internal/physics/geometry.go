package physics

import "math"

// Geometry is the fixed layout of one board. Row r has r+3 pegs.
type Geometry struct {
	Rows         int     `json:"rows"`
	Gap          float64 `json:"gap"`
	StartY       float64 `json:"start_y"`
	CenterX      float64 `json:"center_x"`
	PegRadius    float64 `json:"peg_radius"`
	BallRadius   float64 `json:"ball_radius"`
	BucketY      float64 `json:"bucket_y"`
	BucketHeight float64 `json:"bucket_height"`
	SpawnY       float64 `json:"spawn_y"`
}

const bucketHeight = 24

func NewGeometry(rows int, t Tuning) Geometry {
	return Geometry{
		Rows:         rows,
		Gap:          t.Gap,
		StartY:       t.StartY,
		CenterX:      0,
		PegRadius:    math.Max(2, t.Gap*0.12),
		BallRadius:   t.Gap * 0.22,
		BucketY:      t.StartY + float64(rows)*t.Gap + 25,
		BucketHeight: bucketHeight,
		SpawnY:       t.SpawnY,
	}
}

func (g Geometry) PegCount(row int) int { return row + 3 }

// Peg returns the center of peg i in row.
func (g Geometry) Peg(row, i int) Vec {
	n := g.PegCount(row)
	return Vec{
		X: g.CenterX + (float64(i)-float64(n-1)/2)*g.Gap,
		Y: g.StartY + float64(row)*g.Gap,
	}
}

// EstimatedRow is the fractional row index at height y.
func (g Geometry) EstimatedRow(y float64) float64 {
	return (y - g.StartY) / g.Gap
}

// CaptureLine is the y past which a ball counts as in a bucket.
func (g Geometry) CaptureLine() float64 {
	return g.BucketY - g.BucketHeight*0.5
}

func (g Geometry) BucketCount() int { return g.Rows + 1 }

// BucketX is the horizontal center of bucket i.
func (g Geometry) BucketX(i int) float64 {
	return g.CenterX + (float64(i)-float64(g.BucketCount()-1)/2)*g.Gap
}

// NearestBucket maps an x position to the closest bucket, clamped to the board.
func (g Geometry) NearestBucket(x float64) int {
	n := g.BucketCount()
	raw := math.Round((x-g.CenterX)/g.Gap + float64(n-1)/2)
	if math.IsNaN(raw) {
		return (n - 1) / 2
	}
	i := int(math.Max(0, math.Min(raw, float64(n-1))))
	return i
}

// LaneX is where a ball that took rights Right turns over the first row+1
// rows should be horizontally. After the last row this is the bucket center.
func (g Geometry) LaneX(row, rights int) float64 {
	return g.CenterX + (float64(rights)-float64(row+1)/2)*g.Gap
}
