package plinko

import "math"

// BinomialProbability is the chance an unguided ball lands in bucket i:
// C(rows, i) / 2^rows.
func BinomialProbability(i, rows int) float64 {
	if i < 0 || i > rows || rows < 0 {
		return 0
	}
	// log space keeps C(n, k) finite for any board we allow
	lg := func(n int) float64 {
		v, _ := math.Lgamma(float64(n + 1))
		return v
	}
	return math.Exp(lg(rows) - lg(i) - lg(rows-i) - float64(rows)*math.Ln2)
}

// BinomialEV is the expected payout multiple if balls fell freely.
func BinomialEV(t Table) float64 {
	rows := len(t) - 1
	var ev float64
	for i, m := range t {
		ev += BinomialProbability(i, rows) * m
	}
	return ev
}

// SelectorRTP is the expected payout multiple under inverse-payout selection,
// which is what a live drop actually returns.
func SelectorRTP(t Table) float64 {
	var rtp float64
	for i, p := range Probabilities(t) {
		rtp += p * t[i]
	}
	return rtp
}

// Analysis summarizes one board.
type Analysis struct {
	Rows          int       `json:"rows"`
	Risk          Risk      `json:"risk"`
	Table         Table     `json:"table"`
	Probabilities []float64 `json:"probabilities"`
	BinomialEV    float64   `json:"binomial_ev"`
	SelectorRTP   float64   `json:"selector_rtp"`
	HouseEdge     float64   `json:"house_edge"`
}

func Analyze(cfg BoardConfig, p Profile) (Analysis, error) {
	t, err := BuildTable(cfg, p)
	if err != nil {
		return Analysis{}, err
	}
	rtp := SelectorRTP(t)
	return Analysis{
		Rows:          cfg.Rows,
		Risk:          cfg.Risk,
		Table:         t,
		Probabilities: Probabilities(t),
		BinomialEV:    BinomialEV(t),
		SelectorRTP:   rtp,
		HouseEdge:     1 - rtp,
	}, nil
}
