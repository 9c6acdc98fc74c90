package plinko

import (
	"math"
	"testing"
)

func TestBinomialProbabilitySumsToOne(t *testing.T) {
	for rows := MinRows; rows <= MaxRows; rows++ {
		var sum float64
		for i := 0; i <= rows; i++ {
			sum += BinomialProbability(i, rows)
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("rows=%d sum=%f", rows, sum)
		}
	}
	if p := BinomialProbability(4, 8); math.Abs(p-70.0/256) > 1e-12 {
		t.Fatalf("C(8,4)/256 = %f", p)
	}
}

func TestAnalyze(t *testing.T) {
	a, err := Analyze(BoardConfig{Rows: 16, Risk: RiskHigh}, DefaultProfiles()[RiskHigh])
	if err != nil {
		t.Fatal(err)
	}
	if a.HouseEdge <= 0 || len(a.Probabilities) != 17 {
		t.Fatalf("unexpected analysis %+v", a)
	}
}

func TestCalcStats(t *testing.T) {
	st := calcStats([]float64{1, 2, 3, 4, 5})
	if st.Mean != 3 || st.Var != 2 || st.P50 != 3 {
		t.Fatalf("stats=%+v", st)
	}
	if st.P90 < 4.5 || st.P90 > 4.7 {
		t.Fatalf("p90=%f", st.P90)
	}
	if empty := calcStats(nil); empty.Mean != 0 || empty.Samples != nil {
		t.Fatalf("empty samples should give zero stats")
	}
}
