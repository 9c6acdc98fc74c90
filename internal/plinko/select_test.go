package plinko

import (
	"math"
	"testing"
)

type fixedRNG float64

func (f fixedRNG) Float64() float64 { return float64(f) }

func TestSelectorApproximatesDesign(t *testing.T) {
	const n = 100000
	for _, risk := range []Risk{RiskLow, RiskMedium} {
		tab, err := BuildTable(BoardConfig{Rows: 16, Risk: risk}, DefaultProfiles()[risk])
		if err != nil {
			t.Fatal(err)
		}
		rng := NewSeededRNG(42)
		counts := make([]int, len(tab))
		for i := 0; i < n; i++ {
			counts[SelectBucket(tab, rng)]++
		}
		for i, p := range Probabilities(tab) {
			if p <= 0 {
				t.Fatalf("%s: bucket %d has zero probability", risk, i)
			}
			// small buckets are too noisy at this sample size for a 5% bound
			if p < 0.05 {
				continue
			}
			freq := float64(counts[i]) / n
			if rel := math.Abs(freq-p) / p; rel > 0.05 {
				t.Fatalf("%s: bucket %d freq=%f designed=%f (rel err %.3f)", risk, i, freq, p, rel)
			}
		}
	}
}

func TestSelectBucketEnds(t *testing.T) {
	tab := Table{3, 1, 0, 1, 3}
	if got := SelectBucket(tab, fixedRNG(0)); got != 0 {
		t.Fatalf("draw 0 should pick first bucket, got %d", got)
	}
	if got := SelectBucket(tab, fixedRNG(0.9999999)); got != 4 {
		t.Fatalf("draw ~1 should pick last bucket, got %d", got)
	}
	if got := SelectBucket(tab, fixedRNG(1)); got != 4 {
		t.Fatalf("draw 1 must stay in range, got %d", got)
	}
	if got := SelectBucket(nil, fixedRNG(0.5)); got != -1 {
		t.Fatalf("empty table should give -1, got %d", got)
	}
}

func TestZeroMultiplierUsesEpsilon(t *testing.T) {
	w := Weights(Table{0, 1})
	if w[0] != 1/Epsilon || w[1] != 1 {
		t.Fatalf("weights=%v", w)
	}
}

func TestSimulateSelectorMatchesRTP(t *testing.T) {
	tab, _ := BuildTable(BoardConfig{Rows: 16, Risk: RiskMedium}, DefaultProfiles()[RiskMedium])
	st, err := SimulateSelector(tab, 100000, NewSeededRNG(7))
	if err != nil {
		t.Fatal(err)
	}
	want := SelectorRTP(tab)
	if math.Abs(st.Mean-want)/want > 0.03 {
		t.Fatalf("simulated mean=%f designed rtp=%f", st.Mean, want)
	}
}
