package plinko

import "math"

// Epsilon is the floor used for inverse weighting so zero multipliers stay finite.
const Epsilon = 0.01

// Weights returns the unnormalized inverse-payout weights.
func Weights(t Table) []float64 {
	w := make([]float64, len(t))
	for i, m := range t {
		w[i] = 1 / math.Max(m, Epsilon)
	}
	return w
}

// Probabilities returns the designed selection probability per bucket.
func Probabilities(t Table) []float64 {
	w := Weights(t)
	var sum float64
	for _, v := range w {
		sum += v
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

// SelectBucket picks the target bucket by cumulative-weight roulette.
// Runs in O(n) with a single uniform draw; returns -1 for an empty table.
func SelectBucket(t Table, rng RandomSource) int {
	if len(t) == 0 {
		return -1
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	w := Weights(t)
	var total float64
	for _, v := range w {
		total += v
	}

	r := rng.Float64() * total
	var acc float64
	for i, v := range w {
		acc += v
		if r < acc {
			return i
		}
	}
	// float accumulation can leave r == total
	return len(t) - 1
}
