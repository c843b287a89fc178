package dynamo

import "math"

// Sanitize projects x onto the simplex in place.
//
// Every component that is non-finite, non-positive or below cutoff is set to
// exactly 0, then the remainder is divided by its sum. If renormalizing drops
// a survivor below cutoff the clamp is repeated, so sanitizing the result
// again moves no component by more than Tolerance and extinguishes none.
// Shares of any finite magnitude are accepted. A state whose sum is exactly
// 1 is left untouched. Returns
// ErrDegenerateState when nothing survives; x is then all zeros.
func Sanitize(x State, cutoff float64) error {
	if cutoff < 0 || math.IsNaN(cutoff) {
		cutoff = 0
	}

	// each pass removes at least one component or returns
	for pass := 0; pass <= len(x); pass++ {
		sum, peak := 0.0, 0.0
		for i, v := range x {
			if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 || v < cutoff {
				x[i] = 0
				continue
			}
			sum += v
			peak = max(peak, v)
		}
		if sum == 0 {
			return ErrDegenerateState
		}
		if math.IsInf(sum, 1) {
			// finite survivors whose sum overflows; rescale so it lies in [1, len(x)]
			sum = 0
			for i := range x {
				x[i] /= peak
				sum += x[i]
			}
		}

		if sum != 1 {
			inv := 1 / sum
			for i := range x {
				x[i] *= inv
			}
		}

		if !belowCutoff(x, cutoff) {
			return nil
		}
	}
	return nil
}

// Sanitized is the copying form of Sanitize.
func Sanitized(x []float64, cutoff float64) (State, error) {
	s := make(State, len(x))
	copy(s, x)
	if err := Sanitize(s, cutoff); err != nil {
		return nil, err
	}
	return s, nil
}

func belowCutoff(x State, cutoff float64) bool {
	for _, v := range x {
		if v > 0 && v < cutoff {
			return true
		}
	}
	return false
}
