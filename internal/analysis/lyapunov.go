package analysis

import (
	"math"

	"github.com/san-kum/replisim/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent of the
// deterministic flow sys started at x0, using two trajectories that are
// renormalized to separation d0 after every step (Benettin). Both are
// sanitized with cutoff, so the estimate refers to the flow on the simplex.
// A positive value indicates chaos, zero neutral cycles, negative an
// attracting equilibrium.
//
// The initial perturbation moves d0 of mass between the two largest
// components. Fewer than two surviving components give 0.
func LyapunovExponent(
	sys dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt float64,
	steps int,
	d0, cutoff float64,
) (float64, error) {
	x, err := dynamo.Sanitized(x0, cutoff)
	if err != nil {
		return 0, err
	}
	i, j := twoLargest(x)
	if j < 0 || steps <= 0 || d0 <= 0 {
		return 0, nil
	}
	d0 = math.Min(d0, x[i]/2)

	xp := x.Clone()
	xp[i] -= d0
	xp[j] += d0
	sep0 := distance(x, xp)

	t := 0.0
	sumLog := 0.0
	count := 0

	for k := 1; k <= steps; k++ {
		x = integ.Step(sys, x, t, dt)
		xp = integ.Step(sys, xp, t, dt)
		t = float64(k) * dt

		if err := dynamo.Sanitize(x, cutoff); err != nil {
			return 0, err
		}
		if err := dynamo.Sanitize(xp, cutoff); err != nil {
			return 0, err
		}

		sep := distance(x, xp)
		if sep == 0 {
			// collapsed onto the same state, nothing left to measure
			break
		}
		sumLog += math.Log(sep / sep0)
		count++

		scale := sep0 / sep
		for n := range xp {
			xp[n] = x[n] + (xp[n]-x[n])*scale
		}
	}

	if count == 0 {
		return 0, nil
	}
	return sumLog / (float64(count) * dt), nil
}

func twoLargest(x dynamo.State) (int, int) {
	first, second := -1, -1
	for n, v := range x {
		if v <= 0 {
			continue
		}
		switch {
		case first < 0 || v > x[first]:
			first, second = n, first
		case second < 0 || v > x[second]:
			second = n
		}
	}
	return first, second
}

func distance(a, b dynamo.State) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
