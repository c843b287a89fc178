package analysis

import (
	"math"

	"github.com/san-kum/replisim/internal/dynamo"
)

// TimeAverage returns the time-weighted mean state of traj (trapezoid rule).
// For interior orbits of a linear replicator system it approaches the
// interior equilibrium.
func TimeAverage(traj *dynamo.Trajectory) dynamo.State {
	if traj == nil || traj.Len() == 0 {
		return nil
	}
	if traj.Len() == 1 {
		return traj.Samples[0].State.Clone()
	}

	avg := make(dynamo.State, traj.Dim())
	span := 0.0
	for k := 1; k < traj.Len(); k++ {
		a, b := traj.Samples[k-1], traj.Samples[k]
		h := b.Time - a.Time
		for i := range avg {
			avg[i] += h * (a.State[i] + b.State[i]) / 2
		}
		span += h
	}
	if span <= 0 {
		return traj.Samples[traj.Len()-1].State.Clone()
	}
	for i := range avg {
		avg[i] /= span
	}
	return avg
}

// Settled reports whether the last window samples of traj all lie within
// tol (max-norm) of the final sample.
func Settled(traj *dynamo.Trajectory, window int, tol float64) bool {
	if traj == nil || traj.Len() == 0 || window < 1 || traj.Len() < window {
		return false
	}
	last := traj.Samples[traj.Len()-1].State
	for _, sample := range traj.Samples[traj.Len()-window:] {
		for i := range last {
			if math.Abs(sample.State[i]-last[i]) > tol {
				return false
			}
		}
	}
	return true
}

// Survivors returns the components with a positive share in the final sample.
func Survivors(traj *dynamo.Trajectory) []int {
	last, ok := traj.Final()
	if !ok {
		return nil
	}
	var alive []int
	for i, v := range last.State {
		if v > 0 {
			alive = append(alive, i)
		}
	}
	return alive
}
