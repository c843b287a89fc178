// Package analysis characterizes replicator trajectories.
//
//   - [LyapunovExponent]: largest Lyapunov exponent of the deterministic flow
//   - [TimeAverage]: time-weighted mean state of a trajectory
//   - [Settled]: whether a trajectory has come to rest
//   - [Survivors]: components alive at the end of a trajectory
//
// # Chaos Detection
//
// A positive largest Lyapunov exponent indicates chaotic dynamics:
//
//	sys := dynamo.Replicator(model, dim)
//	lambda, err := analysis.LyapunovExponent(sys, integrators.NewRK4(), x0, 0.01, 10000, 1e-8, 1e-9)
//	if lambda > 0 {
//	    // System is chaotic
//	}
package analysis
