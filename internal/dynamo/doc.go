// Package dynamo provides the numerical core for replicator dynamics.
//
// The package integrates dX_i/dt = X_i (f_i(X) - sum_j X_j f_j(X)) while
// keeping X on the probability simplex:
//
//   - [State]: vector of component shares
//   - [FitnessModel]: caller-supplied fitness f(X)
//   - [NoiseProcess]: optional stochastic increment per step
//   - [Sanitize]: clamp-and-renormalize projection onto the simplex
//   - [Solver]: drift, noise, sanitize, record
//   - [Trajectory]: timestamped samples handed to the caller
//
// # Example
//
//	cfg := dynamo.DefaultConfig(3)
//	cfg.Noise = noise.White(0.05)
//	cfg.Seed = 42
//	s, err := dynamo.New(cfg, []float64{0.2, 0.3, 0.5}, fitness.RockPaperScissors(1, 1))
//	traj, err := s.Run(1000)
//
// # Thread Safety
//
// Solver instances are NOT thread-safe, and neither is the noise process
// they own. Independent runs need independent solvers.
package dynamo
