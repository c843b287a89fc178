// Package noise provides the stochastic perturbations applied to replicator
// trajectories.
//
// A [Kind] names a variant and carries its parameters:
//
//   - none: no perturbation, no random draws
//   - white: sigma * sqrt(dt) * xi
//   - proportional: sigma * nu_i * sqrt(dt) * xi
//   - demographic: sigma * sqrt(nu_i) * sqrt(dt) * xi
//   - ou: Ornstein-Uhlenbeck colored noise, integrated over the step
//
// A [Process] binds a Kind to an explicitly seeded random source. Two
// processes built from the same Kind and seed produce bit-identical
// increments for the same sequence of calls.
//
// # Thread Safety
//
// A Process is NOT safe for concurrent use. Give every trajectory its own.
package noise
