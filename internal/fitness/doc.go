// Package fitness provides fitness models for replicator dynamics.
//
// Each model implements [dynamo.FitnessModel], mapping a state on the
// simplex to one fitness value per component:
//
//   - [Constant]: frequency-independent fitness
//   - [Linear]: f = g + V x, growth vector plus interaction matrix
//   - [HawkDove], [RockPaperScissors], [PrisonersDilemma], [Coordination]:
//     classic two-player games as payoff matrices
//   - [Random]: seeded random interactions for exploratory runs
//
// # Example
//
//	fit := fitness.RockPaperScissors(1, 1)
//	s, _ := dynamo.New(dynamo.DefaultConfig(fit.Dim()), fit.DefaultState(), fit)
package fitness
