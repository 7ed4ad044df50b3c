// Package sim provides the core episode-simulation engine for inference
// request routing.
//
// # Reading Guide
//
// Start with these three files to understand the engine:
//   - tier.go: the service tier model and its stochastic outcome sampling
//   - traffic.go: the time-of-day-modulated request generator
//   - simulator.go: episode state, the Reset/Step loop, and termination
//
// # Architecture
//
// The sim package owns the dynamics; supporting concerns live in
// sub-packages:
//   - sim/policy/: baseline routing policies for rollouts and evaluation
//   - sim/trace/: rollout step recording and summary statistics
//
// Determinism is a first-class property: all randomness flows through a
// PartitionedRNG (rng.go) keyed by the episode seed, with a fixed draw order
// per operation, so a fixed seed yields a byte-identical trajectory.
package sim
