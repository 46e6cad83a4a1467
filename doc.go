// SPDX-License-Identifier: MIT

// Package vegasflow is a batch-vectorized Monte Carlo integration toolkit:
// an adaptive VEGAS integrator and a uniform-sampling baseline sharing one
// protocol (construct → compile → run → freeze → run).
//
// 🚀 What is inside?
//
//	rng/        — deterministic, derivable random streams (one per iteration step)
//	backend/    — vector kernels (DrawUniform, Gather, SegmentSum) and a CPU implementation
//	grid/       — Domain, the adaptive bin Grid, its Map and Refine operations
//	integrand/  — batch integrand contract, Evaluator, stock test functions
//	montecarlo/ — batches, Accumulator, Aggregate, the iteration Engine and its errors
//	vegas/      — adaptive importance sampling (Flow, Sample, NewSampler, Integrate)
//	plain/      — uniform sampling (Flow, Integrate)
//	cmd/vegasflow — command-line driver with YAML config, reports and plots
//
// ✨ Guarantees
//
//   - Determinism: same seed ⇒ same estimate, for any number of workers.
//   - All-or-nothing iterations: a failing integrand never half-updates state.
//   - Frozen grids are byte-identical across runs.
//
// Quick start:
//
//	res, err := vegas.Integrate(ctx, integrand.Lepage(4, 0.1), 100_000, 10, vegas.DefaultOptions())
package vegasflow
