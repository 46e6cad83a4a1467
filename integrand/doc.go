// SPDX-License-Identifier: MIT

// Package integrand defines the contract between the integrators and the
// user-supplied function, plus the Evaluator adapter that enforces it.
//
// The contract:
//   - An Integrand declares its input dimensionality via Dim().
//   - Evaluate receives an N×D batch of domain points and returns N values.
//     It must be pure: identical batches give identical values, and no state
//     observable by the integrator changes.
//   - Integrands built with NewWeighted also receive the per-point weight
//     jacobian/n_calls, useful for filling caller-side histograms.
//
// The Evaluator turns contract violations (wrong value count, NaN/±Inf, a
// panic inside the integrand) into sentinel errors so the integrator can fail
// the iteration without touching its accumulated state.
//
// Stock integrands (Constant, Lepage, SumSquares) are provided for tests,
// benchmarks and the command-line driver.
package integrand
