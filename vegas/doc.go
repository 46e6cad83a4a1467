// SPDX-License-Identifier: MIT

// Package vegas implements the adaptive importance-sampling integrator.
//
// A Flow owns a grid.Grid of Bins edges per dimension. Each iteration draws
// one bin-space coordinate per dimension and sample, picks the bin ⌊u·B⌋ and
// the in-bin offset, maps the result into the domain, and weighs it by the
// Jacobian Π w·B·span. The squared contributions (f·J)² are histogrammed per
// bin and the grid is refined so that every bin carries the same share of
// the (damped) histogram mass.
//
// Typical session:
//
//	f, _ := vegas.New(4, 100_000, vegas.DefaultOptions())
//	_ = f.Compile(integrand.Lepage(4, 0.1))
//	_, _ = f.Run(ctx, 5)   // train
//	_ = f.Freeze()
//	res, _ := f.Run(ctx, 5) // estimate
//
// Knobs (Options, zero values select the defaults):
//   - Bins (default 50): grid resolution per dimension.
//   - Alpha (default 1.5): damping exponent of the refiner.
//   - NoAdapt: keep uniform bins; the Flow then samples like plain.Flow.
//   - Compression (default grid.Lepage): how smoothed histograms become weights.
//   - Every montecarlo.Options field (domain, seed, steps, workers, logging).
package vegas
