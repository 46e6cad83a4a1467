// SPDX-License-Identifier: MIT

// Package grid implements the importance-sampling grid of the adaptive
// integrator: a per-dimension partition of the unit interval into a fixed
// number of bins whose edges move between iterations.
//
// 🚀 What does the grid do?
//
//	A point u ∈ [0,1)^D in bin-space selects, per dimension, the bin
//	k = ⌊u·B⌋ and a position inside it. Map turns that into a domain point
//	by interpolating between the bin's edges and scaling to the Domain:
//
//	  x   = lo_k + (u·B − k)·w_k      (unit interval)
//	  x'  = lower·(1−x) + upper·x     (domain, exact at both bounds)
//	  jac = Π_d w_k·B·(upper−lower)
//
//	Narrow bins therefore receive the same number of samples as wide ones
//	and the Jacobian corrects for the higher density.
//
// ✨ Refinement (Lepage 1978):
//  1. Smooth each histogram with a 3-point moving average.
//  2. Compress with a damping exponent alpha (Lepage or Power rule).
//  3. Walk the old bins accumulating weight; emit a new edge each time the
//     running weight crosses a multiple of total/B.
//  4. A dimension that cannot produce B strictly increasing bins falls back to
//     uniform edges (ErrDegenerateGrid is reported, never returned as fatal).
//
// Invariants:
//   - Bins() never changes for the grid's lifetime; only edge positions do.
//   - Every edge sequence starts at exactly 0, ends at exactly 1 and is strictly increasing.
//   - Version() increases by one every time edges change.
//
// A Grid is NOT goroutine-safe; it is owned by exactly one integrator.
package grid
