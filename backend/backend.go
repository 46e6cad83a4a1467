// SPDX-License-Identifier: MIT

// Package backend defines the batch-kernel capability the integrators are
// written against, plus a CPU implementation over flat float64 slices.
//
// The integrators never loop over samples for sampling or reduction logic
// themselves; every per-sample operation is one of three kernels:
//
//	DrawUniform — fill a buffer with uniform variates in [Cut, 1−Cut)
//	Gather      — dst[i] = table[idx[i]]
//	SegmentSum  — dst[idx[i]] += vals[i]
//
// Any array library able to express these three kernels can replace CPU.
//
// Panics:
//   - Length mismatches between buffers are programmer errors and panic with a
//     stable message; user-facing validation happens in the callers.
package backend

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// DefaultCut keeps uniform draws strictly inside the unit interval, away from
// the grid boundaries where bin lookup would otherwise need special cases.
const DefaultCut = 1e-8

const (
	panicGatherLen  = "backend: Gather: dst and idx lengths differ"
	panicSegmentLen = "backend: SegmentSum: idx and vals lengths differ"
)

// Backend is the vectorized kernel set used by samplers and accumulators.
// Implementations must be deterministic for a given *rand.Rand state.
type Backend interface {
	// DrawUniform fills dst with independent uniform variates in [cut, 1−cut).
	DrawUniform(r *rand.Rand, dst []float64)

	// Gather writes table[idx[i]] into dst[i] for every i.
	Gather(dst, table []float64, idx []int)

	// SegmentSum adds vals[i] into dst[idx[i]] for every i.
	SegmentSum(dst []float64, idx []int, vals []float64)
}

// CPU is the default Backend. The zero value uses DefaultCut.
type CPU struct {
	// Cut overrides DefaultCut when positive.
	Cut float64
}

// Default returns the CPU backend with default settings.
func Default() Backend { return CPU{} }

func (c CPU) cut() float64 {
	if c.Cut > 0 && c.Cut < 0.5 {
		return c.Cut
	}
	return DefaultCut
}

// DrawUniform draws [0,1) variates and affinely squeezes them into [cut, 1−cut).
func (c CPU) DrawUniform(r *rand.Rand, dst []float64) {
	var i int
	for i = range dst {
		dst[i] = r.Float64()
	}
	var cut = c.cut()
	floats.Scale(1-2*cut, dst)
	floats.AddConst(cut, dst)
}

// Gather implements Backend.
func (CPU) Gather(dst, table []float64, idx []int) {
	if len(dst) != len(idx) {
		panic(panicGatherLen)
	}
	var i, k int
	for i, k = range idx {
		dst[i] = table[k]
	}
}

// SegmentSum implements Backend.
func (CPU) SegmentSum(dst []float64, idx []int, vals []float64) {
	if len(idx) != len(vals) {
		panic(panicSegmentLen)
	}
	var i, k int
	for i, k = range idx {
		dst[k] += vals[i]
	}
}

var _ Backend = CPU{}
