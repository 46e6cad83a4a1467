// SPDX-License-Identifier: MIT

package montecarlo

import "gonum.org/v1/gonum/mat"

// Batch is one step's worth of samples. A Kernel fills Points, Jacobian and
// (when it adapts) Bins; the Engine fills Weight.
type Batch struct {
	// Points holds one domain point per row (N×D).
	Points *mat.Dense

	// Jacobian is the per-point importance weight 1/p(x), volume included.
	Jacobian []float64

	// Weight is Jacobian/calls, the share of the iteration estimate carried
	// by each point. It is handed to weighted integrands.
	Weight []float64

	// Bins is column-major: Bins[d][i] is the bin of point i in dimension d.
	// Nil for kernels that do not adapt.
	Bins [][]int
}

// NewBatch allocates a batch of n points in dim dimensions. withBins also
// allocates the bin index columns.
func NewBatch(n, dim int, withBins bool) *Batch {
	var b = &Batch{
		Points:   mat.NewDense(n, dim, nil),
		Jacobian: make([]float64, n),
		Weight:   make([]float64, n),
	}
	if withBins {
		b.Bins = make([][]int, dim)
		var d int
		for d = range b.Bins {
			b.Bins[d] = make([]int, n)
		}
	}
	return b
}

// Len returns the number of points.
func (b *Batch) Len() int { return len(b.Jacobian) }
