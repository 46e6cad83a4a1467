// SPDX-License-Identifier: MIT

package montecarlo

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/vegasflow/backend"
)

// Moments are the running count, mean and sum of squared deviations of the
// per-point contributions f(x)·J(x).
type Moments struct {
	N    int
	Mean float64
	M2   float64
}

// NewMoments summarizes c with a two-pass compensated mean/variance.
func NewMoments(c []float64) Moments {
	var n = len(c)
	switch n {
	case 0:
		return Moments{}
	case 1:
		return Moments{N: 1, Mean: c[0]}
	}
	var mean, variance = stat.MeanVariance(c, nil)
	return Moments{N: n, Mean: mean, M2: variance * float64(n-1)}
}

// Merge combines two disjoint sample sets (Chan, Golub & LeVeque pairwise update).
func (m Moments) Merge(o Moments) Moments {
	switch {
	case o.N == 0:
		return m
	case m.N == 0:
		return o
	}
	var (
		n     = m.N + o.N
		delta = o.Mean - m.Mean
		fa    = float64(m.N)
		fb    = float64(o.N)
		fn    = float64(n)
	)
	return Moments{
		N:    n,
		Mean: m.Mean + delta*fb/fn,
		M2:   m.M2 + o.M2 + delta*delta*fa*fb/fn,
	}
}

// Variance returns the unbiased sample variance (0 for fewer than two samples).
func (m Moments) Variance() float64 {
	if m.N < 2 {
		return 0
	}
	return math.Max(m.M2, 0) / float64(m.N-1)
}

// VarianceOfMean returns Variance()/N.
func (m Moments) VarianceOfMean() float64 {
	if m.N == 0 {
		return 0
	}
	return m.Variance() / float64(m.N)
}

// Partial is the reduction of one step: its Moments and, for adapting
// kernels, the per-dimension histogram of (f·J)².
type Partial struct {
	Moments   Moments
	Histogram [][]float64
}

// Reduce turns one evaluated batch into a Partial. bins may be nil, in which
// case no histogram is built.
//
// Complexity: O(N·D).
func Reduce(b backend.Backend, values, jac []float64, bins [][]int, nbins int) Partial {
	var c = make([]float64, len(values))
	floats.MulTo(c, values, jac)

	var p = Partial{Moments: NewMoments(c)}
	if bins == nil || nbins <= 0 {
		return p
	}

	floats.Mul(c, c)
	p.Histogram = make([][]float64, len(bins))
	var d int
	for d = range bins {
		p.Histogram[d] = make([]float64, nbins)
		b.SegmentSum(p.Histogram[d], bins[d], c)
	}
	return p
}

// mergePartials folds parts in slice order. A nil histogram stays nil.
func mergePartials(parts []Partial) Partial {
	var out Partial
	var i, d int
	for i = range parts {
		out.Moments = out.Moments.Merge(parts[i].Moments)
		if parts[i].Histogram == nil {
			continue
		}
		if out.Histogram == nil {
			out.Histogram = make([][]float64, len(parts[i].Histogram))
			for d = range out.Histogram {
				out.Histogram[d] = append([]float64(nil), parts[i].Histogram[d]...)
			}
			continue
		}
		for d = range out.Histogram {
			floats.Add(out.Histogram[d], parts[i].Histogram[d])
		}
	}
	return out
}
