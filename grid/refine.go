// SPDX-License-Identifier: MIT

package grid

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Compression selects how smoothed histogram values become redistribution weights.
type Compression int

const (
	// Lepage normalises the smoothed values to r = s/Σs and uses
	// ((1−r)/ln(1/r))^alpha. The normalised r is floored at smoothFloor, so
	// empty bins still attract a small share of the new edges while the
	// weights depend only on the shape of the histogram, never on its scale.
	Lepage Compression = iota

	// Power uses s^alpha directly.
	Power
)

// smoothFloor keeps Lepage weights finite for empty bins (applies to r = s/Σs).
const smoothFloor = 1e-30

// String implements fmt.Stringer.
func (c Compression) String() string {
	switch c {
	case Lepage:
		return "lepage"
	case Power:
		return "power"
	default:
		return "unknown"
	}
}

// Refine moves the edges of every dimension according to hist, the per-bin
// contribution histogram of the last iteration (hist[d][k] ≥ 0).
//
// Implementation:
//   - Stage 1: validate alpha and the histogram shape.
//   - Stage 2: per dimension: Smooth → compress → redistribute.
//   - Stage 3: dimensions whose histogram is empty, non-finite, or whose
//     redistribution is degenerate fall back to uniform edges.
//
// Returns the dimensions that fell back (nil when none did). alpha == 0 leaves
// the grid untouched.
//
// Errors: ErrBadAlpha, ErrHistogramShape (grid unchanged on error).
//
// Complexity: O(D·B).
func (g *Grid) Refine(hist [][]float64, alpha float64, c Compression) ([]int, error) {
	// Stage 1: validation before any mutation.
	if isNonFinite(alpha) || alpha < 0 {
		return nil, ErrBadAlpha
	}
	if len(hist) != g.Dim() {
		return nil, ErrHistogramShape
	}
	var d int
	for d = range hist {
		if len(hist[d]) != g.bins {
			return nil, ErrHistogramShape
		}
	}
	if alpha == 0 || g.bins == 1 {
		return nil, nil
	}

	// Stage 2: compute all new edge sequences.
	var (
		degenerate []int
		next       = make([][]float64, g.Dim())
		err        error
	)
	for d = range hist {
		next[d], err = refineDim(g.edges[d], g.widths[d], hist[d], alpha, c)
		if err != nil {
			degenerate = append(degenerate, d)
			next[d] = nil
		}
	}

	// Stage 3: commit.
	for d = range next {
		if next[d] == nil {
			g.setUniform(d)
			continue
		}
		copy(g.edges[d], next[d])
		g.updateWidths(d)
	}
	g.version++
	return degenerate, nil
}

// refineDim produces the new edges of one dimension or ErrDegenerateGrid.
func refineDim(edges, widths, h []float64, alpha float64, c Compression) ([]float64, error) {
	var total = floats.Sum(h)
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, ErrDegenerateGrid
	}
	var w = compress(Smooth(h), alpha, c)
	return redistribute(edges, widths, w)
}

// Smooth returns the 3-point moving average of h: interior bins use
// (left+centre+right)/3, the two edge bins use their one-sided pair average.
//
// Complexity: O(B).
func Smooth(h []float64) []float64 {
	var n = len(h)
	var s = make([]float64, n)
	if n == 0 {
		return s
	}
	if n == 1 {
		s[0] = h[0]
		return s
	}
	s[0] = (h[0] + h[1]) / 2
	s[n-1] = (h[n-2] + h[n-1]) / 2
	var k int
	for k = 1; k < n-1; k++ {
		s[k] = (h[k-1] + h[k] + h[k+1]) / 3
	}
	return s
}

// compress maps smoothed values to redistribution weights in place.
func compress(s []float64, alpha float64, c Compression) []float64 {
	var k int
	var sum = floats.Sum(s)
	switch c {
	case Power:
		for k = range s {
			s[k] = math.Pow(s[k]/sum, alpha)
		}
	default:
		var r float64
		for k = range s {
			r = math.Max(s[k]/sum, smoothFloor)
			if r >= 1 {
				s[k] = 1
				continue
			}
			s[k] = math.Pow((1-r)/-math.Log(r), alpha)
		}
	}
	return s
}

// redistribute walks the old bins accumulating weight and emits edge k where
// the running weight reaches k·Σw/B, interpolating linearly inside the old bin.
// Zero-weight bins are crossed without emitting, so they can never stall the walk.
//
// Errors: ErrDegenerateGrid when the weights are unusable or the emitted
// sequence is not strictly increasing.
func redistribute(edges, widths, w []float64) ([]float64, error) {
	var n = len(w)
	var total = floats.Sum(w)
	if !(total > 0) || math.IsInf(total, 0) || math.IsNaN(total) {
		return nil, ErrDegenerateGrid
	}

	var (
		ave    = total / float64(n)
		out    = make([]float64, n+1)
		acc    float64
		target float64
		j      int
		k      int
	)
	out[n] = 1
	for k = 1; k < n; k++ {
		target = ave * float64(k)
		for j < n && acc+w[j] < target {
			acc += w[j]
			j++
		}
		if j == n || !(w[j] > 0) {
			return nil, ErrDegenerateGrid
		}
		out[k] = edges[j] + (target-acc)/w[j]*widths[j]
	}
	if err := validateEdges(out, n); err != nil {
		return nil, ErrDegenerateGrid
	}
	return out, nil
}
