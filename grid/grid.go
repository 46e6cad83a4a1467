// SPDX-License-Identifier: MIT

package grid

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/vegasflow/backend"
)

// Grid holds Bins()+1 edges per dimension over the unit interval and maps
// bin-space coordinates into a Domain.
type Grid struct {
	domain  Domain
	bins    int
	edges   [][]float64 // dim × (bins+1)
	widths  [][]float64 // dim × bins, cached edges[k+1]-edges[k]
	back    backend.Backend
	version uint64
}

// New builds a grid of uniform bins over domain. A nil backend selects backend.Default().
//
// Errors: ErrBadDomain, ErrBadBins.
//
// Complexity: O(D·B).
func New(domain Domain, bins int, b backend.Backend) (*Grid, error) {
	if err := domain.Validate(); err != nil {
		return nil, err
	}
	if bins <= 0 {
		return nil, ErrBadBins
	}
	if b == nil {
		b = backend.Default()
	}

	var g = &Grid{
		domain: domain.Clone(),
		bins:   bins,
		edges:  make([][]float64, domain.Dim()),
		widths: make([][]float64, domain.Dim()),
		back:   b,
	}
	var d int
	for d = range g.edges {
		g.edges[d] = make([]float64, bins+1)
		g.widths[d] = make([]float64, bins)
		g.setUniform(d)
	}
	return g, nil
}

// Dim returns the number of dimensions.
func (g *Grid) Dim() int { return len(g.edges) }

// Bins returns the number of bins per dimension.
func (g *Grid) Bins() int { return g.bins }

// Domain returns a copy of the integration domain.
func (g *Grid) Domain() Domain { return g.domain.Clone() }

// Version counts edge changes since construction.
func (g *Grid) Version() uint64 { return g.version }

// Edges returns a copy of dimension d's edge sequence.
func (g *Grid) Edges(d int) []float64 {
	return append([]float64(nil), g.edges[d]...)
}

// AllEdges returns a deep copy of every edge sequence.
func (g *Grid) AllEdges() [][]float64 {
	var out = make([][]float64, len(g.edges))
	var d int
	for d = range g.edges {
		out[d] = g.Edges(d)
	}
	return out
}

// SetEdges replaces all edge sequences after validating each one.
// The grid is left untouched when any sequence is invalid.
//
// Errors: ErrBadEdges.
func (g *Grid) SetEdges(edges [][]float64) error {
	if len(edges) != g.Dim() {
		return ErrBadEdges
	}
	var d int
	for d = range edges {
		if err := validateEdges(edges[d], g.bins); err != nil {
			return err
		}
	}
	for d = range edges {
		copy(g.edges[d], edges[d])
		g.updateWidths(d)
	}
	g.version++
	return nil
}

// Reset restores uniform bins in every dimension.
func (g *Grid) Reset() {
	var d int
	for d = range g.edges {
		g.setUniform(d)
	}
	g.version++
}

// Clone returns an independent copy sharing only the backend.
func (g *Grid) Clone() *Grid {
	var c = &Grid{
		domain:  g.domain.Clone(),
		bins:    g.bins,
		edges:   g.AllEdges(),
		widths:  make([][]float64, len(g.widths)),
		back:    g.back,
		version: g.version,
	}
	var d int
	for d = range g.widths {
		c.widths[d] = append([]float64(nil), g.widths[d]...)
	}
	return c
}

// Map converts bin-space coordinates into domain points.
//
// Inputs (column-major per dimension, N samples):
//   - u[d][i]: bin-space coordinate of sample i in dimension d, in [0,1].
//
// Outputs (overwritten):
//   - x:    N×D domain points.
//   - jac:  per-sample Jacobian Π_d w·B·(upper−lower).
//   - bins: bins[d][i] is the bin sample i occupies in dimension d.
//
// Behavior highlights:
//   - u = 0 maps to Lower and u = 1 maps to Upper exactly.
//   - Any u in [0,1] is valid regardless of how narrow bins have become.
//
// Errors: ErrBatchShape.
//
// Complexity: O(N·D) time, O(N) scratch.
func (g *Grid) Map(u [][]float64, x *mat.Dense, jac []float64, bins [][]int) error {
	var n = len(jac)
	if len(u) != g.Dim() || len(bins) != g.Dim() || x == nil {
		return ErrBatchShape
	}
	if r, c := x.Dims(); r != n || c != g.Dim() {
		return ErrBatchShape
	}

	// Stage 1: reset the Jacobian.
	var i int
	for i = range jac {
		jac[i] = 1
	}

	// Stage 2: per dimension, index → gather → interpolate → scale.
	var (
		nb    = float64(g.bins)
		frac  = make([]float64, n)
		lo    = make([]float64, n)
		width = make([]float64, n)
		rest  = make([]float64, n)
		d     int
	)
	for d = range g.edges {
		if len(u[d]) != n || len(bins[d]) != n {
			return ErrBatchShape
		}
		locate(u[d], g.bins, bins[d], frac)
		g.back.Gather(lo, g.edges[d], bins[d])
		g.back.Gather(width, g.widths[d], bins[d])

		// frac ← lo + frac·width : position in the unit interval.
		floats.Mul(frac, width)
		floats.Add(frac, lo)

		// rest ← 1 − t ; lo ← lower·rest + upper·t
		floats.ScaleTo(rest, -1, frac)
		floats.AddConst(1, rest)
		floats.ScaleTo(lo, g.domain.Upper[d], frac)
		floats.AddScaled(lo, g.domain.Lower[d], rest)
		x.SetCol(d, lo)

		floats.Mul(jac, width)
		floats.Scale(nb*(g.domain.Upper[d]-g.domain.Lower[d]), jac)
	}
	return nil
}

// locate writes k = ⌊u·B⌋ (clamped to [0,B−1]) and the in-bin fraction u·B − k.
func locate(u []float64, bins int, idx []int, frac []float64) {
	var (
		nb = float64(bins)
		i  int
		t  float64
		k  int
	)
	for i = range u {
		t = u[i] * nb
		k = int(t)
		if k >= bins {
			k = bins - 1
		} else if k < 0 {
			k = 0
		}
		idx[i] = k
		frac[i] = t - float64(k)
	}
}

// setUniform writes equally spaced edges; both ends are pinned exactly.
func (g *Grid) setUniform(d int) {
	floats.Span(g.edges[d], 0, 1)
	g.edges[d][0], g.edges[d][g.bins] = 0, 1
	g.updateWidths(d)
}

func (g *Grid) updateWidths(d int) {
	floats.SubTo(g.widths[d], g.edges[d][1:], g.edges[d][:g.bins])
}

// validateEdges checks length, pinned ends and strict monotonicity.
func validateEdges(e []float64, bins int) error {
	if len(e) != bins+1 || e[0] != 0 || e[bins] != 1 {
		return ErrBadEdges
	}
	var k int
	for k = 1; k <= bins; k++ {
		if isNonFinite(e[k]) || !(e[k] > e[k-1]) {
			return ErrBadEdges
		}
	}
	return nil
}
