// SPDX-License-Identifier: MIT

// Package plain implements uniform-sampling Monte Carlo over a hyper-rectangle.
// It shares the montecarlo protocol with vegas but never adapts: every point
// carries the Jacobian Vol(domain), and Freeze only marks the state.
package plain

import (
	"context"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/vegasflow/backend"
	"github.com/katalvlaran/vegasflow/grid"
	"github.com/katalvlaran/vegasflow/integrand"
	"github.com/katalvlaran/vegasflow/montecarlo"
)

// Options configures a Flow.
type Options = montecarlo.Options

// DefaultOptions returns montecarlo.DefaultOptions.
func DefaultOptions() Options { return montecarlo.DefaultOptions() }

// kernel draws uniformly over the domain.
type kernel struct {
	domain grid.Domain
	volume float64
	back   backend.Backend
}

func (k *kernel) Bins() int { return 0 }

func (k *kernel) Draw(r *rand.Rand, b *montecarlo.Batch) error {
	var col = make([]float64, b.Len())
	var d int
	for d = range k.domain.Lower {
		k.back.DrawUniform(r, col)
		floats.Scale(k.domain.Upper[d]-k.domain.Lower[d], col)
		floats.AddConst(k.domain.Lower[d], col)
		b.Points.SetCol(d, col)
	}
	var i int
	for i = range b.Jacobian {
		b.Jacobian[i] = k.volume
	}
	return nil
}

func (k *kernel) Adapt([][]float64) ([]int, error) { return nil, nil }

func (k *kernel) Reset() {}

var _ montecarlo.Kernel = (*kernel)(nil)

// Flow is the uniform integrator.
type Flow struct {
	*montecarlo.Engine
}

var _ montecarlo.Integrator = (*Flow)(nil)

// New builds a Flow.
//
// Errors: every montecarlo.NewEngine error.
func New(dim, calls int, opts Options) (*Flow, error) {
	var e, err = montecarlo.NewEngine(dim, calls, opts, func(s montecarlo.Setup) (montecarlo.Kernel, error) {
		return &kernel{domain: s.Domain, volume: s.Domain.Volume(), back: s.Backend}, nil
	})
	if err != nil {
		return nil, err
	}
	return &Flow{Engine: e}, nil
}

// Integrate builds a Flow over fn's dimensionality, runs it and returns
// the combined Result.
func Integrate(ctx context.Context, fn integrand.Integrand, calls, iterations int, opts Options) (montecarlo.Result, error) {
	if fn == nil {
		return montecarlo.Result{}, integrand.ErrNilIntegrand
	}
	var f, err = New(fn.Dim(), calls, opts)
	if err != nil {
		return montecarlo.Result{}, err
	}
	if err = f.Compile(fn); err != nil {
		return montecarlo.Result{}, err
	}
	return f.Run(ctx, iterations)
}
