// SPDX-License-Identifier: MIT

package vegas

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"

	"github.com/katalvlaran/vegasflow/backend"
	"github.com/katalvlaran/vegasflow/grid"
	"github.com/katalvlaran/vegasflow/integrand"
	"github.com/katalvlaran/vegasflow/montecarlo"
)

const (
	// DefaultBins is the grid resolution per dimension.
	DefaultBins = 50

	// DefaultAlpha is the refiner damping exponent.
	DefaultAlpha = 1.5
)

var (
	// ErrUnknownCompression indicates a Compression outside {grid.Lepage, grid.Power}.
	ErrUnknownCompression = errors.New("vegas: unknown compression")

	// ErrInvalidSampleSize indicates Sample(n) with n <= 0.
	ErrInvalidSampleSize = errors.New("vegas: sample size must be > 0")
)

// Options configures a Flow.
type Options struct {
	montecarlo.Options

	// Bins per dimension; 0 selects DefaultBins.
	Bins int

	// Alpha is the damping exponent; 0 selects DefaultAlpha.
	Alpha float64

	// Compression selects the histogram compression rule.
	Compression grid.Compression

	// NoAdapt keeps the bins uniform for the whole lifetime of the Flow.
	NoAdapt bool
}

// DefaultOptions returns montecarlo.DefaultOptions with the VEGAS defaults.
func DefaultOptions() Options {
	return Options{
		Options:     montecarlo.DefaultOptions(),
		Bins:        DefaultBins,
		Alpha:       DefaultAlpha,
		Compression: grid.Lepage,
	}
}

func (o Options) validate() (Options, error) {
	if o.Bins < 0 {
		return o, grid.ErrBadBins
	}
	if o.Bins == 0 {
		o.Bins = DefaultBins
	}
	if !(o.Alpha >= 0) || math.IsInf(o.Alpha, 1) {
		return o, grid.ErrBadAlpha
	}
	if o.Alpha == 0 {
		o.Alpha = DefaultAlpha
	}
	switch o.Compression {
	case grid.Lepage, grid.Power:
	default:
		return o, ErrUnknownCompression
	}
	return o, nil
}

// kernel adapts a grid.Grid to montecarlo.Kernel.
type kernel struct {
	grid    *grid.Grid
	back    backend.Backend
	alpha   float64
	comp    grid.Compression
	noAdapt bool
}

func (k *kernel) Bins() int { return k.grid.Bins() }

func (k *kernel) Draw(r *rand.Rand, b *montecarlo.Batch) error {
	var u = make([][]float64, k.grid.Dim())
	var d int
	for d = range u {
		u[d] = make([]float64, b.Len())
		k.back.DrawUniform(r, u[d])
	}
	return k.grid.Map(u, b.Points, b.Jacobian, b.Bins)
}

func (k *kernel) Adapt(hist [][]float64) ([]int, error) {
	if k.noAdapt {
		return nil, nil
	}
	return k.grid.Refine(hist, k.alpha, k.comp)
}

func (k *kernel) Reset() { k.grid.Reset() }

var _ montecarlo.Kernel = (*kernel)(nil)

// Flow is the adaptive integrator. The embedded Engine provides Compile,
// Run, Freeze, Reset, SetSeed, Result, History and State.
type Flow struct {
	*montecarlo.Engine
	k *kernel
}

var _ montecarlo.Integrator = (*Flow)(nil)

// New builds a Flow with uniform bins.
//
// Errors: every montecarlo.NewEngine error, grid.ErrBadBins, grid.ErrBadAlpha,
// ErrUnknownCompression.
func New(dim, calls int, opts Options) (*Flow, error) {
	var err error
	if opts, err = opts.validate(); err != nil {
		return nil, err
	}
	var f = &Flow{}
	f.Engine, err = montecarlo.NewEngine(dim, calls, opts.Options, func(s montecarlo.Setup) (montecarlo.Kernel, error) {
		var g, gerr = grid.New(s.Domain, opts.Bins, s.Backend)
		if gerr != nil {
			return nil, gerr
		}
		f.k = &kernel{grid: g, back: s.Backend, alpha: opts.Alpha, comp: opts.Compression, noAdapt: opts.NoAdapt}
		return f.k, nil
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Bins returns the grid resolution per dimension.
func (f *Flow) Bins() int { return f.k.grid.Bins() }

// Alpha returns the damping exponent.
func (f *Flow) Alpha() float64 { return f.k.alpha }

// Adaptive reports whether the grid is refined between iterations.
func (f *Flow) Adaptive() bool { return !f.k.noAdapt }

// Compression returns the histogram compression rule.
func (f *Flow) Compression() grid.Compression { return f.k.comp }

// Grid returns a snapshot of the current grid.
func (f *Flow) Grid() *grid.Grid { return f.k.grid.Clone() }

// Edges returns a deep copy of every edge sequence.
func (f *Flow) Edges() [][]float64 { return f.k.grid.AllEdges() }

// Sample draws n points from the current grid without evaluating anything.
// Weight is normalised to an n-call integration: Σ f(xᵢ)·Weightᵢ estimates
// the integral of f. Every call consumes a fresh auxiliary stream.
//
// Errors: ErrInvalidSampleSize.
func (f *Flow) Sample(n int) (*montecarlo.Batch, error) {
	if n <= 0 {
		return nil, ErrInvalidSampleSize
	}
	var b = montecarlo.NewBatch(n, f.Dim(), true)
	if err := f.k.Draw(f.NextStream(), b); err != nil {
		return nil, err
	}
	var i int
	for i = range b.Weight {
		b.Weight[i] = b.Jacobian[i] / float64(n)
	}
	return b, nil
}

// NewSampler trains a Flow on fn for the given iterations, freezes it and
// returns it ready for Sample.
func NewSampler(ctx context.Context, fn integrand.Integrand, calls, iterations int, opts Options) (*Flow, error) {
	if fn == nil {
		return nil, integrand.ErrNilIntegrand
	}
	var f, err = New(fn.Dim(), calls, opts)
	if err != nil {
		return nil, err
	}
	if err = f.Compile(fn); err != nil {
		return nil, err
	}
	if _, err = f.Run(ctx, iterations); err != nil {
		return nil, err
	}
	if err = f.Freeze(); err != nil {
		return nil, err
	}
	return f, nil
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
