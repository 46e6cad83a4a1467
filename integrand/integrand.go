// SPDX-License-Identifier: MIT

package integrand

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNilIntegrand indicates a nil Integrand or nil function.
	ErrNilIntegrand = errors.New("integrand: nil integrand")

	// ErrDimensionMismatch indicates that the declared input dimensionality
	// differs from the integrator's.
	ErrDimensionMismatch = errors.New("integrand: dimension mismatch")

	// ErrShape indicates a value batch whose length differs from the point count.
	ErrShape = errors.New("integrand: malformed value batch")

	// ErrNonFinite indicates a NaN or ±Inf value in the returned batch.
	ErrNonFinite = errors.New("integrand: NaN or Inf value")

	// ErrPanic indicates the integrand panicked; the panic value is in the message.
	ErrPanic = errors.New("integrand: panic during evaluation")
)

// Integrand is a batch-vectorized function over domain points.
type Integrand interface {
	// Dim returns the declared input dimensionality.
	Dim() int

	// Evaluate returns one value per row of x. weight is parallel to the rows
	// and may be ignored.
	Evaluate(x *mat.Dense, weight []float64) ([]float64, error)
}

// Func is a batch integrand that ignores weights.
type Func func(x *mat.Dense) ([]float64, error)

// WeightedFunc is a batch integrand that also receives per-point weights.
type WeightedFunc func(x *mat.Dense, weight []float64) ([]float64, error)

type funcIntegrand struct {
	dim int
	f   WeightedFunc
}

func (f funcIntegrand) Dim() int { return f.dim }

func (f funcIntegrand) Evaluate(x *mat.Dense, weight []float64) ([]float64, error) {
	return f.f(x, weight)
}

// New wraps a batch function with a declared dimensionality.
func New(dim int, f Func) Integrand {
	if f == nil {
		return nil
	}
	return funcIntegrand{dim: dim, f: func(x *mat.Dense, _ []float64) ([]float64, error) { return f(x) }}
}

// NewWeighted wraps a batch function that consumes weights.
func NewWeighted(dim int, f WeightedFunc) Integrand {
	if f == nil {
		return nil
	}
	return funcIntegrand{dim: dim, f: f}
}

// Pointwise lifts a scalar function of one point to a batch integrand.
// The row slice passed to f aliases the batch and must not be retained.
func Pointwise(dim int, f func(x []float64) float64) Integrand {
	if f == nil {
		return nil
	}
	return New(dim, func(x *mat.Dense) ([]float64, error) {
		var n, _ = x.Dims()
		var out = make([]float64, n)
		var i int
		for i = 0; i < n; i++ {
			out[i] = f(x.RawRowView(i))
		}
		return out, nil
	})
}

// Evaluator validates and invokes one bound Integrand.
// It is safe for concurrent use when the Integrand is pure.
type Evaluator struct {
	f   Integrand
	dim int
}

// NewEvaluator binds f to an integrator of dimensionality dim.
//
// Errors: ErrNilIntegrand, ErrDimensionMismatch.
func NewEvaluator(f Integrand, dim int) (*Evaluator, error) {
	if f == nil {
		return nil, ErrNilIntegrand
	}
	if f.Dim() != dim {
		return nil, fmt.Errorf("%w: declared %d, integrator %d", ErrDimensionMismatch, f.Dim(), dim)
	}
	return &Evaluator{f: f, dim: dim}, nil
}

// Dim returns the bound dimensionality.
func (e *Evaluator) Dim() int { return e.dim }

// Evaluate calls the integrand on x and validates the returned batch.
//
// Errors: ErrShape, ErrNonFinite, ErrPanic, or the integrand's own error.
func (e *Evaluator) Evaluate(x *mat.Dense, weight []float64) (values []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			values = nil
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	var n, _ = x.Dims()
	values, err = e.f.Evaluate(x, weight)
	if err != nil {
		return nil, err
	}
	if len(values) != n {
		return nil, fmt.Errorf("%w: got %d values for %d points", ErrShape, len(values), n)
	}
	var i int
	for i = range values {
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			return nil, fmt.Errorf("%w: at point %d", ErrNonFinite, i)
		}
	}
	return values, nil
}
