// SPDX-License-Identifier: MIT

package montecarlo

import (
	"errors"
	"fmt"
)

// bindingError is a sentinel that also matches ErrBinding.
type bindingError struct{ msg string }

func (e *bindingError) Error() string        { return e.msg }
func (e *bindingError) Is(target error) bool { return target == ErrBinding }

var (
	// ErrBinding is the umbrella for every binding failure:
	// errors.Is(ErrNotCompiled, ErrBinding) and errors.Is(ErrDimensionMismatch, ErrBinding) hold.
	ErrBinding = errors.New("montecarlo: binding error")

	// ErrNotCompiled is returned by Run before an integrand was compiled.
	ErrNotCompiled error = &bindingError{"montecarlo: integrand not compiled"}

	// ErrDimensionMismatch is returned by Compile when the integrand declares a
	// different dimensionality than the integrator.
	ErrDimensionMismatch error = &bindingError{"montecarlo: integrand dimension mismatch"}

	// ErrEvaluation is matched by every *EvaluationError.
	ErrEvaluation = errors.New("montecarlo: evaluation error")

	// ErrInvalidDimension indicates dim <= 0.
	ErrInvalidDimension = errors.New("montecarlo: dimension must be > 0")

	// ErrInvalidCalls indicates fewer than two calls per iteration; one call
	// cannot produce a variance.
	ErrInvalidCalls = errors.New("montecarlo: calls per iteration must be >= 2")

	// ErrInvalidIterations indicates a non-positive iteration count.
	ErrInvalidIterations = errors.New("montecarlo: iterations must be > 0")

	// ErrInvalidEventsLimit indicates a negative EventsLimit.
	ErrInvalidEventsLimit = errors.New("montecarlo: events limit must be >= 0")

	// ErrInvalidWorkers indicates a negative Workers count.
	ErrInvalidWorkers = errors.New("montecarlo: workers must be >= 0")

	// ErrFreezeBeforeRun indicates Freeze was called before the first Run.
	ErrFreezeBeforeRun = errors.New("montecarlo: freeze requires a prior run")

	// ErrRunInProgress indicates a re-entrant Run (e.g. from inside an integrand).
	ErrRunInProgress = errors.New("montecarlo: run already in progress")

	// ErrNilKernel indicates a kernel builder returned no kernel.
	ErrNilKernel = errors.New("montecarlo: nil kernel")
)

// EvaluationError reports a failed integrand call. The iteration it belongs
// to was discarded.
type EvaluationError struct {
	// Iteration is the zero-based index of the failed iteration over the
	// integrator's lifetime since the last Reset.
	Iteration int

	// Step is the index of the failing step inside the iteration.
	Step int

	// Err is the cause reported by the integrand.Evaluator.
	Err error
}

// Error implements error.
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("montecarlo: evaluation failed at iteration %d step %d: %v", e.Iteration, e.Step, e.Err)
}

// Unwrap exposes the cause to errors.Is / errors.As.
func (e *EvaluationError) Unwrap() error { return e.Err }

// Is matches ErrEvaluation.
func (e *EvaluationError) Is(target error) bool { return target == ErrEvaluation }
