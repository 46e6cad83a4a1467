// SPDX-License-Identifier: MIT

package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/vegasflow/backend"
	"github.com/katalvlaran/vegasflow/grid"
	"github.com/katalvlaran/vegasflow/integrand"
	"github.com/katalvlaran/vegasflow/rng"
)

// auxStream separates auxiliary draws (e.g. Sample) from iteration streams.
const auxStream = 0x5a4d504c45

// State is the lifecycle phase of an Engine.
type State int

const (
	// StateUncompiled: constructed, no integrand bound.
	StateUncompiled State = iota
	// StateCompiled: integrand bound, no iteration accumulated yet.
	StateCompiled
	// StateRunning: Run is in flight.
	StateRunning
	// StateFrozen: the sampling density no longer adapts.
	StateFrozen
	// StateDone: at least one iteration accumulated, still adapting.
	StateDone
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUncompiled:
		return "uncompiled"
	case StateCompiled:
		return "compiled"
	case StateRunning:
		return "running"
	case StateFrozen:
		return "frozen"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Setup is what a KernelBuilder receives from NewEngine.
type Setup struct {
	Dim     int
	Calls   int
	Domain  grid.Domain
	Backend backend.Backend
}

// Kernel is the sampling density an Engine draws from.
type Kernel interface {
	// Bins is the histogram width per dimension; 0 for kernels that never adapt.
	Bins() int

	// Draw fills b.Points, b.Jacobian and, when Bins() > 0, b.Bins using r only.
	// It must not mutate the kernel: steps call it concurrently.
	Draw(r *rand.Rand, b *Batch) error

	// Adapt updates the density from the merged histogram of one iteration and
	// returns the dimensions that had to fall back to a uniform density.
	// On error the kernel is unchanged.
	Adapt(hist [][]float64) (degenerate []int, err error)

	// Reset restores the initial density.
	Reset()
}

// KernelBuilder creates the Kernel of a new Engine.
type KernelBuilder func(Setup) (Kernel, error)

// Engine is the Iteration Controller shared by every integrator in this module.
type Engine struct {
	dim    int
	calls  int
	opts   Options
	kernel Kernel
	eval   *integrand.Evaluator

	agg     Aggregate
	history []Record

	started   bool
	frozen    bool
	running   atomic.Bool
	iteration int    // completed iterations since Reset
	stream    int    // stream coordinate, rewound by SetSeed
	aux       uint64 // auxiliary draws since Reset/SetSeed
}

// NewEngine validates the configuration and builds the kernel.
//
// Errors: ErrInvalidDimension, ErrInvalidCalls, ErrInvalidEventsLimit,
// ErrInvalidWorkers, grid.ErrBadDomain, ErrNilKernel, or the builder's error.
func NewEngine(dim, calls int, opts Options, build KernelBuilder) (*Engine, error) {
	if dim <= 0 {
		return nil, ErrInvalidDimension
	}
	if calls < 2 {
		return nil, ErrInvalidCalls
	}
	var err error
	if opts, err = opts.resolve(dim); err != nil {
		return nil, err
	}
	if build == nil {
		return nil, ErrNilKernel
	}

	var k Kernel
	if k, err = build(Setup{Dim: dim, Calls: calls, Domain: opts.Domain.Clone(), Backend: opts.Backend}); err != nil {
		return nil, err
	}
	if k == nil {
		return nil, ErrNilKernel
	}
	return &Engine{dim: dim, calls: calls, opts: opts, kernel: k}, nil
}

// Dim returns the dimensionality.
func (e *Engine) Dim() int { return e.dim }

// Calls returns the number of integrand calls per iteration.
func (e *Engine) Calls() int { return e.calls }

// Domain returns a copy of the integration domain.
func (e *Engine) Domain() grid.Domain { return e.opts.Domain.Clone() }

// Seed returns the active seed.
func (e *Engine) Seed() uint64 { return e.opts.Seed }

// Logger returns the configured sink.
func (e *Engine) Logger() Logger { return e.opts.Logger }

// Kernel returns the sampling density.
func (e *Engine) Kernel() Kernel { return e.kernel }

// Compile binds f. Rebinding keeps the Aggregate and the kernel state.
//
// Errors: ErrDimensionMismatch, ErrBinding (nil integrand), ErrRunInProgress.
func (e *Engine) Compile(f integrand.Integrand) error {
	if e.running.Load() {
		return ErrRunInProgress
	}
	var ev, err = integrand.NewEvaluator(f, e.dim)
	switch {
	case errors.Is(err, integrand.ErrDimensionMismatch):
		return fmt.Errorf("%w: %w", ErrDimensionMismatch, err)
	case err != nil:
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}
	e.eval = ev
	return nil
}

// Run executes iterations sequentially and returns the combined Result over
// every iteration accumulated since the last Reset.
//
// ctx is checked before each iteration; an iteration that has started always
// completes or fails as a unit. On error the returned Result describes the
// iterations accumulated before the failure.
//
// Errors: ErrNotCompiled, ErrInvalidIterations, ErrRunInProgress,
// *EvaluationError, or ctx.Err() wrapped.
func (e *Engine) Run(ctx context.Context, iterations int) (Result, error) {
	if !e.running.CompareAndSwap(false, true) {
		return Result{}, ErrRunInProgress
	}
	defer e.running.Store(false)

	if e.eval == nil {
		return e.agg.Result(), ErrNotCompiled
	}
	if iterations <= 0 {
		return e.agg.Result(), ErrInvalidIterations
	}
	e.started = true

	var i int
	for i = 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return e.agg.Result(), fmt.Errorf("montecarlo: stopped after %d of %d iterations: %w", i, iterations, err)
		}
		if err := e.iterate(); err != nil {
			return e.agg.Result(), err
		}
	}

	var res = e.agg.Result()
	e.report(" > Final results: %g +/- %g", res.Estimate, res.Error)
	return res, nil
}

// iterate runs one all-or-nothing iteration.
func (e *Engine) iterate() error {
	var (
		start = time.Now()
		steps = splitCalls(e.calls, e.opts.EventsLimit)
		parts = make([]Partial, len(steps))
		g     errgroup.Group
	)
	g.SetLimit(e.opts.Workers)
	e.opts.Logger.Debugf("iteration %d: %d calls in %d steps on %d workers", e.iteration, e.calls, len(steps), e.opts.Workers)
	for s := range steps {
		g.Go(func() error {
			var p, err = e.step(s, steps[s])
			parts[s] = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var merged = mergePartials(parts)
	var res = IterationResult{
		Estimate: merged.Moments.Mean,
		Error:    math.Sqrt(merged.Moments.VarianceOfMean()),
		Calls:    e.calls,
	}

	if !e.frozen && e.kernel.Bins() > 0 {
		var deg, err = e.kernel.Adapt(merged.Histogram)
		if err != nil {
			return fmt.Errorf("montecarlo: adapt after iteration %d: %w", e.iteration, err)
		}
		if len(deg) > 0 {
			e.opts.Logger.Warnf("iteration %d: degenerate histogram in dimensions %v, bins reset to uniform", e.iteration, deg)
		}
	}

	var took = time.Since(start)
	e.agg.Add(res)
	e.history = append(e.history, Record{
		Iteration:       e.iteration,
		IterationResult: res,
		Frozen:          e.frozen,
		Duration:        took,
	})
	e.report("Result for iteration %d: %s +/- %s (took %.5f s)",
		e.iteration, formatValue(res.Estimate), formatValue(res.Error), took.Seconds())
	e.iteration++
	e.stream++
	return nil
}

// step draws, evaluates and reduces one slice of the iteration.
func (e *Engine) step(s, n int) (Partial, error) {
	var (
		nbins = e.kernel.Bins()
		b     = NewBatch(n, e.dim, nbins > 0)
		r     = rng.Derive(e.opts.Seed, e.stream, s)
	)
	if err := e.kernel.Draw(r, b); err != nil {
		return Partial{}, fmt.Errorf("montecarlo: draw at iteration %d step %d: %w", e.iteration, s, err)
	}
	floats.ScaleTo(b.Weight, 1/float64(e.calls), b.Jacobian)

	var vals, err = e.eval.Evaluate(b.Points, b.Weight)
	if err != nil {
		return Partial{}, &EvaluationError{Iteration: e.iteration, Step: s, Err: err}
	}
	return Reduce(e.opts.Backend, vals, b.Jacobian, b.Bins, nbins), nil
}

// Freeze stops kernel adaptation. Idempotent.
//
// Errors: ErrFreezeBeforeRun, ErrRunInProgress.
func (e *Engine) Freeze() error {
	if e.running.Load() {
		return ErrRunInProgress
	}
	if !e.started {
		return ErrFreezeBeforeRun
	}
	if !e.frozen {
		e.frozen = true
		e.opts.Logger.Infof("sampling density frozen after %d iterations", e.iteration)
	}
	return nil
}

// Frozen reports whether adaptation is disabled.
func (e *Engine) Frozen() bool { return e.frozen }

// Reset restores the initial kernel density, clears the Aggregate, History
// and Frozen flag, and rewinds every random stream. The integrand stays bound.
func (e *Engine) Reset() {
	e.kernel.Reset()
	e.agg = Aggregate{}
	e.history = nil
	e.started = false
	e.frozen = false
	e.iteration = 0
	e.stream = 0
	e.aux = 0
}

// SetSeed replaces the seed and rewinds the random streams; accumulated
// results are kept. seed == 0 selects DefaultSeed.
func (e *Engine) SetSeed(seed uint64) {
	if seed == 0 {
		seed = DefaultSeed
	}
	e.opts.Seed = seed
	e.stream = 0
	e.aux = 0
}

// NextStream returns a fresh generator for draws outside the iteration loop.
func (e *Engine) NextStream() *rand.Rand {
	var r = rng.Derive(rng.Mix(e.opts.Seed, auxStream), int(e.aux), 0)
	e.aux++
	return r
}

// Result returns the combined estimate so far.
func (e *Engine) Result() Result { return e.agg.Result() }

// History returns a copy of the per-iteration records since the last Reset.
func (e *Engine) History() []Record {
	return append([]Record(nil), e.history...)
}

// State reports the lifecycle phase.
func (e *Engine) State() State {
	switch {
	case e.running.Load():
		return StateRunning
	case e.eval == nil:
		return StateUncompiled
	case e.frozen:
		return StateFrozen
	case e.agg.Iterations() > 0:
		return StateDone
	default:
		return StateCompiled
	}
}

// report logs at Info when Verbose, at Debug otherwise.
func (e *Engine) report(format string, args ...any) {
	if e.opts.Verbose {
		e.opts.Logger.Infof(format, args...)
		return
	}
	e.opts.Logger.Debugf(format, args...)
}

// splitCalls cuts calls into steps of at most limit points; limit == 0 means one step.
func splitCalls(calls, limit int) []int {
	if limit <= 0 || limit >= calls {
		return []int{calls}
	}
	var steps = make([]int, 0, (calls+limit-1)/limit)
	for calls > 0 {
		var n = min(limit, calls)
		steps = append(steps, n)
		calls -= n
	}
	return steps
}

// formatValue prints small values in scientific notation.
func formatValue(v float64) string {
	if v < 0.1 {
		return fmt.Sprintf("%.3e", v)
	}
	return fmt.Sprintf("%.4f", v)
}
