// SPDX-License-Identifier: MIT

package montecarlo

import (
	"math"
	"time"
)

// IterationResult is the outcome of one completed iteration.
type IterationResult struct {
	Estimate float64
	Error    float64
	Calls    int
}

// exactTolerance is the relative error below which an iteration is exact:
// smaller errors are beneath the float64 resolution of the estimate itself.
const exactTolerance = 1e-14

// Exact reports whether the iteration observed no variance beyond rounding.
func (r IterationResult) Exact() bool {
	return r.Error <= exactTolerance*math.Abs(r.Estimate)
}

// Record is one History entry.
type Record struct {
	// Iteration is zero-based and counts iterations since the last Reset.
	Iteration int
	IterationResult
	// Frozen reports whether the sampling density was frozen for this iteration.
	Frozen   bool
	Duration time.Duration
}

// Result is the combined estimate over every accumulated iteration.
type Result struct {
	Estimate float64
	Error    float64
	// Chi2 is χ² per degree of freedom across iterations (0 with fewer than two).
	Chi2       float64
	Iterations int
}

// Aggregate combines iteration results by inverse-variance weighting.
//
// Zero-variance policy:
//   - An exact iteration (see IterationResult.Exact) carries no usable weight.
//     While every iteration so far is exact the combined estimate is their
//     plain mean with error 0. As soon as one noisy iteration exists, exact
//     ones are dropped and only the noisy iterations are combined, so an early
//     iteration that saw nothing (0 ± 0) cannot mask later ones.
//
// The combined result does not depend on the order of Add calls beyond
// floating-point rounding.
type Aggregate struct {
	n int

	noisy []IterationResult
	sumW  float64 // Σ 1/σ²
	sumWE float64 // Σ I/σ²

	exact    int
	exactSum float64
}

// Combine folds rs into a fresh Aggregate.
func Combine(rs ...IterationResult) Aggregate {
	var a Aggregate
	var i int
	for i = range rs {
		a.Add(rs[i])
	}
	return a
}

// Add folds one iteration result in.
func (a *Aggregate) Add(r IterationResult) {
	a.n++
	if r.Exact() {
		a.exact++
		a.exactSum += r.Estimate
		return
	}
	var w = 1 / (r.Error * r.Error)
	a.noisy = append(a.noisy, r)
	a.sumW += w
	a.sumWE += w * r.Estimate
}

// Iterations returns the number of folded results.
func (a Aggregate) Iterations() int { return a.n }

// Estimate returns the combined estimate (0 when empty).
func (a Aggregate) Estimate() float64 {
	switch {
	case len(a.noisy) > 0:
		return a.sumWE / a.sumW
	case a.exact > 0:
		return a.exactSum / float64(a.exact)
	}
	return 0
}

// Error returns the combined standard error (0 when empty or all exact).
func (a Aggregate) Error() float64 {
	if len(a.noisy) == 0 {
		return 0
	}
	return math.Sqrt(1 / a.sumW)
}

// Chi2 returns χ²/dof of the noisy iterations around the combined estimate.
// Deviations are taken from the weighted mean directly, so the statistic
// stays accurate when estimate/error is large.
func (a Aggregate) Chi2() float64 {
	if len(a.noisy) < 2 {
		return 0
	}
	var (
		mean = a.Estimate()
		chi2 float64
		z    float64
	)
	for _, r := range a.noisy {
		z = (r.Estimate - mean) / r.Error
		chi2 += z * z
	}
	return chi2 / float64(len(a.noisy)-1)
}

// Result snapshots the combined values.
func (a Aggregate) Result() Result {
	return Result{
		Estimate:   a.Estimate(),
		Error:      a.Error(),
		Chi2:       a.Chi2(),
		Iterations: a.n,
	}
}
