// SPDX-License-Identifier: MIT

package grid

import "errors"

// Sentinel errors. Every message is prefixed with "grid: ..." so it can be
// grepped in logs; callers match them with errors.Is.
var (
	// ErrBadDomain is returned when a bound pair is not finite or lower >= upper,
	// or when the two bound slices differ in length or are empty.
	ErrBadDomain = errors.New("grid: invalid domain")

	// ErrBadBins indicates a non-positive bin count.
	ErrBadBins = errors.New("grid: bins must be > 0")

	// ErrBadAlpha indicates a negative or non-finite damping exponent.
	ErrBadAlpha = errors.New("grid: alpha must be finite and >= 0")

	// ErrHistogramShape indicates a histogram that is not Dim()×Bins().
	ErrHistogramShape = errors.New("grid: histogram shape mismatch")

	// ErrBadEdges indicates an edge sequence that is not 0 … 1 strictly increasing
	// with Bins()+1 entries.
	ErrBadEdges = errors.New("grid: invalid edge sequence")

	// ErrDegenerateGrid marks a dimension whose redistribution could not produce
	// Bins() strictly increasing bins. Refine recovers from it with uniform edges.
	ErrDegenerateGrid = errors.New("grid: degenerate redistribution")

	// ErrBatchShape indicates Map buffers that disagree with the grid or each other.
	ErrBatchShape = errors.New("grid: batch shape mismatch")
)
