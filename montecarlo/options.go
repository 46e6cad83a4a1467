// SPDX-License-Identifier: MIT

package montecarlo

import (
	"github.com/katalvlaran/vegasflow/backend"
	"github.com/katalvlaran/vegasflow/grid"
	"github.com/katalvlaran/vegasflow/rng"
)

// Defaults - single source of truth for DefaultOptions.
const (
	// DefaultEventsLimit bounds the points held in memory by one step.
	DefaultEventsLimit = 1_000_000

	// DefaultWorkers evaluates steps sequentially.
	DefaultWorkers = 1

	// DefaultSeed is the seed used when Options.Seed is zero.
	DefaultSeed = rng.DefaultSeed
)

// Logger is the printf-style sink used for iteration reports.
// *logrus.Logger and *logrus.Entry satisfy it.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}

// Options configures an Engine.
//
// Zero-value policy:
//   - Domain with no dimensions ⇒ unit hyper-cube.
//   - Seed == 0 ⇒ DefaultSeed.
//   - EventsLimit == 0 ⇒ one step per iteration.
//   - Workers == 0 ⇒ sequential.
//   - Logger == nil ⇒ silent.
//   - Backend == nil ⇒ backend.Default().
type Options struct {
	// Domain is the integration hyper-rectangle.
	Domain grid.Domain

	// Seed drives every random stream of the integrator.
	Seed uint64

	// EventsLimit is the maximum number of points per step.
	EventsLimit int

	// Workers bounds the number of steps evaluated concurrently.
	Workers int

	// Logger receives iteration reports and refinement warnings.
	Logger Logger

	// Verbose promotes per-iteration reports from Debug to Info.
	Verbose bool

	// Backend provides the vector kernels.
	Backend backend.Backend
}

// DefaultOptions returns production defaults over the unit hyper-cube.
func DefaultOptions() Options {
	return Options{
		Seed:        DefaultSeed,
		EventsLimit: DefaultEventsLimit,
		Workers:     DefaultWorkers,
	}
}

// resolve validates o against dim and fills zero values.
func (o Options) resolve(dim int) (Options, error) {
	if o.EventsLimit < 0 {
		return o, ErrInvalidEventsLimit
	}
	if o.Workers < 0 {
		return o, ErrInvalidWorkers
	}
	if o.Domain.Dim() == 0 && len(o.Domain.Upper) == 0 {
		o.Domain = grid.UnitDomain(dim)
	}
	if err := o.Domain.Validate(); err != nil {
		return o, err
	}
	if o.Domain.Dim() != dim {
		return o, grid.ErrBadDomain
	}
	o.Domain = o.Domain.Clone()
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = nopLogger{}
	}
	if o.Backend == nil {
		o.Backend = backend.Default()
	}
	return o, nil
}
