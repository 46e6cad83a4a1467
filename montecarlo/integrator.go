// SPDX-License-Identifier: MIT

package montecarlo

import (
	"context"

	"github.com/katalvlaran/vegasflow/integrand"
)

// Integrator is the protocol shared by vegas.Flow and plain.Flow.
type Integrator interface {
	Dim() int
	Calls() int
	Compile(f integrand.Integrand) error
	Run(ctx context.Context, iterations int) (Result, error)
	Freeze() error
	Reset()
	SetSeed(seed uint64)
	Result() Result
	History() []Record
	State() State
}

var _ Integrator = (*Engine)(nil)
