// SPDX-License-Identifier: MIT

package grid

import "math"

// Domain is an axis-aligned hyper-rectangle [Lower[i], Upper[i]] per dimension.
type Domain struct {
	Lower []float64
	Upper []float64
}

// UnitDomain returns [0,1]^dim.
func UnitDomain(dim int) Domain {
	var d = Domain{Lower: make([]float64, dim), Upper: make([]float64, dim)}
	var i int
	for i = 0; i < dim; i++ {
		d.Upper[i] = 1
	}
	return d
}

// NewDomain copies the bounds and validates them.
func NewDomain(lower, upper []float64) (Domain, error) {
	var d = Domain{
		Lower: append([]float64(nil), lower...),
		Upper: append([]float64(nil), upper...),
	}
	if err := d.Validate(); err != nil {
		return Domain{}, err
	}
	return d, nil
}

// Dim returns the number of dimensions.
func (d Domain) Dim() int { return len(d.Lower) }

// Validate enforces finite bounds with lower < upper in every dimension.
func (d Domain) Validate() error {
	if len(d.Lower) == 0 || len(d.Lower) != len(d.Upper) {
		return ErrBadDomain
	}
	var i int
	for i = range d.Lower {
		if isNonFinite(d.Lower[i]) || isNonFinite(d.Upper[i]) || !(d.Lower[i] < d.Upper[i]) {
			return ErrBadDomain
		}
	}
	return nil
}

// Volume returns Π (upper − lower).
func (d Domain) Volume() float64 {
	var v = 1.0
	var i int
	for i = range d.Lower {
		v *= d.Upper[i] - d.Lower[i]
	}
	return v
}

// Clone returns a deep copy.
func (d Domain) Clone() Domain {
	return Domain{
		Lower: append([]float64(nil), d.Lower...),
		Upper: append([]float64(nil), d.Upper...),
	}
}

func isNonFinite(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }
