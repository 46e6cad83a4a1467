// SPDX-License-Identifier: MIT

package integrand

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Constant returns f(x) = c in dim dimensions.
func Constant(dim int, c float64) Integrand {
	return New(dim, func(x *mat.Dense) ([]float64, error) {
		var n, _ = x.Dims()
		var out = make([]float64, n)
		floats.AddConst(c, out)
		return out, nil
	})
}

// Lepage returns the Gaussian test function of G.P. Lepage,
//
//	f(x) = (1/(a·√π))^dim · exp(−Σ_i ((x_i − ½)/a)²),
//
// which integrates to LepageIntegral(dim, a) ≈ 1 over [0,1]^dim for small a.
func Lepage(dim int, a float64) Integrand {
	var pref = math.Pow(1/(a*math.Sqrt(math.Pi)), float64(dim))
	return New(dim, func(x *mat.Dense) ([]float64, error) {
		var n, _ = x.Dims()
		var out = make([]float64, n)
		var (
			i, j int
			row  []float64
			s, z float64
		)
		for i = 0; i < n; i++ {
			row = x.RawRowView(i)
			s = 0
			for j = range row {
				z = (row[j] - 0.5) / a
				s += z * z
			}
			out[i] = pref * math.Exp(-s)
		}
		return out, nil
	})
}

// LepageIntegral is the exact integral of Lepage(dim, a) over [0,1]^dim.
func LepageIntegral(dim int, a float64) float64 {
	return math.Pow(math.Erf(0.5/a), float64(dim))
}

// SumSquares returns f(x) = Σ_i x_i².
func SumSquares(dim int) Integrand {
	return New(dim, func(x *mat.Dense) ([]float64, error) {
		var n, _ = x.Dims()
		var out = make([]float64, n)
		var i int
		var row []float64
		for i = 0; i < n; i++ {
			row = x.RawRowView(i)
			out[i] = floats.Dot(row, row)
		}
		return out, nil
	})
}
