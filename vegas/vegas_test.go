package vegas_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/vegasflow/grid"
	"github.com/katalvlaran/vegasflow/integrand"
	"github.com/katalvlaran/vegasflow/montecarlo"
	"github.com/katalvlaran/vegasflow/plain"
	"github.com/katalvlaran/vegasflow/vegas"
)

const lepageA = 0.1

func uniformEdges(bins int) []float64 {
	var e = make([]float64, bins+1)
	floats.Span(e, 0, 1)
	return e
}

// TestNew_Defaults exposes the documented defaults.
func TestNew_Defaults(t *testing.T) {
	var f, err = vegas.New(3, 100, vegas.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, vegas.DefaultBins, f.Bins())
	assert.Equal(t, vegas.DefaultAlpha, f.Alpha())
	assert.Equal(t, grid.Lepage, f.Compression())
	assert.Equal(t, 3, f.Dim())
	assert.Equal(t, 100, f.Calls())

	f, err = vegas.New(2, 100, vegas.Options{})
	require.NoError(t, err)
	assert.Equal(t, vegas.DefaultBins, f.Bins())
	assert.Equal(t, vegas.DefaultAlpha, f.Alpha())
	assert.True(t, f.Adaptive())
	assert.Equal(t, grid.UnitDomain(2), f.Domain())
}

// TestNew_Validation covers option errors.
func TestNew_Validation(t *testing.T) {
	var cases = []struct {
		name string
		mod  func(o *vegas.Options)
		want error
	}{
		{"bins", func(o *vegas.Options) { o.Bins = -2 }, grid.ErrBadBins},
		{"alpha negative", func(o *vegas.Options) { o.Alpha = -1 }, grid.ErrBadAlpha},
		{"alpha nan", func(o *vegas.Options) { o.Alpha = math.NaN() }, grid.ErrBadAlpha},
		{"compression", func(o *vegas.Options) { o.Compression = grid.Compression(9) }, vegas.ErrUnknownCompression},
		{"workers", func(o *vegas.Options) { o.Workers = -1 }, montecarlo.ErrInvalidWorkers},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var o = vegas.DefaultOptions()
			tc.mod(&o)
			var _, err = vegas.New(2, 100, o)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	var _, err = vegas.New(0, 100, vegas.DefaultOptions())
	assert.ErrorIs(t, err, montecarlo.ErrInvalidDimension)
}

// TestFlow_Lepage trains on the Lepage Gaussian, freezes, and re-estimates.
func TestFlow_Lepage(t *testing.T) {
	var want = integrand.LepageIntegral(2, lepageA)

	var f, err = vegas.New(2, 100_000, vegas.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, f.Compile(integrand.Lepage(2, lepageA)))

	var res montecarlo.Result
	res, err = f.Run(context.Background(), 4)
	require.NoError(t, err)
	assert.InDelta(t, want, res.Estimate, 3*res.Error)

	require.NoError(t, f.Freeze())
	res, err = f.Run(context.Background(), 4)
	require.NoError(t, err)
	assert.InDelta(t, want, res.Estimate, 3*res.Error)
	assert.Equal(t, 8, res.Iterations)
	assert.Less(t, res.Error, 1e-2*want)
}

// TestFlow_BeatsPlain: adaptation lowers the per-iteration error on a peak.
func TestFlow_BeatsPlain(t *testing.T) {
	const calls = 20_000
	var fn = integrand.Lepage(2, lepageA)

	var v, err = vegas.New(2, calls, vegas.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, v.Compile(fn))
	_, err = v.Run(context.Background(), 5)
	require.NoError(t, err)

	var p *plain.Flow
	p, err = plain.New(2, calls, plain.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, p.Compile(fn))
	_, err = p.Run(context.Background(), 5)
	require.NoError(t, err)

	var vh, ph = v.History(), p.History()
	assert.Less(t, vh[4].Error, ph[4].Error)
}

// TestFlow_FreezeKeepsEdges: a frozen grid is byte-identical after Run.
func TestFlow_FreezeKeepsEdges(t *testing.T) {
	var f, err = vegas.New(2, 5_000, vegas.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, f.Compile(integrand.Lepage(2, lepageA)))
	_, err = f.Run(context.Background(), 2)
	require.NoError(t, err)

	// Training moved the edges towards the peak.
	assert.NotEmpty(t, cmp.Diff(uniformEdges(f.Bins()), f.Edges()[0]))

	require.NoError(t, f.Freeze())
	var before = f.Edges()
	var version = f.Grid().Version()
	_, err = f.Run(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(before, f.Edges()))
	assert.Equal(t, version, f.Grid().Version())
}

// TestFlow_ResetReproduces restores uniform bins and replays the first run.
func TestFlow_ResetReproduces(t *testing.T) {
	var f, err = vegas.New(3, 4_000, vegas.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, f.Compile(integrand.Lepage(3, 0.2)))

	var first montecarlo.Result
	first, err = f.Run(context.Background(), 3)
	require.NoError(t, err)
	var trained = f.Edges()

	f.Reset()
	var d int
	for d = 0; d < 3; d++ {
		assert.Empty(t, cmp.Diff(uniformEdges(f.Bins()), f.Edges()[d]))
	}

	var second montecarlo.Result
	second, err = f.Run(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Empty(t, cmp.Diff(trained, f.Edges()))
}

// TestFlow_WorkerInvariance: steps and workers do not change the numbers.
func TestFlow_WorkerInvariance(t *testing.T) {
	var run = func(workers int) (montecarlo.Result, [][]float64) {
		var o = vegas.DefaultOptions()
		o.EventsLimit = 1_500
		o.Workers = workers
		o.Seed = 2024
		var f, err = vegas.New(2, 6_000, o)
		require.NoError(t, err)
		require.NoError(t, f.Compile(integrand.Lepage(2, lepageA)))
		var res montecarlo.Result
		res, err = f.Run(context.Background(), 3)
		require.NoError(t, err)
		return res, f.Edges()
	}
	var r1, e1 = run(1)
	var r3, e3 = run(3)
	assert.Equal(t, r1, r3)
	assert.Empty(t, cmp.Diff(e1, e3))
}

// TestFlow_ConstantConverges over non-unit domains in several dimensions.
func TestFlow_ConstantConverges(t *testing.T) {
	var dim int
	for dim = 1; dim <= 4; dim++ {
		var o = vegas.DefaultOptions()
		o.Domain = grid.UnitDomain(dim)
		o.Domain.Lower[0] = -2
		var f, err = vegas.New(dim, 2_000, o)
		require.NoError(t, err)
		require.NoError(t, f.Compile(integrand.Constant(dim, 1.5)))

		var res montecarlo.Result
		res, err = f.Run(context.Background(), 3)
		require.NoError(t, err)
		assert.InDelta(t, 4.5, res.Estimate, 3*res.Error, "dim %d", dim)
	}
}

// TestFlow_DegenerateFallback: a zero integrand keeps uniform bins and warns.
func TestFlow_DegenerateFallback(t *testing.T) {
	var logger, hook = test.NewNullLogger()
	var o = vegas.DefaultOptions()
	o.Logger = logger
	var f, err = vegas.New(2, 1_000, o)
	require.NoError(t, err)
	require.NoError(t, f.Compile(integrand.Constant(2, 0)))

	var res montecarlo.Result
	res, err = f.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Estimate)
	assert.Equal(t, 0.0, res.Error)

	var warns int
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warns++
			assert.Contains(t, e.Message, "[0 1]")
		}
	}
	assert.Equal(t, 2, warns)
	assert.Empty(t, cmp.Diff(uniformEdges(f.Bins()), f.Edges()[1]))
}

// TestFlow_EvaluationFailureKeepsGrid: the failing iteration changes nothing.
func TestFlow_EvaluationFailureKeepsGrid(t *testing.T) {
	var f, err = vegas.New(2, 1_000, vegas.DefaultOptions())
	require.NoError(t, err)

	var calls int
	var lep = integrand.Lepage(2, lepageA)
	require.NoError(t, f.Compile(integrand.New(2, func(x *mat.Dense) ([]float64, error) {
		calls++
		if calls > 2 {
			return nil, errors.New("detector offline")
		}
		return lep.Evaluate(x, nil)
	})))

	_, err = f.Run(context.Background(), 2)
	require.NoError(t, err)
	var edges = f.Edges()
	var agg = f.Result()

	_, err = f.Run(context.Background(), 1)
	assert.ErrorIs(t, err, montecarlo.ErrEvaluation)
	assert.Empty(t, cmp.Diff(edges, f.Edges()))
	assert.Equal(t, agg, f.Result())
}

// TestFlow_NoAdapt never moves the grid.
func TestFlow_NoAdapt(t *testing.T) {
	var o = vegas.DefaultOptions()
	o.NoAdapt = true
	var f, err = vegas.New(2, 2_000, o)
	require.NoError(t, err)
	assert.False(t, f.Adaptive())
	require.NoError(t, f.Compile(integrand.Lepage(2, lepageA)))
	_, err = f.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(uniformEdges(f.Bins()), f.Edges()[0]))
}

func TestFlow_AlphaZeroSelectsDefault(t *testing.T) {
	var o = vegas.DefaultOptions()
	o.Alpha = 0
	var f, err = vegas.New(2, 2_000, o)
	require.NoError(t, err)
	assert.Equal(t, vegas.DefaultAlpha, f.Alpha())
	require.NoError(t, f.Compile(integrand.Lepage(2, lepageA)))
	_, err = f.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.NotEmpty(t, cmp.Diff(uniformEdges(f.Bins()), f.Edges()[0]))
}

// TestFlow_ConstantUnitCube integrates f=1 over [0,1]^2.
func TestFlow_ConstantUnitCube(t *testing.T) {
	var f, err = vegas.New(2, 100_000, vegas.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, f.Compile(integrand.Constant(2, 1)))

	var res montecarlo.Result
	res, err = f.Run(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Iterations)
	assert.Greater(t, res.Error, 0.0)
	assert.InDelta(t, 1, res.Estimate, 3*res.Error)
}

// TestFlow_EmptyFirstIteration starts from an iteration that misses a narrow
// box entirely; later hits must still reach the combined result.
func TestFlow_EmptyFirstIteration(t *testing.T) {
	var box = integrand.Pointwise(1, func(x []float64) float64 {
		if x[0] > 0.5 && x[0] < 0.52 {
			return 50
		}
		return 0
	})
	var f, err = vegas.New(1, 20, vegas.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, f.Compile(box))

	var res montecarlo.Result
	res, err = f.Run(context.Background(), 20)
	require.NoError(t, err)

	var hist = f.History()
	require.Len(t, hist, 20)
	require.True(t, hist[0].Exact())
	require.Zero(t, hist[0].Estimate)

	assert.Greater(t, res.Error, 0.0)
	assert.Greater(t, res.Estimate, 0.0)
}

// TestFlow_ScaleInvariantAdaptation refines a tiny integrand as far as the
// same integrand at unit scale.
func TestFlow_ScaleInvariantAdaptation(t *testing.T) {
	const scale = 1e-20
	var lep = integrand.Lepage(2, lepageA)
	var tiny = integrand.New(2, func(x *mat.Dense) ([]float64, error) {
		var v, err = lep.Evaluate(x, nil)
		if err != nil {
			return nil, err
		}
		floats.Scale(scale, v)
		return v, nil
	})

	var run = func(f integrand.Integrand) (*vegas.Flow, montecarlo.Result) {
		var flow, err = vegas.New(2, 100_000, vegas.DefaultOptions())
		require.NoError(t, err)
		require.NoError(t, flow.Compile(f))
		var res montecarlo.Result
		res, err = flow.Run(context.Background(), 4)
		require.NoError(t, err)
		return flow, res
	}
	var unit, unitRes = run(lep)
	var small, smallRes = run(tiny)

	var uniform = uniformEdges(small.Bins())
	assert.Greater(t, small.Edges()[0][1], 5*uniform[1])
	assert.InDelta(t, unit.Edges()[0][1], small.Edges()[0][1], 1e-9)

	var want = scale * integrand.LepageIntegral(2, lepageA)
	assert.InDelta(t, want, smallRes.Estimate, 3*smallRes.Error)
	assert.InDelta(t, unitRes.Error/unitRes.Estimate, smallRes.Error/smallRes.Estimate, 1e-6)

	var hist = small.History()
	var last = hist[len(hist)-1]
	assert.Less(t, last.Error/math.Abs(last.Estimate), 5e-3)
}

// TestFlow_PowerCompression also converges.
func TestFlow_PowerCompression(t *testing.T) {
	var o = vegas.DefaultOptions()
	o.Compression = grid.Power
	o.Alpha = 0.5
	var res, err = vegas.Integrate(context.Background(), integrand.Lepage(2, 0.2), 20_000, 5, o)
	require.NoError(t, err)
	assert.InDelta(t, integrand.LepageIntegral(2, 0.2), res.Estimate, 4*res.Error)
}

// TestFlow_Sample draws weighted points from a trained grid.
func TestFlow_Sample(t *testing.T) {
	var fn = integrand.Lepage(2, lepageA)
	var f, err = vegas.NewSampler(context.Background(), fn, 20_000, 5, vegas.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, f.Frozen())

	var b *montecarlo.Batch
	b, err = f.Sample(50_000)
	require.NoError(t, err)
	require.Equal(t, 50_000, b.Len())

	var vals []float64
	vals, err = fn.Evaluate(b.Points, b.Weight)
	require.NoError(t, err)
	assert.InDelta(t, integrand.LepageIntegral(2, lepageA), floats.Dot(vals, b.Weight), 0.02)

	var i, d int
	for i = 0; i < b.Len(); i++ {
		for d = 0; d < 2; d++ {
			assert.Less(t, b.Bins[d][i], f.Bins())
		}
	}

	// Consecutive samples are independent draws.
	var b2 *montecarlo.Batch
	b2, err = f.Sample(10)
	require.NoError(t, err)
	assert.NotEqual(t, b.Points.RawRowView(0), b2.Points.RawRowView(0))

	_, err = f.Sample(0)
	assert.ErrorIs(t, err, vegas.ErrInvalidSampleSize)
}

// TestWrappers_Errors covers nil integrands and bad counts.
func TestWrappers_Errors(t *testing.T) {
	var _, err = vegas.Integrate(context.Background(), nil, 100, 1, vegas.DefaultOptions())
	assert.ErrorIs(t, err, integrand.ErrNilIntegrand)

	_, err = vegas.NewSampler(context.Background(), nil, 100, 1, vegas.DefaultOptions())
	assert.ErrorIs(t, err, integrand.ErrNilIntegrand)

	_, err = vegas.NewSampler(context.Background(), integrand.SumSquares(2), 100, 0, vegas.DefaultOptions())
	assert.ErrorIs(t, err, montecarlo.ErrInvalidIterations)
}
