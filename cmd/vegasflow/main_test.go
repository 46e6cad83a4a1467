package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/vegasflow/montecarlo"
)

func runArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	var err = run(context.Background(), &out, args)
	return out.String(), err
}

func TestRun_Version(t *testing.T) {
	var out, err = runArgs(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "vegasflow "+Version+"\n", out)
}

func TestRun_PlainConstant(t *testing.T) {
	var out, err = runArgs(t, "integrate",
		"--algo", "plain", "--integrand", "constant", "--value", "2",
		"--dim", "3", "--calls", "1000", "--iterations", "2", "--freeze-after", "0",
		"--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "integral = 2 +/- 0 ")
	assert.Contains(t, out, "2 iterations")
	assert.Contains(t, out, "reference = 2 (pull 0.00 sigma)")
}

func TestRun_VegasReportAndPlots(t *testing.T) {
	var dir = t.TempDir()
	var report = filepath.Join(dir, "result.yaml")
	var plots = filepath.Join(dir, "plots")

	var _, err = runArgs(t, "integrate",
		"--integrand", "lepage", "--dim", "2", "--calls", "5000",
		"--freeze-after", "2", "--iterations", "2", "--bins", "20",
		"--output", report, "--plot", plots, "--log-level", "error")
	require.NoError(t, err)

	var raw []byte
	raw, err = os.ReadFile(report)
	require.NoError(t, err)
	var rep Report
	require.NoError(t, yaml.Unmarshal(raw, &rep))

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, "vegas", rep.Config.Algo)
	require.Len(t, rep.History, 4)
	assert.False(t, rep.History[1].Frozen)
	assert.True(t, rep.History[2].Frozen)
	require.Len(t, rep.Edges, 2)
	assert.Len(t, rep.Edges[0], 21)
	require.NotNil(t, rep.Reference)
	assert.InDelta(t, *rep.Reference, rep.Estimate, 5*rep.Error)

	for _, name := range []string{"convergence.png", "density_dim_00.png", "density_dim_01.png"} {
		var info, serr = os.Stat(filepath.Join(plots, name))
		require.NoError(t, serr, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestRun_VegasNoAdapt(t *testing.T) {
	var report = filepath.Join(t.TempDir(), "result.yaml")
	var _, err = runArgs(t, "integrate",
		"--integrand", "lepage", "--dim", "2", "--calls", "2000",
		"--freeze-after", "0", "--iterations", "2", "--bins", "4", "--no-adapt",
		"--output", report, "--log-level", "error")
	require.NoError(t, err)

	var raw []byte
	raw, err = os.ReadFile(report)
	require.NoError(t, err)
	var rep Report
	require.NoError(t, yaml.Unmarshal(raw, &rep))

	assert.True(t, rep.Config.NoAdapt)
	require.Len(t, rep.Edges, 2)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1}, rep.Edges[1], 1e-15)
}

func TestRun_ConfigFileAndOverride(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "vegasflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
algo: plain
integrand: sumsquares
dim: 2
calls: 2000
iterations: 3
freeze_after: 0
lower: [0, 0]
upper: [2, 1]
log_level: error
`), 0o644))

	var out, err = runArgs(t, "integrate", "--config", path, "--iterations", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1 iterations")
	assert.Contains(t, out, "reference = 3.3333333")
}

func TestRun_Errors(t *testing.T) {
	var cases = []struct {
		name string
		args []string
		want error
	}{
		{"algo", []string{"--algo", "bogus"}, errUnknownAlgo},
		{"integrand", []string{"--integrand", "nope"}, errUnknownIntegrand},
		{"compression", []string{"--compression", "zip"}, errUnknownCompression},
		{"iterations", []string{"--iterations", "0"}, errBadIterations},
		{"calls", []string{"--calls", "1"}, montecarlo.ErrInvalidCalls},
		{"workers", []string{"--workers", "-2", "--calls", "10"}, montecarlo.ErrInvalidWorkers},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var _, err = runArgs(t, append([]string{"integrate", "--log-level", "error"}, tc.args...)...)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	var _, err = runArgs(t, "integrate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
