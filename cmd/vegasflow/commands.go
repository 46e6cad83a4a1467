// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagKeys maps config keys to flag names.
var flagKeys = [][2]string{
	{"algo", "algo"},
	{"integrand", "integrand"},
	{"dim", "dim"},
	{"calls", "calls"},
	{"iterations", "iterations"},
	{"freeze_after", "freeze-after"},
	{"seed", "seed"},
	{"workers", "workers"},
	{"events_limit", "events-limit"},
	{"bins", "bins"},
	{"alpha", "alpha"},
	{"no_adapt", "no-adapt"},
	{"compression", "compression"},
	{"width", "width"},
	{"value", "value"},
	{"output", "output"},
	{"plot_dir", "plot"},
	{"log_level", "log-level"},
	{"verbose", "verbose"},
}

func newRootCmd(outW io.Writer) *cobra.Command {
	var root = &cobra.Command{
		Use:           "vegasflow",
		Short:         "Adaptive Monte Carlo integration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.AddCommand(newIntegrateCmd(outW), newVersionCmd(outW))
	return root
}

func newVersionCmd(outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintf(outW, "vegasflow %s\n", Version)
			return err
		},
	}
}

func newIntegrateCmd(outW io.Writer) *cobra.Command {
	var (
		v          = viper.New()
		configPath string
	)
	var cmd = &cobra.Command{
		Use:   "integrate",
		Short: "Integrate a stock function and report the estimate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg, err = loadConfig(v, configPath)
			if err != nil {
				return err
			}
			var logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			var rep *Report
			if rep, err = integrate(cmd.Context(), cfg, logger); err != nil {
				return err
			}
			return publish(outW, cfg, rep)
		},
	}

	var def = defaultConfig()
	var f = cmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML configuration file")
	f.String("algo", def.Algo, "integrator: vegas | plain")
	f.String("integrand", def.Integrand, "function: lepage | constant | sumsquares")
	f.Int("dim", def.Dim, "number of dimensions")
	f.Int("calls", def.Calls, "integrand calls per iteration")
	f.Int("iterations", def.Iterations, "iterations after the freeze")
	f.Int("freeze-after", def.FreezeAfter, "adapting iterations before the freeze (0 = never freeze)")
	f.Uint64("seed", def.Seed, "random seed (0 = default)")
	f.Int("workers", def.Workers, "steps evaluated concurrently")
	f.Int("events-limit", def.EventsLimit, "maximum points per step (0 = one step)")
	f.Int("bins", def.Bins, "vegas bins per dimension")
	f.Float64("alpha", def.Alpha, "vegas damping exponent")
	f.Bool("no-adapt", def.NoAdapt, "keep the vegas grid uniform")
	f.String("compression", def.Compression, "vegas histogram compression: lepage | power")
	f.Float64("width", def.Width, "lepage Gaussian width")
	f.Float64("value", def.Value, "constant integrand value")
	f.String("output", def.Output, "write the YAML report to this file")
	f.String("plot", def.PlotDir, "write PNG plots into this directory")
	f.String("log-level", def.LogLevel, "debug | info | warn | error")
	f.Bool("verbose", def.Verbose, "log every iteration at info level")

	for _, kv := range flagKeys {
		_ = v.BindPFlag(kv[0], f.Lookup(kv[1]))
	}
	return cmd
}
