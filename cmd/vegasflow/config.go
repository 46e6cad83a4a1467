// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/katalvlaran/vegasflow/grid"
	"github.com/katalvlaran/vegasflow/montecarlo"
	"github.com/katalvlaran/vegasflow/vegas"
)

// Config is the integrate command configuration. Flags override the file.
type Config struct {
	Algo        string  `mapstructure:"algo" yaml:"algo"`
	Integrand   string  `mapstructure:"integrand" yaml:"integrand"`
	Dim         int     `mapstructure:"dim" yaml:"dim"`
	Calls       int     `mapstructure:"calls" yaml:"calls"`
	Iterations  int     `mapstructure:"iterations" yaml:"iterations"`
	FreezeAfter int     `mapstructure:"freeze_after" yaml:"freeze_after"`
	Seed        uint64  `mapstructure:"seed" yaml:"seed"`
	Workers     int     `mapstructure:"workers" yaml:"workers"`
	EventsLimit int     `mapstructure:"events_limit" yaml:"events_limit"`
	Bins        int     `mapstructure:"bins" yaml:"bins"`
	Alpha       float64 `mapstructure:"alpha" yaml:"alpha"`
	NoAdapt     bool    `mapstructure:"no_adapt" yaml:"no_adapt"`
	Compression string  `mapstructure:"compression" yaml:"compression"`
	Width       float64 `mapstructure:"width" yaml:"width"`
	Value       float64 `mapstructure:"value" yaml:"value"`

	// Lower and Upper bound the domain; both empty means the unit cube.
	Lower []float64 `mapstructure:"lower" yaml:"lower,omitempty"`
	Upper []float64 `mapstructure:"upper" yaml:"upper,omitempty"`

	Output   string `mapstructure:"output" yaml:"-"`
	PlotDir  string `mapstructure:"plot_dir" yaml:"-"`
	LogLevel string `mapstructure:"log_level" yaml:"-"`
	Verbose  bool   `mapstructure:"verbose" yaml:"-"`
}

var (
	errUnknownAlgo        = errors.New("config: unknown algo")
	errUnknownIntegrand   = errors.New("config: unknown integrand")
	errUnknownCompression = errors.New("config: unknown compression")
	errBadIterations      = errors.New("config: iterations must be > 0 and freeze_after >= 0")
)

func defaultConfig() Config {
	return Config{
		Algo:        "vegas",
		Integrand:   "lepage",
		Dim:         4,
		Calls:       100_000,
		Iterations:  5,
		FreezeAfter: 5,
		Seed:        montecarlo.DefaultSeed,
		Workers:     1,
		EventsLimit: montecarlo.DefaultEventsLimit,
		Bins:        vegas.DefaultBins,
		Alpha:       vegas.DefaultAlpha,
		Compression: grid.Lepage.String(),
		Width:       0.1,
		Value:       1,
		LogLevel:    "info",
	}
}

// loadConfig layers defaults, the optional YAML file and the bound flags.
func loadConfig(v *viper.Viper, path string) (Config, error) {
	var def = defaultConfig()
	v.SetDefault("algo", def.Algo)
	v.SetDefault("integrand", def.Integrand)
	v.SetDefault("dim", def.Dim)
	v.SetDefault("calls", def.Calls)
	v.SetDefault("iterations", def.Iterations)
	v.SetDefault("freeze_after", def.FreezeAfter)
	v.SetDefault("seed", def.Seed)
	v.SetDefault("workers", def.Workers)
	v.SetDefault("events_limit", def.EventsLimit)
	v.SetDefault("bins", def.Bins)
	v.SetDefault("alpha", def.Alpha)
	v.SetDefault("no_adapt", def.NoAdapt)
	v.SetDefault("compression", def.Compression)
	v.SetDefault("width", def.Width)
	v.SetDefault("value", def.Value)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix("VEGASFLOW")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, cfg.validate()
}

// validate checks the enumerations; numeric ranges are left to the integrators.
func (c Config) validate() error {
	switch c.Algo {
	case "vegas", "plain":
	default:
		return fmt.Errorf("%w %q", errUnknownAlgo, c.Algo)
	}
	switch c.Integrand {
	case "lepage", "constant", "sumsquares":
	default:
		return fmt.Errorf("%w %q", errUnknownIntegrand, c.Integrand)
	}
	if _, err := parseCompression(c.Compression); err != nil {
		return err
	}
	if c.Iterations <= 0 || c.FreezeAfter < 0 {
		return errBadIterations
	}
	return nil
}

// domain returns the configured domain or the unit cube.
func (c Config) domain() (grid.Domain, error) {
	if len(c.Lower) == 0 && len(c.Upper) == 0 {
		return grid.UnitDomain(c.Dim), nil
	}
	return grid.NewDomain(c.Lower, c.Upper)
}

func parseCompression(s string) (grid.Compression, error) {
	switch strings.ToLower(s) {
	case grid.Lepage.String():
		return grid.Lepage, nil
	case grid.Power.String():
		return grid.Power, nil
	}
	return 0, fmt.Errorf("%w %q", errUnknownCompression, s)
}

// newLogger builds the text logger used by the command.
func newLogger(w io.Writer, level string) *logrus.Logger {
	var logger = logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	var lvl, err = logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// writeFile creates path and hands it to fn.
func writeFile(path string, fn func(io.Writer) error) error {
	var f, err = os.Create(path)
	if err != nil {
		return err
	}
	if err = fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
