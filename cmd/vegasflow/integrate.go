// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/vegasflow/grid"
	"github.com/katalvlaran/vegasflow/integrand"
	"github.com/katalvlaran/vegasflow/montecarlo"
	"github.com/katalvlaran/vegasflow/plain"
	"github.com/katalvlaran/vegasflow/vegas"
)

// IterationReport is one History record in the exported report.
type IterationReport struct {
	Iteration int     `yaml:"iteration"`
	Estimate  float64 `yaml:"estimate"`
	Error     float64 `yaml:"error"`
	Calls     int     `yaml:"calls"`
	Frozen    bool    `yaml:"frozen"`
	Seconds   float64 `yaml:"seconds"`
}

// Report is the exported outcome of one integrate run.
type Report struct {
	RunID     string            `yaml:"run_id"`
	Started   time.Time         `yaml:"started"`
	Config    Config            `yaml:"config"`
	Estimate  float64           `yaml:"estimate"`
	Error     float64           `yaml:"error"`
	Chi2      float64           `yaml:"chi2_per_dof"`
	Reference *float64          `yaml:"reference,omitempty"`
	History   []IterationReport `yaml:"history"`

	// Edges holds the final vegas grid; nil for plain.
	Edges [][]float64 `yaml:"edges,omitempty"`
}

// integrate runs the configured integrator: FreezeAfter adapting iterations,
// a freeze, then Iterations more.
func integrate(ctx context.Context, cfg Config, logger *logrus.Logger) (*Report, error) {
	var rep = &Report{RunID: uuid.NewString(), Started: time.Now().UTC(), Config: cfg}
	var log = logger.WithField("run", rep.RunID)

	var dom, err = cfg.domain()
	if err != nil {
		return nil, err
	}
	var fn integrand.Integrand
	if fn, rep.Reference, err = stockIntegrand(cfg, dom); err != nil {
		return nil, err
	}

	var base = montecarlo.Options{
		Domain:      dom,
		Seed:        cfg.Seed,
		EventsLimit: cfg.EventsLimit,
		Workers:     cfg.Workers,
		Logger:      log,
		Verbose:     cfg.Verbose,
	}
	var (
		it montecarlo.Integrator
		vf *vegas.Flow
	)
	switch cfg.Algo {
	case "vegas":
		var comp, _ = parseCompression(cfg.Compression)
		vf, err = vegas.New(cfg.Dim, cfg.Calls, vegas.Options{
			Options:     base,
			Bins:        cfg.Bins,
			Alpha:       cfg.Alpha,
			Compression: comp,
			NoAdapt:     cfg.NoAdapt,
		})
		it = vf
	default:
		it, err = plain.New(cfg.Dim, cfg.Calls, base)
	}
	if err != nil {
		return nil, err
	}
	if err = it.Compile(fn); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"algo": cfg.Algo, "integrand": cfg.Integrand, "dim": cfg.Dim, "calls": cfg.Calls}).
		Info("integration started")
	if cfg.FreezeAfter > 0 {
		if _, err = it.Run(ctx, cfg.FreezeAfter); err != nil {
			return nil, err
		}
		if err = it.Freeze(); err != nil {
			return nil, err
		}
	}
	var res montecarlo.Result
	if res, err = it.Run(ctx, cfg.Iterations); err != nil {
		return nil, err
	}

	rep.Estimate, rep.Error, rep.Chi2 = res.Estimate, res.Error, res.Chi2
	for _, r := range it.History() {
		rep.History = append(rep.History, IterationReport{
			Iteration: r.Iteration,
			Estimate:  r.Estimate,
			Error:     r.Error,
			Calls:     r.Calls,
			Frozen:    r.Frozen,
			Seconds:   r.Duration.Seconds(),
		})
	}
	if vf != nil {
		rep.Edges = vf.Edges()
	}
	log.WithFields(logrus.Fields{"estimate": res.Estimate, "error": res.Error, "chi2_per_dof": res.Chi2}).
		Info("integration finished")
	return rep, nil
}

// stockIntegrand resolves the configured function and, when known, its exact integral.
func stockIntegrand(cfg Config, dom grid.Domain) (integrand.Integrand, *float64, error) {
	var ref float64
	switch cfg.Integrand {
	case "constant":
		ref = cfg.Value * dom.Volume()
		return integrand.Constant(cfg.Dim, cfg.Value), &ref, nil
	case "sumsquares":
		var d int
		for d = range dom.Lower {
			var lo, hi = dom.Lower[d], dom.Upper[d]
			ref += (hi*hi*hi - lo*lo*lo) / 3 * dom.Volume() / (hi - lo)
		}
		return integrand.SumSquares(cfg.Dim), &ref, nil
	case "lepage":
		if !isUnit(dom) {
			return integrand.Lepage(cfg.Dim, cfg.Width), nil, nil
		}
		ref = integrand.LepageIntegral(cfg.Dim, cfg.Width)
		return integrand.Lepage(cfg.Dim, cfg.Width), &ref, nil
	}
	return nil, nil, fmt.Errorf("%w %q", errUnknownIntegrand, cfg.Integrand)
}

func isUnit(d grid.Domain) bool {
	var i int
	for i = range d.Lower {
		if d.Lower[i] != 0 || d.Upper[i] != 1 {
			return false
		}
	}
	return true
}

// publish prints the summary and writes the optional report and plots.
func publish(outW io.Writer, cfg Config, rep *Report) error {
	fmt.Fprintf(outW, "run %s\n", rep.RunID)
	fmt.Fprintf(outW, "integral = %.8g +/- %.3g (chi2/dof %.3g, %d iterations)\n",
		rep.Estimate, rep.Error, rep.Chi2, len(rep.History))
	if rep.Reference != nil {
		var pull float64
		if rep.Error > 0 {
			pull = (rep.Estimate - *rep.Reference) / rep.Error
		}
		if math.IsNaN(pull) {
			pull = 0
		}
		fmt.Fprintf(outW, "reference = %.8g (pull %.2f sigma)\n", *rep.Reference, pull)
	}

	if cfg.Output != "" {
		if err := writeFile(cfg.Output, func(w io.Writer) error {
			var enc = yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(rep); err != nil {
				return err
			}
			return enc.Close()
		}); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	if cfg.PlotDir != "" {
		if err := writePlots(cfg.PlotDir, rep); err != nil {
			return fmt.Errorf("plot: %w", err)
		}
	}
	return nil
}
