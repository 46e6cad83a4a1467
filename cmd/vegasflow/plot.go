// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// convergence adapts the report history to plotter.XYer and plotter.YErrorer.
type convergence []IterationReport

func (c convergence) Len() int                        { return len(c) }
func (c convergence) XY(i int) (float64, float64)     { return float64(c[i].Iteration), c[i].Estimate }
func (c convergence) YError(i int) (float64, float64) { return c[i].Error, c[i].Error }

// writePlots saves convergence.png and, for vegas, one density_dim_<d>.png per dimension.
func writePlots(dir string, rep *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := plotConvergence(filepath.Join(dir, "convergence.png"), rep); err != nil {
		return err
	}
	var d int
	for d = range rep.Edges {
		if err := plotDensity(filepath.Join(dir, fmt.Sprintf("density_dim_%02d.png", d)), d, rep); err != nil {
			return err
		}
	}
	return nil
}

func plotConvergence(path string, rep *Report) error {
	var p = plot.New()
	p.Title.Text = fmt.Sprintf("%s / %s, %d calls per iteration", rep.Config.Algo, rep.Config.Integrand, rep.Config.Calls)
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "estimate"
	p.Add(plotter.NewGrid())

	var pts = convergence(rep.History)
	var line, scatter, err = plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	scatter.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	var bars *plotter.YErrorBars
	if bars, err = plotter.NewYErrorBars(pts); err != nil {
		return err
	}
	p.Add(line, scatter, bars)

	if rep.Reference != nil {
		var ref *plotter.Line
		ref, err = plotter.NewLine(plotter.XYs{
			{X: 0, Y: *rep.Reference},
			{X: float64(max(len(pts)-1, 1)), Y: *rep.Reference},
		})
		if err != nil {
			return err
		}
		ref.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
		ref.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(ref)
		p.Legend.Add("reference", ref)
	}
	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}

// plotDensity draws the sampling density 1/(B·w_k) of dimension d over the domain.
func plotDensity(path string, d int, rep *Report) error {
	var (
		edges  = rep.Edges[d]
		bins   = len(edges) - 1
		lo, hi = 0.0, 1.0
	)
	if len(rep.Config.Lower) > d {
		lo, hi = rep.Config.Lower[d], rep.Config.Upper[d]
	}
	var pts = make(plotter.XYs, bins+1)
	var k int
	for k = 0; k < bins; k++ {
		pts[k].X = lo + (hi-lo)*edges[k]
		pts[k].Y = 1 / (float64(bins) * (edges[k+1] - edges[k])) / (hi - lo)
	}
	pts[bins] = plotter.XY{X: hi, Y: pts[bins-1].Y}

	var p = plot.New()
	p.Title.Text = fmt.Sprintf("sampling density, dimension %d", d)
	p.X.Label.Text = fmt.Sprintf("x%d", d)
	p.Y.Label.Text = "density"
	var line, err = plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.StepStyle = plotter.PostStep
	line.Width = vg.Points(1)
	p.Add(line)
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
