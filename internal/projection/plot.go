package projection

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/snowberryfield/printemps/internal/analysis"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"
)

// PlotOptions control figure titles and colors.
type PlotOptions struct {
	Title         string
	Normalization analysis.Normalization
	Width         int
	Height        int
}

func (o PlotOptions) withDefaults() PlotOptions {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 800
	}
	return o
}

// RenderScatter draws the layout as a PNG, each point colored by its
// objective the same way tree nodes are.
func RenderScatter(w io.Writer, points []Point, objectives []float64, opts PlotOptions) error {
	if len(points) == 0 {
		return fmt.Errorf("no points to plot")
	}
	if len(points) != len(objectives) {
		return fmt.Errorf("%d points but %d objectives", len(points), len(objectives))
	}
	opts = opts.withDefaults()

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}

	min, max := floats.Min(objectives), floats.Max(objectives)
	colors := make([]drawing.Color, len(points))
	for i, v := range objectives {
		c := analysis.Color(v, min, max, opts.Normalization)
		colors[i] = drawing.Color{R: c.R, G: c.G, B: c.B, A: 255}
	}

	ch := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		XAxis:  chart.XAxis{Range: paddedRange(xs)},
		YAxis:  chart.YAxis{Range: paddedRange(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "solutions",
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    4,
					DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
						return colors[index]
					},
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render scatter plot: %w", err)
	}
	return nil
}

// RenderContributions draws one row per variable, ranked by best objective,
// with a dot at the objective of every solution that uses it.
func RenderContributions(w io.Writer, groups []Contribution, opts PlotOptions) error {
	var xs, ys []float64
	for rank, g := range groups {
		for _, v := range g.Objectives {
			xs = append(xs, v)
			ys = append(ys, float64(rank))
		}
	}
	if len(xs) == 0 {
		return fmt.Errorf("no contributions to plot")
	}
	opts = opts.withDefaults()

	ch := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		XAxis:  chart.XAxis{Name: "Objective", Range: paddedRange(xs)},
		YAxis:  chart.YAxis{Name: "Variable rank", Range: paddedRange(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "contribution",
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    1,
					DotColor:    chart.ColorBlue,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render contribution plot: %w", err)
	}
	return nil
}

// WriteFile creates path and hands it to render.
func WriteFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	defer f.Close()

	if err := render(f); err != nil {
		return err
	}
	slog.Info("Wrote plot", "path", path)
	return nil
}

// paddedRange widens [min, max] by 5% so no axis has zero span.
func paddedRange(values []float64) *chart.ContinuousRange {
	min, max := floats.Min(values), floats.Max(values)
	pad := (max - min) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: min - pad, Max: max + pad}
}
