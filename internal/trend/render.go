package trend

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	panelWidth  = 500
	panelHeight = 300
)

// YlGnBu, darkest first.
var palette = []drawing.Color{
	drawing.ColorFromHex("225ea8"),
	drawing.ColorFromHex("41b6c4"),
	drawing.ColorFromHex("a1dab4"),
}

// seriesColor puts the lighter shade on the first of several series so
// the incumbent line stands out over the local dots.
func seriesColor(i, n int) drawing.Color {
	if n == 1 {
		return palette[0]
	}
	order := []int{1, 0, 2}
	return palette[order[i%len(order)]]
}

// errNoData is returned for panels without a single plottable point.
var errNoData = fmt.Errorf("no plottable data")

// RenderSVG draws the panel as an SVG document.
func (p Panel) RenderSVG(w io.Writer) error {
	if p.Empty() {
		return errNoData
	}

	var series []chart.Series
	var xs, ys []float64
	for i, s := range p.Series {
		x, y := finitePoints(s.X, s.Y, p.LogY)
		if len(x) == 0 {
			continue
		}
		xs = append(xs, x...)
		ys = append(ys, y...)

		color := seriesColor(i, len(p.Series))
		style := chart.Style{StrokeWidth: 3, StrokeColor: color}
		if s.Dots {
			style = chart.Style{StrokeWidth: chart.Disabled, DotWidth: 2, DotColor: color.WithAlpha(204)}
		}
		series = append(series, chart.ContinuousSeries{Name: s.Name, Style: style, XValues: x, YValues: y})
	}
	if len(series) == 0 {
		return errNoData
	}

	yAxis := chart.YAxis{Name: p.YLabel, Range: p.yRange(ys)}
	if p.LogY {
		yAxis.Name = p.YLabel + " (log)"
		yAxis.ValueFormatter = func(v interface{}) string {
			if f, ok := v.(float64); ok {
				return strconv.FormatFloat(math.Pow(10, f), 'g', 2, 64)
			}
			return ""
		}
	}

	ch := chart.Chart{
		Title:  p.Title,
		Width:  panelWidth,
		Height: panelHeight,
		XAxis:  chart.XAxis{Name: "Iteration", Range: xRange(xs)},
		YAxis:  yAxis,
		Series: series,
	}
	if len(series) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("failed to render panel %q: %w", p.Title, err)
	}
	return nil
}

// finitePoints drops points that cannot be drawn. On a log axis y is
// replaced by log10(y) and non-positive values are dropped.
func finitePoints(x, y []float64, logY bool) ([]float64, []float64) {
	var ox, oy []float64
	for i := range y {
		if i >= len(x) {
			break
		}
		v := y[i]
		if logY {
			if v <= 0 {
				continue
			}
			v = math.Log10(v)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || math.IsNaN(x[i]) || math.IsInf(x[i], 0) {
			continue
		}
		ox = append(ox, x[i])
		oy = append(oy, v)
	}
	return ox, oy
}

func xRange(xs []float64) *chart.ContinuousRange {
	min, max := bounds(xs)
	if min > 0 {
		min = 0
	}
	if max <= min {
		max = min + 1
	}
	return &chart.ContinuousRange{Min: min, Max: max}
}

func (p Panel) yRange(ys []float64) *chart.ContinuousRange {
	if p.YRange {
		return &chart.ContinuousRange{Min: p.YMin, Max: p.YMax}
	}

	min, max := bounds(ys)
	pad := (max - min) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(max)*0.05, 0.5)
	}
	min, max = min-pad, max+pad
	if p.YFloor {
		min = 0
		if max <= 0 {
			max = 1
		}
	}
	return &chart.ContinuousRange{Min: min, Max: max}
}

func bounds(values []float64) (float64, float64) {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return min, max
}

type panelView struct {
	Title   string
	SVG     template.HTML
	Missing []string
}

var pageTemplate = template.Must(template.New("trend").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 16px; }
.grid { display: grid; grid-template-columns: repeat(2, {{.Width}}px); gap: 12px; }
.panel { width: {{.Width}}px; height: {{.Height}}px; border: 1px solid #ddd; }
.placeholder { display: flex; flex-direction: column; align-items: center; justify-content: center; color: #888; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Variables}} variables, {{.Constraints}} constraints, {{.Rows}} iterations</p>
<div class="grid">
{{- range .Panels}}
{{- if .SVG}}
<div class="panel">{{.SVG}}</div>
{{- else}}
<div class="panel placeholder"><strong>{{.Title}}</strong><span>no data{{if .Missing}}: missing {{range $i, $m := .Missing}}{{if $i}}, {{end}}{{$m}}{{end}}{{end}}</span></div>
{{- end}}
{{- end}}
</div>
</body>
</html>
`))

// Title is the page title for a table.
func Title(t *Table) string {
	return "Tabu Search Trend for " + t.Name
}

// RenderHTML writes the dashboard of t as a single HTML page with inline
// SVG charts.
func RenderHTML(w io.Writer, t *Table) error {
	panels := BuildDashboard(t)
	views := make([]panelView, len(panels))

	for i, p := range panels {
		views[i] = panelView{Title: p.Title, Missing: p.Missing}
		if p.Empty() {
			continue
		}

		var buf bytes.Buffer
		err := p.RenderSVG(&buf)
		if err == errNoData {
			slog.Warn("Trend panel has no plottable data", "panel", p.Title)
			continue
		}
		if err != nil {
			return err
		}
		views[i].SVG = template.HTML(buf.String())
	}

	data := struct {
		Title       string
		Variables   int
		Constraints int
		Rows        int
		Width       int
		Height      int
		Panels      []panelView
	}{
		Title:       Title(t),
		Variables:   t.NumberOfVariables,
		Constraints: t.NumberOfConstraints,
		Rows:        t.Rows(),
		Width:       panelWidth,
		Height:      panelHeight,
		Panels:      views,
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

// WriteHTML renders the dashboard of t to path.
func WriteHTML(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dashboard file: %w", err)
	}
	defer f.Close()

	if err := RenderHTML(f, t); err != nil {
		return err
	}

	slog.Info("Wrote trend dashboard", "path", path, "instance", t.Name, "iterations", t.Rows())
	return nil
}
