// Package heatmap renders a distance matrix as a PNG heatmap with a color
// bar, drawn through the go-chart raster renderer.
package heatmap

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/mat"
)

// MaxCells caps the number of rendered cells per side. Larger matrices are
// averaged into blocks.
const MaxCells = 200

// Options control the figure layout.
type Options struct {
	Title    string
	Footnote string
	Width    int
	Height   int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 720
	}
	if o.Height <= 0 {
		o.Height = 640
	}
	return o
}

var viridisStops = []drawing.Color{
	drawing.ColorFromHex("440154"),
	drawing.ColorFromHex("3b528b"),
	drawing.ColorFromHex("21918c"),
	drawing.ColorFromHex("5ec962"),
	drawing.ColorFromHex("fde725"),
}

// Viridis samples a five-stop viridis ramp at x in [0, 1].
func Viridis(x float64) drawing.Color {
	if math.IsNaN(x) || x <= 0 {
		return viridisStops[0]
	}
	if x >= 1 {
		return viridisStops[len(viridisStops)-1]
	}

	pos := x * float64(len(viridisStops)-1)
	i := int(pos)
	t := pos - float64(i)
	a, b := viridisStops[i], viridisStops[i+1]
	lerp := func(u, v uint8) uint8 {
		return uint8(math.Round(float64(u) + (float64(v)-float64(u))*t))
	}
	return drawing.Color{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}

// Downsample averages m into a cells×cells grid. It returns the grid and
// the number of matrix rows per cell.
func Downsample(m mat.Symmetric, cells int) ([][]float64, float64) {
	n := m.SymmetricDim()
	if cells > n {
		cells = n
	}
	if cells <= 0 {
		return nil, 0
	}

	step := float64(n) / float64(cells)
	grid := make([][]float64, cells)
	for bi := range grid {
		grid[bi] = make([]float64, cells)
		i0, i1 := int(float64(bi)*step), int(float64(bi+1)*step)
		for bj := range grid[bi] {
			j0, j1 := int(float64(bj)*step), int(float64(bj+1)*step)
			var sum float64
			for i := i0; i < i1; i++ {
				for j := j0; j < j1; j++ {
					sum += m.At(i, j)
				}
			}
			grid[bi][bj] = sum / float64((i1-i0)*(j1-j0))
		}
	}
	return grid, step
}

// Render draws m as a PNG heatmap to w.
func Render(w io.Writer, m mat.Symmetric, opts Options) error {
	opts = opts.withDefaults()

	n := m.SymmetricDim()
	if n == 0 {
		return fmt.Errorf("cannot render an empty matrix")
	}

	r, err := chart.PNG(opts.Width, opts.Height)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("failed to load font: %w", err)
	}

	chart.Draw.Box(r, chart.Box{Top: 0, Left: 0, Right: opts.Width, Bottom: opts.Height},
		chart.Style{FillColor: drawing.ColorWhite, StrokeColor: drawing.ColorWhite, StrokeWidth: 1})

	side := opts.Height - 160
	if side > opts.Width-200 {
		side = opts.Width - 200
	}
	left, top := 80, 70

	grid, _ := Downsample(m, MaxCells)
	cells := len(grid)

	var max float64
	for i := range grid {
		for _, v := range grid[i] {
			max = math.Max(max, v)
		}
	}

	for bi := 0; bi < cells; bi++ {
		y0 := top + bi*side/cells
		y1 := top + (bi+1)*side/cells
		for bj := 0; bj < cells; bj++ {
			x0 := left + bj*side/cells
			x1 := left + (bj+1)*side/cells
			c := Viridis(grid[bi][bj] / nonZero(max))
			chart.Draw.Box(r, chart.Box{Top: y0, Left: x0, Right: x1, Bottom: y1},
				chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 0.5})
		}
	}

	// color bar
	barLeft := left + side + 30
	const barWidth, barSteps = 20, 64
	for s := 0; s < barSteps; s++ {
		y0 := top + side - (s+1)*side/barSteps
		y1 := top + side - s*side/barSteps
		c := Viridis(float64(s) / float64(barSteps-1))
		chart.Draw.Box(r, chart.Box{Top: y0, Left: barLeft, Right: barLeft + barWidth, Bottom: y1},
			chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 0.5})
	}

	text := chart.Style{Font: font, FontSize: 10, FontColor: chart.ColorBlack}
	chart.Draw.Text(r, formatTick(max), barLeft+barWidth+6, top+8, text)
	chart.Draw.Text(r, "0", barLeft+barWidth+6, top+side, text)

	chart.Draw.Text(r, "0", left, top+side+16, text)
	chart.Draw.Text(r, strconv.Itoa(n-1), left+side-20, top+side+16, text)
	chart.Draw.Text(r, "0", left-20, top+10, text)
	chart.Draw.Text(r, strconv.Itoa(n-1), left-40, top+side, text)

	label := chart.Style{Font: font, FontSize: 11, FontColor: chart.ColorBlack}
	chart.Draw.Text(r, "Solution No.", left+side/2-30, top+side+36, label)
	rotated := label
	rotated.TextRotationDegrees = 270
	chart.Draw.Text(r, "Solution No.", left-50, top+side/2+30, rotated)

	if opts.Title != "" {
		title := chart.Style{Font: font, FontSize: 12, FontColor: chart.ColorBlack}
		lines := strings.Split(opts.Title, "\n")
		for i, line := range lines {
			chart.Draw.Text(r, line, left, top-30-(len(lines)-1-i)*16, title)
		}
	}
	if opts.Footnote != "" {
		chart.Draw.Text(r, opts.Footnote, 20, opts.Height-20, text)
	}

	if err := r.Save(w); err != nil {
		return fmt.Errorf("failed to encode heatmap: %w", err)
	}
	return nil
}

// WritePNG renders m to a PNG file at path.
func WritePNG(path string, m mat.Symmetric, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create heatmap file: %w", err)
	}
	defer f.Close()

	if err := Render(f, m, opts); err != nil {
		return err
	}

	slog.Info("Wrote heatmap", "path", path, "solutions", m.SymmetricDim())
	return nil
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func formatTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
