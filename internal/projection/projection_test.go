package projection

import (
	"bytes"
	"errors"
	"image/png"
	"io"
	"math"
	"path/filepath"
	"testing"

	"github.com/snowberryfield/printemps/internal/opt"
	"github.com/snowberryfield/printemps/internal/solution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func euclidean(points []Point) *mat.SymDense {
	m := mat.NewSymDense(len(points), nil)
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			m.SetSym(i, j, math.Hypot(points[i].X-points[j].X, points[i].Y-points[j].Y))
		}
	}
	return m
}

func TestClassicalMDS_RecoversPlanarDistances(t *testing.T) {
	square := []Point{{0, 0}, {3, 0}, {0, 4}, {3, 4}}
	m := euclidean(square)

	got, err := ClassicalMDS(m)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.InDelta(t, 0, Stress(m, got), 1e-9)
}

func TestClassicalMDS_Collinear(t *testing.T) {
	m := mat.NewSymDense(3, []float64{
		0, 1, 2,
		1, 0, 1,
		2, 1, 0,
	})

	got, err := ClassicalMDS(m)
	require.NoError(t, err)
	assert.InDelta(t, 0, Stress(m, got), 1e-9)
}

func TestClassicalMDS_DegenerateInputs(t *testing.T) {
	got, err := ClassicalMDS(&mat.SymDense{})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ClassicalMDS(mat.NewSymDense(1, nil))
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 0}}, got)

	got, err = ClassicalMDS(mat.NewSymDense(3, nil))
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 0}, {0, 0}, {0, 0}}, got)
}

type fixedOptimizer struct {
	position []float64
	err      error
}

func (f fixedOptimizer) Minimize(p opt.Problem) (opt.Result, error) {
	if f.err != nil {
		return opt.Result{}, f.err
	}
	return opt.Result{Position: f.position, Cost: p.Objective(f.position), Evaluations: 1}, nil
}

func TestRefine_AppliesImprovingOffsets(t *testing.T) {
	m := mat.NewSymDense(2, []float64{0, 2, 2, 0})
	initial := []Point{{0, 0}, {1, 0}}

	got, err := Refine(m, initial, fixedOptimizer{position: []float64{0, 0, 1, 0}})
	require.NoError(t, err)
	assert.Equal(t, []Point{{0, 0}, {2, 0}}, got)
	assert.InDelta(t, 0, Stress(m, got), 1e-12)
}

func TestRefine_KeepsInitialWhenNotImproved(t *testing.T) {
	m := mat.NewSymDense(2, []float64{0, 2, 2, 0})
	initial := []Point{{0, 0}, {2, 0}}

	got, err := Refine(m, initial, fixedOptimizer{position: []float64{5, 5, -5, -5}})
	require.NoError(t, err)
	assert.Equal(t, initial, got)
}

func TestRefine_Errors(t *testing.T) {
	m := mat.NewSymDense(2, []float64{0, 2, 2, 0})

	_, err := Refine(m, []Point{{0, 0}}, fixedOptimizer{})
	assert.Error(t, err)

	sentinel := errors.New("boom")
	_, err = Refine(m, []Point{{0, 0}, {1, 0}}, fixedOptimizer{err: sentinel})
	assert.ErrorIs(t, err, sentinel)
}

func TestRefine_WithMayflyNeverWorsens(t *testing.T) {
	m := mat.NewSymDense(3, []float64{
		0, 1, 1,
		1, 0, 1,
		1, 1, 0,
	})
	initial := []Point{{0, 0}, {0.5, 0}, {1, 0}}

	got, err := Refine(m, initial, opt.NewMayfly(20, 20, 1))
	require.NoError(t, err)
	assert.LessOrEqual(t, Stress(m, got), Stress(m, initial))
}

func TestContributions_GroupsByBestObjective(t *testing.T) {
	records := []solution.Record{
		{Objective: 5, Variables: solution.NewSparse(map[string]float64{"x": 1, "y": 0})},
		{Objective: 1, Variables: solution.NewSparse(map[string]float64{"y": 2})},
		{Objective: 3, Variables: solution.NewSparse(map[string]float64{"x": 1, "z": 1})},
	}

	got := Contributions(records)
	require.Len(t, got, 3)
	assert.Equal(t, "y", got[0].Key)
	assert.Equal(t, []float64{1}, got[0].Objectives)
	assert.Equal(t, "x", got[1].Key)
	assert.Equal(t, []float64{5, 3}, got[1].Objectives)
	assert.Equal(t, "z", got[2].Key)
}

func TestContributions_DenseUsesIndexKeys(t *testing.T) {
	records := []solution.Record{
		{Objective: 2, Variables: solution.Dense{0, 1, 1}},
		{Objective: 2, Variables: solution.Dense{1, 0, 1}},
	}

	got := Contributions(records)
	require.Len(t, got, 3)
	assert.Equal(t, "0", got[0].Key)
	assert.Equal(t, "1", got[1].Key)
	assert.Equal(t, "2", got[2].Key)
	assert.Len(t, got[2].Objectives, 2)
}

func TestRenderScatter_ProducesPNG(t *testing.T) {
	var buf bytes.Buffer
	err := RenderScatter(&buf, []Point{{0, 0}, {1, 1}, {2, 0}}, []float64{1, 2, 3},
		PlotOptions{Title: "layout", Width: 320, Height: 240})
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestRenderScatter_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderScatter(&buf, nil, nil, PlotOptions{}))
	assert.Error(t, RenderScatter(&buf, []Point{{0, 0}}, []float64{1, 2}, PlotOptions{}))
}

func TestRenderContributions_WritesFile(t *testing.T) {
	groups := []Contribution{{Key: "x", Objectives: []float64{1, 2}}, {Key: "y", Objectives: []float64{3}}}
	path := filepath.Join(t.TempDir(), "contribution.png")

	err := WriteFile(path, func(w io.Writer) error {
		return RenderContributions(w, groups, PlotOptions{})
	})
	require.NoError(t, err)
	assert.FileExists(t, path)

	var buf bytes.Buffer
	assert.Error(t, RenderContributions(&buf, nil, PlotOptions{}))
}
