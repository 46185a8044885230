package heatmap

import (
	"bytes"
	"image/png"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestViridis_Endpoints(t *testing.T) {
	if got := Viridis(0); got != viridisStops[0] {
		t.Errorf("Viridis(0) = %v, want %v", got, viridisStops[0])
	}
	if got := Viridis(1); got != viridisStops[len(viridisStops)-1] {
		t.Errorf("Viridis(1) = %v, want last stop", got)
	}
	if got := Viridis(0.25); got.R != viridisStops[1].R || got.G != viridisStops[1].G {
		t.Errorf("Viridis(0.25) = %v, want second stop %v", got, viridisStops[1])
	}
}

func TestDownsample_AveragesBlocks(t *testing.T) {
	m := mat.NewSymDense(4, []float64{
		0, 2, 4, 4,
		2, 0, 4, 4,
		4, 4, 0, 6,
		4, 4, 6, 0,
	})

	grid, step := Downsample(m, 2)
	if step != 2 {
		t.Fatalf("Expected step 2, got %f", step)
	}
	if len(grid) != 2 {
		t.Fatalf("Expected 2x2 grid, got %d rows", len(grid))
	}

	want := [][]float64{{1, 4}, {4, 3}}
	for i := range want {
		for j := range want[i] {
			if grid[i][j] != want[i][j] {
				t.Errorf("grid[%d][%d] = %f, want %f", i, j, grid[i][j], want[i][j])
			}
		}
	}
}

func TestDownsample_SmallMatrixKeepsCells(t *testing.T) {
	m := mat.NewSymDense(3, nil)
	grid, step := Downsample(m, MaxCells)
	if len(grid) != 3 || step != 1 {
		t.Errorf("Expected 3 cells with step 1, got %d cells with step %f", len(grid), step)
	}
}

func TestRender_ProducesPNG(t *testing.T) {
	m := mat.NewSymDense(3, []float64{
		0, 1, 2,
		1, 0, 3,
		2, 3, 0,
	})

	var buf bytes.Buffer
	if err := Render(&buf, m, Options{Title: "distance", Width: 400, Height: 360}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 360 {
		t.Errorf("Expected 400x360 image, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRender_EmptyMatrix(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, &mat.SymDense{}, Options{}); err == nil {
		t.Error("Expected error for empty matrix")
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "distance.png")
	if err := WritePNG(path, mat.NewSymDense(2, []float64{0, 1, 1, 0}), Options{}); err != nil {
		t.Fatalf("WritePNG failed: %v", err)
	}
}
