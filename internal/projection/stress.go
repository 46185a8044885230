package projection

import (
	"fmt"
	"log/slog"

	"github.com/snowberryfield/printemps/internal/opt"
	"gonum.org/v1/gonum/mat"
)

// Refine searches for offsets to the initial layout that lower its stress.
// Each coordinate may move by at most the largest distance in m. The
// initial layout is returned unchanged when the search does not improve it.
func Refine(m mat.Symmetric, initial []Point, optimizer opt.Optimizer) ([]Point, error) {
	n := m.SymmetricDim()
	if len(initial) != n {
		return nil, fmt.Errorf("layout has %d points, matrix has %d", len(initial), n)
	}
	if n < 2 {
		return clonePoints(initial), nil
	}

	bound := maxEntry(m)
	if bound == 0 {
		return clonePoints(initial), nil
	}

	shifted := func(offsets []float64) []Point {
		out := make([]Point, n)
		for i, p := range initial {
			out[i] = Point{X: p.X + offsets[2*i], Y: p.Y + offsets[2*i+1]}
		}
		return out
	}

	result, err := optimizer.Minimize(opt.Problem{
		Objective: func(x []float64) float64 { return Stress(m, shifted(x)) },
		Dim:       2 * n,
		Lower:     -bound,
		Upper:     bound,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refine layout: %w", err)
	}

	before := Stress(m, initial)
	slog.Debug("Stress refinement finished",
		"points", n, "initial_stress", before, "refined_stress", result.Cost, "evaluations", result.Evaluations)

	if result.Cost >= before {
		return clonePoints(initial), nil
	}
	return shifted(result.Position), nil
}

func clonePoints(p []Point) []Point {
	out := make([]Point, len(p))
	copy(out, p)
	return out
}
