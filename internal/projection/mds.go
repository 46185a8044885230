// Package projection lays solutions out in the plane from their distance
// matrix and plots the result.
package projection

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/mds"
)

// Point is a 2-D coordinate.
type Point struct {
	X, Y float64
}

// ClassicalMDS embeds the matrix in two dimensions with Torgerson scaling.
// Coincident inputs collapse onto the origin. When fewer than two positive
// eigenvalues exist the missing axis is zero.
func ClassicalMDS(m mat.Symmetric) ([]Point, error) {
	n := m.SymmetricDim()
	points := make([]Point, n)
	if n < 2 || maxEntry(m) == 0 {
		return points, nil
	}

	var coords mat.Dense
	k, _ := mds.TorgersonScaling(&coords, nil, m)
	if k == 0 || coords.IsEmpty() {
		return nil, fmt.Errorf("failed to scale %d points: eigen decomposition did not converge", n)
	}

	for i := range points {
		points[i].X = coords.At(i, 0)
		if k > 1 {
			points[i].Y = coords.At(i, 1)
		}
	}
	return points, nil
}

// Stress is the raw Kruskal stress of points against m:
// the sum over pairs of (|p_i - p_j| - d_ij)^2.
func Stress(m mat.Symmetric, points []Point) float64 {
	var s float64
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			d := math.Hypot(points[i].X-points[j].X, points[i].Y-points[j].Y) - m.At(i, j)
			s += d * d
		}
	}
	return s
}

func maxEntry(m mat.Symmetric) float64 {
	var max float64
	n := m.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if v := m.At(i, j); v > max {
				max = v
			}
		}
	}
	return max
}
