package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MinPopulation is the smallest population mayfly accepts.
const MinPopulation = 20

// MayflyAdapter wraps the external Mayfly library to conform to our Optimizer interface
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a new Mayfly optimizer adapter. Population sizes below
// MinPopulation are raised to it.
func NewMayfly(maxIters, popSize int, seed int64) *MayflyAdapter {
	if popSize < MinPopulation {
		popSize = MinPopulation
	}
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Minimize runs Mayfly on p with a generator seeded from the adapter seed.
func (m *MayflyAdapter) Minimize(p Problem) (Result, error) {
	if p.Dim <= 0 {
		return Result{}, fmt.Errorf("problem dimension must be positive, got %d", p.Dim)
	}
	if p.Objective == nil {
		return Result{}, fmt.Errorf("objective function is required")
	}
	if !(p.Lower < p.Upper) {
		return Result{}, fmt.Errorf("invalid bounds [%g, %g]", p.Lower, p.Upper)
	}

	evaluations := 0
	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = func(x []float64) float64 {
		evaluations++
		return p.Objective(x)
	}
	config.ProblemSize = p.Dim
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = p.Lower
	config.UpperBound = p.Upper
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return Result{}, fmt.Errorf("mayfly optimization failed: %w", err)
	}

	position := make([]float64, len(result.GlobalBest.Position))
	copy(position, result.GlobalBest.Position)

	return Result{
		Position:    position,
		Cost:        result.GlobalBest.Cost,
		Evaluations: evaluations,
	}, nil
}
