package opt

import (
	"math"
	"testing"
)

// Sphere function: f(x) = sum(x_i^2), minimum at origin
func sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func TestMayflyAdapterOnSphere(t *testing.T) {
	optimizer := NewMayfly(100, 20, 42) // maxIters, popSize, seed

	result, err := optimizer.Minimize(Problem{Objective: sphere, Dim: 3, Lower: -10, Upper: 10})
	if err != nil {
		t.Fatalf("Minimize failed: %v", err)
	}

	if len(result.Position) != 3 {
		t.Fatalf("Expected 3 parameters, got %d", len(result.Position))
	}

	// Should converge close to zero
	if result.Cost > 0.1 {
		t.Errorf("Expected cost near 0, got %f", result.Cost)
	}

	for i, v := range result.Position {
		if math.Abs(v) > 1.0 {
			t.Errorf("Parameter %d = %f, expected near 0", i, v)
		}
	}

	if result.Evaluations == 0 {
		t.Error("Expected objective evaluations to be counted")
	}
}

func TestMayflyAdapterDeterministic(t *testing.T) {
	problem := Problem{Objective: sphere, Dim: 2, Lower: -5, Upper: 5}

	r1, err := NewMayfly(50, 20, 123).Minimize(problem)
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	r2, err := NewMayfly(50, 20, 123).Minimize(problem)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if r1.Cost != r2.Cost {
		t.Errorf("Non-deterministic: cost1=%f, cost2=%f", r1.Cost, r2.Cost)
	}
}

func TestMayflyAdapterRaisesPopulation(t *testing.T) {
	m := NewMayfly(10, 5, 1)
	if m.popSize != MinPopulation {
		t.Errorf("Expected population %d, got %d", MinPopulation, m.popSize)
	}
}

func TestMayflyAdapterRejectsInvalidProblems(t *testing.T) {
	m := NewMayfly(10, 20, 1)

	cases := []struct {
		name    string
		problem Problem
	}{
		{"zero dimension", Problem{Objective: sphere, Dim: 0, Lower: -1, Upper: 1}},
		{"nil objective", Problem{Dim: 2, Lower: -1, Upper: 1}},
		{"inverted bounds", Problem{Objective: sphere, Dim: 2, Lower: 1, Upper: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := m.Minimize(tc.problem); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
