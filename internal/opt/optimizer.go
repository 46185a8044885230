package opt

// Problem describes a box-bounded minimization.
type Problem struct {
	// Objective is the function to minimize.
	Objective func([]float64) float64
	// Dim is the number of parameters.
	Dim int
	// Lower and Upper bound every parameter.
	Lower, Upper float64
}

// Result is the best point found.
type Result struct {
	Position    []float64
	Cost        float64
	Evaluations int
}

// Optimizer defines an optimization algorithm interface
type Optimizer interface {
	// Minimize searches for the lowest objective value within the bounds.
	Minimize(p Problem) (Result, error)
}
