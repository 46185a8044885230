package solution

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDimensionMismatch is returned when two dense vectors differ in length.
	ErrDimensionMismatch = errors.New("dense vectors differ in length")

	// ErrMixedRepresentation is returned when dense and sparse assignments
	// are compared or mixed in one set.
	ErrMixedRepresentation = errors.New("mixed dense and sparse variable representations")
)

// Vector is a variable assignment, either Dense or Sparse.
type Vector interface {
	Len() int
	Each(fn func(key string, value float64))
}

// Record is one parsed solution.
type Record struct {
	// Objective is the objective function value.
	Objective float64

	// Violation is the total constraint violation when HasViolation is set.
	Violation    float64
	HasViolation bool

	// Feasible mirrors the is_feasible flag of the archive file.
	Feasible bool

	// Variables holds either a Dense or a Sparse assignment.
	Variables Vector
}

// Order selects the objective sort direction.
type Order int

const (
	Ascending Order = iota
	Descending
)

// String returns the order name.
func (o Order) String() string {
	if o == Descending {
		return "descending"
	}
	return "ascending"
}

// Sort returns a copy of records stably sorted by objective.
func Sort(records []Record, order Order) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		if order == Descending {
			return sorted[i].Objective > sorted[j].Objective
		}
		return sorted[i].Objective < sorted[j].Objective
	})
	return sorted
}

// Objectives extracts the objective values in record order.
func Objectives(records []Record) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Objective
	}
	return out
}

// checkConsistent verifies that all records share one representation and,
// for dense records, one length.
func checkConsistent(records []Record) error {
	if len(records) == 0 {
		return nil
	}

	switch first := records[0].Variables.(type) {
	case Dense:
		for i, r := range records[1:] {
			d, ok := r.Variables.(Dense)
			if !ok {
				return fmt.Errorf("solution %d: %w", i+1, ErrMixedRepresentation)
			}
			if len(d) != len(first) {
				return fmt.Errorf("solution %d has %d variables, expected %d: %w", i+1, len(d), len(first), ErrDimensionMismatch)
			}
		}
	case Sparse:
		for i, r := range records[1:] {
			if _, ok := r.Variables.(Sparse); !ok {
				return fmt.Errorf("solution %d: %w", i+1, ErrMixedRepresentation)
			}
		}
	default:
		return fmt.Errorf("solution 0: unsupported variable type %T", first)
	}
	return nil
}
