package solution

import (
	"fmt"
	"math"
)

// DenseDistance returns the Manhattan distance between two dense vectors.
// It panics if the lengths differ.
func DenseDistance(a, b Dense) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("solution: %v (%d != %d)", ErrDimensionMismatch, len(a), len(b)))
	}

	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// SparseDistance returns the Manhattan distance between two sparse
// assignments over the union of their keys, missing keys counting as zero.
func SparseDistance(a, b Sparse) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.keys) && j < len(b.keys) {
		switch {
		case a.keys[i] < b.keys[j]:
			// only in a
			sum += math.Abs(a.values[i])
			i++
		case a.keys[i] > b.keys[j]:
			// only in b
			sum += math.Abs(b.values[j])
			j++
		default:
			sum += math.Abs(a.values[i] - b.values[j])
			i++
			j++
		}
	}
	for ; i < len(a.keys); i++ {
		sum += math.Abs(a.values[i])
	}
	for ; j < len(b.keys); j++ {
		sum += math.Abs(b.values[j])
	}
	return sum
}

// CheckedDistance returns the Manhattan distance between two assignments of
// the same representation. It reports ErrMixedRepresentation or
// ErrDimensionMismatch instead of panicking.
func CheckedDistance(a, b Vector) (float64, error) {
	switch av := a.(type) {
	case Dense:
		bv, ok := b.(Dense)
		if !ok {
			return 0, ErrMixedRepresentation
		}
		if len(av) != len(bv) {
			return 0, fmt.Errorf("%w (%d != %d)", ErrDimensionMismatch, len(av), len(bv))
		}
		return DenseDistance(av, bv), nil
	case Sparse:
		bv, ok := b.(Sparse)
		if !ok {
			return 0, ErrMixedRepresentation
		}
		return SparseDistance(av, bv), nil
	default:
		return 0, fmt.Errorf("unsupported variable type %T", a)
	}
}

// Distance is CheckedDistance for callers that already guarantee matching
// representations. It panics on a violated precondition.
func Distance(a, b Vector) float64 {
	d, err := CheckedDistance(a, b)
	if err != nil {
		panic("solution: " + err.Error())
	}
	return d
}
