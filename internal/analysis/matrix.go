package analysis

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/snowberryfield/printemps/internal/solution"
	"gonum.org/v1/gonum/mat"
)

// BuildMatrix computes the all-pairs Manhattan distance matrix for records.
//
// Each unordered pair is computed once. Rows are distributed over a worker
// pool; every worker writes a disjoint set of cells. An empty input yields an
// empty matrix whose SymmetricDim is zero.
func BuildMatrix(records []solution.Record) (*mat.SymDense, error) {
	n := len(records)
	if n == 0 {
		return &mat.SymDense{}, nil
	}

	m := mat.NewSymDense(n, nil)

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}

	rows := make(chan int)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rows {
				for j := i + 1; j < n; j++ {
					d, err := solution.CheckedDistance(records[i].Variables, records[j].Variables)
					if err != nil {
						mu.Lock()
						if firstErr == nil {
							firstErr = fmt.Errorf("failed to compute distance (%d, %d): %w", i, j, err)
						}
						mu.Unlock()
						break
					}
					m.SetSym(i, j, d)
				}
			}
		}()
	}

	for i := 0; i < n; i++ {
		rows <- i
	}
	close(rows)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return m, nil
}

// Size returns the dimension of m, treating an empty SymDense as zero.
func Size(m mat.Symmetric) int {
	if m == nil {
		return 0
	}
	if sd, ok := m.(*mat.SymDense); ok && sd.IsEmpty() {
		return 0
	}
	return m.SymmetricDim()
}

// MaxDistance returns the largest off-diagonal entry of m.
func MaxDistance(m mat.Symmetric) float64 {
	n := Size(m)
	var max float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if d := m.At(i, j); d > max {
				max = d
			}
		}
	}
	return max
}
