package batch

import (
	"fmt"
	"io"
	"math"
)

const tableRule = "-----+-------------+----------+-------------+-------------+-----------+--------"

// WriteTableHeader prints the console table header.
func WriteTableHeader(w io.Writer) {
	fmt.Fprintln(w, tableRule)
	fmt.Fprintln(w, " no. | name        | feasible |   objective |  known best | violation | time[s]")
	fmt.Fprintln(w, tableRule)
}

// WriteTableRow prints one console table row. Missing values print as NaN.
func WriteTableRow(w io.Writer, index int, r Result, knownBest float64) {
	name := r.Instance.Name
	if runes := []rune(name); len(runes) > 11 {
		name = string(runes[:11])
	}
	feasible := "No"
	if r.Computed.IsFoundFeasibleSolution {
		feasible = "Yes"
	}
	fmt.Fprintf(w, " %03d | %-11s | %-8s | %11.4e | %11.4e | %9.3e | %7.1f\n",
		index,
		name,
		feasible,
		float64(r.Computed.Objective),
		knownBest,
		float64(r.Computed.TotalViolation),
		float64(r.Computed.ElapsedTime),
	)
}

// KnownBest looks up the best known objective for name, NaN when absent.
func KnownBest(known map[string]float64, name string) float64 {
	if v, ok := known[name]; ok {
		return v
	}
	return math.NaN()
}
