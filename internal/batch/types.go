// Package batch runs the solver over a list of instances and tabulates what
// each run reports.
package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// NotAvailable is how the solver writes a value it could not compute.
const NotAvailable = "N/A"

// Number is a float that may be reported as "N/A", which decodes to NaN.
type Number float64

// UnmarshalJSON accepts a JSON number, a numeric string or "N/A".
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == NotAvailable || s == "" {
			*n = Number(math.NaN())
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Number(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

// MarshalJSON writes NaN and infinities back as "N/A".
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid() {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(float64(n))
}

// Valid reports whether n holds a finite value.
func (n Number) Valid() bool {
	v := float64(n)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// String formats n for CSV output.
func (n Number) String() string {
	if !n.Valid() {
		return NotAvailable
	}
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// Flag is a boolean the solver may write as true/false or 1/0.
type Flag bool

// UnmarshalJSON accepts booleans and numbers (non-zero is true).
func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid flag %s", data)
	}
	*f = v != 0
	return nil
}

// Status is the subset of status.json the tabulator reads.
type Status struct {
	Name                           string `json:"name"`
	NumberOfVariables              int    `json:"number_of_variables"`
	NumberOfConstraints            int    `json:"number_of_constraints"`
	IsFoundFeasibleSolution        Flag   `json:"is_found_feasible_solution"`
	ElapsedTime                    Number `json:"elapsed_time"`
	NumberOfLagrangeDualIterations int    `json:"number_of_lagrange_dual_iterations"`
	NumberOfLocalSearchIterations  int    `json:"number_of_local_search_iterations"`
	NumberOfTabuSearchIterations   int    `json:"number_of_tabu_search_iterations"`
	NumberOfTabuSearchLoops        int    `json:"number_of_tabu_search_loops"`
}

// Incumbent is the subset of incumbent.json the tabulator reads.
type Incumbent struct {
	Objective      Number `json:"objective"`
	TotalViolation Number `json:"total_violation"`
}

// Instance identifies the problem a run solved.
type Instance struct {
	Name                string `json:"name"`
	NumberOfVariables   int    `json:"number_of_variables"`
	NumberOfConstraints int    `json:"number_of_constraints"`
}

// Computed holds what a run achieved.
type Computed struct {
	IsFoundFeasibleSolution        Flag   `json:"is_found_feasible_solution"`
	Objective                      Number `json:"objective"`
	TotalViolation                 Number `json:"total_violation"`
	ElapsedTime                    Number `json:"elapsed_time"`
	NumberOfLagrangeDualIterations int    `json:"number_of_lagrange_dual_iterations"`
	NumberOfLocalSearchIterations  int    `json:"number_of_local_search_iterations"`
	NumberOfTabuSearchIterations   int    `json:"number_of_tabu_search_iterations"`
	NumberOfTabuSearchLoops        int    `json:"number_of_tabu_search_loops"`
}

// Result is one tabulated solver run.
type Result struct {
	Instance Instance `json:"instance"`
	Computed Computed `json:"computed"`
}

// NewResult combines a status and an incumbent into a Result.
func NewResult(status Status, incumbent Incumbent) Result {
	return Result{
		Instance: Instance{
			Name:                status.Name,
			NumberOfVariables:   status.NumberOfVariables,
			NumberOfConstraints: status.NumberOfConstraints,
		},
		Computed: Computed{
			IsFoundFeasibleSolution:        status.IsFoundFeasibleSolution,
			Objective:                      incumbent.Objective,
			TotalViolation:                 incumbent.TotalViolation,
			ElapsedTime:                    status.ElapsedTime,
			NumberOfLagrangeDualIterations: status.NumberOfLagrangeDualIterations,
			NumberOfLocalSearchIterations:  status.NumberOfLocalSearchIterations,
			NumberOfTabuSearchIterations:   status.NumberOfTabuSearchIterations,
			NumberOfTabuSearchLoops:        status.NumberOfTabuSearchLoops,
		},
	}
}
