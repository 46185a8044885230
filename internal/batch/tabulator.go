package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

// CSVHeader names every flattened Result field in column order.
var CSVHeader = []string{
	"name",
	"number_of_variables",
	"number_of_constraints",
	"is_found_feasible_solution",
	"objective",
	"total_violation",
	"elapsed_time",
	"number_of_lagrange_dual_iterations",
	"number_of_local_search_iterations",
	"number_of_tabu_search_iterations",
	"number_of_tabu_search_loops",
}

// Tabulator accumulates results in invocation order.
type Tabulator struct {
	mu      sync.Mutex
	results []Result
}

// Record appends the result of one run and returns it.
func (t *Tabulator) Record(status Status, incumbent Incumbent) Result {
	r := NewResult(status, incumbent)
	t.mu.Lock()
	t.results = append(t.results, r)
	t.mu.Unlock()
	return r
}

// Len is the number of recorded runs.
func (t *Tabulator) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.results)
}

// Finalize returns a copy of the results in the order they were recorded.
func (t *Tabulator) Finalize() []Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Result, len(t.results))
	copy(out, t.results)
	return out
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []Result) error {
	if results == nil {
		results = []Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}

// CSVRow flattens r in CSVHeader order.
func CSVRow(r Result) []string {
	c := r.Computed
	return []string{
		r.Instance.Name,
		strconv.Itoa(r.Instance.NumberOfVariables),
		strconv.Itoa(r.Instance.NumberOfConstraints),
		strconv.FormatBool(bool(c.IsFoundFeasibleSolution)),
		c.Objective.String(),
		c.TotalViolation.String(),
		c.ElapsedTime.String(),
		strconv.Itoa(c.NumberOfLagrangeDualIterations),
		strconv.Itoa(c.NumberOfLocalSearchIterations),
		strconv.Itoa(c.NumberOfTabuSearchIterations),
		strconv.Itoa(c.NumberOfTabuSearchLoops),
	}
}

// WriteCSV writes a header line followed by one row per result.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range results {
		if err := cw.Write(CSVRow(r)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFiles writes the JSON and CSV summaries. An empty path skips that
// format.
func WriteFiles(jsonPath, csvPath string, results []Result) error {
	if jsonPath != "" {
		if err := writeFile(jsonPath, func(w io.Writer) error { return WriteJSON(w, results) }); err != nil {
			return err
		}
	}
	if csvPath != "" {
		if err := writeFile(csvPath, func(w io.Writer) error { return WriteCSV(w, results) }); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
