// Package trend reads the per-iteration tabu search log written by the
// solver and assembles it into a dashboard of charts.
package trend

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// LegacyColumns is the layout written by the original trend logger.
var LegacyColumns = []string{
	"iteration",
	"elapsed_time",
	"local_objective",
	"local_violation",
	"global_objective",
	"global_violation",
	"intensity",
	"update_status",
	"employing_local_augmented_solution_flag",
	"employing_global_augmented_solution_flag",
	"employing_previous_solution_flag",
	"is_enabled_penalty_coefficient_relaxing",
	"is_enabled_penalty_coefficient_tightening",
	"is_enabled_forcibly_initial_modification",
	"penalty_coefficient_relaxing_rate",
	"penalty_coefficient_tightening_rate",
	"number_of_initial_modification",
	"initial_tabu_tenure",
}

// ControllerColumns is the layout written by the tabu search controller.
var ControllerColumns = []string{
	"iteration",
	"elapsed_time",
	"local_objective",
	"local_violation",
	"global_objective",
	"global_violation",
	"primal_intensity",
	"dual_intensity",
	"performance",
	"update_status",
	"employing_local_augmented_solution_flag",
	"employing_global_augmented_solution_flag",
	"employing_previous_solution_flag",
	"is_enabled_penalty_coefficient_relaxing",
	"is_enabled_penalty_coefficient_tightening",
	"penalty_coefficient_reset_flag",
	"penalty_coefficient_relaxing_rate",
	"penalty_coefficient_tightening_rate",
	"is_enabled_forcibly_initial_modification",
	"number_of_initial_modification",
	"initial_tabu_tenure",
}

// ParseError reports a malformed line in a trend file.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trend line %d: %s", e.Line, e.Reason)
}

// Table is a parsed trend file. Columns are addressed by header name.
type Table struct {
	Name                string
	NumberOfVariables   int
	NumberOfConstraints int
	Columns             []string

	data map[string][]float64
	rows int
}

// Rows is the number of data rows.
func (t *Table) Rows() int {
	return t.rows
}

// Column returns the first of names present in the table.
func (t *Table) Column(names ...string) ([]float64, bool) {
	for _, name := range names {
		if values, ok := t.data[name]; ok {
			return values, true
		}
	}
	return nil, false
}

// Load opens and parses a trend file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trend file: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	slog.Debug("Loaded trend file", "path", path, "instance", t.Name, "rows", t.Rows(), "columns", len(t.Columns))
	return t, nil
}

// Parse reads a trend table. Without a column header line the layout is
// inferred from the number of fields in the first row.
func Parse(r io.Reader) (*Table, error) {
	t := &Table{data: make(map[string][]float64)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "#") {
			if err := t.parseComment(line, strings.TrimSpace(text[1:])); err != nil {
				return nil, err
			}
			continue
		}

		fields := strings.Fields(text)
		if t.Columns == nil {
			switch len(fields) {
			case len(LegacyColumns):
				t.Columns = LegacyColumns
			case len(ControllerColumns):
				t.Columns = ControllerColumns
			default:
				return nil, &ParseError{Line: line, Reason: fmt.Sprintf("no column header and %d fields match no known layout", len(fields))}
			}
		}
		if len(fields) != len(t.Columns) {
			return nil, &ParseError{Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", len(t.Columns), len(fields))}
		}

		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, &ParseError{Line: line, Reason: fmt.Sprintf("column %s: invalid number %q", t.Columns[i], field)}
			}
			t.data[t.Columns[i]] = append(t.data[t.Columns[i]], v)
		}
		t.rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trend data: %w", err)
	}

	if t.rows == 0 {
		return nil, fmt.Errorf("trend file has no data rows")
	}
	if _, ok := t.data["iteration"]; !ok {
		return nil, fmt.Errorf("trend file has no iteration column")
	}
	return t, nil
}

func (t *Table) parseComment(line int, text string) error {
	key, value, found := strings.Cut(text, ":")
	if found {
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "instance_name":
			t.Name = value
		case "number_of_variables":
			n, err := strconv.Atoi(value)
			if err != nil {
				return &ParseError{Line: line, Reason: "invalid number_of_variables"}
			}
			t.NumberOfVariables = n
		case "number_of_constraints":
			n, err := strconv.Atoi(value)
			if err != nil {
				return &ParseError{Line: line, Reason: "invalid number_of_constraints"}
			}
			t.NumberOfConstraints = n
		}
		return nil
	}

	fields := strings.Fields(text)
	if len(fields) > 0 && fields[0] == "iteration" {
		if t.rows > 0 {
			return &ParseError{Line: line, Reason: "column header after data rows"}
		}
		t.Columns = fields
	}
	return nil
}
