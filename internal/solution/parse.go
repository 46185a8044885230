package solution

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Set is a parsed feasible-solution archive.
type Set struct {
	Version             string
	Name                string
	NumberOfVariables   int
	NumberOfConstraints int
	Solutions           []Record
}

type rawSet struct {
	Version             json.RawMessage `json:"version"`
	Name                string          `json:"name"`
	NumberOfVariables   int             `json:"number_of_variables"`
	NumberOfConstraints int             `json:"number_of_constraints"`
	Solutions           []rawRecord     `json:"solutions"`
}

type rawRecord struct {
	IsFeasible     *bool           `json:"is_feasible"`
	Objective      float64         `json:"objective"`
	TotalViolation *float64        `json:"total_violation"`
	Variables      json.RawMessage `json:"variables"`
}

// Load reads a solution archive from path.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open solution file: %w", err)
	}
	defer f.Close()

	set, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	slog.Debug("Loaded solution set", "path", path, "name", set.Name, "solutions", len(set.Solutions))
	return set, nil
}

// Decode parses a solution archive. Variables given as a JSON array become
// Dense, variables given as an object become Sparse. All solutions must use
// the same representation.
func Decode(r io.Reader) (*Set, error) {
	var raw rawSet
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode solution set: %w", err)
	}

	set := &Set{
		Version:             versionString(raw.Version),
		Name:                raw.Name,
		NumberOfVariables:   raw.NumberOfVariables,
		NumberOfConstraints: raw.NumberOfConstraints,
		Solutions:           make([]Record, 0, len(raw.Solutions)),
	}

	for i, rs := range raw.Solutions {
		vars, err := decodeVariables(rs.Variables)
		if err != nil {
			return nil, fmt.Errorf("solution %d: %w", i, err)
		}

		rec := Record{
			Objective: rs.Objective,
			Feasible:  true,
			Variables: vars,
		}
		if rs.IsFeasible != nil {
			rec.Feasible = *rs.IsFeasible
		}
		if rs.TotalViolation != nil {
			rec.Violation = *rs.TotalViolation
			rec.HasViolation = true
		}
		set.Solutions = append(set.Solutions, rec)
	}

	if err := checkConsistent(set.Solutions); err != nil {
		return nil, err
	}
	return set, nil
}

func decodeVariables(data json.RawMessage) (Vector, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("missing variables")
	}

	switch trimmed[0] {
	case '[':
		var dense []float64
		if err := json.Unmarshal(trimmed, &dense); err != nil {
			return nil, fmt.Errorf("failed to decode dense variables: %w", err)
		}
		return Dense(dense), nil
	case '{':
		var m map[string]float64
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return nil, fmt.Errorf("failed to decode sparse variables: %w", err)
		}
		return NewSparse(m), nil
	default:
		return nil, fmt.Errorf("variables must be an array or an object")
	}
}

// versionString accepts the version as a JSON string or number.
func versionString(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(data))
}
