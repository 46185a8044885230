package store

import (
	"fmt"
	"time"

	"github.com/snowberryfield/printemps/internal/batch"
)

// State is the lifecycle stage of a batch.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StatePending, StateRunning, StateCompleted, StateFailed, StateCancelled:
		return true
	}
	return false
}

// Finished reports whether no more runs will be recorded.
func (s State) Finished() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Manifest describes a batch: what was run, where, and how far it got.
// Per-run results live next to it in records.jsonl.
type Manifest struct {
	BatchID    string           `json:"batchId"`
	Executable string           `json:"executable"`
	OptionFile string           `json:"optionFile,omitempty"`
	Separate   bool             `json:"separate,omitempty"`
	Instances  []string         `json:"instances"`
	State      State            `json:"state"`
	Completed  int              `json:"completed"`
	StartTime  time.Time        `json:"startTime"`
	EndTime    *time.Time       `json:"endTime,omitempty"`
	Error      string           `json:"error,omitempty"`
	System     batch.SystemInfo `json:"system"`
}

// BatchInfo is the listing view of a manifest.
type BatchInfo struct {
	BatchID    string     `json:"batchId"`
	Executable string     `json:"executable"`
	State      State      `json:"state"`
	Completed  int        `json:"completed"`
	Total      int        `json:"total"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`
}

// NewManifest creates a pending manifest for a batch starting now.
func NewManifest(batchID string, runner *batch.Runner, instances []string, system batch.SystemInfo) *Manifest {
	return &Manifest{
		BatchID:    batchID,
		Executable: runner.Executable,
		OptionFile: runner.OptionFile,
		Separate:   runner.Separate,
		Instances:  instances,
		State:      StatePending,
		StartTime:  time.Now(),
		System:     system,
	}
}

// Finish records the terminal state of the batch.
func (m *Manifest) Finish(state State, err error) {
	now := time.Now()
	m.State = state
	m.EndTime = &now
	if err != nil {
		m.Error = err.Error()
	}
}

// ToInfo converts a manifest to its listing view.
func (m *Manifest) ToInfo() BatchInfo {
	return BatchInfo{
		BatchID:    m.BatchID,
		Executable: m.Executable,
		State:      m.State,
		Completed:  m.Completed,
		Total:      len(m.Instances),
		StartTime:  m.StartTime,
		EndTime:    m.EndTime,
	}
}

// Validate checks that the manifest is internally consistent.
func (m *Manifest) Validate() error {
	if m.BatchID == "" {
		return &ValidationError{Field: "BatchID", Reason: "cannot be empty"}
	}
	if m.Executable == "" {
		return &ValidationError{Field: "Executable", Reason: "cannot be empty"}
	}
	if len(m.Instances) == 0 {
		return &ValidationError{Field: "Instances", Reason: "cannot be empty"}
	}
	if !m.State.Valid() {
		return &ValidationError{Field: "State", Reason: fmt.Sprintf("unknown state %q", m.State)}
	}
	if m.Completed < 0 || m.Completed > len(m.Instances) {
		return &ValidationError{
			Field:  "Completed",
			Reason: fmt.Sprintf("must be between 0 and %d", len(m.Instances)),
		}
	}
	if m.StartTime.IsZero() {
		return &ValidationError{Field: "StartTime", Reason: "cannot be zero"}
	}
	if m.EndTime != nil && m.EndTime.Before(m.StartTime) {
		return &ValidationError{Field: "EndTime", Reason: "cannot precede StartTime"}
	}
	return nil
}

// ErrInvalid matches any *ValidationError with errors.Is.
var ErrInvalid = &ValidationError{}

// ValidationError represents a manifest validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}
