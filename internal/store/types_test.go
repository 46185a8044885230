package store

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/snowberryfield/printemps/internal/batch"
)

func TestManifest_JSONFieldNames(t *testing.T) {
	m := createTestManifest("json")
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	for _, key := range []string{`"batchId"`, `"executable"`, `"instances"`, `"state"`, `"completed"`, `"startTime"`, `"system"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected %s in %s", key, data)
		}
	}
	if strings.Contains(string(data), `"endTime"`) {
		t.Error("endTime should be omitted while running")
	}
}

func TestManifest_Validate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(m *Manifest)
		field  string
	}{
		{"valid", func(m *Manifest) {}, ""},
		{"empty id", func(m *Manifest) { m.BatchID = "" }, "BatchID"},
		{"empty executable", func(m *Manifest) { m.Executable = "" }, "Executable"},
		{"no instances", func(m *Manifest) { m.Instances = nil }, "Instances"},
		{"unknown state", func(m *Manifest) { m.State = "paused" }, "State"},
		{"negative completed", func(m *Manifest) { m.Completed = -1 }, "Completed"},
		{"completed beyond total", func(m *Manifest) { m.Completed = 3 }, "Completed"},
		{"zero start", func(m *Manifest) { m.StartTime = time.Time{} }, "StartTime"},
		{"end before start", func(m *Manifest) {
			end := m.StartTime.Add(-time.Second)
			m.EndTime = &end
		}, "EndTime"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := createTestManifest("validate")
			tc.modify(m)

			err := m.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("Expected valid manifest, got %v", err)
				}
				return
			}

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("Expected field %s, got %s", tc.field, ve.Field)
			}
		})
	}
}

func TestNewManifest(t *testing.T) {
	runner := &batch.Runner{Executable: "solver", OptionFile: "opt.json", Separate: true}
	m := NewManifest("new", runner, []string{"a.mps"}, batch.SystemInfo{Platform: "linux"})

	if m.State != StatePending {
		t.Errorf("Expected pending state, got %s", m.State)
	}
	if !m.Separate || m.OptionFile != "opt.json" || m.Executable != "solver" {
		t.Errorf("Runner settings not copied: %+v", m)
	}
	if m.StartTime.IsZero() {
		t.Error("Expected StartTime to be set")
	}
	if err := m.Validate(); err != nil {
		t.Errorf("New manifest should validate: %v", err)
	}
}

func TestManifest_FinishAndInfo(t *testing.T) {
	m := createTestManifest("finish")
	m.Finish(StateFailed, errors.New("solver exited with code 1"))

	if !m.State.Finished() {
		t.Error("Failed state should be finished")
	}
	if m.Error != "solver exited with code 1" {
		t.Errorf("Unexpected error text %q", m.Error)
	}

	info := m.ToInfo()
	if info.BatchID != "finish" || info.Total != 2 || info.Completed != 1 || info.State != StateFailed {
		t.Errorf("Unexpected info %+v", info)
	}
	if info.EndTime == nil {
		t.Error("Expected EndTime in info")
	}
}

func TestState(t *testing.T) {
	if StateRunning.Finished() || StatePending.Finished() {
		t.Error("Running and pending are not finished")
	}
	if !StateCancelled.Finished() || !StateCompleted.Finished() {
		t.Error("Cancelled and completed are finished")
	}
	if State("bogus").Valid() {
		t.Error("Unknown state should be invalid")
	}
}
