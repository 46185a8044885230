package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/snowberryfield/printemps/internal/batch"
)

// Recorder persists a batch as it runs: the manifest is rewritten after
// every run and each result is appended to records.jsonl.
type Recorder struct {
	store    *FSStore
	manifest *Manifest
	records  *RecordWriter
}

// NewRecorder saves the manifest in the running state and opens its records
// file for writing.
func NewRecorder(fs *FSStore, manifest *Manifest) (*Recorder, error) {
	manifest.State = StateRunning
	if err := fs.SaveManifest(manifest); err != nil {
		return nil, err
	}

	records, err := NewRecordWriter(fs.BaseDir(), manifest.BatchID, false)
	if err != nil {
		return nil, err
	}

	return &Recorder{store: fs, manifest: manifest, records: records}, nil
}

// Manifest returns the manifest being maintained.
func (r *Recorder) Manifest() *Manifest {
	return r.manifest
}

// Record appends the result of run index and advances the manifest.
func (r *Recorder) Record(index int, result batch.Result) error {
	instance := ""
	if index < len(r.manifest.Instances) {
		instance = r.manifest.Instances[index]
	}

	entry := RecordEntry{
		Index:     index,
		Instance:  instance,
		Timestamp: time.Now(),
		Result:    result,
	}
	if err := r.records.Write(entry); err != nil {
		return err
	}

	r.manifest.Completed = index + 1
	if err := r.store.SaveManifest(r.manifest); err != nil {
		return fmt.Errorf("failed to update manifest: %w", err)
	}
	return nil
}

// Finish stores the terminal state and closes the records file.
func (r *Recorder) Finish(state State, runErr error) error {
	r.manifest.Finish(state, runErr)

	saveErr := r.store.SaveManifest(r.manifest)
	closeErr := r.records.Close()

	slog.Info("Batch finished",
		"batch_id", r.manifest.BatchID,
		"state", state,
		"completed", r.manifest.Completed,
		"total", len(r.manifest.Instances))

	return errors.Join(saveErr, closeErr)
}

// StateFor maps the error returned by batch.Execute to a terminal state.
func StateFor(err error) State {
	switch {
	case err == nil:
		return StateCompleted
	case errors.Is(err, context.Canceled):
		return StateCancelled
	default:
		return StateFailed
	}
}
