package store

// Store defines the interface for batch persistence operations.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return ErrNotFound if the batch doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveManifest atomically writes the manifest of a batch, replacing
	// any earlier version.
	SaveManifest(manifest *Manifest) error

	// LoadManifest retrieves the manifest for the given batch.
	// Returns ErrNotFound if no manifest exists for this batchID.
	LoadManifest(batchID string) (*Manifest, error)

	// ListBatches returns summaries of all stored batches, newest first.
	ListBatches() ([]BatchInfo, error)

	// DeleteBatch removes the batch directory, including manifest.json
	// and records.jsonl.
	DeleteBatch(batchID string) error
}

// ErrNotFound is returned when a requested batch does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing batch.
type NotFoundError struct {
	BatchID string
}

func (e *NotFoundError) Error() string {
	if e.BatchID != "" {
		return "batch not found: " + e.BatchID
	}
	return "batch not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
