package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// FSStore implements the Store interface using filesystem-based persistence.
// Batches are stored in a directory structure: <baseDir>/batches/<batchID>/
//
// Thread-safety: manifests are replaced with an atomic rename, so readers
// never observe a partially written file.
type FSStore struct {
	baseDir string // Root directory for all batch data (e.g., "./data")
}

// NewFSStore creates a new filesystem-based store.
// The baseDir will be created if it doesn't exist.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FSStore{
		baseDir: baseDir,
	}, nil
}

// BaseDir returns the root directory of the store.
func (fs *FSStore) BaseDir() string {
	return fs.baseDir
}

// BatchDir returns the directory path for a given batch ID.
func (fs *FSStore) BatchDir(batchID string) string {
	return batchDir(fs.baseDir, batchID)
}

func batchDir(baseDir, batchID string) string {
	return filepath.Join(baseDir, "batches", batchID)
}

// manifestPath returns the path to the manifest.json file for a batch.
func (fs *FSStore) manifestPath(batchID string) string {
	return filepath.Join(fs.BatchDir(batchID), "manifest.json")
}

// SaveManifest atomically saves the manifest of a batch.
// Uses temp file + rename pattern to ensure atomicity.
func (fs *FSStore) SaveManifest(manifest *Manifest) error {
	if manifest == nil {
		return fmt.Errorf("manifest cannot be nil")
	}
	if err := manifest.Validate(); err != nil {
		return fmt.Errorf("refusing to save manifest: %w", err)
	}
	batchID := manifest.BatchID

	if err := os.MkdirAll(fs.BatchDir(batchID), 0755); err != nil {
		return fmt.Errorf("failed to create batch directory: %w", err)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}

	// Write to temporary file first (atomic pattern)
	tempPath := fs.manifestPath(batchID) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp manifest file: %w", err)
	}

	finalPath := fs.manifestPath(batchID)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename manifest file: %w", err)
	}

	slog.Debug("Manifest saved", "batch_id", batchID, "state", manifest.State, "completed", manifest.Completed)
	return nil
}

// LoadManifest retrieves the manifest for the given batch.
func (fs *FSStore) LoadManifest(batchID string) (*Manifest, error) {
	if batchID == "" {
		return nil, fmt.Errorf("batchID cannot be empty")
	}

	path := fs.manifestPath(batchID)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{BatchID: batchID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to deserialize manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", batchID, err)
	}

	return &manifest, nil
}

// ListBatches returns summaries of all stored batches, newest first.
func (fs *FSStore) ListBatches() ([]BatchInfo, error) {
	batchesDir := filepath.Join(fs.baseDir, "batches")

	entries, err := os.ReadDir(batchesDir)
	if os.IsNotExist(err) {
		return []BatchInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read batches directory: %w", err)
	}

	infos := []BatchInfo{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		batchID := entry.Name()
		if _, err := os.Stat(fs.manifestPath(batchID)); os.IsNotExist(err) {
			continue
		}

		manifest, err := fs.LoadManifest(batchID)
		if err != nil {
			slog.Warn("Failed to load manifest for listing", "batch_id", batchID, "error", err)
			continue
		}

		infos = append(infos, manifest.ToInfo())
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].StartTime.After(infos[j].StartTime)
	})

	slog.Debug("Listed batches", "count", len(infos))
	return infos, nil
}

// DeleteBatch removes the batch directory and everything in it.
func (fs *FSStore) DeleteBatch(batchID string) error {
	if batchID == "" {
		return fmt.Errorf("batchID cannot be empty")
	}

	dir := fs.BatchDir(batchID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{BatchID: batchID}
	} else if err != nil {
		return fmt.Errorf("failed to stat batch directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove batch directory: %w", err)
	}

	slog.Debug("Batch deleted", "batch_id", batchID, "path", dir)
	return nil
}
