package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/snowberryfield/printemps/internal/batch"
)

// setupTestStore creates a temporary directory and returns an FSStore for testing.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	return store, tempDir
}

// createTestManifest creates a manifest with test data.
func createTestManifest(batchID string) *Manifest {
	return &Manifest{
		BatchID:    batchID,
		Executable: "/opt/printemps/mps_solver",
		OptionFile: "option.json",
		Instances:  []string{"instances/a.mps", "instances/b.mps"},
		State:      StateRunning,
		Completed:  1,
		StartTime:  time.Now(),
		System:     batch.SystemInfo{Platform: "ubuntu", CPU: "test cpu", Memory: "16 GB"},
	}
}

func TestNewFSStore(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	if store.BaseDir() != tempDir {
		t.Errorf("BaseDir = %s, want %s", store.BaseDir(), tempDir)
	}

	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		t.Fatal("Base directory was not created")
	}
}

func TestSaveManifest(t *testing.T) {
	store, tempDir := setupTestStore(t)

	batchID := "batch-123"
	if err := store.SaveManifest(createTestManifest(batchID)); err != nil {
		t.Fatalf("SaveManifest failed: %v", err)
	}

	expectedPath := filepath.Join(tempDir, "batches", batchID, "manifest.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Manifest file was not created at %s", expectedPath)
	}

	// Verify no temp file remains
	if _, err := os.Stat(expectedPath + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("Temp file should not exist after save")
	}
}

func TestSaveManifest_Invalid(t *testing.T) {
	store, _ := setupTestStore(t)

	if err := store.SaveManifest(nil); err == nil {
		t.Error("Expected error for nil manifest")
	}

	m := createTestManifest("")
	err := store.SaveManifest(m)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestSaveManifest_Overwrite(t *testing.T) {
	store, _ := setupTestStore(t)

	batchID := "overwrite"
	m := createTestManifest(batchID)
	if err := store.SaveManifest(m); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	m.Completed = 2
	m.Finish(StateCompleted, nil)
	if err := store.SaveManifest(m); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := store.LoadManifest(batchID)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if loaded.State != StateCompleted || loaded.Completed != 2 {
		t.Errorf("Expected completed 2/2, got %s %d", loaded.State, loaded.Completed)
	}
	if loaded.EndTime == nil {
		t.Error("Expected EndTime to be set")
	}
}

func TestLoadManifest(t *testing.T) {
	store, _ := setupTestStore(t)

	original := createTestManifest("load-me")
	if err := store.SaveManifest(original); err != nil {
		t.Fatalf("SaveManifest failed: %v", err)
	}

	loaded, err := store.LoadManifest("load-me")
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}

	if loaded.Executable != original.Executable {
		t.Errorf("Executable mismatch: got %s, want %s", loaded.Executable, original.Executable)
	}
	if len(loaded.Instances) != 2 || loaded.Instances[1] != "instances/b.mps" {
		t.Errorf("Instances mismatch: %v", loaded.Instances)
	}
	if loaded.System.Memory != "16 GB" {
		t.Errorf("System info mismatch: %+v", loaded.System)
	}
	if !loaded.StartTime.Equal(original.StartTime) {
		t.Errorf("StartTime mismatch: got %v, want %v", loaded.StartTime, original.StartTime)
	}
}

func TestLoadManifest_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadManifest("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.BatchID != "missing" {
		t.Errorf("Expected NotFoundError for 'missing', got %v", err)
	}
}

func TestLoadManifest_Corrupted(t *testing.T) {
	store, tempDir := setupTestStore(t)

	dir := filepath.Join(tempDir, "batches", "broken")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.LoadManifest("broken"); err == nil {
		t.Error("Expected error for corrupted manifest")
	}
	if _, err := store.LoadManifest(""); err == nil {
		t.Error("Expected error for empty batchID")
	}
}

func TestListBatches_Empty(t *testing.T) {
	store, _ := setupTestStore(t)

	infos, err := store.ListBatches()
	if err != nil {
		t.Fatalf("ListBatches failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("Expected 0 batches, got %d", len(infos))
	}
}

func TestListBatches_NewestFirstAndSkipsInvalid(t *testing.T) {
	store, tempDir := setupTestStore(t)

	base := time.Now()
	for i := 0; i < 3; i++ {
		m := createTestManifest(fmt.Sprintf("batch-%d", i))
		m.StartTime = base.Add(time.Duration(i) * time.Minute)
		if err := store.SaveManifest(m); err != nil {
			t.Fatalf("SaveManifest failed: %v", err)
		}
	}

	// Directory without manifest, stray file, and corrupted manifest
	os.MkdirAll(filepath.Join(tempDir, "batches", "empty-dir"), 0755)
	os.WriteFile(filepath.Join(tempDir, "batches", "stray.txt"), []byte("x"), 0644)
	os.MkdirAll(filepath.Join(tempDir, "batches", "corrupt"), 0755)
	os.WriteFile(filepath.Join(tempDir, "batches", "corrupt", "manifest.json"), []byte("{"), 0644)

	infos, err := store.ListBatches()
	if err != nil {
		t.Fatalf("ListBatches failed: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("Expected 3 batches, got %d", len(infos))
	}

	want := []string{"batch-2", "batch-1", "batch-0"}
	for i, info := range infos {
		if info.BatchID != want[i] {
			t.Errorf("infos[%d] = %s, want %s", i, info.BatchID, want[i])
		}
		if info.Total != 2 {
			t.Errorf("Expected total 2, got %d", info.Total)
		}
	}
}

func TestDeleteBatch(t *testing.T) {
	store, tempDir := setupTestStore(t)

	batchID := "delete-me"
	if err := store.SaveManifest(createTestManifest(batchID)); err != nil {
		t.Fatalf("SaveManifest failed: %v", err)
	}

	w, err := NewRecordWriter(tempDir, batchID, false)
	if err != nil {
		t.Fatalf("NewRecordWriter failed: %v", err)
	}
	w.Write(RecordEntry{Index: 0, Timestamp: time.Now()})
	w.Close()

	if err := store.DeleteBatch(batchID); err != nil {
		t.Fatalf("DeleteBatch failed: %v", err)
	}

	if _, err := os.Stat(store.BatchDir(batchID)); !os.IsNotExist(err) {
		t.Error("Batch directory should be removed")
	}

	if err := store.DeleteBatch(batchID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
	if err := store.DeleteBatch(""); err == nil {
		t.Error("Expected error for empty batchID")
	}
}

func TestConcurrentSave(t *testing.T) {
	store, _ := setupTestStore(t)

	const numBatches = 10
	done := make(chan bool, numBatches)

	for i := 0; i < numBatches; i++ {
		go func(idx int) {
			if err := store.SaveManifest(createTestManifest(fmt.Sprintf("concurrent-%d", idx))); err != nil {
				t.Errorf("Concurrent save failed: %v", err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < numBatches; i++ {
		<-done
	}

	infos, err := store.ListBatches()
	if err != nil {
		t.Fatalf("ListBatches failed: %v", err)
	}
	if len(infos) != numBatches {
		t.Errorf("Expected %d batches, got %d", numBatches, len(infos))
	}
}
