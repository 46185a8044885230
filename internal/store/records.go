package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/snowberryfield/printemps/internal/batch"
)

// RecordEntry is one finished solver run, stored as a line of records.jsonl.
type RecordEntry struct {
	// Index is the position of the run in the batch.
	Index int `json:"index"`

	// Instance is the instance path passed to the solver.
	Instance string `json:"instance"`

	// Timestamp records when the run was recorded.
	Timestamp time.Time `json:"timestamp"`

	Result batch.Result `json:"result"`
}

func recordsPath(baseDir, batchID string) string {
	return filepath.Join(batchDir(baseDir, batchID), "records.jsonl")
}

// RecordWriter appends run records to a JSONL file.
// It is safe for concurrent use.
type RecordWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
}

// NewRecordWriter opens <baseDir>/batches/<batchID>/records.jsonl.
// If append is true, new entries are appended to an existing file.
func NewRecordWriter(baseDir, batchID string, append bool) (*RecordWriter, error) {
	if err := os.MkdirAll(batchDir(baseDir, batchID), 0755); err != nil {
		return nil, fmt.Errorf("failed to create batch directory: %w", err)
	}

	path := recordsPath(baseDir, batchID)

	var file *os.File
	var err error
	if append {
		file, err = os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	} else {
		file, err = os.Create(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}

	return &RecordWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
		path:   path,
	}, nil
}

// Write appends an entry and flushes it to disk, so a crash loses at most
// the run in progress.
func (rw *RecordWriter) Write(entry RecordEntry) error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal record entry: %w", err)
	}

	if _, err := rw.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write record entry: %w", err)
	}
	if err := rw.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	if err := rw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush record writer: %w", err)
	}
	if err := rw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync records file: %w", err)
	}

	return nil
}

// Close flushes buffered data and closes the records file.
func (rw *RecordWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if err := rw.writer.Flush(); err != nil {
		rw.file.Close()
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("failed to close records file: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the records file.
func (rw *RecordWriter) Path() string {
	return rw.path
}

// RecordReader reads run records from a JSONL file.
type RecordReader struct {
	file    *os.File
	scanner *bufio.Scanner
}

// NewRecordReader opens the records file of a batch.
func NewRecordReader(baseDir, batchID string) (*RecordReader, error) {
	file, err := os.Open(recordsPath(baseDir, batchID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{BatchID: batchID}
		}
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &RecordReader{
		file:    file,
		scanner: scanner,
	}, nil
}

// Read reads the next entry. Returns io.EOF when no more entries are
// available.
func (rr *RecordReader) Read() (*RecordEntry, error) {
	if !rr.scanner.Scan() {
		if err := rr.scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to scan record line: %w", err)
		}
		return nil, io.EOF
	}

	var entry RecordEntry
	if err := json.Unmarshal(rr.scanner.Bytes(), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record entry: %w", err)
	}
	return &entry, nil
}

// ReadAll reads all remaining entries.
func (rr *RecordReader) ReadAll() ([]RecordEntry, error) {
	var entries []RecordEntry
	for {
		entry, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// Close closes the record reader.
func (rr *RecordReader) Close() error {
	if err := rr.file.Close(); err != nil {
		return fmt.Errorf("failed to close records file: %w", err)
	}
	return nil
}

// LoadResults reads every recorded result of a batch in run order.
// A batch with no records file yields no results.
func LoadResults(baseDir, batchID string) ([]batch.Result, error) {
	rr, err := NewRecordReader(baseDir, batchID)
	if err != nil {
		if _, ok := err.(*NotFoundError); ok {
			return []batch.Result{}, nil
		}
		return nil, err
	}
	defer rr.Close()

	entries, err := rr.ReadAll()
	if err != nil {
		return nil, err
	}

	results := make([]batch.Result, len(entries))
	for i, e := range entries {
		results[i] = e.Result
	}
	return results, nil
}
