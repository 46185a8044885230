package server

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/snowberryfield/printemps/internal/batch"
	"github.com/snowberryfield/printemps/internal/store"
)

// JobState is shared with the persisted manifest.
type JobState = store.State

const (
	StatePending   = store.StatePending
	StateRunning   = store.StateRunning
	StateCompleted = store.StateCompleted
	StateFailed    = store.StateFailed
	StateCancelled = store.StateCancelled
)

// BatchConfig describes a batch submitted over the API.
type BatchConfig struct {
	Executable string   `json:"executable"`
	Instances  []string `json:"instances"`
	OptionFile string   `json:"optionFile,omitempty"`
	Separate   bool     `json:"separate,omitempty"`
	// WorkDir is where the solver writes its status files. Defaults to a
	// directory inside the batch's data directory.
	WorkDir string `json:"workDir,omitempty"`
	// TimeoutSeconds bounds each solver run. Zero means no limit.
	TimeoutSeconds int `json:"timeoutSeconds,omitempty"`
}

// Validate checks the fields a batch cannot run without.
func (c BatchConfig) Validate() error {
	if c.Executable == "" {
		return fmt.Errorf("executable is required")
	}
	if len(c.Instances) == 0 {
		return fmt.Errorf("instances must not be empty")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeoutSeconds cannot be negative")
	}
	return nil
}

// ResolvePaths returns a copy of the config whose executable, option file
// and instances resolve against the current directory rather than WorkDir.
func (c BatchConfig) ResolvePaths() (BatchConfig, error) {
	runner := c.Runner()
	if err := runner.ResolvePaths(); err != nil {
		return c, err
	}
	instances, err := batch.AbsPaths(c.Instances)
	if err != nil {
		return c, err
	}

	c.Executable = runner.Executable
	c.OptionFile = runner.OptionFile
	c.Instances = instances
	return c, nil
}

// Runner builds the solver runner for the config.
func (c BatchConfig) Runner() *batch.Runner {
	return &batch.Runner{
		Executable: c.Executable,
		OptionFile: c.OptionFile,
		Separate:   c.Separate,
		WorkDir:    c.WorkDir,
		Timeout:    time.Duration(c.TimeoutSeconds) * time.Second,
	}
}

// Job represents a batch running in this process
type Job struct {
	ID        string         `json:"id"`
	State     JobState       `json:"state"`
	Config    BatchConfig    `json:"config"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
	Results   []batch.Result `json:"results"`
	StartTime time.Time      `json:"startTime"`
	EndTime   *time.Time     `json:"endTime,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func (j *Job) clone() *Job {
	c := *j
	c.Results = append([]batch.Result{}, j.Results...)
	c.Config.Instances = append([]string{}, j.Config.Instances...)
	return &c
}

// JobManager manages the lifecycle of jobs
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	cancels     map[string]context.CancelFunc
	broadcaster *EventBroadcaster
}

// NewJobManager creates a new JobManager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:        make(map[string]*Job),
		cancels:     make(map[string]context.CancelFunc),
		broadcaster: NewEventBroadcaster(),
	}
}

// CreateJob creates a new pending job with the given configuration
func (jm *JobManager) CreateJob(config BatchConfig) *Job {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		State:     StatePending,
		Config:    config,
		Total:     len(config.Instances),
		Results:   []batch.Result{},
		StartTime: time.Now(),
	}

	jm.jobs[job.ID] = job
	return job.clone()
}

// GetJob returns a snapshot of the job with the given ID
func (jm *JobManager) GetJob(id string) (*Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	job, exists := jm.jobs[id]
	if !exists {
		return nil, false
	}
	return job.clone(), true
}

// ListJobs returns snapshots of all jobs, newest first
func (jm *JobManager) ListJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	jobs := make([]*Job, 0, len(jm.jobs))
	for _, job := range jm.jobs {
		jobs = append(jobs, job.clone())
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartTime.After(jobs[j].StartTime)
	})
	return jobs
}

// UpdateJob atomically updates a job using the provided function
func (jm *JobManager) UpdateJob(id string, updateFn func(*Job)) error {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	job, exists := jm.jobs[id]
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}

	updateFn(job)
	return nil
}

// GetRunningJobs returns all jobs currently in the running state
func (jm *JobManager) GetRunningJobs() []*Job {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	runningJobs := make([]*Job, 0)
	for _, job := range jm.jobs {
		if job.State == StateRunning {
			runningJobs = append(runningJobs, job.clone())
		}
	}
	return runningJobs
}

// setCancel registers the function that stops a job's worker.
func (jm *JobManager) setCancel(id string, cancel context.CancelFunc) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	jm.cancels[id] = cancel
}

// clearCancel forgets the worker of a finished job.
func (jm *JobManager) clearCancel(id string) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	delete(jm.cancels, id)
}

// CancelJob stops the worker of a running job. It reports whether a worker
// was found.
func (jm *JobManager) CancelJob(id string) bool {
	jm.mu.RLock()
	cancel, ok := jm.cancels[id]
	jm.mu.RUnlock()

	if ok {
		cancel()
	}
	return ok
}

// CancelAll stops every running worker.
func (jm *JobManager) CancelAll() {
	jm.mu.RLock()
	defer jm.mu.RUnlock()

	for _, cancel := range jm.cancels {
		cancel()
	}
}
