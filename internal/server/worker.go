package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/snowberryfield/printemps/internal/batch"
	"github.com/snowberryfield/printemps/internal/store"
)

// SolverFactory builds the solver for a batch.
type SolverFactory func(config BatchConfig) batch.Solver

func defaultSolver(config BatchConfig) batch.Solver {
	return config.Runner()
}

// runBatch executes a batch job in the background. If fs is not nil the
// manifest and every result are persisted as the batch progresses.
func runBatch(ctx context.Context, jm *JobManager, fs *store.FSStore, newSolver SolverFactory, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	config, err := job.Config.ResolvePaths()
	if err != nil {
		markJobFinished(jm, nil, jobID, StateFailed, err)
		return err
	}
	job.Config = config
	jm.UpdateJob(jobID, func(j *Job) {
		j.Config = config
	})

	if job.Config.WorkDir == "" {
		dir, err := workDir(fs, jobID)
		if err != nil {
			markJobFinished(jm, nil, jobID, StateFailed, err)
			return err
		}
		job.Config.WorkDir = dir
		jm.UpdateJob(jobID, func(j *Job) {
			j.Config.WorkDir = dir
		})
	}

	var rec *store.Recorder
	if fs != nil {
		manifest := store.NewManifest(jobID, job.Config.Runner(), job.Config.Instances, batch.CollectSystemInfo())
		manifest.StartTime = job.StartTime

		rec, err = store.NewRecorder(fs, manifest)
		if err != nil {
			markJobFinished(jm, nil, jobID, StateFailed, err)
			return err
		}
	}

	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateRunning,
		Total:     job.Total,
		Timestamp: time.Now(),
	})

	slog.Info("Starting batch", "job_id", jobID, "executable", job.Config.Executable, "instances", job.Total)

	opts := batch.Options{
		OnResult: func(index int, r batch.Result) error {
			if rec != nil {
				if err := rec.Record(index, r); err != nil {
					return err
				}
			}

			jm.UpdateJob(jobID, func(j *Job) {
				j.Results = append(j.Results, r)
				j.Completed = index + 1
			})

			result := r
			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:     jobID,
				State:     StateRunning,
				Completed: index + 1,
				Total:     job.Total,
				Instance:  job.Config.Instances[index],
				Result:    &result,
				Timestamp: time.Now(),
			})
			return nil
		},
	}

	_, runErr := batch.Execute(ctx, newSolver(job.Config), job.Config.Instances, opts)
	state := store.StateFor(runErr)

	markJobFinished(jm, rec, jobID, state, runErr)
	return runErr
}

// workDir picks the directory the solver writes its status files into.
// Each batch gets its own so concurrent batches do not clobber each other.
func workDir(fs *store.FSStore, jobID string) (string, error) {
	if fs == nil {
		dir, err := os.MkdirTemp("", "printemps-"+jobID+"-")
		if err != nil {
			return "", fmt.Errorf("failed to create work directory: %w", err)
		}
		return dir, nil
	}

	dir := filepath.Join(fs.BatchDir(jobID), "work")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}
	return dir, nil
}

// markJobFinished records the terminal state of a job, persists it and
// notifies subscribers.
func markJobFinished(jm *JobManager, rec *store.Recorder, jobID string, state JobState, err error) {
	// Persist first so anyone who sees the finished job can also load it.
	if rec != nil {
		if saveErr := rec.Finish(state, err); saveErr != nil {
			slog.Error("Failed to persist batch state", "job_id", jobID, "error", saveErr)
		}
	}

	now := time.Now()
	var total, completed int
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = state
		j.EndTime = &now
		if err != nil {
			j.Error = err.Error()
		}
		total, completed = j.Total, j.Completed
	})

	event := ProgressEvent{
		JobID:     jobID,
		State:     state,
		Completed: completed,
		Total:     total,
		Timestamp: now,
	}
	if err != nil {
		event.Error = err.Error()
	}
	jm.broadcaster.Broadcast(event)

	switch state {
	case StateFailed:
		slog.Error("Batch failed", "job_id", jobID, "completed", completed, "total", total, "error", err)
	case StateCancelled:
		slog.Info("Batch cancelled", "job_id", jobID, "completed", completed, "total", total)
	default:
		slog.Info("Batch completed", "job_id", jobID, "runs", completed)
	}
}
