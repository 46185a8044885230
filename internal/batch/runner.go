package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const (
	// StatusFile is written by the solver into its working directory.
	StatusFile = "status.json"
	// IncumbentFile is written by the solver into its working directory.
	IncumbentFile = "incumbent.json"
)

// ExitError reports a solver run that exited with a non-zero code.
type ExitError struct {
	Instance string
	Code     int
	Err      error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("solver exited with code %d on %s", e.Code, e.Instance)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Runner invokes the solver executable once per instance.
type Runner struct {
	Executable string
	OptionFile string
	Separate   bool
	// WorkDir is where the solver runs and writes its output. Empty means
	// the current directory.
	WorkDir string
	// Timeout bounds a single run. Zero means no limit.
	Timeout time.Duration
	Stdout  io.Writer
	Stderr  io.Writer
}

// AbsPath makes a relative path absolute against the current directory so
// it still resolves when the solver runs in WorkDir. Empty stays empty.
func AbsPath(path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

// AbsPaths applies AbsPath to every path.
func AbsPaths(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		abs, err := AbsPath(p)
		if err != nil {
			return nil, err
		}
		out[i] = abs
	}
	return out, nil
}

// ResolvePaths makes the executable and option file independent of the
// current directory. A bare executable name is left for PATH lookup.
func (r *Runner) ResolvePaths() error {
	if filepath.Base(r.Executable) != r.Executable {
		exe, err := AbsPath(r.Executable)
		if err != nil {
			return err
		}
		r.Executable = exe
	}

	opt, err := AbsPath(r.OptionFile)
	if err != nil {
		return err
	}
	r.OptionFile = opt
	return nil
}

// Args returns the solver arguments for instance.
func (r *Runner) Args(instance string) []string {
	args := []string{instance}
	if r.OptionFile != "" {
		args = append(args, "-p", r.OptionFile)
	}
	if r.Separate {
		args = append(args, "--separate")
	}
	return args
}

// Run executes the solver on instance and reads back the status and
// incumbent files it produced.
func (r *Runner) Run(ctx context.Context, instance string) (Status, Incumbent, error) {
	if r.Executable == "" {
		return Status{}, Incumbent{}, fmt.Errorf("solver executable is not set")
	}

	// Output from an earlier run must not be mistaken for this one.
	for _, name := range []string{StatusFile, IncumbentFile} {
		if err := os.Remove(r.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Status{}, Incumbent{}, fmt.Errorf("failed to remove stale %s: %w", name, err)
		}
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Executable, r.Args(instance)...)
	cmd.Dir = r.WorkDir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	start := time.Now()
	slog.Debug("Starting solver", "executable", r.Executable, "instance", instance, "args", cmd.Args[1:])

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Status{}, Incumbent{}, fmt.Errorf("solver run on %s interrupted: %w", instance, ctxErr)
			}
			return Status{}, Incumbent{}, &ExitError{Instance: instance, Code: exitErr.ExitCode(), Err: err}
		}
		return Status{}, Incumbent{}, fmt.Errorf("failed to start solver: %w", err)
	}

	var status Status
	if err := readJSON(r.path(StatusFile), &status); err != nil {
		return Status{}, Incumbent{}, fmt.Errorf("failed to read status file: %w", err)
	}
	var incumbent Incumbent
	if err := readJSON(r.path(IncumbentFile), &incumbent); err != nil {
		return Status{}, Incumbent{}, fmt.Errorf("failed to read incumbent file: %w", err)
	}

	slog.Debug("Solver finished", "instance", instance, "elapsed", time.Since(start))
	return status, incumbent, nil
}

func (r *Runner) path(name string) string {
	return filepath.Join(r.WorkDir, name)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
