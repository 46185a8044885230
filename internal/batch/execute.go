package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Solver runs one instance. *Runner implements it.
type Solver interface {
	Run(ctx context.Context, instance string) (Status, Incumbent, error)
}

// Options configure Execute.
type Options struct {
	// KnownBest maps instance names to their best known objective.
	KnownBest map[string]float64
	// Console receives the progress table. Nil disables it.
	Console io.Writer
	// OnResult is called after each run is recorded. Returning an error
	// stops the batch.
	OnResult func(index int, r Result) error
}

// Execute runs the solver over instances one after another. On failure it
// returns the results recorded so far together with the error.
func Execute(ctx context.Context, solver Solver, instances []string, opts Options) ([]Result, error) {
	var tab Tabulator

	if opts.Console != nil {
		WriteTableHeader(opts.Console)
	}

	for i, instance := range instances {
		if err := ctx.Err(); err != nil {
			return tab.Finalize(), fmt.Errorf("batch cancelled before %s: %w", instance, err)
		}

		status, incumbent, err := solver.Run(ctx, instance)
		if err != nil {
			slog.Error("Solver run failed", "index", i, "instance", instance, "error", err)
			return tab.Finalize(), fmt.Errorf("run %d (%s): %w", i, instance, err)
		}

		r := tab.Record(status, incumbent)
		slog.Info("Run completed",
			"index", i,
			"instance", instance,
			"name", r.Instance.Name,
			"feasible", bool(r.Computed.IsFoundFeasibleSolution),
			"objective", r.Computed.Objective.String(),
			"elapsed", r.Computed.ElapsedTime.String())

		if opts.Console != nil {
			WriteTableRow(opts.Console, i, r, KnownBest(opts.KnownBest, r.Instance.Name))
		}

		if opts.OnResult != nil {
			if err := opts.OnResult(i, r); err != nil {
				return tab.Finalize(), fmt.Errorf("failed to handle result %d: %w", i, err)
			}
		}
	}

	return tab.Finalize(), nil
}
