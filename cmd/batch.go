package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/snowberryfield/printemps/internal/batch"
	"github.com/snowberryfield/printemps/internal/store"
	"github.com/spf13/cobra"
)

var (
	batchOptionFile   string
	batchSeparate     bool
	batchKnownBest    string
	batchTimeout      time.Duration
	batchWorkDir      string
	batchNoStore      bool
	batchSolverOutput bool
	batchJSONOutput   string
	batchCSVOutput    string
)

var batchCmd = &cobra.Command{
	Use:   "batch <executable> <instance-list>",
	Short: "Run the solver over a list of instances and tabulate the results",
	Long: `Runs the solver once per instance, one after another, and collects the
status.json and incumbent.json each run leaves behind.

The instance list is a JSON or YAML array of instance file paths. Progress is
printed as a table; the tabulated results are written as JSON and CSV at the
end. Unless --no-store is given, the batch manifest and every result are also
kept under --data-dir as the batch progresses.`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOptionFile, "option", "p", "", "Solver option file")
	batchCmd.Flags().BoolVar(&batchSeparate, "separate", false, "Pass --separate to the solver")
	batchCmd.Flags().StringVar(&batchKnownBest, "known-best", "", "YAML/JSON file mapping instance names to best known objectives")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 0, "Time limit per solver run (0 = none)")
	batchCmd.Flags().StringVar(&batchWorkDir, "work-dir", "", "Directory the solver runs in (default: current directory)")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "Do not persist the batch under --data-dir")
	batchCmd.Flags().BoolVar(&batchSolverOutput, "solver-output", false, "Forward solver stdout/stderr to stderr")
	batchCmd.Flags().StringVar(&batchJSONOutput, "json-output", "batch_result.json", "JSON result file")
	batchCmd.Flags().StringVar(&batchCSVOutput, "csv-output", "batch_result.csv", "CSV result file")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	executable, listPath := args[0], args[1]

	instances, err := batch.LoadInstanceList(listPath)
	if err != nil {
		return err
	}

	var knownBest map[string]float64
	if batchKnownBest != "" {
		knownBest, err = batch.LoadKnownBest(batchKnownBest)
		if err != nil {
			return err
		}
	}

	runner := &batch.Runner{
		Executable: executable,
		OptionFile: batchOptionFile,
		Separate:   batchSeparate,
		WorkDir:    batchWorkDir,
		Timeout:    batchTimeout,
	}
	if batchWorkDir != "" {
		if err := runner.ResolvePaths(); err != nil {
			return err
		}
		if instances, err = batch.AbsPaths(instances); err != nil {
			return err
		}
	}
	if batchSolverOutput {
		runner.Stdout = os.Stderr
		runner.Stderr = os.Stderr
	}

	system := batch.CollectSystemInfo()
	slog.Info("Starting batch",
		"executable", runner.Executable,
		"instances", len(instances),
		"platform", system.Platform,
		"cpu", system.CPU,
		"memory", system.Memory)

	var rec *store.Recorder
	if !batchNoStore {
		fs, err := store.NewFSStore(dataDir)
		if err != nil {
			return fmt.Errorf("failed to create batch store: %w", err)
		}

		manifest := store.NewManifest(uuid.New().String(), runner, instances, system)
		rec, err = store.NewRecorder(fs, manifest)
		if err != nil {
			return fmt.Errorf("failed to start batch record: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Batch ID: %s\n\n", manifest.BatchID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := batch.Options{
		KnownBest: knownBest,
		Console:   cmd.OutOrStdout(),
	}
	if rec != nil {
		opts.OnResult = rec.Record
	}

	results, runErr := batch.Execute(ctx, runner, instances, opts)

	if rec != nil {
		if err := rec.Finish(store.StateFor(runErr), runErr); err != nil {
			slog.Error("Failed to finalize batch record", "batch_id", rec.Manifest().BatchID, "error", err)
		}
	}

	// Partial results are still worth keeping.
	if len(results) > 0 || runErr == nil {
		if err := batch.WriteFiles(batchJSONOutput, batchCSVOutput, results); err != nil {
			return errors.Join(runErr, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nWrote %d result(s) to %s and %s\n", len(results), batchJSONOutput, batchCSVOutput)
	}

	return runErr
}
