package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/snowberryfield/printemps/internal/store"
	"github.com/spf13/cobra"
)

var (
	keepLast      int
	olderThanDays int
	forceClean    bool
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "Manage stored batches",
	Long: `Manage the batches kept under --data-dir, including listing and cleaning old
batches. Every stored batch holds its manifest and the result of each run.`,
}

var listBatchesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored batches",
	Long:  `Display all stored batches with their ID, start time, state, progress and size on disk.`,
	RunE:  runListBatches,
}

var cleanBatchesCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old batches",
	Long: `Delete old batches based on retention policy.
You can keep only the N most recent batches or delete batches older than N days.
Batches that are still running are never deleted.`,
	RunE: runCleanBatches,
}

func init() {
	rootCmd.AddCommand(batchesCmd)

	batchesCmd.AddCommand(listBatchesCmd)
	batchesCmd.AddCommand(cleanBatchesCmd)

	cleanBatchesCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the last N batches (0 = keep all)")
	cleanBatchesCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete batches older than N days (0 = no age limit)")
	cleanBatchesCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListBatches(cmd *cobra.Command, args []string) error {
	batchStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create batch store: %w", err)
	}

	infos, err := batchStore.ListBatches()
	if err != nil {
		return fmt.Errorf("failed to list batches: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No batches found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BATCH ID\tSTARTED\tSTATE\tPROGRESS\tSIZE")
	fmt.Fprintln(w, "--------\t-------\t-----\t--------\t----")

	for _, info := range infos {
		size, err := getDirSize(batchStore.BatchDir(info.BatchID))
		sizeStr := "unknown"
		if err == nil {
			sizeStr = formatBytes(size)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
			shortID(info.BatchID),
			info.StartTime.Format("2006-01-02 15:04:05"),
			info.State,
			info.Completed,
			info.Total,
			sizeStr,
		)
	}

	w.Flush()

	fmt.Fprintf(out, "\nTotal batches: %d\n", len(infos))
	return nil
}

func runCleanBatches(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	batchStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create batch store: %w", err)
	}

	infos, err := batchStore.ListBatches()
	if err != nil {
		return fmt.Errorf("failed to list batches: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No batches to clean.")
		return nil
	}

	toDelete := selectBatchesForDeletion(infos, keepLast, olderThanDays, time.Now())

	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No batches match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d batch(es) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (%s, %d/%d runs, %s)\n",
			shortID(info.BatchID),
			info.State,
			info.Completed,
			info.Total,
			info.StartTime.Format("2006-01-02 15:04:05"),
		)
	}

	if !forceClean {
		fmt.Fprint(out, "\nProceed with deletion? [y/N]: ")
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := batchStore.DeleteBatch(info.BatchID); err != nil {
			slog.Error("Failed to delete batch", "batch_id", info.BatchID, "error", err)
			failed++
		} else {
			slog.Info("Deleted batch", "batch_id", info.BatchID)
			deleted++
		}
	}

	fmt.Fprintf(out, "\nDeleted %d batch(es), %d failed.\n", deleted, failed)
	return nil
}

// selectBatchesForDeletion applies the retention policy. Unfinished batches
// are always kept.
func selectBatchesForDeletion(infos []store.BatchInfo, keepLast int, olderThanDays int, now time.Time) []store.BatchInfo {
	selected := make(map[string]bool)

	if olderThanDays > 0 {
		cutoff := now.AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.StartTime.Before(cutoff) {
				selected[info.BatchID] = true
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		newestFirst := make([]store.BatchInfo, len(infos))
		copy(newestFirst, infos)
		sort.SliceStable(newestFirst, func(i, j int) bool {
			return newestFirst[i].StartTime.After(newestFirst[j].StartTime)
		})
		for _, info := range newestFirst[keepLast:] {
			selected[info.BatchID] = true
		}
	}

	var toDelete []store.BatchInfo
	for _, info := range infos {
		if selected[info.BatchID] && info.State.Finished() {
			toDelete = append(toDelete, info)
		}
	}
	return toDelete
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
