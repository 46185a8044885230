package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/snowberryfield/printemps/internal/batch"
	"github.com/snowberryfield/printemps/internal/store"
	"github.com/spf13/cobra"
)

var serverURL string

var statusCmd = &cobra.Command{
	Use:   "status [batch-id]",
	Short: "Query the server for batches",
	Long: `Queries the server for batch information.
If no batch-id is provided, lists all batches.
If batch-id is provided, shows the state and results of that batch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listRemoteBatches(cmd.OutOrStdout(), fmt.Sprintf("%s/api/v1/batches", serverURL))
	}

	batchID := args[0]
	return getBatchStatus(cmd.OutOrStdout(), fmt.Sprintf("%s/api/v1/batches/%s", serverURL, batchID), batchID)
}

func getJSON(url string, v any) (int, error) {
	resp, err := http.Get(url)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("server returned error: %s", string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func listRemoteBatches(out io.Writer, url string) error {
	var infos []store.BatchInfo
	if _, err := getJSON(url, &infos); err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Fprintln(out, "No batches found")
		return nil
	}

	writeBatchTable(out, infos)
	return nil
}

// batchStatus mirrors the server's batch detail response.
type batchStatus struct {
	ID     string `json:"id"`
	State  string `json:"state"`
	Config struct {
		Executable string   `json:"executable"`
		Instances  []string `json:"instances"`
		OptionFile string   `json:"optionFile"`
	} `json:"config"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
	Elapsed   float64        `json:"elapsed"`
	Error     string         `json:"error"`
	Results   []batch.Result `json:"results"`
}

func getBatchStatus(out io.Writer, url, batchID string) error {
	var status batchStatus
	code, err := getJSON(url, &status)
	if code == http.StatusNotFound {
		return fmt.Errorf("batch not found: %s", batchID)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Batch: %s\n", status.ID)
	fmt.Fprintf(out, "State: %s\n", status.State)
	fmt.Fprintf(out, "Executable: %s\n", status.Config.Executable)
	if status.Config.OptionFile != "" {
		fmt.Fprintf(out, "Option file: %s\n", status.Config.OptionFile)
	}
	fmt.Fprintf(out, "Progress: %d/%d\n", status.Completed, status.Total)
	elapsed := time.Duration(status.Elapsed * float64(time.Second))
	fmt.Fprintf(out, "Elapsed: %s\n", elapsed.Round(time.Millisecond))

	if len(status.Results) > 0 {
		fmt.Fprintln(out)
		batch.WriteTableHeader(out)
		for i, r := range status.Results {
			batch.WriteTableRow(out, i, r, batch.KnownBest(nil, r.Instance.Name))
		}
	}

	if status.Error != "" {
		fmt.Fprintf(out, "\nError: %s\n", status.Error)
	}
	return nil
}

// writeBatchTable prints batch listings the same way for local and remote
// batches.
func writeBatchTable(out io.Writer, infos []store.BatchInfo) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BATCH ID\tSTARTED\tSTATE\tPROGRESS\tEXECUTABLE")
	fmt.Fprintln(w, "--------\t-------\t-----\t--------\t----------")

	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
			shortID(info.BatchID),
			info.StartTime.Format("2006-01-02 15:04:05"),
			info.State,
			info.Completed,
			info.Total,
			info.Executable,
		)
	}
	w.Flush()
}
