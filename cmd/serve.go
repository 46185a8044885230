package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/snowberryfield/printemps/internal/server"
	"github.com/snowberryfield/printemps/internal/store"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveNoStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the batch HTTP server",
	Long: `Starts an HTTP server that runs solver batches in the background.

  POST   /api/v1/batches                  submit a batch
  GET    /api/v1/batches                  list batches
  GET    /api/v1/batches/{id}             batch state and results
  DELETE /api/v1/batches/{id}             cancel a running batch
  GET    /api/v1/batches/{id}/results.csv results as CSV
  GET    /api/v1/batches/{id}/stream      progress as server-sent events`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().BoolVar(&serveNoStore, "no-store", false, "Keep batches in memory only")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	var fs *store.FSStore
	if !serveNoStore {
		var err error
		fs, err = store.NewFSStore(dataDir)
		if err != nil {
			return fmt.Errorf("failed to create batch store: %w", err)
		}
	}

	srv := server.NewServer(serveAddr, fs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
