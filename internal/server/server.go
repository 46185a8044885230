package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/snowberryfield/printemps/internal/batch"
	"github.com/snowberryfield/printemps/internal/store"
)

// Server represents the HTTP server
type Server struct {
	jobManager *JobManager
	store      *store.FSStore
	newSolver  SolverFactory
	addr       string
	server     *http.Server
}

// NewServer creates a new HTTP server. fs may be nil, in which case batches
// only live in memory.
func NewServer(addr string, fs *store.FSStore) *Server {
	return &Server{
		jobManager: NewJobManager(),
		store:      fs,
		newSolver:  defaultSolver,
		addr:       addr,
	}
}

// Handler returns the routed and wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/batches", s.handleBatches)
	mux.HandleFunc("/api/v1/batches/", s.handleBatchesWithID)

	return s.loggingMiddleware(s.corsMiddleware(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	slog.Info("Starting HTTP server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown cancels running batches and gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	s.jobManager.CancelAll()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleBatches handles /api/v1/batches
func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateBatch(w, r)
	case http.MethodGet:
		s.handleListBatches(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleBatchesWithID handles /api/v1/batches/:id/*
func (s *Server) handleBatchesWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/batches/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Batch ID required", http.StatusBadRequest)
		return
	}

	batchID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetBatch(w, r, batchID)
		case http.MethodDelete:
			s.handleCancelBatch(w, r, batchID)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "results.csv":
		s.handleGetResultsCSV(w, r, batchID)
	case "stream":
		s.handleBatchStream(w, r, batchID)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleCreateBatch handles POST /api/v1/batches
func (s *Server) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	var config BatchConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if err := config.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.jobManager.CreateJob(config)

	// Batches outlive the request that created them.
	ctx, cancel := context.WithCancel(context.Background())
	s.jobManager.setCancel(job.ID, cancel)

	go func() {
		defer cancel()
		defer s.jobManager.clearCancel(job.ID)
		runBatch(ctx, s.jobManager, s.store, s.newSolver, job.ID)
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(job)
}

// handleListBatches handles GET /api/v1/batches. Batches of this process
// come first, followed by batches found only in the store.
func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobManager.ListJobs()

	infos := make([]store.BatchInfo, 0, len(jobs))
	seen := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		infos = append(infos, jobInfo(job))
		seen[job.ID] = true
	}

	if s.store != nil {
		stored, err := s.store.ListBatches()
		if err != nil {
			slog.Error("Failed to list stored batches", "error", err)
			http.Error(w, "Failed to list batches", http.StatusInternalServerError)
			return
		}
		for _, info := range stored {
			if !seen[info.BatchID] {
				infos = append(infos, info)
			}
		}
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].StartTime.After(infos[j].StartTime)
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(infos)
}

func jobInfo(job *Job) store.BatchInfo {
	return store.BatchInfo{
		BatchID:    job.ID,
		Executable: job.Config.Executable,
		State:      job.State,
		Completed:  job.Completed,
		Total:      job.Total,
		StartTime:  job.StartTime,
		EndTime:    job.EndTime,
	}
}

// batchResponse is the detail view of a batch.
type batchResponse struct {
	ID        string         `json:"id"`
	State     JobState       `json:"state"`
	Config    BatchConfig    `json:"config"`
	Completed int            `json:"completed"`
	Total     int            `json:"total"`
	Elapsed   float64        `json:"elapsed"`
	StartTime time.Time      `json:"startTime"`
	EndTime   *time.Time     `json:"endTime,omitempty"`
	Error     string         `json:"error,omitempty"`
	Results   []batch.Result `json:"results"`
}

// lookupBatch finds a batch in memory or, failing that, in the store.
func (s *Server) lookupBatch(batchID string) (*batchResponse, error) {
	if job, ok := s.jobManager.GetJob(batchID); ok {
		return &batchResponse{
			ID:        job.ID,
			State:     job.State,
			Config:    job.Config,
			Completed: job.Completed,
			Total:     job.Total,
			Elapsed:   elapsed(job.StartTime, job.EndTime).Seconds(),
			StartTime: job.StartTime,
			EndTime:   job.EndTime,
			Error:     job.Error,
			Results:   job.Results,
		}, nil
	}

	if s.store == nil {
		return nil, &store.NotFoundError{BatchID: batchID}
	}

	manifest, err := s.store.LoadManifest(batchID)
	if err != nil {
		return nil, err
	}
	results, err := store.LoadResults(s.store.BaseDir(), batchID)
	if err != nil {
		return nil, err
	}

	return &batchResponse{
		ID:    manifest.BatchID,
		State: manifest.State,
		Config: BatchConfig{
			Executable: manifest.Executable,
			Instances:  manifest.Instances,
			OptionFile: manifest.OptionFile,
			Separate:   manifest.Separate,
		},
		Completed: manifest.Completed,
		Total:     len(manifest.Instances),
		Elapsed:   elapsed(manifest.StartTime, manifest.EndTime).Seconds(),
		StartTime: manifest.StartTime,
		EndTime:   manifest.EndTime,
		Error:     manifest.Error,
		Results:   results,
	}, nil
}

func elapsed(start time.Time, end *time.Time) time.Duration {
	if end != nil {
		return end.Sub(start)
	}
	return time.Since(start)
}

func (s *Server) writeLookupError(w http.ResponseWriter, batchID string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Batch not found", http.StatusNotFound)
		return
	}
	slog.Error("Failed to load batch", "batch_id", batchID, "error", err)
	http.Error(w, "Failed to load batch", http.StatusInternalServerError)
}

// handleGetBatch handles GET /api/v1/batches/:id
func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request, batchID string) {
	resp, err := s.lookupBatch(batchID)
	if err != nil {
		s.writeLookupError(w, batchID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleGetResultsCSV handles GET /api/v1/batches/:id/results.csv
func (s *Server) handleGetResultsCSV(w http.ResponseWriter, r *http.Request, batchID string) {
	resp, err := s.lookupBatch(batchID)
	if err != nil {
		s.writeLookupError(w, batchID, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "result_"+batchID+".csv"))
	if err := batch.WriteCSV(w, resp.Results); err != nil {
		slog.Error("Failed to write CSV", "batch_id", batchID, "error", err)
	}
}

// handleCancelBatch handles DELETE /api/v1/batches/:id
func (s *Server) handleCancelBatch(w http.ResponseWriter, r *http.Request, batchID string) {
	job, exists := s.jobManager.GetJob(batchID)
	if !exists {
		http.Error(w, "Batch not found", http.StatusNotFound)
		return
	}

	if job.State.Finished() || !s.jobManager.CancelJob(batchID) {
		http.Error(w, fmt.Sprintf("Batch is %s", job.State), http.StatusConflict)
		return
	}

	slog.Info("Batch cancellation requested", "batch_id", batchID)
	w.WriteHeader(http.StatusAccepted)
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}
