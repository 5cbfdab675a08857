// Package main provides a local HTTP server for development and testing.
// It exposes the endpoints an admin frontend needs: CSV upload, progress
// polling, abort, template download and candidate export.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"award-import-engine/internal/config"
	"award-import-engine/internal/importer"
	"award-import-engine/internal/models"
	"award-import-engine/internal/services/database"
	"award-import-engine/internal/utils"
)

// Server holds all dependencies
type Server struct {
	db         *database.DB
	candidates *database.CandidateRepository
	categories *database.CategoryRepository
	importer   *importer.Importer
	config     *config.Config

	mu   sync.Mutex
	runs map[string]*importRun
}

// importRun tracks one in-flight or finished import.
type importRun struct {
	cancel   context.CancelFunc
	progress importer.Progress
	result   *models.ImportResult
	done     bool
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func main() {
	if err := utils.InitLogger(os.Getenv("LOG_LEVEL")); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load config from environment: %v", err)
		cfg = &config.Config{}
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Printf("Warning: Could not connect to database: %v", err)
		log.Println("Server will run without persistence; imports will fail")
	}

	server := &Server{
		db:     db,
		config: cfg,
		runs:   make(map[string]*importRun),
	}

	if db != nil {
		server.candidates = database.NewCandidateRepository(db)
		server.categories = database.NewCategoryRepository(db)
		// No photo attacher in local mode; photos need S3 credentials.
		server.importer = importer.New(nil, server.candidates, server.categories, nil)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/health", server.healthHandler)
	mux.HandleFunc("/api/health", server.healthHandler)

	// CSV import
	mux.HandleFunc("/api/import", server.importHandler)
	mux.HandleFunc("/api/import/progress", server.progressHandler)
	mux.HandleFunc("/api/import/abort", server.abortHandler)

	// Template and export downloads
	mux.HandleFunc("/api/template", server.templateHandler)
	mux.HandleFunc("/api/export", server.exportHandler)

	// Candidate listing
	mux.HandleFunc("/api/candidates", server.candidatesHandler)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(mux)

	port := getEnvOrDefault("PORT", "8080")
	addr := fmt.Sprintf("0.0.0.0:%s", port)

	log.Printf("Award Import Engine API Server")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("Health: http://localhost:%s/health", port)

	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disconnected"
	if s.db != nil {
		if err := s.db.HealthCheck(r.Context()); err == nil {
			dbStatus = "connected"
		}
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Award Import Engine API is running",
		Data: map[string]interface{}{
			"status":    "healthy",
			"database":  dbStatus,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
		},
	})
}

// importHandler accepts a multipart CSV upload and starts an import run.
// The response carries the run ID for progress polling. Query parameters:
// update_existing, dry_run, import_photos (all "true"/"false").
func (s *Server) importHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.importer == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	if err := r.ParseMultipartForm(s.config.MaxFileBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Failed to parse form: " + err.Error(),
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "No file provided",
		})
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Only CSV files are allowed",
		})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to read file",
		})
		return
	}

	opts := importer.Options{
		UpdateExisting: boolParam(r, "update_existing", s.config.UpdateExisting),
		DryRun:         boolParam(r, "dry_run", false),
		ImportPhotos:   false,
		BatchSize:      s.config.BatchSize,
		MaxFileBytes:   s.config.MaxFileBytes,
	}

	runID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	run := &importRun{cancel: cancel}

	s.mu.Lock()
	s.runs[runID] = run
	s.mu.Unlock()

	opts.Progress = func(p importer.Progress) {
		s.mu.Lock()
		run.progress = p
		s.mu.Unlock()
	}

	go func() {
		defer cancel()
		result := s.importer.Import(ctx, content, opts)
		result.RunID = runID

		s.mu.Lock()
		run.result = result
		run.done = true
		s.mu.Unlock()
	}()

	log.Printf("Started import run %s for %s (%.2f KB)", runID, header.Filename, float64(header.Size)/1024)

	writeJSON(w, http.StatusAccepted, Response{
		Success: true,
		Message: "Import started",
		Data:    map[string]string{"run_id": runID},
	})
}

// progressHandler reports the state of a run: the latest batch progress
// while running, the full result once finished.
func (s *Server) progressHandler(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Unknown run ID",
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if run.done {
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Import finished",
			Data:    run.result,
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Import running",
		Data:    run.progress,
	})
}

// abortHandler cancels a running import. Rows already committed stay.
func (s *Server) abortHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	run, ok := s.lookupRun(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Unknown run ID",
		})
		return
	}

	run.cancel()
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Abort requested",
	})
}

func (s *Server) templateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="candidate-import-template.csv"`)
	w.Write(importer.Template())
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.candidates == nil {
		writeJSON(w, http.StatusServiceUnavailable, Response{
			Success: false,
			Error:   "Database not available",
		})
		return
	}

	data, err := importer.Export(r.Context(), s.candidates)
	if err != nil {
		log.Printf("Export failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Export failed",
		})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="candidates.csv"`)
	w.Write(data)
}

func (s *Server) candidatesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.candidates == nil {
		writeJSON(w, http.StatusOK, Response{
			Success: true,
			Data:    []models.Candidate{},
		})
		return
	}

	candidates, err := s.candidates.ListCandidates(r.Context())
	if err != nil {
		log.Printf("Error fetching candidates: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to fetch candidates",
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    candidates,
	})
}

func (s *Server) lookupRun(r *http.Request) (*importRun, bool) {
	runID := r.URL.Query().Get("run_id")

	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[runID]
	return run, ok
}

func boolParam(r *http.Request, name string, defaultVal bool) bool {
	switch strings.ToLower(r.URL.Query().Get(name)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultVal
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
