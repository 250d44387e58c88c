package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"replay-doctor/internal/pipeline"
	"replay-doctor/internal/renderer"
)

// Server exposes the recording diagnosis pipeline over HTTP.
type Server struct {
	orch      *pipeline.Orchestrator
	server    *http.Server
	port      int
	startTime time.Time
}

func NewServer(orch *pipeline.Orchestrator, port int) *Server {
	return &Server{
		orch:      orch,
		port:      port,
		startTime: time.Now(),
	}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/process-recording", s.handleProcessRecording)
	mux.HandleFunc("/api/status", s.handleStatus)
	return corsMiddleware(mux)
}

// Start запускает веб-сервер и блокируется до его остановки.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", s.port),
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
		// Rendering plus diagnosis can run for minutes.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("🌐 Starting recording diagnosis server on http://localhost:%d", s.port)
	return s.server.ListenAndServe()
}

// Stop останавливает веб-сервер.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// corsMiddleware attaches the permissive cross-origin headers to every
// response and answers preflights. The uploading frontend runs on a
// different origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type processRequest struct {
	Events json.RawMessage `json:"events"`
	Name   string          `json:"name"`
}

// diagnosisResponse is the one success shape: always the three named
// fields, padded with empty strings when the model gave fewer.
type diagnosisResponse struct {
	Choice1 string `json:"choice1"`
	Choice2 string `json:"choice2"`
	Choice3 string `json:"choice3"`
}

type errorDetails struct {
	Message string `json:"message"`
	Code    *int   `json:"code,omitempty"`
	Signal  string `json:"signal,omitempty"`
	Stdout  string `json:"stdout,omitempty"`
	Stderr  string `json:"stderr,omitempty"`
}

type errorResponse struct {
	Error   string       `json:"error"`
	Details errorDetails `json:"details"`
}

func (s *Server) handleProcessRecording(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &pipeline.IngestionError{Err: err})
		return
	}
	if len(req.Events) == 0 {
		writeError(w, &pipeline.IngestionError{Err: fmt.Errorf("events field is required")})
		return
	}

	res, err := s.orch.Process(r.Context(), req.Events, req.Name)
	if err != nil {
		log.Printf("❌ Failed to process recording %q: %v", req.Name, err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(diagnosisResponse{
		Choice1: res.Choice(0),
		Choice2: res.Choice(1),
		Choice3: res.Choice(2),
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{
		Error:   "failed to process recording",
		Details: errorDetails{Message: err.Error()},
	}

	var ingErr *pipeline.IngestionError
	if errors.As(err, &ingErr) {
		status = http.StatusBadRequest
		resp.Error = "malformed recording"
	}

	var rendErr *renderer.Error
	if errors.As(err, &rendErr) {
		resp.Error = "renderer failed"
		code := rendErr.ExitCode
		resp.Details.Code = &code
		resp.Details.Signal = rendErr.Signal
		resp.Details.Stdout = rendErr.Stdout
		resp.Details.Stderr = rendErr.Stderr
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// handleStatus обрабатывает health check запросы.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "replay-doctor",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startTime).String(),
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
