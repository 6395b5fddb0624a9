package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ssahani/guestkit-worker/pkg/capability"
	"github.com/ssahani/guestkit-worker/pkg/jobspec"
	"github.com/ssahani/guestkit-worker/pkg/log"
	"github.com/ssahani/guestkit-worker/pkg/metrics"
	"github.com/ssahani/guestkit-worker/pkg/result"
	"github.com/ssahani/guestkit-worker/pkg/transport/httpq"
)

// successEnvelope wraps every 2xx JSON response.
type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// errorEnvelope wraps every non-2xx JSON response.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Server exposes the REST job-submission surface described by the worker
// protocol, backed by an in-memory FIFO transport and the result writer
// the worker daemon also uses.
type Server struct {
	queue   *httpq.Transport
	results *result.Writer
	caps    capability.Descriptor
	mux     *http.ServeMux
	logger  zerolog.Logger
}

// NewServer wires a Server around queue (shared with the worker daemon's
// event loop), results (for the result-fetch endpoint), and the worker's
// advertised capabilities.
func NewServer(queue *httpq.Transport, results *result.Writer, caps capability.Descriptor) *Server {
	s := &Server{
		queue:   queue,
		results: results,
		caps:    caps,
		mux:     http.NewServeMux(),
		logger:  log.WithComponent("api"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/v1/jobs", s.handleSubmit)
	s.mux.HandleFunc("GET /api/v1/jobs", s.handleList)
	s.mux.HandleFunc("GET /api/v1/jobs/{id}", s.handleGet)
	s.mux.HandleFunc("GET /api/v1/jobs/{id}/result", s.handleResult)
	s.mux.HandleFunc("GET /api/v1/capabilities", s.handleCapabilities)
	s.mux.HandleFunc("GET /api/v1/health", metrics.HealthHandler())
	s.mux.HandleFunc("GET /health", metrics.HealthHandler())
	s.mux.HandleFunc("GET /ready", metrics.ReadyHandler())
	s.mux.HandleFunc("GET /live", metrics.LivenessHandler())
	s.mux.Handle("GET /metrics", metrics.Handler())
}

// Handler returns the assembled mux, for embedding or direct use with
// httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server on addr. It blocks until the
// server stops or ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "failed to read request body", err.Error())
		return
	}

	doc, err := jobspec.Parse(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not a valid job document", err.Error())
		return
	}

	if err := jobspec.Validate(doc); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if err := s.queue.Submit(doc); err != nil {
		writeError(w, http.StatusBadRequest, "DUPLICATE_JOB", err.Error(), nil)
		return
	}

	s.logger.Info().Str("job_id", doc.JobID).Str("operation", doc.Operation).Msg("job submitted")

	writeSuccess(w, http.StatusOK, map[string]string{
		"job_id":  doc.JobID,
		"status":  "submitted",
		"message": "job accepted",
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, s.queue.List())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	status, ok := s.queue.Status(id)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no job with that id is tracked", nil)
		return
	}
	writeSuccess(w, http.StatusOK, status)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.results.Exists(id) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no result exists for that job id", nil)
		return
	}
	env, err := s.results.Read(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to read result envelope", err.Error())
		return
	}
	writeSuccess(w, http.StatusOK, env)
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, s.caps)
}

func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(successEnvelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: code, Message: message, Details: details})
}
