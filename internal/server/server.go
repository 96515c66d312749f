// Package server exposes the summarizer over HTTP with the routes the
// browser extension calls.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/smartoverview/internal/summary"
)

// Processor is what /api/process delegates to.
type Processor interface {
	Process(ctx context.Context, req summary.Request) (summary.Result, error)
}

// maxBodyBytes bounds a request body; transcripts are a few hundred KB at most.
const maxBodyBytes = 4 << 20

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Server routes requests to a Processor.
type Server struct {
	proc    Processor
	mux     *http.ServeMux
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithProcessTimeout bounds each /api/process call.
func WithProcessTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New builds the handler tree.
func New(proc Processor, opts ...Option) *Server {
	s := &Server{proc: proc, mux: http.NewServeMux()}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/process", s.handleProcess)
	return s
}

// ServeHTTP applies request ids, access logging, and permissive CORS.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
	if id == "" {
		id = uuid.NewString()
	}
	logger := log.With().Str("request_id", id).Logger()
	r = r.WithContext(logger.WithContext(r.Context()))

	h := w.Header()
	h.Set(RequestIDHeader, id)
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "*")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	logger.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("elapsed", time.Since(start)).
		Msg("request")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(r.Context(), w, http.StatusNotFound, "Not Found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(r.Context(), w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok", "message": "Udemy AI Backend is running 🚀"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(r.Context(), w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		writeError(ctx, w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	var req summary.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(ctx, w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeError(ctx, w, http.StatusBadRequest, "Transcript is required")
		return
	}
	if req.LectureTitle == "" {
		req.LectureTitle = summary.DefaultLectureTitle
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	zerolog.Ctx(ctx).Debug().Int("transcript_chars", len(req.Transcript)).Str("lecture_title", req.LectureTitle).Bool("force_refresh", req.ForceRefresh).Msg("processing lecture")
	res, err := s.proc.Process(ctx, req)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("process failed")
		writeError(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(ctx, w, http.StatusOK, res.Normalize())
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

// writeError writes {"detail": message}, the error shape extension clients
// parse.
func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, map[string]string{"detail": message})
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	log.Info().Str("address", ln.Addr().String()).Msg("overview server listening")

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
