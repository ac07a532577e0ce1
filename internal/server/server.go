package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hyperifyio/finsight/internal/pipeline"
)

// maxUploadBytes bounds one multipart upload. Financial filings are rarely
// above a few megabytes of PDF.
const maxUploadBytes = 32 << 20

const snippetRunes = 1000

// Server exposes the analyzer over HTTP.
type Server struct {
	router     *chi.Mux
	addr       string
	uploadsDir string
	analyzer   *pipeline.Analyzer
	log        zerolog.Logger
}

// New wires the routes. uploadsDir is created on demand; uploaded files are
// stored there only for the duration of one analysis.
func New(addr, uploadsDir string, analyzer *pipeline.Analyzer, logger zerolog.Logger) *Server {
	s := &Server{
		router:     chi.NewRouter(),
		addr:       addr,
		uploadsDir: uploadsDir,
		analyzer:   analyzer,
		log:        logger,
	}

	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.requestLogger)

	s.router.Get("/", s.root)
	s.router.Get("/healthz", s.health)
	s.router.Post("/analyze", s.analyze)

	return s
}

// Start blocks serving HTTP until the listener fails or ctx is cancelled,
// then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("http server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Financial Document Analyzer API is running"})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyzeResponse is the wire shape of a successful analysis.
type analyzeResponse struct {
	Status               string `json:"status"`
	Query                string `json:"query"`
	FileProcessed        string `json:"file_processed"`
	Verification         any    `json:"verification"`
	Analysis             any    `json:"analysis"`
	ExtractedTextSnippet string `json:"extracted_text_snippet,omitempty"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	query := r.FormValue("query")

	// Spool to disk under a collision-free name, mirroring the original
	// endpoint; the file is removed once the analysis returns.
	path, err := s.saveUpload(header.Filename, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("save upload: %v", err))
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("upload cleanup failed")
		}
	}()

	rep := s.analyzer.Run(r.Context(), path, query)
	// Report uploads under their client-side name, not the spool name.
	rep.Document = filepath.Base(header.Filename)

	writeJSON(w, http.StatusOK, analyzeResponse{
		Status:               "success",
		Query:                rep.Query,
		FileProcessed:        rep.Document,
		Verification:         rep.Verification,
		Analysis:             rep.Analysis,
		ExtractedTextSnippet: rep.Snippet(snippetRunes),
	})
}

func (s *Server) saveUpload(name string, src io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "upload"
	}
	path := filepath.Join(s.uploadsDir, uuid.NewString()+"_"+base)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"status": "error", "detail": detail})
}
