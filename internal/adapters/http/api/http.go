// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/ringlens/internal/adapters/repository"
	service "github.com/okian/ringlens/internal/app"
	"github.com/okian/ringlens/internal/domain/catalog"
	"github.com/okian/ringlens/internal/domain/chart"
	"github.com/okian/ringlens/internal/domain/session"
	"github.com/okian/ringlens/internal/domain/table"
	"github.com/okian/ringlens/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Ingest(ctx context.Context, uploads []service.Upload, mode service.Mode) (*service.IngestResult, error)
	Summarize(ctx context.Context, ds catalog.Dataset) string
	Chat(ctx context.Context, req service.ChatRequest) (string, error)

	// Read operations. An empty session id selects the latest session.
	Session(ctx context.Context, id string) (*session.Session, error)
	Sessions(ctx context.Context) ([]repository.Info, error)
	Rows(ctx context.Context, id, file string, derived bool) ([]table.Row, error)
	Charts(ctx context.Context, id, file string, days int) ([]chart.Spec, error)
	Chart(ctx context.Context, id, file, chartID string, days int) (chart.Spec, error)
}

// SessionHeader selects a session; the "session" query parameter does the same.
const SessionHeader = "X-Session-ID"

// Server wires HTTP routes for the business API.
type Server struct {
	deps           Dependencies
	maxUploadBytes int64
	logger         logger.Logger
	validate       *validator.Validate
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxUploadBytes caps the size of an upload request body.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithLogger sets a custom logger for the handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		maxUploadBytes: 32 << 20,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", MetricsHandler())
	mux.HandleFunc("POST /upload", MetricsMiddleware(s.HandleUpload, "upload"))
	mux.HandleFunc("GET /files", MetricsMiddleware(s.HandleFiles, "files"))
	mux.HandleFunc("GET /sessions", MetricsMiddleware(s.HandleSessions, "sessions"))
	mux.HandleFunc("GET /data/{filename}", MetricsMiddleware(s.HandleData, "data"))
	mux.HandleFunc("GET /overview", MetricsMiddleware(s.HandleOverview, "overview"))
	mux.HandleFunc("GET /charts/{filename}", MetricsMiddleware(s.HandleCharts, "charts"))
	mux.HandleFunc("GET /charts/{filename}/{chart}", MetricsMiddleware(s.HandleChartPNG, "chart_png"))
	mux.HandleFunc("GET /export.xlsx", MetricsMiddleware(s.HandleExport, "export"))
	mux.HandleFunc("POST /chat", MetricsMiddleware(s.HandleChat, "chat"))
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeJSON encodes v before writing the status; an encoding failure becomes
// a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "Server error: " + err.Error(), Code: "encode_failed"})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// sessionID reads the requested session from the header or the query string.
func sessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("session"))
}

// writeLookupError maps session and file lookups onto 404 responses.
func (s *Server) writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNoSession):
		writeError(w, http.StatusNotFound, "no_data", "No data uploaded")
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", "Session not found")
	case errors.Is(err, catalog.ErrFileNotLoaded):
		writeError(w, http.StatusNotFound, "file_not_found", "File not found")
	case errors.Is(err, catalog.ErrUnknownKind):
		writeError(w, http.StatusNotFound, "unknown_export", "No charts for this file")
	case errors.Is(err, catalog.ErrUnknownChart):
		writeError(w, http.StatusNotFound, "unknown_chart", "Chart not found")
	default:
		s.logger.Error(r.Context(), "request failed", logger.String("path", r.URL.Path), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "Server error: "+err.Error())
	}
}
