package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/promptdrafter"
	"github.com/aretw0/promptdrafter/internal/logging"
	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/aretw0/promptdrafter/pkg/editor"
	"github.com/aretw0/promptdrafter/pkg/library"
	"github.com/aretw0/promptdrafter/pkg/nodes"
	"github.com/go-chi/chi/v5"
)

// LibraryStream is the stream key of library change events.
const LibraryStream = "library"

// Server serves the library and node APIs.
type Server struct {
	Library  *library.Service
	Host     *editor.Host
	Executor *nodes.Executor
	Streams  *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithStreams shares a StreamManager that the host and library already publish to.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics mounts a metrics handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server. Without WithStreams it gets a private
// StreamManager, which only carries events the caller publishes to it.
func NewServer(lib *library.Service, host *editor.Host, exec *nodes.Executor, opts ...Option) *Server {
	s := &Server{
		Library:  lib,
		Host:     host,
		Executor: exec,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	if s.Executor == nil {
		s.Executor = nodes.NewExecutor()
	}
	return s
}

// NewHandler is a shorthand for NewServer(...).Routes().
func NewHandler(lib *library.Service, host *editor.Host, exec *nodes.Executor, opts ...Option) http.Handler {
	return NewServer(lib, host, exec, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(RawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})

	r.Route("/promptdrafter", func(r chi.Router) {
		r.Post("/wildcard/count", s.CountWildcardValues)
		r.Post("/wildcard/reset", s.ResetSequential)
		r.Post("/parse_wildcards", s.ParseWildcards)
		r.Post("/placeholder", s.NextPlaceholder)
		r.Post("/combine", s.CombineStrings)
		r.Get("/events", s.SubscribeLibrary)

		r.Route("/{category}", func(r chi.Router) {
			r.Post("/save", s.SaveRecord)
			r.Get("/load/{name}", s.LoadRecord)
			r.Get("/list", s.ListRecords)
			r.Delete("/delete/{name}", s.DeleteRecord)
		})
	})

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.ListNodes)
		r.Post("/", s.CreateNode)
		r.Get("/graph", s.GraphNodes)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetNode)
			r.Delete("/", s.DestroyNode)
			r.Put("/text", s.SetText)
			r.Post("/flush", s.FlushNode)
			r.Post("/placeholder", s.AppendPlaceholder)
			r.Put("/input_count", s.SetInputCount)
			r.Post("/execute", s.ExecuteNode)
			r.Get("/events", s.SubscribeNode)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>PromptDrafter API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
    });
  };
</script>
</body>
</html>`

// GetHealth reports liveness.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo reports the application and API versions.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "promptdrafter-http",
		"version":     strings.TrimSpace(promptdrafter.Version),
		"api_version": apiVersion,
	})
}

// envelope is the {success, ...} body every library and node route answers with.
type envelope map[string]any

func ok(fields envelope) envelope {
	out := envelope{"success": true}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound), errors.Is(err, domain.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrInvalidInputCount),
		errors.Is(err, library.ErrInvalidPayload),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Warn("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, envelope{"success": false, "message": err.Error()})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errors.Join(errBadRequest, err)
}
