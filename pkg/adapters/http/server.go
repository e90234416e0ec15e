package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/framegraph"
	"github.com/aretw0/framegraph/internal/logging"
	"github.com/aretw0/framegraph/pkg/domain"
	"github.com/aretw0/framegraph/pkg/geom"
	"github.com/aretw0/framegraph/pkg/ingest"
	"github.com/aretw0/framegraph/pkg/notify"
	"github.com/aretw0/framegraph/pkg/ports"
	"github.com/aretw0/framegraph/pkg/store"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// DefaultMaxBodyBytes bounds POST /edges payloads.
const DefaultMaxBodyBytes = 1 << 20

// Graph defines the frame graph operations served over HTTP.
type Graph interface {
	ports.EdgeSink
	Resolve(source, target string) (geom.Transform, error)
	ResolveSource(source, target string) (geom.Transform, error)
	FindPath(source, target string) []string
	ListFrames() []string
	HasFrame(name string) bool
	BuildTree(window time.Duration) []domain.TreeNode
	Stats() store.Stats
	Watch(ctx context.Context) <-chan notify.Event
}

var _ Graph = (*framegraph.Graph)(nil)

// Server serves the frame graph API.
type Server struct {
	Graph   Graph
	metrics http.Handler
	logger  *slog.Logger
	maxBody int64
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxBodyBytes bounds the size of ingested payloads.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// NewHandler creates a new HTTP handler for the graph.
func NewHandler(graph Graph, opts ...Option) http.Handler {
	s := &Server{
		Graph:   graph,
		logger:  logging.NewNop(),
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/stats", s.GetStats)
	r.Get("/frames", s.ListFrames)
	r.Get("/frames/{name}", s.GetFrame)
	r.Get("/tree", s.GetTree)
	r.Get("/resolve", s.Resolve)
	r.Get("/path", s.FindPath)
	r.Post("/edges", s.PostEdges)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	doc, err := LoadSpec(context.Background())
	if err != nil {
		s.logger.Error("openapi: serving without request validation", "error", err)
		return enableCORS(r)
	}
	h, err := s.withRequestValidation(doc, r)
	if err != nil {
		s.logger.Error("openapi: serving without request validation", "error", err)
		return enableCORS(r)
	}
	return enableCORS(h)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TransformResponse is the wire form of a resolved transform.
type TransformResponse struct {
	Source      string    `json:"source"`
	Target      string    `json:"target"`
	Convention  string    `json:"convention"`
	Translation geom.Vec3 `json:"translation"`
	Rotation    geom.Quat `json:"rotation"`
}

// IngestResponse reports the outcome of POST /edges.
type IngestResponse struct {
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Reason: reason(err)})
}

const reasonInvalidRequest = "invalid_request"

func reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownFrame):
		return "unknown_frame"
	case errors.Is(err, domain.ErrNoPath):
		return "no_path"
	case errors.Is(err, domain.ErrInconsistentPath):
		return "inconsistent_path"
	}
	return ""
}

func queryPair(r *http.Request) (string, string, error) {
	var source, target string
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "source", q, &source); err != nil {
		return "", "", err
	}
	if err := runtime.BindQueryParameter("form", true, true, "target", q, &target); err != nil {
		return "", "", err
	}
	if source == "" || target == "" {
		return "", "", errors.New("source and target are required")
	}
	return source, target, nil
}

// optionalQuery binds an optional string parameter, returning "" when absent.
func optionalQuery(r *http.Request, name string) (string, error) {
	var v string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return "", err
	}
	return v, nil
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "framegraph-http",
		"version": strings.TrimSpace(framegraph.Version),
	})
}

// GetStats handles the GET /stats request.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Graph.Stats())
}

// ListFrames handles the GET /frames request.
func (s *Server) ListFrames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Graph.ListFrames())
}

// GetFrame handles the GET /frames/{name} request.
func (s *Server) GetFrame(w http.ResponseWriter, r *http.Request) {
	var name string
	err := runtime.BindStyledParameterWithOptions("simple", "name", chi.URLParam(r, "name"), &name,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if !s.Graph.HasFrame(name) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", domain.ErrUnknownFrame, name))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

// GetTree handles the GET /tree request. The optional expiry parameter is a
// Go duration overriding the configured window.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	raw, err := optionalQuery(r, "expiry")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	var window time.Duration
	if raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid expiry %q", raw))
			return
		}
		window = d
	}
	s.writeJSON(w, http.StatusOK, s.Graph.BuildTree(window))
}

// Resolve handles the GET /resolve request.
func (s *Server) Resolve(w http.ResponseWriter, r *http.Request) {
	source, target, err := queryPair(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	convention, err := optionalQuery(r, "convention")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	var t geom.Transform
	switch convention {
	case "", "target":
		convention = "target"
		t, err = s.Graph.Resolve(source, target)
	case "source":
		t, err = s.Graph.ResolveSource(source, target)
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown convention %q", convention))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}

	s.writeJSON(w, http.StatusOK, TransformResponse{
		Source:      source,
		Target:      target,
		Convention:  convention,
		Translation: t.Translation,
		Rotation:    t.Rotation,
	})
}

// FindPath handles the GET /path request.
func (s *Server) FindPath(w http.ResponseWriter, r *http.Request) {
	source, target, err := queryPair(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	path := s.Graph.FindPath(source, target)
	if path == nil {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q -> %q", domain.ErrNoPath, source, target))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"path": path})
}

// PostEdges handles the POST /edges request: a single edge message, a batch,
// or a JSON array, all carrying the classification given in the query.
func (s *Server) PostEdges(w http.ResponseWriter, r *http.Request) {
	raw, err := optionalQuery(r, "classification")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	class, err := domain.ParseClassification(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}

	msgs, err := ingest.Decode(body)
	if err != nil {
		s.logger.Warn("PostEdges: invalid request body", "error", err, "size", len(body))
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	res := ingest.NewApplier(s.Graph, ingest.WithLogger(s.logger)).Apply(msgs, class)
	resp := IngestResponse{Accepted: res.Accepted, Rejected: res.Rejected}
	for _, e := range res.Errors {
		resp.Errors = append(resp.Errors, e.Error())
	}

	status := http.StatusOK
	if res.Accepted == 0 && res.Rejected > 0 {
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, resp)
}

// SubscribeEvents handles the GET /events request (SSE). Each coalesced change
// signal becomes one "changed" event; clients re-query what they display.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := s.Graph.Watch(r.Context())
	s.logger.Info("SSE: client subscribed", "remote", r.RemoteAddr)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "remote", r.RemoteAddr)
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("SSE: event encode failed", "error", err)
				continue
			}
			fmt.Fprintf(w, "id: %d\nevent: changed\ndata: %s\n\n", ev.Seq, data)
			flusher.Flush()
		}
	}
}
