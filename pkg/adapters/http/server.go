package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/tela"
	"github.com/aretw0/tela/internal/config"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/aretw0/tela/pkg/ltl"
	"github.com/aretw0/tela/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Server exposes a translation engine over HTTP.
type Server struct {
	Engine  ports.Engine
	Streams *StreamManager

	base    domain.Config
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithBaseConfig sets the configuration that request overrides apply to.
func WithBaseConfig(cfg domain.Config) Option {
	return func(s *Server) {
		s.base = cfg
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithStreams shares a StreamManager, typically one whose Observer is
// registered on the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.Engine, opts ...Option) http.Handler {
	s := &Server{
		Engine: engine,
		base:   domain.DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager()
	}

	r := chi.NewRouter()
	r.Post("/translate", s.Translate)
	r.Get("/translate", s.Translate)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return enableCORS(r)
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

// TranslateRequest is the body of POST /translate. Config holds overrides
// of the base configuration by snake_case name, plus an optional "preset".
type TranslateRequest struct {
	Formula string         `json:"formula"`
	Format  domain.Format  `json:"format,omitempty"`
	Phase   domain.Phase   `json:"phase,omitempty"`
	Config  map[string]any `json:"config,omitempty"`
}

// Translate handles POST /translate with a JSON body and
// GET /translate?formula=...&format=...&phase=... for quick checks.
func (s *Server) Translate(w http.ResponseWriter, r *http.Request) {
	var body TranslateRequest
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		body.Formula = q.Get("formula")
		body.Format = domain.Format(q.Get("format"))
		if p := q.Get("phase"); p != "" {
			var phase int
			if _, err := fmt.Sscan(p, &phase); err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %q", domain.ErrUnsupportedPhase, p))
				return
			}
			body.Phase = domain.Phase(phase)
		}
		if preset := q.Get("preset"); preset != "" {
			body.Config = map[string]any{"preset": preset}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		s.logger.Warn("Translate: invalid request body", "err", err)
		return
	}
	if strings.TrimSpace(body.Formula) == "" {
		writeError(w, http.StatusBadRequest, errors.New("formula is required"))
		return
	}

	req := domain.Request{Formula: body.Formula, Format: body.Format, Phase: body.Phase}
	if len(body.Config) > 0 {
		cfg, err := config.Decode(body.Config, s.base)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		req.Config = &cfg
	}

	resp, err := s.Engine.Render(r.Context(), req)
	if err != nil {
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("Translate failed", "formula", body.Formula, "err", err)
		}
		writeError(w, status, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Translate response encode failed", "err", err)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, ltl.ErrSyntax),
		errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrUnsupportedPhase):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTooManyMarks):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	presets := make([]string, 0, len(domain.Presets))
	for name := range domain.Presets {
		presets = append(presets, name)
	}
	resp := map[string]any{
		"app":     "tela-http",
		"version": tela.Version,
		"formats": domain.Formats,
		"presets": presets,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
