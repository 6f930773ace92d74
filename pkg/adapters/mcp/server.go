package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/aretw0/tela"
	"github.com/aretw0/tela/internal/config"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/aretw0/tela/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// TranslateResponse is the structured result of the translate tool.
type TranslateResponse struct {
	Output string       `json:"output" jsonschema_description:"The rendered automaton"`
	Stats  domain.Stats `json:"stats" jsonschema_description:"Sizes and acceptance of the automata"`
	Cached bool         `json:"cached" jsonschema_description:"Whether the result came from the cache"`
}

// MergeableResponse is the structured result of the mergeable tool.
type MergeableResponse struct {
	Formula   string `json:"formula"`
	Kind      string `json:"kind"`
	Mergeable bool   `json:"mergeable" jsonschema_description:"Whether the construction took the merge"`
}

// Engine is what the MCP server needs from the translator.
type Engine interface {
	ports.Engine
	Mergeable(ctx context.Context, input string, kind domain.EventType) (bool, error)
}

// Server wraps the translator and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	base      domain.Config
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. Configuration overrides
// sent by clients apply to base.
func NewServer(engine Engine, base domain.Config) *Server {
	s := &Server{
		engine:    engine,
		base:      base,
		mcpServer: server.NewMCPServer("tela-mcp", tela.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it
// when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		slog.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	formats := make([]string, len(domain.Formats))
	for i, f := range domain.Formats {
		formats[i] = string(f)
	}

	// TOOL: translate
	translateTool := mcp.NewTool("translate",
		mcp.WithDescription("Translate an LTL formula into an automaton with Emerson-Lei acceptance."),
		mcp.WithString("formula", mcp.Required(), mcp.Description("LTL formula, e.g. G (req -> F grant)")),
		mcp.WithString("format", mcp.Enum(formats...), mcp.Description("Output format (default hoa)")),
		mcp.WithNumber("phase", mcp.Description("1 alternating automaton, 2 nondeterministic automaton (default), 3 both")),
		mcp.WithString("config", mcp.Description("JSON object of option overrides, e.g. {\"preset\": \"ltl3ba\", \"eq_level\": 1}")),
		mcp.WithOutputSchema[TranslateResponse](),
	)
	s.mcpServer.AddTool(translateTool, mcp.NewStructuredToolHandler(s.handleTranslate))

	// TOOL: mergeable
	mergeableTool := mcp.NewTool("mergeable",
		mcp.WithDescription("Report whether the alternating construction of a formula merges an until or folds a G loop."),
		mcp.WithString("formula", mcp.Required(), mcp.Description("LTL formula")),
		mcp.WithString("kind", mcp.Enum("until", "globally"), mcp.Description("Merge to look for (default until)")),
		mcp.WithOutputSchema[MergeableResponse](),
	)
	s.mcpServer.AddTool(mergeableTool, mcp.NewStructuredToolHandler(s.handleMergeable))
}

type translateArgs struct {
	Formula string `mapstructure:"formula"`
	Format  string `mapstructure:"format"`
	Phase   int    `mapstructure:"phase"`
	Config  any    `mapstructure:"config"`
}

func (s *Server) handleTranslate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (TranslateResponse, error) {
	var in translateArgs
	if err := mapstructure.WeakDecode(args, &in); err != nil {
		return TranslateResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if in.Formula == "" {
		return TranslateResponse{}, errors.New("formula is required")
	}

	req := domain.Request{
		Formula: in.Formula,
		Format:  domain.Format(in.Format),
		Phase:   domain.Phase(in.Phase),
	}
	overrides, err := overridesOf(in.Config)
	if err != nil {
		return TranslateResponse{}, err
	}
	if len(overrides) > 0 {
		cfg, err := config.Decode(overrides, s.base)
		if err != nil {
			return TranslateResponse{}, err
		}
		req.Config = &cfg
	}

	resp, err := s.engine.Render(ctx, req)
	if err != nil {
		slog.Warn("MCP translate failed", "formula", in.Formula, "err", err)
		return TranslateResponse{}, fmt.Errorf("translate failed: %w", err)
	}
	return TranslateResponse{Output: resp.Output, Stats: resp.Stats, Cached: resp.Cached}, nil
}

// overridesOf accepts the config argument as an object or as a JSON string.
func overridesOf(v any) (map[string]any, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return c, nil
	case string:
		if c == "" {
			return nil, nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(c), &m); err != nil {
			return nil, fmt.Errorf("%w: config is not a JSON object: %v", domain.ErrInvalidConfig, err)
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: config must be an object", domain.ErrInvalidConfig)
}

func (s *Server) handleMergeable(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (MergeableResponse, error) {
	formula, _ := args["formula"].(string)
	kind, _ := args["kind"].(string)
	if formula == "" {
		return MergeableResponse{}, errors.New("formula is required")
	}

	event := domain.EventMergeableUntil
	switch kind {
	case "", "until":
		kind = "until"
	case "globally":
		event = domain.EventGloballyLoop
	default:
		return MergeableResponse{}, fmt.Errorf("unknown kind %q", kind)
	}

	ok, err := s.engine.Mergeable(ctx, formula, event)
	if err != nil {
		return MergeableResponse{}, fmt.Errorf("mergeable failed: %w", err)
	}
	return MergeableResponse{Formula: formula, Kind: kind, Mergeable: ok}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: tela://presets
	s.mcpServer.AddResource(mcp.NewResource("tela://presets", "Configuration presets",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(presets(s.base))
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "tela://presets",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

type preset struct {
	Name   string        `json:"name"`
	Config domain.Config `json:"config"`
}

// presets lists every preset applied to base, sorted by name.
func presets(base domain.Config) []preset {
	names := make([]string, 0, len(domain.Presets))
	for name := range domain.Presets {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]preset, 0, len(names))
	for _, name := range names {
		cfg := base
		domain.Presets[name](&cfg)
		out = append(out, preset{Name: name, Config: cfg})
	}
	return out
}
