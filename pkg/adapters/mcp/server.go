package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/expr"
	"github.com/aretw0/abacus/pkg/session"
)

// DefaultSessionID is used when a tool call names no session.
const DefaultSessionID = "default"

// Engine defines the calculator operations the MCP tools need.
type Engine interface {
	Start(sessionID string) *domain.State
	PressAll(ctx context.Context, state *domain.State, keys ...domain.Key) (*domain.State, error)
	Render(state *domain.State) domain.View
	Degrees() bool
}

// EvaluateResult is the structured output of the evaluate tool.
type EvaluateResult struct {
	Expression string  `json:"expression" jsonschema_description:"The evaluated expression"`
	Value      float64 `json:"value" jsonschema_description:"Numeric result (0 on error)"`
	Display    string  `json:"display,omitempty" jsonschema_description:"Result as the calculator displays it"`
	Error      string  `json:"error,omitempty" jsonschema_description:"Display label of the failure"`
	Kind       string  `json:"kind,omitempty" jsonschema_description:"Error kind, e.g. syntax or domain"`
}

// DisplayResponse is the structured output of the session tools.
type DisplayResponse struct {
	SessionID string      `json:"session_id" jsonschema_description:"Session the keys were applied to"`
	View      domain.View `json:"view" jsonschema_description:"Calculator display after the last key"`
}

// Server wraps the calculator and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("abacus-mcp", strings.TrimSpace(abacus.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, mostly for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
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

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: evaluate
	evaluateTool := mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate an infix expression such as 2+3*4, sin(30) or 5! without touching any session."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Infix expression, at most 128 bytes")),
		mcp.WithString("angle", mcp.Enum("deg", "rad"), mcp.Description("Angle mode for trigonometric functions")),
		mcp.WithString("vars", mcp.Description(`JSON object of variable values, e.g. {"X": 2, "Ans": 10}`)),
		mcp.WithOutputSchema[EvaluateResult](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))

	// TOOL: press_keys
	pressTool := mcp.NewTool("press_keys",
		mcp.WithDescription("Press calculator keys in a session. Keys are applied first, then the keys spelling text."),
		mcp.WithString("session_id", mcp.Description("Session to use (default: \"default\"); created on first use")),
		mcp.WithString("keys", mcp.Description("Space separated key names, e.g. \"SHIFT SIN 0 . 5 =\"")),
		mcp.WithString("text", mcp.Description("Expression to type, e.g. \"sqrt(16)=\"")),
		mcp.WithOutputSchema[DisplayResponse](),
	)
	s.mcpServer.AddTool(pressTool, mcp.NewStructuredToolHandler(s.handlePressKeys))

	// TOOL: get_display
	displayTool := mcp.NewTool("get_display",
		mcp.WithDescription("Read the current display of a session."),
		mcp.WithString("session_id", mcp.Description("Session to read (default: \"default\")")),
		mcp.WithOutputSchema[DisplayResponse](),
	)
	s.mcpServer.AddTool(displayTool, mcp.NewStructuredToolHandler(s.handleGetDisplay))

	// TOOL: clear_memory
	clearTool := mcp.NewTool("clear_memory",
		mcp.WithDescription("Reset all variables (including Ans) of a session and clear its display."),
		mcp.WithString("session_id", mcp.Description("Session to reset (default: \"default\")")),
		mcp.WithOutputSchema[DisplayResponse](),
	)
	s.mcpServer.AddTool(clearTool, mcp.NewStructuredToolHandler(s.handleClearMemory))
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EvaluateResult, error) {
	expression, _ := args["expression"].(string)

	degrees := s.engine.Degrees()
	switch angle, _ := args["angle"].(string); angle {
	case "deg":
		degrees = true
	case "rad":
		degrees = false
	}

	var values map[string]float64
	if varsStr, ok := args["vars"].(string); ok && varsStr != "" {
		if err := json.Unmarshal([]byte(varsStr), &values); err != nil {
			return EvaluateResult{}, fmt.Errorf("invalid vars: %w", err)
		}
	}

	result := EvaluateResult{Expression: expression}
	value, err := expr.Evaluate(expression, expr.Context{Vars: domain.VariablesFromMap(values), Degrees: degrees})
	if err != nil {
		kind := expr.KindOf(err)
		result.Error = kind.Label()
		result.Kind = kind.String()
		s.logger.Debug("MCP Evaluate failed", "expression", expression, "err", err)
		return result, nil
	}

	result.Value = value
	result.Display = domain.FormatGeneralValue(value)
	return result, nil
}

func (s *Server) handlePressKeys(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DisplayResponse, error) {
	id := sessionArg(args)

	var keys []domain.Key
	if keysStr, ok := args["keys"].(string); ok {
		for _, name := range strings.Fields(keysStr) {
			k, err := domain.ParseKey(name)
			if err != nil {
				return DisplayResponse{}, err
			}
			keys = append(keys, k)
		}
	}
	if text, ok := args["text"].(string); ok && text != "" {
		typed, err := domain.KeysForExpression(text)
		if err != nil {
			return DisplayResponse{}, err
		}
		keys = append(keys, typed...)
	}

	return s.apply(ctx, id, keys...)
}

func (s *Server) handleGetDisplay(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DisplayResponse, error) {
	id := sessionArg(args)
	state, err := s.sessions.LoadOrStart(ctx, id, s.starter(id))
	if err != nil {
		return DisplayResponse{}, fmt.Errorf("load session: %w", err)
	}
	return DisplayResponse{SessionID: id, View: s.engine.Render(state)}, nil
}

func (s *Server) handleClearMemory(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DisplayResponse, error) {
	return s.apply(ctx, sessionArg(args), domain.KeyReset)
}

func (s *Server) apply(ctx context.Context, id string, keys ...domain.Key) (DisplayResponse, error) {
	state, err := s.sessions.Update(ctx, id, s.starter(id), func(current *domain.State) (*domain.State, error) {
		return s.engine.PressAll(ctx, current, keys...)
	})
	if err != nil {
		s.logger.Warn("MCP press failed", "session_id", id, "err", err)
		return DisplayResponse{}, fmt.Errorf("press keys: %w", err)
	}
	return DisplayResponse{SessionID: id, View: s.engine.Render(state)}, nil
}

func (s *Server) starter(id string) func() *domain.State {
	return func() *domain.State { return s.engine.Start(id) }
}

func sessionArg(args map[string]interface{}) string {
	if id, ok := args["session_id"].(string); ok && id != "" {
		return id
	}
	return DefaultSessionID
}

func (s *Server) registerResources() {
	// EXPOSE: abacus://keys
	s.mcpServer.AddResource(mcp.NewResource("abacus://keys", "Calculator key names",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names := make([]string, 0, len(domain.AllKeys()))
		for _, k := range domain.AllKeys() {
			names = append(names, k.String())
		}
		jsonBytes, _ := json.Marshal(names)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "abacus://keys",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
