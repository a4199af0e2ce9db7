package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/expr"
	"github.com/aretw0/abacus/pkg/session"
)

// Engine defines what the HTTP layer needs from the calculator core.
type Engine interface {
	Start(sessionID string) *domain.State
	PressAll(ctx context.Context, state *domain.State, keys ...domain.Key) (*domain.State, error)
	Render(state *domain.State) domain.View
	Degrees() bool
}

// Server serves calculator sessions over JSON.
type Server struct {
	Engine   Engine
	Sessions *session.Manager
	Streams  *StreamManager

	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics exposes the gatherer on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, sessions *session.Manager, opts ...Option) (http.Handler, error) {
	server := &Server{
		Engine:   engine,
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.logger

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(doc)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		spec, _ := rawSpec()
		_, _ = w.Write(spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if server.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(validate)

		r.Get("/health", server.GetHealth)
		r.Get("/info", server.GetInfo)
		r.Post("/evaluate", server.Evaluate)
		r.Get("/sessions", server.ListSessions)
		r.Post("/sessions", server.CreateSession)
		r.Get("/sessions/{id}", server.GetSession)
		r.Delete("/sessions/{id}", server.DeleteSession)
		r.Post("/sessions/{id}/keys", server.PressKeys)
		r.Get("/sessions/{id}/events", server.SubscribeEvents)
	})

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Abacus API Documentation</title>
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
</html>
`

// EvaluateRequest is the body of POST /evaluate.
type EvaluateRequest struct {
	Expression string             `json:"expression"`
	Angle      string             `json:"angle,omitempty"`
	Vars       map[string]float64 `json:"vars,omitempty"`
}

// EvaluateResponse is returned when an evaluation succeeds.
type EvaluateResponse struct {
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// EvaluateError is returned with 422 when an evaluation fails.
type EvaluateError struct {
	Error    string `json:"error"`
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

// PressRequest is the body of POST /sessions/{id}/keys.
// Keys are applied first, then the keys spelling Text.
type PressRequest struct {
	Keys []string `json:"keys,omitempty"`
	Text string   `json:"text,omitempty"`
}

// Session pairs a session ID with its display.
type Session struct {
	SessionID string      `json:"session_id"`
	View      domain.View `json:"view"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "abacus-http",
		"version":     strings.TrimSpace(abacus.Version),
		"api_version": apiVersion,
	})
}

// Evaluate handles the POST /evaluate request.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request) {
	var body EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("Evaluate: Invalid request body", "err", err)
		return
	}

	vars := domain.VariablesFromMap(body.Vars)

	degrees := s.Engine.Degrees()
	switch body.Angle {
	case "deg":
		degrees = true
	case "rad":
		degrees = false
	}

	value, err := expr.Evaluate(body.Expression, expr.Context{Vars: vars, Degrees: degrees})
	if err != nil {
		kind := expr.KindOf(err)
		resp := EvaluateError{
			Error: err.Error(),
			Kind:  kind.String(),
			Label: kind.Label(),
		}
		var exprErr *expr.Error
		if errors.As(err, &exprErr) {
			resp.Position = exprErr.Pos
		}
		s.logger.Debug("Evaluate failed", "expression", body.Expression, "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	writeJSON(w, http.StatusOK, EvaluateResponse{
		Value:   value,
		Display: domain.FormatGeneralValue(value),
	})
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.internalError(w, "ListSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	state := s.Engine.Start(id)
	if err := s.Sessions.Save(r.Context(), id, state); err != nil {
		s.internalError(w, "CreateSession", err)
		return
	}

	s.logger.Info("Session created", "session_id", id)
	writeJSON(w, http.StatusCreated, Session{SessionID: id, View: s.Engine.Render(state)})
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	state, err := s.Sessions.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeProblem(w, http.StatusNotFound, err.Error())
			return
		}
		s.internalError(w, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, Session{SessionID: id, View: s.Engine.Render(state)})
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.internalError(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PressKeys handles the POST /sessions/{id}/keys request.
func (s *Server) PressKeys(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	var body PressRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("PressKeys: Invalid request body", "err", err)
		return
	}

	keys, err := parseKeys(body)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, err.Error())
		return
	}

	var before domain.View
	start := func() *domain.State { return s.Engine.Start(id) }
	state, err := s.Sessions.Update(r.Context(), id, start, func(current *domain.State) (*domain.State, error) {
		before = s.Engine.Render(current)
		return s.Engine.PressAll(r.Context(), current, keys...)
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnknownKey) {
			writeProblem(w, http.StatusBadRequest, err.Error())
			return
		}
		s.internalError(w, "PressKeys", err)
		return
	}

	after := s.Engine.Render(state)

	// Calculate and Broadcast Diff
	if diff := domain.Diff(id, &before, &after); diff != nil {
		if bytes, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, string(bytes))
		}
	}

	writeJSON(w, http.StatusOK, Session{SessionID: id, View: after})
}

func parseKeys(body PressRequest) ([]domain.Key, error) {
	keys := make([]domain.Key, 0, len(body.Keys))
	for _, name := range body.Keys {
		k, err := domain.ParseKey(name)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if body.Text != "" {
		typed, err := domain.KeysForExpression(body.Text)
		if err != nil {
			return nil, err
		}
		keys = append(keys, typed...)
	}
	return keys, nil
}

// sessionID binds the {id} path parameter.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid format for parameter id: "+err.Error())
		return "", false
	}
	return id, true
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op+" failed", "err", err)
	writeProblem(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
