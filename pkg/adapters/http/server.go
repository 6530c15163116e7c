package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/formwizard"
	"github.com/aretw0/formwizard/internal/presentation/graph"
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/schema"
	"github.com/aretw0/formwizard/pkg/session"
	"github.com/aretw0/formwizard/pkg/values"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// SessionResponse is returned by every session endpoint.
type SessionResponse struct {
	SessionID string         `json:"session_id"`
	State     *domain.State  `json:"state,omitempty"`
	View      *domain.View   `json:"view,omitempty"`
	Result    map[string]any `json:"result,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error         string   `json:"error"`
	InvalidFields []string `json:"invalid_fields,omitempty"`
}

// Server exposes one wizard engine over HTTP. Sessions live in the manager's store,
// so any number of servers can share a Redis store.
type Server struct {
	engine   *formwizard.Engine
	sessions *session.Manager
	streams  *StreamManager
	spec     *openapi3.T
	logger   *slog.Logger
	metrics  http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts h on GET /metrics (typically promhttp.HandlerFor).
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer loads the OpenAPI contract and wires the routes.
func NewServer(ctx context.Context, engine *formwizard.Engine, sessions *session.Manager, opts ...Option) (*Server, error) {
	s := &Server{
		engine:   engine,
		sessions: sessions,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)

	spec, err := LoadSpec(ctx)
	if err != nil {
		return nil, err
	}
	s.spec = spec
	return s, nil
}

// Handler returns the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.getHealth)
	r.Get("/openapi.yaml", s.getSpec)
	r.Get("/wizard", s.getWizard)
	r.Get("/wizard/graph", s.getGraph)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Put("/values", s.setValues)
			r.Post("/next", s.next)
			r.Post("/back", s.back)
			r.Post("/jump", s.jump)
			r.Post("/submit", s.submit)
			r.Post("/cancel", s.cancel)
			r.Get("/events", s.subscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "api_version": s.spec.Info.Version})
}

func (s *Server) getSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(rawSpec)
}

func (s *Server) getWizard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Definition())
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.Overlay
	if id := r.URL.Query().Get("session_id"); id != "" {
		state, err := s.sessions.Load(r.Context(), id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		overlay = graph.OverlayFromState(state)
	}
	reg := s.engine.Registry()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(reg.Steps(), reg.FirstKey(), overlay))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string         `json:"session_id"`
		Values    map[string]any `json:"values"`
	}
	if !s.decode(w, r, "CreateSessionRequest", &body) {
		return
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	ctx := r.Context()
	state, err := s.sessions.Start(ctx, body.SessionID, s.engine.Start)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(body.Values) > 0 {
		state, err = s.sessions.Update(ctx, body.SessionID, func(st *domain.State) (*domain.State, error) {
			return s.engine.ApplyValues(st, body.Values)
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.logger.Info("session created", "session_id", body.SessionID, "request_id", middleware.GetReqID(ctx))
	s.writeSession(w, http.StatusCreated, state)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeSession(w, http.StatusOK, state)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setValues(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Values map[string]any `json:"values"`
	}
	if !s.decode(w, r, "ValuesRequest", &body) {
		return
	}
	s.transition(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.ApplyValues(st, body.Values)
	})
}

func (s *Server) next(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		if err := s.engine.Validate(st); err != nil {
			return nil, err
		}
		return s.engine.Next(ctx, st, nil, s.engine.RegisteredFields(st))
	})
}

func (s *Server) back(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.Back(ctx, st)
	})
}

func (s *Server) jump(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Index int   `json:"index"`
		Valid *bool `json:"valid"`
	}
	if !s.decode(w, r, "JumpRequest", &body) {
		return
	}
	s.transition(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		valid := s.engine.Validate(st) == nil
		if body.Valid != nil {
			valid = *body.Valid
		}
		return s.engine.JumpTo(ctx, st, body.Index, valid)
	})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		if err := s.engine.Validate(st); err != nil {
			return nil, err
		}
		return s.engine.Submit(ctx, st, nil, s.engine.RegisteredFields(st))
	})
}

func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, func(ctx context.Context, st *domain.State) (*domain.State, error) {
		return s.engine.Cancel(ctx, st)
	})
}

// transition applies fn under the session lock, broadcasts the diff and writes the new state.
func (s *Server) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, *domain.State) (*domain.State, error)) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var before *domain.State
	next, err := s.sessions.Update(ctx, id, func(st *domain.State) (*domain.State, error) {
		before = st
		return fn(ctx, st)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if diff := domain.Diff(before, next); diff != nil {
		if payload, err := json.Marshal(diff); err == nil {
			s.streams.Broadcast(id, string(payload))
		}
	}
	s.writeSession(w, http.StatusOK, next)
}

func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Load(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	ch, unsubscribe := s.streams.Subscribe(id)
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// decode validates the body against the contract, then decodes it keeping numbers exact.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, schemaName string, dst any) bool {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: err.Error()})
		return false
	}
	if err := validateBody(s.spec, schemaName, raw); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return true
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func (s *Server) writeSession(w http.ResponseWriter, status int, state *domain.State) {
	resp := SessionResponse{SessionID: state.SessionID, State: state}
	if state.Status == domain.StatusSubmitted {
		resp.Result = state.Result
	}
	view, err := s.engine.Render(state, s.engine.Validate(state) == nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp.View = &view
	writeJSON(w, status, resp)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotActive):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNoNextStep):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, values.ErrInvalidPath):
		status = http.StatusBadRequest
	case len(schema.ValidationErrors(err)) > 0:
		status = http.StatusBadRequest
		for _, ve := range schema.ValidationErrors(err) {
			resp.InvalidFields = append(resp.InvalidFields, ve.Field)
		}
	default:
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
