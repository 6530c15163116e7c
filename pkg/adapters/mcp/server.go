package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/formwizard"
	"github.com/aretw0/formwizard/internal/presentation/graph"
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/schema"
	"github.com/aretw0/formwizard/pkg/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const definitionURI = "formwizard://definition"

// SessionResult aligns with the HTTP SessionResponse so agents see the same shape on every adapter.
type SessionResult struct {
	SessionID string         `json:"session_id" jsonschema_description:"The wizard session identifier"`
	State     *domain.State  `json:"state,omitempty" jsonschema_description:"The navigation state of the session"`
	View      *domain.View   `json:"view,omitempty" jsonschema_description:"What the active step shows: fields, buttons and navigation"`
	Result    map[string]any `json:"result,omitempty" jsonschema_description:"The submitted values, present once the wizard is submitted"`
}

type startArgs struct {
	SessionID string         `json:"session_id"`
	Values    map[string]any `json:"values"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

type valuesArgs struct {
	SessionID string         `json:"session_id"`
	Values    map[string]any `json:"values"`
}

type jumpArgs struct {
	SessionID string `json:"session_id"`
	Index     int    `json:"index"`
	Valid     *bool  `json:"valid"`
}

// Server exposes a wizard engine as MCP tools. Sessions are kept in the manager's store.
type Server struct {
	engine    *formwizard.Engine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *formwizard.Engine, sessions *session.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		logger:    logger,
		mcpServer: server.NewMCPServer("formwizard-mcp", strings.TrimSpace(formwizard.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on addr using SSE and stops it when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
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
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

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

func sessionIDParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("The wizard session identifier"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_wizard",
		mcp.WithDescription("Start a wizard session (or return the existing one) on its first step."),
		mcp.WithString("session_id", mcp.Description("Session identifier; generated when omitted")),
		mcp.WithObject("values", mcp.Description("Initial form values, keyed by field name (dotted names allowed)")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("get_view",
		mcp.WithDescription("Render the active step of a session: its fields, buttons and navigation."),
		sessionIDParam(),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleGetView))

	s.mcpServer.AddTool(mcp.NewTool("set_values",
		mcp.WithDescription("Merge form values into the session without navigating."),
		sessionIDParam(),
		mcp.WithObject("values", mcp.Required(), mcp.Description("Form values keyed by field name")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleSetValues))

	s.mcpServer.AddTool(mcp.NewTool("next_step",
		mcp.WithDescription("Validate the active step and advance to the step its next_step resolves to."),
		sessionIDParam(),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleNext))

	s.mcpServer.AddTool(mcp.NewTool("previous_step",
		mcp.WithDescription("Go back to the previously visited step."),
		sessionIDParam(),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleBack))

	s.mcpServer.AddTool(mcp.NewTool("jump_to_step",
		mcp.WithDescription("Jump to a visited step by its navigation index."),
		sessionIDParam(),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Index of the visited step (0 is the first step)")),
		mcp.WithBoolean("valid", mcp.Description("Override the form validity; computed from the step fields when omitted")),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleJump))

	s.mcpServer.AddTool(mcp.NewTool("submit_wizard",
		mcp.WithDescription("Validate the active step and submit the values of every visited step."),
		sessionIDParam(),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("cancel_wizard",
		mcp.WithDescription("Cancel the session."),
		sessionIDParam(),
		mcp.WithOutputSchema[SessionResult](),
	), mcp.NewStructuredToolHandler(s.handleCancel))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the step graph as a Mermaid flowchart, optionally highlighting a session's path."),
		mcp.WithString("session_id", mcp.Description("Session whose visited steps are highlighted")),
	), s.handleGraph)
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args startArgs) (SessionResult, error) {
	id := args.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	state, err := s.sessions.Start(ctx, id, s.engine.Start)
	if err != nil {
		return SessionResult{}, err
	}
	if len(args.Values) > 0 {
		state, err = s.sessions.Update(ctx, id, func(st *domain.State) (*domain.State, error) {
			return s.engine.ApplyValues(st, args.Values)
		})
		if err != nil {
			return SessionResult{}, err
		}
	}
	s.logger.Info("session started", "session_id", id)
	return s.result(state)
}

func (s *Server) handleGetView(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResult, error) {
	state, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return SessionResult{}, err
	}
	return s.result(state)
}

func (s *Server) handleSetValues(ctx context.Context, request mcp.CallToolRequest, args valuesArgs) (SessionResult, error) {
	return s.update(ctx, args.SessionID, func(st *domain.State) (*domain.State, error) {
		return s.engine.ApplyValues(st, args.Values)
	})
}

func (s *Server) handleNext(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResult, error) {
	return s.update(ctx, args.SessionID, func(st *domain.State) (*domain.State, error) {
		if err := s.engine.Validate(st); err != nil {
			return nil, err
		}
		return s.engine.Next(ctx, st, nil, s.engine.RegisteredFields(st))
	})
}

func (s *Server) handleBack(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResult, error) {
	return s.update(ctx, args.SessionID, func(st *domain.State) (*domain.State, error) {
		return s.engine.Back(ctx, st)
	})
}

func (s *Server) handleJump(ctx context.Context, request mcp.CallToolRequest, args jumpArgs) (SessionResult, error) {
	return s.update(ctx, args.SessionID, func(st *domain.State) (*domain.State, error) {
		valid := s.engine.Validate(st) == nil
		if args.Valid != nil {
			valid = *args.Valid
		}
		return s.engine.JumpTo(ctx, st, args.Index, valid)
	})
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResult, error) {
	return s.update(ctx, args.SessionID, func(st *domain.State) (*domain.State, error) {
		if err := s.engine.Validate(st); err != nil {
			return nil, err
		}
		return s.engine.Submit(ctx, st, nil, s.engine.RegisteredFields(st))
	})
}

func (s *Server) handleCancel(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (SessionResult, error) {
	return s.update(ctx, args.SessionID, func(st *domain.State) (*domain.State, error) {
		return s.engine.Cancel(ctx, st)
	})
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var overlay *graph.Overlay
	if id := request.GetString("session_id", ""); id != "" {
		state, err := s.sessions.Load(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load session: %v", err)), nil
		}
		overlay = graph.OverlayFromState(state)
	}
	reg := s.engine.Registry()
	return mcp.NewToolResultText(graph.GenerateMermaid(reg.Steps(), reg.FirstKey(), overlay)), nil
}

// update applies fn under the session lock. Validation failures list every offending field.
func (s *Server) update(ctx context.Context, id string, fn func(*domain.State) (*domain.State, error)) (SessionResult, error) {
	if id == "" {
		return SessionResult{}, fmt.Errorf("session_id is required")
	}
	state, err := s.sessions.Update(ctx, id, fn)
	if err != nil {
		if errs := schema.ValidationErrors(err); len(errs) > 0 {
			s.logger.Debug("step rejected", "session_id", id, "invalid", len(errs))
		}
		return SessionResult{}, err
	}
	return s.result(state)
}

func (s *Server) result(state *domain.State) (SessionResult, error) {
	view, err := s.engine.Render(state, s.engine.Validate(state) == nil)
	if err != nil {
		return SessionResult{}, err
	}
	res := SessionResult{SessionID: state.SessionID, State: state, View: &view}
	if state.Status == domain.StatusSubmitted {
		res.Result = state.Result
	}
	return res, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(definitionURI, "Wizard Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Definition())
		if err != nil {
			return nil, fmt.Errorf("failed to encode definition: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      definitionURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
