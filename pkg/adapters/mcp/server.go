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

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/runner"
	"github.com/aretw0/abacus/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/sync/errgroup"
)

// SessionsURI is the resource listing live sessions.
const SessionsURI = "abacus://sessions"

// Server exposes calculator sessions as MCP tools.
type Server struct {
	engine    ports.Engine
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Engine, sessions *session.Manager, opts ...Option) *Server {
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

// MCPServer exposes the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on the given port using SSE until ctx is done.
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

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
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

// Tool arguments, decoded from the raw argument map.
type (
	sessionArgs struct {
		SessionID string `mapstructure:"session_id"`
	}
	sendEventArgs struct {
		SessionID string           `mapstructure:"session_id"`
		Type      domain.EventType `mapstructure:"type"`
		Value     string           `mapstructure:"value"`
	}
	pressKeysArgs struct {
		SessionID string `mapstructure:"session_id"`
		Keys      string `mapstructure:"keys"`
	}
)

func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	eventTypes := []string{
		string(domain.EventDigit), string(domain.EventDecimalPoint), string(domain.EventOperator),
		string(domain.EventEquals), string(domain.EventDelete), string(domain.EventClear),
	}

	// TOOL: send_event
	s.mcpServer.AddTool(mcp.NewTool("send_event",
		mcp.WithDescription("Apply one key-press to a calculator session and return its view. The session is created on first use."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("type", mcp.Required(), mcp.Enum(eventTypes...), mcp.Description("Event type")),
		mcp.WithString("value", mcp.Description("Digit 0-9 for digit events, + - * / for operator events")),
		mcp.WithOutputSchema[domain.View](),
	), mcp.NewStructuredToolHandler(s.handleSendEvent))

	// TOOL: press_keys
	s.mcpServer.AddTool(mcp.NewTool("press_keys",
		mcp.WithDescription("Apply a sequence of keys such as \"7 + 8 =\". Keys: 0-9 . + - * / = del c."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("keys", mcp.Required(), mcp.Description("Space-separated keys")),
		mcp.WithOutputSchema[domain.View](),
	), mcp.NewStructuredToolHandler(s.handlePressKeys))

	// TOOL: get_state
	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Read the current view of an existing session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[domain.View](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	// TOOL: clear_session
	s.mcpServer.AddTool(mcp.NewTool("clear_session",
		mcp.WithDescription("Drop a session entirely, including its history."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
	), s.handleClearSession)
}

func (s *Server) handleSendEvent(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (domain.View, error) {
	var in sendEventArgs
	if err := decodeArgs(args, &in); err != nil {
		return domain.View{}, err
	}
	ev := domain.Event{Type: in.Type, Value: in.Value}
	return s.apply(ctx, in.SessionID, []domain.Event{ev})
}

func (s *Server) handlePressKeys(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (domain.View, error) {
	var in pressKeysArgs
	if err := decodeArgs(args, &in); err != nil {
		return domain.View{}, err
	}

	clean, err := runner.SanitizeInput(in.Keys)
	if err != nil {
		s.logger.Warn("MCP press_keys: Input rejected", "err", err, "size", len(in.Keys))
		return domain.View{}, fmt.Errorf("input rejected: %w", err)
	}
	req, err := runner.ParseLine(clean)
	if err != nil {
		return domain.View{}, err
	}
	if req.Command != runner.CommandNone {
		return domain.View{}, fmt.Errorf("%q is a REPL command, not a key", req.Command)
	}
	return s.apply(ctx, in.SessionID, req.Events)
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (domain.View, error) {
	var in sessionArgs
	if err := decodeArgs(args, &in); err != nil {
		return domain.View{}, err
	}
	state, err := s.sessions.Load(ctx, in.SessionID)
	if err != nil {
		return domain.View{}, err
	}
	return s.engine.View(state, nil), nil
}

func (s *Server) handleClearSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in sessionArgs
	if err := decodeArgs(request.GetArguments(), &in); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.sessions.Delete(ctx, in.SessionID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("session %s cleared", in.SessionID)), nil
}

// apply runs events against the session under its lock. Rejections and
// evaluation failures are part of the returned view, not tool errors.
func (s *Server) apply(ctx context.Context, sessionID string, events []domain.Event) (domain.View, error) {
	if sessionID == "" {
		return domain.View{}, errors.New("session_id is required")
	}

	var rejected error
	state, err := s.sessions.Update(ctx, sessionID, func(st *domain.State) error {
		for _, ev := range events {
			err := s.engine.Apply(ctx, st, ev)
			switch {
			case err == nil:
			case domain.IsRejection(err):
				rejected = err
			case domain.KindOf(err) != domain.KindNone:
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.View{}, err
	}
	return s.engine.View(state, rejected), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SessionsURI, "Live calculator sessions",
		mcp.WithMIMEType("application/json"),
	), s.handleSessionsResource)
}

func (s *Server) handleSessionsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	jsonBytes, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SessionsURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
