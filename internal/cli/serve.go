package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/abacus/internal/config"
	httpAdapter "github.com/aretw0/abacus/pkg/adapters/http"
	"github.com/aretw0/abacus/pkg/adapters/mcp"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/aretw0/abacus/pkg/persistence/middleware"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds the graceful shutdown of HTTP servers.
const ShutdownTimeout = 5 * time.Second

// NewHTTPHandler wires the engine, sessions and metrics behind the HTTP API.
func NewHTTPHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (http.Handler, func() error, error) {
	metrics := observability.NewMetrics()
	sessions, closeStore, err := OpenSessions(ctx, cfg, logger, middleware.NewInstrumentMiddleware(metrics))
	if err != nil {
		return nil, nil, err
	}

	engine := NewEngine(cfg, logger, metrics.Hooks())

	handler, err := httpAdapter.NewHandler(engine, sessions,
		httpAdapter.WithMetrics(metrics.Handler()),
		httpAdapter.WithLogger(logger),
	)
	if err != nil {
		_ = closeStore()
		return nil, nil, fmt.Errorf("failed to build http handler: %w", err)
	}
	return handler, closeStore, nil
}

// Serve runs handler on ln until ctx is done, then shuts the server down gracefully.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting Abacus Server", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err)
		}
		logger.Info("Abacus Server stopped gracefully")
		return nil
	})
	return g.Wait()
}

// RunMCP serves the MCP tools over stdio, or over SSE on port when transport is "sse".
func RunMCP(ctx context.Context, cfg *config.Config, logger *slog.Logger, transport string, port int) error {
	sessions, closeStore, err := OpenSessions(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := mcp.NewServer(NewEngine(cfg, logger), sessions, mcp.WithLogger(logger))

	switch transport {
	case "stdio":
		logger.Info("Starting Abacus MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		return srv.ServeSSE(ctx, port)
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
	}
}
