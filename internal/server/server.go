// Package server exposes the step dispatcher as Model Context Protocol tools
// so agents can drive a browser one sentence at a time.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mj1618/websteps/internal/logging"
	"github.com/mj1618/websteps/internal/steps"
	"github.com/mj1618/websteps/internal/version"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
}

// Server serializes every tool call onto one browser session.
type Server struct {
	// mu ensures at most one step runs against the session at a time.
	mu          sync.Mutex
	dispatcher  *steps.Dispatcher
	stopOnError bool
	mcp         *mcpserver.MCPServer
	log         *slog.Logger
}

// New creates a server with the step, steps and scenario tools registered.
func New(d *steps.Dispatcher, stopOnError bool) *Server {
	s := &Server{
		dispatcher:  d,
		stopOnError: stopOnError,
		mcp:         mcpserver.NewMCPServer("websteps", version.Version),
		log:         logging.New("server"),
	}
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Serve runs the configured transport until it fails or ctx is done.
func (s *Server) Serve(ctx context.Context, cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		s.log.Info("serving MCP", "transport", "stdio")
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		addr := fmt.Sprintf(":%d", cfg.Port)
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		errc := make(chan error, 1)
		go func() {
			s.log.Info("serving MCP", "transport", "streamable-http", "addr", addr)
			errc <- httpServer.Start(addr)
		}()
		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		}
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}
