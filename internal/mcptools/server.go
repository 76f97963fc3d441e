package mcptools

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// shutdownTimeout bounds the wait for in-flight requests once ctx ends.
const shutdownTimeout = 5 * time.Second

// version is set by the linker at build time.
var version = "dev"

// Version returns the version reported to MCP clients.
func Version() string { return version }

// NewServer creates an MCP server with the selection tools registered.
func NewServer(svc *SelectorService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "excerpt",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "select_content",
		Description: "Extract regions of a file with selectors (lines, def, class, section, pattern, path). Pass either inline content with a filePath hint or just a filePath to read. Mode interface reduces Python code to signatures and docstrings.",
	}, svc.SelectContent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "interface_outline",
		Description: "Return the public interface of a Python file: signatures, decorators and docstrings with bodies elided. Format mermaid returns a diagram of its classes and functions instead.",
	}, svc.InterfaceOutline)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_selectors",
		Description: "Describe every selector kind, its syntax and the file types it applies to, plus the configured @presets.",
	}, svc.ListSelectors)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_manifest",
		Description: "Run every selection job in a YAML or JSON manifest concurrently. Failed jobs are reported alongside successful ones.",
	}, svc.RunManifest)

	return server
}

// RunStdio runs the server on stdio, blocking until stdin is closed or the
// context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP tools over streamable HTTP on addr until ctx ends
// or the listener fails.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string, logger *zap.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return serveHTTP(ctx, server, ln, logger)
}

// serveHTTP owns ln. It returns after Serve has exited.
func serveHTTP(ctx context.Context, server *mcp.Server, ln net.Listener, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	served := make(chan error, 1)
	go func() {
		served <- httpServer.Serve(ln)
	}()

	select {
	case err := <-served:
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete, closing connections", zap.Error(err))
		_ = httpServer.Close()
	}
	if err := <-served; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	logger.Info("http server stopped", zap.String("addr", ln.Addr().String()))
	return nil
}
