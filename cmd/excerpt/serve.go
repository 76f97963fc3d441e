package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dusk-indust/excerpt/internal/mcptools"
)

func newServeMCPCmd(app *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the selection tools over the Model Context Protocol",
		Long: `Serve select_content, interface_outline, list_selectors and run_manifest
as MCP tools. The server speaks stdio unless --http (or mcpAddr in the
configuration) gives a listen address for the streamable HTTP transport.
Relative file paths in tool calls resolve against the working directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("resolve working directory: %w", err)
			}

			svc := mcptools.NewSelectorService(app.cfg, root, app.logger)
			server := mcptools.NewServer(svc)

			if addr == "" {
				addr = app.cfg.MCPAddr
			}
			if addr == "" {
				app.logger.Info("serving MCP on stdio")
				return mcptools.RunStdio(cmd.Context(), server)
			}
			app.logger.Info("serving MCP over HTTP", zap.String("addr", addr))
			return mcptools.RunHTTP(cmd.Context(), server, addr, app.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "http", "", "listen address for the streamable HTTP transport, e.g. :8811")
	return cmd
}
