package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dta-platform/adminctl/internal/api"
	amcp "github.com/dta-platform/adminctl/internal/mcp"
	"github.com/dta-platform/adminctl/internal/session"
)

func newMCPCmd() *cobra.Command {
	var (
		transport string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server for AI agents",
		Long: `Start a Model Context Protocol (MCP) server that exposes the admin
operations as tools for AI agents. Requires a logged-in profile; every tool
call goes through the same authenticated client as the console commands.

In stdio mode the server communicates over stdin/stdout using JSON-RPC,
suitable for MCP clients that launch the server as a subprocess. In HTTP
mode it listens on the given port for Streamable HTTP connections.`,
		Example: `  adminctl mcp                             # stdio mode
  adminctl mcp --transport http --port 3001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(transport, port)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport mode: stdio or http")
	cmd.Flags().IntVar(&port, "port", 3001, "HTTP port (only used with --transport http)")

	return cmd
}

func runMCP(transport string, port int) error {
	return withClient(func(ctx context.Context, client *api.Client, profile *session.Profile) error {
		logger := newLogger()
		mcpSrv := amcp.NewMCPServer(client, logger)

		switch transport {
		case "stdio":
			return mcpSrv.ServeStdio()
		case "http":
			addr := fmt.Sprintf(":%d", port)
			return mcpSrv.ServeHTTP(addr)
		default:
			return fmt.Errorf("unsupported transport %q; use 'stdio' or 'http'", transport)
		}
	})
}
