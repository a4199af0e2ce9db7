package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/abacus/internal/cli"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the calculator as an MCP Server, exposing evaluate, press_keys,
get_display and clear_memory as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		app, err := loadApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.ServeMCP(ctx, app)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringP("transport", "t", "", "Transport: stdio or sse")
	mcpCmd.Flags().IntP("port", "p", 8081, "Port for the SSE transport")
}
