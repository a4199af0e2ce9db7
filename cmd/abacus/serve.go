package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/abacus/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the calculator as an HTTP API: stateless evaluation, keypad sessions
with Server-Sent Events, the OpenAPI document and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		app, err := loadApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.Serve(ctx, app)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
}
