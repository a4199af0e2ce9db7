package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpadapter "github.com/aretw0/abacus/pkg/adapters/http"
	"github.com/aretw0/abacus/pkg/adapters/mcp"
)

const shutdownTimeout = 5 * time.Second

// NewHTTPServer builds the HTTP API server for app on cfg.HTTP.Addr.
func NewHTTPServer(app *App) (*http.Server, error) {
	handler, err := httpadapter.NewHandler(app.Engine, app.Sessions,
		httpadapter.WithLogger(app.Logger),
		httpadapter.WithMetrics(app.Registry),
	)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              app.Config.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, app *App) error {
	srv, err := NewHTTPServer(app)
	if err != nil {
		return err
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("Starting Abacus Server", "address", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		app.Logger.Info("Start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		app.Logger.Info("Abacus Server stopped gracefully")
		return nil
	}
}

// ServeMCP exposes the calculator as MCP tools over cfg.MCP.Transport.
func ServeMCP(ctx context.Context, app *App) error {
	srv := mcp.NewServer(app.Engine, app.Sessions, mcp.WithLogger(app.Logger))
	switch app.Config.MCP.Transport {
	case "sse":
		return srv.ServeSSE(ctx, app.Config.MCP.Port)
	case "stdio":
		return srv.ServeStdio()
	}
	return fmt.Errorf("unknown mcp transport %q", app.Config.MCP.Transport)
}
