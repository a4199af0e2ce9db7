package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/aretw0/abacus"
	"github.com/aretw0/abacus/internal/config"
	"github.com/aretw0/abacus/pkg/adapters/file"
	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/adapters/redis"
	"github.com/aretw0/abacus/pkg/observability"
	"github.com/aretw0/abacus/pkg/persistence/middleware"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/session"
)

// App bundles the services shared by every command.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Engine   *abacus.Engine
	Store    ports.StateStore
	Sessions *session.Manager
	Registry *prometheus.Registry

	closers []func() error
}

// NewApp wires the engine, the metrics registry and the session store from cfg.
// Sessions live in Redis when cfg.Redis.Addr is set, in cfg.SessionDir when
// that is set, in memory otherwise. A configured key seals them at rest.
func NewApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	// 1. Engine & Hooks
	metrics, err := observability.NewMetrics(app.Registry)
	if err != nil {
		return nil, err
	}
	format, err := cfg.DisplayFormat()
	if err != nil {
		return nil, err
	}
	app.Engine, err = abacus.New(
		abacus.WithLogger(logger),
		abacus.WithDegrees(cfg.Degrees()),
		abacus.WithDisplayFormat(format),
		abacus.WithHistoryLimit(cfg.HistoryLimit),
		abacus.WithLifecycleHooks(observability.CombineHooks(
			metrics.Hooks(),
			observability.LogHooks(logger),
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	// 2. Persistence
	managerOpts := []session.Option{session.WithLogger(logger)}
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := redis.NewFromClient(client,
			redis.WithTTL(cfg.Redis.TTL),
			redis.WithPrefix(cfg.Redis.Prefix),
		)
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		app.Store = store
		app.closers = append(app.closers, store.Close)
		managerOpts = append(managerOpts, session.WithLocker(redis.NewLocker(client, cfg.Redis.Prefix)))
		logger.Debug("Using redis session store", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	} else if cfg.SessionDir != "" {
		app.Store = file.New(cfg.SessionDir)
		logger.Debug("Using file session store", "dir", cfg.SessionDir)
	} else {
		app.Store = memory.NewStore()
		logger.Debug("Using in-memory session store")
	}

	active, fallback, err := cfg.EncryptionKeys()
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	if active != nil {
		seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Store = middleware.Chain(app.Store, seal)
	}
	app.Sessions = session.NewManager(app.Store, managerOpts...)

	return app, nil
}

// Close releases the store connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
