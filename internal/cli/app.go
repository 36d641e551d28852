package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/promptdrafter/internal/adapters/file"
	"github.com/aretw0/promptdrafter/internal/config"
	"github.com/aretw0/promptdrafter/internal/metrics"
	"github.com/aretw0/promptdrafter/internal/watch"
	httpAdapter "github.com/aretw0/promptdrafter/pkg/adapters/http"
	"github.com/aretw0/promptdrafter/pkg/adapters/memory"
	"github.com/aretw0/promptdrafter/pkg/adapters/redis"
	"github.com/aretw0/promptdrafter/pkg/adapters/sqlite"
	"github.com/aretw0/promptdrafter/pkg/editor"
	"github.com/aretw0/promptdrafter/pkg/library"
	"github.com/aretw0/promptdrafter/pkg/nodes"
	"github.com/aretw0/promptdrafter/pkg/ports"
)

// App wires the configured store into the library, editor host and executor.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    ports.LibraryStore
	Library  *library.Service
	Host     *editor.Host
	Executor *nodes.Executor
	Metrics  *metrics.Metrics
	Streams  *httpAdapter.StreamManager

	closers []func() error
}

// backend is an opened library store plus what the library needs around it.
type backend struct {
	store  ports.LibraryStore
	locker ports.DistributedLocker
	close  func() error
}

// openBackend opens the store selected by cfg.Storage.Backend.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile, "":
		return &backend{store: file.New(cfg.Resolve("saved"), cfg.SavePathMap())}, nil

	case config.BackendMemory:
		return &backend{store: memory.NewStore()}, nil

	case config.BackendRedis:
		opts := []redis.Option{redis.WithPrefix(cfg.Storage.RedisPrefix)}
		if ttl := cfg.StoreTTL(); ttl > 0 {
			opts = append(opts, redis.WithTTL(ttl))
		}
		store := redis.New(cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB, opts...)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Client().Ping(pingCtx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Storage.RedisAddr, err)
		}
		return &backend{
			store:  store,
			locker: redis.NewLocker(store.Client(), store.Prefix()),
			close:  store.Close,
		}, nil

	case config.BackendSQLite:
		store, err := sqlite.New(cfg.Resolve(cfg.Storage.SQLitePath))
		if err != nil {
			return nil, err
		}
		return &backend{store: store, close: store.Close}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// NewApp builds the application from cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error initializing storage: %w", err)
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Store:   b.store,
		Metrics: metrics.New(),
		Streams: httpAdapter.NewStreamManager(logger),
	}
	if b.close != nil {
		app.closers = append(app.closers, b.close)
	}

	libOpts := []library.Option{
		library.WithLogger(logger),
		library.WithObserver(app.Metrics),
		library.WithListener(app.Streams.PublishLibrary),
	}
	if b.locker != nil {
		libOpts = append(libOpts, library.WithLocker(b.locker))
	}
	app.Library = library.NewService(b.store, libOpts...)

	app.Host = editor.NewHost(
		editor.WithDebounce(cfg.DebounceDelay()),
		editor.WithLogger(logger),
		editor.WithObserver(app.Metrics),
		editor.WithListener(app.Streams.PublishPort),
	)
	app.closers = append(app.closers, func() error {
		app.Host.Close()
		return nil
	})

	app.Executor = nodes.NewExecutor(
		nodes.WithDefaultMode(cfg.WildcardMode()),
		nodes.WithLogger(logger),
	)

	logger.Debug("Application initialized", "backend", cfg.Storage.Backend, "source", cfg.Source)
	return app, nil
}

// Watcher returns a watcher over the category directories when the library
// lives on the filesystem.
func (a *App) Watcher() (*watch.Watcher, bool) {
	fs, ok := a.Store.(*file.Store)
	if !ok {
		return nil, false
	}
	return watch.New(fs.Paths, watch.WithLogger(a.Logger)), true
}

// Handler builds the HTTP API.
func (a *App) Handler() *httpAdapter.Server {
	opts := []httpAdapter.Option{
		httpAdapter.WithStreams(a.Streams),
		httpAdapter.WithLogger(a.Logger),
	}
	if a.Config.Server.Metrics {
		opts = append(opts, httpAdapter.WithMetrics(a.Metrics.Handler()))
	}
	return httpAdapter.NewServer(a.Library, a.Host, a.Executor, opts...)
}

// Close tears the host down and closes the store, in reverse order of setup.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
