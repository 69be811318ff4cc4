// Package app provides the application composition root binding the route
// registry, middleware registry, dependency container, and plugin manager.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/appstack-io/appstack/config"
	"github.com/appstack-io/appstack/middleware"
	"github.com/appstack-io/appstack/plugin"
	"github.com/appstack-io/appstack/router"
)

// StartFunc starts the concrete server transport.
type StartFunc func() error

// StopFunc stops the concrete server transport.
type StopFunc func(ctx context.Context) error

// App is the main application instance. It owns one route registry, one
// middleware registry, one dependency container, and one plugin manager;
// none are shared across apps.
type App struct {
	routes      *router.Registry
	middlewares *middleware.Registry
	container   *Container
	plugins     *plugin.Manager
	rt          *router.Router

	config *config.Config
	logger *zap.Logger

	startFn         StartFunc
	stopFn          StopFunc
	shutdownTimeout time.Duration
	mu              sync.RWMutex
}

// Option defines a functional option for App
type Option func(*App) error

// New creates a new application instance with the given options
func New(opts ...Option) (*App, error) {
	a := &App{
		container:       NewContainer(),
		shutdownTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	a.routes = router.NewRegistry(a.logger)
	a.middlewares = middleware.NewRegistry(a.logger)
	a.plugins = plugin.NewManager(a, a.logger)

	// Request ID comes pre-registered as a dynamic middleware.
	a.middlewares.Register("request-id", middleware.RequestID())

	return a, nil
}

// WithConfig sets the application configuration
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		if cfg == nil {
			return fmt.Errorf("config cannot be nil")
		}
		a.config = cfg
		Register(a.container, cfg)
		return nil
	}
}

// WithLogger sets the application logger
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		a.logger = logger
		return nil
	}
}

// WithRouter wires the framework adapter and middleware providers the app
// mounts its routes with.
func WithRouter(framework router.Framework, providers router.Providers) Option {
	return func(a *App) error {
		if framework == nil {
			return fmt.Errorf("framework adapter cannot be nil")
		}
		a.rt = router.New(framework, providers, a.logger)
		return nil
	}
}

// WithServer sets the concrete transport's start and stop functions.
func WithServer(start StartFunc, stop StopFunc) Option {
	return func(a *App) error {
		a.startFn = start
		a.stopFn = stop
		return nil
	}
}

// WithShutdownTimeout sets the shutdown timeout duration
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(a *App) error {
		if timeout <= 0 {
			return fmt.Errorf("shutdown timeout must be positive")
		}
		a.shutdownTimeout = timeout
		return nil
	}
}

// Routes returns the application's route registry
func (a *App) Routes() *router.Registry {
	return a.routes
}

// Middleware returns the application's middleware registry
func (a *App) Middleware() *middleware.Registry {
	return a.middlewares
}

// Container returns the dependency container
func (a *App) Container() *Container {
	return a.container
}

// Plugins returns the plugin manager
func (a *App) Plugins() *plugin.Manager {
	return a.plugins
}

// Router returns the configured router, or nil if none was wired.
func (a *App) Router() *router.Router {
	return a.rt
}

// Register forwards routes and route groups to the route registry.
func (a *App) Register(items ...router.Registrable) {
	a.routes.Register(items...)
}

// UseMiddleware registers a named dynamic middleware.
func (a *App) UseMiddleware(name string, mw middleware.MiddlewareFunc) {
	a.middlewares.Register(name, mw)
}

// UsePlugin registers (if needed) and installs a plugin.
func (a *App) UsePlugin(p *plugin.Plugin, options map[string]any) error {
	return a.plugins.UsePlugin(p, options)
}

// GetPlugin returns the named plugin, or nil.
func (a *App) GetPlugin(name string) *plugin.Plugin {
	return a.plugins.Get(name)
}

// ListPlugins returns all registered plugins.
func (a *App) ListPlugins() []*plugin.Plugin {
	return a.plugins.List()
}

// Mount builds every registered route's pipeline and mounts it onto the
// framework adapter.
func (a *App) Mount() error {
	if a.rt == nil {
		return fmt.Errorf("no router configured")
	}
	return a.rt.Mount(a.routes.Routes()...)
}

// BeforeStart invokes the BeforeStart hook of every installed plugin, in
// sequence. The first failure aborts startup.
func (a *App) BeforeStart() error {
	return a.runHooks("beforeStart", func(p *plugin.Plugin) func(plugin.App) error {
		return p.BeforeStart
	})
}

// AfterStart invokes the AfterStart hook of every installed plugin.
func (a *App) AfterStart() error {
	return a.runHooks("afterStart", func(p *plugin.Plugin) func(plugin.App) error {
		return p.AfterStart
	})
}

// BeforeStop invokes the BeforeStop hook of every installed plugin.
func (a *App) BeforeStop() error {
	return a.runHooks("beforeStop", func(p *plugin.Plugin) func(plugin.App) error {
		return p.BeforeStop
	})
}

// AfterStop invokes the AfterStop hook of every installed plugin.
func (a *App) AfterStop() error {
	return a.runHooks("afterStop", func(p *plugin.Plugin) func(plugin.App) error {
		return p.AfterStop
	})
}

// runHooks fans a lifecycle hook out over the installed set, sequentially,
// awaiting each. Absent hooks are skipped.
func (a *App) runHooks(name string, hook func(*plugin.Plugin) func(plugin.App) error) error {
	for _, p := range a.plugins.Installed() {
		fn := hook(p)
		if fn == nil {
			continue
		}
		if err := fn(a); err != nil {
			return fmt.Errorf("plugin '%s' %s hook failed: %w", p.Name, name, err)
		}
	}
	return nil
}

// Start runs BeforeStart hooks, mounts all registered routes, starts the
// server transport if one was configured, and runs AfterStart hooks.
func (a *App) Start() error {
	if err := a.BeforeStart(); err != nil {
		return err
	}

	if a.rt != nil {
		if err := a.Mount(); err != nil {
			return err
		}
	}

	if err := a.AfterStart(); err != nil {
		return err
	}

	if a.startFn != nil {
		if a.logger != nil {
			a.logger.Info("Starting server")
		}
		return a.startFn()
	}
	return nil
}

// Stop runs BeforeStop hooks, stops the server transport, and runs
// AfterStop hooks. Hook failures are logged but do not keep the transport
// from stopping.
func (a *App) Stop(ctx context.Context) error {
	if err := a.BeforeStop(); err != nil && a.logger != nil {
		a.logger.Error("Error running beforeStop hooks", zap.Error(err))
	}

	if a.stopFn != nil {
		if err := a.stopFn(ctx); err != nil {
			return err
		}
	}

	if err := a.AfterStop(); err != nil && a.logger != nil {
		a.logger.Error("Error running afterStop hooks", zap.Error(err))
	}
	return nil
}

// GracefulShutdown runs every installed plugin's GracefulShutdown hook
// concurrently, isolating and logging per-plugin failures, waits for all of
// them to settle, then stops the app. One plugin's shutdown failure never
// blocks or skips another's.
func (a *App) GracefulShutdown(ctx context.Context, signals ...os.Signal) error {
	if a.logger != nil {
		a.logger.Info("Starting graceful shutdown")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.shutdownTimeout)
		defer cancel()
	}

	installed := a.plugins.Installed()

	var wg sync.WaitGroup
	for _, p := range installed {
		if p.GracefulShutdown == nil {
			continue
		}
		wg.Add(1)
		go func(p *plugin.Plugin) {
			defer wg.Done()
			if err := p.GracefulShutdown(a, signals); err != nil && a.logger != nil {
				a.logger.Error("Plugin graceful shutdown failed",
					zap.String("plugin", p.Name),
					zap.Error(err))
			}
		}(p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if a.logger != nil {
			a.logger.Warn("Plugin shutdown hooks timed out", zap.Error(ctx.Err()))
		}
	}

	err := a.Stop(ctx)
	if err == nil && a.logger != nil {
		a.logger.Info("Graceful shutdown completed")
	}
	return err
}
