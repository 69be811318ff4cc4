package middleware

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Initializer is implemented by middleware that needs asynchronous setup
// (a DB connection, a remote store) before it can serve requests.
type Initializer interface {
	// Init prepares the middleware. It is called once by the registry.
	Init(ctx context.Context) error

	// Middleware returns the middleware function once initialized.
	Middleware() MiddlewareFunc
}

// entry is one named middleware with its readiness state.
type entry struct {
	name        string
	middleware  MiddlewareFunc
	initializer Initializer
	ready       bool
}

// Registry is a keyed store of named middleware instances. Dynamic
// middleware is ready as soon as it is registered; static middleware
// becomes ready after its Init completes.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *zap.Logger
}

// NewRegistry creates a new middleware registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Register adds a dynamic middleware. It is immediately ready for use.
func (r *Registry) Register(name string, mw MiddlewareFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[name] = &entry{
		name:       name,
		middleware: mw,
		ready:      true,
	}

	if r.logger != nil {
		r.logger.Debug("Middleware registered", zap.String("name", name))
	}
}

// RegisterStatic adds a middleware that requires initialization. It is not
// ready until Init has been run for it.
func (r *Registry) RegisterStatic(name string, init Initializer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[name] = &entry{
		name:        name,
		initializer: init,
	}

	if r.logger != nil {
		r.logger.Debug("Static middleware registered", zap.String("name", name))
	}
}

// Init runs initialization for every static middleware that is not yet
// ready. The first failing Init aborts and is returned.
func (r *Registry) Init(ctx context.Context) error {
	r.mu.Lock()
	pending := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		if !e.ready && e.initializer != nil {
			pending = append(pending, e)
		}
	}
	r.mu.Unlock()

	for _, e := range pending {
		if err := e.initializer.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize middleware %q: %w", e.name, err)
		}

		r.mu.Lock()
		e.middleware = e.initializer.Middleware()
		e.ready = true
		r.mu.Unlock()

		if r.logger != nil {
			r.logger.Info("Middleware initialized", zap.String("name", e.name))
		}
	}

	return nil
}

// Use returns the named middleware. It fails if the entry is missing or not
// ready, so a half-initialized middleware can never enter the request path.
func (r *Registry) Use(name string) (MiddlewareFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("middleware %q is not registered", name)
	}
	if !e.ready {
		return nil, fmt.Errorf("middleware %q is not ready", name)
	}
	return e.middleware, nil
}

// Ready reports whether the named middleware exists and is ready.
func (r *Registry) Ready(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	return ok && e.ready
}

// Names returns the names of all registered middleware.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// Remove deletes a named middleware, reporting whether it existed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[name]
	delete(r.entries, name)
	return ok
}
