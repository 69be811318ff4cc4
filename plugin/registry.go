package plugin

import (
	"sync"

	"go.uber.org/zap"
)

// Registry tracks registered plugins and the subset currently installed.
// The installed set is a separate collection so the unregister guard stays
// O(1). Install releases the lock around the plugin's own Install call, so
// plugins may install other plugins re-entrantly.
type Registry struct {
	mu        sync.RWMutex
	plugins   map[string]*Plugin
	installed map[string]struct{}
	// order records install order; lifecycle fan-out must visit a plugin's
	// dependencies before the plugin itself, and install order guarantees
	// that because Install checks dependencies up front.
	order  []string
	logger *zap.Logger
}

// NewRegistry creates a new plugin registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		plugins:   make(map[string]*Plugin),
		installed: make(map[string]struct{}),
		logger:    logger,
	}
}

// Register validates the descriptor and adds it to the catalog. Duplicate
// names and shape violations fail here, never at install time.
func (r *Registry) Register(p *Plugin) error {
	if err := Validate(p); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[p.Name]; exists {
		return errAlreadyRegistered(p.Name)
	}
	r.plugins[p.Name] = p

	if r.logger != nil {
		r.logger.Info("Plugin registered",
			zap.String("plugin", p.Name),
			zap.String("version", p.Version))
	}
	return nil
}

// Unregister removes a plugin from the catalog. It fails while the plugin
// is installed; unregistering an unknown name is a no-op.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, isInstalled := r.installed[name]; isInstalled {
		return errUnregisterInstalled(name)
	}
	delete(r.plugins, name)
	return nil
}

// Install moves a registered plugin into the installed set and runs its
// Install hook. The installed state is flipped before the hook runs so a
// re-entrant circular install short-circuits on "already installed" instead
// of looping; if the hook fails, the flip is rolled back and the error
// re-thrown wrapped with the plugin name.
func (r *Registry) Install(app App, name string, options map[string]any) error {
	r.mu.Lock()
	p, exists := r.plugins[name]
	if !exists {
		r.mu.Unlock()
		return errNotFound(name)
	}
	if _, isInstalled := r.installed[name]; isInstalled {
		r.mu.Unlock()
		return errAlreadyInstalled(name)
	}
	for _, dep := range p.Dependencies {
		if _, ok := r.installed[dep]; !ok {
			r.mu.Unlock()
			return errMissingDependency(name, dep)
		}
	}

	// Optimistic flip, before the hook runs.
	r.installed[name] = struct{}{}
	r.order = append(r.order, name)
	p.Installed = true
	p.Enabled = true
	r.mu.Unlock()

	if err := p.Install(app, options); err != nil {
		r.mu.Lock()
		delete(r.installed, name)
		r.removeFromOrder(name)
		p.Installed = false
		p.Enabled = false
		r.mu.Unlock()

		if r.logger != nil {
			r.logger.Error("Plugin install failed, rolled back",
				zap.String("plugin", name),
				zap.Error(err))
		}
		return errInstallFailed(name, err)
	}

	if r.logger != nil {
		r.logger.Info("Plugin installed", zap.String("plugin", name))
	}
	return nil
}

// Uninstall runs the optional Uninstall hook and returns the plugin to the
// registered-only state.
func (r *Registry) Uninstall(app App, name string) error {
	r.mu.Lock()
	p, exists := r.plugins[name]
	if !exists {
		r.mu.Unlock()
		return errNotFound(name)
	}
	if _, isInstalled := r.installed[name]; !isInstalled {
		r.mu.Unlock()
		return errNotInstalled(name)
	}
	r.mu.Unlock()

	if p.Uninstall != nil {
		if err := p.Uninstall(app); err != nil {
			return err
		}
	}

	r.mu.Lock()
	delete(r.installed, name)
	r.removeFromOrder(name)
	p.Installed = false
	p.Enabled = false
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.Info("Plugin uninstalled", zap.String("plugin", name))
	}
	return nil
}

// Get returns the plugin registered under name, or nil.
func (r *Registry) Get(name string) *Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plugins[name]
}

// List returns all registered plugins.
func (r *Registry) List() []*Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugins := make([]*Plugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		plugins = append(plugins, p)
	}
	return plugins
}

// IsInstalled reports whether the named plugin is currently installed.
func (r *Registry) IsInstalled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.installed[name]
	return ok
}

// Installed returns the plugins currently in the installed set, in install
// order.
func (r *Registry) Installed() []*Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugins := make([]*Plugin, 0, len(r.order))
	for _, name := range r.order {
		if p, ok := r.plugins[name]; ok {
			plugins = append(plugins, p)
		}
	}
	return plugins
}

// removeFromOrder drops name from the install-order slice. Caller holds mu.
func (r *Registry) removeFromOrder(name string) {
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
