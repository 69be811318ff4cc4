package plugin

import (
	"go.uber.org/zap"
)

// Manager is the facade over the registry: it binds an application
// instance, adds discovery, and composes register+install conveniences.
type Manager struct {
	app       App
	registry  *Registry
	discovery *Discovery
	logger    *zap.Logger
}

// NewManager creates a plugin manager bound to the given application.
func NewManager(app App, logger *zap.Logger) *Manager {
	return &Manager{
		app:       app,
		registry:  NewRegistry(logger),
		discovery: NewDiscovery(logger),
		logger:    logger,
	}
}

// Registry exposes the underlying registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Discovery exposes the underlying discovery instance, mainly to register
// factories.
func (m *Manager) Discovery() *Discovery {
	return m.discovery
}

// UsePlugin registers the plugin if it is not already known, then installs
// it.
func (m *Manager) UsePlugin(p *Plugin, options map[string]any) error {
	if p == nil {
		return Validate(p)
	}
	if m.registry.Get(p.Name) == nil {
		if err := m.registry.Register(p); err != nil {
			return err
		}
	}
	return m.registry.Install(m.app, p.Name, options)
}

// LoadPlugin installs an already-registered plugin by name, or resolves a
// manifest path through discovery, registers the result, and installs it.
func (m *Manager) LoadPlugin(nameOrPath string, options map[string]any) error {
	if m.registry.Get(nameOrPath) != nil {
		return m.registry.Install(m.app, nameOrPath, options)
	}

	p, err := m.discovery.Load(nameOrPath)
	if err != nil {
		return err
	}
	if err := m.registry.Register(p); err != nil {
		return err
	}
	return m.registry.Install(m.app, p.Name, options)
}

// LoadPluginsFromDirectory discovers plugins under dir, registers each, and
// installs those that declare auto-load. Per-plugin failures are logged and
// skipped; only an unreadable directory fails the call.
func (m *Manager) LoadPluginsFromDirectory(dir string) error {
	plugins, err := m.discovery.Discover(dir)
	if err != nil {
		return err
	}

	for _, p := range plugins {
		if err := m.registry.Register(p); err != nil {
			if m.logger != nil {
				m.logger.Warn("Skipping discovered plugin",
					zap.String("plugin", p.Name), zap.Error(err))
			}
			continue
		}
		if !p.AutoLoad() {
			continue
		}
		if err := m.registry.Install(m.app, p.Name, nil); err != nil {
			if m.logger != nil {
				m.logger.Warn("Failed to install discovered plugin",
					zap.String("plugin", p.Name), zap.Error(err))
			}
		}
	}
	return nil
}

// Uninstall delegates to the registry with the bound app.
func (m *Manager) Uninstall(name string) error {
	return m.registry.Uninstall(m.app, name)
}

// Get returns the named plugin, or nil.
func (m *Manager) Get(name string) *Plugin {
	return m.registry.Get(name)
}

// List returns all registered plugins.
func (m *Manager) List() []*Plugin {
	return m.registry.List()
}

// Installed returns the plugins currently installed.
func (m *Manager) Installed() []*Plugin {
	return m.registry.Installed()
}

// IsInstalled reports whether the named plugin is installed.
func (m *Manager) IsInstalled(name string) bool {
	return m.registry.IsInstalled(name)
}
