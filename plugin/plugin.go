// Package plugin implements the plugin lifecycle: a validating registry
// with dependency-checked installs and rollback, a manager facade, and
// manifest-based discovery from the filesystem.
package plugin

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/appstack-io/appstack/middleware"
	"github.com/appstack-io/appstack/router"
)

// App is the surface a plugin acts against during install and lifecycle
// hooks. The application composition root implements it; plugins needing
// more can type-assert the concrete app.
type App interface {
	// Routes returns the application's route registry
	Routes() *router.Registry

	// Middleware returns the application's middleware registry
	Middleware() *middleware.Registry
}

// Config carries non-descriptor plugin settings.
type Config struct {
	// AutoLoad controls whether a discovered plugin is installed
	// immediately after registration. Defaults to true when absent.
	AutoLoad *bool `yaml:"autoLoad" json:"autoLoad"`
}

// Plugin is a named, versioned unit of installable behavior. Install is
// required; every other hook is optional. Installed and Enabled are owned
// by the registry.
type Plugin struct {
	Name         string
	Version      string
	Dependencies []string
	Config       *Config

	Install   func(app App, options map[string]any) error
	Uninstall func(app App) error

	BeforeStart      func(app App) error
	AfterStart       func(app App) error
	BeforeStop       func(app App) error
	AfterStop        func(app App) error
	GracefulShutdown func(app App, signals []os.Signal) error

	Installed bool
	Enabled   bool
}

// AutoLoad reports whether the plugin wants to be installed right after
// discovery registers it.
func (p *Plugin) AutoLoad() bool {
	if p.Config == nil || p.Config.AutoLoad == nil {
		return true
	}
	return *p.Config.AutoLoad
}

// semverPattern gates plugin versions at registration time.
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[A-Za-z0-9.-]+)?(\+[A-Za-z0-9.-]+)?$`)

// Validate checks the descriptor shape. The messages are stable and part of
// the observable contract.
func Validate(p *Plugin) error {
	if p == nil || p.Name == "" {
		return errors.New("Plugin must have a valid name")
	}
	if p.Version == "" {
		return errors.New("Plugin must have a valid version")
	}
	if p.Install == nil {
		return errors.New("Plugin must implement install method")
	}
	if !semverPattern.MatchString(p.Version) {
		return errors.New("Plugin version must follow semantic versioning format")
	}
	return nil
}

// registration and lifecycle error constructors, kept together so the
// literal contract strings live in one place.

func errAlreadyRegistered(name string) error {
	return fmt.Errorf("Plugin '%s' is already registered", name)
}

func errNotFound(name string) error {
	return fmt.Errorf("Plugin '%s' not found", name)
}

func errAlreadyInstalled(name string) error {
	return fmt.Errorf("Plugin '%s' is already installed", name)
}

func errNotInstalled(name string) error {
	return fmt.Errorf("Plugin '%s' is not installed", name)
}

func errUnregisterInstalled(name string) error {
	return fmt.Errorf("Cannot unregister plugin '%s' while it's installed", name)
}

func errMissingDependency(name, dep string) error {
	return fmt.Errorf("Plugin '%s' requires dependency '%s' to be installed first", name, dep)
}

func errInstallFailed(name string, cause error) error {
	return fmt.Errorf("Failed to install plugin '%s': %w", name, cause)
}
