package plugin_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appstack-io/appstack/middleware"
	"github.com/appstack-io/appstack/plugin"
	"github.com/appstack-io/appstack/router"
)

// testApp satisfies plugin.App with real registries.
type testApp struct {
	routes      *router.Registry
	middlewares *middleware.Registry
}

func newTestApp() *testApp {
	return &testApp{
		routes:      router.NewRegistry(nil),
		middlewares: middleware.NewRegistry(nil),
	}
}

func (a *testApp) Routes() *router.Registry { return a.routes }

func (a *testApp) Middleware() *middleware.Registry { return a.middlewares }

func newPlugin(name string) *plugin.Plugin {
	return &plugin.Plugin{
		Name:    name,
		Version: "1.0.0",
		Install: func(app plugin.App, options map[string]any) error { return nil },
	}
}

func TestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, plugin.Validate(newPlugin("metrics")))
	})

	t.Run("NilPlugin", func(t *testing.T) {
		assert.EqualError(t, plugin.Validate(nil), "Plugin must have a valid name")
	})

	t.Run("MissingName", func(t *testing.T) {
		p := newPlugin("")
		assert.EqualError(t, plugin.Validate(p), "Plugin must have a valid name")
	})

	t.Run("MissingVersion", func(t *testing.T) {
		p := newPlugin("metrics")
		p.Version = ""
		assert.EqualError(t, plugin.Validate(p), "Plugin must have a valid version")
	})

	t.Run("MissingInstall", func(t *testing.T) {
		p := newPlugin("metrics")
		p.Install = nil
		assert.EqualError(t, plugin.Validate(p), "Plugin must implement install method")
	})

	t.Run("SemverAccepted", func(t *testing.T) {
		for _, version := range []string{
			"1.0.0",
			"2.1.3",
			"1.0.0-beta",
			"1.0.0+build123",
			"1.0.0-beta+build123",
		} {
			p := newPlugin("metrics")
			p.Version = version
			assert.NoError(t, plugin.Validate(p), version)
		}
	})

	t.Run("SemverRejected", func(t *testing.T) {
		for _, version := range []string{
			"invalid-version",
			"1.0",
			"1",
			"v1.0.0",
			"1.0.0.0",
		} {
			p := newPlugin("metrics")
			p.Version = version
			assert.EqualError(t, plugin.Validate(p),
				"Plugin version must follow semantic versioning format", version)
		}
	})
}

func TestRegistryRegister(t *testing.T) {
	t.Run("DuplicateName", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		require.NoError(t, reg.Register(newPlugin("metrics")))

		err := reg.Register(newPlugin("metrics"))
		assert.EqualError(t, err, "Plugin 'metrics' is already registered")
	})

	t.Run("InvalidRejected", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		err := reg.Register(&plugin.Plugin{Name: "broken"})
		require.Error(t, err)
		assert.Nil(t, reg.Get("broken"))
	})
}

func TestRegistryInstall(t *testing.T) {
	t.Run("HappyPath", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		app := newTestApp()

		installed := false
		p := newPlugin("metrics")
		p.Install = func(app plugin.App, options map[string]any) error {
			installed = true
			return nil
		}
		require.NoError(t, reg.Register(p))

		require.NoError(t, reg.Install(app, "metrics", nil))
		assert.True(t, installed)
		assert.True(t, reg.IsInstalled("metrics"))
		assert.True(t, p.Installed)
		assert.True(t, p.Enabled)
	})

	t.Run("NotFound", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		err := reg.Install(newTestApp(), "ghost", nil)
		assert.EqualError(t, err, "Plugin 'ghost' not found")
	})

	t.Run("AlreadyInstalled", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		app := newTestApp()
		require.NoError(t, reg.Register(newPlugin("metrics")))
		require.NoError(t, reg.Install(app, "metrics", nil))

		err := reg.Install(app, "metrics", nil)
		assert.EqualError(t, err, "Plugin 'metrics' is already installed")
	})

	t.Run("MissingDependency", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		p := newPlugin("dashboard")
		p.Dependencies = []string{"metrics", "auth"}
		require.NoError(t, reg.Register(p))

		err := reg.Install(newTestApp(), "dashboard", nil)
		assert.EqualError(t, err, "Plugin 'dashboard' requires dependency 'metrics' to be installed first")
		assert.False(t, reg.IsInstalled("dashboard"))
	})

	t.Run("DependencySatisfied", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		app := newTestApp()
		require.NoError(t, reg.Register(newPlugin("metrics")))
		p := newPlugin("dashboard")
		p.Dependencies = []string{"metrics"}
		require.NoError(t, reg.Register(p))

		require.NoError(t, reg.Install(app, "metrics", nil))
		assert.NoError(t, reg.Install(app, "dashboard", nil))
	})

	t.Run("RollbackOnFailure", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		p := newPlugin("metrics")
		p.Install = func(app plugin.App, options map[string]any) error {
			return errors.New("boom")
		}
		require.NoError(t, reg.Register(p))

		err := reg.Install(newTestApp(), "metrics", nil)
		require.Error(t, err)
		assert.EqualError(t, err, "Failed to install plugin 'metrics': boom")
		assert.False(t, reg.IsInstalled("metrics"))
		assert.False(t, p.Installed)
		assert.False(t, p.Enabled)

		// The failed plugin stays registered and can be retried.
		assert.NotNil(t, reg.Get("metrics"))
	})

	t.Run("OptionsForwarded", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		var got map[string]any
		p := newPlugin("metrics")
		p.Install = func(app plugin.App, options map[string]any) error {
			got = options
			return nil
		}
		require.NoError(t, reg.Register(p))

		opts := map[string]any{"interval": "10s"}
		require.NoError(t, reg.Install(newTestApp(), "metrics", opts))
		assert.Equal(t, opts, got)
	})

	t.Run("ReentrantInstall", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		app := newTestApp()

		require.NoError(t, reg.Register(newPlugin("metrics")))
		host := newPlugin("host")
		host.Install = func(app plugin.App, options map[string]any) error {
			return reg.Install(app, "metrics", nil)
		}
		require.NoError(t, reg.Register(host))

		require.NoError(t, reg.Install(app, "host", nil))
		assert.True(t, reg.IsInstalled("host"))
		assert.True(t, reg.IsInstalled("metrics"))
	})

	t.Run("MutualInstallShortCircuits", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		app := newTestApp()

		a := newPlugin("a")
		a.Install = func(app plugin.App, options map[string]any) error {
			return reg.Install(app, "b", nil)
		}
		b := newPlugin("b")
		b.Install = func(app plugin.App, options map[string]any) error {
			// a is already flipped, so this re-entrant install must fail on
			// "already installed" instead of looping forever.
			return reg.Install(app, "a", nil)
		}
		require.NoError(t, reg.Register(a))
		require.NoError(t, reg.Register(b))

		err := reg.Install(app, "a", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Plugin 'a' is already installed")
	})
}

func TestRegistryUninstall(t *testing.T) {
	t.Run("HappyPath", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		app := newTestApp()

		uninstalled := false
		p := newPlugin("metrics")
		p.Uninstall = func(app plugin.App) error {
			uninstalled = true
			return nil
		}
		require.NoError(t, reg.Register(p))
		require.NoError(t, reg.Install(app, "metrics", nil))

		require.NoError(t, reg.Uninstall(app, "metrics"))
		assert.True(t, uninstalled)
		assert.False(t, reg.IsInstalled("metrics"))
		assert.False(t, p.Installed)
		// Still registered, only uninstalled.
		assert.NotNil(t, reg.Get("metrics"))
	})

	t.Run("NotInstalled", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		require.NoError(t, reg.Register(newPlugin("metrics")))

		err := reg.Uninstall(newTestApp(), "metrics")
		assert.EqualError(t, err, "Plugin 'metrics' is not installed")
	})

	t.Run("HookFailureKeepsInstalled", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		app := newTestApp()
		p := newPlugin("metrics")
		p.Uninstall = func(app plugin.App) error { return errors.New("busy") }
		require.NoError(t, reg.Register(p))
		require.NoError(t, reg.Install(app, "metrics", nil))

		require.Error(t, reg.Uninstall(app, "metrics"))
		assert.True(t, reg.IsInstalled("metrics"))
	})
}

func TestRegistryUnregister(t *testing.T) {
	t.Run("GuardedWhileInstalled", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		app := newTestApp()
		require.NoError(t, reg.Register(newPlugin("metrics")))
		require.NoError(t, reg.Install(app, "metrics", nil))

		err := reg.Unregister("metrics")
		assert.EqualError(t, err, "Cannot unregister plugin 'metrics' while it's installed")
		assert.NotNil(t, reg.Get("metrics"))
	})

	t.Run("AfterUninstall", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		app := newTestApp()
		require.NoError(t, reg.Register(newPlugin("metrics")))
		require.NoError(t, reg.Install(app, "metrics", nil))
		require.NoError(t, reg.Uninstall(app, "metrics"))

		require.NoError(t, reg.Unregister("metrics"))
		assert.Nil(t, reg.Get("metrics"))
	})

	t.Run("UnknownIsNoop", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		assert.NoError(t, reg.Unregister("ghost"))
	})
}

func TestRegistryQueries(t *testing.T) {
	reg := plugin.NewRegistry(nil)
	app := newTestApp()
	require.NoError(t, reg.Register(newPlugin("a")))
	require.NoError(t, reg.Register(newPlugin("b")))
	require.NoError(t, reg.Install(app, "a", nil))

	assert.Len(t, reg.List(), 2)

	installed := reg.Installed()
	require.Len(t, installed, 1)
	assert.Equal(t, "a", installed[0].Name)

	assert.NotNil(t, reg.Get("b"))
	assert.Nil(t, reg.Get("c"))
}

func TestRegistryInstalledOrder(t *testing.T) {
	installedNames := func(reg *plugin.Registry) []string {
		var names []string
		for _, p := range reg.Installed() {
			names = append(names, p.Name)
		}
		return names
	}

	t.Run("InstallOrder", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		app := newTestApp()
		for _, name := range []string{"first", "second", "third", "fourth"} {
			require.NoError(t, reg.Register(newPlugin(name)))
			require.NoError(t, reg.Install(app, name, nil))
		}

		assert.Equal(t, []string{"first", "second", "third", "fourth"}, installedNames(reg))
	})

	t.Run("ReinstallMovesToEnd", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		app := newTestApp()
		for _, name := range []string{"a", "b", "c"} {
			require.NoError(t, reg.Register(newPlugin(name)))
			require.NoError(t, reg.Install(app, name, nil))
		}

		require.NoError(t, reg.Uninstall(app, "b"))
		assert.Equal(t, []string{"a", "c"}, installedNames(reg))

		require.NoError(t, reg.Install(app, "b", nil))
		assert.Equal(t, []string{"a", "c", "b"}, installedNames(reg))
	})

	t.Run("RollbackLeavesNoTrace", func(t *testing.T) {
		reg := plugin.NewRegistry(nil)
		app := newTestApp()
		require.NoError(t, reg.Register(newPlugin("stable")))
		require.NoError(t, reg.Install(app, "stable", nil))

		broken := newPlugin("broken")
		broken.Install = func(app plugin.App, options map[string]any) error {
			return errors.New("boom")
		}
		require.NoError(t, reg.Register(broken))
		require.Error(t, reg.Install(app, "broken", nil))

		assert.Equal(t, []string{"stable"}, installedNames(reg))
	})
}
