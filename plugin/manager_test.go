package plugin_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appstack-io/appstack/plugin"
)

func TestManagerUsePlugin(t *testing.T) {
	t.Run("RegistersAndInstalls", func(t *testing.T) {
		m := plugin.NewManager(newTestApp(), nil)

		require.NoError(t, m.UsePlugin(newPlugin("metrics"), nil))

		assert.True(t, m.IsInstalled("metrics"))
		assert.NotNil(t, m.Get("metrics"))
	})

	t.Run("AlreadyRegistered", func(t *testing.T) {
		m := plugin.NewManager(newTestApp(), nil)
		p := newPlugin("metrics")
		require.NoError(t, m.Registry().Register(p))

		require.NoError(t, m.UsePlugin(p, nil))
		assert.True(t, m.IsInstalled("metrics"))
	})

	t.Run("NilPlugin", func(t *testing.T) {
		m := plugin.NewManager(newTestApp(), nil)
		assert.Error(t, m.UsePlugin(nil, nil))
	})
}

func TestManagerLoadPlugin(t *testing.T) {
	t.Run("ByRegisteredName", func(t *testing.T) {
		m := plugin.NewManager(newTestApp(), nil)
		require.NoError(t, m.Registry().Register(newPlugin("metrics")))

		require.NoError(t, m.LoadPlugin("metrics", nil))
		assert.True(t, m.IsInstalled("metrics"))
	})

	t.Run("ByManifestPath", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "metrics-plugin.yaml", "name: metrics\nversion: 1.0.0\n")

		m := plugin.NewManager(newTestApp(), nil)
		m.Discovery().RegisterFactory("Plugin", descriptorFactory)

		require.NoError(t, m.LoadPlugin(path, nil))
		assert.True(t, m.IsInstalled("metrics"))
	})

	t.Run("UnknownNameAndPath", func(t *testing.T) {
		m := plugin.NewManager(newTestApp(), nil)
		assert.Error(t, m.LoadPlugin("ghost", nil))
	})
}

func TestManagerLoadPluginsFromDirectory(t *testing.T) {
	t.Run("InstallsAutoLoaders", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "eager-plugin.yaml", "name: eager\nversion: 1.0.0\n")
		writeFile(t, dir, "lazy-plugin.yaml", "name: lazy\nversion: 1.0.0\nconfig:\n  autoLoad: false\n")

		m := plugin.NewManager(newTestApp(), nil)
		m.Discovery().RegisterFactory("Plugin", descriptorFactory)

		require.NoError(t, m.LoadPluginsFromDirectory(dir))

		assert.True(t, m.IsInstalled("eager"))
		assert.False(t, m.IsInstalled("lazy"))
		// The lazy plugin is still registered for a later manual install.
		assert.NotNil(t, m.Get("lazy"))
	})

	t.Run("InstallFailureDoesNotAbort", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "broken-plugin.yaml", "name: broken\nversion: 1.0.0\n")
		writeFile(t, dir, "working-plugin.yaml", "name: working\nversion: 1.0.0\n")

		m := plugin.NewManager(newTestApp(), nil)
		m.Discovery().RegisterFactory("Plugin", func(manifest *plugin.Manifest) (*plugin.Plugin, error) {
			p, _ := descriptorFactory(manifest)
			if manifest.Name == "broken" {
				p.Install = func(app plugin.App, options map[string]any) error {
					return errors.New("boom")
				}
			}
			return p, nil
		})

		require.NoError(t, m.LoadPluginsFromDirectory(dir))

		assert.False(t, m.IsInstalled("broken"))
		assert.True(t, m.IsInstalled("working"))
	})

	t.Run("MissingDirectoryFails", func(t *testing.T) {
		m := plugin.NewManager(newTestApp(), nil)
		assert.Error(t, m.LoadPluginsFromDirectory("/does/not/exist"))
	})
}

func TestManagerUninstall(t *testing.T) {
	m := plugin.NewManager(newTestApp(), nil)
	require.NoError(t, m.UsePlugin(newPlugin("metrics"), nil))

	require.NoError(t, m.Uninstall("metrics"))
	assert.False(t, m.IsInstalled("metrics"))
	assert.Len(t, m.List(), 1)
	assert.Empty(t, m.Installed())
}
