package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appstack-io/appstack/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Encoding)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTokenTTL)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{"Defaults", func(c *config.Config) {}, false},
		{"EmptyAddress", func(c *config.Config) { c.Server.Address = "" }, true},
		{"ZeroShutdownTimeout", func(c *config.Config) { c.Server.ShutdownTimeout = 0 }, true},
		{"BadLevel", func(c *config.Config) { c.Logger.Level = "verbose" }, true},
		{"BadEncoding", func(c *config.Config) { c.Logger.Encoding = "xml" }, true},
		{"ConsoleEncoding", func(c *config.Config) { c.Logger.Encoding = "console" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSimpleLoader(t *testing.T) {
	t.Run("DefaultsOnly", func(t *testing.T) {
		cfg := &config.Config{}
		require.NoError(t, config.NewSimpleLoader().Load(cfg))

		assert.Equal(t, ":8080", cfg.Server.Address)
	})

	t.Run("YAMLOverridesDefaults", func(t *testing.T) {
		path := writeConfig(t, "server:\n  address: \":9090\"\nlogger:\n  level: debug\n")

		cfg := &config.Config{}
		require.NoError(t, config.NewSimpleLoader().WithYAMLFile(path).Load(cfg))

		assert.Equal(t, ":9090", cfg.Server.Address)
		assert.Equal(t, "debug", cfg.Logger.Level)
		// Untouched keys keep their defaults.
		assert.Equal(t, "json", cfg.Logger.Encoding)
	})

	t.Run("EnvOverridesYAML", func(t *testing.T) {
		path := writeConfig(t, "server:\n  address: \":9090\"\n")
		t.Setenv("APPSTACK_SERVER_ADDRESS", ":7070")
		t.Setenv("APPSTACK_SERVER_READ_TIMEOUT", "45s")
		t.Setenv("APPSTACK_PLUGINS_WATCH", "true")

		cfg := &config.Config{}
		require.NoError(t, config.NewSimpleLoader().WithYAMLFile(path).Load(cfg))

		assert.Equal(t, ":7070", cfg.Server.Address)
		assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
		assert.True(t, cfg.Plugins.Watch)
	})

	t.Run("CustomEnvPrefix", func(t *testing.T) {
		t.Setenv("MYAPP_SERVER_ADDRESS", ":6060")

		cfg := &config.Config{}
		require.NoError(t, config.NewSimpleLoader().WithEnvPrefix("MYAPP_").Load(cfg))

		assert.Equal(t, ":6060", cfg.Server.Address)
	})

	t.Run("MissingFileUsesDefaults", func(t *testing.T) {
		cfg := &config.Config{}
		loader := config.NewSimpleLoader().WithYAMLFile("/does/not/exist.yaml")

		require.NoError(t, loader.Load(cfg))
		assert.Equal(t, ":8080", cfg.Server.Address)
	})

	t.Run("InvalidYAMLFails", func(t *testing.T) {
		path := writeConfig(t, "::: not yaml :::")

		cfg := &config.Config{}
		assert.Error(t, config.NewSimpleLoader().WithYAMLFile(path).Load(cfg))
	})

	t.Run("InvalidResultFailsValidation", func(t *testing.T) {
		path := writeConfig(t, "logger:\n  level: verbose\n")

		cfg := &config.Config{}
		assert.Error(t, config.NewSimpleLoader().WithYAMLFile(path).Load(cfg))
	})
}

func TestBuildLogger(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		cfg := config.DefaultConfig()
		logger, err := cfg.Logger.BuildLogger()

		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("Console", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Logger.Encoding = "console"

		logger, err := cfg.Logger.BuildLogger()
		require.NoError(t, err)
		assert.NotNil(t, logger)
	})

	t.Run("BadLevel", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Logger.Level = "verbose"

		_, err := cfg.Logger.BuildLogger()
		assert.Error(t, err)
	})
}
