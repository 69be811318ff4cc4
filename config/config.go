// Package config provides configuration management for appstack applications
package config

import (
	"fmt"
	"time"
)

// Config represents the application configuration structure
type Config struct {
	Server  ServerConfig  `yaml:"server" env:"SERVER"`
	Logger  LoggerConfig  `yaml:"logger" env:"LOGGER"`
	JWT     JWTConfig     `yaml:"jwt" env:"JWT"`
	Plugins PluginsConfig `yaml:"plugins" env:"PLUGINS"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address         string        `yaml:"address" env:"ADDRESS" default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level            string   `yaml:"level" env:"LEVEL" default:"info"`
	Encoding         string   `yaml:"encoding" env:"ENCODING" default:"json"`
	OutputPaths      []string `yaml:"output_paths" env:"OUTPUT_PATHS" default:"stdout"`
	ErrorOutputPaths []string `yaml:"error_output_paths" env:"ERROR_OUTPUT_PATHS" default:"stderr"`
}

// JWTConfig holds JWT authentication configuration
type JWTConfig struct {
	SecretKey       string        `yaml:"secret_key" env:"SECRET_KEY"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" default:"1h"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" default:"168h"` // 7 days
	Issuer          string        `yaml:"issuer" env:"ISSUER" default:"appstack"`
}

// PluginsConfig holds plugin discovery configuration
type PluginsConfig struct {
	// Directory is scanned for plugin manifests on startup; empty disables
	// discovery
	Directory string `yaml:"directory" env:"DIRECTORY"`
	// Watch re-scans the directory for new manifests while running
	Watch bool `yaml:"watch" env:"WATCH" default:"false"`
}

// Loader interface for configuration loading
type Loader interface {
	Load(cfg *Config) error
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logger: LoggerConfig{
			Level:            "info",
			Encoding:         "json",
			OutputPaths:      []string{"stdout"},
			ErrorOutputPaths: []string{"stderr"},
		},
		JWT: JWTConfig{
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			Issuer:          "appstack",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server shutdown timeout must be positive")
	}
	switch c.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logger level: %s", c.Logger.Level)
	}
	switch c.Logger.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logger encoding: %s", c.Logger.Encoding)
	}
	return nil
}
