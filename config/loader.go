package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SimpleLoader layers configuration sources: built-in defaults, then an
// optional YAML file, then environment variables.
type SimpleLoader struct {
	yamlFile  string
	envPrefix string
}

// NewSimpleLoader creates a new simple configuration loader
func NewSimpleLoader() *SimpleLoader {
	return &SimpleLoader{
		envPrefix: "APPSTACK_",
	}
}

// WithYAMLFile sets the YAML configuration file path
func (l *SimpleLoader) WithYAMLFile(path string) *SimpleLoader {
	l.yamlFile = path
	return l
}

// WithEnvPrefix sets the environment variable prefix
func (l *SimpleLoader) WithEnvPrefix(prefix string) *SimpleLoader {
	l.envPrefix = prefix
	return l
}

// Load loads configuration from various sources
func (l *SimpleLoader) Load(cfg *Config) error {
	*cfg = *DefaultConfig()

	if l.yamlFile != "" {
		if err := l.loadFromYAML(cfg); err != nil {
			return fmt.Errorf("failed to load YAML config: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	return cfg.Validate()
}

// loadFromYAML loads configuration from a YAML file
func (l *SimpleLoader) loadFromYAML(cfg *Config) error {
	data, err := os.ReadFile(l.yamlFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func (l *SimpleLoader) loadFromEnv(cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	return l.loadStructFromEnv(v, l.envPrefix)
}

// loadStructFromEnv recursively loads struct fields from environment variables
func (l *SimpleLoader) loadStructFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		envParts := strings.Split(envTag, ",")
		fullEnvName := prefix + envParts[0]

		if field.Kind() == reflect.Struct && fieldType.Type != reflect.TypeOf(time.Duration(0)) && fieldType.Type != reflect.TypeOf(time.Time{}) {
			if err := l.loadStructFromEnv(field, fullEnvName+"_"); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(fullEnvName)
		if envValue == "" {
			continue
		}

		if err := l.setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set field %s from env %s: %w", fieldType.Name, fullEnvName, err)
		}
	}

	return nil
}

// setFieldValue sets a reflect.Value from a string
func (l *SimpleLoader) setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			values := strings.Split(value, ",")
			field.Set(reflect.ValueOf(values))
		}
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
