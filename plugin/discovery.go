package plugin

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manifest describes a plugin found on disk. The factory key is optional;
// when absent the resolver fallback chain decides which factory builds the
// plugin.
type Manifest struct {
	Name         string         `yaml:"name" json:"name"`
	Version      string         `yaml:"version" json:"version"`
	Dependencies []string       `yaml:"dependencies" json:"dependencies"`
	Factory      string         `yaml:"factory" json:"factory"`
	Config       *Config        `yaml:"config" json:"config"`
	Options      map[string]any `yaml:"options" json:"options"`
}

// Factory builds a plugin from a manifest.
type Factory func(m *Manifest) (*Plugin, error)

// resolver picks a factory for a manifest, or nil to pass to the next one.
type resolver func(d *Discovery, m *Manifest) Factory

// resolvers is the fixed fallback chain: the factory the manifest names,
// then the factory registered under "Plugin", then the first factory
// registered. The order is part of the discovery contract.
var resolvers = []resolver{
	func(d *Discovery, m *Manifest) Factory {
		if m.Factory == "" {
			return nil
		}
		return d.factories[m.Factory]
	},
	func(d *Discovery, m *Manifest) Factory {
		return d.factories["Plugin"]
	},
	func(d *Discovery, m *Manifest) Factory {
		if len(d.order) == 0 {
			return nil
		}
		return d.factories[d.order[0]]
	},
}

// manifestExtensions are the file extensions discovery recognizes.
var manifestExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// Discovery scans directory trees for plugin manifests and resolves them to
// plugins through registered factories.
type Discovery struct {
	mu        sync.RWMutex
	factories map[string]Factory
	order     []string
	logger    *zap.Logger
}

// NewDiscovery creates a new discovery instance
func NewDiscovery(logger *zap.Logger) *Discovery {
	return &Discovery{
		factories: make(map[string]Factory),
		logger:    logger,
	}
}

// RegisterFactory adds a named factory. Registration order matters: the
// first factory registered is the resolver chain's last resort.
func (d *Discovery) RegisterFactory(name string, f Factory) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.factories[name]; !exists {
		d.order = append(d.order, name)
	}
	d.factories[name] = f
}

// IsCandidate reports whether a filename looks like a plugin manifest: a
// recognized extension and "plugin" somewhere in the name.
func IsCandidate(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	return manifestExtensions[filepath.Ext(base)] && strings.Contains(base, "plugin")
}

// Load reads one manifest file and resolves it to a plugin.
func (d *Discovery) Load(path string) (*Plugin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin manifest %s: %w", path, err)
	}

	m := &Manifest{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, m)
	} else {
		err = yaml.Unmarshal(data, m)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse plugin manifest %s: %w", path, err)
	}

	return d.resolve(m)
}

// resolve walks the fallback chain and builds the plugin with the first
// factory that matches.
func (d *Discovery) resolve(m *Manifest) (*Plugin, error) {
	d.mu.RLock()
	var factory Factory
	for _, r := range resolvers {
		if factory = r(d, m); factory != nil {
			break
		}
	}
	d.mu.RUnlock()

	if factory == nil {
		return nil, fmt.Errorf("no factory resolves plugin manifest %q", m.Name)
	}

	p, err := factory(m)
	if err != nil {
		return nil, err
	}
	if p != nil && p.Config == nil {
		p.Config = m.Config
	}
	return p, nil
}

// Discover walks the directory tree and loads every candidate manifest. A
// file that fails to load is logged and skipped; an unreadable root is
// fatal for the whole call.
func (d *Discovery) Discover(dir string) ([]*Plugin, error) {
	if _, err := os.ReadDir(dir); err != nil {
		return nil, fmt.Errorf("failed to read plugin directory %s: %w", dir, err)
	}

	var plugins []*Plugin
	walkErr := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if d.logger != nil {
				d.logger.Warn("Skipping unreadable path during discovery",
					zap.String("path", path), zap.Error(err))
			}
			return nil
		}
		if entry.IsDir() || !IsCandidate(entry.Name()) {
			return nil
		}

		p, err := d.Load(path)
		if err != nil {
			if d.logger != nil {
				d.logger.Warn("Skipping plugin manifest",
					zap.String("path", path), zap.Error(err))
			}
			return nil
		}

		plugins = append(plugins, p)
		if d.logger != nil {
			d.logger.Info("Plugin discovered",
				zap.String("plugin", p.Name),
				zap.String("path", path))
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return plugins, nil
}
