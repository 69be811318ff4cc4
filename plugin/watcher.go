package plugin

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher loads plugin manifests as they appear or change in a directory.
// It complements LoadPluginsFromDirectory for long-running processes.
type Watcher struct {
	manager  *Manager
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	done     chan struct{}
	stopOnce sync.Once
}

// Watch starts watching dir for plugin manifest creates and writes. Each
// event loads, registers, and (subject to auto-load) installs the plugin;
// failures are logged and do not stop the watcher.
func (m *Manager) Watch(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		manager: m,
		watcher: fsw,
		logger:  m.logger,
		done:    make(chan struct{}),
	}
	go w.run()

	if w.logger != nil {
		w.logger.Info("Watching plugin directory", zap.String("dir", dir))
	}
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if !IsCandidate(event.Name) {
				continue
			}
			w.load(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("Plugin watcher error", zap.Error(err))
			}
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) load(path string) {
	p, err := w.manager.discovery.Load(path)
	if err != nil {
		if w.logger != nil {
			w.logger.Warn("Skipping changed plugin manifest",
				zap.String("path", path), zap.Error(err))
		}
		return
	}

	// Already known manifests are left alone; hot-swapping an installed
	// plugin would need uninstall semantics the descriptor may not have.
	if w.manager.registry.Get(p.Name) != nil {
		return
	}

	options := map[string]any(nil)
	if !p.AutoLoad() {
		if err := w.manager.registry.Register(p); err != nil && w.logger != nil {
			w.logger.Warn("Failed to register discovered plugin",
				zap.String("plugin", p.Name), zap.Error(err))
		}
		return
	}
	if err := w.manager.UsePlugin(p, options); err != nil && w.logger != nil {
		w.logger.Warn("Failed to load discovered plugin",
			zap.String("plugin", p.Name), zap.Error(err))
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
