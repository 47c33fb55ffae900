// Package flags provides the feature-flag gate consulted by the navigation
// renderer. A navigation item may be policy-visible but flag-disabled; both
// checks must pass before the item renders.
package flags

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/tuutta/wayfinder/pkg/observability"
)

// Gate answers feature-flag lookups. Version increments whenever the
// underlying flag set changes, so derived caches keyed on the version are
// invalidated without subscriptions.
type Gate interface {
	Enabled(key string) bool
	Version() uint64
}

// Static is a fixed flag set, used in tests and as the zero-config default.
// Flags absent from the map are enabled: a missing flag must never hide
// navigation that policy allows.
type Static struct {
	Disabled map[string]bool
}

// Enabled reports whether a feature flag is on.
func (s Static) Enabled(key string) bool {
	return !s.Disabled[key]
}

// Version always returns 0 for a static gate.
func (s Static) Version() uint64 { return 0 }

// FileGate loads flags from a YAML file (flag key -> bool) and reloads it on
// change via fsnotify. Lookups are lock-free on the hot path.
type FileGate struct {
	path    string
	logger  *observability.Logger
	watcher *fsnotify.Watcher

	mu      sync.RWMutex
	flags   map[string]bool
	version atomic.Uint64

	done chan struct{}
}

// NewFileGate reads the flag file and starts watching it for changes.
func NewFileGate(path string, logger *observability.Logger) (*FileGate, error) {
	g := &FileGate{
		path:   path,
		logger: logger,
		done:   make(chan struct{}),
	}
	if err := g.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create flag watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch flag file %s: %w", path, err)
	}
	g.watcher = watcher

	go g.watch()
	return g, nil
}

// Enabled reports whether a feature flag is on. Unknown flags are on.
func (g *FileGate) Enabled(key string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	enabled, ok := g.flags[key]
	if !ok {
		return true
	}
	return enabled
}

// Version returns the current flag-set version.
func (g *FileGate) Version() uint64 {
	return g.version.Load()
}

// Close stops the watcher.
func (g *FileGate) Close() error {
	close(g.done)
	return g.watcher.Close()
}

func (g *FileGate) reload() error {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return fmt.Errorf("failed to read flag file %s: %w", g.path, err)
	}

	flags := make(map[string]bool)
	if err := yaml.Unmarshal(data, &flags); err != nil {
		return fmt.Errorf("failed to parse flag file %s: %w", g.path, err)
	}

	g.mu.Lock()
	g.flags = flags
	g.mu.Unlock()
	g.version.Add(1)
	return nil
}

func (g *FileGate) watch() {
	defer observability.RecoverPanic(g.logger, "feature flag watcher")

	for {
		select {
		case <-g.done:
			return
		case event, ok := <-g.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := g.reload(); err != nil {
				// Keep serving the last good flag set.
				g.logger.WithError(err).Warn("Failed to reload feature flags")
				continue
			}
			g.logger.WithField("version", g.Version()).Info("Feature flags reloaded")
		case err, ok := <-g.watcher.Errors:
			if !ok {
				return
			}
			g.logger.WithError(err).Warn("Feature flag watcher error")
		}
	}
}
