// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Watcher monitors agent directories for changes and rebuilds the registry
// wholesale, swapping the result into a Snapshot.
type Watcher struct {
	mu          sync.RWMutex
	loader      *Loader
	dirs        []string
	interval    time.Duration
	lastModTime map[string]time.Time
	snapshot    *Snapshot
	listeners   []func(*Registry, *Report)
	stopCh      chan struct{}
	doneCh      chan struct{}
	logger      *slog.Logger
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets the polling interval for file changes.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWatchLogger sets the logger for the watcher.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher performs the initial load and returns a watcher over the given
// directories.
func NewWatcher(ctx context.Context, loader *Loader, dirs []string, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		loader:      loader,
		dirs:        dirs,
		interval:    1 * time.Second,
		lastModTime: make(map[string]time.Time),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.recordModTimes()

	reg, report, err := loader.Load(ctx, dirs...)
	if err != nil {
		return nil, err
	}
	w.snapshot = NewSnapshot(reg, report)

	return w, nil
}

// OnReload registers a callback invoked after each successful rebuild.
func (w *Watcher) OnReload(fn func(*Registry, *Report)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Snapshot returns the holder for the current registry.
func (w *Watcher) Snapshot() *Snapshot {
	return w.snapshot
}

// Start begins watching for document changes.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			if w.checkForChanges() {
				w.reload(ctx)
			}
		}
	}
}

// checkForChanges stats every document under the watched directories and
// reports whether any was added, removed, or modified since the last sweep.
func (w *Watcher) checkForChanges() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.scanModTimes()
	changed := len(current) != len(w.lastModTime)
	if !changed {
		for path, mod := range current {
			last, exists := w.lastModTime[path]
			if !exists || mod.After(last) {
				changed = true
				break
			}
		}
	}
	w.lastModTime = current
	return changed
}

func (w *Watcher) recordModTimes() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastModTime = w.scanModTimes()
}

func (w *Watcher) scanModTimes() map[string]time.Time {
	out := make(map[string]time.Time)
	for _, dir := range w.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			out[filepath.Join(dir, entry.Name())] = info.ModTime()
		}
	}
	return out
}

func (w *Watcher) reload(ctx context.Context) {
	w.logger.Info("agent documents changed, rebuilding registry")

	reg, report, err := w.loader.Load(ctx, w.dirs...)
	if err != nil {
		w.logger.Error("failed to rebuild registry", "error", err)
		return
	}

	w.snapshot.Swap(reg, report)

	w.mu.RLock()
	listeners := make([]func(*Registry, *Report), len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.RUnlock()

	w.logger.Info("registry rebuilt", "loaded", report.Loaded, "report_id", report.ID)

	for _, fn := range listeners {
		fn(reg, report)
	}
}
