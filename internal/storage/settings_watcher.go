package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"lapwatch/internal/logfields"
	"lapwatch/internal/ui/preferences"

	"github.com/fsnotify/fsnotify"
)

// SettingsWatcher reloads the settings file when it changes on disk.
type SettingsWatcher struct {
	path         string
	onChange     func(preferences.Settings)
	watcher      *fsnotify.Watcher
	debounceTime time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	stopChan chan struct{}
	stopped  bool
}

// NewSettingsWatcher creates a watcher for the settings file at path.
func NewSettingsWatcher(path string, onChange func(preferences.Settings)) (*SettingsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}

	return &SettingsWatcher{
		path:         absPath,
		onChange:     onChange,
		watcher:      watcher,
		debounceTime: 300 * time.Millisecond,
		stopChan:     make(chan struct{}),
	}, nil
}

// Start watches the directory holding the settings file. Watching the
// directory survives editors and atomic writers that replace the file.
func (sw *SettingsWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(sw.path)
	if err := sw.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch settings directory %s: %w", dir, err)
	}

	slog.Debug("Watching settings file", logfields.Path(sw.path))
	go sw.watchLoop(ctx)
	return nil
}

// Stop ends watching.
func (sw *SettingsWatcher) Stop() error {
	sw.mu.Lock()
	if sw.stopped {
		sw.mu.Unlock()
		return nil
	}
	sw.stopped = true
	close(sw.stopChan)
	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.mu.Unlock()

	if err := sw.watcher.Close(); err != nil {
		return fmt.Errorf("close file watcher: %w", err)
	}
	return nil
}

func (sw *SettingsWatcher) watchLoop(ctx context.Context) {
	fileName := filepath.Base(sw.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sw.stopChan:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				sw.scheduleReload()
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Settings watcher error", logfields.Error(err))
		}
	}
}

func (sw *SettingsWatcher) scheduleReload() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.stopped {
		return
	}
	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.timer = time.AfterFunc(sw.debounceTime, sw.reload)
}

func (sw *SettingsWatcher) reload() {
	settings, err := LoadSettings(sw.path)
	if err != nil {
		slog.Warn("Failed to reload settings", logfields.Path(sw.path), logfields.Error(err))
		return
	}
	slog.Info("Settings reloaded", logfields.Path(sw.path))
	if sw.onChange != nil {
		sw.onChange(settings)
	}
}
