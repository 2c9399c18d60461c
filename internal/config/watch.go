package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// reloadDelay coalesces the burst of events editors produce for one save.
const reloadDelay = 250 * time.Millisecond

// Watch reloads the settings file whenever it changes and passes every valid
// result to onChange. Invalid edits are logged and skipped. The directory is
// watched rather than the file so atomic renames are seen. Watch blocks until
// ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	if path == "" {
		path = DefaultConfigFilename
	}

	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}

	defer func() { _ = w.Close() }()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch settings directory: %w", err)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)

	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			logger.WarnKV(ctx, "Settings reload failed", "path", path, "error", err)

			return
		}

		logger.DebugKV(ctx, "Settings reloaded", "path", path)
		onChange(cfg)
	}

	defer func() {
		mu.Lock()
		defer mu.Unlock()

		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}

			mu.Lock()

			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(reloadDelay, reload)

			mu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			logger.WarnKV(ctx, "Settings watcher error", "path", path, "error", err)
		}
	}
}
