package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path for changes and calls onChange with the newly loaded Config each time
// the file is written or replaced. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file so editors that save by renaming a
// temporary file over path keep triggering reloads. A reload that fails to parse or validate
// is logged and skipped, leaving the previous config active.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config: watch %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("config: watch %q: %w", filepath.Dir(path), err)
	}

	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigUpdate(event, path) {
				continue
			}
			reload(path, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "error", err)
		}
	}
}

// isConfigUpdate reports whether the event leaves new content at path. A remove or a rename
// away from path is followed by a create once the replacement lands.
func isConfigUpdate(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func reload(path string, onChange func(*Config)) {
	cfg, err := Load(path)
	if err != nil {
		slog.Error("config: reload failed, keeping previous config",
			"path", path, "error", err)
		return
	}
	slog.Info("config: reloaded", "path", path)
	onChange(cfg)
}
