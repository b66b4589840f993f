package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the bursts of events a single save produces
const watchDebounce = 100 * time.Millisecond

// Watch reloads the credentials file at path whenever it is written,
// created or renamed into place and passes the result to onChange. A file
// that fails to load is logged and skipped. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(Credentials)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are picked up
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)
	var debounce <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != target {
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
				continue
			}
			debounce = time.After(watchDebounce)

		case <-debounce:
			debounce = nil
			creds, err := LoadCredentials(path)
			if err != nil {
				slog.Warn("Ignoring credentials change", "path", path, "error", err)
				continue
			}
			slog.Info("Credentials reloaded", "path", path, "service", creds.TranslationService)
			onChange(creds)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Config watcher error", "error", err)
		}
	}
}
