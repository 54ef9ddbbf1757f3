package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the file at path whenever it is written or recreated and
// passes each valid result to apply. Invalid files are logged and skipped,
// the previous configuration stays in effect.
//
// The directory is watched rather than the file, so editors that replace
// the file on save keep triggering reloads. Watch returns once watching has
// started; it stops when ctx is done.
func Watch(ctx context.Context, path string, apply func(*Config), log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(abs)
				if err != nil {
					log.WarnContext(ctx, "config reload rejected", "path", abs, "error", err)
					continue
				}
				log.InfoContext(ctx, "config reloaded", "path", abs)
				apply(cfg)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.WarnContext(ctx, "config watcher error", "path", abs, "error", err)
			}
		}
	}()
	return nil
}
