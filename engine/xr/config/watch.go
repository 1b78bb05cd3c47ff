package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the file whenever it is written or replaced and hands every
// valid result to fn. Invalid edits are logged and skipped, so fn only ever sees
// validated configurations. The directory is watched rather than the file so
// editors that save by rename keep being followed.
//
// Parameters:
//   - ctx: stops the watcher when done
//   - path: the config file
//   - logger: receives reload failures
//   - fn: called from the watcher goroutine with each reloaded configuration
//
// Returns:
//   - error: the failure to start watching
func Watch(ctx context.Context, path string, logger *log.Logger, fn func(Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(e.Name) != abs || e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				c, err := Load(abs)
				if err != nil {
					logger.Warn("config reload failed", "path", abs, "err", err)
					continue
				}
				logger.Info("config reloaded", "path", abs)
				fn(c)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("config watcher", "err", err)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
