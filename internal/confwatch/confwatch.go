// Package confwatch reloads the YAML config file on change so long-running
// deployments can adjust the log level without a restart.
package confwatch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 200 * time.Millisecond

// Reload parses the config file and returns the new log level.
type Reload func(path string) (slog.Level, error)

// Watch starts an fsnotify watcher on the config file's directory and
// processes change events until ctx is cancelled. Editors that replace the
// file on save (rename plus create) are handled by watching the directory
// rather than the file itself. Successive events within the debounce window
// collapse into a single reload.
func Watch(ctx context.Context, path string, level *slog.LevelVar, logger *slog.Logger, reload Reload) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("confwatch: started", slog.String("path", path))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(debounce)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("confwatch: stopped")
			return nil

		case <-reloadCh:
			lvl, reloadErr := reload(path)
			if reloadErr != nil {
				logger.Warn("confwatch: reload failed",
					slog.String("path", path),
					slog.String("error", reloadErr.Error()))
				continue
			}
			if lvl != level.Level() {
				logger.Info("confwatch: log level changed",
					slog.String("from", level.Level().String()),
					slog.String("to", lvl.String()))
				level.Set(lvl)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("confwatch: error", slog.String("error", watchErr.Error()))
		}
	}
}
