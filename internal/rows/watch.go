package rows

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces editor write bursts into a single reload.
const debounce = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the directory containing path and
// invokes reload after the file changes, until ctx is cancelled. The parent
// directory is watched rather than the file itself so atomic
// write-then-rename saves keep being observed.
func Watch(ctx context.Context, path string, logger *slog.Logger, reload func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			if err := reload(); err != nil {
				logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
			} else {
				logger.Info("watcher: catalog reloaded", slog.String("path", abs))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			evAbs, evErr := filepath.Abs(ev.Name)
			if evErr != nil || evAbs != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
