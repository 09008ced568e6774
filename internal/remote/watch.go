package remote

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch observes the record database file for out-of-process changes and
// invokes onChange after a short quiet period. It is the pull-based refresh
// entry point: callers typically reload the collection from the store.
//
// Events are debounced because a single logical write produces several
// filesystem events (db, -wal, -shm). The watcher runs until ctx is
// cancelled.
func Watch(ctx context.Context, dbPath string, logger *slog.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("store watcher: started", slog.String("db", abs))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(200 * time.Millisecond)
			timerCh = timer.C
		} else {
			timer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("store watcher: stopped")
			return nil

		case <-timerCh:
			logger.Debug("store watcher: change detected")
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// The db file itself plus its WAL side files.
			if !strings.HasPrefix(ev.Name, abs) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) != 0 {
				schedule()
			}

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("store watcher: error", slog.String("error", werr.Error()))
		}
	}
}
