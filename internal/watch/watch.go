// Package watch re-runs a selection whenever its source file changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces the burst of events a single save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher calls a function each time a file settles after a change.
type Watcher struct {
	logger   *zap.Logger
	debounce time.Duration
}

// New creates a Watcher. A nil logger discards log output; a non-positive
// debounce uses DefaultDebounce.
func New(logger *zap.Logger, debounce time.Duration) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{logger: logger, debounce: debounce}
}

// Run calls fn once immediately and again after every write, create or
// rename that touches path, until ctx ends. The parent directory is watched
// so editors that save by replacing the file are seen. Errors from fn are
// logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, path string, fn func() error) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w.logger.Debug("watching", zap.String("file", abs))

	w.call(fn, abs)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("change detected", zap.String("file", abs), zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			w.call(fn, abs)
		}
	}
}

func (w *Watcher) call(fn func() error, file string) {
	if err := fn(); err != nil {
		w.logger.Warn("selection failed", zap.String("file", file), zap.Error(err))
	}
}
