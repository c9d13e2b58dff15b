// Package watch reports when a capture file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tOgg1/canplay/internal/logging"
)

// DefaultSettle is how long a file must stay quiet before a change is reported.
const DefaultSettle = 100 * time.Millisecond

// Watcher monitors one file and calls notify after writes settle. notify runs
// on a timer goroutine; it must hand the path to the owning loop rather than
// touch session state itself.
type Watcher struct {
	path   string
	settle time.Duration
	notify func(path string)

	mu       sync.Mutex
	debounce *time.Timer
}

// New creates a watcher for path.
func New(path string, settle time.Duration, notify func(path string)) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		path:   filepath.Clean(path),
		settle: settle,
		notify: notify,
	}
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Run watches until ctx is cancelled. The parent directory is watched so that
// editors that replace the file by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	logger := logging.Component("watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Debug().Str("path", w.path).Msg("watching capture")

	for {
		select {
		case <-ctx.Done():
			w.stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Str("path", w.path).Msg("watch error")
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.settle, func() {
		w.notify(w.path)
	})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
		w.debounce = nil
	}
}
