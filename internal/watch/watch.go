// Package watch re-runs the probe whenever a snapshot profile changes on
// disk. It watches the profile's parent directory rather than the file
// itself because editors typically replace files via rename, which would
// drop an inode-level watch.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDefault is the default debounce interval for file events.
const debounceDefault = 200 * time.Millisecond

// FileWatcher watches a single snapshot file and invokes a handler after
// changes settle.
type FileWatcher struct {
	path     string
	handler  func()
	debounce time.Duration
}

// NewFileWatcher creates a watcher for the given file.
func NewFileWatcher(path string, handler func()) *FileWatcher {
	return &FileWatcher{
		path:     path,
		handler:  handler,
		debounce: debounceDefault,
	}
}

// Run watches the file until ctx is cancelled. Multiple events inside the
// debounce window collapse into one handler invocation; the handler runs on
// the watch goroutine, so a slow handler delays the next run rather than
// piling up.
func (w *FileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	pending := false

	// Single debounce timer, reset on each event. Initialized as stopped;
	// the first event starts it.
	debounceTimer := time.NewTimer(w.debounce)
	debounceTimer.Stop()
	defer debounceTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounceTimer.C:
			mu.Lock()
			fire := pending
			pending = false
			mu.Unlock()
			if fire {
				w.handler()
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || abs != target {
				continue
			}

			mu.Lock()
			pending = true
			mu.Unlock()

			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			_ = err
		}
	}
}
