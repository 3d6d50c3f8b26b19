package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Invalidator is the cache surface a Watcher drives. *MemoryCache
// satisfies it.
type Invalidator interface {
	InvalidateFile(ctx context.Context, path string) int
}

// Watcher invalidates cache entries when their file dependencies change on
// disk, complementing the read-time staleness checks with proactive
// removal. Watching is best effort: a path that cannot be watched still
// invalidates correctly at read time.
type Watcher struct {
	inv     Invalidator
	watcher *fsnotify.Watcher
	onError func(error)

	mu     sync.Mutex
	closed bool
}

// NewWatcher creates a watcher that feeds file-change events into inv.
// onError, when non-nil, receives watch-stream errors; they are never
// fatal. The caller must Close the watcher when done.
func NewWatcher(inv Invalidator, onError func(error)) (*Watcher, error) {
	if inv == nil {
		return nil, ErrNilCache
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		inv:     inv,
		watcher: fsw,
		onError: onError,
	}
	go w.watchLoop()
	return w, nil
}

// Watch adds paths to the watch set. Paths are absolute-ized so events
// match the dependency spellings recorded by Set. Failures are collected
// and returned joined; successfully added paths stay watched.
func (w *Watcher) Watch(paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}

	var errs []error
	for _, path := range paths {
		if err := w.watcher.Add(normalizeDep(path)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Unwatch removes a path from the watch set. Removing an unwatched path is
// not an error.
func (w *Watcher) Unwatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}

	if err := w.watcher.Remove(normalizeDep(path)); err != nil {
		if errors.Is(err, fsnotify.ErrNonExistentWatch) {
			return nil
		}
		return err
	}
	return nil
}

// Close stops the watch loop. Idempotent.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}

// watchLoop handles fsnotify events until Close.
func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

// handleEvent invalidates dependents of a changed file. Only writes,
// removals, and renames matter; a removed or renamed path loses its watch,
// and read-time stat checks cover it from then on.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	switch {
	case event.Op&fsnotify.Write != 0:
	case event.Op&fsnotify.Remove != 0:
	case event.Op&fsnotify.Rename != 0:
	default:
		return
	}
	w.inv.InvalidateFile(context.Background(), event.Name)
}

// Ensure MemoryCache satisfies the watcher's cache surface
var _ Invalidator = (*MemoryCache)(nil)
