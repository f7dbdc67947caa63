// Package watcher provides debounced file system watching for board
// directories, so views can reload when another process changes the store.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the time to wait after the last file event before triggering
// a callback. This coalesces rapid changes (e.g., batch operations) into a
// single notification.
const DefaultDelay = 100 * time.Millisecond

// Watcher watches board directories for changes and invokes a callback
// with debouncing.
type Watcher struct {
	fsw      *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	delay    time.Duration
	ignore   func(name string) bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay overrides the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithIgnore skips events whose file base name matches fn.
func WithIgnore(fn func(name string) bool) Option {
	return func(w *Watcher) { w.ignore = fn }
}

// IgnoreBookkeeping matches files the stores and the activity log write as a
// side effect: lock files, atomic-write temp files and the activity log.
func IgnoreBookkeeping(name string) bool {
	switch {
	case name == ".lock", name == "activity.jsonl":
		return true
	case strings.HasSuffix(name, ".tmp"), strings.HasSuffix(name, "~"), strings.HasSuffix(name, ".swp"):
		return true
	}
	return false
}

// New creates a Watcher that monitors the given paths for changes.
// The callback is invoked (debounced) whenever a file change is detected.
func New(paths []string, callback func(), opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fsw:      fsw,
		callback: callback,
		delay:    DefaultDelay,
		ignore:   IgnoreBookkeeping,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run starts the watch loop. It blocks until the context is canceled.
// Errors from the underlying watcher are passed to the optional errFn callback.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.ignore != nil && w.ignore(filepath.Base(event.Name)) {
				continue
			}
			w.debounce()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) debounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.callback)
}
