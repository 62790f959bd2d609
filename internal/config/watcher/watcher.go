// Package watcher reports changes to a fixed set of files so a script
// replay can be re-run whenever the script or its configuration is edited.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Op is the kind of change observed.
type Op int

const (
	// OpWrite indicates the file was modified.
	OpWrite Op = iota

	// OpCreate indicates a missing file appeared.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove
)

// String returns the operation name.
func (op Op) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event is one observed change.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Watcher tracks the modification times of a fixed set of files. Events
// are derived from those times, so a notification that changed nothing
// is never reported.
type Watcher struct {
	mu    sync.Mutex
	files map[string]time.Time // zero time: file absent

	interval time.Duration
	debounce time.Duration
	polling  bool
	now      func() time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithDebounce sets how long changes must stay quiet before Run reports
// them. Zero reports every poll's changes immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithPolling makes Run poll file modification times instead of
// subscribing to file system notifications.
func WithPolling() Option {
	return func(w *Watcher) {
		w.polling = true
	}
}

// New creates a watcher with a 100ms debounce. When polling, files are
// checked every 500ms.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		files:    make(map[string]time.Time),
		interval: 500 * time.Millisecond,
		debounce: 100 * time.Millisecond,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch adds paths to the watch list. A path that does not exist yet is
// watched for creation.
func (w *Watcher) Watch(paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			w.files[abs] = time.Time{}
		case err != nil:
			return err
		default:
			w.files[abs] = info.ModTime()
		}
	}
	return nil
}

// Files returns the watched paths, sorted.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// Poll checks every watched file once and returns the changes since the
// previous check, sorted by path.
func (w *Watcher) Poll() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	var events []Event
	for path, last := range w.files {
		op, mod, changed := check(path, last)
		if !changed {
			continue
		}
		w.files[path] = mod
		events = append(events, Event{Path: path, Op: op, Time: w.now()})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}

func check(path string, last time.Time) (Op, time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !last.IsZero() {
			return OpRemove, time.Time{}, true
		}
		return 0, last, false
	}
	mod := info.ModTime()
	switch {
	case last.IsZero():
		return OpCreate, mod, true
	case !mod.Equal(last):
		return OpWrite, mod, true
	}
	return 0, last, false
}

// coalesce folds a newer operation on the same file into a pending one.
// A removal wins; a creation followed by writes stays a creation.
func coalesce(pending, next Op) Op {
	switch {
	case next == OpRemove:
		return OpRemove
	case next == OpWrite && pending == OpCreate:
		return OpCreate
	}
	return next
}

// Run watches until ctx is done, calling fn with each batch of changes
// once no file has changed for the debounce period. It returns ctx.Err().
//
// Change notifications come from fsnotify on the files' directories, so
// that editors replacing a file by rename are still seen. When fsnotify
// is unavailable, or WithPolling was given, Run polls instead.
func (w *Watcher) Run(ctx context.Context, fn func([]Event)) error {
	if w.polling {
		return w.runPolling(ctx, fn)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return w.runPolling(ctx, fn)
	}
	defer fsw.Close()

	for _, dir := range w.dirs() {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	var quiet <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fsw.Events:
			if !ok {
				return ctx.Err()
			}
			if w.watching(ev.Name) {
				quiet = time.After(w.debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return ctx.Err()
			}
			return fmt.Errorf("watching files: %w", err)
		case <-quiet:
			quiet = nil
			if events := w.Poll(); len(events) > 0 {
				fn(events)
			}
		}
	}
}

func (w *Watcher) runPolling(ctx context.Context, fn func([]Event)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	pending := make(map[string]Event)
	var lastChange time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		for _, ev := range w.Poll() {
			if prev, ok := pending[ev.Path]; ok {
				ev.Op = coalesce(prev.Op, ev.Op)
			}
			pending[ev.Path] = ev
			lastChange = ev.Time
		}
		if len(pending) == 0 || w.now().Sub(lastChange) < w.debounce {
			continue
		}

		batch := make([]Event, 0, len(pending))
		for _, ev := range pending {
			batch = append(batch, ev)
		}
		sort.Slice(batch, func(i, j int) bool { return batch[i].Path < batch[j].Path })
		clear(pending)
		fn(batch)
	}
}

// dirs returns the distinct parent directories of the watched files.
func (w *Watcher) dirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, path := range w.Files() {
		dir := filepath.Dir(path)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (w *Watcher) watching(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[filepath.Clean(name)]
	return ok
}
