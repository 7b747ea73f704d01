// ABOUTME: fsnotify-backed file watcher with per-path debounce
// ABOUTME: Watches parent directories so atomic rename-over writes are still seen

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mauromedda/concierge-go/internal/log"
)

// DefaultDebounce is the quiet period before a burst of writes is reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes to a fixed set of files. Rapid writes to the same
// file collapse into one onChange call once the file has been quiet for the
// debounce period.
type Watcher struct {
	fsw      *fsnotify.Watcher
	paths    map[string]bool
	dirs     []string
	onChange func(path string)

	mu       sync.Mutex
	debounce time.Duration
	pending  map[string]time.Time
	running  bool

	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// NewWatcher creates a watcher that calls onChange with the changed path.
// onChange runs on the watcher goroutine and must not block for long.
func NewWatcher(paths []string, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		paths:    make(map[string]bool, len(paths)),
		onChange: onChange,
		debounce: DefaultDebounce,
		pending:  make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	seen := make(map[string]bool)
	for _, p := range paths {
		p = filepath.Clean(p)
		w.paths[p] = true
		dir := filepath.Dir(p)
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// SetDebounce overrides the default quiet period.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Start registers the parent directories and begins delivering events in a
// goroutine. Subsequent calls are no-ops. The goroutine exits on Stop or when
// ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, dir := range w.dirs {
		if err := w.fsw.Add(dir); err != nil {
			close(w.doneCh)
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		log.Debug("watcher: watching %s", dir)
	}

	go w.run(ctx)
	return nil
}

// Stop halts the event goroutine and releases the fsnotify handle. Safe to
// call multiple times and concurrently, and before Start.
func (w *Watcher) Stop() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		started := w.running
		w.running = false
		w.mu.Unlock()

		close(w.stopCh)
		if started {
			<-w.doneCh
		}
		if err := w.fsw.Close(); err != nil {
			log.Warn("watcher: close: %v", err)
		}
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	w.mu.Lock()
	tick := w.debounce / 4
	w.mu.Unlock()
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn("watcher: %v", err)
		case now := <-ticker.C:
			w.flushPending(now)
		}
	}
}

// handleEvent queues a watched path on write, create, or rename-into.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Clean(event.Name)
	if !w.paths[name] {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	w.mu.Lock()
	w.pending[name] = time.Now()
	w.mu.Unlock()
}

// flushPending reports paths that have been quiet for the debounce period.
func (w *Watcher) flushPending(now time.Time) {
	w.mu.Lock()
	var ready []string
	for p, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, p)
			delete(w.pending, p)
		}
	}
	w.mu.Unlock()

	for _, p := range ready {
		w.onChange(p)
	}
}
