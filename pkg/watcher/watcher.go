// Package watcher monitors the config file for changes so theme and provider
// settings apply without restarting the TUI.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/mindmesh/pkg/debug"
)

// DefaultDebounce coalesces editor write bursts into one reload.
const DefaultDebounce = 250 * time.Millisecond

// ErrAlreadyStarted is returned by Start on a running watcher.
var ErrAlreadyStarted = errors.New("watcher already started")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithOnChange sets the callback invoked when the file changes. The callback
// runs on the watcher goroutine.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// Watcher watches a single file via fsnotify on its parent directory, which
// survives the rename dance editors do on save.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()

	fsw     *fsnotify.Watcher
	timer   *time.Timer
	mu      sync.Mutex
	started bool
	done    chan struct{}
}

// New creates a watcher for the given file path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		onChange: func() {},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. The parent directory must exist.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return err
	}
	w.fsw = fsw
	w.started = true
	go w.loop()
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	close(w.done)
	w.fsw.Close()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.started = false
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !sameFile(ev.Name, w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debug.Log("watcher: %s %s", ev.Op, ev.Name)
			w.fire()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			debug.Log("watcher: error: %v", err)
		}
	}
}

// fire schedules the debounced change callback.
func (w *Watcher) fire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

func sameFile(a, b string) bool {
	aa, err := filepath.Abs(a)
	if err != nil {
		return false
	}
	return aa == b
}
