// Package watch reports changes to a single analysis file so a viewer can
// reload it. Each change becomes a new model version in the shell.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

var (
	ErrRemoved        = errors.New("watched file was removed")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a [Watcher].
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = NewDebouncer(d) }
}

// WithLogger sets the logger; nil keeps log.Default().
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher watches one file. The containing directory is watched so that
// editors that save by rename are still seen.
type Watcher struct {
	path     string
	debounce *Debouncer
	logger   *log.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	cancel  context.CancelFunc
	changes chan struct{}
	errs    chan error
}

// New returns a watcher for path. It does not touch the file system until
// [Watcher.Start].
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		debounce: NewDebouncer(DefaultDebounce),
		logger:   log.Default(),
		changes:  make(chan struct{}, 1),
		errs:     make(chan error, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path returns the absolute watched path.
func (w *Watcher) Path() string { return w.path }

// Changes receives once per debounced burst of writes. Pending signals are
// coalesced, so a slow reader sees at most one.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Errors receives watch errors, including [ErrRemoved]. Errors are dropped
// when the reader is behind.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Start begins watching until ctx is done or [Watcher.Stop] is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw != nil {
		return ErrAlreadyStarted
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.fsw, w.cancel = fsw, cancel
	go w.loop(ctx, fsw)

	w.logger.Debug("watching", "path", w.path)
	return nil
}

// Stop ends watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return
	}
	w.cancel()
	w.fsw.Close()
	w.fsw = nil
	w.debounce.Cancel()
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove):
				w.report(ErrRemoved)
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create), ev.Has(fsnotify.Rename):
				w.debounce.Trigger(func() { w.notify(ctx) })
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *Watcher) notify(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	w.logger.Debug("file changed", "path", w.path)
	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func (w *Watcher) report(err error) {
	w.logger.Warn("watch error", "path", w.path, "err", err)
	select {
	case w.errs <- err:
	default:
	}
}
