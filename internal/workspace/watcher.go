package workspace

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/renamekit/internal/engine/buffer"
)

// DefaultDebounce is the default delay before a file change is reloaded.
const DefaultDebounce = 100 * time.Millisecond

// ReloadHandler is called after a document was reloaded from disk.
type ReloadHandler func(path string, rev buffer.RevisionID)

// ErrorHandler is called for watcher errors.
type ErrorHandler func(err error)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the delay used to coalesce rapid writes to one file.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithReloadHandler sets the callback invoked after a reload.
func WithReloadHandler(fn ReloadHandler) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// WithErrorHandler sets the callback invoked on errors.
func WithErrorHandler(fn ErrorHandler) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher reloads open documents when their files change on disk.
type Watcher struct {
	ws  *Workspace
	fsw *fsnotify.Watcher

	delay    time.Duration
	onReload ReloadHandler
	onError  ErrorHandler

	mu      sync.Mutex
	dirs    map[string]bool
	pending map[string]*time.Timer
	closed  bool

	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// NewWatcher creates a watcher for the documents of ws and starts its
// event loop. Call Watch for each document and Close when done.
func NewWatcher(ws *Workspace, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		ws:      ws,
		fsw:     fsw,
		delay:   DefaultDebounce,
		dirs:    make(map[string]bool),
		pending: make(map[string]*time.Timer),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Watch watches the directory of an open document.
// Directories are watched rather than files so editors that replace files
// by rename are still observed.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absPath)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.dirs[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = true
	return nil
}

// WatchAll watches every open document.
func (w *Watcher) WatchAll() error {
	for _, p := range w.ws.Paths() {
		if err := w.Watch(p); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)

	// Cancel all pending timers
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.closedWg.Wait()
	return w.fsw.Close()
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

// handleEvent schedules a debounced reload for writes to open documents.
func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
		return
	}
	path := filepath.Clean(ev.Name)
	if _, ok := w.ws.lookup(path); !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if t, exists := w.pending[path]; exists {
		t.Reset(w.delay)
		return
	}
	w.pending[path] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		closed := w.closed
		w.mu.Unlock()
		if !closed {
			w.reload(path)
		}
	})
}

// reload replaces the buffer content with the file content.
func (w *Watcher) reload(path string) {
	doc, ok := w.ws.lookup(path)
	if !ok {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		// Removed or replaced; a later create event reloads it
		return
	}
	content, err := os.ReadFile(path)
	if err != nil {
		w.reportError(err)
		return
	}
	text := string(content)

	if text == doc.Buffer.Text() {
		doc.markSaved(text, info.ModTime())
		return
	}
	if doc.IsModified() {
		w.reportError(&ReloadError{Path: path, Err: ErrDirtyDocument})
		return
	}

	doc.Buffer.Reload(text)
	doc.markSaved(text, info.ModTime())

	if w.onReload != nil {
		w.onReload(path, doc.Buffer.Revision())
	}
}

func (w *Watcher) reportError(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}

// ReloadError reports a document that could not be reloaded.
type ReloadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ReloadError) Error() string {
	return "reload " + e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ReloadError) Unwrap() error {
	return e.Err
}
