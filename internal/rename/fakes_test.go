package rename

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dshills/renamekit/internal/bulkedit"
	"github.com/dshills/renamekit/internal/engine/cursor"
)

type fakeWidget struct {
	mu       sync.Mutex
	openErr  error
	opens    int
	closes   int
	rng      WordRange
	text     string
	selStart int
	selEnd   int
	value    string

	// onOpen runs at the start of Open.
	onOpen func()
}

func (w *fakeWidget) Open(r WordRange, text string, selStart, selEnd int) error {
	if w.onOpen != nil {
		w.onOpen()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.openErr != nil {
		return w.openErr
	}
	w.opens++
	w.rng, w.text, w.selStart, w.selEnd = r, text, selStart, selEnd
	w.value = text
	return nil
}

func (w *fakeWidget) Value() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

func (w *fakeWidget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closes++
}

func (w *fakeWidget) setValue(v string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.value = v
}

type message struct {
	severity Severity
	text     string
}

type fakeFeedback struct {
	mu       sync.Mutex
	messages []message
}

func (f *fakeFeedback) Show(severity Severity, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message{severity, text})
}

func (f *fakeFeedback) all() []message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]message(nil), f.messages...)
}

type fakeProgress struct {
	mu      sync.Mutex
	started []string
	stops   int
	startCh chan struct{}
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{startCh: make(chan struct{}, 1)}
}

func (p *fakeProgress) Start(message string) func() {
	p.mu.Lock()
	p.started = append(p.started, message)
	p.mu.Unlock()
	select {
	case p.startCh <- struct{}{}:
	default:
	}
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.stops++
	}
}

func (p *fakeProgress) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.started), p.stops
}

// recorder logs the order of collaborator calls.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeEdits struct {
	rec *recorder
	tx  *fakeTx
}

func (f *fakeEdits) Open(source string, ed bulkedit.Editor) Transaction {
	f.rec.add("open")
	return f.tx
}

type fakeTx struct {
	rec       *recorder
	added     []bulkedit.WorkspaceEdit
	selection *cursor.Selection
	err       error
}

func (tx *fakeTx) Add(e bulkedit.WorkspaceEdit) error {
	tx.rec.add("add")
	tx.added = append(tx.added, e)
	return nil
}

func (tx *fakeTx) Finish(context.Context) (*cursor.Selection, error) {
	tx.rec.add("finish")
	return tx.selection, tx.err
}

func waitUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
