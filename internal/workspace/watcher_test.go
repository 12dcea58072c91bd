package workspace

import (
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/renamekit/internal/engine/buffer"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestWatcher_ReloadsExternalWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "old")

	ws := New()
	doc, err := ws.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	base := doc.Buffer.Revision()

	var reloads atomic.Int32
	w, err := NewWatcher(ws,
		WithDebounce(10*time.Millisecond),
		WithReloadHandler(func(p string, rev buffer.RevisionID) {
			if p == path {
				reloads.Add(1)
			}
		}),
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	if err := w.WatchAll(); err != nil {
		t.Fatalf("WatchAll() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("new"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	waitFor(t, "reload", func() bool { return doc.Buffer.Text() == "new" })

	if doc.Buffer.Revision() <= base {
		t.Errorf("Revision() = %d, want > %d", doc.Buffer.Revision(), base)
	}
	waitFor(t, "reload handler", func() bool { return reloads.Load() > 0 })
	if doc.IsModified() {
		t.Error("reloaded document should not be modified")
	}
}

func TestWatcher_KeepsDirtyDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "old")

	ws := New()
	doc, err := ws.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := doc.Buffer.Apply([]buffer.Edit{buffer.NewInsert(buffer.Point{}, "x")}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	errs := make(chan error, 4)
	w, err := NewWatcher(ws,
		WithDebounce(10*time.Millisecond),
		WithErrorHandler(func(err error) { errs <- err }),
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := os.WriteFile(path, []byte("external"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case err := <-errs:
		if !errors.Is(err, ErrDirtyDocument) {
			t.Errorf("error = %v, want ErrDirtyDocument", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no error reported for dirty document")
	}
	if doc.Buffer.Text() != "xold" {
		t.Errorf("Text() = %q, want unsaved edits kept", doc.Buffer.Text())
	}
}

func TestWatcher_Close(t *testing.T) {
	w, err := NewWatcher(New())
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := w.Watch(t.TempDir()); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Watch() after Close error = %v, want ErrWatcherClosed", err)
	}
}
