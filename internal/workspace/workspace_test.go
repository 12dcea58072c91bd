package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/dshills/renamekit/internal/engine/buffer"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestWorkspace_Open(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.go", "package main\n")

	ws := New()
	doc, err := ws.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if doc.LanguageID != "go" {
		t.Errorf("LanguageID = %q, want go", doc.LanguageID)
	}
	if doc.Buffer.Text() != "package main\n" {
		t.Errorf("Text() = %q", doc.Buffer.Text())
	}
	if doc.Buffer.IsReadOnly() {
		t.Error("writable file opened read-only")
	}

	again, err := ws.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if again != doc {
		t.Error("Open() of an open file should return the same document")
	}

	if _, err := ws.Open(filepath.Join(dir, "missing.go")); err == nil {
		t.Error("Open() of a missing file should fail")
	}
}

func TestWorkspace_OpenReadOnly(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ro.go", "x")
	if err := os.Chmod(path, 0o444); err != nil {
		t.Fatalf("Chmod() error = %v", err)
	}

	doc, err := New().Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !doc.Buffer.IsReadOnly() {
		t.Error("read-only file opened writable")
	}
}

func TestWorkspace_Documents(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.go", "a"),
		writeFile(t, dir, "b.go", "b"),
		writeFile(t, dir, "c.go", "c"),
	}

	ws := New(WithLoadConcurrency(2))
	docs, err := ws.Documents(context.Background(), paths)
	if err != nil {
		t.Fatalf("Documents() error = %v", err)
	}
	for i, doc := range docs {
		if doc.Path != paths[i] {
			t.Errorf("docs[%d].Path = %q, want %q", i, doc.Path, paths[i])
		}
	}
	if len(ws.Paths()) != 3 {
		t.Errorf("Paths() = %v", ws.Paths())
	}

	_, err = ws.Documents(context.Background(), []string{filepath.Join(dir, "nope.go")})
	if err == nil {
		t.Error("Documents() with a missing file should fail")
	}
}

func TestWorkspace_SaveAndModified(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "foo")

	ws := New()
	doc, err := ws.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if len(ws.Modified()) != 0 {
		t.Errorf("Modified() = %v, want none", ws.Modified())
	}

	if _, err := doc.Buffer.Apply([]buffer.Edit{buffer.NewEdit(buffer.LineRange(0, 0, 3), "bar")}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := ws.Modified(); len(got) != 1 || got[0] != path {
		t.Errorf("Modified() = %v, want [%s]", got, path)
	}
	if orig, _ := ws.Original(path); orig != "foo" {
		t.Errorf("Original() = %q, want foo", orig)
	}

	if err := ws.SaveAll(); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "bar" {
		t.Errorf("file content = %q, want bar", data)
	}
	if len(ws.Modified()) != 0 {
		t.Errorf("Modified() after save = %v", ws.Modified())
	}

	if err := ws.Save(filepath.Join(dir, "other.go")); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Save(unknown) error = %v, want ErrNotOpen", err)
	}
}

func TestWorkspace_RevisionsAndChanges(t *testing.T) {
	ws := New()
	doc, err := ws.OpenText("/tmp/ws/a.go", "one")
	if err != nil {
		t.Fatalf("OpenText() error = %v", err)
	}

	base := ws.Revisions()[doc.Path]
	if _, err := doc.Buffer.Apply([]buffer.Edit{buffer.NewInsert(buffer.Point{}, "x")}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if ws.Revisions()[doc.Path] != base+1 {
		t.Errorf("Revisions() = %v, want %d", ws.Revisions(), base+1)
	}
	if changes := ws.ChangesSince(doc.Path, base); len(changes) != 1 {
		t.Errorf("ChangesSince() = %d changes, want 1", len(changes))
	}
	if rev, ok := ws.LoadedRevision(doc.Path); !ok || rev != base {
		t.Errorf("LoadedRevision() = %d, %v, want %d, true", rev, ok, base)
	}
	if _, ok := ws.LoadedRevision("/tmp/ws/missing.go"); ok {
		t.Error("LoadedRevision(missing) ok = true")
	}
}

func TestWorkspace_WordPattern(t *testing.T) {
	ws := New(
		WithLanguageDetector(ExtensionDetector(map[string][]string{"css": {"css", ".scss"}})),
		WithWordPattern("css", regexp.MustCompile(`[\w-]+`)),
	)
	doc, err := ws.OpenText("/tmp/ws/site.scss", ".nav-bar {}")
	if err != nil {
		t.Fatalf("OpenText() error = %v", err)
	}
	if doc.LanguageID != "css" {
		t.Fatalf("LanguageID = %q, want css", doc.LanguageID)
	}
	w, ok := doc.Buffer.WordAt(buffer.Point{Line: 0, Column: 3})
	if !ok || w.Text != "nav-bar" {
		t.Errorf("WordAt() = %q, %v; want nav-bar", w.Text, ok)
	}
}

func TestExtensionDetector(t *testing.T) {
	detect := ExtensionDetector(map[string][]string{"templ": {".templ"}})

	tests := []struct {
		path string
		want string
	}{
		{"/a/b.templ", "templ"},
		{"/a/b.GO", "go"},
		{"/a/b.unknown", ""},
		{"/a/Makefile", ""},
	}
	for _, tt := range tests {
		if got := detect(tt.path); got != tt.want {
			t.Errorf("detect(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
