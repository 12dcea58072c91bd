package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/engine/tracking"
)

// DefaultLoadConcurrency bounds the number of files read in parallel by Documents.
const DefaultLoadConcurrency = 8

// Option configures a Workspace.
type Option func(*Workspace)

// WithLanguageDetector sets the language detector used when opening files.
func WithLanguageDetector(detect LanguageDetector) Option {
	return func(w *Workspace) {
		if detect != nil {
			w.detect = detect
		}
	}
}

// WithWordPattern sets the word pattern for buffers of a language.
func WithWordPattern(languageID string, pattern *regexp.Regexp) Option {
	return func(w *Workspace) {
		if pattern != nil {
			w.patterns[languageID] = pattern
		}
	}
}

// WithMaxTrackedChanges sets the tracker capacity of each document.
func WithMaxTrackedChanges(n int) Option {
	return func(w *Workspace) {
		w.maxChanges = n
	}
}

// WithLoadConcurrency sets how many files Documents reads in parallel.
func WithLoadConcurrency(n int) Option {
	return func(w *Workspace) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// Workspace holds the open documents, keyed by absolute path.
type Workspace struct {
	mu   sync.RWMutex
	docs map[string]*Document

	detect      LanguageDetector
	patterns    map[string]*regexp.Regexp
	maxChanges  int
	concurrency int
}

// New creates an empty workspace.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		docs:        make(map[string]*Document),
		detect:      DetectLanguageID,
		patterns:    make(map[string]*regexp.Regexp),
		maxChanges:  tracking.DefaultMaxChanges,
		concurrency: DefaultLoadConcurrency,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open opens a file, or returns the document if it is already open.
func (w *Workspace) Open(path string) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	if doc, ok := w.lookup(absPath); ok {
		return doc, nil
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open %s: is a directory", absPath)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	text := string(content)
	lang := w.detect(absPath)
	buf := buffer.New(text,
		buffer.WithPath(absPath),
		buffer.WithLanguage(lang),
		buffer.WithReadOnly(info.Mode().Perm()&0o200 == 0),
		buffer.WithWordPattern(w.patterns[lang]),
	)
	doc := newDocument(absPath, lang, text, buf,
		tracking.NewTracker(tracking.WithMaxChanges(w.maxChanges)), info.ModTime())

	w.mu.Lock()
	defer w.mu.Unlock()

	// Another goroutine may have opened it while we were reading
	if existing, ok := w.docs[absPath]; ok {
		return existing, nil
	}
	w.docs[absPath] = doc
	return doc, nil
}

// OpenText registers an in-memory document at path without reading the disk.
// It is used for new files and in tests.
func (w *Workspace) OpenText(path, text string) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	lang := w.detect(absPath)
	buf := buffer.New(text,
		buffer.WithPath(absPath),
		buffer.WithLanguage(lang),
		buffer.WithWordPattern(w.patterns[lang]),
	)
	doc := newDocument(absPath, lang, text, buf,
		tracking.NewTracker(tracking.WithMaxChanges(w.maxChanges)), time.Time{})

	w.mu.Lock()
	defer w.mu.Unlock()
	if existing, ok := w.docs[absPath]; ok {
		return existing, nil
	}
	w.docs[absPath] = doc
	return doc, nil
}

// Document returns an open document.
func (w *Workspace) Document(path string) (*Document, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}
	return w.lookup(absPath)
}

func (w *Workspace) lookup(absPath string) (*Document, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	doc, ok := w.docs[absPath]
	return doc, ok
}

// Documents opens every path concurrently and returns the documents in the
// same order. Already open documents are returned as is.
func (w *Workspace) Documents(ctx context.Context, paths []string) ([]*Document, error) {
	docs := make([]*Document, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := w.Open(path)
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Buffers opens every path concurrently and returns their buffers in order.
func (w *Workspace) Buffers(ctx context.Context, paths []string) ([]*buffer.Buffer, error) {
	docs, err := w.Documents(ctx, paths)
	if err != nil {
		return nil, err
	}
	bufs := make([]*buffer.Buffer, len(docs))
	for i, doc := range docs {
		bufs[i] = doc.Buffer
	}
	return bufs, nil
}

// Paths returns the paths of all open documents, sorted.
func (w *Workspace) Paths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	paths := make([]string, 0, len(w.docs))
	for p := range w.docs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Revisions returns the current revision of every open document.
func (w *Workspace) Revisions() map[string]buffer.RevisionID {
	w.mu.RLock()
	defer w.mu.RUnlock()

	revs := make(map[string]buffer.RevisionID, len(w.docs))
	for p, doc := range w.docs {
		revs[p] = doc.Buffer.Revision()
	}
	return revs
}

// LoadedRevision returns the revision an open document had when it was opened.
func (w *Workspace) LoadedRevision(path string) (buffer.RevisionID, bool) {
	doc, ok := w.Document(path)
	if !ok {
		return 0, false
	}
	return doc.LoadedRevision(), true
}

// ChangesSince returns the changes made to a document after rev.
func (w *Workspace) ChangesSince(path string, rev buffer.RevisionID) []buffer.Change {
	doc, ok := w.Document(path)
	if !ok {
		return nil
	}
	changes, _ := doc.Tracker.ChangesSince(rev)
	return changes
}

// Modified returns the paths of documents with unsaved changes, sorted.
func (w *Workspace) Modified() []string {
	var modified []string
	for _, p := range w.Paths() {
		if doc, ok := w.lookup(p); ok && doc.IsModified() {
			modified = append(modified, p)
		}
	}
	return modified
}

// Original returns the saved content of an open document.
func (w *Workspace) Original(path string) (string, error) {
	doc, ok := w.Document(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotOpen, path)
	}
	return doc.Original(), nil
}

// Save writes a document to disk, keeping the file mode.
func (w *Workspace) Save(path string) error {
	doc, ok := w.Document(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotOpen, path)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(doc.Path); err == nil {
		mode = info.Mode().Perm()
	}

	text := doc.Buffer.Text()
	if err := os.WriteFile(doc.Path, []byte(text), mode); err != nil {
		return fmt.Errorf("save %s: %w", doc.Path, err)
	}

	var modTime time.Time
	if info, err := os.Stat(doc.Path); err == nil {
		modTime = info.ModTime()
	}
	doc.markSaved(text, modTime)
	return nil
}

// SaveAll saves every modified document.
func (w *Workspace) SaveAll() error {
	for _, p := range w.Modified() {
		if err := w.Save(p); err != nil {
			return err
		}
	}
	return nil
}
