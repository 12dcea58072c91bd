package bulkedit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/engine/cursor"
)

// DocumentProvider gives access to the documents edits are applied to.
type DocumentProvider interface {
	// Buffers loads the buffers for paths, in the same order.
	Buffers(ctx context.Context, paths []string) ([]*buffer.Buffer, error)

	// Revisions returns the current revision of every open document.
	Revisions() map[string]buffer.RevisionID

	// LoadedRevision returns the revision a document had when it was loaded.
	LoadedRevision(path string) (buffer.RevisionID, bool)

	// ChangesSince returns the changes to a document after rev.
	ChangesSince(path string, rev buffer.RevisionID) []buffer.Change
}

// Editor is the editor a transaction is scoped to.
type Editor interface {
	Path() string
	Selection() cursor.Selection
}

// Service opens bulk edit transactions.
type Service struct {
	docs DocumentProvider
}

// NewService creates a service applying edits to docs.
func NewService(docs DocumentProvider) *Service {
	return &Service{docs: docs}
}

// Open starts a transaction scoped to ed. source names the feature that
// produced the edits and is kept for logging.
func (s *Service) Open(source string, ed Editor) *Transaction {
	tx := &Transaction{
		id:       uuid.NewString(),
		source:   source,
		docs:     s.docs,
		baseline: s.docs.Revisions(),
	}
	if ed != nil {
		tx.editorPath = ed.Path()
		tx.selection = ed.Selection()
		tx.hasEditor = true
	}
	return tx
}

// Transaction accumulates edits and commits them together.
type Transaction struct {
	id     string
	source string
	docs   DocumentProvider

	baseline   map[string]buffer.RevisionID
	editorPath string
	selection  cursor.Selection
	hasEditor  bool

	mu       sync.Mutex
	edit     WorkspaceEdit
	finished bool
}

// ID returns the unique transaction id.
func (t *Transaction) ID() string {
	return t.id
}

// Source returns the source given to Open.
func (t *Transaction) Source() string {
	return t.source
}

// Add accumulates edits.
func (t *Transaction) Add(e WorkspaceEdit) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.finished {
		return ErrFinished
	}
	t.edit.Documents = append(t.edit.Documents, e.Documents...)
	return nil
}

// Edits returns the accumulated edits.
func (t *Transaction) Edits() WorkspaceEdit {
	t.mu.Lock()
	defer t.mu.Unlock()
	return WorkspaceEdit{Documents: append([]DocumentEdit(nil), t.edit.Documents...)}
}

// Finish applies the accumulated edits.
//
// It returns the editor's selection mapped through the edits of the editor's
// document, or nil if that document was not edited. A document changed since
// Open, or since it was loaded if that came later, fails the whole
// transaction with a *ConflictError; nothing is applied.
func (t *Transaction) Finish(ctx context.Context) (*cursor.Selection, error) {
	t.mu.Lock()
	if t.finished {
		t.mu.Unlock()
		return nil, ErrFinished
	}
	t.finished = true
	docs := t.edit.merged()
	t.mu.Unlock()

	if len(docs) == 0 {
		return nil, nil
	}

	paths := make([]string, len(docs))
	for i, d := range docs {
		paths[i] = d.Path
	}
	bufs, err := t.docs.Buffers(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	bases := make([]buffer.RevisionID, len(bufs))
	for i, buf := range bufs {
		base, err := t.base(buf.Path())
		if err != nil {
			return nil, err
		}
		if buf.Revision() != base {
			return nil, t.conflict(buf.Path(), base)
		}
		bases[i] = base
	}

	type applied struct {
		buf     *buffer.Buffer
		changes []buffer.Change
	}
	done := make([]applied, 0, len(bufs))

	var editorChanges []buffer.Change
	for i, buf := range bufs {
		changes, err := buf.ApplyAt(bases[i], docs[i].Edits)
		if err != nil {
			for j := len(done) - 1; j >= 0; j-- {
				// Best effort; the revert only fails if the buffer moved again
				_ = done[j].buf.Revert(done[j].changes)
			}
			if errors.Is(err, buffer.ErrRevisionChanged) {
				return nil, t.conflict(buf.Path(), bases[i])
			}
			return nil, &ApplyError{Path: buf.Path(), Err: err}
		}
		done = append(done, applied{buf: buf, changes: changes})
		if t.hasEditor && buf.Path() == t.editorPath {
			editorChanges = changes
		}
	}

	if editorChanges == nil {
		return nil, nil
	}
	sel := t.selection.MapThrough(editorChanges)
	return &sel, nil
}

// base returns the revision path is checked against. Documents loaded after
// Open, e.g. while resolving, are checked against their load revision.
func (t *Transaction) base(path string) (buffer.RevisionID, error) {
	if rev, ok := t.baseline[path]; ok {
		return rev, nil
	}
	if rev, ok := t.docs.LoadedRevision(path); ok {
		return rev, nil
	}
	return 0, fmt.Errorf("load documents: %s is not open", path)
}

func (t *Transaction) conflict(path string, base buffer.RevisionID) *ConflictError {
	return &ConflictError{
		Path:    path,
		Changes: len(t.docs.ChangesSince(path, base)),
	}
}
