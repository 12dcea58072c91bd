package lsp

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/renamekit/internal/bulkedit"
	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/rename"
)

// NoResultMessage is the rejection reason when the server returns no edits.
const NoResultMessage = "No result."

// DocumentSource loads the buffers of documents named in server edits.
// *workspace.Workspace implements it.
type DocumentSource interface {
	Buffers(ctx context.Context, paths []string) ([]*buffer.Buffer, error)
}

// ModifiedSource lists documents with unsaved changes.
// *workspace.Workspace implements it.
type ModifiedSource interface {
	Modified() []string
}

// Renamer requests rename edits. *Client implements it.
type Renamer interface {
	Rename(ctx context.Context, buf *buffer.Buffer, pos buffer.Point, newName string) (*WorkspaceEdit, error)
}

// Syncer sends a buffer's content to the server. *Client implements it.
type Syncer interface {
	Sync(ctx context.Context, buf *buffer.Buffer) error
}

// Resolver resolves renames with a language server.
type Resolver struct {
	client Renamer
	docs   DocumentSource

	mu     sync.Mutex
	synced map[string]struct{}
}

// NewResolver creates a resolver. Edits to documents other than the
// renamed one are converted against buffers loaded from docs.
//
// If client is a Syncer and docs a ModifiedSource, every document with
// unsaved changes is sent to the server before a rename, so its edits are
// computed against what the buffers hold rather than what is on disk.
func NewResolver(client Renamer, docs DocumentSource) *Resolver {
	return &Resolver{client: client, docs: docs, synced: make(map[string]struct{})}
}

// Resolve implements rename.Resolver.
//
// A null result is rejected with NoResultMessage and a RequestFailed error
// with the server's message; any other error fails the rename.
func (r *Resolver) Resolve(ctx context.Context, buf *buffer.Buffer, pos buffer.Point, newName string) (rename.Resolution, error) {
	if err := r.syncOthers(ctx, buf); err != nil {
		return rename.Resolution{}, err
	}

	edit, err := r.client.Rename(ctx, buf, pos, newName)
	if err != nil {
		if rpcErr, ok := requestFailed(err); ok {
			return rename.Rejected(rpcErr.Message), nil
		}
		return rename.Resolution{}, err
	}
	if edit == nil {
		return rename.Rejected(NoResultMessage), nil
	}

	we, err := r.convert(ctx, buf, edit)
	if err != nil {
		return rename.Resolution{}, err
	}
	return rename.Edits(we), nil
}

// syncOthers sends modified documents other than buf to the server, along
// with every document sent before so the server never keeps a stale copy.
// The renamed buffer itself is synced by Rename.
func (r *Resolver) syncOthers(ctx context.Context, buf *buffer.Buffer) error {
	syncer, ok := r.client.(Syncer)
	if !ok || r.docs == nil {
		return nil
	}

	r.mu.Lock()
	seen := map[string]bool{buf.Path(): true}
	var paths []string
	for p := range r.synced {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	r.mu.Unlock()
	if ms, ok := r.docs.(ModifiedSource); ok {
		for _, p := range ms.Modified() {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	if len(paths) == 0 {
		return nil
	}
	sort.Strings(paths)

	bufs, err := r.docs.Buffers(ctx, paths)
	if err != nil {
		return fmt.Errorf("load modified documents: %w", err)
	}
	for _, b := range bufs {
		if err := syncer.Sync(ctx, b); err != nil {
			return fmt.Errorf("sync %s: %w", b.Path(), err)
		}
		r.mu.Lock()
		r.synced[b.Path()] = struct{}{}
		r.mu.Unlock()
	}
	return nil
}

// convert maps server edits to byte-column buffer edits.
func (r *Resolver) convert(ctx context.Context, buf *buffer.Buffer, edit *WorkspaceEdit) (bulkedit.WorkspaceEdit, error) {
	docEdits, err := edit.DocumentEdits()
	if err != nil {
		return bulkedit.WorkspaceEdit{}, err
	}

	paths := make([]string, len(docEdits))
	var others []string
	for i, de := range docEdits {
		paths[i] = URIToFilePath(de.TextDocument.URI)
		if paths[i] != buf.Path() {
			others = append(others, paths[i])
		}
	}

	lines := map[string]LineSource{buf.Path(): buf}
	if len(others) > 0 {
		if r.docs == nil {
			return bulkedit.WorkspaceEdit{}, fmt.Errorf("edits outside %s without a document source", buf.Path())
		}
		bufs, err := r.docs.Buffers(ctx, others)
		if err != nil {
			return bulkedit.WorkspaceEdit{}, fmt.Errorf("load edited documents: %w", err)
		}
		for i, b := range bufs {
			lines[others[i]] = b
		}
	}

	var out bulkedit.WorkspaceEdit
	for i, de := range docEdits {
		src := lines[paths[i]]
		edits := make([]buffer.Edit, len(de.Edits))
		for j, te := range de.Edits {
			edits[j] = buffer.NewEdit(ToRange(src, te.Range), te.NewText)
		}
		out.Documents = append(out.Documents, bulkedit.DocumentEdit{Path: paths[i], Edits: edits})
	}
	return out, nil
}
