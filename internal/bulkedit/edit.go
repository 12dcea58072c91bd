package bulkedit

import "github.com/dshills/renamekit/internal/engine/buffer"

// DocumentEdit is a set of edits to one document.
// Ranges refer to the document as it was when the edits were computed.
type DocumentEdit struct {
	Path  string
	Edits []buffer.Edit
}

// WorkspaceEdit is a set of edits across documents.
type WorkspaceEdit struct {
	Documents []DocumentEdit
}

// IsEmpty returns true if the workspace edit changes nothing.
func (w WorkspaceEdit) IsEmpty() bool {
	for _, d := range w.Documents {
		if len(d.Edits) > 0 {
			return false
		}
	}
	return true
}

// EditCount returns the total number of edits.
func (w WorkspaceEdit) EditCount() int {
	n := 0
	for _, d := range w.Documents {
		n += len(d.Edits)
	}
	return n
}

// Paths returns the touched paths in order of first appearance.
func (w WorkspaceEdit) Paths() []string {
	seen := make(map[string]bool, len(w.Documents))
	var paths []string
	for _, d := range w.Documents {
		if len(d.Edits) == 0 || seen[d.Path] {
			continue
		}
		seen[d.Path] = true
		paths = append(paths, d.Path)
	}
	return paths
}

// merged returns the edits grouped by path, in order of first appearance.
func (w WorkspaceEdit) merged() []DocumentEdit {
	index := make(map[string]int)
	var out []DocumentEdit
	for _, d := range w.Documents {
		if len(d.Edits) == 0 {
			continue
		}
		i, ok := index[d.Path]
		if !ok {
			i = len(out)
			index[d.Path] = i
			out = append(out, DocumentEdit{Path: d.Path})
		}
		out[i].Edits = append(out[i].Edits, d.Edits...)
	}
	return out
}
