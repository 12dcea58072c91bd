package workspace

import "errors"

// Workspace errors.
var (
	// ErrNotOpen indicates the document is not open in the workspace.
	ErrNotOpen = errors.New("document not open")

	// ErrWatcherClosed indicates the watcher has been closed.
	ErrWatcherClosed = errors.New("watcher is closed")

	// ErrDirtyDocument indicates an external change to a document with
	// unsaved edits was not reloaded.
	ErrDirtyDocument = errors.New("document has unsaved changes")
)
