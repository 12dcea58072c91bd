package workspace

import (
	"sync"
	"time"

	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/engine/tracking"
)

// Document is an open file.
type Document struct {
	// Path is the absolute path to the file.
	Path string

	// LanguageID is the detected language identifier (e.g. "go").
	LanguageID string

	// Buffer holds the current content.
	Buffer *buffer.Buffer

	// Tracker records every change made to Buffer.
	Tracker *tracking.Tracker

	mu          sync.RWMutex
	original    string
	loadedRev   buffer.RevisionID
	openedAt    time.Time
	diskModTime time.Time
}

func newDocument(path, lang, text string, buf *buffer.Buffer, tracker *tracking.Tracker, modTime time.Time) *Document {
	tracker.Attach(buf)
	return &Document{
		Path:        path,
		LanguageID:  lang,
		Buffer:      buf,
		Tracker:     tracker,
		original:    text,
		loadedRev:   buf.Revision(),
		openedAt:    time.Now(),
		diskModTime: modTime,
	}
}

// Original returns the content as of open or the last save.
func (d *Document) Original() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.original
}

// LoadedRevision returns the buffer revision when the document was opened.
func (d *Document) LoadedRevision() buffer.RevisionID {
	return d.loadedRev
}

// IsModified returns true if the buffer differs from the saved content.
func (d *Document) IsModified() bool {
	d.mu.RLock()
	original := d.original
	d.mu.RUnlock()
	return d.Buffer.Text() != original
}

// DiskModTime returns the file modification time last seen on disk.
func (d *Document) DiskModTime() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.diskModTime
}

func (d *Document) markSaved(text string, modTime time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.original = text
	d.diskModTime = modTime
}
