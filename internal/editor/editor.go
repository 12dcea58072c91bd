// Package editor holds the state of one editor view: its document, primary
// selection and focus.
package editor

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/engine/cursor"
)

// FocusHandler is called whenever the editor gains or loses focus.
type FocusHandler func(focused bool)

// Editor is a view onto a buffer.
// All methods are safe for concurrent use.
type Editor struct {
	id  string
	buf *buffer.Buffer

	mu        sync.RWMutex
	selection cursor.Selection
	focused   bool
	onFocus   []FocusHandler
}

// New creates an editor for buf with the cursor at the start of the buffer.
func New(buf *buffer.Buffer) *Editor {
	return &Editor{
		id:      uuid.NewString(),
		buf:     buf,
		focused: true,
	}
}

// ID returns the editor's unique id.
func (e *Editor) ID() string {
	return e.id
}

// Buffer returns the edited buffer.
func (e *Editor) Buffer() *buffer.Buffer {
	return e.buf
}

// Path returns the path of the edited buffer.
func (e *Editor) Path() string {
	return e.buf.Path()
}

// Selection returns the primary selection.
func (e *Editor) Selection() cursor.Selection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selection
}

// SetSelection replaces the primary selection.
// Points outside the buffer return buffer.ErrOutOfRange.
func (e *Editor) SetSelection(sel cursor.Selection) error {
	if err := e.buf.ValidatePoint(sel.Anchor); err != nil {
		return err
	}
	if err := e.buf.ValidatePoint(sel.Head); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = sel
	return nil
}

// SetCursor collapses the selection to p.
func (e *Editor) SetCursor(p buffer.Point) error {
	return e.SetSelection(cursor.NewCursorSelection(p))
}

// IsWritable returns true if the buffer accepts edits.
func (e *Editor) IsWritable() bool {
	return !e.buf.IsReadOnly()
}

// LanguageID returns the language of the edited buffer.
func (e *Editor) LanguageID() string {
	return e.buf.LanguageID()
}

// HasFocus returns true if the editor receives input.
func (e *Editor) HasFocus() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.focused
}

// Focus gives input focus to the editor.
func (e *Editor) Focus() {
	e.setFocus(true)
}

// Blur removes input focus from the editor, e.g. while a prompt is open.
func (e *Editor) Blur() {
	e.setFocus(false)
}

// OnFocusChange registers a focus handler.
func (e *Editor) OnFocusChange(fn FocusHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFocus = append(e.onFocus, fn)
}

func (e *Editor) setFocus(focused bool) {
	e.mu.Lock()
	if e.focused == focused {
		e.mu.Unlock()
		return
	}
	e.focused = focused
	handlers := append([]FocusHandler(nil), e.onFocus...)
	e.mu.Unlock()

	for _, fn := range handlers {
		fn(focused)
	}
}
