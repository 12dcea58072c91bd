package buffer

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Buffer errors.
var (
	// ErrReadOnly indicates a write to a read-only buffer.
	ErrReadOnly = errors.New("buffer is read-only")

	// ErrOutOfRange indicates a point outside the buffer.
	ErrOutOfRange = errors.New("position out of range")

	// ErrInvalidRange indicates a range whose end precedes its start.
	ErrInvalidRange = errors.New("invalid range")

	// ErrOverlappingEdits indicates two edits in one batch touch the same text.
	ErrOverlappingEdits = errors.New("overlapping edits")

	// ErrRevisionChanged indicates the buffer moved past the expected revision.
	ErrRevisionChanged = errors.New("buffer revision changed")
)

// ChangeObserver is notified after every mutation with the new revision and
// the changes that produced it.
type ChangeObserver func(rev RevisionID, changes []Change)

// Buffer is a thread-safe, line-indexed text buffer.
type Buffer struct {
	mu sync.RWMutex

	path        string
	languageID  string
	readOnly    bool
	lines       []string
	revision    RevisionID
	wordPattern *regexp.Regexp

	observers []ChangeObserver
}

// New creates a buffer holding text.
func New(text string, opts ...Option) *Buffer {
	b := &Buffer{
		lines:       splitLines(text),
		revision:    1,
		wordPattern: defaultWordRegexp,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Path returns the file path of the buffer, if any.
func (b *Buffer) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.path
}

// LanguageID returns the buffer's language id.
func (b *Buffer) LanguageID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.languageID
}

// IsReadOnly returns true if the buffer rejects edits.
func (b *Buffer) IsReadOnly() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.readOnly
}

// SetReadOnly changes the read-only flag.
func (b *Buffer) SetReadOnly(readOnly bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.readOnly = readOnly
}

// Revision returns the current revision.
func (b *Buffer) Revision() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// Text returns the full content.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return strings.Join(b.lines, "\n")
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.lines)
}

// LineText returns the text of a line without its newline.
// Returns an empty string for lines out of range.
func (b *Buffer) LineText(line int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if line < 0 || line >= len(b.lines) {
		return ""
	}
	return b.lines[line]
}

// TextRange returns the text covered by r.
func (b *Buffer) TextRange(r Range) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start, end, err := b.offsetsLocked(r)
	if err != nil {
		return "", err
	}
	return strings.Join(b.lines, "\n")[start:end], nil
}

// ValidatePoint returns ErrOutOfRange if p is not inside the buffer.
func (b *Buffer) ValidatePoint(p Point) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.validatePointLocked(p)
}

// Observe registers an observer for future changes.
func (b *Buffer) Observe(fn ChangeObserver) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, fn)
}

// Apply applies a batch of edits atomically.
// Ranges refer to the text before the batch. Edits are sorted by position;
// overlapping edits are rejected and nothing is applied. Returns the changes
// in document order.
func (b *Buffer) Apply(edits []Edit) ([]Change, error) {
	b.mu.Lock()
	return b.applyAndNotify(edits)
}

// ApplyAt is Apply, but only if the buffer is still at revision rev.
// The check and the edit happen under one lock.
func (b *Buffer) ApplyAt(rev RevisionID, edits []Edit) ([]Change, error) {
	b.mu.Lock()
	if b.revision != rev {
		current := b.revision
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: at %d, want %d", ErrRevisionChanged, current, rev)
	}
	return b.applyAndNotify(edits)
}

// applyAndNotify applies edits and notifies observers. It must be called
// with the write lock held and releases it.
func (b *Buffer) applyAndNotify(edits []Edit) ([]Change, error) {
	if b.readOnly {
		b.mu.Unlock()
		return nil, ErrReadOnly
	}

	changes, err := b.applyLocked(edits)
	if err != nil || len(changes) == 0 {
		b.mu.Unlock()
		return changes, err
	}

	b.revision++
	rev := b.revision
	observers := append([]ChangeObserver(nil), b.observers...)
	b.mu.Unlock()

	for _, fn := range observers {
		fn(rev, changes)
	}
	return changes, nil
}

// Revert undoes changes previously returned by Apply.
// It is only valid while no other edit has been applied in between.
func (b *Buffer) Revert(changes []Change) error {
	if len(changes) == 0 {
		return nil
	}
	inverse := make([]Edit, len(changes))
	for i, c := range changes {
		inverse[i] = c.Invert()
	}

	b.mu.Lock()
	readOnly := b.readOnly
	b.readOnly = false
	undo, err := b.applyLocked(inverse)
	b.readOnly = readOnly
	if err != nil {
		b.mu.Unlock()
		return fmt.Errorf("revert: %w", err)
	}

	b.revision++
	rev := b.revision
	observers := append([]ChangeObserver(nil), b.observers...)
	b.mu.Unlock()

	for _, fn := range observers {
		fn(rev, undo)
	}
	return nil
}

// Reload replaces the whole content, e.g. after the file changed on disk.
// Reload ignores the read-only flag.
func (b *Buffer) Reload(text string) {
	b.mu.Lock()

	old := strings.Join(b.lines, "\n")
	if old == text {
		b.mu.Unlock()
		return
	}

	lastLine := len(b.lines) - 1
	oldRange := Range{End: Point{Line: lastLine, Column: len(b.lines[lastLine])}}
	b.lines = splitLines(text)
	lastLine = len(b.lines) - 1
	newRange := Range{End: Point{Line: lastLine, Column: len(b.lines[lastLine])}}

	b.revision++
	rev := b.revision
	changes := []Change{{
		Type:     changeType(old, text),
		Range:    oldRange,
		NewRange: newRange,
		OldText:  old,
		NewText:  text,
	}}
	observers := append([]ChangeObserver(nil), b.observers...)
	b.mu.Unlock()

	for _, fn := range observers {
		fn(rev, changes)
	}
}

// applyLocked validates and applies edits. Must hold the write lock.
func (b *Buffer) applyLocked(edits []Edit) ([]Change, error) {
	if len(edits) == 0 {
		return nil, nil
	}

	type span struct {
		start, end int
		edit       Edit
	}

	spans := make([]span, 0, len(edits))
	for _, e := range edits {
		if e.IsNoOp() {
			continue
		}
		start, end, err := b.offsetsLocked(e.Range)
		if err != nil {
			return nil, fmt.Errorf("edit %s: %w", e, err)
		}
		spans = append(spans, span{start: start, end: end, edit: e})
	}
	if len(spans) == 0 {
		return nil, nil
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].start < spans[j].start
	})
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return nil, fmt.Errorf("%w: %s and %s", ErrOverlappingEdits, spans[i-1].edit, spans[i].edit)
		}
	}

	text := strings.Join(b.lines, "\n")
	var sb strings.Builder
	sb.Grow(len(text))

	newStarts := make([]int, len(spans))
	last := 0
	for i, s := range spans {
		sb.WriteString(text[last:s.start])
		newStarts[i] = sb.Len()
		sb.WriteString(s.edit.NewText)
		last = s.end
	}
	sb.WriteString(text[last:])

	newText := sb.String()
	b.lines = splitLines(newText)

	changes := make([]Change, len(spans))
	for i, s := range spans {
		oldText := text[s.start:s.end]
		newStart := newStarts[i]
		newEnd := newStart + len(s.edit.NewText)
		changes[i] = Change{
			Type:     changeType(oldText, s.edit.NewText),
			Range:    s.edit.Range,
			NewRange: Range{Start: offsetToPoint(newText, newStart), End: offsetToPoint(newText, newEnd)},
			OldText:  oldText,
			NewText:  s.edit.NewText,
		}
	}
	return changes, nil
}

// offsetsLocked converts a range into byte offsets of the joined text.
func (b *Buffer) offsetsLocked(r Range) (int, int, error) {
	if !r.IsValid() {
		return 0, 0, fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}
	if err := b.validatePointLocked(r.Start); err != nil {
		return 0, 0, err
	}
	if err := b.validatePointLocked(r.End); err != nil {
		return 0, 0, err
	}
	return b.pointToOffsetLocked(r.Start), b.pointToOffsetLocked(r.End), nil
}

func (b *Buffer) validatePointLocked(p Point) error {
	if p.Line < 0 || p.Line >= len(b.lines) {
		return fmt.Errorf("%w: line %d of %d", ErrOutOfRange, p.Line, len(b.lines))
	}
	if p.Column < 0 || p.Column > len(b.lines[p.Line]) {
		return fmt.Errorf("%w: column %d of line %d", ErrOutOfRange, p.Column, p.Line)
	}
	return nil
}

func (b *Buffer) pointToOffsetLocked(p Point) int {
	off := 0
	for i := 0; i < p.Line; i++ {
		off += len(b.lines[i]) + 1
	}
	return off + p.Column
}

// offsetToPoint converts a byte offset in text to a Point.
func offsetToPoint(text string, offset int) Point {
	line := strings.Count(text[:offset], "\n")
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1
	return Point{Line: line, Column: offset - lineStart}
}

// splitLines splits text on '\n'. A trailing newline yields a final empty line.
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}
