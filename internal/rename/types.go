package rename

import (
	"fmt"

	"github.com/dshills/renamekit/internal/bulkedit"
	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/engine/cursor"
)

// Word is the word under the cursor.
// Columns are 1-based byte columns on the cursor line; EndColumn is exclusive.
type Word struct {
	Text        string
	StartColumn int
	EndColumn   int
}

// WordRange is the 1-based range of a word. StartLine always equals EndLine.
type WordRange struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// String returns the range as "line:start-end".
func (r WordRange) String() string {
	return fmt.Sprintf("%d:%d-%d", r.StartLine, r.StartColumn, r.EndColumn)
}

// SelectionRange is the highlighted part of a word, as byte offsets into
// Word.Text: 0 <= Start <= End <= len(Word.Text).
type SelectionRange struct {
	Start int
	End   int
}

// WordSelection is the result of ResolveWord.
type WordSelection struct {
	Word      Word
	Range     WordRange
	Selection SelectionRange

	// Position is the 0-based start of the triggering selection. It is the
	// position passed to the resolver.
	Position buffer.Point
}

// OutcomeKind distinguishes the outcomes of an input session.
type OutcomeKind uint8

const (
	// OutcomeCancelled means the input was dismissed.
	OutcomeCancelled OutcomeKind = iota
	// OutcomeAccepted means a new name was entered.
	OutcomeAccepted
)

// Outcome is how an input session ended.
type Outcome struct {
	Kind    OutcomeKind
	NewName string
}

// Accepted returns an accepted outcome.
func Accepted(newName string) Outcome {
	return Outcome{Kind: OutcomeAccepted, NewName: newName}
}

// Cancelled returns a cancelled outcome.
func Cancelled() Outcome {
	return Outcome{Kind: OutcomeCancelled}
}

// IsAccepted returns true if a name was accepted.
func (o Outcome) IsAccepted() bool {
	return o.Kind == OutcomeAccepted
}

// Resolution is a resolver's answer: either edits or a rejection reason.
type Resolution struct {
	edits    bulkedit.WorkspaceEdit
	reason   string
	rejected bool
}

// Edits returns a resolution carrying edits.
func Edits(e bulkedit.WorkspaceEdit) Resolution {
	return Resolution{edits: e}
}

// Rejected returns a resolution declining the rename with a reason shown
// to the user.
func Rejected(reason string) Resolution {
	return Resolution{reason: reason, rejected: true}
}

// IsRejected returns true for a rejection.
func (r Resolution) IsRejected() bool {
	return r.rejected
}

// Reason returns the rejection reason.
func (r Resolution) Reason() string {
	return r.reason
}

// WorkspaceEdit returns the edits.
func (r Resolution) WorkspaceEdit() bulkedit.WorkspaceEdit {
	return r.edits
}

// Status is how a rename run ended.
type Status uint8

const (
	// StatusNoWord means there was no word under the cursor.
	StatusNoWord Status = iota
	// StatusCancelled means the input was dismissed.
	StatusCancelled
	// StatusRejected means the resolver declined the rename.
	StatusRejected
	// StatusCommitted means the edits were applied.
	StatusCommitted
	// StatusFailed means the rename failed.
	StatusFailed
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusNoWord:
		return "no-word"
	case StatusCancelled:
		return "cancelled"
	case StatusRejected:
		return "rejected"
	case StatusCommitted:
		return "committed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes a finished run.
type Result struct {
	Status Status

	// Word is the renamed word. Empty for StatusNoWord.
	Word Word

	// NewName is the accepted name, if any.
	NewName string

	// Reason is the rejection reason for StatusRejected.
	Reason string

	// Selection is the editor selection after a commit, if the commit
	// produced one.
	Selection *cursor.Selection

	// Err is the failure for StatusFailed.
	Err error
}
