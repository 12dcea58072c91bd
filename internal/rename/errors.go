package rename

import (
	"errors"
	"fmt"
)

// FailureMessage is shown when a rename fails.
const FailureMessage = "Rename failed to apply edits"

// Rename errors.
var (
	// ErrSessionActive indicates Show was called while the input is open.
	ErrSessionActive = errors.New("rename input already active")

	// ErrNoResolver indicates no resolver is registered for a language.
	ErrNoResolver = errors.New("no rename provider")
)

// Error is a failed rename.
type Error struct {
	// Op is the failed step: "show", "resolve", "add" or "finish".
	Op string

	// Word is the word being renamed.
	Word string

	// NewName is the accepted name, if any.
	NewName string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.NewName == "" {
		return fmt.Sprintf("rename %q: %s: %v", e.Word, e.Op, e.Err)
	}
	return fmt.Sprintf("rename %q to %q: %s: %v", e.Word, e.NewName, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
