package bulkedit

import (
	"errors"
	"fmt"
)

// Transaction errors.
var (
	// ErrFinished indicates Add or Finish on a finished transaction.
	ErrFinished = errors.New("transaction already finished")

	// ErrConflict is matched by every *ConflictError.
	ErrConflict = errors.New("conflicting document change")
)

// ConflictError reports a document modified after the transaction opened.
type ConflictError struct {
	// Path is the document that changed.
	Path string

	// Changes is the number of changes recorded since the baseline.
	Changes int
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s changed since the edit started (%d changes)", e.Path, e.Changes)
}

// Is reports whether target is ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ApplyError reports a document that rejected its edits.
type ApplyError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply edits to %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ApplyError) Unwrap() error {
	return e.Err
}
