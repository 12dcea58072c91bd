// Package buffer provides the line-indexed text buffer that backs every open
// document.
//
// A Buffer owns the text of one document together with its path, language id,
// read-only flag and a monotonically increasing revision. Every mutation bumps
// the revision and is reported to registered observers as a list of Changes,
// which is what the tracking package and the bulk edit conflict check build on.
//
// Position Types:
//
//   - Point: line and column, both 0-indexed, column measured in bytes
//   - Range: half-open [Start, End) pair of Points
//   - Word: a token found by the buffer's word pattern
//
// Basic usage:
//
//	buf := buffer.New("func foo() {}\n", buffer.WithPath("/src/a.go"), buffer.WithLanguage("go"))
//
//	w, ok := buf.WordAt(buffer.Point{Line: 0, Column: 6}) // "foo", columns 5..8
//
//	changes, err := buf.Apply([]buffer.Edit{
//	    buffer.NewEdit(buffer.Range{Start: w.Start(), End: w.End()}, "bar"),
//	})
//
// Thread Safety:
//
// All Buffer methods are safe for concurrent use. Observers are invoked after
// the write lock has been released.
package buffer
