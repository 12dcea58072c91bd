// Package cursor provides selections over a buffer and their transformation
// through edits.
//
// A Selection has an anchor (where it started) and a head (where typing
// occurs). When anchor equals head the selection is a plain cursor.
//
// After a batch of edits is applied, selections are mapped through the
// resulting changes with MapThrough so they keep pointing at the same text.
package cursor
