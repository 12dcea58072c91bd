// Package prompt draws the inline rename input and the status line on a
// tcell screen.
//
// Prompt implements rename.Widget: it replaces the word under the cursor
// with an editable field, pre-filled and partly highlighted. StatusLine
// implements rename.Feedback and rename.Progress on the bottom row.
package prompt
