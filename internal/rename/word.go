package rename

import (
	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/engine/cursor"
)

// ResolveWord finds the word at the start of sel.
//
// The highlighted part is the selection clamped to the word when sel is
// non-empty and on one line, and the whole word otherwise.
func ResolveWord(buf *buffer.Buffer, sel cursor.Selection) (WordSelection, bool) {
	start := sel.Start()
	w, ok := buf.WordAt(start)
	if !ok {
		return WordSelection{}, false
	}

	word := Word{
		Text:        w.Text,
		StartColumn: w.StartColumn + 1,
		EndColumn:   w.EndColumn + 1,
	}
	ws := WordSelection{
		Word: word,
		Range: WordRange{
			StartLine:   w.Line + 1,
			StartColumn: word.StartColumn,
			EndLine:     w.Line + 1,
			EndColumn:   word.EndColumn,
		},
		Selection: SelectionRange{Start: 0, End: len(word.Text)},
		Position:  start,
	}

	if !sel.IsEmpty() && sel.IsSingleLine() {
		selStart := sel.Start().Column + 1
		selEnd := sel.End().Column + 1
		ws.Selection = clampSelection(
			max(0, selStart-word.StartColumn),
			min(word.EndColumn, selEnd)-word.StartColumn,
			len(word.Text),
		)
	}
	return ws, true
}

func clampSelection(start, end, n int) SelectionRange {
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	return SelectionRange{Start: start, End: end}
}
