package prompt

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// DefaultTabWidth is the display width of a tab stop.
const DefaultTabWidth = 4

// textWriter draws text cell by cell along one row.
type textWriter struct {
	screen   tcell.Screen
	row      int
	x        int
	width    int
	tabWidth int
}

// write draws s with style and advances x. Text past the screen edge is
// dropped.
func (w *textWriter) write(s string, style tcell.Style) {
	state := -1
	for s != "" {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)

		if cluster == "\t" {
			n := w.tabWidth - w.x%w.tabWidth
			for range n {
				w.put(' ', nil, style, 1)
			}
			continue
		}

		runes := []rune(cluster)
		if width == 0 {
			width = 1
		}
		w.put(runes[0], runes[1:], style, width)
	}
}

func (w *textWriter) put(mainc rune, combc []rune, style tcell.Style, width int) {
	if w.x+width <= w.width {
		w.screen.SetContent(w.x, w.row, mainc, combc, style)
	}
	w.x += width
}

// clear blanks the rest of the row.
func (w *textWriter) clear(style tcell.Style) {
	for ; w.x < w.width; w.x++ {
		w.screen.SetContent(w.x, w.row, ' ', nil, style)
	}
}

// displayWidth returns the number of cells s takes when drawn from column x.
func displayWidth(s string, x, tabWidth int) int {
	start := x
	state := -1
	for s != "" {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		switch {
		case cluster == "\t":
			x += tabWidth - x%tabWidth
		case width == 0:
			x++
		default:
			x += width
		}
	}
	return x - start
}

// DrawLines draws document lines from first on screen rows [0, rows).
// Rows past the last line are blanked.
func DrawLines(screen tcell.Screen, lines LineSource, first, rows, tabWidth int, style tcell.Style) {
	width, _ := screen.Size()
	for row := range rows {
		w := &textWriter{screen: screen, row: row, width: width, tabWidth: tabWidth}
		if line := first + row; line >= 0 && line < lines.LineCount() {
			w.write(lines.LineText(line), style)
		}
		w.clear(style)
	}
}

// ColumnX returns the screen column of byte column col of text.
func ColumnX(text string, col, tabWidth int) int {
	return displayWidth(text[:min(max(col, 0), len(text))], 0, tabWidth)
}
