package prompt

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/renamekit/internal/rename"
)

// ErrInvalidRange is returned by Open for a range outside the document.
var ErrInvalidRange = errors.New("invalid word range")

// LineSource gives access to document lines. *buffer.Buffer implements it.
type LineSource interface {
	LineText(line int) string
	LineCount() int
}

// Styles are the styles used to draw the input.
type Styles struct {
	Text      tcell.Style
	Field     tcell.Style
	Selection tcell.Style
}

// DefaultStyles returns an underlined field with a reversed selection.
func DefaultStyles() Styles {
	return Styles{
		Text:      tcell.StyleDefault,
		Field:     tcell.StyleDefault.Underline(true),
		Selection: tcell.StyleDefault.Reverse(true),
	}
}

// Option configures a Prompt.
type Option func(*Prompt)

// WithStyles sets the drawing styles.
func WithStyles(s Styles) Option {
	return func(p *Prompt) {
		p.styles = s
	}
}

// WithTabWidth sets the tab stop width.
func WithTabWidth(n int) Option {
	return func(p *Prompt) {
		if n > 0 {
			p.tabWidth = n
		}
	}
}

// WithRow sets the screen row of the first document line.
func WithRow(row int) Option {
	return func(p *Prompt) {
		p.top = row
	}
}

// Prompt is an inline input field drawn over a word of the document.
// It implements rename.Widget.
type Prompt struct {
	screen   tcell.Screen
	lines    LineSource
	styles   Styles
	tabWidth int

	mu       sync.Mutex
	top      int // screen row of document line 0
	open     bool
	r        rename.WordRange
	value    string
	cursor   int // byte offset into value
	selStart int
	selEnd   int
}

// New creates a prompt drawing on screen over lines.
func New(screen tcell.Screen, lines LineSource, opts ...Option) *Prompt {
	p := &Prompt{
		screen:   screen,
		lines:    lines,
		styles:   DefaultStyles(),
		tabWidth: DefaultTabWidth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetTop sets the screen row of document line 0. Rows scroll the document
// when negative.
func (p *Prompt) SetTop(row int) {
	p.mu.Lock()
	p.top = row
	p.mu.Unlock()
}

// Open implements rename.Widget.
func (p *Prompt) Open(r rename.WordRange, text string, selStart, selEnd int) error {
	line := r.StartLine - 1
	if line < 0 || line >= p.lines.LineCount() || r.StartColumn < 1 || r.EndColumn < r.StartColumn ||
		r.EndColumn-1 > len(p.lines.LineText(line)) {
		return fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}
	if selStart < 0 || selEnd < selStart || selEnd > len(text) {
		return fmt.Errorf("%w: selection [%d,%d) of %q", ErrInvalidRange, selStart, selEnd, text)
	}

	p.mu.Lock()
	p.open = true
	p.r = r
	p.value = text
	p.selStart, p.selEnd = selStart, selEnd
	p.cursor = selEnd
	p.drawLocked()
	p.mu.Unlock()

	p.screen.Show()
	return nil
}

// Value implements rename.Widget.
func (p *Prompt) Value() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// Close implements rename.Widget. The cursor line is redrawn without the
// field.
func (p *Prompt) Close() {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return
	}
	p.open = false
	p.drawLocked()
	p.mu.Unlock()

	p.screen.HideCursor()
	p.screen.Show()
}

// IsOpen returns true while the field is shown.
func (p *Prompt) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Cursor returns the cursor offset into the value and the highlighted
// range.
func (p *Prompt) Cursor() (cursor, selStart, selEnd int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor, p.selStart, p.selEnd
}

// HandleKey applies an editing key to the field and returns true if it
// was consumed. Enter and Esc are left to the key map.
func (p *Prompt) HandleKey(ev *tcell.EventKey) bool {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return false
	}

	handled := true
	switch ev.Key() {
	case tcell.KeyRune:
		if ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) != 0 {
			handled = false
			break
		}
		p.insert(string(ev.Rune()))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if !p.deleteSelection() && p.cursor > 0 {
			_, n := utf8.DecodeLastRuneInString(p.value[:p.cursor])
			p.value = p.value[:p.cursor-n] + p.value[p.cursor:]
			p.cursor -= n
		}
	case tcell.KeyDelete:
		if !p.deleteSelection() && p.cursor < len(p.value) {
			_, n := utf8.DecodeRuneInString(p.value[p.cursor:])
			p.value = p.value[:p.cursor] + p.value[p.cursor+n:]
		}
	case tcell.KeyLeft:
		if p.hasSelection() {
			p.cursor = p.selStart
		} else if p.cursor > 0 {
			_, n := utf8.DecodeLastRuneInString(p.value[:p.cursor])
			p.cursor -= n
		}
		p.clearSelection()
	case tcell.KeyRight:
		if p.hasSelection() {
			p.cursor = p.selEnd
		} else if p.cursor < len(p.value) {
			_, n := utf8.DecodeRuneInString(p.value[p.cursor:])
			p.cursor += n
		}
		p.clearSelection()
	case tcell.KeyHome:
		p.cursor = 0
		p.clearSelection()
	case tcell.KeyEnd:
		p.cursor = len(p.value)
		p.clearSelection()
	default:
		handled = false
	}

	if handled {
		p.drawLocked()
	}
	p.mu.Unlock()

	if handled {
		p.screen.Show()
	}
	return handled
}

func (p *Prompt) hasSelection() bool {
	return p.selStart < p.selEnd
}

func (p *Prompt) clearSelection() {
	p.selStart, p.selEnd = p.cursor, p.cursor
}

// insert replaces the selection, or inserts at the cursor, with s.
func (p *Prompt) insert(s string) {
	p.deleteSelection()
	p.value = p.value[:p.cursor] + s + p.value[p.cursor:]
	p.cursor += len(s)
	p.clearSelection()
}

// deleteSelection removes the highlighted text and returns true if there
// was any.
func (p *Prompt) deleteSelection() bool {
	if !p.hasSelection() {
		return false
	}
	p.value = p.value[:p.selStart] + p.value[p.selEnd:]
	p.cursor = p.selStart
	p.clearSelection()
	return true
}

// Draw redraws the cursor line.
func (p *Prompt) Draw() {
	p.mu.Lock()
	p.drawLocked()
	p.mu.Unlock()
}

func (p *Prompt) drawLocked() {
	if p.r.StartLine < 1 {
		return
	}
	line := p.r.StartLine - 1
	row := p.top + line
	width, height := p.screen.Size()
	if row < 0 || row >= height || line >= p.lines.LineCount() {
		return
	}

	text := p.lines.LineText(line)
	start := min(p.r.StartColumn-1, len(text))
	end := min(p.r.EndColumn-1, len(text))

	w := &textWriter{screen: p.screen, row: row, width: width, tabWidth: p.tabWidth}
	if !p.open {
		w.write(text, p.styles.Text)
		w.clear(p.styles.Text)
		return
	}

	w.write(text[:start], p.styles.Text)
	fieldX := w.x
	w.write(p.value[:p.selStart], p.styles.Field)
	w.write(p.value[p.selStart:p.selEnd], p.styles.Selection)
	w.write(p.value[p.selEnd:], p.styles.Field)
	w.write(text[end:], p.styles.Text)
	w.clear(p.styles.Text)

	p.screen.ShowCursor(fieldX+displayWidth(p.value[:p.cursor], fieldX, p.tabWidth), row)
}
