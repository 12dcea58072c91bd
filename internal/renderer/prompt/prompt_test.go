package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/rename"
)

const mainSource = "package main\n\nfunc main() {\n\tfoo := 1\n\tprintln(foo)\n}\n"

var _ rename.Widget = (*Prompt)(nil)

// fooRange is the 1-based range of foo on "\tfoo := 1".
var fooRange = rename.WordRange{StartLine: 4, StartColumn: 2, EndLine: 4, EndColumn: 5}

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	s.SetSize(40, 10)
	t.Cleanup(s.Fini)
	return s
}

func rowText(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var sb strings.Builder
	for x := range w {
		r, _, _, _ := s.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
		if r == 0 {
			r = ' '
		}
		sb.WriteRune(r)
	}
	return strings.TrimRight(sb.String(), " ")
}

func styleAt(s tcell.Screen, x, y int) tcell.Style {
	_, _, style, _ := s.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	return style
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runes(p *Prompt, s string) {
	for _, r := range s {
		p.HandleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func newPrompt(t *testing.T) (*Prompt, tcell.SimulationScreen) {
	t.Helper()
	screen := newScreen(t)
	return New(screen, buffer.New(mainSource)), screen
}

func TestPrompt_Open(t *testing.T) {
	p, screen := newPrompt(t)

	if err := p.Open(fooRange, "foo", 0, 3); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !p.IsOpen() {
		t.Error("IsOpen() = false, want true")
	}
	if got := rowText(screen, 3); got != "    foo := 1" {
		t.Errorf("row 3 = %q, want %q", got, "    foo := 1")
	}
	if got := styleAt(screen, 4, 3); got != DefaultStyles().Selection {
		t.Errorf("style at field start = %v, want selection style", got)
	}
	if got := styleAt(screen, 8, 3); got != DefaultStyles().Text {
		t.Errorf("style after field = %v, want text style", got)
	}

	if x, y, _ := screen.GetCursor(); x != 7 || y != 3 {
		t.Errorf("GetCursor() = (%d, %d), want (7, 3)", x, y)
	}
}

func TestPrompt_OpenInvalid(t *testing.T) {
	tests := []struct {
		name             string
		r                rename.WordRange
		text             string
		selStart, selEnd int
	}{
		{name: "line zero", r: rename.WordRange{StartLine: 0, StartColumn: 1, EndLine: 0, EndColumn: 2}, text: "x", selEnd: 1},
		{name: "past last line", r: rename.WordRange{StartLine: 99, StartColumn: 1, EndLine: 99, EndColumn: 2}, text: "x", selEnd: 1},
		{name: "past line end", r: rename.WordRange{StartLine: 4, StartColumn: 2, EndLine: 4, EndColumn: 40}, text: "foo", selEnd: 3},
		{name: "selection past text", r: fooRange, text: "foo", selStart: 1, selEnd: 4},
		{name: "inverted selection", r: fooRange, text: "foo", selStart: 2, selEnd: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPrompt(t)
			err := p.Open(tt.r, tt.text, tt.selStart, tt.selEnd)
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("Open() error = %v, want %v", err, ErrInvalidRange)
			}
			if p.IsOpen() {
				t.Error("IsOpen() = true after failed Open")
			}
		})
	}
}

func TestPrompt_Editing(t *testing.T) {
	tests := []struct {
		name             string
		text             string
		selStart, selEnd int
		keys             func(p *Prompt)
		want             string
		wantCursor       int
	}{
		{
			name: "typing replaces selection",
			text: "foo", selStart: 0, selEnd: 3,
			keys:       func(p *Prompt) { runes(p, "bar") },
			want:       "bar",
			wantCursor: 3,
		},
		{
			name: "typing replaces partial selection",
			text: "fooBar", selStart: 3, selEnd: 6,
			keys:       func(p *Prompt) { runes(p, "Baz") },
			want:       "fooBaz",
			wantCursor: 6,
		},
		{
			name: "typing at cursor",
			text: "foo", selStart: 3, selEnd: 3,
			keys:       func(p *Prompt) { runes(p, "2") },
			want:       "foo2",
			wantCursor: 4,
		},
		{
			name: "backspace deletes selection",
			text: "fooBar", selStart: 0, selEnd: 3,
			keys:       func(p *Prompt) { p.HandleKey(key(tcell.KeyBackspace2)) },
			want:       "Bar",
			wantCursor: 0,
		},
		{
			name: "backspace before cursor",
			text: "foo", selStart: 3, selEnd: 3,
			keys:       func(p *Prompt) { p.HandleKey(key(tcell.KeyBackspace)) },
			want:       "fo",
			wantCursor: 2,
		},
		{
			name: "backspace multibyte",
			text: "hé", selStart: 3, selEnd: 3,
			keys:       func(p *Prompt) { p.HandleKey(key(tcell.KeyBackspace2)) },
			want:       "h",
			wantCursor: 1,
		},
		{
			name: "backspace at start",
			text: "foo", selStart: 0, selEnd: 0,
			keys:       func(p *Prompt) { p.HandleKey(key(tcell.KeyBackspace2)) },
			want:       "foo",
			wantCursor: 0,
		},
		{
			name: "home then delete",
			text: "foo", selStart: 0, selEnd: 3,
			keys: func(p *Prompt) {
				p.HandleKey(key(tcell.KeyHome))
				p.HandleKey(key(tcell.KeyDelete))
			},
			want:       "oo",
			wantCursor: 0,
		},
		{
			name: "delete at end",
			text: "foo", selStart: 3, selEnd: 3,
			keys:       func(p *Prompt) { p.HandleKey(key(tcell.KeyDelete)) },
			want:       "foo",
			wantCursor: 3,
		},
		{
			name: "left collapses selection to start",
			text: "foo", selStart: 1, selEnd: 3,
			keys: func(p *Prompt) {
				p.HandleKey(key(tcell.KeyLeft))
				runes(p, "x")
			},
			want:       "fxoo",
			wantCursor: 2,
		},
		{
			name: "right collapses selection to end",
			text: "foo", selStart: 0, selEnd: 1,
			keys: func(p *Prompt) {
				p.HandleKey(key(tcell.KeyRight))
				runes(p, "x")
			},
			want:       "fxoo",
			wantCursor: 2,
		},
		{
			name: "left and right move by rune",
			text: "aéb", selStart: 4, selEnd: 4,
			keys: func(p *Prompt) {
				p.HandleKey(key(tcell.KeyLeft))
				p.HandleKey(key(tcell.KeyLeft))
				p.HandleKey(key(tcell.KeyRight))
			},
			want:       "aéb",
			wantCursor: 3,
		},
		{
			name: "end then type",
			text: "foo", selStart: 0, selEnd: 0,
			keys: func(p *Prompt) {
				p.HandleKey(key(tcell.KeyEnd))
				runes(p, "_x")
			},
			want:       "foo_x",
			wantCursor: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPrompt(t)
			if err := p.Open(fooRange, tt.text, tt.selStart, tt.selEnd); err != nil {
				t.Fatalf("Open() error = %v", err)
			}

			tt.keys(p)

			if got := p.Value(); got != tt.want {
				t.Errorf("Value() = %q, want %q", got, tt.want)
			}
			if cursor, _, _ := p.Cursor(); cursor != tt.wantCursor {
				t.Errorf("Cursor() = %d, want %d", cursor, tt.wantCursor)
			}
		})
	}
}

func TestPrompt_Redraw(t *testing.T) {
	p, screen := newPrompt(t)
	if err := p.Open(fooRange, "foo", 0, 3); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	runes(p, "counter")
	if got := rowText(screen, 3); got != "    counter := 1" {
		t.Errorf("row 3 = %q, want %q", got, "    counter := 1")
	}
	if x, _, _ := screen.GetCursor(); x != 11 {
		t.Errorf("cursor x = %d, want 11", x)
	}

	p.HandleKey(key(tcell.KeyBackspace2))
	p.HandleKey(key(tcell.KeyBackspace2))
	p.HandleKey(key(tcell.KeyBackspace2))
	p.HandleKey(key(tcell.KeyBackspace2))
	if got := rowText(screen, 3); got != "    cou := 1" {
		t.Errorf("row 3 = %q, want %q", got, "    cou := 1")
	}
}

func TestPrompt_Close(t *testing.T) {
	p, screen := newPrompt(t)
	if err := p.Open(fooRange, "foo", 0, 3); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	runes(p, "renamed")

	p.Close()
	if p.IsOpen() {
		t.Error("IsOpen() = true after Close")
	}
	// The document is unchanged until the rename commits
	if got := rowText(screen, 3); got != "    foo := 1" {
		t.Errorf("row 3 = %q, want %q", got, "    foo := 1")
	}
	// Closing twice is a no-op
	p.Close()
}

func TestPrompt_UnhandledKeys(t *testing.T) {
	p, _ := newPrompt(t)

	if p.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)) {
		t.Error("HandleKey() = true while closed")
	}

	if err := p.Open(fooRange, "foo", 0, 3); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	for _, ev := range []*tcell.EventKey{
		key(tcell.KeyEnter),
		key(tcell.KeyEscape),
		key(tcell.KeyF2),
		tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModAlt),
	} {
		if p.HandleKey(ev) {
			t.Errorf("HandleKey(%s) = true, want false", KeyName(ev))
		}
	}
	if got := p.Value(); got != "foo" {
		t.Errorf("Value() = %q, want %q", got, "foo")
	}
}

func TestPrompt_Top(t *testing.T) {
	screen := newScreen(t)
	p := New(screen, buffer.New(mainSource), WithRow(2), WithTabWidth(2))

	if err := p.Open(fooRange, "foo", 0, 3); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := rowText(screen, 5); got != "  foo := 1" {
		t.Errorf("row 5 = %q, want %q", got, "  foo := 1")
	}

	// Scrolled out of view: nothing is drawn
	p.SetTop(-10)
	p.Draw()
	if got := rowText(screen, 5); got != "  foo := 1" {
		t.Errorf("row 5 changed to %q", got)
	}
}

func TestPrompt_Session(t *testing.T) {
	p, _ := newPrompt(t)
	state := rename.NewState()
	session := rename.NewSession(p, state)

	type result struct {
		outcome rename.Outcome
		err     error
	}
	done := make(chan result, 1)
	go func() {
		o, err := session.Show(context.Background(), fooRange, "foo", 0, 3)
		done <- result{o, err}
	}()

	for !session.Active() {
		time.Sleep(time.Millisecond)
	}
	runes(p, "bar")
	session.Accept()

	r := <-done
	if r.err != nil {
		t.Fatalf("Show() error = %v", r.err)
	}
	if !r.outcome.IsAccepted() || r.outcome.NewName != "bar" {
		t.Errorf("Show() = %+v, want accepted bar", r.outcome)
	}
	if p.IsOpen() {
		t.Error("prompt still open after Accept")
	}
	if state.Visible() {
		t.Error("Visible() = true after Accept")
	}
}
