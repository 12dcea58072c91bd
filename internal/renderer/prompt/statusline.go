package prompt

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/renamekit/internal/rename"
)

// StatusLine shows messages and progress on the bottom row of the screen.
// It implements rename.Feedback and rename.Progress.
type StatusLine struct {
	screen tcell.Screen

	mu       sync.Mutex
	message  string
	severity rename.Severity
	progress []string // stack of active progress messages
}

// NewStatusLine creates a status line drawing on screen.
func NewStatusLine(screen tcell.Screen) *StatusLine {
	return &StatusLine{screen: screen}
}

// Show implements rename.Feedback.
func (s *StatusLine) Show(severity rename.Severity, message string) {
	s.mu.Lock()
	s.message = message
	s.severity = severity
	s.drawLocked()
	s.mu.Unlock()
	s.screen.Show()
}

// Clear removes the current message.
func (s *StatusLine) Clear() {
	s.Show(rename.SeverityInfo, "")
}

// Start implements rename.Progress. The progress message hides the
// current message until stop is called.
func (s *StatusLine) Start(message string) (stop func()) {
	s.mu.Lock()
	s.progress = append(s.progress, message)
	idx := len(s.progress) - 1
	s.drawLocked()
	s.mu.Unlock()
	s.screen.Show()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.progress[idx] = ""
			for len(s.progress) > 0 && s.progress[len(s.progress)-1] == "" {
				s.progress = s.progress[:len(s.progress)-1]
			}
			s.drawLocked()
			s.mu.Unlock()
			s.screen.Show()
		})
	}
}

// Text returns the text currently displayed.
func (s *StatusLine) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, _ := s.currentLocked()
	return text
}

// Draw redraws the status line.
func (s *StatusLine) Draw() {
	s.mu.Lock()
	s.drawLocked()
	s.mu.Unlock()
}

func (s *StatusLine) currentLocked() (string, tcell.Style) {
	for i := len(s.progress) - 1; i >= 0; i-- {
		if s.progress[i] != "" {
			return s.progress[i], tcell.StyleDefault.Italic(true)
		}
	}
	if s.severity == rename.SeverityError {
		return s.message, tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	}
	return s.message, tcell.StyleDefault
}

func (s *StatusLine) drawLocked() {
	width, height := s.screen.Size()
	if height == 0 {
		return
	}
	text, style := s.currentLocked()
	w := &textWriter{screen: s.screen, row: height - 1, width: width, tabWidth: DefaultTabWidth}
	w.write(text, style)
	w.clear(tcell.StyleDefault)
}
