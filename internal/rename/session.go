package rename

import (
	"context"
	"fmt"
	"sync"
)

// Widget is the inline input field of a session.
type Widget interface {
	// Open shows the field over r, pre-filled with text and with
	// [selStart, selEnd) highlighted.
	Open(r WordRange, text string, selStart, selEnd int) error

	// Value returns the current field text.
	Value() string

	// Close hides the field.
	Close()
}

// Session runs the rename input of one editor.
// Accept, Cancel and Blur may be called from any goroutine.
type Session struct {
	widget Widget
	state  *State

	mu     sync.Mutex
	active bool
	done   chan Outcome
}

// NewSession creates a session showing widget and reporting its
// visibility through state.
func NewSession(widget Widget, state *State) *Session {
	return &Session{widget: widget, state: state}
}

// Show opens the input and blocks until it is accepted or cancelled.
//
// If ctx is cancelled first, the input is closed and Show returns a
// cancelled outcome with ctx.Err(). Show fails with ErrSessionActive while
// another Show is pending.
func (s *Session) Show(ctx context.Context, r WordRange, text string, selStart, selEnd int) (Outcome, error) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return Cancelled(), ErrSessionActive
	}
	// Visible before the field is drawn
	s.state.setVisible(true)
	if err := s.widget.Open(r, text, selStart, selEnd); err != nil {
		s.state.setVisible(false)
		s.mu.Unlock()
		return Cancelled(), fmt.Errorf("open input: %w", err)
	}
	done := make(chan Outcome, 1)
	s.done = done
	s.active = true
	s.mu.Unlock()

	select {
	case o := <-done:
		return o, nil
	case <-ctx.Done():
		if !s.resolve(Cancelled()) {
			// Accepted or cancelled concurrently; that outcome wins
			return <-done, nil
		}
		<-done
		return Cancelled(), ctx.Err()
	}
}

// Accept resolves the pending Show with the field text.
// Returns false if no Show is pending.
func (s *Session) Accept() bool {
	return s.resolve(Outcome{Kind: OutcomeAccepted})
}

// Cancel resolves the pending Show as cancelled.
// Returns false if no Show is pending.
func (s *Session) Cancel() bool {
	return s.resolve(Cancelled())
}

// Blur reports that the input lost focus. It cancels like Cancel.
func (s *Session) Blur() bool {
	return s.Cancel()
}

// Active returns true while a Show is pending.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// resolve ends the pending Show. The state is hidden and the widget closed
// before the outcome is delivered.
func (s *Session) resolve(o Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return false
	}
	if o.IsAccepted() {
		o.NewName = s.widget.Value()
	}
	s.active = false
	s.state.setVisible(false)
	s.widget.Close()
	s.done <- o
	return true
}
