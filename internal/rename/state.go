package rename

import "sync/atomic"

// State is the rename state of one editor, read by the host to gate
// commands and key bindings. Only this package changes it.
type State struct {
	visible atomic.Bool
	busy    atomic.Bool
}

// NewState creates a hidden, idle state.
func NewState() *State {
	return &State{}
}

// Visible returns true while the rename input captures input.
func (s *State) Visible() bool {
	return s.visible.Load()
}

// Busy returns true while a rename run is pending.
func (s *State) Busy() bool {
	return s.busy.Load()
}

func (s *State) setVisible(v bool) {
	s.visible.Store(v)
}

func (s *State) setBusy(v bool) {
	s.busy.Store(v)
}

// tryBusy marks the state busy unless it already is.
func (s *State) tryBusy() bool {
	return s.busy.CompareAndSwap(false, true)
}
