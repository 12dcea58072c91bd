package keymap

import (
	"errors"
	"fmt"
	"strings"
)

// Binding errors.
var (
	// ErrEmptyKeys indicates a binding without a key.
	ErrEmptyKeys = errors.New("keymap: binding has no keys")

	// ErrEmptyAction indicates a binding without an action.
	ErrEmptyAction = errors.New("keymap: binding has no action")
)

// Predicate reports whether a binding is active.
type Predicate func() bool

// Binding maps a key to an action.
type Binding struct {
	// Keys is the key that triggers this binding, e.g. "F2" or "Shift+Esc".
	Keys string

	// Action is the command to execute.
	Action string

	// When must return true for this binding to match. Nil always matches.
	When Predicate

	// Description provides documentation for the binding.
	Description string

	// Priority determines precedence when multiple bindings match.
	// Higher priority wins. Default is 0.
	Priority int

	// Category groups bindings for display purposes.
	Category string
}

// NewBinding creates a new binding with the given keys and action.
func NewBinding(keys, action string) Binding {
	return Binding{Keys: keys, Action: action}
}

// WithWhen returns a copy of the binding with a predicate.
func (b Binding) WithWhen(when Predicate) Binding {
	b.When = when
	return b
}

// WithPriority returns a copy of the binding with a priority.
func (b Binding) WithPriority(p int) Binding {
	b.Priority = p
	return b
}

// Active returns true if the binding's predicate holds.
func (b Binding) Active() bool {
	return b.When == nil || b.When()
}

// Validate checks the binding.
func (b Binding) Validate() error {
	if strings.TrimSpace(b.Keys) == "" {
		return ErrEmptyKeys
	}
	if b.Action == "" {
		return fmt.Errorf("%w: %s", ErrEmptyAction, b.Keys)
	}
	return nil
}

var modifierOrder = []string{"Ctrl", "Alt", "Meta", "Shift"}

var modifierNames = map[string]string{
	"ctrl":    "Ctrl",
	"control": "Ctrl",
	"c":       "Ctrl",
	"alt":     "Alt",
	"a":       "Alt",
	"meta":    "Meta",
	"m":       "Meta",
	"shift":   "Shift",
	"s":       "Shift",
}

var keyNames = map[string]string{
	"esc":       "Esc",
	"escape":    "Esc",
	"enter":     "Enter",
	"return":    "Enter",
	"cr":        "Enter",
	"tab":       "Tab",
	"backspace": "Backspace",
	"bs":        "Backspace",
	"delete":    "Delete",
	"del":       "Delete",
	"space":     "Space",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"home":      "Home",
	"end":       "End",
	"pgup":      "PgUp",
	"pgdn":      "PgDn",
}

// NormalizeKey converts a key written in config ("shift+escape", "<C-r>",
// "f2") to the canonical tcell-style name ("Shift+Esc", "Ctrl+R", "F2").
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "<") && strings.HasSuffix(key, ">") && len(key) > 2 {
		key = strings.ReplaceAll(key[1:len(key)-1], "-", "+")
	}
	if key == "" {
		return ""
	}

	parts := strings.Split(key, "+")
	// A trailing "+" is the plus key itself
	if parts[len(parts)-1] == "" && len(parts) > 1 {
		parts = append(parts[:len(parts)-2], "+")
	}

	name := parts[len(parts)-1]
	mods := make(map[string]bool)
	for _, p := range parts[:len(parts)-1] {
		if m, ok := modifierNames[strings.ToLower(p)]; ok {
			mods[m] = true
		}
	}

	lower := strings.ToLower(name)
	switch {
	case keyNames[lower] != "":
		name = keyNames[lower]
	case len(lower) >= 2 && lower[0] == 'f' && isDigits(lower[1:]):
		name = "F" + lower[1:]
	case len(name) == 1 && mods["Ctrl"]:
		name = strings.ToUpper(name)
	}

	var sb strings.Builder
	for _, m := range modifierOrder {
		if mods[m] {
			sb.WriteString(m)
			sb.WriteByte('+')
		}
	}
	sb.WriteString(name)
	return sb.String()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
