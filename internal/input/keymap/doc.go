// Package keymap maps keys to actions.
//
// A Binding ties a key, written the way tcell names keys ("F2", "Enter",
// "Esc", "Shift+Esc", "Ctrl+R"), to an action name. A binding may carry a
// When predicate; it only matches while the predicate holds, which is how
// "rename.accept" is scoped to the visible rename input.
//
// When several bindings match a key, the highest Priority wins, then the
// most recently added.
package keymap
