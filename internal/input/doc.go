// Package input defines the actions produced by user input.
//
// Key events are translated to action names through a keymap.Keymap and
// handed to the dispatcher as Actions.
package input
