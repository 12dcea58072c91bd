package rename

import (
	"context"

	"github.com/dshills/renamekit/internal/dispatcher"
	"github.com/dshills/renamekit/internal/dispatcher/handler"
	"github.com/dshills/renamekit/internal/input"
	"github.com/dshills/renamekit/internal/input/keymap"
)

// Command names.
const (
	CommandRename = "editor.rename"
	CommandAccept = "rename.accept"
	CommandCancel = "rename.cancel"
)

// KeyBindings holds the keys of the rename commands.
type KeyBindings struct {
	Rename []string
	Accept []string
	Cancel []string
}

// DefaultKeyBindings returns F2 to rename, Enter to accept and Esc or
// Shift+Esc to cancel.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Rename: []string{"F2"},
		Accept: []string{"Enter"},
		Cancel: []string{"Esc", "Shift+Esc"},
	}
}

// bindingPriority lifts the input bindings above editor bindings of the
// same keys while the input is visible.
const bindingPriority = 100

// Bindings returns the key bindings of the rename commands. Accept and
// cancel only match while the input is visible.
func (c *Controller) Bindings(keys KeyBindings) []keymap.Binding {
	var out []keymap.Binding
	for _, k := range keys.Rename {
		out = append(out, keymap.Binding{
			Keys:        k,
			Action:      CommandRename,
			When:        func() bool { return !c.state.Visible() },
			Description: "Rename symbol",
			Category:    "rename",
		})
	}
	for _, k := range keys.Accept {
		out = append(out, keymap.Binding{
			Keys:        k,
			Action:      CommandAccept,
			When:        c.state.Visible,
			Description: "Accept rename input",
			Priority:    bindingPriority,
			Category:    "rename",
		})
	}
	for _, k := range keys.Cancel {
		out = append(out, keymap.Binding{
			Keys:        k,
			Action:      CommandCancel,
			When:        c.state.Visible,
			Description: "Cancel rename input",
			Priority:    bindingPriority,
			Category:    "rename",
		})
	}
	return out
}

// DoneFunc receives the outcome of a rename started by the rename command.
type DoneFunc func(Result, error)

// RegisterCommands registers the rename commands with d.
//
// The rename command starts Run on its own goroutine with the dispatch
// context and returns an async result; done is called when the run ends.
func (c *Controller) RegisterCommands(d *dispatcher.Dispatcher, done DoneFunc) error {
	commands := []dispatcher.Command{
		{
			Name:        CommandRename,
			When:        c.CanRename,
			Description: "Rename the symbol under the cursor",
			Handler: handler.HandlerFunc(func(ctx context.Context, _ input.Action) handler.Result {
				// Mark busy before returning so a repeated key press is gated
				if !c.state.tryBusy() {
					return handler.NoOpWithMessage("rename already in progress")
				}
				go func() {
					res, err := c.Run(ctx)
					if done != nil {
						done(res, err)
					}
				}()
				return handler.Async()
			}),
		},
		{
			Name:        CommandAccept,
			When:        c.state.Visible,
			Description: "Accept the new name",
			Handler: handler.HandlerFunc(func(context.Context, input.Action) handler.Result {
				if !c.session.Accept() {
					return handler.NoOp()
				}
				return handler.Success()
			}),
		},
		{
			Name:        CommandCancel,
			When:        c.state.Visible,
			Description: "Cancel the rename",
			Handler: handler.HandlerFunc(func(context.Context, input.Action) handler.Result {
				if !c.session.Cancel() {
					return handler.NoOp()
				}
				return handler.Cancelled()
			}),
		},
	}

	for _, cmd := range commands {
		if err := d.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}
