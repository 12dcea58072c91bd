package app

import (
	"context"

	"github.com/dshills/renamekit/internal/dispatcher"
	"github.com/dshills/renamekit/internal/dispatcher/handler"
	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/input"
	"github.com/dshills/renamekit/internal/input/keymap"
	"github.com/dshills/renamekit/internal/rename"
)

// Application command names.
const (
	CommandQuit        = "app.quit"
	CommandCursorLeft  = "cursor.left"
	CommandCursorRight = "cursor.right"
	CommandCursorUp    = "cursor.up"
	CommandCursorDown  = "cursor.down"
)

// runResult is the outcome of a rename started through the dispatcher.
type runResult struct {
	result rename.Result
	err    error
}

// frontEnd is the input side of a run: the rename controller with the
// commands and keys that drive it.
type frontEnd struct {
	state      *rename.State
	controller *rename.Controller
	dispatcher *dispatcher.Dispatcher
	keymap     *keymap.Keymap
	done       chan runResult

	// pending counts runs whose result has not been read from done.
	// Only the event loop touches it.
	pending int
}

// newFrontEnd builds a controller around widget and registers its
// commands and key bindings.
func (app *Application) newFrontEnd(widget rename.Widget, feedback rename.Feedback, progress rename.Progress) (*frontEnd, error) {
	state := rename.NewState()
	c := rename.NewController(rename.Config{
		Editor:        app.editor,
		Session:       rename.NewSession(widget, state),
		State:         state,
		Resolver:      app.registry,
		Edits:         rename.BulkEdits(app.edits),
		Feedback:      feedback,
		Progress:      progress,
		ProgressDelay: app.config.Rename.ProgressDelay.Std(),
		Events:        app.bus,
		Logger:        app.logger.WithComponent("rename"),
	})

	fe := &frontEnd{
		state:      state,
		controller: c,
		dispatcher: dispatcher.New(dispatcher.WithLogger(app.logger.WithComponent("dispatcher"))),
		keymap:     keymap.New("renamekit"),
		done:       make(chan runResult, 1),
	}

	err := c.RegisterCommands(fe.dispatcher, func(res rename.Result, err error) {
		fe.done <- runResult{result: res, err: err}
	})
	if err != nil {
		return nil, NewComponentError("dispatcher", "register rename commands", err)
	}

	keys := app.config.Keys
	bindings := c.Bindings(rename.KeyBindings{Rename: keys.Rename, Accept: keys.Accept, Cancel: keys.Cancel})
	if err := fe.keymap.AddAll(bindings...); err != nil {
		return nil, NewComponentError("keymap", "add rename bindings", err)
	}
	return fe, nil
}

// startRename dispatches the rename command. A disabled command fails
// with ErrRenameUnavailable.
func (fe *frontEnd) startRename(ctx context.Context, source input.ActionSource) error {
	res := fe.dispatcher.Dispatch(ctx, input.NewAction(rename.CommandRename, source))
	switch res.Status {
	case handler.StatusAsync:
		return nil
	case handler.StatusError:
		return res.Error
	default:
		if res.Message == "" {
			res.Message = res.Status.String()
		}
		return NewOperationError(rename.CommandRename, "", &unavailableError{reason: res.Message})
	}
}

type unavailableError struct {
	reason string
}

func (e *unavailableError) Error() string { return ErrRenameUnavailable.Error() + ": " + e.reason }

func (e *unavailableError) Unwrap() error { return ErrRenameUnavailable }

// registerEditorCommands adds quit and cursor movement, bound while the
// rename input is hidden.
func (app *Application) registerEditorCommands(fe *frontEnd, quit func()) error {
	hidden := func() bool { return !fe.state.Visible() }
	move := func(dl, dc int) handler.HandlerFunc {
		return func(context.Context, input.Action) handler.Result {
			if !app.moveCursor(dl, dc) {
				return handler.NoOp()
			}
			return handler.Success()
		}
	}

	commands := []struct {
		name string
		keys []string
		when dispatcher.Precondition
		fn   handler.HandlerFunc
	}{
		{CommandQuit, []string{"Ctrl+Q", "Ctrl+C"}, nil, func(context.Context, input.Action) handler.Result {
			quit()
			return handler.Success()
		}},
		{CommandCursorLeft, []string{"Left"}, hidden, move(0, -1)},
		{CommandCursorRight, []string{"Right"}, hidden, move(0, 1)},
		{CommandCursorUp, []string{"Up"}, hidden, move(-1, 0)},
		{CommandCursorDown, []string{"Down"}, hidden, move(1, 0)},
	}

	for _, cmd := range commands {
		if err := fe.dispatcher.RegisterFunc(cmd.name, cmd.when, cmd.fn); err != nil {
			return NewComponentError("dispatcher", "register "+cmd.name, err)
		}
		for _, k := range cmd.keys {
			b := keymap.Binding{Keys: k, Action: cmd.name, Category: "editor"}
			if cmd.when != nil {
				b.When = keymap.Predicate(cmd.when)
			}
			if err := fe.keymap.Add(b); err != nil {
				return NewComponentError("keymap", "add "+k, err)
			}
		}
	}
	return nil
}

// moveCursor moves the cursor by lines and bytes, clamped to the document.
// Horizontal moves step over whole UTF-8 sequences.
func (app *Application) moveCursor(dl, dc int) bool {
	buf := app.editor.Buffer()
	p := app.editor.Selection().Cursor()

	next := p
	if dl != 0 {
		next.Line = min(max(p.Line+dl, 0), buf.LineCount()-1)
		next.Column = min(p.Column, len(buf.LineText(next.Line)))
	}
	if dc != 0 {
		next.Column = stepColumn(buf.LineText(p.Line), p.Column, dc)
	}
	next.Column = alignColumn(buf.LineText(next.Line), next.Column)

	if next == p {
		return false
	}
	return app.editor.SetCursor(buffer.Point{Line: next.Line, Column: next.Column}) == nil
}

// stepColumn moves col one character in direction dir within line.
func stepColumn(line string, col, dir int) int {
	if dir < 0 {
		if col <= 0 {
			return 0
		}
		col--
		for col > 0 && isContinuation(line[col]) {
			col--
		}
		return col
	}
	if col >= len(line) {
		return len(line)
	}
	col++
	for col < len(line) && isContinuation(line[col]) {
		col++
	}
	return col
}

// alignColumn moves col back to the start of the character it falls in.
func alignColumn(line string, col int) int {
	for col > 0 && col < len(line) && isContinuation(line[col]) {
		col--
	}
	return col
}

func isContinuation(b byte) bool {
	return b&0xC0 == 0x80
}
