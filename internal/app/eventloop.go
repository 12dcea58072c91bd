package app

import (
	"bytes"
	"context"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/renamekit/internal/dispatcher/handler"
	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/input"
	"github.com/dshills/renamekit/internal/rename"
	"github.com/dshills/renamekit/internal/renderer/prompt"
)

// view draws the document above the status line.
type view struct {
	screen tcell.Screen
	buf    *buffer.Buffer
	prompt *prompt.Prompt
	status *prompt.StatusLine
	top    int
}

// draw redraws the screen scrolled so the cursor line is visible.
func (v *view) draw(cursor buffer.Point) {
	_, height := v.screen.Size()
	rows := max(height-1, 0)

	if cursor.Line < v.top {
		v.top = cursor.Line
	} else if rows > 0 && cursor.Line >= v.top+rows {
		v.top = cursor.Line - rows + 1
	}

	prompt.DrawLines(v.screen, v.buf, v.top, rows, prompt.DefaultTabWidth, tcell.StyleDefault)
	v.prompt.SetTop(-v.top)
	if v.prompt.IsOpen() {
		v.prompt.Draw()
	} else {
		x := prompt.ColumnX(v.buf.LineText(cursor.Line), cursor.Column, prompt.DefaultTabWidth)
		v.screen.ShowCursor(x, cursor.Line-v.top)
	}
	v.status.Draw()
	v.screen.Show()
}

// RunInteractive shows the document on screen and runs renames from key
// presses until the quit key is pressed or ctx is cancelled.
//
// The screen is initialized and finalized by RunInteractive. Committed
// renames are saved as they complete; in dry-run mode the previews are
// written to Output after the screen is released.
func (app *Application) RunInteractive(ctx context.Context, screen tcell.Screen) error {
	if err := app.begin(); err != nil {
		return err
	}
	defer app.end()

	if err := screen.Init(); err != nil {
		return NewComponentError("screen", "init", err)
	}
	screen.EnableFocus()

	// Log lines would corrupt the screen; hold them until it is released
	var held bytes.Buffer
	logOutput := app.logger.Output()
	app.logger.SetOutput(&held)
	defer func() {
		app.logger.SetOutput(logOutput)
		_, _ = logOutput.Write(held.Bytes())
	}()

	ctx, cancel := context.WithCancel(ctx)
	quit := make(chan struct{})
	var quitOnce sync.Once

	buf := app.editor.Buffer()
	v := &view{
		screen: screen,
		buf:    buf,
		prompt: prompt.New(screen, buf),
		status: prompt.NewStatusLine(screen),
	}

	fe, err := app.newFrontEnd(v.prompt, v.status, v.status)
	if err == nil {
		err = app.registerEditorCommands(fe, func() { quitOnce.Do(func() { close(quit) }) })
	}
	if err != nil {
		cancel()
		screen.Fini()
		return err
	}

	app.setReloadNotify(func() { _ = screen.PostEvent(tcell.NewEventInterrupt(nil)) })

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	v.draw(app.editor.Selection().Cursor())
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-quit:
			break loop
		case done := <-fe.done:
			fe.pending--
			app.handleDone(done, v.status)
		case ev := <-events:
			app.handleEvent(ctx, ev, fe, v)
		}
		v.draw(app.editor.Selection().Cursor())
	}

	cancel()
	app.setReloadNotify(nil)
	// Cancelling closes the input; an accepted rename runs to the end
	for ; fe.pending > 0; fe.pending-- {
		app.handleDone(<-fe.done, v.status)
	}
	screen.Fini()

	if app.opts.DryRun {
		out := app.opts.Output
		if out == nil {
			out = os.Stdout
		}
		return app.writePreview(out)
	}
	return nil
}

// handleEvent routes one terminal event. Keys go to the key map first,
// then to the open input.
func (app *Application) handleEvent(ctx context.Context, ev tcell.Event, fe *frontEnd, v *view) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventFocus:
		if !ev.Focused {
			fe.controller.Session().Blur()
		}
	case *tcell.EventKey:
		name := prompt.KeyName(ev)
		if b, ok := fe.keymap.Lookup(name); ok {
			action := input.Action{Name: b.Action, Source: input.SourceKeyboard, Key: name}
			res := fe.dispatcher.Dispatch(ctx, action)
			if res.Status == handler.StatusAsync {
				fe.pending++
			}
			if res.IsError() {
				v.status.Show(rename.SeverityError, res.Error.Error())
			}
			return
		}
		if fe.state.Visible() {
			v.prompt.HandleKey(ev)
		}
	}
}

// handleDone reports a finished rename and saves its edits.
func (app *Application) handleDone(done runResult, status *prompt.StatusLine) {
	res := done.result
	switch res.Status {
	case rename.StatusCommitted:
		if !app.opts.DryRun {
			if err := app.finishCommit(); err != nil {
				status.Show(rename.SeverityError, err.Error())
				app.logger.Error("%v", err)
				return
			}
		}
		app.logger.Debug("renamed %s to %s", res.Word.Text, res.NewName)
	case rename.StatusFailed:
		app.logger.Debug("rename failed: %v", done.err)
	}
}
