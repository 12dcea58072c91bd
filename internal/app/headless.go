package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dshills/renamekit/internal/bulkedit"
	"github.com/dshills/renamekit/internal/input"
	"github.com/dshills/renamekit/internal/rename"
)

// presetInput is a rename.Widget answering with a fixed name. It accepts
// as soon as it opens.
type presetInput struct {
	name   string
	accept func()

	mu     sync.Mutex
	value  string
	opened rename.WordRange
}

func (w *presetInput) Open(r rename.WordRange, _ string, _, _ int) error {
	w.mu.Lock()
	w.value = w.name
	w.opened = r
	w.mu.Unlock()

	// The session holds its lock until Open returns; Accept waits for it
	go w.accept()
	return nil
}

func (w *presetInput) Value() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

func (w *presetInput) Close() {}

// RunRename renames the word at the cursor to newName without a terminal.
//
// Messages and progress go to the log. A committed rename is saved, or in
// dry-run mode previewed on Output. The error is non-nil when the rename
// failed, could not start or could not be saved.
func (app *Application) RunRename(ctx context.Context, newName string) (rename.Result, error) {
	if err := app.begin(); err != nil {
		return rename.Result{}, err
	}
	defer app.end()

	reporter := NewLogReporter(app.logger)
	in := &presetInput{name: newName}
	fe, err := app.newFrontEnd(in, reporter, reporter)
	if err != nil {
		return rename.Result{}, err
	}
	in.accept = func() { fe.controller.Session().Accept() }

	if err := fe.startRename(ctx, input.SourceAPI); err != nil {
		return rename.Result{}, err
	}
	done := <-fe.done

	if done.result.Status == rename.StatusNoWord {
		app.logger.Info("no word at %s", app.editor.Selection().Cursor())
	}
	if done.result.Status != rename.StatusCommitted {
		return done.result, done.err
	}
	if err := app.finishCommit(); err != nil {
		return done.result, err
	}
	return done.result, nil
}

// finishCommit saves the renamed documents, or previews them in dry-run
// mode.
func (app *Application) finishCommit() error {
	if app.opts.DryRun {
		out := app.opts.Output
		if out == nil {
			out = os.Stdout
		}
		return app.writePreview(out)
	}

	modified := app.workspace.Modified()
	if err := app.workspace.SaveAll(); err != nil {
		return NewOperationError("save", "", err)
	}
	for _, path := range modified {
		app.logger.Debug("saved %s", path)
	}
	return nil
}

// writePreview writes a patch for every modified document.
func (app *Application) writePreview(w io.Writer) error {
	for _, path := range app.workspace.Modified() {
		before, err := app.workspace.Original(path)
		if err != nil {
			return NewOperationError("preview", path, err)
		}
		doc, ok := app.workspace.Document(path)
		if !ok {
			continue
		}
		if _, err := fmt.Fprint(w, bulkedit.Preview(path, before, doc.Buffer.Text())); err != nil {
			return NewOperationError("preview", path, err)
		}
	}
	return nil
}
