package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/dshills/renamekit/internal/bulkedit"
	"github.com/dshills/renamekit/internal/config"
	"github.com/dshills/renamekit/internal/editor"
	"github.com/dshills/renamekit/internal/event"
	"github.com/dshills/renamekit/internal/rename"
	"github.com/dshills/renamekit/internal/workspace"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the configuration file. Empty uses the default path
	// when that file exists.
	ConfigPath string

	// Config is used instead of loading ConfigPath when set.
	Config *config.Config

	// File is the document to rename in.
	File string

	// Line and Column are the 1-based cursor position. Column counts bytes.
	// Zero means 1.
	Line   int
	Column int

	// LogLevel overrides the configured log level.
	LogLevel string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// Output receives dry-run previews. Defaults to os.Stdout.
	Output io.Writer

	// ScriptPath is a Lua rename script for the document's language.
	ScriptPath string

	// ServerCommand is a language server command line for the document's
	// language. It wins over ScriptPath.
	ServerCommand []string

	// Resolver renames in the document's language instead of any
	// configured source.
	Resolver rename.Resolver

	// DryRun leaves files untouched and writes a preview of each renamed
	// document to Output.
	DryRun bool

	// Watch reloads the document when it changes on disk.
	Watch bool
}

// Application owns one document open in one editor and everything a
// rename in it needs.
type Application struct {
	opts Options

	config    *config.Config
	logger    *Logger
	bus       *event.Bus
	subs      *subscriptionManager
	workspace *workspace.Workspace
	watcher   *workspace.Watcher
	document  *workspace.Document
	editor    *editor.Editor
	registry  *rename.Registry
	resolvers []*lazyResolver
	edits     *bulkedit.Service

	mu       sync.Mutex
	onReload func()

	running atomic.Bool
	closed  atomic.Bool
}

// New creates an application and opens opts.File.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}
	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Config returns the effective configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// EventBus returns the event bus rename events are published on.
func (app *Application) EventBus() *event.Bus {
	return app.bus
}

// Workspace returns the open documents.
func (app *Application) Workspace() *workspace.Workspace {
	return app.workspace
}

// Document returns the document being renamed in.
func (app *Application) Document() *workspace.Document {
	return app.document
}

// Editor returns the editor showing the document.
func (app *Application) Editor() *editor.Editor {
	return app.editor
}

// Registry returns the rename resolvers by language.
func (app *Application) Registry() *rename.Registry {
	return app.registry
}

// RenameEvents returns the rename events published so far.
func (app *Application) RenameEvents() []RenameEvent {
	return app.subs.events()
}

// IsRunning returns true while a run is in progress.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// begin marks the application running. Runs do not overlap.
func (app *Application) begin() error {
	if app.closed.Load() {
		return ErrClosed
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	return nil
}

func (app *Application) end() {
	app.running.Store(false)
}

// setReloadNotify sets the function called after the watcher reloads the
// document.
func (app *Application) setReloadNotify(fn func()) {
	app.mu.Lock()
	app.onReload = fn
	app.mu.Unlock()
}

func (app *Application) notifyReload() {
	app.mu.Lock()
	fn := app.onReload
	app.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Shutdown stops the watcher and every started resolver. It is safe to
// call more than once.
func (app *Application) Shutdown(ctx context.Context) error {
	if app.closed.Swap(true) {
		return nil
	}

	var errs []error
	if app.watcher != nil {
		if err := app.watcher.Close(); err != nil {
			errs = append(errs, NewComponentError("watcher", "close", err))
		}
	}
	if err := closeAll(ctx, app.resolvers); err != nil {
		errs = append(errs, err)
	}
	app.subs.unsubscribeAll()

	err := errors.Join(errs...)
	if err != nil {
		app.logger.Warn("shutdown: %v", err)
	}
	return err
}
