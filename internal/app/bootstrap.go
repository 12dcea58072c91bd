package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dshills/renamekit/internal/bulkedit"
	"github.com/dshills/renamekit/internal/config"
	"github.com/dshills/renamekit/internal/editor"
	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/event"
	"github.com/dshills/renamekit/internal/rename"
	"github.com/dshills/renamekit/internal/workspace"
)

// bootstrapper handles component initialization with cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      app.opts,
		initOrder: make([]string, 0, 8),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"config", b.initConfig},
		{"logger", b.initLogger},
		{"eventBus", b.initEventBus},
		{"workspace", b.initWorkspace},
		{"editor", b.initEditor},
		{"resolvers", b.initResolvers},
		{"watcher", b.initWatcher},
	}

	for _, step := range steps {
		if err := step.init(); err != nil {
			b.cleanup()
			return err
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	b.app.logger.Debug("opened %s (%s) at %s", b.app.document.Path, b.app.document.LanguageID, b.app.editor.Selection().Cursor())
	return nil
}

func (b *bootstrapper) initConfig() error {
	var cfg *config.Config
	if b.opts.Config != nil {
		c := *b.opts.Config
		cfg = &c
	} else {
		loaded, err := config.Load(b.opts.ConfigPath)
		if err != nil {
			return NewOperationError("load config", b.opts.ConfigPath, err)
		}
		cfg = loaded
	}
	if b.opts.LogLevel != "" {
		cfg.LogLevel = b.opts.LogLevel
	}
	b.app.config = cfg
	return nil
}

func (b *bootstrapper) initLogger() error {
	lc := DefaultLoggerConfig()
	lc.Level = ParseLogLevel(b.app.config.LogLevel)
	if b.opts.LogOutput != nil {
		lc.Output = b.opts.LogOutput
	}
	b.app.logger = NewLogger(lc)
	return nil
}

func (b *bootstrapper) initEventBus() error {
	logger := b.app.logger.WithComponent("events")
	b.app.bus = event.NewBus(event.WithErrorHandler(func(ev any, err error) {
		logger.Warn("deliver %s: %v", event.ToEnvelope(ev).Topic, err)
	}))
	b.app.subs = newSubscriptionManager(logger)
	if err := b.app.subs.subscribe(b.app.bus); err != nil {
		return NewComponentError("events", "subscribe", err)
	}
	return nil
}

// initWorkspace creates the workspace and opens the document.
func (b *bootstrapper) initWorkspace() error {
	if b.opts.File == "" {
		return ErrNoFile
	}

	cfg := b.app.config
	opts := []workspace.Option{
		workspace.WithLanguageDetector(workspace.ExtensionDetector(cfg.Extensions())),
	}
	for _, id := range sortedLanguages(cfg.Languages) {
		lc := cfg.Languages[id]
		if lc.WordPattern == "" {
			continue
		}
		re, err := lc.Pattern()
		if err != nil {
			return NewOperationError("compile word pattern", id, err)
		}
		opts = append(opts, workspace.WithWordPattern(id, re))
	}

	ws := workspace.New(opts...)
	doc, err := ws.Open(b.opts.File)
	if err != nil {
		return NewOperationError("open", b.opts.File, err)
	}

	b.app.workspace = ws
	b.app.document = doc
	b.app.edits = bulkedit.NewService(ws)
	return nil
}

// initEditor places the cursor at the requested position.
func (b *bootstrapper) initEditor() error {
	doc := b.app.document
	p := buffer.Point{Line: max(b.opts.Line, 1) - 1, Column: max(b.opts.Column, 1) - 1}
	if err := doc.Buffer.ValidatePoint(p); err != nil {
		target := fmt.Sprintf("%s:%d:%d", doc.Path, p.Line+1, p.Column+1)
		return NewOperationError("position", target, fmt.Errorf("%w: %v", ErrInvalidPosition, err))
	}

	ed := editor.New(doc.Buffer)
	if err := ed.SetCursor(p); err != nil {
		return NewOperationError("position", doc.Path, err)
	}
	logger := b.app.logger.WithComponent("editor")
	ed.OnFocusChange(func(focused bool) {
		logger.Debug("focus %v", focused)
	})
	ed.Focus()
	b.app.editor = ed
	return nil
}

// initResolvers registers a lazily started resolver for every configured
// language, then applies the command line overrides for the document's
// language.
func (b *bootstrapper) initResolvers() error {
	app := b.app
	cfg := app.config
	root := findRoot(filepath.Dir(app.document.Path))
	registry := rename.NewRegistry()

	add := func(lang string, r *lazyResolver) {
		registry.Register(lang, r)
		app.resolvers = append(app.resolvers, r)
	}

	for _, id := range sortedLanguages(cfg.Languages) {
		if r := sourceFor(cfg.Rename.Source, id, cfg.Languages[id], root, app.workspace, app.logger); r != nil {
			add(id, r)
		}
	}

	lang := app.document.LanguageID
	switch {
	case b.opts.Resolver != nil:
		registry.Register(lang, b.opts.Resolver)
	case len(b.opts.ServerCommand) > 0:
		server := config.ServerConfig{Command: b.opts.ServerCommand[0], Args: b.opts.ServerCommand[1:]}
		add(lang, newLazyResolver("lsp", lang, serverSource(lang, server, root, app.workspace, app.logger.WithComponent("lsp"))))
	case b.opts.ScriptPath != "":
		add(lang, newLazyResolver("lua", lang, scriptSource(b.opts.ScriptPath, app.logger.WithComponent("lua"))))
	}

	if !registry.Has(lang) {
		app.logger.Warn("no rename source for language %q", lang)
	}
	app.registry = registry
	return nil
}

func (b *bootstrapper) initWatcher() error {
	if !b.opts.Watch {
		return nil
	}

	app := b.app
	logger := app.logger.WithComponent("watcher")
	w, err := workspace.NewWatcher(app.workspace,
		workspace.WithReloadHandler(func(path string, rev buffer.RevisionID) {
			logger.Info("reloaded %s", path)
			app.clampCursor()
			app.notifyReload()
		}),
		workspace.WithErrorHandler(func(err error) {
			logger.Warn("%v", err)
		}),
	)
	if err != nil {
		return NewComponentError("watcher", "start", err)
	}
	if err := w.Watch(app.document.Path); err != nil {
		_ = w.Close()
		return NewComponentError("watcher", "watch "+app.document.Path, err)
	}
	app.watcher = w
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "watcher":
			if b.app.watcher != nil {
				_ = b.app.watcher.Close()
				b.app.watcher = nil
			}
		case "resolvers":
			_ = closeAll(ctx, b.app.resolvers)
			b.app.resolvers = nil
		case "eventBus":
			b.app.subs.unsubscribeAll()
		}
	}
}

// clampCursor moves the cursor back into the document after a reload
// shortened it.
func (app *Application) clampCursor() {
	buf := app.editor.Buffer()
	p := app.editor.Selection().Cursor()
	if buf.ValidatePoint(p) == nil {
		return
	}
	line := min(p.Line, buf.LineCount()-1)
	col := min(p.Column, len(buf.LineText(line)))
	_ = app.editor.SetCursor(buffer.Point{Line: line, Column: col})
}
