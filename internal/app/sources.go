package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dshills/renamekit/internal/config"
	"github.com/dshills/renamekit/internal/engine/buffer"
	"github.com/dshills/renamekit/internal/lsp"
	"github.com/dshills/renamekit/internal/plugin/lua"
	"github.com/dshills/renamekit/internal/rename"
)

// startFunc starts a resolver. stop releases it.
type startFunc func(ctx context.Context) (res rename.Resolver, stop func(context.Context) error, err error)

// lazyResolver starts its resolver on the first rename of its language.
// A failed start is retried on the next rename.
type lazyResolver struct {
	kind     string
	language string
	start    startFunc

	mu   sync.Mutex
	res  rename.Resolver
	stop func(context.Context) error
}

func newLazyResolver(kind, language string, start startFunc) *lazyResolver {
	return &lazyResolver{kind: kind, language: language, start: start}
}

// Resolve implements rename.Resolver.
func (l *lazyResolver) Resolve(ctx context.Context, buf *buffer.Buffer, pos buffer.Point, newName string) (rename.Resolution, error) {
	res, err := l.get(ctx)
	if err != nil {
		return rename.Resolution{}, err
	}
	return res.Resolve(ctx, buf, pos, newName)
}

func (l *lazyResolver) get(ctx context.Context) (rename.Resolver, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.res != nil {
		return l.res, nil
	}
	res, stop, err := l.start(ctx)
	if err != nil {
		return nil, NewComponentError(l.kind, "start "+l.language, err)
	}
	l.res, l.stop = res, stop
	return res, nil
}

// Started returns true once the resolver is running.
func (l *lazyResolver) Started() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.res != nil
}

// Close stops the resolver if it was started.
func (l *lazyResolver) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stop == nil {
		return nil
	}
	err := l.stop(ctx)
	l.res, l.stop = nil, nil
	return err
}

// serverSource starts a language server for language rooted at root.
func serverSource(language string, server config.ServerConfig, root string, docs lsp.DocumentSource, logger *Logger) startFunc {
	return func(ctx context.Context) (rename.Resolver, func(context.Context) error, error) {
		client := lsp.NewClient(lsp.ServerConfig{
			Command: server.Command,
			Args:    server.Args,
			Env:     server.Env,
		}, language, lsp.WithLogger(logger))

		logger.Info("starting %s for %s in %s", server.Command, language, root)
		if err := client.Start(ctx, root); err != nil {
			return nil, nil, err
		}
		if info := client.ServerInfo(); info != nil {
			logger.Debug("server %s %s ready", info.Name, info.Version)
		}
		return lsp.NewResolver(client, docs), client.Shutdown, nil
	}
}

// scriptSource loads a Lua rename script. Script output goes to logger.
func scriptSource(path string, logger *Logger) startFunc {
	return func(context.Context) (rename.Resolver, func(context.Context) error, error) {
		res, err := lua.NewResolver(path, lua.WithPrint(func(s string) {
			logger.Info("%s", s)
		}))
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("loaded script %s", res.Name())
		return res, func(context.Context) error { return res.Close() }, nil
	}
}

// sourceFor picks the resolver of one language per the configured source.
// It returns nil when the language has nothing usable.
func sourceFor(source, language string, lc config.LanguageConfig, root string, docs lsp.DocumentSource, logger *Logger) *lazyResolver {
	useServer := lc.Server.Command != "" && source != config.SourceScript
	useScript := lc.Script != "" && source != config.SourceLSP

	switch {
	case useServer:
		return newLazyResolver("lsp", language, serverSource(language, lc.Server, root, docs, logger.WithComponent("lsp")))
	case useScript:
		return newLazyResolver("lua", language, scriptSource(lc.Script, logger.WithComponent("lua")))
	default:
		return nil
	}
}

// sortedLanguages returns the configured language ids in order.
func sortedLanguages(languages map[string]config.LanguageConfig) []string {
	ids := make([]string, 0, len(languages))
	for id := range languages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// rootMarkers identify a project root for language servers.
var rootMarkers = []string{".git", "go.mod", "Cargo.toml", "package.json", "pyproject.toml", "setup.py"}

// findRoot returns the nearest ancestor of dir holding a root marker, or dir.
func findRoot(dir string) string {
	for d := dir; ; {
		for _, m := range rootMarkers {
			if _, err := os.Stat(filepath.Join(d, m)); err == nil {
				return d
			}
		}
		parent := filepath.Dir(d)
		if parent == d {
			return dir
		}
		d = parent
	}
}

// closeAll closes every started resolver.
func closeAll(ctx context.Context, resolvers []*lazyResolver) error {
	var errs []error
	for _, r := range resolvers {
		if err := r.Close(ctx); err != nil {
			errs = append(errs, NewComponentError(r.kind, "stop "+r.language, err))
		}
	}
	return errors.Join(errs...)
}
