package rename

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/renamekit/internal/engine/buffer"
)

// Resolver computes the edits for renaming the symbol at pos to newName.
type Resolver interface {
	Resolve(ctx context.Context, buf *buffer.Buffer, pos buffer.Point, newName string) (Resolution, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, buf *buffer.Buffer, pos buffer.Point, newName string) (Resolution, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, buf *buffer.Buffer, pos buffer.Point, newName string) (Resolution, error) {
	return f(ctx, buf, pos, newName)
}

// Registry maps language ids to resolvers.
// Registry is itself a Resolver dispatching on the buffer's language.
type Registry struct {
	mu        sync.RWMutex
	resolvers map[string]Resolver
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[string]Resolver)}
}

// Register sets the resolver for a language, replacing any previous one.
func (r *Registry) Register(languageID string, res Resolver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[languageID] = res
}

// Unregister removes the resolver for a language.
func (r *Registry) Unregister(languageID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resolvers, languageID)
}

// Has returns true if a resolver is registered for the language.
func (r *Registry) Has(languageID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.resolvers[languageID]
	return ok
}

// Languages returns the registered language ids, sorted.
func (r *Registry) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	langs := make([]string, 0, len(r.resolvers))
	for lang := range r.resolvers {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Resolve implements Resolver using the resolver of buf's language.
func (r *Registry) Resolve(ctx context.Context, buf *buffer.Buffer, pos buffer.Point, newName string) (Resolution, error) {
	lang := buf.LanguageID()

	r.mu.RLock()
	res, ok := r.resolvers[lang]
	r.mu.RUnlock()

	if !ok {
		return Resolution{}, fmt.Errorf("%w for language %q", ErrNoResolver, lang)
	}
	return res.Resolve(ctx, buf, pos, newName)
}
