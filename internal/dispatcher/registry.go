package dispatcher

import (
	"sort"
	"sync"

	"github.com/dshills/renamekit/internal/dispatcher/handler"
)

// Precondition reports whether a command is enabled.
type Precondition func() bool

// Command is a named, optionally gated handler.
type Command struct {
	// Name is the action name, e.g. "editor.rename".
	Name string

	// Handler executes the command.
	Handler handler.Handler

	// When must return true for the command to run. Nil always runs.
	When Precondition

	// Description documents the command.
	Description string
}

// Enabled returns true if the command's precondition holds.
func (c Command) Enabled() bool {
	return c.When == nil || c.When()
}

// Registry stores commands by name.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds or replaces a command.
func (r *Registry) Register(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.Name] = cmd
}

// Unregister removes a command.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.commands, name)
}

// Get returns a command by name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[name]
	return cmd, ok
}

// List returns the registered command names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
