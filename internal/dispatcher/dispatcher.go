package dispatcher

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dshills/renamekit/internal/dispatcher/handler"
	"github.com/dshills/renamekit/internal/input"
)

// PreconditionNotMet is the message of results for disabled commands.
const PreconditionNotMet = "precondition not met"

// Logger is the logging interface used by the dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(l Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// Stats holds dispatch counters.
type Stats struct {
	Dispatched uint64
	Skipped    uint64
	Errors     uint64
	Panics     uint64
}

// Dispatcher routes actions to commands.
type Dispatcher struct {
	registry *Registry
	logger   Logger

	dispatched atomic.Uint64
	skipped    atomic.Uint64
	errors     atomic.Uint64
	panics     atomic.Uint64
}

// New creates a dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{registry: NewRegistry()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds a command.
func (d *Dispatcher) Register(cmd Command) error {
	if cmd.Name == "" || cmd.Handler == nil {
		return fmt.Errorf("%w: command %q", ErrInvalidAction, cmd.Name)
	}
	d.registry.Register(cmd)
	return nil
}

// RegisterFunc adds a command backed by a function.
func (d *Dispatcher) RegisterFunc(name string, when Precondition, fn handler.HandlerFunc) error {
	return d.Register(Command{Name: name, When: when, Handler: fn})
}

// Unregister removes a command.
func (d *Dispatcher) Unregister(name string) {
	d.registry.Unregister(name)
}

// Registry returns the command registry.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Enabled returns true if the command exists and its precondition holds.
func (d *Dispatcher) Enabled(name string) bool {
	cmd, ok := d.registry.Get(name)
	return ok && cmd.Enabled()
}

// Dispatch runs the command named by action.
func (d *Dispatcher) Dispatch(ctx context.Context, action input.Action) handler.Result {
	if action.Name == "" {
		return handler.Error(ErrInvalidAction)
	}

	cmd, ok := d.registry.Get(action.Name)
	if !ok {
		return handler.Error(fmt.Errorf("%w: %s", ErrNoHandler, action.Name))
	}
	if !cmd.Enabled() {
		d.skipped.Add(1)
		d.debug("dispatch %s: %s", action.Name, PreconditionNotMet)
		return handler.NoOpWithMessage(PreconditionNotMet)
	}

	d.dispatched.Add(1)
	result := d.executeWithRecovery(ctx, cmd.Handler, action)
	if result.IsError() {
		d.errors.Add(1)
		if d.logger != nil {
			d.logger.Error("dispatch %s: %v", action.Name, result.Error)
		}
	}
	return result
}

// executeWithRecovery runs the handler, converting panics to errors.
func (d *Dispatcher) executeWithRecovery(ctx context.Context, h handler.Handler, action input.Action) (result handler.Result) {
	defer func() {
		if r := recover(); r != nil {
			d.panics.Add(1)
			result = handler.Error(fmt.Errorf("%w: %v", ErrPanic, r))
		}
	}()
	return h.Handle(ctx, action)
}

// Stats returns dispatch counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Dispatched: d.dispatched.Load(),
		Skipped:    d.skipped.Load(),
		Errors:     d.errors.Load(),
		Panics:     d.panics.Load(),
	}
}

func (d *Dispatcher) debug(msg string, args ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
