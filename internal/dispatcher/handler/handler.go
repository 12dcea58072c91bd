// Package handler provides the handler interface and result types for
// action dispatch.
package handler

import (
	"context"

	"github.com/dshills/renamekit/internal/input"
)

// Handler executes an action.
type Handler interface {
	// Handle executes the action and returns a result.
	Handle(ctx context.Context, action input.Action) Result
}

// HandlerFunc is a function adapter for the Handler interface.
type HandlerFunc func(ctx context.Context, action input.Action) Result

// Handle implements Handler.Handle.
func (f HandlerFunc) Handle(ctx context.Context, action input.Action) Result {
	if f == nil {
		return Errorf("handler function is nil")
	}
	return f(ctx, action)
}
