package handler

import "fmt"

// ResultStatus indicates the outcome of an action.
type ResultStatus uint8

const (
	// StatusOK indicates successful execution.
	StatusOK ResultStatus = iota
	// StatusNoOp indicates the action had no effect.
	StatusNoOp
	// StatusError indicates an error occurred.
	StatusError
	// StatusAsync indicates the operation is running asynchronously.
	StatusAsync
	// StatusCancelled indicates the operation was cancelled.
	StatusCancelled
)

// String returns a string representation of the status.
func (s ResultStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoOp:
		return "no-op"
	case StatusError:
		return "error"
	case StatusAsync:
		return "async"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is the outcome of handling an action.
type Result struct {
	Status  ResultStatus
	Error   error
	Message string
	Data    map[string]any
}

// IsOK returns true if the action succeeded.
func (r Result) IsOK() bool {
	return r.Status == StatusOK
}

// IsError returns true if the action failed.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

// Success returns a successful result.
func Success() Result {
	return Result{Status: StatusOK}
}

// NoOp returns a result for an action without effect.
func NoOp() Result {
	return Result{Status: StatusNoOp}
}

// NoOpWithMessage returns a no-op result with a message.
func NoOpWithMessage(msg string) Result {
	return Result{Status: StatusNoOp, Message: msg}
}

// Error returns an error result.
func Error(err error) Result {
	return Result{Status: StatusError, Error: err}
}

// Errorf returns an error result with a formatted error.
func Errorf(format string, args ...any) Result {
	return Error(fmt.Errorf(format, args...))
}

// Async returns a result for an action that continues in the background.
func Async() Result {
	return Result{Status: StatusAsync}
}

// Cancelled returns a cancelled result.
func Cancelled() Result {
	return Result{Status: StatusCancelled}
}

// WithMessage returns a copy of the result with a message.
func (r Result) WithMessage(msg string) Result {
	r.Message = msg
	return r
}

// WithData returns a copy of the result with a data entry added.
func (r Result) WithData(key string, value any) Result {
	data := make(map[string]any, len(r.Data)+1)
	for k, v := range r.Data {
		data[k] = v
	}
	data[key] = value
	r.Data = data
	return r
}

// GetData returns a data entry.
func (r Result) GetData(key string) (any, bool) {
	if r.Data == nil {
		return nil, false
	}
	v, ok := r.Data[key]
	return v, ok
}
