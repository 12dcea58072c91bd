package app

import (
	"sync"
	"time"

	"github.com/dshills/renamekit/internal/rename"
)

// LogReporter shows rename messages and progress as log lines.
// It implements rename.Feedback and rename.Progress for headless runs.
type LogReporter struct {
	logger *Logger

	mu       sync.Mutex
	message  string
	severity rename.Severity
	shown    bool
}

// NewLogReporter creates a reporter writing to logger.
func NewLogReporter(logger *Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// Show implements rename.Feedback.
func (r *LogReporter) Show(severity rename.Severity, message string) {
	r.mu.Lock()
	r.message, r.severity, r.shown = message, severity, true
	r.mu.Unlock()

	if severity == rename.SeverityError {
		r.logger.Error("%s", message)
		return
	}
	r.logger.Info("%s", message)
}

// Last returns the last message shown, if any.
func (r *LogReporter) Last() (rename.Severity, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.severity, r.message, r.shown
}

// Start implements rename.Progress.
func (r *LogReporter) Start(message string) (stop func()) {
	start := time.Now()
	r.logger.Info("%s", message)

	var once sync.Once
	return func() {
		once.Do(func() {
			r.logger.Debug("%s done in %s", message, time.Since(start).Round(time.Millisecond))
		})
	}
}
