package rename

// Severity is the level of a user message.
type Severity uint8

const (
	// SeverityInfo is used for advisory messages such as rejections.
	SeverityInfo Severity = iota
	// SeverityError is used for failures.
	SeverityError
)

// String returns a string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Feedback shows messages to the user.
type Feedback interface {
	Show(severity Severity, message string)
}

// FeedbackFunc adapts a function to Feedback.
type FeedbackFunc func(severity Severity, message string)

// Show implements Feedback.
func (f FeedbackFunc) Show(severity Severity, message string) {
	f(severity, message)
}

// Progress shows a busy indicator.
type Progress interface {
	// Start shows message until the returned stop function is called.
	Start(message string) (stop func())
}

// Logger is the logging interface used by the controller.
// Messages are printf-style.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
