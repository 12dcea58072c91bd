package buffer

import "regexp"

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithPath sets the file path the buffer was loaded from.
func WithPath(path string) Option {
	return func(b *Buffer) {
		b.path = path
	}
}

// WithLanguage sets the buffer's language id (e.g. "go", "python").
func WithLanguage(id string) Option {
	return func(b *Buffer) {
		b.languageID = id
	}
}

// WithReadOnly marks the buffer as read-only.
func WithReadOnly(readOnly bool) Option {
	return func(b *Buffer) {
		b.readOnly = readOnly
	}
}

// WithWordPattern sets the pattern used by WordAt.
// A nil pattern keeps the default.
func WithWordPattern(re *regexp.Regexp) Option {
	return func(b *Buffer) {
		if re != nil {
			b.wordPattern = re
		}
	}
}
