package buffer

import "regexp"

// DefaultWordPattern matches numbers (including decimals) and runs of
// characters that are not punctuation or whitespace.
const DefaultWordPattern = `-?\d*\.\d\w*|[^\x60~!@#$%^&*()\-=+\[{\]}\\|;:'",.<>/?\s]+`

var defaultWordRegexp = regexp.MustCompile(DefaultWordPattern)

// Word is a token found under a position.
type Word struct {
	Text        string
	Line        int // 0-indexed line
	StartColumn int // 0-indexed byte column, inclusive
	EndColumn   int // 0-indexed byte column, exclusive
}

// Range returns the word's range.
func (w Word) Range() Range {
	return LineRange(w.Line, w.StartColumn, w.EndColumn)
}

// Start returns the word's start point.
func (w Word) Start() Point {
	return Point{Line: w.Line, Column: w.StartColumn}
}

// End returns the word's end point.
func (w Word) End() Point {
	return Point{Line: w.Line, Column: w.EndColumn}
}

// WordAt returns the word that contains p.
// A position right after the last character of a word still belongs to it.
// Returns false if p is out of range or sits on whitespace/punctuation.
func (b *Buffer) WordAt(p Point) (Word, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if p.Line < 0 || p.Line >= len(b.lines) {
		return Word{}, false
	}
	line := b.lines[p.Line]
	if p.Column < 0 || p.Column > len(line) {
		return Word{}, false
	}

	for _, loc := range b.wordPattern.FindAllStringIndex(line, -1) {
		if loc[0] > p.Column {
			break
		}
		if p.Column <= loc[1] {
			return Word{
				Text:        line[loc[0]:loc[1]],
				Line:        p.Line,
				StartColumn: loc[0],
				EndColumn:   loc[1],
			}, true
		}
	}
	return Word{}, false
}

// FindWords returns every word equal to text, in document order.
func (b *Buffer) FindWords(text string) []Word {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var words []Word
	for i, line := range b.lines {
		for _, loc := range b.wordPattern.FindAllStringIndex(line, -1) {
			if line[loc[0]:loc[1]] == text {
				words = append(words, Word{Text: text, Line: i, StartColumn: loc[0], EndColumn: loc[1]})
			}
		}
	}
	return words
}

// CompileWordPattern compiles a word pattern, falling back to the default
// for an empty string.
func CompileWordPattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return defaultWordRegexp, nil
	}
	return regexp.Compile(pattern)
}
