package lsp

import "github.com/dshills/renamekit/internal/engine/buffer"

// LineSource gives access to document lines. *buffer.Buffer implements it.
type LineSource interface {
	LineText(line int) string
}

// ToPosition converts a byte-column point to an LSP position.
func ToPosition(lines LineSource, p buffer.Point) Position {
	return Position{
		Line:      p.Line,
		Character: byteToUTF16Offset(lines.LineText(p.Line), p.Column),
	}
}

// ToPoint converts an LSP position to a byte-column point. Characters past
// the end of the line clamp to the line end.
func ToPoint(lines LineSource, pos Position) buffer.Point {
	return buffer.Point{
		Line:   pos.Line,
		Column: utf16ToByteOffset(lines.LineText(pos.Line), pos.Character),
	}
}

// ToRange converts an LSP range to a byte-column range.
func ToRange(lines LineSource, r Range) buffer.Range {
	return buffer.Range{Start: ToPoint(lines, r.Start), End: ToPoint(lines, r.End)}
}

// utf16Len returns the length of s in UTF-16 code units.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2 // surrogate pair
		} else {
			n++
		}
	}
	return n
}

// byteToUTF16Offset converts a byte offset within s to a UTF-16 offset.
func byteToUTF16Offset(s string, byteOff int) int {
	if byteOff <= 0 {
		return 0
	}
	if byteOff >= len(s) {
		return utf16Len(s)
	}
	return utf16Len(s[:byteOff])
}

// utf16ToByteOffset converts a UTF-16 offset within s to a byte offset.
// An offset inside a surrogate pair maps to the start of its rune.
func utf16ToByteOffset(s string, utf16Off int) int {
	if utf16Off <= 0 {
		return 0
	}

	count := 0
	for i, r := range s {
		w := 1
		if r >= 0x10000 {
			w = 2
		}
		if count+w > utf16Off {
			return i
		}
		count += w
	}
	return len(s)
}
