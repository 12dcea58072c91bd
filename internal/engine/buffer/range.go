package buffer

import "fmt"

// Range represents a span of text between two points.
// Start is inclusive, End is exclusive: [Start, End).
type Range struct {
	Start Point
	End   Point
}

// NewRange creates a new Range from start and end points.
func NewRange(start, end Point) Range {
	return Range{Start: start, End: end}
}

// LineRange creates a range on a single line.
func LineRange(line, startCol, endCol int) Range {
	return Range{
		Start: Point{Line: line, Column: startCol},
		End:   Point{Line: line, Column: endCol},
	}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s-%s)", r.Start, r.End)
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid returns true if the range is valid (Start <= End).
func (r Range) IsValid() bool {
	return !r.End.Before(r.Start)
}

// IsSingleLine returns true if the range starts and ends on the same line.
func (r Range) IsSingleLine() bool {
	return r.Start.Line == r.End.Line
}

// Contains returns true if the given point is within the range.
// The end point is considered inside so that a cursor sitting right after a
// token still belongs to it.
func (r Range) Contains(p Point) bool {
	return !p.Before(r.Start) && !p.After(r.End)
}

// Overlaps returns true if the interiors of the two ranges intersect.
// Ranges that merely touch do not overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}
