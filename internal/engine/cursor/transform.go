package cursor

import "github.com/dshills/renamekit/internal/engine/buffer"

// TransformPoint maps a point through one batch of changes returned by
// buffer.Apply. Changes must be in document order.
//
// Transformation rules:
//   - If a change ends at or before the point: the point shifts with it
//   - If a change starts at or after the point: no effect
//   - If a change spans the point: the point moves to the end of the new text
func TransformPoint(p Point, changes []buffer.Change) Point {
	var last *buffer.Change
	for i := range changes {
		c := &changes[i]
		if c.Range.End.After(p) {
			if c.Range.Start.Before(p) {
				// Change spans the point
				return c.NewRange.End
			}
			break
		}
		last = c
	}
	if last == nil {
		return p
	}

	oldEnd, newEnd := last.Range.End, last.NewRange.End
	if p.Line == oldEnd.Line {
		return Point{Line: newEnd.Line, Column: newEnd.Column + p.Column - oldEnd.Column}
	}
	return Point{Line: p.Line + newEnd.Line - oldEnd.Line, Column: p.Column}
}

// MapThrough returns the selection with anchor and head transformed
// independently through changes.
func (s Selection) MapThrough(changes []buffer.Change) Selection {
	return Selection{
		Anchor: TransformPoint(s.Anchor, changes),
		Head:   TransformPoint(s.Head, changes),
	}
}
