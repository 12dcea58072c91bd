// Package topic provides hierarchical event topics with wildcard matching.
//
// Topics are dot-separated segments such as "rename.committed". Patterns may
// use "*" for exactly one segment and "**" for zero or more segments.
package topic

import "strings"

const (
	// Separator separates topic segments.
	Separator = "."

	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"
)

// Topic is a hierarchical event type.
type Topic string

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments splits the topic into its segments.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// IsWildcard returns true if the topic contains wildcards.
func (t Topic) IsWildcard() bool {
	return strings.Contains(string(t), WildcardSingle)
}

// IsValid returns true for a non-empty topic without empty segments.
func (t Topic) IsValid() bool {
	if t == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches returns true if this topic matches pattern.
func (t Topic) Matches(pattern Topic) bool {
	return match(t.Segments(), pattern.Segments())
}

func match(segs, pattern []string) bool {
	for len(pattern) > 0 {
		p := pattern[0]
		if p == WildcardMulti {
			for i := 0; i <= len(segs); i++ {
				if match(segs[i:], pattern[1:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 || (p != WildcardSingle && p != segs[0]) {
			return false
		}
		segs, pattern = segs[1:], pattern[1:]
	}
	return len(segs) == 0
}

// Join joins segments into a topic.
func Join(segments ...string) Topic {
	return Topic(strings.Join(segments, Separator))
}
