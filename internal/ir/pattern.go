package ir

import "strings"

// Segment is one element of a template pattern AST.
// Only LiteralSegment, GroupSegment and AlternationSegment implement it.
type Segment interface {
	segment()
}

// LiteralSegment is a run of literal text.
type LiteralSegment struct {
	Text string
}

// GroupSegment is a parenthesized sequence.
type GroupSegment struct {
	Segments []Segment
}

// AlternationSegment chooses one of its branches. An empty branch matches
// the empty string.
type AlternationSegment struct {
	Branches [][]Segment
}

func (LiteralSegment) segment()     {}
func (GroupSegment) segment()       {}
func (AlternationSegment) segment() {}

// Pattern is a parsed template pattern: a sequence of segments.
type Pattern []Segment

// String renders the pattern back into text form. Parentheses, bars and
// backslashes inside literal text are escaped, so the output parses back to
// an equivalent pattern.
func (p Pattern) String() string {
	var b strings.Builder
	writeSegments(&b, p)
	return b.String()
}

func writeSegments(b *strings.Builder, segs []Segment) {
	for _, seg := range segs {
		switch s := seg.(type) {
		case LiteralSegment:
			writeEscaped(b, s.Text)
		case GroupSegment:
			b.WriteByte('(')
			writeSegments(b, s.Segments)
			b.WriteByte(')')
		case AlternationSegment:
			for i, branch := range s.Branches {
				if i > 0 {
					b.WriteByte('|')
				}
				writeSegments(b, branch)
			}
		}
	}
}

func writeEscaped(b *strings.Builder, text string) {
	for _, r := range text {
		switch r {
		case '(', ')', '|', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
}

func equalSegments(a, b []Segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		switch x := a[i].(type) {
		case LiteralSegment:
			y, ok := b[i].(LiteralSegment)
			if !ok || x.Text != y.Text {
				return false
			}
		case GroupSegment:
			y, ok := b[i].(GroupSegment)
			if !ok || !equalSegments(x.Segments, y.Segments) {
				return false
			}
		case AlternationSegment:
			y, ok := b[i].(AlternationSegment)
			if !ok || len(x.Branches) != len(y.Branches) {
				return false
			}
			for j := range x.Branches {
				if !equalSegments(x.Branches[j], y.Branches[j]) {
					return false
				}
			}
		default:
			return false
		}
	}
	return true
}
