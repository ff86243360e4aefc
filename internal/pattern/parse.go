package pattern

import (
	"strings"

	"github.com/roach88/typerel/internal/ir"
)

// Parse converts pattern text into an AST.
//
// A body with no top-level "|" is returned as its segment sequence; a body
// with one or more "|" becomes a single AlternationSegment. Group bodies
// follow the same rule. Empty branches are kept; Generate deduplicates the
// strings they produce.
func Parse(text string) (ir.Pattern, error) {
	p := &parser{text: text}
	segs, err := p.body(0)
	if err != nil {
		return nil, err
	}
	return ir.Pattern(segs), nil
}

// MustParse is like Parse but panics on error.
// Use only for pattern constants known at compile time.
func MustParse(text string) ir.Pattern {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

type parser struct {
	text string
	pos  int
}

func (p *parser) fail(offset int, msg string) error {
	return &ParseError{Text: p.text, Offset: offset, Message: msg}
}

// body parses until end of input (depth 0) or a closing paren (depth > 0).
// The closing paren is left for the caller to consume.
func (p *parser) body(depth int) ([]ir.Segment, error) {
	var (
		branches [][]ir.Segment
		current  []ir.Segment
		lit      strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			current = append(current, ir.LiteralSegment{Text: lit.String()})
			lit.Reset()
		}
	}

	for p.pos < len(p.text) {
		c := p.text[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.text) {
				return nil, p.fail(p.pos, "dangling escape")
			}
			p.pos++
			// Escapes are byte-oriented; copy the full UTF-8 sequence.
			start := p.pos
			p.pos++
			for p.pos < len(p.text) && p.text[p.pos]&0xC0 == 0x80 {
				p.pos++
			}
			lit.WriteString(p.text[start:p.pos])
		case '(':
			flush()
			open := p.pos
			p.pos++
			inner, err := p.body(depth + 1)
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.text) {
				return nil, p.fail(open, "unclosed group")
			}
			p.pos++ // consume ')'
			current = append(current, ir.GroupSegment{Segments: inner})
		case ')':
			if depth == 0 {
				return nil, p.fail(p.pos, "unmatched closing paren")
			}
			flush()
			return finish(branches, current), nil
		case '|':
			flush()
			branches = append(branches, current)
			current = nil
			p.pos++
		default:
			lit.WriteByte(c)
			p.pos++
		}
	}
	flush()
	return finish(branches, current), nil
}

func finish(branches [][]ir.Segment, current []ir.Segment) []ir.Segment {
	if branches == nil {
		return current
	}
	return []ir.Segment{ir.AlternationSegment{Branches: append(branches, current)}}
}

// Format renders a pattern back into text. Parse(Format(p)) yields a
// pattern that generates the same strings as p.
func Format(p ir.Pattern) string {
	return p.String()
}
