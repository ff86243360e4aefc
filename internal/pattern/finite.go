package pattern

import (
	"regexp"
	"strings"

	"github.com/roach88/typerel/internal/ir"
)

// Open interpolation atoms and the regular expressions they stand for.
const (
	atomString   = ".*"
	atomDigits   = "[1-9][0-9]*"
	atomIntegral = "-?[1-9][0-9]*"
)

var openAtoms = map[string]string{
	atomString:   `.*`,
	atomDigits:   `[1-9][0-9]*`,
	atomIntegral: `-?[1-9][0-9]*`,
}

// Well-known interpolation patterns for the scalar kinds.
var (
	StringPattern  = MustParse("(" + atomString + ")")
	NumberPattern  = MustParse("(0|" + atomDigits + ")")
	IntegerPattern = MustParse("(0|" + atomIntegral + ")")
	BooleanPattern = MustParse("(true|false)")
)

// IsFinite reports whether p contains no open interpolation and can be
// enumerated by Generate. The boolean interpolation is finite.
func IsFinite(p ir.Pattern) bool {
	return !hasOpenAtom(p)
}

func hasOpenAtom(segs []ir.Segment) bool {
	for _, seg := range segs {
		switch s := seg.(type) {
		case ir.LiteralSegment:
			if _, ok := openAtoms[s.Text]; ok {
				return true
			}
		case ir.GroupSegment:
			if hasOpenAtom(s.Segments) {
				return true
			}
		case ir.AlternationSegment:
			for _, branch := range s.Branches {
				if hasOpenAtom(branch) {
					return true
				}
			}
		}
	}
	return false
}

// Regexp compiles p into an anchored matcher. Literal text is quoted and
// open interpolations become their character classes.
func Regexp(p ir.Pattern) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	writeRegexp(&b, p)
	b.WriteString("$")
	// Every literal is quoted and every atom is a fixed valid expression.
	return regexp.MustCompile(b.String())
}

// Matches reports whether s is one of the strings p describes.
func Matches(p ir.Pattern, s string) bool {
	return Regexp(p).MatchString(s)
}

func writeRegexp(b *strings.Builder, segs []ir.Segment) {
	for _, seg := range segs {
		switch s := seg.(type) {
		case ir.LiteralSegment:
			if re, ok := openAtoms[s.Text]; ok {
				b.WriteString(re)
				continue
			}
			b.WriteString(regexp.QuoteMeta(s.Text))
		case ir.GroupSegment:
			b.WriteString("(?:")
			writeRegexp(b, s.Segments)
			b.WriteString(")")
		case ir.AlternationSegment:
			b.WriteString("(?:")
			for i, branch := range s.Branches {
				if i > 0 {
					b.WriteString("|")
				}
				writeRegexp(b, branch)
			}
			b.WriteString(")")
		}
	}
}

// IsString reports whether p is the bare string interpolation, possibly
// wrapped in groups. Such a pattern accepts every string.
func IsString(p ir.Pattern) bool {
	segs := []ir.Segment(p)
	for len(segs) == 1 {
		g, ok := segs[0].(ir.GroupSegment)
		if !ok {
			break
		}
		segs = g.Segments
	}
	if len(segs) != 1 {
		return false
	}
	lit, ok := segs[0].(ir.LiteralSegment)
	return ok && lit.Text == atomString
}
