package pattern

import (
	"github.com/roach88/typerel/internal/ir"
)

// Generate expands a bounded pattern into its strings, in first-occurrence
// order and without duplicates. Sibling segments combine by cartesian
// product; an alternation contributes the union of its branches, so an
// alternation directly inside another flattens.
//
// Nothing is cached: the result is re-derived from p on every call.
// Generate returns ErrUnbounded when p contains an open interpolation.
func Generate(p ir.Pattern) ([]string, error) {
	if !IsFinite(p) {
		return nil, ErrUnbounded
	}
	return generateSeq(p), nil
}

// ToUnion expands a bounded pattern into a normalized union of string
// literals.
func ToUnion(p ir.Pattern) (ir.Node, error) {
	strs, err := Generate(p)
	if err != nil {
		return nil, err
	}
	return ir.LiteralUnion(strs...), nil
}

func generateSeq(segs []ir.Segment) []string {
	out := []string{""}
	for _, seg := range segs {
		out = product(out, generateSegment(seg))
	}
	return out
}

func generateSegment(seg ir.Segment) []string {
	switch s := seg.(type) {
	case ir.LiteralSegment:
		return []string{s.Text}
	case ir.GroupSegment:
		return generateSeq(s.Segments)
	case ir.AlternationSegment:
		var out []string
		seen := make(map[string]bool)
		for _, branch := range s.Branches {
			for _, str := range generateSeq(branch) {
				if !seen[str] {
					seen[str] = true
					out = append(out, str)
				}
			}
		}
		return out
	}
	return []string{""}
}

func product(prefixes, suffixes []string) []string {
	out := make([]string, 0, len(prefixes)*len(suffixes))
	seen := make(map[string]bool, cap(out))
	for _, p := range prefixes {
		for _, s := range suffixes {
			str := p + s
			if !seen[str] {
				seen[str] = true
				out = append(out, str)
			}
		}
	}
	return out
}
