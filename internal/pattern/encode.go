package pattern

import (
	"fmt"

	"github.com/roach88/typerel/internal/ir"
)

// Encode builds a template pattern from a sequence of parts. Literals
// contribute their key text; String, Number, Integer, BigInt and Boolean
// contribute their interpolation pattern; unions become a grouped
// alternation of their encoded members; nested template literals are
// spliced in as a group.
func Encode(parts ...ir.Node) (ir.Pattern, error) {
	var out ir.Pattern
	for i, part := range parts {
		segs, err := encodePart(part)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		out = append(out, segs...)
	}
	return out, nil
}

func encodePart(n ir.Node) ([]ir.Segment, error) {
	switch x := n.(type) {
	case ir.Literal:
		return []ir.Segment{ir.LiteralSegment{Text: x.Key()}}, nil
	case ir.String:
		return StringPattern, nil
	case ir.Number:
		return NumberPattern, nil
	case ir.Integer, ir.BigInt:
		return IntegerPattern, nil
	case ir.Boolean:
		return BooleanPattern, nil
	case *ir.TemplateLiteral:
		return []ir.Segment{ir.GroupSegment{Segments: x.Pattern}}, nil
	case *ir.Union:
		branches := make([][]ir.Segment, len(x.Members))
		for i, m := range x.Members {
			segs, err := encodePart(m)
			if err != nil {
				return nil, err
			}
			branches[i] = segs
		}
		return []ir.Segment{ir.GroupSegment{Segments: []ir.Segment{
			ir.AlternationSegment{Branches: branches},
		}}}, nil
	}
	if n == nil {
		return nil, fmt.Errorf("nil template part")
	}
	return nil, fmt.Errorf("%s cannot appear in a template literal", n.Kind())
}
