package generic

import (
	"github.com/roach88/typerel/internal/engine"
	"github.com/roach88/typerel/internal/ir"
	"github.com/roach88/typerel/internal/pattern"
)

// Exclude removes the members of u that extend filter. Finite template
// members are expanded into literals first. An Ambiguous member is kept.
func Exclude(u, filter ir.Node) ir.Node {
	return keepMembers(u, func(m ir.Node) bool {
		return !engine.ExtendsCheck(m, filter).IsTrue()
	})
}

// Extract keeps the members of u that extend filter.
func Extract(u, filter ir.Node) ir.Node {
	return keepMembers(u, func(m ir.Node) bool {
		return engine.ExtendsCheck(m, filter).IsTrue()
	})
}

func keepMembers(u ir.Node, keep func(ir.Node) bool) ir.Node {
	var kept []ir.Node
	for _, m := range members(u) {
		if keep(m) {
			kept = append(kept, m)
		}
	}
	return ir.UnionOf(kept...)
}

func members(n ir.Node) []ir.Node {
	switch x := n.(type) {
	case *ir.Union:
		var out []ir.Node
		for _, m := range x.Members {
			out = append(out, members(m)...)
		}
		return out
	case *ir.TemplateLiteral:
		if strs, err := pattern.Generate(x.Pattern); err == nil {
			out := make([]ir.Node, len(strs))
			for i, s := range strs {
				out[i] = ir.StringLit(s)
			}
			return out
		}
	case ir.Never:
		return nil
	}
	return []ir.Node{n}
}
