package cyclic

import (
	"sort"

	"github.com/roach88/typerel/internal/ir"
)

// Resolve follows n to the first node that is neither a Ref nor a Cyclic.
//
//   - Ref(name) with name defined and not visiting: continue into its
//     definition with name entered.
//   - Ref(name) visiting, or undefined: Placeholder(pos).
//   - Cyclic(defs, root): continue with defs in scope at Ref(root); a
//     missing root resolves to Unknown.
//
// The returned scope is the one the resolved node must be interpreted in.
func Resolve(n ir.Node, s Scope, pos Position) (ir.Node, Scope) {
	for {
		switch x := n.(type) {
		case ir.Ref:
			if s.Visiting(x.Name) {
				return Placeholder(pos), s
			}
			def, ok := s.Lookup(x.Name)
			if !ok {
				return Placeholder(pos), s
			}
			n, s = def, s.Enter(x.Name)
		case *ir.Cyclic:
			if _, ok := x.Defs[x.Root]; !ok {
				return ir.Unknown{}, s
			}
			n, s = ir.Ref{Name: x.Root}, s.With(x.Defs)
		default:
			return n, s
		}
	}
}

// Follow resolves a chain of Refs in s without placeholders. It reports
// false when the chain ends at an undefined name or re-enters a visiting
// name; the returned scope has every followed name entered.
func Follow(n ir.Node, s Scope) (ir.Node, Scope, bool) {
	for {
		r, ok := n.(ir.Ref)
		if !ok {
			return n, s, true
		}
		if s.Visiting(r.Name) {
			return nil, s, false
		}
		def, ok := s.Lookup(r.Name)
		if !ok {
			return nil, s, false
		}
		n, s = def, s.Enter(r.Name)
	}
}

// Deref follows a chain of Refs through defs. It reports false when the
// chain ends at an undefined name or loops back on itself.
func Deref(defs map[string]ir.Node, n ir.Node) (ir.Node, bool) {
	out, _, ok := Follow(n, NewScope(defs))
	return out, ok
}

// References returns the distinct names referenced by Ref nodes under n,
// sorted.
func References(n ir.Node) []string {
	seen := make(map[string]bool)
	ir.Walk(n, func(c ir.Node) bool {
		if r, ok := c.(ir.Ref); ok {
			seen[r.Name] = true
		}
		return true
	})
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unfold expands c by one level: the root definition with every reference
// to a sibling definition replaced by a Cyclic rooted at that name. The
// result is equivalent to c and is used for display. A missing root
// unfolds to Unknown.
func Unfold(c *ir.Cyclic) ir.Node {
	root, ok := c.Defs[c.Root]
	if !ok {
		return ir.Unknown{}
	}
	return ir.Rewrite(root, func(n ir.Node) (ir.Node, bool) {
		switch x := n.(type) {
		case ir.Ref:
			if _, ok := c.Defs[x.Name]; ok {
				return ir.NewCyclic(c.Defs, x.Name), true
			}
		case *ir.Cyclic:
			// Nested definition sets are closed over their own names.
			return n, true
		}
		return n, false
	})
}
