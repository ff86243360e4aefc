package engine

import (
	"github.com/roach88/typerel/internal/cyclic"
	"github.com/roach88/typerel/internal/ir"
)

// Extends decides whether left is assignable to right.
//
// bindings seeds the result: on True the returned bindings are bindings
// merged with every Infer match discovered during the call. bindings itself
// is never modified.
func Extends(left, right ir.Node, bindings Bindings) Result {
	return ExtendsWith(nil, left, right, bindings)
}

// ExtendsCheck is Extends with no initial bindings.
func ExtendsCheck(left, right ir.Node) Result {
	return Extends(left, right, nil)
}

// ExtendsWith is Extends with defs visible to Ref nodes on both sides.
func ExtendsWith(defs map[string]ir.Node, left, right ir.Node, bindings Bindings) Result {
	s := cyclic.NewScope(defs)
	o, found := relate(left, right, s, s)
	if o != True {
		return Result{Outcome: o}
	}
	return Result{Outcome: True, Bindings: bindings.Clone().Merge(found)}
}

// relate applies the rules in order. ls and rs are the resolution scopes of
// the left and right operands; they differ once either side has entered a
// definition.
func relate(l, r ir.Node, ls, rs cyclic.Scope) (Outcome, Bindings) {
	// Unresolvable references with the same name denote the same type.
	if lr, ok := l.(ir.Ref); ok {
		if rr, ok := r.(ir.Ref); ok && lr.Name == rr.Name && !defined(ls, lr.Name) && !defined(rs, rr.Name) {
			return True, nil
		}
	}

	// Rule 0.
	if inf, ok := r.(*ir.Infer); ok {
		return True, Bindings{inf.Name: l}
	}

	// Rule 1, with the cyclic refinement against a written Unknown.
	if _, ok := r.(ir.Unknown); ok {
		return againstUnknown(l, ls), nil
	}
	r, rs = normalize(r, rs, cyclic.Target)
	switch y := r.(type) {
	case *ir.Infer:
		return True, Bindings{y.Name: l}
	case ir.Any:
		return True, nil
	case ir.Unknown:
		return againstUnknown(l, ls), nil
	}

	// Rule 2.
	if _, ok := l.(ir.Never); ok {
		return True, nil
	}

	l, ls = normalize(l, ls, cyclic.Operand)
	switch x := l.(type) {
	case ir.Never:
		return True, nil
	case ir.Any:
		// Rule 3.
		return AmbiguousUnion, nil
	case ir.Unknown:
		// Rule 4.
		if u, ok := r.(*ir.Union); ok && hasTopMember(u) {
			return True, nil
		}
		return False, nil
	case *ir.Union:
		// Rule 6.
		return distribute(x.Members, r, ls, rs)
	}

	// Rule 7.
	if u, ok := r.(*ir.Union); ok {
		return relateToUnion(l, u, ls, rs)
	}

	// Rule 8.
	return relateShape(l, r, ls, rs)
}

// normalize resolves Ref and Cyclic wrappers and reduces Not chains (rule
// 5). Nested Not pairs cancel; a single remaining Not degrades to Unknown.
func normalize(n ir.Node, s cyclic.Scope, pos cyclic.Position) (ir.Node, cyclic.Scope) {
	for {
		n, s = cyclic.Resolve(n, s, pos)
		not, ok := n.(*ir.Not)
		if !ok {
			return n, s
		}
		inner, ok := not.Inner.(*ir.Not)
		if !ok {
			return ir.Unknown{}, s
		}
		n = inner.Inner
	}
}

// againstUnknown relates l to a target that is or resolves to Unknown.
func againstUnknown(l ir.Node, ls cyclic.Scope) Outcome {
	if c, ok := l.(*ir.Cyclic); ok {
		root, _ := cyclic.Resolve(c, ls, cyclic.Operand)
		return unfoldedAgainstUnknown(root)
	}
	return True
}

// unfoldedAgainstUnknown decides a Cyclic operand against Unknown by the
// kind of its unfolded root. Variance-sensitive and key-pattern containers
// fail because their back-references cannot satisfy the opaque target.
func unfoldedAgainstUnknown(root ir.Node) Outcome {
	switch root.(type) {
	case *ir.Function, *ir.Constructor, *ir.Record:
		return False
	}
	return True
}

func defined(s cyclic.Scope, name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

func hasTopMember(u *ir.Union) bool {
	for _, m := range u.Members {
		switch x := m.(type) {
		case ir.Any, ir.Unknown:
			return true
		case *ir.Union:
			if hasTopMember(x) {
				return true
			}
		}
	}
	return false
}

// distribute relates every member of a left union to r.
func distribute(members []ir.Node, r ir.Node, ls, rs cyclic.Scope) (Outcome, Bindings) {
	out := True
	var found Bindings
	for _, m := range members {
		o, b := relate(m, r, ls, rs)
		switch o {
		case False:
			return False, nil
		case AmbiguousUnion:
			out = AmbiguousUnion
		}
		found = found.Merge(b)
	}
	return out, found
}

// relateToUnion finds the first member of u that l extends.
func relateToUnion(l ir.Node, u *ir.Union, ls, rs cyclic.Scope) (Outcome, Bindings) {
	if t, ok := l.(*ir.TemplateLiteral); ok {
		if lits, ok := finiteLiterals(t); ok {
			return relate(lits, u, ls, rs)
		}
	}
	if _, ok := l.(ir.Boolean); ok && coversBoolean(u) {
		return True, nil
	}
	for _, m := range u.Members {
		if o, b := relate(l, m, ls, rs); o == True {
			return True, b
		}
	}
	return False, nil
}

func coversBoolean(u *ir.Union) bool {
	var t, f bool
	var scan func(*ir.Union)
	scan = func(u *ir.Union) {
		for _, m := range u.Members {
			switch x := m.(type) {
			case ir.Literal:
				if x.Of == ir.LiteralBoolean {
					t = t || x.Bool
					f = f || !x.Bool
				}
			case *ir.Union:
				scan(x)
			}
		}
	}
	scan(u)
	return t && f
}

// unknownInfers binds every Infer under n to Unknown. Used when the slot n
// describes is structurally absent on the left.
func unknownInfers(n ir.Node) Bindings {
	var found Bindings
	ir.Walk(n, func(c ir.Node) bool {
		if inf, ok := c.(*ir.Infer); ok {
			if found == nil {
				found = Bindings{}
			}
			found[inf.Name] = ir.Unknown{}
		}
		return true
	})
	return found
}
