package engine

import (
	"github.com/roach88/typerel/internal/cyclic"
	"github.com/roach88/typerel/internal/ir"
	"github.com/roach88/typerel/internal/pattern"
)

// relateShape applies the container and primitive rules. l and r are
// resolved, and neither is a union.
func relateShape(l, r ir.Node, ls, rs cyclic.Scope) (Outcome, Bindings) {
	if y, ok := r.(*ir.Intersect); ok {
		var found Bindings
		for _, m := range y.Members {
			o, b := relate(l, m, ls, rs)
			if !pass(o) {
				return False, nil
			}
			found = found.Merge(b)
		}
		return True, found
	}
	if x, ok := l.(*ir.Intersect); ok {
		if merged, ok := mergeObjects(x); ok {
			l = merged
		} else {
			for _, m := range x.Members {
				if o, b := relate(m, r, ls, rs); pass(o) {
					return True, b
				}
			}
			return False, nil
		}
	}

	switch y := r.(type) {
	case ir.Never:
		return False, nil
	case ir.Null, ir.Undefined, ir.Void, ir.Boolean, ir.Number, ir.Integer, ir.BigInt, ir.String, ir.Literal:
		return fromBool(relatePrimitive(l, r)), nil
	case *ir.TemplateLiteral:
		return fromBool(relateTemplate(l, y)), nil
	case *ir.Array:
		return relateArray(l, y, ls, rs)
	case *ir.Tuple:
		return relateTuple(l, y, ls, rs)
	case *ir.Object:
		return relateObject(l, y, ls, rs)
	case *ir.Record:
		return relateRecord(l, y, ls, rs)
	case *ir.Function:
		if x, ok := l.(*ir.Function); ok {
			return relateSignature(x.Params, y.Params, x.Returns, y.Returns, ls, rs)
		}
	case *ir.Constructor:
		if x, ok := l.(*ir.Constructor); ok {
			return relateSignature(x.Params, y.Params, x.Instance, y.Instance, ls, rs)
		}
	case *ir.Promise:
		if x, ok := l.(*ir.Promise); ok {
			return covariant(x.Item, y.Item, ls, rs)
		}
	case *ir.Iterator:
		if x, ok := l.(*ir.Iterator); ok {
			return covariant(x.Item, y.Item, ls, rs)
		}
	case *ir.AsyncIterator:
		if x, ok := l.(*ir.AsyncIterator); ok {
			return covariant(x.Item, y.Item, ls, rs)
		}
	case *ir.Optional:
		return relate(l, y.Inner, ls, rs)
	case *ir.Readonly:
		return relate(l, y.Inner, ls, rs)
	default:
		// Generic, Call, Mapped, KeyOf and Index are unevaluated forms;
		// only an identical form is known to extend them.
		return fromBool(ir.Equal(l, r)), nil
	}
	return False, nil
}

func fromBool(b bool) Outcome {
	if b {
		return True
	}
	return False
}

func covariant(l, r ir.Node, ls, rs cyclic.Scope) (Outcome, Bindings) {
	o, b := relate(l, r, ls, rs)
	if !pass(o) {
		return False, nil
	}
	return True, b
}

// mergeObjects flattens an intersection whose members are all objects into
// one object. Properties declared by several members intersect their types
// and are optional only if optional everywhere.
func mergeObjects(x *ir.Intersect) (*ir.Object, bool) {
	if len(x.Members) == 0 {
		return nil, false
	}
	var props []ir.Property
	index := make(map[string]int)
	for _, m := range x.Members {
		obj, ok := m.(*ir.Object)
		if !ok {
			return nil, false
		}
		for _, p := range obj.Properties {
			i, seen := index[p.Name]
			if !seen {
				index[p.Name] = len(props)
				props = append(props, p)
				continue
			}
			prev := props[i]
			prev.Type = ir.NewIntersect(prev.Type, p.Type)
			prev.Optional = prev.Optional && p.Optional
			prev.Readonly = prev.Readonly || p.Readonly
			props[i] = prev
		}
	}
	return &ir.Object{Properties: props}, true
}

// relatePrimitive handles scalar targets: literals extend their scalar
// kind, Integer extends Number and Undefined extends Void.
func relatePrimitive(l, r ir.Node) bool {
	switch y := r.(type) {
	case ir.String:
		switch x := l.(type) {
		case ir.String, *ir.TemplateLiteral:
			return true
		case ir.Literal:
			return x.Of == ir.LiteralString
		}
	case ir.Number:
		switch x := l.(type) {
		case ir.Number, ir.Integer:
			return true
		case ir.Literal:
			return x.Of == ir.LiteralNumber
		}
	case ir.Integer:
		switch x := l.(type) {
		case ir.Integer:
			return true
		case ir.Literal:
			return x.IsInteger()
		}
	case ir.Boolean:
		switch x := l.(type) {
		case ir.Boolean:
			return true
		case ir.Literal:
			return x.Of == ir.LiteralBoolean
		}
	case ir.BigInt:
		switch x := l.(type) {
		case ir.BigInt:
			return true
		case ir.Literal:
			return x.Of == ir.LiteralBigInt
		}
	case ir.Null:
		_, ok := l.(ir.Null)
		return ok
	case ir.Undefined:
		_, ok := l.(ir.Undefined)
		return ok
	case ir.Void:
		switch l.(type) {
		case ir.Void, ir.Undefined:
			return true
		}
	case ir.Literal:
		switch x := l.(type) {
		case ir.Literal:
			return x == y
		case *ir.TemplateLiteral:
			strs, err := pattern.Generate(x.Pattern)
			return err == nil && y.Of == ir.LiteralString && len(strs) == 1 && strs[0] == y.Str
		}
	}
	return false
}

// relateTemplate compares against a template literal target. Finite
// patterns are enumerated and compared by membership; open patterns are
// matched with their regular expression.
func relateTemplate(l ir.Node, r *ir.TemplateLiteral) bool {
	switch x := l.(type) {
	case ir.Literal:
		return x.Of == ir.LiteralString && templateAccepts(r.Pattern, x.Str)
	case *ir.TemplateLiteral:
		strs, err := pattern.Generate(x.Pattern)
		if err != nil {
			return ir.Equal(x, r) || pattern.IsString(r.Pattern)
		}
		for _, s := range strs {
			if !templateAccepts(r.Pattern, s) {
				return false
			}
		}
		return true
	case ir.String:
		return pattern.IsString(r.Pattern)
	}
	return false
}

func templateAccepts(p ir.Pattern, s string) bool {
	strs, err := pattern.Generate(p)
	if err != nil {
		return pattern.Matches(p, s)
	}
	for _, candidate := range strs {
		if candidate == s {
			return true
		}
	}
	return false
}

// finiteLiterals expands a bounded template into the union of its strings.
func finiteLiterals(t *ir.TemplateLiteral) (ir.Node, bool) {
	u, err := pattern.ToUnion(t.Pattern)
	if err != nil {
		return nil, false
	}
	return u, true
}

func relateArray(l ir.Node, r *ir.Array, ls, rs cyclic.Scope) (Outcome, Bindings) {
	switch x := l.(type) {
	case *ir.Array:
		return covariant(x.Item, r.Item, ls, rs)
	case *ir.Tuple:
		var found Bindings
		for _, item := range x.Items {
			o, b := relate(item.Type, r.Item, ls, rs)
			if !pass(o) {
				return False, nil
			}
			found = found.Merge(b)
		}
		return True, found
	}
	return False, nil
}

// relateTuple compares position by position. An array never extends a
// tuple.
func relateTuple(l ir.Node, r *ir.Tuple, ls, rs cyclic.Scope) (Outcome, Bindings) {
	x, ok := l.(*ir.Tuple)
	if !ok || len(x.Items) > len(r.Items) {
		return False, nil
	}
	var found Bindings
	for i, ri := range r.Items {
		if i >= len(x.Items) {
			if !ri.Optional {
				return False, nil
			}
			found = found.Merge(unknownInfers(ri.Type))
			continue
		}
		li := x.Items[i]
		if li.Optional && !ri.Optional {
			return False, nil
		}
		o, b := relate(li.Type, ri.Type, ls, rs)
		if !pass(o) {
			return False, nil
		}
		found = found.Merge(b)
	}
	return True, found
}

// relateSignature checks parameters contravariantly and the result
// covariantly. The left signature may declare fewer parameters.
func relateSignature(lParams, rParams []ir.Slot, lRet, rRet ir.Node, ls, rs cyclic.Scope) (Outcome, Bindings) {
	var found Bindings
	for i, lp := range lParams {
		if i >= len(rParams) {
			if !lp.Optional {
				return False, nil
			}
			continue
		}
		rp := rParams[i]
		if inf, ok := rp.Type.(*ir.Infer); ok {
			found = found.Merge(Bindings{inf.Name: lp.Type})
			continue
		}
		o, b := relate(rp.Type, lp.Type, rs, ls)
		if !pass(o) {
			return False, nil
		}
		found = found.Merge(b)
	}
	for i := len(lParams); i < len(rParams); i++ {
		found = found.Merge(unknownInfers(rParams[i].Type))
	}
	o, b := relate(lRet, rRet, ls, rs)
	if !pass(o) {
		return False, nil
	}
	return True, found.Merge(b)
}
