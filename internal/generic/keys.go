package generic

import (
	"strconv"

	"github.com/roach88/typerel/internal/engine"
	"github.com/roach88/typerel/internal/ir"
	"github.com/roach88/typerel/internal/pattern"
)

// KeyOf returns the key domain of a concrete node:
//
//   - Object: the union of its property names, plus String when extra keys
//     are admitted by a schema
//   - Tuple: the string indices "0".."n-1"
//   - Array: Number
//   - Record: its key pattern, expanded when it is a finite template
//   - Union: the keys common to every member
//   - Intersect: the keys of any member
//   - Any: String | Number
//
// It reports false for anything else.
func KeyOf(n ir.Node) (ir.Node, bool) {
	switch x := n.(type) {
	case *ir.Object:
		keys := ir.LiteralUnion(x.Keys()...)
		if x.Additional.Policy == ir.AdditionalSchema {
			return ir.UnionOf(keys, ir.String{}), true
		}
		return keys, true
	case *ir.Tuple:
		keys := make([]string, len(x.Items))
		for i := range x.Items {
			keys[i] = strconv.Itoa(i)
		}
		return ir.LiteralUnion(keys...), true
	case *ir.Array:
		return ir.Number{}, true
	case *ir.Record:
		if t, ok := x.Key.(*ir.TemplateLiteral); ok && pattern.IsFinite(t.Pattern) {
			if u, err := pattern.ToUnion(t.Pattern); err == nil {
				return u, true
			}
		}
		return x.Key, true
	case *ir.Union:
		return commonKeys(x.Members)
	case *ir.Intersect:
		var all []ir.Node
		for _, m := range x.Members {
			keys, ok := KeyOf(m)
			if !ok {
				return nil, false
			}
			all = append(all, keys)
		}
		return ir.UnionOf(all...), true
	case ir.Any:
		return ir.UnionOf(ir.String{}, ir.Number{}), true
	}
	return nil, false
}

func commonKeys(members []ir.Node) (ir.Node, bool) {
	var common []ir.Literal
	for i, m := range members {
		keys, ok := KeyOf(m)
		if !ok {
			return nil, false
		}
		lits, ok := literals(keys)
		if !ok {
			return nil, false
		}
		if i == 0 {
			common = lits
			continue
		}
		kept := common[:0:0]
		for _, c := range common {
			for _, l := range lits {
				if c == l {
					kept = append(kept, c)
					break
				}
			}
		}
		common = kept
	}
	nodes := make([]ir.Node, len(common))
	for i, l := range common {
		nodes[i] = l
	}
	return ir.UnionOf(nodes...), true
}

// literals flattens a key domain into literals. Finite templates are
// expanded; any other member makes the domain non-finite.
func literals(n ir.Node) ([]ir.Literal, bool) {
	switch x := n.(type) {
	case ir.Never:
		return nil, true
	case ir.Literal:
		return []ir.Literal{x}, true
	case *ir.TemplateLiteral:
		strs, err := pattern.Generate(x.Pattern)
		if err != nil {
			return nil, false
		}
		out := make([]ir.Literal, len(strs))
		for i, s := range strs {
			out[i] = ir.StringLit(s)
		}
		return out, true
	case *ir.Union:
		var out []ir.Literal
		for _, m := range x.Members {
			lits, ok := literals(m)
			if !ok {
				return nil, false
			}
			out = append(out, lits...)
		}
		return out, true
	}
	return nil, false
}

// Index returns the type of obj[key] for concrete operands. Union keys and
// finite template keys distribute; a union object distributes over its
// members. An optional property reads as its type or Undefined. It reports
// false when the access cannot be decided.
func Index(obj, key ir.Node) (ir.Node, bool) {
	switch k := key.(type) {
	case *ir.Union:
		return indexEach(obj, k.Members)
	case *ir.TemplateLiteral:
		if pattern.IsFinite(k.Pattern) {
			u, err := pattern.ToUnion(k.Pattern)
			if err != nil {
				return nil, false
			}
			return Index(obj, u)
		}
	}

	switch o := obj.(type) {
	case *ir.Object:
		return indexObject(o, key)
	case *ir.Tuple:
		return indexTuple(o, key)
	case *ir.Array:
		switch k := key.(type) {
		case ir.Number, ir.Integer:
			return o.Item, true
		case ir.Literal:
			if k.IsInteger() && k.Num >= 0 {
				return o.Item, true
			}
		}
	case *ir.Record:
		if engine.ExtendsCheck(key, o.Key).IsTrue() {
			return o.Value, true
		}
	case *ir.Union:
		out := make([]ir.Node, 0, len(o.Members))
		for _, m := range o.Members {
			v, ok := Index(m, key)
			if !ok {
				return nil, false
			}
			out = append(out, v)
		}
		return ir.UnionOf(out...), true
	case *ir.Intersect:
		var found []ir.Node
		for _, m := range o.Members {
			if v, ok := Index(m, key); ok {
				found = append(found, v)
			}
		}
		switch len(found) {
		case 0:
			return nil, false
		case 1:
			return found[0], true
		}
		return ir.NewIntersect(found...), true
	case ir.Any:
		return ir.Any{}, true
	}
	return nil, false
}

func indexEach(obj ir.Node, keys []ir.Node) (ir.Node, bool) {
	out := make([]ir.Node, 0, len(keys))
	for _, k := range keys {
		v, ok := Index(obj, k)
		if !ok {
			return nil, false
		}
		out = append(out, v)
	}
	return ir.UnionOf(out...), true
}

func slotType(s ir.Slot) ir.Node {
	if s.Optional {
		return ir.UnionOf(s.Type, ir.Undefined{})
	}
	return s.Type
}

func indexObject(o *ir.Object, key ir.Node) (ir.Node, bool) {
	switch k := key.(type) {
	case ir.Literal:
		if p, ok := o.Property(k.Key()); ok {
			return slotType(p.Slot), true
		}
		if o.Additional.Policy == ir.AdditionalSchema {
			return o.Additional.Schema, true
		}
	case ir.String:
		out := make([]ir.Node, 0, len(o.Properties)+1)
		for _, p := range o.Properties {
			out = append(out, slotType(p.Slot))
		}
		if o.Additional.Policy == ir.AdditionalSchema {
			out = append(out, o.Additional.Schema)
		}
		return ir.UnionOf(out...), true
	}
	return nil, false
}

func indexTuple(t *ir.Tuple, key ir.Node) (ir.Node, bool) {
	switch k := key.(type) {
	case ir.Number, ir.Integer:
		out := make([]ir.Node, len(t.Items))
		for i, item := range t.Items {
			out[i] = slotType(item)
		}
		return ir.UnionOf(out...), true
	case ir.Literal:
		i := -1
		switch k.Of {
		case ir.LiteralNumber:
			if k.IsInteger() {
				i = int(k.Num)
			}
		case ir.LiteralString:
			if n, err := strconv.Atoi(k.Str); err == nil && strconv.Itoa(n) == k.Str {
				i = n
			}
		}
		if i >= 0 && i < len(t.Items) {
			return slotType(t.Items[i]), true
		}
	}
	return nil, false
}
