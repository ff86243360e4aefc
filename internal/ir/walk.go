package ir

// Rewrite returns a copy of n with fn applied top-down. When fn returns
// (replacement, true) the replacement is used as-is and its children are not
// visited; otherwise Rewrite descends into the children of the original
// node. Subtrees that do not change are shared, never copied.
//
// Cyclic definitions are rewritten like any other child; callers that need
// lexical scoping (parameter shadowing) handle Generic and Mapped in fn.
func Rewrite(n Node, fn func(Node) (Node, bool)) Node {
	if n == nil {
		return nil
	}
	if out, done := fn(n); done {
		return out
	}
	rw := func(c Node) Node { return Rewrite(c, fn) }

	switch x := n.(type) {
	case *Not:
		if inner := rw(x.Inner); inner != x.Inner {
			return &Not{Inner: inner}
		}
	case *Array:
		if item := rw(x.Item); item != x.Item {
			return &Array{Item: item}
		}
	case *Tuple:
		if items, changed := rewriteSlots(x.Items, rw); changed {
			return &Tuple{Items: items}
		}
	case *Object:
		props := make([]Property, len(x.Properties))
		changed := false
		for i, p := range x.Properties {
			props[i] = p
			if t := rw(p.Type); t != p.Type {
				props[i].Type = t
				changed = true
			}
		}
		add := x.Additional
		if add.Schema != nil {
			if s := rw(add.Schema); s != add.Schema {
				add.Schema = s
				changed = true
			}
		}
		if changed {
			return &Object{Properties: props, Additional: add}
		}
	case *Record:
		k, v := rw(x.Key), rw(x.Value)
		if k != x.Key || v != x.Value {
			return &Record{Key: k, Value: v}
		}
	case *Union:
		if members, changed := rewriteNodes(x.Members, rw); changed {
			return &Union{Members: members}
		}
	case *Intersect:
		if members, changed := rewriteNodes(x.Members, rw); changed {
			return &Intersect{Members: members}
		}
	case *Function:
		params, changed := rewriteSlots(x.Params, rw)
		ret := rw(x.Returns)
		if changed || ret != x.Returns {
			return &Function{Params: params, Returns: ret}
		}
	case *Constructor:
		params, changed := rewriteSlots(x.Params, rw)
		inst := rw(x.Instance)
		if changed || inst != x.Instance {
			return &Constructor{Params: params, Instance: inst}
		}
	case *Promise:
		if item := rw(x.Item); item != x.Item {
			return &Promise{Item: item}
		}
	case *Iterator:
		if item := rw(x.Item); item != x.Item {
			return &Iterator{Item: item}
		}
	case *AsyncIterator:
		if item := rw(x.Item); item != x.Item {
			return &AsyncIterator{Item: item}
		}
	case *Cyclic:
		defs := make(map[string]Node, len(x.Defs))
		changed := false
		for name, def := range x.Defs {
			defs[name] = rw(def)
			if defs[name] != def {
				changed = true
			}
		}
		if changed {
			return &Cyclic{Defs: defs, Root: x.Root}
		}
	case *Infer:
		if x.Constraint != nil {
			if c := rw(x.Constraint); c != x.Constraint {
				return &Infer{Name: x.Name, Constraint: c}
			}
		}
	case *Generic:
		params := make([]Param, len(x.Params))
		changed := false
		for i, p := range x.Params {
			params[i] = p
			if p.Constraint != nil {
				if c := rw(p.Constraint); c != p.Constraint {
					params[i].Constraint = c
					changed = true
				}
			}
			if p.Default != nil {
				if d := rw(p.Default); d != p.Default {
					params[i].Default = d
					changed = true
				}
			}
		}
		body := rw(x.Body)
		if changed || body != x.Body {
			return &Generic{Params: params, Body: body}
		}
	case *Call:
		target := rw(x.Target)
		args, changed := rewriteNodes(x.Args, rw)
		if changed || target != x.Target {
			return &Call{Target: target, Args: args}
		}
	case *Mapped:
		domain, value := rw(x.Domain), rw(x.Value)
		var remap Node
		if x.Remap != nil {
			remap = rw(x.Remap)
		}
		if domain != x.Domain || value != x.Value || remap != x.Remap {
			return &Mapped{Key: x.Key, Domain: domain, Remap: remap, Value: value}
		}
	case *KeyOf:
		if inner := rw(x.Inner); inner != x.Inner {
			return &KeyOf{Inner: inner}
		}
	case *Index:
		obj, key := rw(x.Object), rw(x.Key)
		if obj != x.Object || key != x.Key {
			return &Index{Object: obj, Key: key}
		}
	case *Optional:
		if inner := rw(x.Inner); inner != x.Inner {
			return &Optional{Inner: inner, Action: x.Action}
		}
	case *Readonly:
		if inner := rw(x.Inner); inner != x.Inner {
			return &Readonly{Inner: inner, Action: x.Action}
		}
	}
	return n
}

func rewriteNodes(nodes []Node, rw func(Node) Node) ([]Node, bool) {
	out := make([]Node, len(nodes))
	changed := false
	for i, n := range nodes {
		out[i] = rw(n)
		if out[i] != n {
			changed = true
		}
	}
	return out, changed
}

func rewriteSlots(slots []Slot, rw func(Node) Node) ([]Slot, bool) {
	out := make([]Slot, len(slots))
	changed := false
	for i, s := range slots {
		out[i] = s
		if t := rw(s.Type); t != s.Type {
			out[i].Type = t
			changed = true
		}
	}
	return out, changed
}

// Walk calls fn for n and every descendant in pre-order. Returning false
// from fn skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	Rewrite(n, func(c Node) (Node, bool) {
		return c, !fn(c)
	})
}
