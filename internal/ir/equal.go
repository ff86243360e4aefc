package ir

// Equal reports whether two descriptors are structurally identical.
//
// Object properties compare as a set keyed by name (declaration order is
// not significant); union, intersect, tuple and parameter order is.
// Cyclic definitions compare by name and body; no resolution happens here.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case Any, Unknown, Never, Void, Null, Undefined, Boolean, Number, Integer, BigInt, String:
		return true
	case Literal:
		return x == b.(Literal)
	case Ref:
		return x == b.(Ref)
	case *Not:
		return Equal(x.Inner, b.(*Not).Inner)
	case *Array:
		return Equal(x.Item, b.(*Array).Item)
	case *Tuple:
		return equalSlots(x.Items, b.(*Tuple).Items)
	case *Object:
		return equalObjects(x, b.(*Object))
	case *Record:
		y := b.(*Record)
		return Equal(x.Key, y.Key) && Equal(x.Value, y.Value)
	case *Union:
		return equalNodes(x.Members, b.(*Union).Members)
	case *Intersect:
		return equalNodes(x.Members, b.(*Intersect).Members)
	case *Function:
		y := b.(*Function)
		return equalSlots(x.Params, y.Params) && Equal(x.Returns, y.Returns)
	case *Constructor:
		y := b.(*Constructor)
		return equalSlots(x.Params, y.Params) && Equal(x.Instance, y.Instance)
	case *Promise:
		return Equal(x.Item, b.(*Promise).Item)
	case *Iterator:
		return Equal(x.Item, b.(*Iterator).Item)
	case *AsyncIterator:
		return Equal(x.Item, b.(*AsyncIterator).Item)
	case *TemplateLiteral:
		return equalSegments(x.Pattern, b.(*TemplateLiteral).Pattern)
	case *Cyclic:
		y := b.(*Cyclic)
		if x.Root != y.Root || len(x.Defs) != len(y.Defs) {
			return false
		}
		for name, def := range x.Defs {
			other, ok := y.Defs[name]
			if !ok || !Equal(def, other) {
				return false
			}
		}
		return true
	case *Infer:
		y := b.(*Infer)
		return x.Name == y.Name && Equal(x.Constraint, y.Constraint)
	case *Generic:
		y := b.(*Generic)
		if len(x.Params) != len(y.Params) {
			return false
		}
		for i := range x.Params {
			p, q := x.Params[i], y.Params[i]
			if p.Name != q.Name || !Equal(p.Constraint, q.Constraint) || !Equal(p.Default, q.Default) {
				return false
			}
		}
		return Equal(x.Body, y.Body)
	case *Call:
		y := b.(*Call)
		return Equal(x.Target, y.Target) && equalNodes(x.Args, y.Args)
	case *Mapped:
		y := b.(*Mapped)
		return x.Key == y.Key && Equal(x.Domain, y.Domain) && Equal(x.Remap, y.Remap) && Equal(x.Value, y.Value)
	case *KeyOf:
		return Equal(x.Inner, b.(*KeyOf).Inner)
	case *Index:
		y := b.(*Index)
		return Equal(x.Object, y.Object) && Equal(x.Key, y.Key)
	case *Optional:
		y := b.(*Optional)
		return x.Action == y.Action && Equal(x.Inner, y.Inner)
	case *Readonly:
		y := b.(*Readonly)
		return x.Action == y.Action && Equal(x.Inner, y.Inner)
	}
	return false
}

func equalNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalSlots(a, b []Slot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Optional != b[i].Optional || a[i].Readonly != b[i].Readonly || !Equal(a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}

func equalObjects(a, b *Object) bool {
	if len(a.Properties) != len(b.Properties) {
		return false
	}
	if a.Additional.Policy != b.Additional.Policy || !Equal(a.Additional.Schema, b.Additional.Schema) {
		return false
	}
	for _, p := range a.Properties {
		q, ok := b.Property(p.Name)
		if !ok || p.Optional != q.Optional || p.Readonly != q.Readonly || !Equal(p.Type, q.Type) {
			return false
		}
	}
	return true
}
