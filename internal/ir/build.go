package ir

// Constructors for composite descriptors. Modifier wrappers (Optional,
// Readonly) passed to NewObject/NewTuple/NewFunction are folded into slot
// flags, so Prop("x", Opt(String{})) yields an optional property of type
// string.

// Prop creates an object property, folding modifier wrappers into flags.
func Prop(name string, t Node) Property {
	return Property{Name: name, Slot: SlotOf(t)}
}

// SlotOf strips Optional/Readonly wrappers from t and records them as flags.
func SlotOf(t Node) Slot {
	var s Slot
	for {
		switch w := t.(type) {
		case *Optional:
			s.Optional = w.Action == ActionAdd
			t = w.Inner
			continue
		case *Readonly:
			s.Readonly = w.Action == ActionAdd
			t = w.Inner
			continue
		}
		s.Type = t
		return s
	}
}

// NewObject creates an open object from properties.
func NewObject(props ...Property) *Object {
	return &Object{Properties: props}
}

// NewClosedObject creates an object that admits no additional keys.
func NewClosedObject(props ...Property) *Object {
	return &Object{Properties: props, Additional: Additional{Policy: AdditionalClosed}}
}

// NewTuple creates a tuple, folding modifier wrappers into element flags.
func NewTuple(items ...Node) *Tuple {
	slots := make([]Slot, len(items))
	for i, item := range items {
		slots[i] = SlotOf(item)
	}
	return &Tuple{Items: slots}
}

// NewArray creates an array of item.
func NewArray(item Node) *Array { return &Array{Item: item} }

// NewRecord creates a record from a key pattern and value.
func NewRecord(key, value Node) *Record { return &Record{Key: key, Value: value} }

// NewUnion creates a union with members exactly as given.
func NewUnion(members ...Node) *Union { return &Union{Members: members} }

// NewIntersect creates an intersection with members exactly as given.
func NewIntersect(members ...Node) *Intersect { return &Intersect{Members: members} }

// NewNot negates inner.
func NewNot(inner Node) *Not { return &Not{Inner: inner} }

// NewFunction creates a function signature.
func NewFunction(params []Node, returns Node) *Function {
	return &Function{Params: slotsOf(params), Returns: returns}
}

// NewConstructor creates a constructor signature.
func NewConstructor(params []Node, instance Node) *Constructor {
	return &Constructor{Params: slotsOf(params), Instance: instance}
}

func slotsOf(nodes []Node) []Slot {
	slots := make([]Slot, len(nodes))
	for i, n := range nodes {
		slots[i] = SlotOf(n)
	}
	return slots
}

// NewPromise, NewIterator and NewAsyncIterator wrap item.
func NewPromise(item Node) *Promise             { return &Promise{Item: item} }
func NewIterator(item Node) *Iterator           { return &Iterator{Item: item} }
func NewAsyncIterator(item Node) *AsyncIterator { return &AsyncIterator{Item: item} }

// NewTemplate creates a template literal over a parsed pattern.
func NewTemplate(p Pattern) *TemplateLiteral { return &TemplateLiteral{Pattern: p} }

// NewCyclic creates a cyclic definition set rooted at root.
func NewCyclic(defs map[string]Node, root string) *Cyclic {
	return &Cyclic{Defs: defs, Root: root}
}

// NewInfer creates an inference variable. constraint may be nil.
func NewInfer(name string, constraint Node) *Infer {
	return &Infer{Name: name, Constraint: constraint}
}

// NewGeneric creates a generic template.
func NewGeneric(params []Param, body Node) *Generic {
	return &Generic{Params: params, Body: body}
}

// NewCall applies target to args.
func NewCall(target Node, args ...Node) *Call {
	return &Call{Target: target, Args: args}
}

// NewMapped creates a mapped type. remap may be nil.
func NewMapped(key string, domain, remap, value Node) *Mapped {
	return &Mapped{Key: key, Domain: domain, Remap: remap, Value: value}
}

// NewKeyOf creates a key-of expression.
func NewKeyOf(inner Node) *KeyOf { return &KeyOf{Inner: inner} }

// NewIndex creates an indexed access.
func NewIndex(object, key Node) *Index { return &Index{Object: object, Key: key} }

// Opt marks inner optional.
func Opt(inner Node) *Optional { return &Optional{Inner: inner, Action: ActionAdd} }

// Required strips the optional flag from inner.
func Required(inner Node) *Optional { return &Optional{Inner: inner, Action: ActionRemove} }

// RO marks inner readonly.
func RO(inner Node) *Readonly { return &Readonly{Inner: inner, Action: ActionAdd} }

// Mutable strips the readonly flag from inner.
func Mutable(inner Node) *Readonly { return &Readonly{Inner: inner, Action: ActionRemove} }

// UnionOf builds a normalized union: nested unions are flattened, Never
// members dropped and structural duplicates removed. An empty result is
// Never and a single member is returned unwrapped.
func UnionOf(members ...Node) Node {
	var flat []Node
	var add func(Node)
	add = func(n Node) {
		switch m := n.(type) {
		case *Union:
			for _, inner := range m.Members {
				add(inner)
			}
		case Never:
		default:
			for _, seen := range flat {
				if Equal(seen, n) {
					return
				}
			}
			flat = append(flat, n)
		}
	}
	for _, m := range members {
		add(m)
	}
	switch len(flat) {
	case 0:
		return Never{}
	case 1:
		return flat[0]
	}
	return &Union{Members: flat}
}

// LiteralUnion builds a union of string literals, normalized like UnionOf.
func LiteralUnion(keys ...string) Node {
	members := make([]Node, len(keys))
	for i, k := range keys {
		members[i] = StringLit(k)
	}
	return UnionOf(members...)
}
