package ir

import (
	"math"
	"strconv"
)

// Kind identifies the variant of a descriptor node.
type Kind int

const (
	KindAny Kind = iota
	KindUnknown
	KindNever
	KindVoid
	KindNull
	KindUndefined
	KindBoolean
	KindNumber
	KindInteger
	KindBigInt
	KindString
	KindLiteral
	KindNot
	KindArray
	KindTuple
	KindObject
	KindRecord
	KindUnion
	KindIntersect
	KindFunction
	KindConstructor
	KindPromise
	KindIterator
	KindAsyncIterator
	KindTemplateLiteral
	KindRef
	KindCyclic
	KindInfer
	KindGeneric
	KindCall
	KindMapped
	KindKeyOf
	KindIndex
	KindOptional
	KindReadonly
)

var kindNames = [...]string{
	KindAny:             "any",
	KindUnknown:         "unknown",
	KindNever:           "never",
	KindVoid:            "void",
	KindNull:            "null",
	KindUndefined:       "undefined",
	KindBoolean:         "boolean",
	KindNumber:          "number",
	KindInteger:         "integer",
	KindBigInt:          "bigint",
	KindString:          "string",
	KindLiteral:         "literal",
	KindNot:             "not",
	KindArray:           "array",
	KindTuple:           "tuple",
	KindObject:          "object",
	KindRecord:          "record",
	KindUnion:           "union",
	KindIntersect:       "intersect",
	KindFunction:        "function",
	KindConstructor:     "constructor",
	KindPromise:         "promise",
	KindIterator:        "iterator",
	KindAsyncIterator:   "asyncIterator",
	KindTemplateLiteral: "template",
	KindRef:             "ref",
	KindCyclic:          "cyclic",
	KindInfer:           "infer",
	KindGeneric:         "generic",
	KindCall:            "call",
	KindMapped:          "mapped",
	KindKeyOf:           "keyof",
	KindIndex:           "index",
	KindOptional:        "optional",
	KindReadonly:        "readonly",
}

// String returns the wire name of the kind, as used in the "kind" field of
// encoded descriptors.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

// ParseKind maps a wire name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// Node is a sealed interface implemented by every descriptor variant.
type Node interface {
	Kind() Kind
	node() // Sealed - only types in this package implement it
}

// Keyword types carry no data and are compared by kind alone.
type (
	Any       struct{}
	Unknown   struct{}
	Never     struct{}
	Void      struct{}
	Null      struct{}
	Undefined struct{}
	Boolean   struct{}
	Number    struct{}
	Integer   struct{}
	BigInt    struct{}
	String    struct{}
)

func (Any) Kind() Kind       { return KindAny }
func (Unknown) Kind() Kind   { return KindUnknown }
func (Never) Kind() Kind     { return KindNever }
func (Void) Kind() Kind      { return KindVoid }
func (Null) Kind() Kind      { return KindNull }
func (Undefined) Kind() Kind { return KindUndefined }
func (Boolean) Kind() Kind   { return KindBoolean }
func (Number) Kind() Kind    { return KindNumber }
func (Integer) Kind() Kind   { return KindInteger }
func (BigInt) Kind() Kind    { return KindBigInt }
func (String) Kind() Kind    { return KindString }

func (Any) node()       {}
func (Unknown) node()   {}
func (Never) node()     {}
func (Void) node()      {}
func (Null) node()      {}
func (Undefined) node() {}
func (Boolean) node()   {}
func (Number) node()    {}
func (Integer) node()   {}
func (BigInt) node()    {}
func (String) node()    {}

// LiteralKind identifies the scalar carried by a Literal.
type LiteralKind int

const (
	LiteralString LiteralKind = iota
	LiteralNumber
	LiteralBoolean
	LiteralBigInt
)

// Literal is a single scalar value type. Literal is comparable with ==.
// BigInt literals keep their decimal digits in Str.
type Literal struct {
	Of   LiteralKind
	Str  string
	Num  float64
	Bool bool
}

func (Literal) Kind() Kind { return KindLiteral }
func (Literal) node()      {}

// StringLit creates a string literal.
func StringLit(s string) Literal { return Literal{Of: LiteralString, Str: s} }

// NumberLit creates a number literal.
func NumberLit(n float64) Literal { return Literal{Of: LiteralNumber, Num: n} }

// BoolLit creates a boolean literal.
func BoolLit(b bool) Literal { return Literal{Of: LiteralBoolean, Bool: b} }

// BigIntLit creates a bigint literal from its decimal digits.
func BigIntLit(digits string) Literal { return Literal{Of: LiteralBigInt, Str: digits} }

// Key returns the property-key spelling of the literal: strings as-is,
// numbers in shortest decimal form, booleans as "true"/"false".
func (l Literal) Key() string {
	switch l.Of {
	case LiteralNumber:
		return FormatNumber(l.Num)
	case LiteralBoolean:
		return strconv.FormatBool(l.Bool)
	default:
		return l.Str
	}
}

// IsInteger reports whether a number literal holds an integral value.
func (l Literal) IsInteger() bool {
	return l.Of == LiteralNumber && l.Num == math.Trunc(l.Num) && !math.IsInf(l.Num, 0)
}

// FormatNumber renders a float64 in the shortest form that round-trips.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Not is the logical negation of a descriptor.
type Not struct {
	Inner Node
}

func (*Not) Kind() Kind { return KindNot }
func (*Not) node()      {}

// Array is a variable-length sequence of Item.
type Array struct {
	Item Node
}

func (*Array) Kind() Kind { return KindArray }
func (*Array) node()      {}

// Slot is a typed position (object property, tuple element, parameter).
// Optional and Readonly are orthogonal.
type Slot struct {
	Type     Node
	Optional bool
	Readonly bool
}

// Tuple is a fixed-length sequence of slots.
type Tuple struct {
	Items []Slot
}

func (*Tuple) Kind() Kind { return KindTuple }
func (*Tuple) node()      {}

// RequiredLen returns the number of leading elements that are not optional.
func (t *Tuple) RequiredLen() int {
	n := 0
	for _, item := range t.Items {
		if item.Optional {
			break
		}
		n++
	}
	return n
}

// Property is a named object slot.
type Property struct {
	Name string
	Slot
}

// AdditionalPolicy controls keys beyond an object's declared properties.
type AdditionalPolicy int

const (
	AdditionalOpen   AdditionalPolicy = iota // extra keys of any type
	AdditionalClosed                         // no extra keys
	AdditionalSchema                         // extra keys must match Schema
)

// Additional is the additionalProperties policy of an Object.
type Additional struct {
	Policy AdditionalPolicy
	Schema Node // set only for AdditionalSchema
}

// Object is a set of named properties in declaration order.
type Object struct {
	Properties []Property
	Additional Additional
}

func (*Object) Kind() Kind { return KindObject }
func (*Object) node()      {}

// Property looks up a property by name.
func (o *Object) Property(name string) (Property, bool) {
	for _, p := range o.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Keys returns property names in declaration order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		keys[i] = p.Name
	}
	return keys
}

// Record maps every key matched by Key to Value.
type Record struct {
	Key   Node
	Value Node
}

func (*Record) Kind() Kind { return KindRecord }
func (*Record) node()      {}

// Union is an ordered disjunction of members.
type Union struct {
	Members []Node
}

func (*Union) Kind() Kind { return KindUnion }
func (*Union) node()      {}

// Intersect is an ordered conjunction of members.
type Intersect struct {
	Members []Node
}

func (*Intersect) Kind() Kind { return KindIntersect }
func (*Intersect) node()      {}

// Function is a call signature.
type Function struct {
	Params  []Slot
	Returns Node
}

func (*Function) Kind() Kind { return KindFunction }
func (*Function) node()      {}

// Constructor is a construct signature.
type Constructor struct {
	Params   []Slot
	Instance Node
}

func (*Constructor) Kind() Kind { return KindConstructor }
func (*Constructor) node()      {}

// Promise, Iterator and AsyncIterator wrap a single covariant item.
type (
	Promise       struct{ Item Node }
	Iterator      struct{ Item Node }
	AsyncIterator struct{ Item Node }
)

func (*Promise) Kind() Kind       { return KindPromise }
func (*Iterator) Kind() Kind      { return KindIterator }
func (*AsyncIterator) Kind() Kind { return KindAsyncIterator }
func (*Promise) node()            {}
func (*Iterator) node()           {}
func (*AsyncIterator) node()      {}

// TemplateLiteral is a string type described by a pattern.
type TemplateLiteral struct {
	Pattern Pattern
}

func (*TemplateLiteral) Kind() Kind { return KindTemplateLiteral }
func (*TemplateLiteral) node()      {}

// Ref names another descriptor. Ref is comparable with ==.
type Ref struct {
	Name string
}

func (Ref) Kind() Kind { return KindRef }
func (Ref) node()      {}

// Cyclic is a set of named, possibly self-referential definitions with a
// designated root.
type Cyclic struct {
	Defs map[string]Node
	Root string
}

func (*Cyclic) Kind() Kind { return KindCyclic }
func (*Cyclic) node()      {}

// Infer is an inference variable on the target side of a relation.
// Constraint is nil when unconstrained.
type Infer struct {
	Name       string
	Constraint Node
}

func (*Infer) Kind() Kind { return KindInfer }
func (*Infer) node()      {}

// Param is a generic type parameter. Constraint and Default may be nil.
type Param struct {
	Name       string
	Constraint Node
	Default    Node
}

// Generic is a parameterized template whose body references its
// parameters with Ref.
type Generic struct {
	Params []Param
	Body   Node
}

func (*Generic) Kind() Kind { return KindGeneric }
func (*Generic) node()      {}

// Call applies a generic target to arguments.
type Call struct {
	Target Node
	Args   []Node
}

func (*Call) Kind() Kind { return KindCall }
func (*Call) node()      {}

// Mapped builds an object by iterating Domain with Key bound to each key.
// Remap is nil when keys are emitted unchanged.
type Mapped struct {
	Key    string
	Domain Node
	Remap  Node
	Value  Node
}

func (*Mapped) Kind() Kind { return KindMapped }
func (*Mapped) node()      {}

// KeyOf is the key domain of Inner.
type KeyOf struct {
	Inner Node
}

func (*KeyOf) Kind() Kind { return KindKeyOf }
func (*KeyOf) node()      {}

// Index is the indexed access Object[Key].
type Index struct {
	Object Node
	Key    Node
}

func (*Index) Kind() Kind { return KindIndex }
func (*Index) node()      {}

// Action is a modifier action applied by Optional and Readonly wrappers.
type Action int

const (
	ActionAdd Action = iota
	ActionRemove
)

func (a Action) String() string {
	if a == ActionRemove {
		return "remove"
	}
	return "add"
}

// Optional marks Inner as an optional slot (ActionAdd) or strips the
// optional flag (ActionRemove).
type Optional struct {
	Inner  Node
	Action Action
}

func (*Optional) Kind() Kind { return KindOptional }
func (*Optional) node()      {}

// Readonly marks Inner as a readonly slot (ActionAdd) or strips the
// readonly flag (ActionRemove).
type Readonly struct {
	Inner  Node
	Action Action
}

func (*Readonly) Kind() Kind { return KindReadonly }
func (*Readonly) node()      {}
