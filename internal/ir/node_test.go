package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindRoundTrip(t *testing.T) {
	for k := KindAny; k <= KindReadonly; k++ {
		name := k.String()
		assert.NotEqual(t, "invalid", name)
		got, ok := ParseKind(name)
		assert.True(t, ok, name)
		assert.Equal(t, k, got)
	}
	assert.Equal(t, "invalid", Kind(-1).String())

	_, ok := ParseKind("bogus")
	assert.False(t, ok)
}

func TestLiteralKey(t *testing.T) {
	assert.Equal(t, "a", StringLit("a").Key())
	assert.Equal(t, "1", NumberLit(1).Key())
	assert.Equal(t, "0.25", NumberLit(0.25).Key())
	assert.Equal(t, "false", BoolLit(false).Key())
	assert.Equal(t, "10", BigIntLit("10").Key())
}

func TestLiteralIsInteger(t *testing.T) {
	assert.True(t, NumberLit(3).IsInteger())
	assert.False(t, NumberLit(3.5).IsInteger())
	assert.False(t, StringLit("3").IsInteger())
}

func TestSlotFolding(t *testing.T) {
	p := Prop("x", RO(Opt(String{})))
	assert.Equal(t, "x", p.Name)
	assert.True(t, p.Optional)
	assert.True(t, p.Readonly)
	assert.Equal(t, String{}, p.Type)

	s := SlotOf(Required(Mutable(Number{})))
	assert.False(t, s.Optional)
	assert.False(t, s.Readonly)
	assert.Equal(t, Number{}, s.Type)
}

func TestTupleRequiredLen(t *testing.T) {
	tup := NewTuple(String{}, Number{}, Opt(Boolean{}))
	assert.Equal(t, 2, tup.RequiredLen())
	assert.Equal(t, 0, NewTuple().RequiredLen())
}

func TestObjectLookup(t *testing.T) {
	obj := NewObject(Prop("b", String{}), Prop("a", Number{}))
	assert.Equal(t, []string{"b", "a"}, obj.Keys())

	p, ok := obj.Property("a")
	assert.True(t, ok)
	assert.Equal(t, Number{}, p.Type)

	_, ok = obj.Property("c")
	assert.False(t, ok)
}

func TestUnionOf(t *testing.T) {
	tests := []struct {
		name     string
		members  []Node
		expected Node
	}{
		{"empty", nil, Never{}},
		{"single", []Node{String{}}, String{}},
		{"drops never", []Node{Never{}, String{}}, String{}},
		{"flattens", []Node{NewUnion(String{}, Number{}), Boolean{}}, NewUnion(String{}, Number{}, Boolean{})},
		{"dedupes", []Node{StringLit("a"), StringLit("a"), StringLit("b")}, NewUnion(StringLit("a"), StringLit("b"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Equal(tt.expected, UnionOf(tt.members...)), Format(UnionOf(tt.members...)))
		})
	}
}

func TestLiteralUnion(t *testing.T) {
	assert.True(t, Equal(NewUnion(StringLit("x"), StringLit("y")), LiteralUnion("x", "y", "x")))
	assert.Equal(t, Never{}, LiteralUnion())
}
