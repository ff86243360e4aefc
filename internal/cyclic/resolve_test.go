package cyclic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/typerel/internal/ir"
)

func listDefs() map[string]ir.Node {
	return map[string]ir.Node{
		"List": ir.NewObject(
			ir.Prop("value", ir.Number{}),
			ir.Prop("next", ir.NewUnion(ir.Ref{Name: "List"}, ir.Null{})),
		),
	}
}

func TestResolveRefEntersDefinition(t *testing.T) {
	s := NewScope(listDefs())

	n, inner := Resolve(ir.Ref{Name: "List"}, s, Operand)
	assert.Equal(t, ir.KindObject, n.Kind())
	assert.True(t, inner.Visiting("List"))
	assert.False(t, s.Visiting("List"), "outer scope is unchanged")
}

func TestResolveCycleYieldsPlaceholder(t *testing.T) {
	s := NewScope(listDefs()).Enter("List")

	n, _ := Resolve(ir.Ref{Name: "List"}, s, Operand)
	assert.Equal(t, ir.Any{}, n)

	n, _ = Resolve(ir.Ref{Name: "List"}, s, Target)
	assert.Equal(t, ir.Unknown{}, n)
}

func TestResolveUndefined(t *testing.T) {
	n, _ := Resolve(ir.Ref{Name: "Missing"}, NewScope(nil), Operand)
	assert.Equal(t, ir.Any{}, n)

	n, _ = Resolve(ir.Ref{Name: "Missing"}, NewScope(nil), Target)
	assert.Equal(t, ir.Unknown{}, n)
}

func TestResolveRefChain(t *testing.T) {
	defs := map[string]ir.Node{
		"A": ir.Ref{Name: "B"},
		"B": ir.Ref{Name: "C"},
		"C": ir.String{},
	}
	n, s := Resolve(ir.Ref{Name: "A"}, NewScope(defs), Operand)
	assert.Equal(t, ir.String{}, n)
	assert.Equal(t, []string{"A", "B", "C"}, s.Path())
}

func TestResolveMutualChainTerminates(t *testing.T) {
	defs := map[string]ir.Node{
		"A": ir.Ref{Name: "B"},
		"B": ir.Ref{Name: "C"},
		"C": ir.Ref{Name: "A"},
	}
	n, _ := Resolve(ir.Ref{Name: "A"}, NewScope(defs), Target)
	assert.Equal(t, ir.Unknown{}, n)
}

func TestResolveCyclic(t *testing.T) {
	c := ir.NewCyclic(listDefs(), "List")

	n, s := Resolve(c, NewScope(nil), Operand)
	obj, ok := n.(*ir.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"value", "next"}, obj.Keys())

	next, _ := obj.Property("next")
	u := next.Type.(*ir.Union)
	back, _ := Resolve(u.Members[0], s, Operand)
	assert.Equal(t, ir.Any{}, back)
}

func TestResolveCyclicMissingRoot(t *testing.T) {
	c := ir.NewCyclic(listDefs(), "Nope")
	for _, pos := range []Position{Operand, Target} {
		n, _ := Resolve(c, NewScope(nil), pos)
		assert.Equal(t, ir.Unknown{}, n, pos.String())
	}
}

func TestResolveCyclicShadowsOuterDefs(t *testing.T) {
	outer := NewScope(map[string]ir.Node{"T": ir.Number{}, "U": ir.Boolean{}})
	c := ir.NewCyclic(map[string]ir.Node{"T": ir.Ref{Name: "U"}}, "T")

	n, _ := Resolve(c, outer, Operand)
	assert.Equal(t, ir.Boolean{}, n)
}

func TestResolveConcreteIsIdentity(t *testing.T) {
	in := ir.NewArray(ir.String{})
	n, s := Resolve(in, NewScope(nil), Operand)
	assert.Same(t, in, n)
	assert.Empty(t, s.Path())
}

func TestDeref(t *testing.T) {
	defs := map[string]ir.Node{
		"Alias": ir.Ref{Name: "Box"},
		"Box":   ir.NewGeneric([]ir.Param{{Name: "T"}}, ir.NewArray(ir.Ref{Name: "T"})),
		"Loop":  ir.Ref{Name: "Loop"},
	}

	n, ok := Deref(defs, ir.Ref{Name: "Alias"})
	require.True(t, ok)
	assert.Equal(t, ir.KindGeneric, n.Kind())

	_, ok = Deref(defs, ir.Ref{Name: "Loop"})
	assert.False(t, ok)

	_, ok = Deref(defs, ir.Ref{Name: "Missing"})
	assert.False(t, ok)

	n, ok = Deref(nil, ir.String{})
	require.True(t, ok)
	assert.Equal(t, ir.String{}, n)
}

func TestReferences(t *testing.T) {
	n := ir.NewUnion(
		ir.Ref{Name: "B"},
		ir.NewArray(ir.Ref{Name: "A"}),
		ir.NewObject(ir.Prop("x", ir.Ref{Name: "B"})),
	)
	assert.Equal(t, []string{"A", "B"}, References(n))
	assert.Empty(t, References(ir.String{}))
}

func TestUnfold(t *testing.T) {
	c := ir.NewCyclic(listDefs(), "List")

	out := Unfold(c)
	expected := ir.NewObject(
		ir.Prop("value", ir.Number{}),
		ir.Prop("next", ir.NewUnion(c, ir.Null{})),
	)
	assert.True(t, ir.Equal(expected, out), ir.Format(out))

	assert.Equal(t, ir.Unknown{}, Unfold(ir.NewCyclic(listDefs(), "Nope")))
}

func TestFollowEntersNames(t *testing.T) {
	defs := map[string]ir.Node{
		"A": ir.Ref{Name: "B"},
		"B": ir.NewArray(ir.Ref{Name: "A"}),
	}
	n, s, ok := Follow(ir.Ref{Name: "A"}, NewScope(defs))
	require.True(t, ok)
	assert.Equal(t, ir.KindArray, n.Kind())
	assert.Equal(t, []string{"A", "B"}, s.Path())

	_, _, ok = Follow(ir.Ref{Name: "A"}, s)
	assert.False(t, ok, "re-entering a visiting name")
}
