package generic

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/typerel/internal/ir"
	"github.com/roach88/typerel/internal/pattern"
)

func assertNode(t *testing.T, want, got ir.Node) {
	t.Helper()
	assert.True(t, ir.Equal(want, got), "want %s\n got %s", ir.Format(want), ir.Format(got))
}

func param(name string, constraint ir.Node) ir.Param {
	return ir.Param{Name: name, Constraint: constraint}
}

func TestCallSubstitutesParameters(t *testing.T) {
	g := ir.NewGeneric([]ir.Param{param("T", nil)}, ir.NewArray(ir.Ref{Name: "T"}))

	got, err := Call(g, []ir.Node{ir.String{}})
	require.NoError(t, err)
	assertNode(t, ir.NewArray(ir.String{}), got)
}

func TestCallLeavesOtherRefs(t *testing.T) {
	g := ir.NewGeneric([]ir.Param{param("T", nil)},
		ir.NewObject(ir.Prop("v", ir.Ref{Name: "T"}), ir.Prop("o", ir.Ref{Name: "Other"})))

	got, err := Call(g, []ir.Node{ir.Number{}})
	require.NoError(t, err)
	assertNode(t, ir.NewObject(ir.Prop("v", ir.Number{}), ir.Prop("o", ir.Ref{Name: "Other"})), got)
}

func TestCallConstraint(t *testing.T) {
	g := ir.NewGeneric([]ir.Param{param("T", ir.String{})}, ir.NewArray(ir.Ref{Name: "T"}))

	t.Run("satisfied", func(t *testing.T) {
		got, err := Call(g, []ir.Node{ir.StringLit("a")})
		require.NoError(t, err)
		assertNode(t, ir.NewArray(ir.StringLit("a")), got)
	})

	t.Run("violated", func(t *testing.T) {
		_, err := Call(g, []ir.Node{ir.Number{}})
		require.Error(t, err)
		assert.True(t, IsConstraintError(err))
		assert.False(t, IsArityError(err))

		var ce *ConstraintError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, ErrCodeConstraintViolation, ce.Code)
		assert.Equal(t, "T", ce.Param)
		assertNode(t, ir.Number{}, ce.Arg)
		assertNode(t, ir.String{}, ce.Constraint)
		assert.Contains(t, err.Error(), "CONSTRAINT_VIOLATION")
	})

	t.Run("ambiguous passes", func(t *testing.T) {
		_, err := Call(g, []ir.Node{ir.Any{}})
		require.NoError(t, err)
	})
}

func TestCallArity(t *testing.T) {
	g := ir.NewGeneric([]ir.Param{
		param("K", nil),
		{Name: "V", Default: ir.NewArray(ir.Ref{Name: "K"})},
	}, ir.NewRecord(ir.Ref{Name: "K"}, ir.Ref{Name: "V"}))

	t.Run("default refers to earlier param", func(t *testing.T) {
		got, err := Call(g, []ir.Node{ir.String{}})
		require.NoError(t, err)
		assertNode(t, ir.NewRecord(ir.String{}, ir.NewArray(ir.String{})), got)
	})

	t.Run("too many", func(t *testing.T) {
		_, err := Call(g, []ir.Node{ir.String{}, ir.Number{}, ir.Null{}})
		assert.True(t, IsArityError(err))
	})

	t.Run("missing without default", func(t *testing.T) {
		_, err := Call(g, nil)
		require.True(t, IsArityError(err))
		var ce *ConstraintError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "K", ce.Param)
	})
}

func TestCallUnresolvedTargetIsDeferred(t *testing.T) {
	got, err := Call(ir.Ref{Name: "Box"}, []ir.Node{ir.String{}})
	require.NoError(t, err)
	assertNode(t, ir.NewCall(ir.Ref{Name: "Box"}, ir.String{}), got)
}

func TestCallNonGenericTargetIsDeferred(t *testing.T) {
	got, err := Call(ir.String{}, []ir.Node{ir.Number{}})
	require.NoError(t, err)
	assertNode(t, ir.NewCall(ir.String{}, ir.Number{}), got)
}

func TestCallTargetIsEvaluatedFirst(t *testing.T) {
	outer := ir.NewGeneric([]ir.Param{param("T", nil)},
		ir.NewGeneric([]ir.Param{param("U", nil)},
			ir.NewObject(ir.Prop("t", ir.Ref{Name: "T"}), ir.Prop("u", ir.Ref{Name: "U"}))))

	got, err := Call(ir.NewCall(outer, ir.String{}), []ir.Node{ir.Number{}})
	require.NoError(t, err)
	assertNode(t, ir.NewObject(ir.Prop("t", ir.String{}), ir.Prop("u", ir.Number{})), got)
}

func TestSubstituteShadowing(t *testing.T) {
	env := map[string]ir.Node{"T": ir.String{}, "K": ir.Number{}}

	t.Run("inner generic", func(t *testing.T) {
		inner := ir.NewGeneric([]ir.Param{param("T", nil)}, ir.NewTuple(ir.Ref{Name: "T"}, ir.Ref{Name: "K"}))
		got := Substitute(inner, env)
		want := ir.NewGeneric([]ir.Param{param("T", nil)}, ir.NewTuple(ir.Ref{Name: "T"}, ir.Number{}))
		assertNode(t, want, got)
	})

	t.Run("mapped key", func(t *testing.T) {
		m := ir.NewMapped("K", ir.Ref{Name: "K"}, nil, ir.NewTuple(ir.Ref{Name: "K"}, ir.Ref{Name: "T"}))
		got := Substitute(m, env)
		want := ir.NewMapped("K", ir.Number{}, nil, ir.NewTuple(ir.Ref{Name: "K"}, ir.String{}))
		assertNode(t, want, got)
	})

	t.Run("cyclic defs", func(t *testing.T) {
		c := ir.NewCyclic(map[string]ir.Node{
			"T": ir.NewArray(ir.Ref{Name: "T"}),
		}, "T")
		assertNode(t, c, Substitute(c, env))
	})
}

func TestSubstituteAvoidsCapture(t *testing.T) {
	t.Run("inner generic", func(t *testing.T) {
		inner := ir.NewGeneric([]ir.Param{param("U", nil)},
			ir.NewTuple(ir.Ref{Name: "T"}, ir.Ref{Name: "U"}))
		got := Substitute(inner, map[string]ir.Node{"T": ir.Ref{Name: "U"}})
		want := ir.NewGeneric([]ir.Param{param("U_1", nil)},
			ir.NewTuple(ir.Ref{Name: "U"}, ir.Ref{Name: "U_1"}))
		assertNode(t, want, got)
	})

	t.Run("fresh name skips names in use", func(t *testing.T) {
		inner := ir.NewGeneric([]ir.Param{param("U", nil)},
			ir.NewTuple(ir.Ref{Name: "T"}, ir.Ref{Name: "U"}, ir.Ref{Name: "U_1"}))
		got := Substitute(inner, map[string]ir.Node{"T": ir.Ref{Name: "U"}})
		want := ir.NewGeneric([]ir.Param{param("U_2", nil)},
			ir.NewTuple(ir.Ref{Name: "U"}, ir.Ref{Name: "U_2"}, ir.Ref{Name: "U_1"}))
		assertNode(t, want, got)
	})

	t.Run("mapped key", func(t *testing.T) {
		m := ir.NewMapped("K", ir.Ref{Name: "T"}, nil, ir.NewTuple(ir.Ref{Name: "K"}, ir.Ref{Name: "T"}))
		got := Substitute(m, map[string]ir.Node{"T": ir.Ref{Name: "K"}})
		want := ir.NewMapped("K_1", ir.Ref{Name: "K"}, nil, ir.NewTuple(ir.Ref{Name: "K_1"}, ir.Ref{Name: "K"}))
		assertNode(t, want, got)
	})

	t.Run("cyclic defs", func(t *testing.T) {
		c := ir.NewCyclic(map[string]ir.Node{
			"N": ir.NewTuple(ir.Ref{Name: "N"}, ir.Ref{Name: "T"}),
		}, "N")
		got := Substitute(c, map[string]ir.Node{"T": ir.Ref{Name: "N"}})
		want := ir.NewCyclic(map[string]ir.Node{
			"N_1": ir.NewTuple(ir.Ref{Name: "N_1"}, ir.Ref{Name: "N"}),
		}, "N_1")
		assertNode(t, want, got)
	})

	t.Run("unused replacement does not rename", func(t *testing.T) {
		inner := ir.NewGeneric([]ir.Param{param("U", nil)}, ir.NewArray(ir.Ref{Name: "U"}))
		got := Substitute(inner, map[string]ir.Node{"T": ir.Ref{Name: "U"}})
		assertNode(t, inner, got)
	})
}

func TestInstantiateAvoidsCapture(t *testing.T) {
	defs := map[string]ir.Node{
		"Outer": ir.NewGeneric([]ir.Param{param("T", nil)},
			ir.NewGeneric([]ir.Param{param("U", nil)},
				ir.NewObject(ir.Prop("t", ir.Ref{Name: "T"}), ir.Prop("u", ir.Ref{Name: "U"})))),
		"U": ir.String{},
	}

	got, err := Instantiate(defs, ir.NewCall(ir.NewCall(ir.Ref{Name: "Outer"}, ir.Ref{Name: "U"}), ir.Number{}))
	require.NoError(t, err)
	assertNode(t, ir.NewObject(ir.Prop("t", ir.Ref{Name: "U"}), ir.Prop("u", ir.Number{})), got)
}

func TestCallSelfApplicationStops(t *testing.T) {
	f := ir.Ref{Name: "F"}
	self := ir.NewGeneric([]ir.Param{param("F", nil)}, ir.NewCall(f, f))

	got, err := Call(self, []ir.Node{self})
	require.NoError(t, err)
	assertNode(t, ir.NewCall(self, self), got)

	x := ir.Ref{Name: "X"}
	growing := ir.NewGeneric([]ir.Param{param("F", nil), param("X", nil)}, ir.NewCall(f, f, ir.NewArray(x)))

	got, err = Call(growing, []ir.Node{growing, ir.String{}})
	require.NoError(t, err)
	assertNode(t, ir.NewCall(growing, growing, ir.NewArray(ir.String{})), got)
}

func TestInstantiateResolvesTargets(t *testing.T) {
	defs := map[string]ir.Node{
		"Box":   ir.NewGeneric([]ir.Param{param("T", nil)}, ir.NewObject(ir.Prop("value", ir.Ref{Name: "T"}))),
		"Alias": ir.Ref{Name: "Box"},
	}

	got, err := Instantiate(defs, ir.NewArray(ir.NewCall(ir.Ref{Name: "Alias"}, ir.Number{})))
	require.NoError(t, err)
	assertNode(t, ir.NewArray(ir.NewObject(ir.Prop("value", ir.Number{}))), got)
}

func TestInstantiateChecksConstraintsAgainstDefs(t *testing.T) {
	defs := map[string]ir.Node{
		"Named": ir.NewGeneric([]ir.Param{param("T", ir.String{})}, ir.Ref{Name: "T"}),
		"Id":    ir.StringLit("id"),
		"Count": ir.Number{},
	}

	got, err := Instantiate(defs, ir.NewCall(ir.Ref{Name: "Named"}, ir.Ref{Name: "Id"}))
	require.NoError(t, err)
	assertNode(t, ir.Ref{Name: "Id"}, got)

	_, err = Instantiate(defs, ir.NewCall(ir.Ref{Name: "Named"}, ir.Ref{Name: "Count"}))
	assert.True(t, IsConstraintError(err))
}

func TestInstantiateRecursiveGenericStops(t *testing.T) {
	defs := map[string]ir.Node{
		"List": ir.NewGeneric([]ir.Param{param("T", nil)}, ir.NewObject(
			ir.Prop("head", ir.Ref{Name: "T"}),
			ir.Prop("tail", ir.NewCall(ir.Ref{Name: "List"}, ir.Ref{Name: "T"})),
		)),
	}

	got, err := Instantiate(defs, ir.NewCall(ir.Ref{Name: "List"}, ir.String{}))
	require.NoError(t, err)
	want := ir.NewObject(
		ir.Prop("head", ir.String{}),
		ir.Prop("tail", ir.NewCall(ir.Ref{Name: "List"}, ir.String{})),
	)
	assertNode(t, want, got)
}

func TestInstantiateLeavesGenericAndCyclicAlone(t *testing.T) {
	g := ir.NewGeneric([]ir.Param{param("T", nil)}, ir.NewKeyOf(ir.NewObject(ir.Prop("a", ir.Ref{Name: "T"}))))
	c := ir.NewCyclic(map[string]ir.Node{"N": ir.NewKeyOf(ir.NewObject())}, "N")

	got, err := Instantiate(nil, ir.NewTuple(g, c))
	require.NoError(t, err)
	assertNode(t, ir.NewTuple(g, c), got)
}

func TestInstantiateKeyOfAndIndex(t *testing.T) {
	defs := map[string]ir.Node{
		"User": ir.NewObject(ir.Prop("name", ir.String{}), ir.Prop("age", ir.Number{})),
	}

	got, err := Instantiate(defs, ir.NewKeyOf(ir.Ref{Name: "User"}))
	require.NoError(t, err)
	assertNode(t, ir.LiteralUnion("name", "age"), got)

	got, err = Instantiate(defs, ir.NewIndex(ir.Ref{Name: "User"}, ir.StringLit("age")))
	require.NoError(t, err)
	assertNode(t, ir.Number{}, got)

	got, err = Instantiate(defs, ir.NewIndex(ir.Ref{Name: "User"}, ir.NewKeyOf(ir.Ref{Name: "User"})))
	require.NoError(t, err)
	assertNode(t, ir.NewUnion(ir.String{}, ir.Number{}), got)
}

func TestInstantiateDefersSymbolicOperands(t *testing.T) {
	k := ir.NewKeyOf(ir.Ref{Name: "Missing"})
	got, err := Instantiate(nil, k)
	require.NoError(t, err)
	assertNode(t, k, got)

	i := ir.NewIndex(ir.Ref{Name: "Missing"}, ir.StringLit("x"))
	got, err = Instantiate(nil, i)
	require.NoError(t, err)
	assertNode(t, i, got)
}

func TestDeferralsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := New(WithLogger(logger)).Instantiate(nil, ir.NewCall(ir.Ref{Name: "Box"}, ir.String{}))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "deferring call")
	assert.Contains(t, buf.String(), "reason=unresolved")
}

func TestNewDefaultsLogger(t *testing.T) {
	assert.NotNil(t, New().logger)
}

func TestMappedOverTemplateDomain(t *testing.T) {
	m := ir.NewMapped("K", ir.NewTemplate(pattern.MustParse("on(Click|Key)")), nil, ir.NewFunction(nil, ir.Void{}))

	got, err := Instantiate(nil, m)
	require.NoError(t, err)
	want := ir.NewObject(
		ir.Prop("onClick", ir.NewFunction(nil, ir.Void{})),
		ir.Prop("onKey", ir.NewFunction(nil, ir.Void{})),
	)
	assertNode(t, want, got)
}
