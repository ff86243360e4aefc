package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/typerel/internal/engine"
	"github.com/roach88/typerel/internal/ir"
)

const moduleSrc = `
defs: {
	Name: "string"
	User: {
		kind: "object"
		properties: {
			id:   {type: "string", readonly: true}
			name: "#Name"
			age:  {type: "number", optional: true}
		}
	}
	Pair: {kind: "tuple", items: [defs.User, defs.User]}
	Status: {
		kind: "union"
		members: [{kind: "literal", const: "on"}, {kind: "literal", const: "off"}]
	}
}

checks: [
	{name: "user is open", left: "#User", right: {kind: "object"}, expect: "true"},
	{left: "string", right: "#Name", expect: "true"},
	{
		name:  "infer"
		left:  {kind: "array", items: "number"}
		right: {kind: "array", items: {kind: "infer", name: "T"}}
		expect: "true"
		bindings: T: "number"
	},
]
`

func TestCompileNodeShorthandAndStruct(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		a: "string"
		b: {kind: "record", key: "string", value: {kind: "literal", number: 2}}
		c: {kind: "literal", number: 2.5}
	`)
	require.NoError(t, v.Err())

	a, err := CompileNode(v.LookupPath(cue.ParsePath("a")))
	require.NoError(t, err)
	assertNode(t, ir.String{}, a)

	b, err := CompileNode(v.LookupPath(cue.ParsePath("b")))
	require.NoError(t, err)
	assertNode(t, ir.NewRecord(ir.String{}, ir.NumberLit(2)), b)

	c, err := CompileNode(v.LookupPath(cue.ParsePath("c")))
	require.NoError(t, err)
	assertNode(t, ir.NumberLit(2.5), c)
}

func TestCompileNodeErrorHasPosition(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`bad: {kind: "array"}`, cue.Filename("bad.cue"))
	require.NoError(t, v.Err())

	_, err := CompileNode(v.LookupPath(cue.ParsePath("bad")))
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "items", ce.Field)
	assert.True(t, ce.Pos.IsValid())
	assert.Contains(t, err.Error(), "bad.cue")
}

func TestCompileNodeIncompleteValue(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`x: string`)
	require.NoError(t, v.Err())

	_, err := CompileNode(v.LookupPath(cue.ParsePath("x")))
	assert.Error(t, err)
}

func TestCompileModule(t *testing.T) {
	m, err := CompileSource("module.cue", []byte(moduleSrc))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "User", "Pair", "Status"}, m.Names)
	assertNode(t, ir.String{}, m.Defs["Name"])

	user, ok := m.Defs["User"].(*ir.Object)
	require.True(t, ok)
	assert.Equal(t, []string{"id", "name", "age"}, user.Keys())
	id, _ := user.Property("id")
	assert.True(t, id.Readonly)
	name, _ := user.Property("name")
	assertNode(t, ir.Ref{Name: "Name"}, name.Type)

	pair, ok := m.Defs["Pair"].(*ir.Tuple)
	require.True(t, ok)
	require.Len(t, pair.Items, 2)
	assertNode(t, user, pair.Items[0].Type)

	assertNode(t, ir.LiteralUnion("on", "off"), m.Defs["Status"])

	require.Len(t, m.Checks, 3)
	assert.Equal(t, "user is open", m.Checks[0].Name)
	assert.Equal(t, "check 1", m.Checks[1].Name)
	assert.Equal(t, engine.True, m.Checks[2].Expect)
	assertNode(t, ir.Number{}, m.Checks[2].Bindings["T"])
}

func TestCompileModuleChecksHold(t *testing.T) {
	m, err := CompileSource("module.cue", []byte(moduleSrc))
	require.NoError(t, err)

	for _, c := range m.Checks {
		t.Run(c.Name, func(t *testing.T) {
			r := engine.ExtendsWith(m.Defs, c.Left, c.Right, nil)
			assert.Equal(t, c.Expect, r.Outcome, r.String())
			for name, want := range c.Bindings {
				assertNode(t, want, r.Bindings[name])
			}
		})
	}
}

func TestCompileModuleErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"bad def", `defs: X: {kind: "nope"}`, "defs.X.kind"},
		{"missing expect", `checks: [{left: "string", right: "string"}]`, "checks[0].expect"},
		{"bad expect", `checks: [{left: "string", right: "string", expect: "maybe"}]`, "checks[0].expect"},
		{"missing right", `checks: [{left: "string", expect: "true"}]`, "checks[0].right"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileSource("m.cue", []byte(tt.src))
			require.Error(t, err)
			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompileSourceSyntaxError(t *testing.T) {
	_, err := CompileSource("broken.cue", []byte(`defs: {`))
	require.Error(t, err)
}

func TestLoadDirAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "defs.cue")
	require.NoError(t, os.WriteFile(path, []byte(moduleSrc), 0o644))

	m, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, m.Defs, 4)

	m, err = LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, m.Checks, 3)

	_, err = LoadFile(filepath.Join(dir, "missing.cue"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	a := &Module{Defs: map[string]ir.Node{"A": ir.String{}}, Names: []string{"A"}}
	b := &Module{Defs: map[string]ir.Node{"B": ir.Number{}}, Names: []string{"B"}}

	m, err := Merge(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, m.Names)

	_, err = Merge(a, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate definition")
}
