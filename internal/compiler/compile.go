package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/typerel/internal/engine"
	"github.com/roach88/typerel/internal/ir"
)

// Module is a compiled definitions module.
type Module struct {
	// Defs maps definition names to descriptors.
	Defs map[string]ir.Node

	// Names lists the definitions in source order.
	Names []string

	// Checks are the relation assertions declared next to the defs.
	Checks []Check
}

// Check asserts the outcome of Extends(Left, Right).
type Check struct {
	Name   string
	Left   ir.Node
	Right  ir.Node
	Expect engine.Outcome

	// Bindings, when non-nil, are the expected inference bindings.
	Bindings map[string]ir.Node
}

// CompileNode parses a CUE value into a descriptor.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value may be a kind-tagged struct or a shorthand string:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`user: {kind: "object", properties: {id: "string"}}`)
//	node, err := CompileNode(v.LookupPath(cue.ParsePath("user")))
func CompileNode(v cue.Value) (ir.Node, error) {
	raw, err := fromCUE(v)
	if err != nil {
		return nil, err
	}
	n, err := FromAny(raw)
	if err != nil {
		return nil, withPos(err, v)
	}
	return n, nil
}

// CompileModule parses a CUE value holding a defs struct and an optional
// checks list.
//
//	defs: {
//		Name: "string"
//		User: {kind: "object", properties: {name: "#Name"}}
//	}
//	checks: [{name: "user is open", left: "#User", right: {kind: "object"}, expect: "true"}]
func CompileModule(v cue.Value) (*Module, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &Module{Defs: make(map[string]ir.Node)}

	defsVal := v.LookupPath(cue.ParsePath("defs"))
	if defsVal.Exists() {
		iter, err := defsVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			name := iter.Label()
			n, err := CompileNode(iter.Value())
			if err != nil {
				return nil, prefix(err, "defs."+name)
			}
			m.Defs[name] = n
			m.Names = append(m.Names, name)
		}
	}

	checksVal := v.LookupPath(cue.ParsePath("checks"))
	if checksVal.Exists() {
		iter, err := checksVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; iter.Next(); i++ {
			c, err := compileCheck(iter.Value())
			if err != nil {
				return nil, prefix(err, fmt.Sprintf("checks[%d]", i))
			}
			if c.Name == "" {
				c.Name = fmt.Sprintf("check %d", i)
			}
			m.Checks = append(m.Checks, c)
		}
	}

	return m, nil
}

func compileCheck(v cue.Value) (Check, error) {
	var c Check

	if nameVal := v.LookupPath(cue.ParsePath("name")); nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return c, formatCUEError(err)
		}
		c.Name = name
	}

	for _, side := range []struct {
		field string
		dst   *ir.Node
	}{{"left", &c.Left}, {"right", &c.Right}} {
		sv := v.LookupPath(cue.ParsePath(side.field))
		if !sv.Exists() {
			return c, &CompileError{Field: side.field, Message: side.field + " is required", Pos: v.Pos()}
		}
		n, err := CompileNode(sv)
		if err != nil {
			return c, prefix(err, side.field)
		}
		*side.dst = n
	}

	expectVal := v.LookupPath(cue.ParsePath("expect"))
	if !expectVal.Exists() {
		return c, &CompileError{Field: "expect", Message: "expect is required", Pos: v.Pos()}
	}
	expect, err := expectVal.String()
	if err != nil {
		return c, formatCUEError(err)
	}
	outcome, ok := engine.ParseOutcome(expect)
	if !ok {
		return c, &CompileError{
			Field:   "expect",
			Message: fmt.Sprintf("expect must be true, false or ambiguous, got %q", expect),
			Pos:     expectVal.Pos(),
		}
	}
	c.Expect = outcome

	if bv := v.LookupPath(cue.ParsePath("bindings")); bv.Exists() {
		iter, err := bv.Fields()
		if err != nil {
			return c, formatCUEError(err)
		}
		c.Bindings = make(map[string]ir.Node)
		for iter.Next() {
			n, err := CompileNode(iter.Value())
			if err != nil {
				return c, prefix(err, "bindings."+iter.Label())
			}
			c.Bindings[iter.Label()] = n
		}
	}
	return c, nil
}

// withPos attaches the position of v to a decode error that has none.
func withPos(err error, v cue.Value) error {
	if ce, ok := err.(*CompileError); ok && !ce.Pos.IsValid() {
		out := *ce
		out.Pos = v.Pos()
		return &out
	}
	return err
}

// prefix qualifies the field of a CompileError with its enclosing path.
func prefix(err error, path string) error {
	ce, ok := err.(*CompileError)
	if !ok {
		return fmt.Errorf("%s: %w", path, err)
	}
	out := *ce
	if out.Field == "" || out.Field == "cue" {
		out.Field = path
	} else {
		out.Field = path + "." + out.Field
	}
	return &out
}
