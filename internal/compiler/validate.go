package compiler

import (
	"fmt"

	"github.com/roach88/typerel/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrUnresolvedRef       = "E101" // Ref names nothing in scope
	ErrMissingCyclicRoot   = "E102" // Cyclic root is not one of its defs
	ErrDuplicateParam      = "E103" // generic parameter declared twice
	ErrDuplicateProperty   = "E104" // object property declared twice
	ErrRequiredAfterOption = "E105" // required item after an optional one
	ErrEmptyName           = "E106" // empty ref, param or key name
)

// ValidationError represents a definition validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks every definition in defs. Returns all errors found (does
// not fail-fast), in definition name order.
//
// A Ref is resolved if it names a definition, a parameter of an enclosing
// Generic, the key variable of an enclosing Mapped, a definition of an
// enclosing Cyclic, or an Infer variable on the same tree.
func Validate(defs map[string]ir.Node) []ValidationError {
	var errs []ValidationError
	for _, name := range ir.SortedNames(defs) {
		v := &validator{defs: defs, field: "defs." + name}
		v.infers = inferNames(defs[name])
		v.node(defs[name], nil)
		errs = append(errs, v.errs...)
	}
	return errs
}

// ValidateNode checks a single descriptor against defs.
func ValidateNode(defs map[string]ir.Node, n ir.Node) []ValidationError {
	v := &validator{defs: defs, field: "node", infers: inferNames(n)}
	v.node(n, nil)
	return v.errs
}

type validator struct {
	defs   map[string]ir.Node
	infers map[string]bool
	field  string
	errs   []ValidationError
}

// scope is an immutable chain of lexically bound names.
type scope struct {
	names []string
	outer *scope
}

func (s *scope) bound(name string) bool {
	for ; s != nil; s = s.outer {
		for _, n := range s.names {
			if n == name {
				return true
			}
		}
	}
	return false
}

func (v *validator) fail(code, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Field:   v.field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

func (v *validator) node(n ir.Node, s *scope) {
	ir.Walk(n, func(c ir.Node) bool {
		switch x := c.(type) {
		case ir.Ref:
			if x.Name == "" {
				v.fail(ErrEmptyName, "reference with empty name")
				return false
			}
			if _, ok := v.defs[x.Name]; !ok && !s.bound(x.Name) && !v.infers[x.Name] {
				v.fail(ErrUnresolvedRef, "unresolved reference %q", x.Name)
			}
		case *ir.Object:
			seen := make(map[string]bool, len(x.Properties))
			for _, p := range x.Properties {
				if seen[p.Name] {
					v.fail(ErrDuplicateProperty, "duplicate property %q", p.Name)
				}
				seen[p.Name] = true
			}
		case *ir.Tuple:
			v.slots("tuple element", x.Items)
		case *ir.Function:
			v.slots("parameter", x.Params)
		case *ir.Constructor:
			v.slots("parameter", x.Params)
		case *ir.Cyclic:
			if _, ok := x.Defs[x.Root]; !ok {
				v.fail(ErrMissingCyclicRoot, "cyclic root %q is not defined", x.Root)
			}
			inner := &scope{names: ir.SortedNames(x.Defs), outer: s}
			for _, name := range ir.SortedNames(x.Defs) {
				v.node(x.Defs[name], inner)
			}
			return false
		case *ir.Generic:
			names := make([]string, 0, len(x.Params))
			seen := make(map[string]bool, len(x.Params))
			defaulted := false
			for _, p := range x.Params {
				switch {
				case p.Name == "":
					v.fail(ErrEmptyName, "generic parameter with empty name")
				case seen[p.Name]:
					v.fail(ErrDuplicateParam, "duplicate generic parameter %q", p.Name)
				}
				seen[p.Name] = true
				if p.Default != nil {
					defaulted = true
				} else if defaulted {
					v.fail(ErrRequiredAfterOption, "required parameter %q follows a defaulted one", p.Name)
				}
				names = append(names, p.Name)
			}
			inner := &scope{names: names, outer: s}
			for _, p := range x.Params {
				if p.Constraint != nil {
					v.node(p.Constraint, inner)
				}
				if p.Default != nil {
					v.node(p.Default, inner)
				}
			}
			v.node(x.Body, inner)
			return false
		case *ir.Mapped:
			if x.Key == "" {
				v.fail(ErrEmptyName, "mapped key variable with empty name")
			}
			v.node(x.Domain, s)
			inner := &scope{names: []string{x.Key}, outer: s}
			if x.Remap != nil {
				v.node(x.Remap, inner)
			}
			v.node(x.Value, inner)
			return false
		}
		return true
	})
}

func (v *validator) slots(what string, slots []ir.Slot) {
	optional := false
	for i, s := range slots {
		if s.Optional {
			optional = true
		} else if optional {
			v.fail(ErrRequiredAfterOption, "required %s %d follows an optional one", what, i)
			return
		}
	}
}

func inferNames(n ir.Node) map[string]bool {
	names := make(map[string]bool)
	ir.Walk(n, func(c ir.Node) bool {
		if x, ok := c.(*ir.Infer); ok {
			names[x.Name] = true
		}
		return true
	})
	return names
}
