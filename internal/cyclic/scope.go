package cyclic

import (
	"github.com/roach88/typerel/internal/ir"
)

// Position says on which side of a relation a node is being resolved.
type Position int

const (
	// Operand is the left side: the node being tested.
	Operand Position = iota
	// Target is the right side: the node tested against.
	Target
)

func (p Position) String() string {
	if p == Target {
		return "target"
	}
	return "operand"
}

// Placeholder returns the opaque stand-in for a cyclic or unresolvable
// reference: Unknown as a target, Any as an operand.
func Placeholder(pos Position) ir.Node {
	if pos == Target {
		return ir.Unknown{}
	}
	return ir.Any{}
}

// Scope is the resolution context: visible definitions plus the names
// entered on the current path.
type Scope struct {
	defs     map[string]ir.Node
	visiting *visit
}

// visit is an immutable linked list of entered names.
type visit struct {
	name string
	next *visit
}

// NewScope creates a scope over defs with nothing visited. defs is not
// copied and must not be mutated afterwards.
func NewScope(defs map[string]ir.Node) Scope {
	return Scope{defs: defs}
}

// Lookup returns the definition visible under name.
func (s Scope) Lookup(name string) (ir.Node, bool) {
	n, ok := s.defs[name]
	return n, ok
}

// Visiting reports whether name was entered on the current path.
func (s Scope) Visiting(name string) bool {
	for v := s.visiting; v != nil; v = v.next {
		if v.name == name {
			return true
		}
	}
	return false
}

// Path returns the entered names, outermost first.
func (s Scope) Path() []string {
	var path []string
	for v := s.visiting; v != nil; v = v.next {
		path = append(path, v.name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Enter returns a scope with name added to the visiting set.
func (s Scope) Enter(name string) Scope {
	return Scope{defs: s.defs, visiting: &visit{name: name, next: s.visiting}}
}

// With returns a scope where defs shadow the current definitions. The
// visiting set is kept.
func (s Scope) With(defs map[string]ir.Node) Scope {
	if len(s.defs) == 0 {
		return Scope{defs: defs, visiting: s.visiting}
	}
	merged := make(map[string]ir.Node, len(s.defs)+len(defs))
	for name, n := range s.defs {
		merged[name] = n
	}
	for name, n := range defs {
		merged[name] = n
	}
	return Scope{defs: merged, visiting: s.visiting}
}
