package engine

import (
	"sort"

	"github.com/roach88/typerel/internal/ir"
)

// Outcome is the verdict of a relation.
type Outcome int

const (
	False Outcome = iota
	True
	// AmbiguousUnion is reported when the left operand is Any: the relation
	// holds for some inhabitants and fails for others.
	AmbiguousUnion
)

func (o Outcome) String() string {
	switch o {
	case True:
		return "true"
	case AmbiguousUnion:
		return "ambiguous"
	default:
		return "false"
	}
}

// ParseOutcome maps "true", "false" or "ambiguous" back to an Outcome.
func ParseOutcome(s string) (Outcome, bool) {
	switch s {
	case "true":
		return True, true
	case "false":
		return False, true
	case "ambiguous":
		return AmbiguousUnion, true
	}
	return False, false
}

// pass reports whether o satisfies a container member check.
func pass(o Outcome) bool { return o != False }

// Bindings maps inference variable names to the subtrees they captured.
type Bindings map[string]ir.Node

// Clone returns a shallow copy. Nodes are immutable and shared.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for name, n := range b {
		out[name] = n
	}
	return out
}

// Merge returns the union of b and other. A name bound on both sides to
// structurally different nodes binds the union of the two.
func (b Bindings) Merge(other Bindings) Bindings {
	if len(other) == 0 {
		return b
	}
	out := b.Clone()
	for name, n := range other {
		if prev, ok := out[name]; ok && !ir.Equal(prev, n) {
			out[name] = ir.UnionOf(prev, n)
			continue
		}
		out[name] = n
	}
	return out
}

// Names returns the bound names, sorted.
func (b Bindings) Names() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Result is the outcome of a top-level Extends call. Bindings is only
// meaningful when Outcome is True.
type Result struct {
	Outcome  Outcome
	Bindings Bindings
}

func (r Result) IsTrue() bool      { return r.Outcome == True }
func (r Result) IsFalse() bool     { return r.Outcome == False }
func (r Result) IsAmbiguous() bool { return r.Outcome == AmbiguousUnion }

// String renders the outcome and, for True, the bindings in name order.
func (r Result) String() string {
	s := r.Outcome.String()
	if r.Outcome != True || len(r.Bindings) == 0 {
		return s
	}
	s += " {"
	for i, name := range r.Bindings.Names() {
		if i > 0 {
			s += ","
		}
		s += " " + name + " = " + ir.Format(r.Bindings[name])
	}
	return s + " }"
}
