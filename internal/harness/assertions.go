package harness

import (
	"fmt"
	"slices"
	"sort"

	"github.com/roach88/typerel/internal/ir"
)

// AssertionError is returned when a case does not meet its expectation.
type AssertionError struct {
	Case     string // Case name
	Kind     string // Case kind
	Field    string // What was compared: outcome, bindings.T, result, …
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s %q: %s: expected %s, got %s", e.Kind, e.Case, e.Field, e.Expected, e.Actual)
}

func failure(event TraceEvent, field, expected, actual string) *AssertionError {
	return &AssertionError{
		Case:     event.Case,
		Kind:     event.Kind,
		Field:    field,
		Expected: expected,
		Actual:   actual,
	}
}

// compareBindings requires got to bind exactly the names in want, each to
// a structurally equal descriptor. Failures are reported in name order.
func compareBindings(event TraceEvent, want, got map[string]ir.Node) []*AssertionError {
	names := make([]string, 0, len(want)+len(got))
	for name := range want {
		names = append(names, name)
	}
	for name := range got {
		if _, ok := want[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var failures []*AssertionError
	for _, name := range names {
		w, inWant := want[name]
		g, inGot := got[name]
		switch {
		case !inGot:
			failures = append(failures, failure(event, "bindings."+name, ir.Format(w), "unbound"))
		case !inWant:
			failures = append(failures, failure(event, "bindings."+name, "unbound", ir.Format(g)))
		case !ir.Equal(w, g):
			failures = append(failures, failure(event, "bindings."+name, ir.Format(w), ir.Format(g)))
		}
	}
	return failures
}

func equalStrings(a, b []string) bool {
	return slices.Equal(a, b)
}

func orNone(code string) string {
	if code == "" {
		return "no error"
	}
	return code
}
