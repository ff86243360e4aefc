package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/typerel/internal/ir"
)

// TraceSnapshot captures the complete trace of a suite execution.
type TraceSnapshot struct {
	Suite string       `json:"suite"`
	Trace []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to the map form accepted by
// ir.MarshalCanonical. Empty fields are omitted.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	trace := make([]any, len(s.Trace))
	for i, e := range s.Trace {
		m := map[string]any{
			"case": e.Case,
			"kind": e.Kind,
		}
		if e.Seq != 0 {
			m["seq"] = e.Seq
		}
		if e.Outcome != "" {
			m["outcome"] = e.Outcome
		}
		if len(e.Bindings) > 0 {
			b := make(map[string]any, len(e.Bindings))
			for name, v := range e.Bindings {
				b[name] = v
			}
			m["bindings"] = b
		}
		if e.Node != "" {
			m["node"] = e.Node
		}
		if e.Strings != nil {
			m["strings"] = e.Strings
		}
		if e.Error != "" {
			m["error"] = e.Error
		}
		trace[i] = m
	}
	return map[string]any{
		"suite": s.Suite,
		"trace": trace,
	}
}

// Snapshot renders a result's trace as canonical JSON.
func Snapshot(suiteName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{Suite: suiteName, Trace: result.Trace}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a suite and compares the trace against
// testdata/golden/{suite.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the suite cannot be executed. A trace mismatch fails
// the test through goldie.
func RunWithGolden(t *testing.T, suite *Suite) (*Result, error) {
	t.Helper()

	result, err := Run(suite)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, suite.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the suite.
func AssertGolden(t *testing.T, suiteName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(suiteName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, suiteName, traceJSON)
	return nil
}
