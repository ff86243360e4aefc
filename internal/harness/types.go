package harness

// Case kinds.
const (
	KindExtends     = "extends"
	KindCall        = "call"
	KindInstantiate = "instantiate"
	KindPattern     = "pattern"
)

// TraceEvent records what one case produced.
type TraceEvent struct {
	Case string `json:"case"`
	Kind string `json:"kind"`

	// Seq is the relation-log position of an extends case.
	Seq int64 `json:"seq,omitempty"`

	// Outcome and Bindings are set by extends cases. Bindings are rendered
	// with ir.Format.
	Outcome  string            `json:"outcome,omitempty"`
	Bindings map[string]string `json:"bindings,omitempty"`

	// Node is the rendered result of a call or instantiate case.
	Node string `json:"node,omitempty"`

	// Strings are the members generated by a pattern case.
	Strings []string `json:"strings,omitempty"`

	// Error is the error code of a failing operation.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a suite execution.
type Result struct {
	// Pass is true if every case met its expectation.
	Pass bool `json:"pass"`

	// Trace holds one event per case, in suite order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains one message per failed expectation.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a case event.
func (r *Result) AddTrace(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}
