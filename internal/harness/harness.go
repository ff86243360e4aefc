package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/typerel/internal/compiler"
	"github.com/roach88/typerel/internal/engine"
	"github.com/roach88/typerel/internal/generic"
	"github.com/roach88/typerel/internal/ir"
	"github.com/roach88/typerel/internal/pattern"
	"github.com/roach88/typerel/internal/store"
	"github.com/roach88/typerel/internal/testutil"
)

// Harness is the suite execution engine. Each run owns a fresh in-memory
// store that logs every extends case.
type Harness struct {
	store  *store.Store
	defs   map[string]ir.Node
	inst   *generic.Instantiator
	logger *slog.Logger
}

// Option configures a run.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger routes case progress and instantiator diagnostics to l.
// Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Run executes a suite and returns the result.
//
// Execution flow:
//  1. Create a fresh in-memory store
//  2. Compile the defs files and register them in source order
//  3. Evaluate every case and compare it with its expectation
func Run(suite *Suite, opts ...Option) (*Result, error) {
	module, err := loadDefs(suite.Defs)
	if err != nil {
		return nil, err
	}
	steps, err := compileCases(suite.Cases)
	if err != nil {
		return nil, err
	}
	return execute(module, steps, opts)
}

// RunChecks evaluates the checks declared inside a compiled module.
func RunChecks(module *compiler.Module, opts ...Option) (*Result, error) {
	steps := make([]step, len(module.Checks))
	for i, c := range module.Checks {
		steps[i] = &extendsStep{
			name:     c.Name,
			left:     c.Left,
			right:    c.Right,
			expect:   c.Expect,
			bindings: c.Bindings,
		}
	}
	return execute(module, steps, opts)
}

func execute(module *compiler.Module, steps []step, opts []Option) (*Result, error) {
	o := &options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(o)
	}

	if errs := compiler.Validate(module.Defs); len(errs) > 0 {
		return nil, fmt.Errorf("invalid definitions: %w", errs[0])
	}

	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequentialIDs("check")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	for _, name := range module.Names {
		if _, err := st.PutDefinition(ctx, name, module.Defs[name]); err != nil {
			return nil, fmt.Errorf("failed to register definitions: %w", err)
		}
	}

	h := &Harness{
		store:  st,
		defs:   module.Defs,
		inst:   generic.New(generic.WithLogger(o.logger)),
		logger: o.logger,
	}

	result := NewResult()
	for _, s := range steps {
		event, failures, err := s.run(ctx, h)
		if err != nil {
			return nil, err
		}
		result.AddTrace(event)
		for _, f := range failures {
			result.AddError(f.Error())
		}
		h.logger.Info("case completed",
			"case", event.Case,
			"kind", event.Kind,
			"failures", len(failures),
		)
	}
	return result, nil
}

// loadDefs compiles every defs path into one module. A path may be a CUE
// file or a CUE package directory.
func loadDefs(paths []string) (*compiler.Module, error) {
	modules := make([]*compiler.Module, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("defs %s: %w", p, err)
		}
		var m *compiler.Module
		if info.IsDir() {
			m, err = compiler.LoadDir(p)
		} else {
			m, err = compiler.LoadFile(p)
		}
		if err != nil {
			return nil, fmt.Errorf("defs %s: %w", p, err)
		}
		modules = append(modules, m)
	}
	return compiler.Merge(modules...)
}

// step is one compiled case.
type step interface {
	run(ctx context.Context, h *Harness) (TraceEvent, []*AssertionError, error)
}

type extendsStep struct {
	name        string
	left, right ir.Node
	expect      engine.Outcome
	bindings    map[string]ir.Node
}

func (s *extendsStep) run(ctx context.Context, h *Harness) (TraceEvent, []*AssertionError, error) {
	r := engine.ExtendsWith(h.defs, s.left, s.right, nil)
	rec, _, err := h.store.RecordCheck(ctx, h.defs, s.left, s.right, r)
	if err != nil {
		return TraceEvent{}, nil, fmt.Errorf("case %q: %w", s.name, err)
	}

	event := TraceEvent{
		Case:    s.name,
		Kind:    KindExtends,
		Seq:     rec.Seq,
		Outcome: r.Outcome.String(),
	}
	if len(r.Bindings) > 0 {
		event.Bindings = make(map[string]string, len(r.Bindings))
		for name, n := range r.Bindings {
			event.Bindings[name] = ir.Format(n)
		}
	}

	var failures []*AssertionError
	if r.Outcome != s.expect {
		failures = append(failures, failure(event, "outcome", s.expect.String(), r.Outcome.String()))
	}
	if s.bindings != nil {
		failures = append(failures, compareBindings(event, s.bindings, r.Bindings)...)
	}
	return event, failures, nil
}

type instantiateStep struct {
	name    string
	kind    string
	node    ir.Node
	want    ir.Node
	wantErr string
}

func (s *instantiateStep) run(_ context.Context, h *Harness) (TraceEvent, []*AssertionError, error) {
	event := TraceEvent{Case: s.name, Kind: s.kind}

	out, err := h.inst.Instantiate(h.defs, s.node)
	if err != nil {
		event.Error = errorCode(err)
		if s.wantErr == "" {
			return event, []*AssertionError{failure(event, "result", ir.Format(s.want), err.Error())}, nil
		}
		if event.Error != s.wantErr {
			return event, []*AssertionError{failure(event, "error", s.wantErr, event.Error)}, nil
		}
		return event, nil, nil
	}

	event.Node = ir.Format(out)
	if s.wantErr != "" {
		return event, []*AssertionError{failure(event, "error", s.wantErr, "no error")}, nil
	}
	if !ir.Equal(s.want, out) {
		return event, []*AssertionError{failure(event, "result", ir.Format(s.want), event.Node)}, nil
	}
	return event, nil, nil
}

type patternStep struct {
	name    string
	text    string
	strings []string
	finite  *bool
	wantErr string
}

func (s *patternStep) run(_ context.Context, _ *Harness) (TraceEvent, []*AssertionError, error) {
	event := TraceEvent{Case: s.name, Kind: KindPattern}

	p, err := pattern.Parse(s.text)
	if err != nil {
		event.Error = errorCode(err)
		if event.Error != s.wantErr {
			return event, []*AssertionError{failure(event, "error", orNone(s.wantErr), event.Error)}, nil
		}
		return event, nil, nil
	}
	if s.wantErr != "" {
		return event, []*AssertionError{failure(event, "error", s.wantErr, "no error")}, nil
	}

	var failures []*AssertionError
	finite := pattern.IsFinite(p)
	if s.finite != nil && *s.finite != finite {
		failures = append(failures, failure(event, "finite", fmt.Sprint(*s.finite), fmt.Sprint(finite)))
	}
	if !finite {
		if s.strings != nil {
			failures = append(failures, failure(event, "strings", fmt.Sprint(s.strings), "unbounded"))
		}
		return event, failures, nil
	}

	generated, err := pattern.Generate(p)
	if err != nil {
		return TraceEvent{}, nil, fmt.Errorf("case %q: %w", s.name, err)
	}
	event.Strings = generated
	if s.strings != nil && !equalStrings(s.strings, generated) {
		failures = append(failures, failure(event, "strings", fmt.Sprint(s.strings), fmt.Sprint(generated)))
	}
	return event, failures, nil
}

// compileCases decodes the YAML descriptors of every case.
func compileCases(cases []Case) ([]step, error) {
	steps := make([]step, 0, len(cases))
	for i := range cases {
		c := &cases[i]
		s, err := compileCase(c)
		if err != nil {
			return nil, fmt.Errorf("cases[%d] %q: %w", i, c.Name, err)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func compileCase(c *Case) (step, error) {
	switch c.Kind() {
	case KindExtends:
		e := c.Extends
		left, err := decode(&e.Left, "left")
		if err != nil {
			return nil, err
		}
		right, err := decode(&e.Right, "right")
		if err != nil {
			return nil, err
		}
		expect, ok := engine.ParseOutcome(e.Expect)
		if !ok {
			return nil, fmt.Errorf("unknown outcome %q", e.Expect)
		}
		var bindings map[string]ir.Node
		if e.Bindings != nil {
			bindings = make(map[string]ir.Node, len(e.Bindings))
			for name := range e.Bindings {
				n := e.Bindings[name]
				if bindings[name], err = decode(&n, "bindings."+name); err != nil {
					return nil, err
				}
			}
		}
		return &extendsStep{name: c.Name, left: left, right: right, expect: expect, bindings: bindings}, nil

	case KindCall:
		target, err := decode(&c.Call.Target, "target")
		if err != nil {
			return nil, err
		}
		args := make([]ir.Node, len(c.Call.Args))
		for i := range c.Call.Args {
			if args[i], err = decode(&c.Call.Args[i], fmt.Sprintf("args[%d]", i)); err != nil {
				return nil, err
			}
		}
		want, err := decodeOptional(&c.Call.Expect, "expect")
		if err != nil {
			return nil, err
		}
		return &instantiateStep{
			name:    c.Name,
			kind:    KindCall,
			node:    ir.NewCall(target, args...),
			want:    want,
			wantErr: c.Call.Error,
		}, nil

	case KindInstantiate:
		node, err := decode(&c.Instantiate.Node, "node")
		if err != nil {
			return nil, err
		}
		want, err := decodeOptional(&c.Instantiate.Expect, "expect")
		if err != nil {
			return nil, err
		}
		return &instantiateStep{
			name:    c.Name,
			kind:    KindInstantiate,
			node:    node,
			want:    want,
			wantErr: c.Instantiate.Error,
		}, nil

	case KindPattern:
		return &patternStep{
			name:    c.Name,
			text:    c.Pattern.Text,
			strings: c.Pattern.Expect,
			finite:  c.Pattern.Finite,
			wantErr: c.Pattern.Error,
		}, nil
	}
	return nil, fmt.Errorf("exactly one of extends, call, instantiate or pattern is required")
}

func decode(n *yaml.Node, field string) (ir.Node, error) {
	out, err := compiler.DecodeYAML(n)
	if err != nil {
		return nil, fmt.Errorf("%s (line %d): %w", field, n.Line, err)
	}
	return out, nil
}

func decodeOptional(n *yaml.Node, field string) (ir.Node, error) {
	if missing(*n) {
		return nil, nil
	}
	return decode(n, field)
}

// errorCode maps the core failure shapes to their codes. Other errors are
// rendered whole.
func errorCode(err error) string {
	var ce *generic.ConstraintError
	if errors.As(err, &ce) {
		return string(ce.Code)
	}
	var pe *pattern.ParseError
	if errors.As(err, &pe) {
		return pe.Code()
	}
	return err.Error()
}
