package generic

import (
	"fmt"
	"log/slog"

	"github.com/roach88/typerel/internal/cyclic"
	"github.com/roach88/typerel/internal/engine"
	"github.com/roach88/typerel/internal/ir"
)

// Instantiator evaluates generic calls and key-level type operators.
// It holds no per-call state and is safe for concurrent use.
type Instantiator struct {
	logger *slog.Logger
}

// Option configures an Instantiator.
type Option func(*Instantiator)

// WithLogger sets the logger used for deferral diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(in *Instantiator) {
		in.logger = l
	}
}

// New creates an Instantiator. Without WithLogger it logs to slog.Default().
func New(opts ...Option) *Instantiator {
	in := &Instantiator{}
	for _, opt := range opts {
		opt(in)
	}
	if in.logger == nil {
		in.logger = slog.Default()
	}
	return in
}

// Call applies target to args with no definitions in scope.
func Call(target ir.Node, args []ir.Node) (ir.Node, error) {
	return New().Call(target, args)
}

// Instantiate evaluates node against defs.
func Instantiate(defs map[string]ir.Node, node ir.Node) (ir.Node, error) {
	return New().Instantiate(defs, node)
}

// Call applies target to args.
//
// A Generic target is checked for arity and constraints and its body is
// returned with the arguments substituted. A Call target is evaluated
// first. Any other target, including an unresolved Ref, yields the Call
// node unevaluated.
func (in *Instantiator) Call(target ir.Node, args []ir.Node) (ir.Node, error) {
	r := &run{in: in}
	return r.call(ir.NewCall(target, args...), cyclic.NewScope(nil))
}

// Instantiate rewrites node, resolving Call targets through defs and
// evaluating every Call, Mapped, KeyOf and Index whose operands are
// concrete. Generic and Cyclic subtrees are left as they are.
func (in *Instantiator) Instantiate(defs map[string]ir.Node, node ir.Node) (ir.Node, error) {
	r := &run{in: in, defs: defs}
	return r.eval(node, cyclic.NewScope(defs))
}

// run is the state of one top-level evaluation. applying holds the hashes
// of the generics whose bodies are being evaluated on the current path.
type run struct {
	in       *Instantiator
	defs     map[string]ir.Node
	applying map[string]bool
}

func (r *run) eval(n ir.Node, s cyclic.Scope) (ir.Node, error) {
	var err error
	out := ir.Rewrite(n, func(c ir.Node) (ir.Node, bool) {
		if err != nil {
			return c, true
		}
		var reduced ir.Node
		switch x := c.(type) {
		case *ir.Generic, *ir.Cyclic:
			return c, true
		case *ir.Call:
			reduced, err = r.call(x, s)
		case *ir.Mapped:
			reduced, err = r.mapped(x, s)
		case *ir.KeyOf:
			reduced, err = r.keyOf(x, s)
		case *ir.Index:
			reduced, err = r.index(x, s)
		default:
			return c, false
		}
		return reduced, true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *run) evalAll(nodes []ir.Node, s cyclic.Scope) ([]ir.Node, bool, error) {
	out := make([]ir.Node, len(nodes))
	changed := false
	for i, n := range nodes {
		v, err := r.eval(n, s)
		if err != nil {
			return nil, false, err
		}
		out[i] = v
		if v != n {
			changed = true
		}
	}
	return out, changed, nil
}

func (r *run) call(x *ir.Call, s cyclic.Scope) (ir.Node, error) {
	args, changed, err := r.evalAll(x.Args, s)
	if err != nil {
		return nil, err
	}
	deferred := func(reason string) ir.Node {
		r.in.logger.Debug("deferring call",
			"target", ir.Format(x.Target),
			"reason", reason,
			"path", s.Path())
		if !changed {
			return x
		}
		return &ir.Call{Target: x.Target, Args: args}
	}

	target, ts := x.Target, s
	for {
		switch t := target.(type) {
		case ir.Ref:
			def, next, ok := cyclic.Follow(t, ts)
			if !ok {
				if ts.Visiting(t.Name) {
					return deferred("recursive"), nil
				}
				return deferred("unresolved"), nil
			}
			target, ts = def, next
		case *ir.Call:
			reduced, err := r.call(t, ts)
			if err != nil {
				return nil, err
			}
			if _, still := reduced.(*ir.Call); still {
				return deferred("target not reducible"), nil
			}
			target = reduced
		case *ir.Generic:
			key, err := ir.Hash(t)
			if err != nil {
				return nil, fmt.Errorf("call target: %w", err)
			}
			if r.applying[key] {
				return deferred("recursive generic"), nil
			}
			body, err := r.apply(t, args)
			if err != nil {
				return nil, err
			}
			if r.applying == nil {
				r.applying = make(map[string]bool)
			}
			r.applying[key] = true
			defer delete(r.applying, key)
			return r.eval(body, ts)
		default:
			return deferred("target is not generic"), nil
		}
	}
}

// apply binds args to the parameters of g and substitutes them into the
// body. Defaults and constraints may refer to earlier parameters.
func (r *run) apply(g *ir.Generic, args []ir.Node) (ir.Node, error) {
	if len(args) > len(g.Params) {
		return nil, newArityError("", len(g.Params), len(args))
	}
	env := make(map[string]ir.Node, len(g.Params))
	for i, p := range g.Params {
		var arg ir.Node
		switch {
		case i < len(args):
			arg = args[i]
		case p.Default != nil:
			arg = Substitute(p.Default, env)
		default:
			return nil, newArityError(p.Name, len(g.Params), len(args))
		}
		if p.Constraint != nil {
			constraint := Substitute(p.Constraint, env)
			if engine.ExtendsWith(r.defs, arg, constraint, nil).IsFalse() {
				return nil, newConstraintError(p.Name, arg, constraint)
			}
		}
		env[p.Name] = arg
	}
	return Substitute(g.Body, env), nil
}

// operand evaluates n and resolves it to a concrete node for KeyOf and
// Index. Refs are followed through the scope and a Cyclic is unfolded one
// level. The second result is false when n stays symbolic.
func (r *run) operand(n ir.Node, s cyclic.Scope) (ir.Node, bool, error) {
	n, err := r.eval(n, s)
	if err != nil {
		return nil, false, err
	}
	for {
		switch x := n.(type) {
		case ir.Ref:
			def, next, ok := cyclic.Follow(x, s)
			if !ok {
				return n, false, nil
			}
			if n, err = r.eval(def, next); err != nil {
				return nil, false, err
			}
			s = next
		case *ir.Cyclic:
			n = cyclic.Unfold(x)
		default:
			return n, true, nil
		}
	}
}

func (r *run) keyOf(x *ir.KeyOf, s cyclic.Scope) (ir.Node, error) {
	inner, ok, err := r.operand(x.Inner, s)
	if err != nil {
		return nil, err
	}
	if ok {
		if keys, ok := KeyOf(inner); ok {
			return keys, nil
		}
	}
	r.in.logger.Debug("deferring keyof", "operand", ir.Format(x.Inner))
	return r.rebuildKeyOf(x, s)
}

func (r *run) rebuildKeyOf(x *ir.KeyOf, s cyclic.Scope) (ir.Node, error) {
	inner, err := r.eval(x.Inner, s)
	if err != nil {
		return nil, err
	}
	if inner == x.Inner {
		return x, nil
	}
	return ir.NewKeyOf(inner), nil
}

func (r *run) index(x *ir.Index, s cyclic.Scope) (ir.Node, error) {
	obj, objOK, err := r.operand(x.Object, s)
	if err != nil {
		return nil, err
	}
	key, keyOK, err := r.operand(x.Key, s)
	if err != nil {
		return nil, err
	}
	if objOK && keyOK {
		if v, ok := Index(obj, key); ok {
			return v, nil
		}
	}
	r.in.logger.Debug("deferring index",
		"object", ir.Format(x.Object),
		"key", ir.Format(x.Key))
	o, err := r.eval(x.Object, s)
	if err != nil {
		return nil, err
	}
	k, err := r.eval(x.Key, s)
	if err != nil {
		return nil, err
	}
	if o == x.Object && k == x.Key {
		return x, nil
	}
	return ir.NewIndex(o, k), nil
}
