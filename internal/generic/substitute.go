package generic

import (
	"strconv"

	"github.com/roach88/typerel/internal/cyclic"
	"github.com/roach88/typerel/internal/ir"
)

// Substitute replaces Ref(name) with env[name] throughout n. Names bound by
// an inner Generic, by a Mapped key variable or by Cyclic definitions shadow
// env inside their scope. Refs not in env are left untouched.
//
// Substitution is capture-avoiding: when a replacement mentions a name that
// an inner scope binds, that binder is renamed to a fresh name first.
func Substitute(n ir.Node, env map[string]ir.Node) ir.Node {
	if len(env) == 0 {
		return n
	}
	return ir.Rewrite(n, func(c ir.Node) (ir.Node, bool) {
		switch x := c.(type) {
		case ir.Ref:
			if v, ok := env[x.Name]; ok {
				return v, true
			}
		case *ir.Generic:
			names := make([]string, len(x.Params))
			scope := []ir.Node{x.Body}
			for i, p := range x.Params {
				names[i] = p.Name
				scope = append(scope, p.Constraint, p.Default)
			}
			inner, renames := scopeEnv(env, names, scope...)
			params := make([]ir.Param, len(x.Params))
			for i, p := range x.Params {
				params[i] = ir.Param{
					Name:       renamed(renames, p.Name),
					Constraint: substituteOpt(p.Constraint, inner),
					Default:    substituteOpt(p.Default, inner),
				}
			}
			return &ir.Generic{Params: params, Body: Substitute(x.Body, inner)}, true
		case *ir.Mapped:
			inner, renames := scopeEnv(env, []string{x.Key}, x.Remap, x.Value)
			return &ir.Mapped{
				Key:    renamed(renames, x.Key),
				Domain: Substitute(x.Domain, env),
				Remap:  substituteOpt(x.Remap, inner),
				Value:  Substitute(x.Value, inner),
			}, true
		case *ir.Cyclic:
			names := ir.SortedNames(x.Defs)
			scope := make([]ir.Node, 0, len(names))
			for _, name := range names {
				scope = append(scope, x.Defs[name])
			}
			inner, renames := scopeEnv(env, names, scope...)
			defs := make(map[string]ir.Node, len(x.Defs))
			for name, def := range x.Defs {
				defs[renamed(renames, name)] = Substitute(def, inner)
			}
			return &ir.Cyclic{Defs: defs, Root: renamed(renames, x.Root)}, true
		}
		return c, false
	})
}

func substituteOpt(n ir.Node, env map[string]ir.Node) ir.Node {
	if n == nil {
		return nil
	}
	return Substitute(n, env)
}

// scopeEnv narrows env for a scope that binds names over body. A bound name
// that occurs free in a replacement the body uses is renamed; the returned
// env maps it to a Ref to the fresh name and renames records old to new.
func scopeEnv(env map[string]ir.Node, names []string, body ...ir.Node) (map[string]ir.Node, map[string]string) {
	inner := without(env, names...)
	if len(inner) == 0 {
		return inner, nil
	}
	taken := mentioned(body...)
	free := make(map[string]bool)
	for k, v := range inner {
		if !taken[k] {
			continue
		}
		for _, name := range cyclic.References(v) {
			free[name] = true
		}
	}
	for name := range free {
		taken[name] = true
	}
	for _, name := range names {
		taken[name] = true
	}

	var renames map[string]string
	for _, name := range names {
		if !free[name] {
			continue
		}
		if renames == nil {
			renames = make(map[string]string)
			inner = copyEnv(inner)
		}
		fresh := freshName(name, taken)
		taken[fresh] = true
		renames[name] = fresh
		inner[name] = ir.Ref{Name: fresh}
	}
	return inner, renames
}

func freshName(base string, taken map[string]bool) string {
	for i := 1; ; i++ {
		name := base + "_" + strconv.Itoa(i)
		if !taken[name] {
			return name
		}
	}
}

func renamed(renames map[string]string, name string) string {
	if fresh, ok := renames[name]; ok {
		return fresh
	}
	return name
}

// mentioned collects every name referenced or bound under nodes.
func mentioned(nodes ...ir.Node) map[string]bool {
	seen := make(map[string]bool)
	for _, n := range nodes {
		ir.Walk(n, func(c ir.Node) bool {
			switch x := c.(type) {
			case ir.Ref:
				seen[x.Name] = true
			case *ir.Generic:
				for _, p := range x.Params {
					seen[p.Name] = true
				}
			case *ir.Mapped:
				seen[x.Key] = true
			case *ir.Cyclic:
				for name := range x.Defs {
					seen[name] = true
				}
			}
			return true
		})
	}
	return seen
}

// without returns env minus names, sharing env when nothing is removed.
func without(env map[string]ir.Node, names ...string) map[string]ir.Node {
	hit := false
	for _, name := range names {
		if _, ok := env[name]; ok {
			hit = true
			break
		}
	}
	if !hit {
		return env
	}
	out := copyEnv(env)
	for _, name := range names {
		delete(out, name)
	}
	return out
}

func copyEnv(env map[string]ir.Node) map[string]ir.Node {
	out := make(map[string]ir.Node, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}
