package compiler

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"
	"gopkg.in/yaml.v3"
)

// fields is a decoded struct that remembers field order.
type fields struct {
	keys []string
	vals map[string]any
}

func (f fields) get(key string) (any, bool) {
	v, ok := f.vals[key]
	return v, ok
}

// asFields accepts a decoded struct in any of the supported shapes. Plain
// maps have no field order; their keys are sorted.
func asFields(v any) (fields, bool) {
	switch x := v.(type) {
	case fields:
		return x, true
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fields{keys: keys, vals: x}, true
	}
	return fields{}, false
}

// fromCUE converts a concrete CUE value into the generic decoded form.
func fromCUE(v cue.Value) (any, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	switch v.IncompleteKind() {
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		f := fields{vals: make(map[string]any)}
		for iter.Next() {
			label := iter.Label()
			val, err := fromCUE(iter.Value())
			if err != nil {
				return nil, err
			}
			f.keys = append(f.keys, label)
			f.vals[label] = val
		}
		return f, nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var out []any
		for iter.Next() {
			val, err := fromCUE(iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return s, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return b, nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return n, nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return f, nil
	case cue.NullKind:
		return nil, nil
	default:
		return nil, &CompileError{
			Field:   "value",
			Message: fmt.Sprintf("unsupported value kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// fromYAML converts a YAML node into the generic decoded form, keeping
// mapping order.
func fromYAML(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.MappingNode:
		f := fields{vals: make(map[string]any, len(n.Content)/2)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			val, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			if _, dup := f.vals[key]; !dup {
				f.keys = append(f.keys, key)
			}
			f.vals[key] = val
		}
		return f, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			val, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fieldError(fmt.Sprintf("line %d", n.Line), "%v", err)
		}
		return v, nil
	}
	return nil, fieldError(fmt.Sprintf("line %d", n.Line), "unsupported YAML node")
}
