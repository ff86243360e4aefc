package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/typerel/internal/compiler"
	"github.com/roach88/typerel/internal/engine"
	"github.com/roach88/typerel/internal/ir"
)

// marshalNode converts a descriptor to canonical JSON TEXT and its hash.
func marshalNode(n ir.Node) (text, hash string, err error) {
	data, err := ir.MarshalNode(n)
	if err != nil {
		return "", "", fmt.Errorf("marshal descriptor: %w", err)
	}
	hash, err = ir.Hash(n)
	if err != nil {
		return "", "", err
	}
	return string(data), hash, nil
}

// unmarshalNode parses canonical JSON TEXT back into a descriptor.
func unmarshalNode(text string) (ir.Node, error) {
	n, err := compiler.DecodeJSON([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("unmarshal descriptor: %w", err)
	}
	return n, nil
}

// marshalBindings converts bindings to canonical JSON TEXT and their hash.
// Empty bindings are stored as "{}".
func marshalBindings(b engine.Bindings) (text, hash string, err error) {
	obj := make(map[string]any, len(b))
	for name, n := range b {
		v, err := ir.ToWire(n)
		if err != nil {
			return "", "", fmt.Errorf("marshal binding %q: %w", name, err)
		}
		obj[name] = v
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", "", fmt.Errorf("marshal bindings: %w", err)
	}
	hash, err = ir.BindingsHash(b)
	if err != nil {
		return "", "", err
	}
	return string(data), hash, nil
}

// unmarshalBindings parses canonical JSON TEXT into bindings. "{}" yields
// nil.
func unmarshalBindings(text string) (engine.Bindings, error) {
	if text == "" || text == "{}" {
		return nil, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal bindings: %w", err)
	}
	out := make(engine.Bindings, len(raw))
	for name, data := range raw {
		n, err := compiler.DecodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("unmarshal binding %q: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}
