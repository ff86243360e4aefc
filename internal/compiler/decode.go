package compiler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/typerel/internal/ir"
	"github.com/roach88/typerel/internal/pattern"
)

var keywords = map[string]ir.Node{
	"any":       ir.Any{},
	"unknown":   ir.Unknown{},
	"never":     ir.Never{},
	"void":      ir.Void{},
	"null":      ir.Null{},
	"undefined": ir.Undefined{},
	"boolean":   ir.Boolean{},
	"number":    ir.Number{},
	"integer":   ir.Integer{},
	"bigint":    ir.BigInt{},
	"string":    ir.String{},
}

// FromAny decodes a descriptor from generic decoded data: maps, slices,
// strings, bools and numbers as produced by ir.ToWire or a YAML/JSON
// decoder.
func FromAny(v any) (ir.Node, error) {
	return decodeNode(v, "")
}

// DecodeJSON decodes a descriptor from JSON text.
func DecodeJSON(data []byte) (ir.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &CompileError{Field: "json", Message: err.Error(), Err: err}
	}
	return FromAny(v)
}

// DecodeYAML decodes a descriptor from a YAML node. Mapping order is kept,
// so object properties written as a mapping stay in declaration order.
func DecodeYAML(n *yaml.Node) (ir.Node, error) {
	v, err := fromYAML(n)
	if err != nil {
		return nil, err
	}
	return FromAny(v)
}

// ParseArg decodes a descriptor given on a command line: JSON when it
// starts with '{', '[' or '"', otherwise a shorthand keyword or "#Name".
func ParseArg(text string) (ir.Node, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fieldError("", "empty descriptor")
	}
	switch text[0] {
	case '{', '[', '"':
		return DecodeJSON([]byte(text))
	}
	return decodeShorthand(text, "")
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func at(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func decodeShorthand(s, path string) (ir.Node, error) {
	if name, ok := strings.CutPrefix(s, "#"); ok && name != "" {
		return ir.Ref{Name: name}, nil
	}
	if n, ok := keywords[s]; ok {
		return n, nil
	}
	return nil, fieldError(path, "unknown type name %q (use a keyword or #Name)", s)
}

func decodeNode(v any, path string) (ir.Node, error) {
	if s, ok := v.(string); ok {
		return decodeShorthand(s, path)
	}
	f, ok := asFields(v)
	if !ok {
		return nil, fieldError(path, "expected a descriptor, got %T", v)
	}
	kindName, err := stringField(f, "kind", path)
	if err != nil {
		return nil, err
	}
	kind, ok := ir.ParseKind(kindName)
	if !ok {
		return nil, fieldError(join(path, "kind"), "unknown kind %q", kindName)
	}

	switch kind {
	case ir.KindAny, ir.KindUnknown, ir.KindNever, ir.KindVoid, ir.KindNull, ir.KindUndefined,
		ir.KindBoolean, ir.KindNumber, ir.KindInteger, ir.KindBigInt, ir.KindString:
		return keywords[kindName], nil
	case ir.KindLiteral:
		return decodeLiteral(f, path)
	case ir.KindRef:
		name, err := stringField(f, "name", path)
		if err != nil {
			return nil, err
		}
		return ir.Ref{Name: name}, nil
	case ir.KindNot:
		inner, err := nodeField(f, "not", path)
		if err != nil {
			return nil, err
		}
		return ir.NewNot(inner), nil
	case ir.KindArray:
		item, err := nodeField(f, "items", path)
		if err != nil {
			return nil, err
		}
		return ir.NewArray(item), nil
	case ir.KindTuple:
		items, err := slotList(f, "items", path)
		if err != nil {
			return nil, err
		}
		return &ir.Tuple{Items: items}, nil
	case ir.KindObject:
		return decodeObject(f, path)
	case ir.KindRecord:
		key, err := nodeField(f, "key", path)
		if err != nil {
			return nil, err
		}
		value, err := nodeField(f, "value", path)
		if err != nil {
			return nil, err
		}
		return ir.NewRecord(key, value), nil
	case ir.KindUnion, ir.KindIntersect:
		members, err := nodeList(f, "members", path)
		if err != nil {
			return nil, err
		}
		if kind == ir.KindUnion {
			return ir.NewUnion(members...), nil
		}
		return ir.NewIntersect(members...), nil
	case ir.KindFunction:
		params, err := slotList(f, "params", path)
		if err != nil {
			return nil, err
		}
		returns, err := nodeField(f, "returns", path)
		if err != nil {
			return nil, err
		}
		return &ir.Function{Params: params, Returns: returns}, nil
	case ir.KindConstructor:
		params, err := slotList(f, "params", path)
		if err != nil {
			return nil, err
		}
		instance, err := nodeField(f, "instance", path)
		if err != nil {
			return nil, err
		}
		return &ir.Constructor{Params: params, Instance: instance}, nil
	case ir.KindPromise, ir.KindIterator, ir.KindAsyncIterator:
		item, err := nodeField(f, "item", path)
		if err != nil {
			return nil, err
		}
		switch kind {
		case ir.KindPromise:
			return ir.NewPromise(item), nil
		case ir.KindIterator:
			return ir.NewIterator(item), nil
		}
		return ir.NewAsyncIterator(item), nil
	case ir.KindTemplateLiteral:
		text, err := stringField(f, "pattern", path)
		if err != nil {
			return nil, err
		}
		p, err := pattern.Parse(text)
		if err != nil {
			return nil, &CompileError{Field: join(path, "pattern"), Message: err.Error(), Err: err}
		}
		return ir.NewTemplate(p), nil
	case ir.KindCyclic:
		return decodeCyclic(f, path)
	case ir.KindInfer:
		name, err := stringField(f, "name", path)
		if err != nil {
			return nil, err
		}
		constraint, err := optionalNode(f, "constraint", path)
		if err != nil {
			return nil, err
		}
		return ir.NewInfer(name, constraint), nil
	case ir.KindGeneric:
		return decodeGeneric(f, path)
	case ir.KindCall:
		target, err := nodeField(f, "target", path)
		if err != nil {
			return nil, err
		}
		args, err := nodeList(f, "args", path)
		if err != nil {
			return nil, err
		}
		return ir.NewCall(target, args...), nil
	case ir.KindMapped:
		key, err := stringField(f, "key", path)
		if err != nil {
			return nil, err
		}
		domain, err := nodeField(f, "domain", path)
		if err != nil {
			return nil, err
		}
		remap, err := optionalNode(f, "remap", path)
		if err != nil {
			return nil, err
		}
		value, err := nodeField(f, "value", path)
		if err != nil {
			return nil, err
		}
		return ir.NewMapped(key, domain, remap, value), nil
	case ir.KindKeyOf:
		inner, err := nodeField(f, "of", path)
		if err != nil {
			return nil, err
		}
		return ir.NewKeyOf(inner), nil
	case ir.KindIndex:
		obj, err := nodeField(f, "object", path)
		if err != nil {
			return nil, err
		}
		key, err := nodeField(f, "index", path)
		if err != nil {
			return nil, err
		}
		return ir.NewIndex(obj, key), nil
	case ir.KindOptional, ir.KindReadonly:
		action, err := decodeAction(f, path)
		if err != nil {
			return nil, err
		}
		inner, err := nodeField(f, "of", path)
		if err != nil {
			return nil, err
		}
		if kind == ir.KindOptional {
			return &ir.Optional{Inner: inner, Action: action}, nil
		}
		return &ir.Readonly{Inner: inner, Action: action}, nil
	}
	return nil, fieldError(join(path, "kind"), "unsupported kind %q", kindName)
}

func stringField(f fields, key, path string) (string, error) {
	v, ok := f.get(key)
	if !ok {
		return "", fieldError(join(path, key), "%s is required", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fieldError(join(path, key), "expected a string, got %T", v)
	}
	return s, nil
}

func nodeField(f fields, key, path string) (ir.Node, error) {
	v, ok := f.get(key)
	if !ok {
		return nil, fieldError(join(path, key), "%s is required", key)
	}
	return decodeNode(v, join(path, key))
}

func optionalNode(f fields, key, path string) (ir.Node, error) {
	v, ok := f.get(key)
	if !ok || v == nil {
		return nil, nil
	}
	return decodeNode(v, join(path, key))
}

func list(f fields, key, path string) ([]any, error) {
	v, ok := f.get(key)
	if !ok || v == nil {
		return nil, nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fieldError(join(path, key), "expected a list, got %T", v)
	}
	return l, nil
}

func nodeList(f fields, key, path string) ([]ir.Node, error) {
	l, err := list(f, key, path)
	if err != nil {
		return nil, err
	}
	out := make([]ir.Node, len(l))
	for i, v := range l {
		if out[i], err = decodeNode(v, at(join(path, key), i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func slotList(f fields, key, path string) ([]ir.Slot, error) {
	l, err := list(f, key, path)
	if err != nil {
		return nil, err
	}
	out := make([]ir.Slot, len(l))
	for i, v := range l {
		if out[i], err = decodeSlot(v, at(join(path, key), i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// decodeSlot reads {type, optional?, readonly?}. A bare descriptor is a
// slot with no flags.
func decodeSlot(v any, path string) (ir.Slot, error) {
	f, ok := asFields(v)
	if !ok {
		t, err := decodeNode(v, path)
		return ir.Slot{Type: t}, err
	}
	if _, hasType := f.get("type"); !hasType {
		t, err := decodeNode(v, path)
		return ir.Slot{Type: t}, err
	}
	t, err := nodeField(f, "type", path)
	if err != nil {
		return ir.Slot{}, err
	}
	s := ir.Slot{Type: t}
	if s.Optional, err = boolField(f, "optional", path); err != nil {
		return ir.Slot{}, err
	}
	if s.Readonly, err = boolField(f, "readonly", path); err != nil {
		return ir.Slot{}, err
	}
	return s, nil
}

func boolField(f fields, key, path string) (bool, error) {
	v, ok := f.get(key)
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fieldError(join(path, key), "expected a boolean, got %T", v)
	}
	return b, nil
}

func decodeLiteral(f fields, path string) (ir.Node, error) {
	if v, ok := f.get("const"); ok {
		s, ok := v.(string)
		if !ok {
			return nil, fieldError(join(path, "const"), "expected a string, got %T", v)
		}
		return ir.StringLit(s), nil
	}
	if v, ok := f.get("number"); ok {
		n, err := number(v, join(path, "number"))
		if err != nil {
			return nil, err
		}
		return ir.NumberLit(n), nil
	}
	if v, ok := f.get("boolean"); ok {
		b, ok := v.(bool)
		if !ok {
			return nil, fieldError(join(path, "boolean"), "expected a boolean, got %T", v)
		}
		return ir.BoolLit(b), nil
	}
	if v, ok := f.get("bigint"); ok {
		digits := fmt.Sprint(v)
		if !isDigits(strings.TrimPrefix(digits, "-")) {
			return nil, fieldError(join(path, "bigint"), "invalid bigint %q", digits)
		}
		return ir.BigIntLit(digits), nil
	}
	return nil, fieldError(path, "literal needs one of const, number, boolean or bigint")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// number accepts the decimal-string wire form as well as decoded numbers.
func number(v any, path string) (float64, error) {
	var n float64
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fieldError(path, "invalid number %q", x)
		}
		n = f
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fieldError(path, "invalid number %q", x.String())
		}
		n = f
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case float64:
		n = x
	default:
		return 0, fieldError(path, "expected a number, got %T", v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fieldError(path, "number must be finite")
	}
	return n, nil
}

func decodeObject(f fields, path string) (ir.Node, error) {
	obj := &ir.Object{}
	if v, ok := f.get("properties"); ok && v != nil {
		p := join(path, "properties")
		if l, isList := v.([]any); isList {
			for i, item := range l {
				pf, ok := asFields(item)
				if !ok {
					return nil, fieldError(at(p, i), "expected a property, got %T", item)
				}
				name, err := stringField(pf, "name", at(p, i))
				if err != nil {
					return nil, err
				}
				slot, err := decodeSlot(item, at(p, i))
				if err != nil {
					return nil, err
				}
				obj.Properties = append(obj.Properties, ir.Property{Name: name, Slot: slot})
			}
		} else {
			pf, ok := asFields(v)
			if !ok {
				return nil, fieldError(p, "expected a list or struct, got %T", v)
			}
			for _, name := range pf.keys {
				slot, err := decodeSlot(pf.vals[name], join(p, name))
				if err != nil {
					return nil, err
				}
				obj.Properties = append(obj.Properties, ir.Property{Name: name, Slot: slot})
			}
		}
	}

	if v, ok := f.get("additional"); ok && v != nil {
		switch x := v.(type) {
		case bool:
			if !x {
				obj.Additional.Policy = ir.AdditionalClosed
			}
		default:
			schema, err := decodeNode(v, join(path, "additional"))
			if err != nil {
				return nil, err
			}
			obj.Additional = ir.Additional{Policy: ir.AdditionalSchema, Schema: schema}
		}
	}
	return obj, nil
}

func decodeCyclic(f fields, path string) (ir.Node, error) {
	root, err := stringField(f, "root", path)
	if err != nil {
		return nil, err
	}
	defs, err := decodeDefs(f, "defs", path)
	if err != nil {
		return nil, err
	}
	return ir.NewCyclic(defs, root), nil
}

func decodeDefs(f fields, key, path string) (map[string]ir.Node, error) {
	v, ok := f.get(key)
	if !ok || v == nil {
		return map[string]ir.Node{}, nil
	}
	df, ok := asFields(v)
	if !ok {
		return nil, fieldError(join(path, key), "expected a struct, got %T", v)
	}
	defs := make(map[string]ir.Node, len(df.keys))
	for _, name := range df.keys {
		n, err := decodeNode(df.vals[name], join(join(path, key), name))
		if err != nil {
			return nil, err
		}
		defs[name] = n
	}
	return defs, nil
}

func decodeGeneric(f fields, path string) (ir.Node, error) {
	l, err := list(f, "params", path)
	if err != nil {
		return nil, err
	}
	params := make([]ir.Param, len(l))
	for i, item := range l {
		p := at(join(path, "params"), i)
		if name, ok := item.(string); ok {
			params[i] = ir.Param{Name: name}
			continue
		}
		pf, ok := asFields(item)
		if !ok {
			return nil, fieldError(p, "expected a parameter, got %T", item)
		}
		if params[i].Name, err = stringField(pf, "name", p); err != nil {
			return nil, err
		}
		if params[i].Constraint, err = optionalNode(pf, "constraint", p); err != nil {
			return nil, err
		}
		if params[i].Default, err = optionalNode(pf, "default", p); err != nil {
			return nil, err
		}
	}
	body, err := nodeField(f, "body", path)
	if err != nil {
		return nil, err
	}
	return ir.NewGeneric(params, body), nil
}

func decodeAction(f fields, path string) (ir.Action, error) {
	v, ok := f.get("action")
	if !ok || v == nil {
		return ir.ActionAdd, nil
	}
	switch v {
	case "add":
		return ir.ActionAdd, nil
	case "remove":
		return ir.ActionRemove, nil
	}
	return 0, fieldError(join(path, "action"), "action must be \"add\" or \"remove\", got %v", v)
}
