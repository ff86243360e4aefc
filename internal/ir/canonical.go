package ir

import (
	"bytes"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalNode encodes a descriptor as canonical JSON.
//
// Every node is an object with a "kind" field naming its variant (see
// Kind.String). Object properties are emitted as an ordered list so that
// declaration order survives a round trip. Number literals are carried as
// decimal strings because floats are forbidden in canonical JSON.
func MarshalNode(n Node) ([]byte, error) {
	v, err := ToWire(n)
	if err != nil {
		return nil, err
	}
	return MarshalCanonical(v)
}

// ToWire converts a descriptor into the generic map/slice form used by the
// JSON encoding. The result only contains map[string]any, []any, string and
// bool values.
func ToWire(n Node) (any, error) {
	if n == nil {
		return nil, fmt.Errorf("nil descriptor")
	}
	obj := map[string]any{"kind": n.Kind().String()}
	var err error
	set := func(key string, child Node) {
		if err != nil {
			return
		}
		if obj[key], err = ToWire(child); err != nil {
			err = fmt.Errorf("%s: %w", key, err)
		}
	}
	// opt is set for children that may be absent.
	opt := func(key string, child Node) {
		if child != nil {
			set(key, child)
		}
	}

	switch x := n.(type) {
	case Any, Unknown, Never, Void, Null, Undefined, Boolean, Number, Integer, BigInt, String:
	case Literal:
		switch x.Of {
		case LiteralString:
			obj["const"] = x.Str
		case LiteralNumber:
			obj["number"] = FormatNumber(x.Num)
		case LiteralBoolean:
			obj["boolean"] = x.Bool
		case LiteralBigInt:
			obj["bigint"] = x.Str
		}
	case Ref:
		obj["name"] = x.Name
	case *Not:
		set("not", x.Inner)
	case *Array:
		set("items", x.Item)
	case *Tuple:
		obj["items"], err = slotsToWire(x.Items)
	case *Object:
		props := make([]any, len(x.Properties))
		for i, p := range x.Properties {
			s, serr := slotToWire(p.Slot)
			if serr != nil {
				return nil, fmt.Errorf("property %q: %w", p.Name, serr)
			}
			s["name"] = p.Name
			props[i] = s
		}
		obj["properties"] = props
		switch x.Additional.Policy {
		case AdditionalClosed:
			obj["additional"] = false
		case AdditionalSchema:
			set("additional", x.Additional.Schema)
		}
	case *Record:
		set("key", x.Key)
		set("value", x.Value)
	case *Union:
		obj["members"], err = nodesToWire(x.Members)
	case *Intersect:
		obj["members"], err = nodesToWire(x.Members)
	case *Function:
		obj["params"], err = slotsToWire(x.Params)
		set("returns", x.Returns)
	case *Constructor:
		obj["params"], err = slotsToWire(x.Params)
		set("instance", x.Instance)
	case *Promise:
		set("item", x.Item)
	case *Iterator:
		set("item", x.Item)
	case *AsyncIterator:
		set("item", x.Item)
	case *TemplateLiteral:
		obj["pattern"] = x.Pattern.String()
	case *Cyclic:
		defs := make(map[string]any, len(x.Defs))
		for name, def := range x.Defs {
			if defs[name], err = ToWire(def); err != nil {
				return nil, fmt.Errorf("def %q: %w", name, err)
			}
		}
		obj["defs"] = defs
		obj["root"] = x.Root
	case *Infer:
		obj["name"] = x.Name
		opt("constraint", x.Constraint)
	case *Generic:
		params := make([]any, len(x.Params))
		for i, p := range x.Params {
			param := map[string]any{"name": p.Name}
			if p.Constraint != nil {
				if param["constraint"], err = ToWire(p.Constraint); err != nil {
					return nil, err
				}
			}
			if p.Default != nil {
				if param["default"], err = ToWire(p.Default); err != nil {
					return nil, err
				}
			}
			params[i] = param
		}
		obj["params"] = params
		set("body", x.Body)
	case *Call:
		set("target", x.Target)
		obj["args"], err = nodesToWire(x.Args)
	case *Mapped:
		obj["key"] = x.Key
		set("domain", x.Domain)
		opt("remap", x.Remap)
		set("value", x.Value)
	case *KeyOf:
		set("of", x.Inner)
	case *Index:
		set("object", x.Object)
		set("index", x.Key)
	case *Optional:
		obj["action"] = x.Action.String()
		set("of", x.Inner)
	case *Readonly:
		obj["action"] = x.Action.String()
		set("of", x.Inner)
	default:
		return nil, fmt.Errorf("unknown descriptor type: %T", n)
	}
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func nodesToWire(nodes []Node) ([]any, error) {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		v, err := ToWire(n)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func slotsToWire(slots []Slot) ([]any, error) {
	out := make([]any, len(slots))
	for i, s := range slots {
		v, err := slotToWire(s)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func slotToWire(s Slot) (map[string]any, error) {
	t, err := ToWire(s.Type)
	if err != nil {
		return nil, err
	}
	out := map[string]any{"type": t}
	if s.Optional {
		out["optional"] = true
	}
	if s.Readonly {
		out["readonly"] = true
	}
	return out, nil
}

// MarshalCanonical produces RFC 8785 canonical JSON.
// CRITICAL: This is the ONLY serialization used for content hashing.
//
// Differences from encoding/json:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping; U+2028/U+2029 are emitted literally
//  3. Strings are NFC normalized
//  4. No floats and no null
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		writeCanonicalString(buf, val)
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case int:
		buf.WriteString(strconv.Itoa(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case []string:
		elems := make([]any, len(val))
		for i, s := range val {
			elems[i] = s
		}
		return writeCanonical(buf, elems)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareKeysRFC8785)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// writeCanonicalString escapes only what RFC 8785 requires: quote,
// backslash and control characters below U+0020.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	const hex = "0123456789abcdef"
	buf.WriteByte('"')
	for _, r := range norm.NFC.String(s) {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hex[r>>4])
				buf.WriteByte(hex[r&0xf])
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}

// compareKeysRFC8785 orders strings by UTF-16 code units.
// Go's default string comparison uses UTF-8, which orders supplementary
// plane characters differently.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// SortedNames returns the keys of a definitions map in canonical order.
func SortedNames(defs map[string]Node) []string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return compareKeysRFC8785(names[i], names[j]) < 0
	})
	return names
}
