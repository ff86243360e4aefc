package ir

import (
	"sort"
	"strconv"
	"strings"
)

// Format renders a descriptor in a TypeScript-like notation for
// diagnostics and CLI text output. The rendering is deterministic.
func Format(n Node) string {
	var b strings.Builder
	writeNode(&b, n, false)
	return b.String()
}

// writeNode renders n; wrap asks for parentheses around unions and
// intersections so they bind correctly under postfix operators.
func writeNode(b *strings.Builder, n Node, wrap bool) {
	switch x := n.(type) {
	case nil:
		b.WriteString("<nil>")
	case Any, Unknown, Never, Void, Null, Undefined, Boolean, Number, Integer, BigInt, String:
		b.WriteString(n.Kind().String())
	case Literal:
		writeLiteral(b, x)
	case Ref:
		b.WriteString(x.Name)
	case *Not:
		b.WriteString("not ")
		writeNode(b, x.Inner, true)
	case *Array:
		writeNode(b, x.Item, true)
		b.WriteString("[]")
	case *Tuple:
		b.WriteByte('[')
		for i, item := range x.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			if item.Readonly {
				b.WriteString("readonly ")
			}
			writeNode(b, item.Type, item.Optional)
			if item.Optional {
				b.WriteByte('?')
			}
		}
		b.WriteByte(']')
	case *Object:
		writeObject(b, x)
	case *Record:
		b.WriteString("Record<")
		writeNode(b, x.Key, false)
		b.WriteString(", ")
		writeNode(b, x.Value, false)
		b.WriteByte('>')
	case *Union:
		writeJoined(b, x.Members, " | ", wrap)
	case *Intersect:
		writeJoined(b, x.Members, " & ", wrap)
	case *Function:
		if wrap {
			b.WriteByte('(')
		}
		writeParams(b, x.Params)
		b.WriteString(" => ")
		writeNode(b, x.Returns, false)
		if wrap {
			b.WriteByte(')')
		}
	case *Constructor:
		if wrap {
			b.WriteByte('(')
		}
		b.WriteString("new ")
		writeParams(b, x.Params)
		b.WriteString(" => ")
		writeNode(b, x.Instance, false)
		if wrap {
			b.WriteByte(')')
		}
	case *Promise:
		writeApplied(b, "Promise", x.Item)
	case *Iterator:
		writeApplied(b, "Iterator", x.Item)
	case *AsyncIterator:
		writeApplied(b, "AsyncIterator", x.Item)
	case *TemplateLiteral:
		b.WriteByte('`')
		b.WriteString(x.Pattern.String())
		b.WriteByte('`')
	case *Cyclic:
		b.WriteString("cyclic ")
		b.WriteString(x.Root)
		b.WriteString(" {")
		names := make([]string, 0, len(x.Defs))
		for name := range x.Defs {
			names = append(names, name)
		}
		sort.Strings(names)
		for i, name := range names {
			if i > 0 {
				b.WriteByte(';')
			}
			b.WriteString(" ")
			b.WriteString(name)
			b.WriteString(" = ")
			writeNode(b, x.Defs[name], false)
		}
		b.WriteString(" }")
	case *Infer:
		b.WriteString("infer ")
		b.WriteString(x.Name)
		if x.Constraint != nil {
			b.WriteString(" extends ")
			writeNode(b, x.Constraint, true)
		}
	case *Generic:
		b.WriteByte('<')
		for i, p := range x.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name)
			if p.Constraint != nil {
				b.WriteString(" extends ")
				writeNode(b, p.Constraint, false)
			}
			if p.Default != nil {
				b.WriteString(" = ")
				writeNode(b, p.Default, false)
			}
		}
		b.WriteString("> ")
		writeNode(b, x.Body, false)
	case *Call:
		writeNode(b, x.Target, true)
		b.WriteByte('<')
		for i, arg := range x.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeNode(b, arg, false)
		}
		b.WriteByte('>')
	case *Mapped:
		b.WriteString("{ [")
		b.WriteString(x.Key)
		b.WriteString(" in ")
		writeNode(b, x.Domain, false)
		if x.Remap != nil {
			b.WriteString(" as ")
			writeNode(b, x.Remap, false)
		}
		b.WriteString("]: ")
		writeNode(b, x.Value, false)
		b.WriteString(" }")
	case *KeyOf:
		b.WriteString("keyof ")
		writeNode(b, x.Inner, true)
	case *Index:
		writeNode(b, x.Object, true)
		b.WriteByte('[')
		writeNode(b, x.Key, false)
		b.WriteByte(']')
	case *Optional:
		writeModifier(b, "optional", x.Action, x.Inner)
	case *Readonly:
		writeModifier(b, "readonly", x.Action, x.Inner)
	}
}

func writeLiteral(b *strings.Builder, l Literal) {
	switch l.Of {
	case LiteralString:
		b.WriteString(strconv.Quote(l.Str))
	case LiteralNumber:
		b.WriteString(FormatNumber(l.Num))
	case LiteralBoolean:
		b.WriteString(strconv.FormatBool(l.Bool))
	case LiteralBigInt:
		b.WriteString(l.Str)
		b.WriteByte('n')
	}
}

func writeObject(b *strings.Builder, o *Object) {
	if len(o.Properties) == 0 && o.Additional.Policy == AdditionalOpen {
		b.WriteString("{}")
		return
	}
	b.WriteString("{ ")
	for _, p := range o.Properties {
		if p.Readonly {
			b.WriteString("readonly ")
		}
		b.WriteString(p.Name)
		if p.Optional {
			b.WriteByte('?')
		}
		b.WriteString(": ")
		writeNode(b, p.Type, false)
		b.WriteString("; ")
	}
	switch o.Additional.Policy {
	case AdditionalClosed:
		b.WriteString("[key: string]: never; ")
	case AdditionalSchema:
		b.WriteString("[key: string]: ")
		writeNode(b, o.Additional.Schema, false)
		b.WriteString("; ")
	}
	b.WriteByte('}')
}

func writeJoined(b *strings.Builder, members []Node, sep string, wrap bool) {
	if len(members) == 0 {
		b.WriteString("never")
		return
	}
	if wrap && len(members) > 1 {
		b.WriteByte('(')
	}
	for i, m := range members {
		if i > 0 {
			b.WriteString(sep)
		}
		writeNode(b, m, true)
	}
	if wrap && len(members) > 1 {
		b.WriteByte(')')
	}
}

func writeParams(b *strings.Builder, params []Slot) {
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("arg")
		b.WriteString(strconv.Itoa(i))
		if p.Optional {
			b.WriteByte('?')
		}
		b.WriteString(": ")
		writeNode(b, p.Type, false)
	}
	b.WriteByte(')')
}

func writeApplied(b *strings.Builder, name string, item Node) {
	b.WriteString(name)
	b.WriteByte('<')
	writeNode(b, item, false)
	b.WriteByte('>')
}

func writeModifier(b *strings.Builder, name string, action Action, inner Node) {
	if action == ActionRemove {
		b.WriteByte('-')
	}
	b.WriteString(name)
	b.WriteByte('(')
	writeNode(b, inner, false)
	b.WriteByte(')')
}
