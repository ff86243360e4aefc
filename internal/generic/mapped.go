package generic

import (
	"github.com/roach88/typerel/internal/cyclic"
	"github.com/roach88/typerel/internal/ir"
)

// mappedKey is one key of a Mapped domain. source holds the flags of the
// property the key was read from, when the domain was KeyOf an object.
type mappedKey struct {
	lit    ir.Literal
	source *ir.Slot
}

func (r *run) mapped(x *ir.Mapped, s cyclic.Scope) (ir.Node, error) {
	keys, ok, err := r.domainKeys(x.Domain, s)
	if err != nil {
		return nil, err
	}
	if !ok {
		r.in.logger.Debug("deferring mapped",
			"key", x.Key,
			"domain", ir.Format(x.Domain),
			"reason", "domain is not finite")
		return r.deferMapped(x, s)
	}

	var props []ir.Property
	for _, k := range keys {
		env := map[string]ir.Node{x.Key: k.lit}

		names := []ir.Literal{k.lit}
		if x.Remap != nil {
			remap, err := r.eval(Substitute(x.Remap, env), s)
			if err != nil {
				return nil, err
			}
			if names, ok = literals(remap); !ok {
				r.in.logger.Debug("deferring mapped",
					"key", x.Key,
					"remap", ir.Format(remap),
					"reason", "remap is not a key")
				return r.deferMapped(x, s)
			}
		}
		if len(names) == 0 {
			continue
		}

		value, err := r.eval(Substitute(x.Value, env), s)
		if err != nil {
			return nil, err
		}
		slot := modifiedSlot(value, k.source)
		for _, name := range names {
			props = addProperty(props, name.Key(), slot)
		}
	}
	return ir.NewObject(props...), nil
}

// deferMapped returns x with only its domain evaluated. Remap and value
// mention the key variable and stay symbolic.
func (r *run) deferMapped(x *ir.Mapped, s cyclic.Scope) (ir.Node, error) {
	domain, err := r.eval(x.Domain, s)
	if err != nil {
		return nil, err
	}
	if domain == x.Domain {
		return x, nil
	}
	return ir.NewMapped(x.Key, domain, x.Remap, x.Value), nil
}

// domainKeys reduces a Mapped domain to its keys. KeyOf over an object
// keeps the property flags so unwrapped values pass them through.
func (r *run) domainKeys(domain ir.Node, s cyclic.Scope) ([]mappedKey, bool, error) {
	if k, isKeyOf := domain.(*ir.KeyOf); isKeyOf {
		inner, ok, err := r.operand(k.Inner, s)
		if err != nil {
			return nil, false, err
		}
		if o, isObject := inner.(*ir.Object); ok && isObject && o.Additional.Policy != ir.AdditionalSchema {
			keys := make([]mappedKey, len(o.Properties))
			for i := range o.Properties {
				keys[i] = mappedKey{lit: ir.StringLit(o.Properties[i].Name), source: &o.Properties[i].Slot}
			}
			return keys, true, nil
		}
	}

	reduced, err := r.eval(domain, s)
	if err != nil {
		return nil, false, err
	}
	if ref, isRef := reduced.(ir.Ref); isRef {
		if def, _, ok := cyclic.Follow(ref, s); ok {
			reduced = def
		}
	}
	lits, ok := literals(reduced)
	if !ok {
		return nil, false, nil
	}
	keys := make([]mappedKey, 0, len(lits))
	seen := make(map[ir.Literal]bool, len(lits))
	for _, l := range lits {
		if !seen[l] {
			seen[l] = true
			keys = append(keys, mappedKey{lit: l})
		}
	}
	return keys, true, nil
}

// modifiedSlot peels Optional and Readonly wrappers off value, starting
// from the source flags. A value with no wrapper passes the source flags
// through unchanged.
func modifiedSlot(value ir.Node, source *ir.Slot) ir.Slot {
	var slot ir.Slot
	if source != nil {
		slot.Optional = source.Optional
		slot.Readonly = source.Readonly
	}
	for {
		switch w := value.(type) {
		case *ir.Optional:
			slot.Optional = w.Action == ir.ActionAdd
			value = w.Inner
			continue
		case *ir.Readonly:
			slot.Readonly = w.Action == ir.ActionAdd
			value = w.Inner
			continue
		}
		slot.Type = value
		return slot
	}
}

// addProperty appends a property, or widens an existing one when two keys
// remap to the same name.
func addProperty(props []ir.Property, name string, slot ir.Slot) []ir.Property {
	for i, p := range props {
		if p.Name == name {
			props[i].Type = ir.UnionOf(p.Type, slot.Type)
			props[i].Optional = p.Optional && slot.Optional
			props[i].Readonly = p.Readonly && slot.Readonly
			return props
		}
	}
	return append(props, ir.Property{Name: name, Slot: slot})
}
