package engine

import (
	"strconv"

	"github.com/roach88/typerel/internal/cyclic"
	"github.com/roach88/typerel/internal/ir"
	"github.com/roach88/typerel/internal/pattern"
)

func relateObject(l ir.Node, r *ir.Object, ls, rs cyclic.Scope) (Outcome, Bindings) {
	switch x := l.(type) {
	case *ir.Object:
		return objectToObject(x, r, ls, rs)
	case *ir.Record:
		return recordToObject(x, r, ls, rs)
	case ir.String, ir.Number, ir.Integer, ir.Boolean, ir.BigInt, ir.Literal,
		*ir.TemplateLiteral, *ir.Array, *ir.Tuple, *ir.Function, *ir.Constructor,
		*ir.Promise, *ir.Iterator, *ir.AsyncIterator:
		// Non-nullish values extend an open object that requires nothing.
		if r.Additional.Policy != ir.AdditionalOpen {
			return False, nil
		}
		var found Bindings
		for _, rp := range r.Properties {
			if !rp.Optional {
				return False, nil
			}
			found = found.Merge(unknownInfers(rp.Type))
		}
		return True, found
	}
	return False, nil
}

// objectToObject checks every right property against the left, then the
// right object's additional-properties policy against undeclared left keys.
func objectToObject(l, r *ir.Object, ls, rs cyclic.Scope) (Outcome, Bindings) {
	var found Bindings
	for _, rp := range r.Properties {
		lp, ok := l.Property(rp.Name)
		if !ok {
			if !rp.Optional {
				return False, nil
			}
			found = found.Merge(unknownInfers(rp.Type))
			continue
		}
		if lp.Optional && !rp.Optional {
			return False, nil
		}
		o, b := relate(lp.Type, rp.Type, ls, rs)
		if !pass(o) {
			return False, nil
		}
		found = found.Merge(b)
	}

	switch r.Additional.Policy {
	case ir.AdditionalClosed:
		for _, lp := range l.Properties {
			if _, ok := r.Property(lp.Name); !ok {
				return False, nil
			}
		}
	case ir.AdditionalSchema:
		for _, lp := range l.Properties {
			if _, ok := r.Property(lp.Name); ok {
				continue
			}
			o, b := relate(lp.Type, r.Additional.Schema, ls, rs)
			if !pass(o) {
				return False, nil
			}
			found = found.Merge(b)
		}
	}
	return True, found
}

// recordToObject holds only when every right property is optional; keys the
// record can produce must carry a compatible value.
func recordToObject(l *ir.Record, r *ir.Object, ls, rs cyclic.Scope) (Outcome, Bindings) {
	var found Bindings
	for _, rp := range r.Properties {
		if !rp.Optional {
			return False, nil
		}
		if !keyMatches(rp.Name, l.Key) {
			found = found.Merge(unknownInfers(rp.Type))
			continue
		}
		o, b := relate(l.Value, rp.Type, ls, rs)
		if !pass(o) {
			return False, nil
		}
		found = found.Merge(b)
	}
	return True, found
}

func relateRecord(l ir.Node, r *ir.Record, ls, rs cyclic.Scope) (Outcome, Bindings) {
	switch x := l.(type) {
	case *ir.Record:
		if !recordKeyExtends(x.Key, r.Key, ls, rs) {
			return False, nil
		}
		return covariant(x.Value, r.Value, ls, rs)
	case *ir.Object:
		var found Bindings
		for _, p := range x.Properties {
			if !keyMatches(p.Name, r.Key) {
				return False, nil
			}
			o, b := relate(p.Type, r.Value, ls, rs)
			if !pass(o) {
				return False, nil
			}
			found = found.Merge(b)
		}
		if x.Additional.Policy == ir.AdditionalSchema {
			// Undeclared keys may be any string.
			if !recordKeyExtends(ir.String{}, r.Key, ls, rs) {
				return False, nil
			}
			o, b := relate(x.Additional.Schema, r.Value, ls, rs)
			if !pass(o) {
				return False, nil
			}
			found = found.Merge(b)
		}
		return True, found
	case ir.String:
		return fromBool(stringExtendsRecord(r, rs)), nil
	}
	// Every other scalar-versus-record case is False.
	return False, nil
}

// stringExtendsRecord is the scalar-versus-record decision table: String
// extends a record with a number or integer key iff the value is Any,
// Unknown or String.
func stringExtendsRecord(r *ir.Record, rs cyclic.Scope) bool {
	key, _ := cyclic.Resolve(r.Key, rs, cyclic.Target)
	switch key.(type) {
	case ir.Number, ir.Integer:
	default:
		return false
	}
	value, _ := cyclic.Resolve(r.Value, rs, cyclic.Target)
	switch value.(type) {
	case ir.Any, ir.Unknown, ir.String:
		return true
	}
	return false
}

// recordKeyExtends reports whether every key of domain lk is a key of
// domain rk. Property keys are strings, so a String domain accepts every
// key-like domain.
func recordKeyExtends(lk, rk ir.Node, ls, rs cyclic.Scope) bool {
	switch rk.(type) {
	case ir.Any, ir.Unknown:
		return true
	case ir.String:
		if isKeyLike(lk) {
			return true
		}
	}
	o, _ := relate(lk, rk, ls, rs)
	return pass(o)
}

func isKeyLike(n ir.Node) bool {
	switch x := n.(type) {
	case ir.String, ir.Number, ir.Integer, ir.Literal, *ir.TemplateLiteral:
		return true
	case *ir.Union:
		for _, m := range x.Members {
			if !isKeyLike(m) {
				return false
			}
		}
		return true
	}
	return false
}

// keyMatches reports whether the property name is in the key domain.
// Numeric domains accept canonical decimal spellings only.
func keyMatches(name string, domain ir.Node) bool {
	switch d := domain.(type) {
	case ir.Any, ir.Unknown, ir.String:
		return true
	case ir.Number:
		f, err := strconv.ParseFloat(name, 64)
		return err == nil && ir.FormatNumber(f) == name
	case ir.Integer:
		i, err := strconv.ParseInt(name, 10, 64)
		return err == nil && strconv.FormatInt(i, 10) == name
	case ir.Literal:
		return d.Key() == name
	case *ir.Union:
		for _, m := range d.Members {
			if keyMatches(name, m) {
				return true
			}
		}
	case *ir.TemplateLiteral:
		return pattern.Matches(d.Pattern, name)
	}
	return false
}
