// Package compiler turns authored descriptor sources into ir.Node trees.
//
// Descriptors are written in the same kind-tagged shape that ir.ToWire
// produces, in CUE, YAML or JSON:
//
//	defs: User: {
//		kind: "object"
//		properties: {
//			id:   {type: "string", readonly: true}
//			name: "string"
//			tags: {type: {kind: "array", items: "string"}, optional: true}
//		}
//	}
//
// Anywhere a descriptor is expected a shorthand string is accepted: a
// keyword ("string", "number", "unknown", ...) or "#Name" for a Ref.
// Object properties may be a list of named slots (declaration order kept)
// or a struct keyed by name.
//
// A module is a CUE value with a defs struct and an optional checks list.
// Errors carry the CUE position when one is known.
package compiler
