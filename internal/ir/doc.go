// Package ir provides the descriptor model for typerel.
//
// This package contains the closed set of descriptor node types, the
// template pattern AST, structural equality, rendering, traversal, canonical
// JSON and content hashing. All other internal packages import ir; ir imports
// nothing internal. This keeps the descriptor model the foundational layer
// with no circular dependencies.
//
// Key design constraints:
//   - Node is sealed: only types declared here implement it
//   - Nodes are never mutated after construction; every transformation
//     allocates a new tree and may share unchanged subtrees
//   - Back-references only occur inside Cyclic.Defs, by name
//   - NO float values in canonical JSON; number literals encode as strings
package ir
