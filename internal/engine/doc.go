// Package engine implements the structural extends relation.
//
// Extends(left, right, bindings) decides whether left is assignable to
// right. The answer is one of True (with inference bindings), False, or
// AmbiguousUnion when left is Any and the relation is both satisfiable and
// refutable.
//
// RULE ORDER:
//
//  0. Right Infer: always True, binds the name to left
//  1. Right Any or Unknown: True (a Cyclic left against Unknown is decided
//     by the kind of its unfolded root)
//  2. Left Never: True
//  3. Left Any: AmbiguousUnion
//  4. Left Unknown: False unless right is a union with an Any/Unknown member
//  5. Not: nested pairs cancel; a remaining Not degrades to Unknown
//  6. Left Union: distributes over members
//  7. Right Union: first member that is True wins
//  8. Container and primitive shape rules
//
// Inside containers a member result of AmbiguousUnion counts as satisfied;
// only False fails.
//
// CRITICAL PATTERNS:
//
// Totality: every call terminates. Ref and Cyclic nodes are resolved through
// cyclic.Scope, and a back-reference becomes an opaque placeholder (Any as
// the operand, Unknown as the target) instead of recursing.
//
// No hidden state: the visiting sets and bindings travel through the call
// chain. Extends is safe for concurrent use and idempotent.
package engine
