// Package cyclic resolves named, self-referential descriptor definitions.
//
// Definitions live in a name → node map (the Defs of an ir.Cyclic or an
// ambient definitions module). Resolution follows Ref nodes one name at a
// time and records each name it enters in a visiting set carried by Scope.
// Re-entering a visiting name is a true cycle and yields an opaque
// placeholder instead of recursing, so every traversal terminates no matter
// how the map is constructed.
//
// Scope is an immutable value. Callers pass it down their own recursion;
// there is no package-level state.
package cyclic
