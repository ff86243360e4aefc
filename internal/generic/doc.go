// Package generic instantiates generic descriptor templates.
//
// Call binds a Generic's parameters to arguments, checks each parameter
// constraint with engine.Extends and substitutes the arguments into the
// body. Instantiate rewrites a whole tree against a definitions map,
// evaluating every Call, Mapped, KeyOf and Index node whose operands are
// concrete. Anything that cannot be evaluated yet (an unresolved target, a
// non-finite key domain) is left in place, deferred, and reported at debug
// level.
//
// Expansion of recursive generics is bounded: a definition being expanded
// is entered in a cyclic.Scope, and a Call back into it is deferred.
package generic
