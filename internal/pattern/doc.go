// Package pattern implements the template pattern algebra.
//
// A pattern is a small alternation-and-group language:
//
//	(   opens a group
//	)   closes the innermost group
//	|   separates alternation branches at the current level
//	\c  is the literal character c (used for \( \) \| \\)
//
// Everything else is literal text. Parse turns text into an ir.Pattern and
// Generate expands a bounded pattern into its finite set of strings.
//
// Some literal runs are open scalar interpolations rather than text: the
// string wildcard ".*" and the digit run "[1-9][0-9]*" used by the number
// and integer domains. A pattern containing one is unbounded; it is never
// enumerated and is matched with Regexp instead.
package pattern
