// Package expr renders operator trees as boolean-expression strings.
//
// The output addresses fields through a variable, the way a graph query
// language addresses properties of a bound node:
//
//	{x: {$lt: 12}}              -> (n.x < 12)
//	{labels: {$all: ['A']}}     -> ('A' in n.labels)
//	{$or: [{x: 'R'}, {x: 'S'}]} -> (n.x = 'R') or (n.x = 'S')
//
// String operands are interpolated verbatim inside single quotes. The
// output is intended for display and for a secondary query dialect, not
// for untrusted input; WithEscaping doubles embedded quotes for callers
// that need it.
//
// Rendering is a pure function: a Renderer holds only its options and is
// safe for concurrent use.
package expr
