// Package projection parses MongoDB-style filter objects into an operator
// tree.
//
// The operator tree is the input of the constraint-tree renderer
// (internal/expr). The relational translator (internal/relational) works
// on the raw filter object instead and does not use this package's tree.
//
// ARCHITECTURE:
//
//	[filter object] → Parse → [operator tree] → expr.Render → "(n.x < 12)"
//	                                          → Match      → in-memory test
//
// OPERATOR TREE:
//
// Node is a sealed interface with two variants:
//   - Predicate{Op, Field, Operand}: a single field test
//   - Container{Op, Parts}: Op is OpNone (plain concatenation, the implicit
//     top-level AND), OpAnd or OpOr
//
// Parse always returns a Container with Op == OpNone at the root, holding
// one part per filter member in member order.
//
// OPERATORS:
//
// The operator set is closed. Keywords are bit-exact:
//
//	$eq $lt $lte $gt $gte $in $and $or $all $size $startsWith $contains $regex
//
// Unknown keywords fail with *UnrecognizedOperatorError at parse time.
// Structurally invalid input (an operator without a field, object
// operands, a connector without an array) fails with *MalformedFilterError.
//
// Example:
//
//	tree, err := projection.Parse(ir.Obj(
//	    ir.M("age", ir.Obj(ir.M("$gte", 18))),
//	    ir.M("$or", []any{ir.Obj(ir.M("x", "R")), ir.Obj(ir.M("x", "S"))}),
//	))
//
// produces
//
//	Container{Parts: [
//	    Predicate{OpGte, "age", 18},
//	    Container{OpOr, [Predicate{OpEq, "x", "R"}, Predicate{OpEq, "x", "S"}]},
//	]}
//
// All functions in this package are pure and safe for concurrent use.
package projection
