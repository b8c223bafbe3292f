// Package graph is the CRUD and traversal layer over the property-graph
// store.
//
// Filters reach the store two ways. Find, Count and Delete translate the
// filter into a relational descriptor, merge the caller's limit into it,
// and run the compiled SQL. FindNodesByExpression parses the filter into
// an operator tree and runs its rendered boolean expression. Both select
// the same nodes for filters both can express.
//
// Traversals (Neighborhood, PathQuery) walk edges from the store and
// evaluate step filters in memory with projection.Match.
package graph
