// Package store provides SQLite-backed storage for a property graph.
//
// Two tables hold the graph:
//   - nodes: id, comma-joined labels, schemaless JSON data
//   - edges: id, label, from_id, to_id, schemaless JSON data
//
// A node_labels table indexes labels; it is maintained on every node
// write and cascades on delete, as do edges.
//
// Queries take relational descriptors and are compiled by querysql, so
// every row-returning query is ordered by id and fully parameterized.
// SelectNodesByExpression runs a rendered boolean expression instead; the
// store registers a regexp SQL function so the expression's regexp
// operator evaluates.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
