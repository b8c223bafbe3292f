package graph

import (
	"strings"

	"github.com/roach88/propgraph/internal/ir"
	"github.com/roach88/propgraph/internal/projection"
	"github.com/roach88/propgraph/internal/relational"
	"github.com/roach88/propgraph/internal/store"
)

// nodeRecord exposes a node to projection.Match the way the store exposes
// it to SQL: id and labels (comma-joined) are columns, every other field
// is looked up in data.
type nodeRecord store.Node

// Record returns a projection.Record view of n.
func Record(n store.Node) projection.Record {
	return nodeRecord(n)
}

// Lookup implements projection.Record.
func (r nodeRecord) Lookup(field string) (ir.Value, bool) {
	switch field {
	case relational.FieldID:
		return ir.String(r.ID), true
	case relational.FieldLabels:
		return ir.String(strings.Join(r.Labels, ",")), true
	}
	return projection.ObjectRecord(r.Data).Lookup(field)
}
