package store

import "github.com/roach88/propgraph/internal/ir"

// Node is a labeled vertex with schemaless data.
type Node struct {
	ID     string    `json:"id"`
	Labels []string  `json:"labels"`
	Data   ir.Object `json:"data"`
}

// Edge is a labeled, directed edge with schemaless data.
type Edge struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	From  string    `json:"from"`
	To    string    `json:"to"`
	Data  ir.Object `json:"data"`
}

// Direction selects which edges of a node EdgesOf returns.
type Direction int

const (
	// Out selects edges leaving the node.
	Out Direction = iota
	// In selects edges arriving at the node.
	In
	// Both selects edges in either direction.
	Both
)

// String returns "out", "in" or "both".
func (d Direction) String() string {
	switch d {
	case Out:
		return "out"
	case In:
		return "in"
	default:
		return "both"
	}
}
