package projection

import (
	"fmt"

	"github.com/roach88/propgraph/internal/ir"
)

// Op is the closed enumeration of filter operators.
type Op int

const (
	// OpNone marks a container without a connector (plain concatenation).
	OpNone Op = iota
	OpEq
	OpLt
	OpLte
	OpGt
	OpGte
	OpIn
	OpAnd
	OpOr
	OpAll
	OpSize
	OpStartsWith
	OpContains
	OpRegex
)

var keywords = map[string]Op{
	"$eq":         OpEq,
	"$lt":         OpLt,
	"$lte":        OpLte,
	"$gt":         OpGt,
	"$gte":        OpGte,
	"$in":         OpIn,
	"$and":        OpAnd,
	"$or":         OpOr,
	"$all":        OpAll,
	"$size":       OpSize,
	"$startsWith": OpStartsWith,
	"$contains":   OpContains,
	"$regex":      OpRegex,
}

var opNames = map[Op]string{
	OpEq:         "$eq",
	OpLt:         "$lt",
	OpLte:        "$lte",
	OpGt:         "$gt",
	OpGte:        "$gte",
	OpIn:         "$in",
	OpAnd:        "$and",
	OpOr:         "$or",
	OpAll:        "$all",
	OpSize:       "$size",
	OpStartsWith: "$startsWith",
	OpContains:   "$contains",
	OpRegex:      "$regex",
}

// ParseOp maps a filter keyword such as "$gte" to its Op.
// Unknown keywords return *UnrecognizedOperatorError.
func ParseOp(keyword string) (Op, error) {
	op, ok := keywords[keyword]
	if !ok {
		return OpNone, &UnrecognizedOperatorError{Keyword: keyword}
	}
	return op, nil
}

// String returns the filter keyword for op, or "" for OpNone.
func (op Op) String() string {
	if op == OpNone {
		return ""
	}
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// IsConnector reports whether op joins child nodes ($and, $or).
func (op Op) IsConnector() bool {
	return op == OpAnd || op == OpOr
}

// Node is a node of the operator tree.
//
// This is a sealed interface - only Predicate and Container implement it,
// so renderers can switch exhaustively over the two variants.
type Node interface {
	projectionNode() // Marker method - seals interface to this package
}

// Predicate tests a single field.
//
// Operand is a scalar (ir.String, ir.Int, ir.Float, ir.Bool, ir.Null) or an
// ir.Array of scalars. It is never an ir.Object.
type Predicate struct {
	Op      Op
	Field   string
	Operand ir.Value
}

func (Predicate) projectionNode() {}

// Container groups child nodes.
//
// Op == OpNone concatenates the children (the implicit top-level AND);
// OpAnd and OpOr join them with the connector.
type Container struct {
	Op    Op
	Parts []Node
}

func (Container) projectionNode() {}

// asPredicate normalizes value and pointer predicates.
func asPredicate(n Node) (Predicate, bool) {
	switch p := n.(type) {
	case Predicate:
		return p, true
	case *Predicate:
		if p == nil {
			return Predicate{}, false
		}
		return *p, true
	}
	return Predicate{}, false
}

// asContainer normalizes value and pointer containers.
func asContainer(n Node) (Container, bool) {
	switch c := n.(type) {
	case Container:
		return c, true
	case *Container:
		if c == nil {
			return Container{}, false
		}
		return *c, true
	}
	return Container{}, false
}

// Inspect returns the variant held by n. Exactly one of the two booleans is
// true for a non-nil node.
func Inspect(n Node) (p Predicate, isPredicate bool, c Container, isContainer bool) {
	p, isPredicate = asPredicate(n)
	c, isContainer = asContainer(n)
	return p, isPredicate, c, isContainer
}

// Fields returns the distinct field names referenced by n, in first-seen
// order.
func Fields(n Node) []string {
	var fields []string
	seen := map[string]bool{}
	var walk func(Node)
	walk = func(n Node) {
		if p, ok := asPredicate(n); ok {
			if !seen[p.Field] {
				seen[p.Field] = true
				fields = append(fields, p.Field)
			}
			return
		}
		if c, ok := asContainer(n); ok {
			for _, part := range c.Parts {
				walk(part)
			}
		}
	}
	walk(n)
	return fields
}
