package relational

import (
	"fmt"

	"github.com/roach88/propgraph/internal/ir"
)

// Op is an operator tag. Tags are keys distinct from field names.
type Op int

const (
	OpEq Op = iota + 1
	OpLt
	OpLte
	OpGt
	OpGte
	OpIn
	OpAnd
	OpOr
	OpStartsWith
	OpContains
)

// tags maps connector keywords to operator tags. $size has no tag.
var tags = map[string]Op{
	"$eq":         OpEq,
	"$lt":         OpLt,
	"$lte":        OpLte,
	"$gt":         OpGt,
	"$gte":        OpGte,
	"$in":         OpIn,
	"$and":        OpAnd,
	"$or":         OpOr,
	"$startsWith": OpStartsWith,
	"$contains":   OpContains,
}

var tagNames = map[Op]string{
	OpEq:         "$eq",
	OpLt:         "$lt",
	OpLte:        "$lte",
	OpGt:         "$gt",
	OpGte:        "$gte",
	OpIn:         "$in",
	OpAnd:        "$and",
	OpOr:         "$or",
	OpStartsWith: "$startsWith",
	OpContains:   "$contains",
}

// String returns the keyword the tag was translated from.
func (op Op) String() string {
	if name, ok := tagNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Key is a Mapping key: an operator tag or a field name.
type Key struct {
	Op    Op
	Field string
}

// Field returns a field-name key.
func Field(name string) Key { return Key{Field: name} }

// Tag returns an operator-tag key.
func Tag(op Op) Key { return Key{Op: op} }

// IsOp reports whether k is an operator tag.
func (k Key) IsOp() bool { return k.Op != 0 }

// String returns the field name, or the keyword of an operator tag.
func (k Key) String() string {
	if k.IsOp() {
		return k.Op.String()
	}
	return k.Field
}

// Term is a translated value: a Leaf, a Mapping or a List.
type Term interface {
	relationalTerm()
}

// Leaf is a scalar constraint value, equality when it is the direct value
// of a field key.
type Leaf struct {
	Value ir.Value
}

// List is a translated array; each element translated on its own.
type List []Term

// Entry is one key/constraint pair of a Mapping.
type Entry struct {
	Key   Key
	Value Term
}

// Mapping is an ordered key-to-constraint mapping. Order follows the
// filter's member order.
type Mapping []Entry

func (Leaf) relationalTerm()    {}
func (List) relationalTerm()    {}
func (Mapping) relationalTerm() {}

// Get returns the value of the first entry with key k.
func (m Mapping) Get(k Key) (Term, bool) {
	for _, e := range m {
		if e.Key == k {
			return e.Value, true
		}
	}
	return nil, false
}

// SizePredicate constrains the length of the JSON array at Path, the
// unrewritten key the $size operator was found under.
type SizePredicate struct {
	Path string
	Size ir.Value
}

// Clause is the where clause of a Descriptor: a Mapping or a Sequence.
type Clause interface {
	relationalClause()
}

// Sequence is a where clause holding standalone predicates followed by
// the ordinary mapping. Mapping is empty when every constraint was
// standalone.
type Sequence struct {
	Standalone []SizePredicate
	Mapping    Mapping
}

func (Mapping) relationalClause()  {}
func (Sequence) relationalClause() {}

// Len returns the number of elements the sequence renders as.
func (s Sequence) Len() int {
	if len(s.Mapping) == 0 {
		return len(s.Standalone)
	}
	return len(s.Standalone) + 1
}

// Descriptor is a relational query. Where is nil for the empty filter.
//
// Limit and Offset are never set by Translate; the graph adapter merges
// them in before execution. Zero means unset.
type Descriptor struct {
	Where  Clause
	Limit  int
	Offset int
}

// WithLimit returns a copy of d with limit and offset set.
func (d Descriptor) WithLimit(limit, offset int) Descriptor {
	d.Limit = limit
	d.Offset = offset
	return d
}
