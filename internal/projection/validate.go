package projection

import (
	"errors"
	"fmt"

	"github.com/roach88/propgraph/internal/ir"
)

// Validate checks the structural invariants of an operator tree:
//
//  1. A Predicate has a field, a field operator and a non-object operand.
//  2. A Container has OpNone, OpAnd or OpOr and at least one part. The
//     root container alone may be empty (the empty filter).
//
// Trees built by Parse always validate. Validate exists for trees built by
// hand or decoded from elsewhere. All problems are reported, joined.
//
// Validate is a pure function with no side effects.
func Validate(node Node) error {
	v := &validator{}
	v.validateNode(node, "", true)
	return errors.Join(v.errs...)
}

// validator accumulates problems during traversal.
type validator struct {
	errs []error
}

func (v *validator) addError(path, format string, args ...any) {
	v.errs = append(v.errs, malformed(path, format, args...))
}

func (v *validator) validateNode(n Node, path string, root bool) {
	if n == nil {
		v.addError(path, "nil node")
		return
	}
	if p, ok := asPredicate(n); ok {
		v.validatePredicate(p, path)
		return
	}
	if c, ok := asContainer(n); ok {
		v.validateContainer(c, path, root)
		return
	}
	v.addError(path, "unknown node type %T", n)
}

func (v *validator) validatePredicate(p Predicate, path string) {
	if p.Field == "" {
		v.addError(path, "predicate without a field")
	}
	if _, known := opNames[p.Op]; !known || p.Op.IsConnector() {
		v.errs = append(v.errs, &UnrecognizedOperatorError{
			Keyword: p.Op.String(),
			Reason:  "not a field operator",
		})
	}
	if p.Operand == nil {
		v.addError(joinPath(path, p.Field), "predicate without an operand")
		return
	}
	if _, isObject := p.Operand.(ir.Object); isObject {
		v.addError(joinPath(path, p.Field), "operand cannot be an object")
	}
}

func (v *validator) validateContainer(c Container, path string, root bool) {
	if c.Op != OpNone && !c.Op.IsConnector() {
		v.errs = append(v.errs, &UnrecognizedOperatorError{
			Keyword: c.Op.String(),
			Reason:  "not a connector",
		})
	}
	if len(c.Parts) == 0 && !(root && c.Op == OpNone) {
		v.addError(path, "container without parts")
	}
	for i, part := range c.Parts {
		v.validateNode(part, fmt.Sprintf("%s[%d]", path, i), false)
	}
}
