package projection

import (
	"fmt"
	"strings"

	"github.com/roach88/propgraph/internal/ir"
)

// Parse turns a raw filter object into an operator tree.
//
// The root is always a Container with Op == OpNone holding one part per
// filter member, in member order. A field with several operators produces
// one Predicate per operator. An empty filter yields an empty root.
//
// Parse is a pure function with no side effects.
func Parse(filter ir.Object) (Node, error) {
	parts, err := parseObject(filter, "")
	if err != nil {
		return nil, err
	}
	return Container{Op: OpNone, Parts: parts}, nil
}

// parseObject parses the members of a filter object (or of one element of
// a connector array).
func parseObject(obj ir.Object, path string) ([]Node, error) {
	parts := make([]Node, 0, len(obj))
	for _, m := range obj {
		memberPath := joinPath(path, m.Key)

		if !strings.HasPrefix(m.Key, "$") {
			preds, err := parseField(m.Key, m.Value, memberPath)
			if err != nil {
				return nil, err
			}
			parts = append(parts, preds...)
			continue
		}

		op, err := ParseOp(m.Key)
		if err != nil {
			return nil, err
		}
		if !op.IsConnector() {
			return nil, malformed(memberPath, "operator %s used without a field", m.Key)
		}
		node, err := parseConnector(op, m.Value, memberPath)
		if err != nil {
			return nil, err
		}
		parts = append(parts, node)
	}
	return parts, nil
}

// parseConnector parses the array operand of $and / $or.
func parseConnector(op Op, value ir.Value, path string) (Node, error) {
	arr, ok := value.(ir.Array)
	if !ok {
		return nil, malformed(path, "%s requires an array, got %s", op, ir.KindOf(value))
	}
	if len(arr) == 0 {
		return nil, malformed(path, "%s requires at least one clause", op)
	}

	parts := make([]Node, 0, len(arr))
	for i, elem := range arr {
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		obj, ok := elem.(ir.Object)
		if !ok {
			return nil, malformed(elemPath, "clause must be an object, got %s", ir.KindOf(elem))
		}
		children, err := parseObject(obj, elemPath)
		if err != nil {
			return nil, err
		}
		switch len(children) {
		case 0:
			return nil, malformed(elemPath, "empty clause")
		case 1:
			parts = append(parts, children[0])
		default:
			parts = append(parts, Container{Op: OpNone, Parts: children})
		}
	}
	return Container{Op: op, Parts: parts}, nil
}

// parseField parses "field: value". A scalar or array value is an implicit
// $eq; an object value must hold operator keywords only.
func parseField(field string, value ir.Value, path string) ([]Node, error) {
	ops, isObject := value.(ir.Object)
	if !isObject {
		if err := checkOperand(value, path); err != nil {
			return nil, err
		}
		return []Node{Predicate{Op: OpEq, Field: field, Operand: value}}, nil
	}

	if len(ops) == 0 {
		return nil, malformed(path, "empty operator object")
	}

	preds := make([]Node, 0, len(ops))
	dollarKeys := 0
	for _, m := range ops {
		if strings.HasPrefix(m.Key, "$") {
			dollarKeys++
		}
	}
	if dollarKeys == 0 {
		return nil, malformed(path, "nested objects are not supported as operands")
	}
	if dollarKeys != len(ops) {
		return nil, malformed(path, "cannot mix operators and field names")
	}

	for _, m := range ops {
		op, err := ParseOp(m.Key)
		if err != nil {
			return nil, err
		}
		opPath := joinPath(path, m.Key)
		if op.IsConnector() {
			return nil, malformed(opPath, "%s cannot be applied to a field", m.Key)
		}
		if err := checkOperand(m.Value, opPath); err != nil {
			return nil, err
		}
		preds = append(preds, Predicate{Op: op, Field: field, Operand: m.Value})
	}
	return preds, nil
}

// checkOperand rejects object operands and arrays holding objects or
// arrays.
func checkOperand(v ir.Value, path string) error {
	switch val := v.(type) {
	case ir.Object:
		return malformed(path, "operand cannot be an object")
	case ir.Array:
		for i, elem := range val {
			if !ir.IsScalar(elem) {
				return malformed(fmt.Sprintf("%s[%d]", path, i), "array operands may only hold scalars")
			}
		}
	}
	return nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
