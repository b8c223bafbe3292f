package projection

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/propgraph/internal/ir"
)

// Record is anything a tree can be evaluated against.
type Record interface {
	// Lookup returns the value of field and whether it is present.
	Lookup(field string) (ir.Value, bool)
}

// ObjectRecord evaluates fields against an ir.Object. Dotted fields walk
// nested objects.
type ObjectRecord ir.Object

// Lookup implements Record.
func (r ObjectRecord) Lookup(field string) (ir.Value, bool) {
	obj := ir.Object(r)
	if v, ok := obj.Get(field); ok {
		return v, true
	}
	head, rest, found := strings.Cut(field, ".")
	if !found {
		return nil, false
	}
	v, ok := obj.Get(head)
	if !ok {
		return nil, false
	}
	nested, ok := v.(ir.Object)
	if !ok {
		return nil, false
	}
	return ObjectRecord(nested).Lookup(rest)
}

// Match evaluates node against rec.
//
// Semantics follow the SQL the relational translator produces, so that an
// in-memory match and a store query agree on data fields:
//   - comparisons need both sides to be numbers or both strings
//   - $startsWith and $contains compare case-insensitively
//   - $eq against null matches a missing field
//   - $all tests an array field, or a comma-separated list held in a
//     string field (the encoding of node labels)
func Match(node Node, rec Record) (bool, error) {
	if p, ok := asPredicate(node); ok {
		return matchPredicate(p, rec)
	}
	c, ok := asContainer(node)
	if !ok {
		return false, fmt.Errorf("unknown node type %T", node)
	}

	if c.Op == OpOr {
		for _, part := range c.Parts {
			matched, err := Match(part, rec)
			if err != nil || matched {
				return matched, err
			}
		}
		return false, nil
	}
	if c.Op != OpNone && c.Op != OpAnd {
		return false, &UnrecognizedOperatorError{Keyword: c.Op.String(), Reason: "not a connector"}
	}
	for _, part := range c.Parts {
		matched, err := Match(part, rec)
		if err != nil || !matched {
			return false, err
		}
	}
	return true, nil
}

func matchPredicate(p Predicate, rec Record) (bool, error) {
	val, present := rec.Lookup(p.Field)

	switch p.Op {
	case OpEq:
		if _, isNull := p.Operand.(ir.Null); isNull {
			_, valNull := val.(ir.Null)
			return !present || valNull, nil
		}
		if !present {
			return false, nil
		}
		return equal(val, p.Operand), nil
	case OpLt, OpLte, OpGt, OpGte:
		if !present {
			return false, nil
		}
		cmp, ok := compare(val, p.Operand)
		if !ok {
			return false, nil
		}
		switch p.Op {
		case OpLt:
			return cmp < 0, nil
		case OpLte:
			return cmp <= 0, nil
		case OpGt:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	case OpIn:
		if !present {
			return false, nil
		}
		for _, candidate := range asArray(p.Operand) {
			if equal(val, candidate) {
				return true, nil
			}
		}
		return false, nil
	case OpAll:
		if !present {
			return false, nil
		}
		have := listOf(val)
		for _, want := range asArray(p.Operand) {
			if !slices.ContainsFunc(have, func(v ir.Value) bool { return equal(v, want) }) {
				return false, nil
			}
		}
		return true, nil
	case OpSize:
		arr, ok := val.(ir.Array)
		if !present || !ok {
			return false, nil
		}
		want, ok := toFloat(p.Operand)
		return ok && float64(len(arr)) == want, nil
	case OpStartsWith, OpContains:
		s, ok := val.(ir.String)
		if !present || !ok {
			return false, nil
		}
		needle := strings.ToLower(scalarText(p.Operand))
		hay := strings.ToLower(string(s))
		if p.Op == OpStartsWith {
			return strings.HasPrefix(hay, needle), nil
		}
		return strings.Contains(hay, needle), nil
	case OpRegex:
		s, ok := val.(ir.String)
		if !present || !ok {
			return false, nil
		}
		re, err := regexp.Compile(scalarText(p.Operand))
		if err != nil {
			return false, fmt.Errorf("%s on %s: %w", p.Op, p.Field, err)
		}
		return re.MatchString(string(s)), nil
	default:
		return false, &UnrecognizedOperatorError{Keyword: p.Op.String(), Reason: "not a field operator"}
	}
}

func asArray(v ir.Value) ir.Array {
	if arr, ok := v.(ir.Array); ok {
		return arr
	}
	return ir.Array{v}
}

// listOf returns the elements of an array, or the comma-separated parts of
// a string.
func listOf(v ir.Value) []ir.Value {
	switch val := v.(type) {
	case ir.Array:
		return val
	case ir.String:
		if val == "" {
			return nil
		}
		var out []ir.Value
		for _, part := range strings.Split(string(val), ",") {
			out = append(out, ir.String(part))
		}
		return out
	}
	return nil
}

func equal(a, b ir.Value) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case ir.String:
		bv, ok := b.(ir.String)
		return ok && av == bv
	case ir.Bool:
		bv, ok := b.(ir.Bool)
		return ok && av == bv
	case ir.Null:
		_, ok := b.(ir.Null)
		return ok
	case ir.Array:
		bv, ok := b.(ir.Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// compare orders two numbers or two strings.
func compare(a, b ir.Value) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	sa, ok := a.(ir.String)
	if !ok {
		return 0, false
	}
	sb, ok := b.(ir.String)
	if !ok {
		return 0, false
	}
	return strings.Compare(string(sa), string(sb)), true
}

func toFloat(v ir.Value) (float64, bool) {
	switch n := v.(type) {
	case ir.Int:
		return float64(n), true
	case ir.Float:
		return float64(n), true
	}
	return 0, false
}

// scalarText is the unquoted text of a scalar.
func scalarText(v ir.Value) string {
	switch s := v.(type) {
	case ir.String:
		return string(s)
	default:
		data, err := ir.MarshalValue(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
