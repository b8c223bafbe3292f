package relational

import "github.com/roach88/propgraph/internal/ir"

// Pass-through field names.
const (
	FieldID     = "id"
	FieldLabels = "labels"
)

// DataPrefix namespaces schemaless attributes.
const DataPrefix = "data."

const sizeKeyword = "$size"

// Translate rewrites filter into a Descriptor.
//
// A nested object holding $size is diverted to a SizePredicate and its key
// dropped from the mapping; only its first $size counts. Standalone
// predicates keep pre-order encounter order and always precede the
// mapping.
//
// Translate is a pure function with no side effects.
func Translate(filter ir.Object) Descriptor {
	mapping, standalone := rewriteObject(filter)

	switch {
	case len(standalone) > 0:
		return Descriptor{Where: Sequence{Standalone: standalone, Mapping: mapping}}
	case len(mapping) > 0:
		return Descriptor{Where: mapping}
	default:
		return Descriptor{}
	}
}

// RewriteKey applies the key rewrite rule to a single key.
func RewriteKey(k string) Key {
	if op, ok := tags[k]; ok {
		return Tag(op)
	}
	if k == FieldID || k == FieldLabels {
		return Field(k)
	}
	return Field(DataPrefix + k)
}

// rewriteObject folds over obj, returning its mapping and the standalone
// predicates found in it and below it.
func rewriteObject(obj ir.Object) (Mapping, []SizePredicate) {
	mapping := make(Mapping, 0, len(obj))
	var standalone []SizePredicate

	for _, m := range obj {
		if nested, ok := m.Value.(ir.Object); ok {
			if size, found := nested.Get(sizeKeyword); found {
				standalone = append(standalone, SizePredicate{Path: m.Key, Size: size})
				continue
			}
		}

		term, found := rewriteValue(m.Value)
		standalone = append(standalone, found...)
		mapping = append(mapping, Entry{Key: RewriteKey(m.Key), Value: term})
	}
	return mapping, standalone
}

func rewriteValue(v ir.Value) (Term, []SizePredicate) {
	switch val := v.(type) {
	case ir.Object:
		return rewriteObject(val)
	case ir.Array:
		list := make(List, 0, len(val))
		var standalone []SizePredicate
		for _, elem := range val {
			term, found := rewriteValue(elem)
			standalone = append(standalone, found...)
			list = append(list, term)
		}
		return list, standalone
	default:
		return Leaf{Value: v}, nil
	}
}
