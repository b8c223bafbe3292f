package ir

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseCUE compiles a CUE document and converts its root value. Field order
// follows declaration order. The value must be concrete.
//
// Example document:
//
//	age: $gte: 18
//	labels: $all: ["Person"]
func ParseCUE(data []byte, filename string) (Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile %s: %w", filename, err)
	}
	return FromCUE(v)
}

// FromCUE converts a concrete cue.Value into a Value.
func FromCUE(v cue.Value) (Value, error) {
	if err := v.Err(); err != nil {
		return nil, err
	}

	switch v.Kind() {
	case cue.NullKind:
		return Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, err
		}
		return Bool(b), nil
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, err
		}
		return Int(i), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, err
		}
		arr := Array{}
		for iter.Next() {
			elem, err := FromCUE(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", len(arr), err)
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, err
		}
		obj := Object{}
		for iter.Next() {
			label := iter.Label()
			elem, err := FromCUE(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", label, err)
			}
			obj = obj.Set(label, elem)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("%s: value is not concrete (kind %v)", v.Pos(), v.IncompleteKind())
	}
}
