package ir

import (
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Parse decodes a JSON or YAML document into a Value, keeping object member
// order. JSON is accepted because every JSON document is a YAML document.
// An empty document decodes to Null.
func Parse(data []byte) (Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return FromYAML(&node)
}

// ParseObject is Parse restricted to documents whose root is an object.
// An empty document decodes to an empty Object.
func ParseObject(data []byte) (Object, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	switch val := v.(type) {
	case Object:
		return val, nil
	case Null:
		return Object{}, nil
	default:
		return nil, fmt.Errorf("expected an object at document root, got %s", KindOf(v))
	}
}

// FromYAML converts a decoded yaml.v3 node tree into a Value.
func FromYAML(n *yaml.Node) (Value, error) {
	if n == nil {
		return Null{}, nil
	}

	switch n.Kind {
	case 0:
		return Null{}, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return FromYAML(n.Content[0])
	case yaml.AliasNode:
		return FromYAML(n.Alias)
	case yaml.MappingNode:
		obj := make(Object, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: object keys must be scalars", keyNode.Line)
			}
			val, err := FromYAML(valNode)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", keyNode.Value, err)
			}
			obj = obj.Set(keyNode.Value, val)
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make(Array, len(n.Content))
		for i, elem := range n.Content {
			val, err := FromYAML(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = val
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalarFromYAML(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

func scalarFromYAML(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		// Out of int64 range: keep the magnitude as a float.
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid integer %q", n.Line, n.Value)
		}
		return Float(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("line %d: unsupported float %q", n.Line, n.Value)
		}
		return Float(f), nil
	default:
		return String(n.Value), nil
	}
}

// UnmarshalYAML implements yaml.Unmarshaler so Objects can be embedded in
// YAML fixtures without losing member order.
func (o *Object) UnmarshalYAML(n *yaml.Node) error {
	v, err := FromYAML(n)
	if err != nil {
		return err
	}
	switch val := v.(type) {
	case Object:
		*o = val
	case Null:
		*o = Object{}
	default:
		return fmt.Errorf("line %d: expected an object, got %s", n.Line, KindOf(v))
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Object, keeping member order.
func (o *Object) UnmarshalJSON(data []byte) error {
	obj, err := ParseObject(data)
	if err != nil {
		return err
	}
	*o = obj
	return nil
}

// KindOf names the shape of v for error messages.
func KindOf(v Value) string {
	switch v.(type) {
	case nil, Null:
		return "null"
	case String:
		return "string"
	case Int, Float:
		return "number"
	case Bool:
		return "boolean"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
