package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"unicode/utf16"
)

// Value is a sealed interface representing filter and record values.
// Only Null, String, Int, Float, Bool, Array, and Object implement it.
type Value interface {
	irValue() // Sealed - only these types implement it
}

// Null represents a JSON null value.
type Null struct{}

func (Null) irValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a string value.
type String string

func (String) irValue() {}

// Int represents an integer value.
type Int int64

func (Int) irValue() {}

// Float represents a non-integral number.
type Float float64

func (Float) irValue() {}

// MarshalJSON implements json.Marshaler for Float.
// NaN and infinities have no JSON form and are rejected.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("unsupported float value: %v", v)
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

// Bool represents a boolean value.
type Bool bool

func (Bool) irValue() {}

// Array represents an ordered sequence of values.
type Array []Value

func (Array) irValue() {}

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is an ordered list of members. Keys are unique; Set replaces an
// existing key in place.
type Object []Member

func (Object) irValue() {}

// Obj builds an Object from members, in order.
// Example: Obj(M("name", "cart"), M("count", 5))
func Obj(members ...Member) Object {
	obj := make(Object, 0, len(members))
	for _, m := range members {
		obj = obj.Set(m.Key, m.Value)
	}
	return obj
}

// M builds a Member from a Go value. It panics when v cannot be converted;
// use From for untrusted input.
func M(key string, v any) Member {
	return Member{Key: key, Value: MustFrom(v)}
}

// Len returns the number of members.
func (o Object) Len() int {
	return len(o)
}

// Get returns the value stored under key.
func (o Object) Get(key string) (Value, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Keys returns member keys in member order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// Set returns o with key bound to v. An existing key keeps its position.
func (o Object) Set(key string, v Value) Object {
	if v == nil {
		v = Null{}
	}
	for i, m := range o {
		if m.Key == key {
			out := slices.Clone(o)
			out[i].Value = v
			return out
		}
	}
	return append(slices.Clip(o), Member{Key: key, Value: v})
}

// Merge returns o with every member of other applied via Set.
func (o Object) Merge(other Object) Object {
	out := slices.Clone(o)
	for _, m := range other {
		out = out.Set(m.Key, m.Value)
	}
	return out
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// CRITICAL: Go's sort.Strings uses UTF-8 which produces DIFFERENT order.
func (o Object) SortedKeys() []string {
	keys := o.Keys()
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// MarshalJSON implements json.Marshaler for Object, keeping member order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(m.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", m.Key, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalValue(m.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", m.Key, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Array.
func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := MarshalValue(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalValue marshals a Value to JSON bytes.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Int:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case Float:
		return val.MarshalJSON()
	case Bool:
		return json.Marshal(bool(val))
	case Array:
		return val.MarshalJSON()
	case Object:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// IsScalar reports whether v is neither an Array nor an Object.
func IsScalar(v Value) bool {
	switch v.(type) {
	case Array, Object:
		return false
	default:
		return true
	}
}

// Native converts v to plain Go values: string, int64, float64, bool, nil,
// []any and map[string]any.
func Native(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Native(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for _, m := range val {
			out[m.Key] = Native(m.Value)
		}
		return out
	default:
		return nil
	}
}

// MustFrom is From that panics on error. Intended for literals in code and
// tests.
func MustFrom(v any) Value {
	val, err := From(v)
	if err != nil {
		panic(err)
	}
	return val
}

// From converts a Go value to a Value. Maps are converted with keys in
// RFC 8785 order since Go maps carry no order of their own; build an Object
// directly when order matters.
func From(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of int64 range: %d", val)
		}
		return Int(val), nil
	case float32:
		return fromFloat(float64(val)), nil
	case float64:
		return fromFloat(val), nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return Float(f), nil
	case []string:
		arr := make(Array, len(val))
		for i, s := range val {
			arr[i] = String(s)
		}
		return arr, nil
	case []int:
		arr := make(Array, len(val))
		for i, n := range val {
			arr[i] = Int(n)
		}
		return arr, nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			irElem, err := From(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case []Value:
		return Array(val), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return compareKeysRFC8785(keys[i], keys[j]) < 0 })
		obj := make(Object, 0, len(val))
		for _, k := range keys {
			irElem, err := From(val[k])
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj = append(obj, Member{Key: k, Value: irElem})
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// fromFloat keeps integral floats as Int so that 3.0 and 3 compare equal
// after a JSON round trip.
func fromFloat(f float64) Value {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return Int(int64(f))
	}
	return Float(f)
}
