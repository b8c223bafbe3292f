package relational

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/propgraph/internal/ir"
)

// MarshalJSON renders the descriptor as {"where": ...}, with "limit" and
// "offset" when set. Operator tags render as their keyword.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	sep := ""
	if d.Where != nil {
		where, err := marshalClause(d.Where)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"where":`)
		buf.Write(where)
		sep = ","
	}
	if d.Limit > 0 {
		fmt.Fprintf(&buf, `%s"limit":%d`, sep, d.Limit)
		sep = ","
	}
	if d.Offset > 0 {
		fmt.Fprintf(&buf, `%s"offset":%d`, sep, d.Offset)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String returns the JSON form of the descriptor.
func (d Descriptor) String() string {
	data, err := d.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid descriptor: %v>", err)
	}
	return string(data)
}

// MarshalJSON renders a Sequence as an array, mapping last.
func (s Sequence) MarshalJSON() ([]byte, error) {
	elems := make([]json.RawMessage, 0, s.Len())
	for _, sp := range s.Standalone {
		data, err := sp.MarshalJSON()
		if err != nil {
			return nil, err
		}
		elems = append(elems, data)
	}
	if len(s.Mapping) > 0 {
		data, err := s.Mapping.MarshalJSON()
		if err != nil {
			return nil, err
		}
		elems = append(elems, data)
	}
	return json.Marshal(elems)
}

// MarshalJSON renders {"$size": {"path": ..., "size": ...}}.
func (sp SizePredicate) MarshalJSON() ([]byte, error) {
	path, err := json.Marshal(sp.Path)
	if err != nil {
		return nil, err
	}
	size, err := marshalTerm(Leaf{Value: sp.Size})
	if err != nil {
		return nil, err
	}
	return []byte(`{"$size":{"path":` + string(path) + `,"size":` + string(size) + `}}`), nil
}

// MarshalJSON renders the mapping as an object in entry order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key.String())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalTerm(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalClause(c Clause) ([]byte, error) {
	switch clause := c.(type) {
	case Mapping:
		return clause.MarshalJSON()
	case Sequence:
		return clause.MarshalJSON()
	default:
		return nil, fmt.Errorf("unsupported clause type: %T", c)
	}
}

func marshalTerm(t Term) ([]byte, error) {
	switch term := t.(type) {
	case Leaf:
		if term.Value == nil {
			return []byte("null"), nil
		}
		return ir.MarshalValue(term.Value)
	case Mapping:
		return term.MarshalJSON()
	case List:
		elems := make([]json.RawMessage, len(term))
		for i, elem := range term {
			data, err := marshalTerm(elem)
			if err != nil {
				return nil, err
			}
			elems[i] = data
		}
		return json.Marshal(elems)
	default:
		return nil, fmt.Errorf("unsupported term type: %T", t)
	}
}
