package expr

import (
	"math"
	"strconv"
	"strings"

	"github.com/roach88/propgraph/internal/ir"
)

// formatOperand formats an operand literal. Strings are single-quoted,
// numbers and booleans are bare, null is "null". A top-level array joins
// its formatted elements with ", "; an array nested inside it is
// parenthesized. The empty array is "[]".
func (r *Renderer) formatOperand(v ir.Value, depth int) string {
	switch val := v.(type) {
	case ir.String:
		return "'" + r.quote(string(val)) + "'"
	case ir.Int:
		return strconv.FormatInt(int64(val), 10)
	case ir.Float:
		return formatFloat(float64(val))
	case ir.Bool:
		return strconv.FormatBool(bool(val))
	case ir.Array:
		if len(val) == 0 {
			return "[]"
		}
		elems := make([]string, len(val))
		for i, elem := range val {
			elems[i] = r.formatOperand(elem, depth+1)
		}
		joined := strings.Join(elems, ", ")
		if depth > 0 {
			return "(" + joined + ")"
		}
		return joined
	case ir.Object:
		data, err := ir.MarshalValue(val)
		if err != nil {
			return "{}"
		}
		return string(data)
	default:
		return "null"
	}
}

// text is the unquoted form of a scalar, for pattern operands.
func (r *Renderer) text(v ir.Value) string {
	if s, ok := v.(ir.String); ok {
		return r.quote(string(s))
	}
	return r.formatOperand(v, 0)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// pattern is the text of a like operand, with wildcards escaped when
// pattern escaping is on.
func (r *Renderer) pattern(v ir.Value) string {
	t := r.text(v)
	if r.patterns {
		t = likeEscaper.Replace(t)
	}
	return t
}

func (r *Renderer) likeEscape() string {
	if r.patterns {
		return ` escape '\'`
	}
	return ""
}

func (r *Renderer) quote(s string) string {
	if !r.escape {
		return s
	}
	return strings.ReplaceAll(s, "'", "''")
}

// formatFloat prints integral floats without a fraction and switches to
// exponent form at 1e21.
func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null"
	}
	if math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
