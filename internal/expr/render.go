package expr

import (
	"fmt"
	"strings"

	"github.com/roach88/propgraph/internal/ir"
	"github.com/roach88/propgraph/internal/projection"
)

// DefaultVariable is the variable used when Render is given "".
const DefaultVariable = "n"

// symbols maps comparison operators to their infix symbol.
var symbols = map[projection.Op]string{
	projection.OpEq:  "=",
	projection.OpLt:  "<",
	projection.OpLte: "<=",
	projection.OpGt:  ">",
	projection.OpGte: ">=",
	projection.OpIn:  "in",
}

// connectors maps container operators to their join word.
var connectors = map[projection.Op]string{
	projection.OpAnd: "and",
	projection.OpOr:  "or",
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithEscaping doubles single quotes inside string operands.
func WithEscaping() Option {
	return func(r *Renderer) { r.escape = true }
}

// WithPatternEscaping makes $startsWith and $contains operands literal:
// backslash, % and _ are escaped with a backslash and the like gets an
// escape '\' clause.
func WithPatternEscaping() Option {
	return func(r *Renderer) { r.patterns = true }
}

// WithGrouping parenthesizes nested connector containers and joins the
// parts of a plain container with " and ". The result is a complete
// boolean expression for any tree, at the cost of differing from the
// plain rendering whenever a container nests.
func WithGrouping() Option {
	return func(r *Renderer) { r.group = true }
}

// Renderer turns operator trees into expression strings.
type Renderer struct {
	escape   bool
	group    bool
	patterns bool
}

// NewRenderer creates a Renderer with the given options.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var plain = NewRenderer()

// Render renders node with the default options.
// See Renderer.Render.
func Render(node projection.Node, variable string, level int) (string, error) {
	return plain.Render(node, variable, level)
}

// RenderFilter parses filter and renders the resulting tree at level 0.
func (r *Renderer) RenderFilter(filter ir.Object, variable string) (string, error) {
	node, err := projection.Parse(filter)
	if err != nil {
		return "", err
	}
	return r.Render(node, variable, 0)
}

// Render renders node with fields scoped to variable (DefaultVariable when
// empty). level is the nesting depth of node; callers start at 0.
//
// Predicates render as a parenthesized comparison. A connector container
// joins its rendered parts with " and " or " or ". A plain container
// concatenates its rendered parts with no separator.
//
// An operator with no rendering for its operand shape (for example $all
// with a scalar operand) fails with *projection.UnrecognizedOperatorError.
func (r *Renderer) Render(node projection.Node, variable string, level int) (string, error) {
	if variable == "" {
		variable = DefaultVariable
	}

	p, isPred, c, isCont := projection.Inspect(node)
	switch {
	case isPred:
		return r.renderPredicate(p, variable)
	case isCont:
		return r.renderContainer(c, variable, level)
	default:
		return "", fmt.Errorf("cannot render %T node", node)
	}
}

func (r *Renderer) renderContainer(c projection.Container, variable string, level int) (string, error) {
	if word, ok := connectors[c.Op]; ok {
		parts, err := r.renderParts(c.Parts, variable, level+1)
		if err != nil {
			return "", err
		}
		out := strings.Join(parts, " "+word+" ")
		if r.group && level > 0 && len(parts) > 1 {
			out = "(" + out + ")"
		}
		return out, nil
	}
	if c.Op != projection.OpNone {
		return "", &projection.UnrecognizedOperatorError{Keyword: c.Op.String(), Reason: "not a connector"}
	}

	childLevel := level
	if r.group && len(c.Parts) > 1 {
		childLevel = level + 1
	}
	parts, err := r.renderParts(c.Parts, variable, childLevel)
	if err != nil {
		return "", err
	}
	if !r.group {
		return strings.Join(parts, ""), nil
	}
	out := strings.Join(parts, " and ")
	if level > 0 && len(parts) > 1 {
		out = "(" + out + ")"
	}
	return out, nil
}

func (r *Renderer) renderParts(parts []projection.Node, variable string, level int) ([]string, error) {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		s, err := r.Render(part, variable, level)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *Renderer) renderPredicate(p projection.Predicate, variable string) (string, error) {
	ref := variable + "." + p.Field

	if arr, ok := p.Operand.(ir.Array); ok {
		if p.Op == projection.OpAll {
			return "(" + r.formatOperand(arr, 0) + " in " + ref + ")", nil
		}
		sym, ok := symbols[p.Op]
		if !ok {
			return "", unrecognized(p.Op, "no form for an array operand")
		}
		return "(" + ref + " " + sym + " (" + r.formatOperand(arr, 0) + "))", nil
	}

	switch p.Op {
	case projection.OpSize:
		return "(length(" + ref + ") = " + r.formatOperand(p.Operand, 0) + ")", nil
	case projection.OpStartsWith:
		return "(" + ref + " like '" + r.pattern(p.Operand) + "%'" + r.likeEscape() + ")", nil
	case projection.OpContains:
		return "(" + ref + " like '%" + r.pattern(p.Operand) + "%'" + r.likeEscape() + ")", nil
	case projection.OpRegex:
		return "(" + ref + " regexp '" + r.text(p.Operand) + "')", nil
	}

	sym, ok := symbols[p.Op]
	if !ok {
		return "", unrecognized(p.Op, "no form for a scalar operand")
	}
	return "(" + ref + " " + sym + " " + r.formatOperand(p.Operand, 0) + ")", nil
}

func unrecognized(op projection.Op, reason string) error {
	return &projection.UnrecognizedOperatorError{Keyword: op.String(), Reason: reason}
}
