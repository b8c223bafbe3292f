package querysql

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/propgraph/internal/expr"
	"github.com/roach88/propgraph/internal/projection"
)

// executable renders expressions SQLite can evaluate: parts of plain
// containers are ANDed, nested connectors grouped, quotes doubled and like
// wildcards in operands escaped.
var executable = expr.NewRenderer(expr.WithGrouping(), expr.WithEscaping(), expr.WithPatternEscaping())

// CompileExpression compiles an operator tree into a statement that
// evaluates the rendered boolean expression directly.
//
// The rendered form addresses fields as n.<field>, so the statement binds n
// to a common table expression over t that projects each referenced data
// field as a column:
//
//	WITH n AS (SELECT id, labels, data, json_extract(data, '$.x') AS "x" FROM nodes)
//	SELECT id, labels, data FROM n WHERE (n.x > 8) ORDER BY id COLLATE BINARY ASC
//
// Only trees SQLite can evaluate compile: field names must be identifiers,
// and $all and $size (which render as graph-language containment and
// length) are rejected.
func (c *SQLCompiler) CompileExpression(t Table, node projection.Node) (string, error) {
	if err := checkExecutable(node); err != nil {
		return "", err
	}

	projections := slices.Clone(t.Columns)
	for _, field := range projection.Fields(node) {
		if !identifier.MatchString(field) {
			return "", fmt.Errorf("%w: field %q cannot be addressed", ErrUnsupported, field)
		}
		if _, ok := t.Fields[field]; ok {
			if t.Fields[field] != field {
				projections = append(projections, fmt.Sprintf(`%s AS "%s"`, t.Fields[field], field))
			}
			continue
		}
		if slices.Contains(t.Columns, field) {
			return "", fmt.Errorf("%w: field %q shadows a column of %s", ErrUnsupported, field, t.Name)
		}
		projections = append(projections,
			fmt.Sprintf(`json_extract(%s, '$.%s') AS "%s"`, t.Data, field, field))
	}

	where, err := executable.Render(node, expr.DefaultVariable, 0)
	if err != nil {
		return "", fmt.Errorf("render expression: %w", err)
	}
	if where == "" {
		where = "1 = 1"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "WITH %s AS (SELECT %s FROM %s) ",
		expr.DefaultVariable, strings.Join(projections, ", "), t.Name)
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s", strings.Join(t.Columns, ", "), expr.DefaultVariable, where)
	b.WriteString(orderBy)
	return b.String(), nil
}

func checkExecutable(node projection.Node) error {
	p, isPred, c, isCont := projection.Inspect(node)
	switch {
	case isPred:
		if p.Op == projection.OpAll || p.Op == projection.OpSize {
			return fmt.Errorf("%w: %s on %s has no SQL form", ErrUnsupported, p.Op, p.Field)
		}
		return nil
	case isCont:
		for _, part := range c.Parts {
			if err := checkExecutable(part); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("cannot compile %T node", node)
	}
}
