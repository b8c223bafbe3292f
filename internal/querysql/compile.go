package querysql

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/propgraph/internal/ir"
	"github.com/roach88/propgraph/internal/relational"
)

// ErrUnsupported is returned (wrapped) for filters that are valid but have
// no SQL form in the requested compilation.
var ErrUnsupported = errors.New("not supported")

// Table describes a SQLite table a descriptor can be compiled against.
type Table struct {
	// Name is the table name.
	Name string

	// Columns are the selected columns, in scan order.
	Columns []string

	// Fields maps pass-through field keys to column names.
	Fields map[string]string

	// Data is the JSON column that "data." keys address.
	Data string
}

// Nodes is the nodes table.
var Nodes = Table{
	Name:    "nodes",
	Columns: []string{"id", "labels", "data"},
	Fields: map[string]string{
		relational.FieldID:     "id",
		relational.FieldLabels: "labels",
	},
	Data: "data",
}

// Edges is the edges table. The labels key addresses the edge label.
var Edges = Table{
	Name:    "edges",
	Columns: []string{"id", "label", "from_id", "to_id", "data"},
	Fields: map[string]string{
		relational.FieldID:     "id",
		relational.FieldLabels: "label",
	},
	Data: "data",
}

// orderBy is appended to every row-returning statement.
// COLLATE BINARY keeps text ordering identical across SQLite builds.
const orderBy = " ORDER BY id COLLATE BINARY ASC"

// SQLCompiler compiles relational descriptors to parameterized SQL for
// SQLite.
//
// Every row-returning statement ends with ORDER BY id so results are
// deterministic. Every value is bound as a parameter, never interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// CompileSelect compiles d to a SELECT of t.Columns.
// Returns (sql, params, error).
func (c *SQLCompiler) CompileSelect(t Table, d relational.Descriptor) (string, []any, error) {
	where, params, err := c.compileWhere(t, d.Where)
	if err != nil {
		return "", nil, err
	}

	sql := "SELECT " + strings.Join(t.Columns, ", ") + " FROM " + t.Name + where + orderBy
	page, pageParams := paginate(d)
	return sql + page, append(params, pageParams...), nil
}

// CompileCount compiles d to a SELECT COUNT(*). Limit and offset are
// ignored.
func (c *SQLCompiler) CompileCount(t Table, d relational.Descriptor) (string, []any, error) {
	where, params, err := c.compileWhere(t, d.Where)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM " + t.Name + where, params, nil
}

// CompileDelete compiles d to a DELETE. With a limit, the rows deleted are
// the first rows CompileSelect would return.
func (c *SQLCompiler) CompileDelete(t Table, d relational.Descriptor) (string, []any, error) {
	where, params, err := c.compileWhere(t, d.Where)
	if err != nil {
		return "", nil, err
	}
	if d.Limit <= 0 && d.Offset <= 0 {
		return "DELETE FROM " + t.Name + where, params, nil
	}

	page, pageParams := paginate(d)
	sql := fmt.Sprintf("DELETE FROM %s WHERE id IN (SELECT id FROM %s%s%s%s)",
		t.Name, t.Name, where, orderBy, page)
	return sql, append(params, pageParams...), nil
}

// CompileWhere compiles a clause to a boolean SQL fragment. A nil clause
// compiles to "1 = 1".
func (c *SQLCompiler) CompileWhere(t Table, clause relational.Clause) (string, []any, error) {
	if clause == nil {
		return "1 = 1", nil, nil
	}

	switch cl := clause.(type) {
	case relational.Mapping:
		return c.compileMapping(t, cl)
	case relational.Sequence:
		return c.compileSequence(t, cl)
	default:
		return "", nil, fmt.Errorf("unsupported clause type: %T", clause)
	}
}

func (c *SQLCompiler) compileWhere(t Table, clause relational.Clause) (string, []any, error) {
	if clause == nil {
		return "", nil, nil
	}
	sql, params, err := c.CompileWhere(t, clause)
	if err != nil {
		return "", nil, fmt.Errorf("compile where: %w", err)
	}
	return " WHERE " + sql, params, nil
}

func paginate(d relational.Descriptor) (string, []any) {
	switch {
	case d.Limit > 0 && d.Offset > 0:
		return " LIMIT ? OFFSET ?", []any{int64(d.Limit), int64(d.Offset)}
	case d.Limit > 0:
		return " LIMIT ?", []any{int64(d.Limit)}
	case d.Offset > 0:
		// SQLite needs a LIMIT before OFFSET; -1 means no limit.
		return " LIMIT -1 OFFSET ?", []any{int64(d.Offset)}
	default:
		return "", nil
	}
}

// compileSequence ANDs the standalone predicates, then the mapping.
func (c *SQLCompiler) compileSequence(t Table, seq relational.Sequence) (string, []any, error) {
	var sqlParts []string
	var allParams []any

	for _, sp := range seq.Standalone {
		size, err := irValueToParam(sp.Size)
		if err != nil {
			return "", nil, fmt.Errorf("$size on %s: %w", sp.Path, err)
		}
		sqlParts = append(sqlParts, fmt.Sprintf("json_array_length(%s, ?) = ?", t.Data))
		allParams = append(allParams, jsonPath(sp.Path), size)
	}

	if len(seq.Mapping) > 0 {
		sql, params, err := c.compileMapping(t, seq.Mapping)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	if len(sqlParts) == 0 {
		return "1 = 1", nil, nil
	}
	return strings.Join(sqlParts, " AND "), allParams, nil
}

// compileMapping ANDs the entries of m.
func (c *SQLCompiler) compileMapping(t Table, m relational.Mapping) (string, []any, error) {
	if len(m) == 0 {
		return "1 = 1", nil, nil // Always true (vacuous truth)
	}

	var sqlParts []string
	var allParams []any

	for _, e := range m {
		var sql string
		var params []any
		var err error
		if e.Key.IsOp() {
			sql, params, err = c.compileConnector(t, e.Key.Op, e.Value)
		} else {
			sql, params, err = c.compileField(t, e.Key.Field, e.Value)
		}
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

// compileConnector compiles {$and: [...]} or {$or: [...]}.
func (c *SQLCompiler) compileConnector(t Table, op relational.Op, v relational.Term) (string, []any, error) {
	var joiner, empty string
	switch op {
	case relational.OpAnd:
		joiner, empty = " AND ", "1 = 1"
	case relational.OpOr:
		joiner, empty = " OR ", "0 = 1"
	default:
		return "", nil, fmt.Errorf("operator %s used without a field", op)
	}

	list, ok := v.(relational.List)
	if !ok {
		return "", nil, fmt.Errorf("%s requires a list, got %T", op, v)
	}
	if len(list) == 0 {
		return empty, nil, nil
	}

	var sqlParts []string
	var allParams []any
	for i, elem := range list {
		m, ok := elem.(relational.Mapping)
		if !ok {
			return "", nil, fmt.Errorf("%s[%d]: clause must be a mapping, got %T", op, i, elem)
		}
		sql, params, err := c.compileMapping(t, m)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, "("+sql+")")
		allParams = append(allParams, params...)
	}

	return "(" + strings.Join(sqlParts, joiner) + ")", allParams, nil
}

// compileField compiles the constraint on one field: a leaf (equality), a
// list (whole-array equality) or a mapping of operator tags (ANDed).
func (c *SQLCompiler) compileField(t Table, field string, v relational.Term) (string, []any, error) {
	col, colParams, err := c.column(t, field)
	if err != nil {
		return "", nil, err
	}

	switch term := v.(type) {
	case relational.Leaf:
		return compileComparison(col, colParams, relational.OpEq, term)
	case relational.List:
		data, err := marshalList(term)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", field, err)
		}
		return col + " = ?", append(colParams, data), nil
	case relational.Mapping:
		if len(term) == 0 {
			return "", nil, fmt.Errorf("%s: empty constraint", field)
		}
		var sqlParts []string
		var allParams []any
		for _, e := range term {
			if !e.Key.IsOp() {
				return "", nil, fmt.Errorf("%w: nested field %s under %s", ErrUnsupported, e.Key.Field, field)
			}
			sql, params, err := compileOperator(col, colParams, e.Key.Op, e.Value)
			if err != nil {
				return "", nil, fmt.Errorf("%s: %w", field, err)
			}
			sqlParts = append(sqlParts, sql)
			allParams = append(allParams, params...)
		}
		return strings.Join(sqlParts, " AND "), allParams, nil
	default:
		return "", nil, fmt.Errorf("%s: unsupported term type: %T", field, v)
	}
}

// column returns the SQL expression addressing field, with its parameters.
func (c *SQLCompiler) column(t Table, field string) (string, []any, error) {
	if col, ok := t.Fields[field]; ok {
		return col, nil, nil
	}
	name, ok := strings.CutPrefix(field, relational.DataPrefix)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("unknown field %q", field)
	}
	return fmt.Sprintf("json_extract(%s, ?)", t.Data), []any{jsonPath(name)}, nil
}

func compileOperator(col string, colParams []any, op relational.Op, v relational.Term) (string, []any, error) {
	switch op {
	case relational.OpIn:
		return compileIn(col, colParams, v)
	case relational.OpAnd, relational.OpOr:
		return "", nil, fmt.Errorf("%s cannot be applied to a field", op)
	}

	leaf, ok := v.(relational.Leaf)
	if !ok {
		if list, isList := v.(relational.List); isList && op == relational.OpEq {
			data, err := marshalList(list)
			if err != nil {
				return "", nil, err
			}
			return col + " = ?", append(clone(colParams), data), nil
		}
		return "", nil, fmt.Errorf("%s requires a scalar operand, got %T", op, v)
	}
	return compileComparison(col, colParams, op, leaf)
}

// compileComparison compiles a scalar comparison.
// Ordering comparisons only hold between values of the same storage class,
// so a number never compares against text.
func compileComparison(col string, colParams []any, op relational.Op, leaf relational.Leaf) (string, []any, error) {
	param, err := irValueToParam(leaf.Value)
	if err != nil {
		return "", nil, err
	}
	params := clone(colParams)

	switch op {
	case relational.OpEq:
		if param == nil {
			return col + " IS NULL", params, nil
		}
		return col + " = ?", append(params, param), nil
	case relational.OpLt, relational.OpLte, relational.OpGt, relational.OpGte:
		var class string
		switch leaf.Value.(type) {
		case ir.Int, ir.Float:
			class = "typeof(%s) IN ('integer', 'real')"
		case ir.String:
			class = "typeof(%s) = 'text'"
		default:
			return "", nil, fmt.Errorf("%s requires a number or string, got %s", op, ir.KindOf(leaf.Value))
		}
		sql := fmt.Sprintf("(%s %s ? AND "+class+")", col, comparisonSymbols[op], col)
		params = append(params, param)
		return sql, append(params, colParams...), nil
	case relational.OpStartsWith, relational.OpContains:
		s, ok := leaf.Value.(ir.String)
		if !ok {
			return "", nil, fmt.Errorf("%s requires a string, got %s", op, ir.KindOf(leaf.Value))
		}
		pattern := escapeLike(string(s)) + "%"
		if op == relational.OpContains {
			pattern = "%" + pattern
		}
		return col + ` LIKE ? ESCAPE '\'`, append(params, pattern), nil
	case relational.OpIn:
		return col + " IN (?)", append(params, param), nil
	default:
		return "", nil, fmt.Errorf("unsupported operator %s", op)
	}
}

var comparisonSymbols = map[relational.Op]string{
	relational.OpLt:  "<",
	relational.OpLte: "<=",
	relational.OpGt:  ">",
	relational.OpGte: ">=",
}

func compileIn(col string, colParams []any, v relational.Term) (string, []any, error) {
	list, ok := v.(relational.List)
	if !ok {
		leaf, isLeaf := v.(relational.Leaf)
		if !isLeaf {
			return "", nil, fmt.Errorf("$in requires a list, got %T", v)
		}
		return compileComparison(col, colParams, relational.OpIn, leaf)
	}
	if len(list) == 0 {
		return "0 = 1", nil, nil
	}

	params := clone(colParams)
	placeholders := make([]string, len(list))
	for i, elem := range list {
		leaf, ok := elem.(relational.Leaf)
		if !ok {
			return "", nil, fmt.Errorf("$in[%d]: element must be a scalar, got %T", i, elem)
		}
		param, err := irValueToParam(leaf.Value)
		if err != nil {
			return "", nil, fmt.Errorf("$in[%d]: %w", i, err)
		}
		placeholders[i] = "?"
		params = append(params, param)
	}
	return col + " IN (" + strings.Join(placeholders, ", ") + ")", params, nil
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// jsonPath builds a SQLite JSON path from a dotted field name. Segments
// that are not identifiers are quoted.
func jsonPath(name string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range strings.Split(name, ".") {
		b.WriteByte('.')
		if identifier.MatchString(seg) {
			b.WriteString(seg)
		} else {
			b.WriteString(`"` + seg + `"`)
		}
	}
	return b.String()
}

// escapeLike escapes LIKE wildcards for use with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func marshalList(list relational.List) (string, error) {
	arr := make(ir.Array, len(list))
	for i, elem := range list {
		leaf, ok := elem.(relational.Leaf)
		if !ok {
			return "", fmt.Errorf("array element %d must be a scalar, got %T", i, elem)
		}
		arr[i] = leaf.Value
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func clone(params []any) []any {
	return append([]any(nil), params...)
}

// irValueToParam converts an ir.Value to a Go native type for a SQL
// parameter. Arrays and objects are not directly supported as parameters.
func irValueToParam(v ir.Value) (any, error) {
	switch val := v.(type) {
	case ir.String:
		return string(val), nil
	case ir.Int:
		return int64(val), nil
	case ir.Float:
		return float64(val), nil
	case ir.Bool:
		return bool(val), nil
	case nil, ir.Null:
		return nil, nil
	case ir.Array:
		return nil, fmt.Errorf("array cannot be used as SQL parameter directly")
	case ir.Object:
		return nil, fmt.Errorf("object cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
