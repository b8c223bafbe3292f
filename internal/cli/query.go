package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/propgraph/internal/expr"
	"github.com/roach88/propgraph/internal/projection"
	"github.com/roach88/propgraph/internal/querysql"
	"github.com/roach88/propgraph/internal/relational"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	FilterFile string
	Variable   string
	Escape     bool
	Group      bool
	Level      int
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render [filter]",
		Short: "Render a filter as a boolean expression",
		Long: `Render a MongoDB-style filter as a boolean expression over a record
variable.

The filter is given inline (JSON or YAML) or with --filter-file
(.json, .yaml, .yml or .cue; "-" reads stdin).

Examples:
  propgraph render '{"age": {"$gte": 18}}'
  propgraph render -f filter.cue --variable p --escape
  propgraph render '{"$or": [{"a": 1}, {"b": 2}], "c": 3}' --group`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.FilterFile, "filter-file", "f", "", "read the filter from a file")
	cmd.Flags().StringVar(&opts.Variable, "variable", "", "record variable (default from config)")
	cmd.Flags().BoolVar(&opts.Escape, "escape", false, "double single quotes in string literals (default from config)")
	cmd.Flags().BoolVar(&opts.Group, "group", false, "join top-level parts with \"and\" and parenthesize nested connectors")
	cmd.Flags().IntVar(&opts.Level, "level", 0, "nesting level of the rendered tree")

	return cmd
}

func runRender(opts *RenderOptions, args []string, cmd *cobra.Command) error {
	tree, err := parseFilter(opts.RootOptions, filterArg(args), opts.FilterFile, cmd)
	if err != nil {
		return err
	}

	variable := opts.Config.Variable
	if cmd.Flags().Changed("variable") {
		variable = opts.Variable
	}
	escape := opts.Config.EscapeStrings
	if cmd.Flags().Changed("escape") {
		escape = opts.Escape
	}

	var rendererOpts []expr.Option
	if escape {
		rendererOpts = append(rendererOpts, expr.WithEscaping())
	}
	if opts.Group {
		rendererOpts = append(rendererOpts, expr.WithGrouping())
	}

	rendered, err := expr.NewRenderer(rendererOpts...).Render(tree, variable, opts.Level)
	if err != nil {
		return WrapExitError(ExitFailure, "render failed", err)
	}
	return opts.formatter(cmd).Success(map[string]string{"expression": rendered}, rendered)
}

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	FilterFile string
	Limit      int
	Offset     int
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate [filter]",
		Short: "Translate a filter into a relational query descriptor",
		Long: `Translate a MongoDB-style filter into the query descriptor consumed by the
store: "id" and "labels" pass through, other fields move under "data.",
and $size predicates become standalone clauses.

Examples:
  propgraph translate '{"a": {"$size": 4}, "b": 3}'
  propgraph translate -f filter.yaml --limit 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.FilterFile, "filter-file", "f", "", "read the filter from a file")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "result limit to merge into the descriptor")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "result offset to merge into the descriptor")

	return cmd
}

func runTranslate(opts *TranslateOptions, args []string, cmd *cobra.Command) error {
	filter, err := LoadFilter(filterArg(args), opts.FilterFile, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitFailure, "invalid filter", err)
	}

	d := relational.Translate(filter).WithLimit(opts.Limit, opts.Offset)
	data, err := d.MarshalJSON()
	if err != nil {
		return WrapExitError(ExitFailure, "translate failed", err)
	}
	return opts.formatter(cmd).Success(json.RawMessage(data), string(data))
}

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	FilterFile string
	Expression bool
	Edges      bool
	Limit      int
	Offset     int
}

// SQLStatement is a compiled statement and its parameters.
type SQLStatement struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql [filter]",
		Short: "Show the SQLite statement a filter compiles to",
		Long: `Show the SQLite statement a filter compiles to, either through the
relational descriptor (default) or by evaluating the rendered boolean
expression (--expression).

Examples:
  propgraph sql '{"x": {"$gt": 8}}'
  propgraph sql '{"x": {"$gt": 8}}' --expression
  propgraph sql '{"labels": "KNOWS"}' --edges`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.FilterFile, "filter-file", "f", "", "read the filter from a file")
	cmd.Flags().BoolVar(&opts.Expression, "expression", false, "compile the rendered expression instead of the descriptor")
	cmd.Flags().BoolVar(&opts.Edges, "edges", false, "compile against the edges table")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "result limit (descriptor only)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "result offset (descriptor only)")

	return cmd
}

func runSQL(opts *SQLOptions, args []string, cmd *cobra.Command) error {
	table := querysql.Nodes
	if opts.Edges {
		table = querysql.Edges
	}
	compiler := querysql.NewSQLCompiler()

	var stmt SQLStatement
	if opts.Expression {
		tree, err := parseFilter(opts.RootOptions, filterArg(args), opts.FilterFile, cmd)
		if err != nil {
			return err
		}
		stmt.SQL, err = compiler.CompileExpression(table, tree)
		if err != nil {
			return WrapExitError(ExitFailure, "compile failed", err)
		}
		stmt.Params = []any{}
	} else {
		filter, err := LoadFilter(filterArg(args), opts.FilterFile, cmd.InOrStdin())
		if err != nil {
			return WrapExitError(ExitFailure, "invalid filter", err)
		}
		d := relational.Translate(filter).WithLimit(opts.Limit, opts.Offset)
		stmt.SQL, stmt.Params, err = compiler.CompileSelect(table, d)
		if err != nil {
			return WrapExitError(ExitFailure, "compile failed", err)
		}
		if stmt.Params == nil {
			stmt.Params = []any{}
		}
	}

	var text strings.Builder
	text.WriteString(stmt.SQL)
	if len(stmt.Params) > 0 {
		params, _ := json.Marshal(stmt.Params)
		fmt.Fprintf(&text, "\n-- params: %s", params)
	}
	return opts.formatter(cmd).Success(stmt, text.String())
}

// parseFilter loads a filter and parses it into an operator tree.
func parseFilter(opts *RootOptions, inline, file string, cmd *cobra.Command) (projection.Node, error) {
	filter, err := LoadFilter(inline, file, cmd.InOrStdin())
	if err != nil {
		return nil, WrapExitError(ExitFailure, "invalid filter", err)
	}
	tree, err := projection.Parse(filter)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "invalid filter", err)
	}
	opts.Logger.Debug("filter parsed", "fields", strings.Join(projection.Fields(tree), ","))
	return tree, nil
}
