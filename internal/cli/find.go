package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/propgraph/internal/store"
)

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	FilterFile string
	Limit      int
	Expression bool
	Count      bool
	Delete     bool
	Edges      bool
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find [filter]",
		Short: "Find nodes or edges matching a filter",
		Long: `Find the nodes (or, with --edges, the edges) matching a filter.

By default the filter is translated into a relational descriptor and
compiled to SQL. --expression evaluates the rendered boolean expression
instead, which also supports $all and $size.

Examples:
  propgraph find '{"labels": "Person", "age": {"$gte": 18}}'
  propgraph find '{"name": {"$startsWith": "fr"}}' --limit 5
  propgraph find '{"tags": {"$all": ["a", "b"]}}' --expression
  propgraph find '{"age": {"$lt": 18}}' --count
  propgraph find '{"labels": "Temp"}' --delete
  propgraph find '{"labels": "KNOWS"}' --edges`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.FilterFile, "filter-file", "f", "", "read the filter from a file")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum results (default from config)")
	cmd.Flags().BoolVar(&opts.Expression, "expression", false, "select by the rendered boolean expression")
	cmd.Flags().BoolVar(&opts.Count, "count", false, "print the number of matching nodes")
	cmd.Flags().BoolVar(&opts.Delete, "delete", false, "delete the matching nodes")
	cmd.Flags().BoolVar(&opts.Edges, "edges", false, "search edges instead of nodes")
	cmd.MarkFlagsMutuallyExclusive("count", "delete", "edges")
	cmd.MarkFlagsMutuallyExclusive("expression", "count")
	cmd.MarkFlagsMutuallyExclusive("expression", "delete")
	cmd.MarkFlagsMutuallyExclusive("expression", "edges")

	return cmd
}

func runFind(opts *FindOptions, args []string, cmd *cobra.Command) error {
	filter, err := LoadFilter(filterArg(args), opts.FilterFile, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitFailure, "invalid filter", err)
	}

	g, closeFn, err := opts.openGraph()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := cmd.Context()
	f := opts.formatter(cmd)

	switch {
	case opts.Count:
		n, err := g.CountNodes(ctx, filter)
		if err != nil {
			return WrapExitError(ExitFailure, "find failed", err)
		}
		return f.Success(map[string]int{"count": n}, fmt.Sprint(n))

	case opts.Delete:
		n, err := g.DeleteNodes(ctx, filter, opts.Limit)
		if err != nil {
			return WrapExitError(ExitFailure, "find failed", err)
		}
		return f.Success(map[string]int{"deleted": n}, fmt.Sprintf("deleted %d node(s)", n))

	case opts.Edges:
		edges, err := g.FindEdges(ctx, filter, opts.Limit)
		if err != nil {
			return WrapExitError(ExitFailure, "find failed", err)
		}
		if edges == nil {
			edges = []store.Edge{}
		}
		lines := make([]string, len(edges))
		for i, e := range edges {
			lines[i] = formatEdge(e)
		}
		return f.Success(edges, joinLines(lines, "No edges found."))
	}

	var nodes []store.Node
	if opts.Expression {
		nodes, err = g.FindNodesByExpression(ctx, filter)
	} else {
		nodes, err = g.FindNodes(ctx, filter, opts.Limit)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "find failed", err)
	}
	if nodes == nil {
		nodes = []store.Node{}
	}
	lines := make([]string, len(nodes))
	for i, n := range nodes {
		lines[i] = formatNode(n)
	}
	return f.Success(nodes, joinLines(lines, "No nodes found."))
}

func joinLines(lines []string, empty string) string {
	if len(lines) == 0 {
		return empty
	}
	return strings.Join(lines, "\n")
}
