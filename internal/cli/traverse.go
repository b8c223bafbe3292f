package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/propgraph/internal/graph"
	"github.com/roach88/propgraph/internal/harness"
)

// NeighborsOptions holds flags for the neighbors command.
type NeighborsOptions struct {
	*RootOptions
	Depth int
}

// NewNeighborsCommand creates the neighbors command.
func NewNeighborsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NeighborsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "neighbors <id>",
		Short: "Show the neighborhood of a node",
		Long: `Show the nodes within --depth hops of a node, following edges in either
direction, and the edges walked to reach them.

Examples:
  propgraph neighbors frodo
  propgraph neighbors frodo --depth 2 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, closeFn, err := opts.openGraph()
			if err != nil {
				return err
			}
			defer closeFn()

			sub, err := g.Neighborhood(cmd.Context(), args[0], opts.Depth)
			if err != nil {
				return WrapExitError(ExitFailure, "neighbors failed", err)
			}

			var lines []string
			for _, n := range sub.Nodes {
				lines = append(lines, formatNode(n))
			}
			for _, e := range sub.Edges {
				lines = append(lines, formatEdge(e))
			}
			return opts.formatter(cmd).Success(sub, strings.Join(lines, "\n"))
		},
	}

	cmd.Flags().IntVar(&opts.Depth, "depth", 1, "number of hops")

	return cmd
}

// PathOptions holds flags for the path command.
type PathOptions struct {
	*RootOptions
	PatternFile string
}

// PathResult is one matched path in command output.
type PathResult struct {
	Path string     `json:"path"`
	Walk graph.Path `json:"walk"`
}

// NewPathCommand creates the path command.
func NewPathCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PathOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "path [pattern]",
		Short: "Find paths matching a pattern",
		Long: `Find paths that start at nodes matching a filter and follow labeled
edges through nodes matching each step's filter. A node appears at most
once per path.

The pattern is YAML (or JSON), inline or with --pattern-file:

  start: {name: frodo}
  steps:
    - label: KNOWS
      direction: out      # out (default), in or both
      filter: {age: {$gt: 100}}
  max_paths: 10

Examples:
  propgraph path '{start: {name: frodo}, steps: [{label: KNOWS}]}'
  propgraph path --pattern-file fellowship.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.PatternFile, "pattern-file", "f", "", "read the pattern from a file (\"-\" for stdin)")

	return cmd
}

func runPath(opts *PathOptions, args []string, cmd *cobra.Command) error {
	data, name, err := readSource(filterArg(args), opts.PatternFile, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitFailure, "invalid pattern", err)
	}
	if data == nil {
		return NewExitError(ExitCommandError, "a pattern is required")
	}

	var fixture harness.PathFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		if name == "" {
			name = "pattern"
		}
		return WrapExitError(ExitFailure, "invalid pattern", fmt.Errorf("%w: %s: %v", errLoad, name, err))
	}
	pattern, err := fixture.Pattern()
	if err != nil {
		return WrapExitError(ExitFailure, "invalid pattern", err)
	}

	g, closeFn, err := opts.openGraph()
	if err != nil {
		return err
	}
	defer closeFn()

	paths, err := g.PathQuery(cmd.Context(), pattern)
	if err != nil {
		return WrapExitError(ExitFailure, "path query failed", err)
	}

	results := make([]PathResult, len(paths))
	lines := make([]string, len(paths))
	for i, p := range paths {
		results[i] = PathResult{Path: harness.FormatPath(p), Walk: p}
		lines[i] = results[i].Path
	}
	return opts.formatter(cmd).Success(results, joinLines(lines, "No paths found."))
}
