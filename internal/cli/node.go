package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/propgraph/internal/ir"
	"github.com/roach88/propgraph/internal/store"
)

// NodeOptions holds flags for the node subcommands.
type NodeOptions struct {
	*RootOptions
	ID     string
	Labels []string
	Data   string
}

// NewNodeCommand creates the node command group.
func NewNodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Create, read, update and delete nodes",
	}

	cmd.AddCommand(newNodeCreateCommand(rootOpts))
	cmd.AddCommand(newNodeGetCommand(rootOpts))
	cmd.AddCommand(newNodeUpdateCommand(rootOpts))
	cmd.AddCommand(newNodeDeleteCommand(rootOpts))

	return cmd
}

func newNodeCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create or replace a node",
		Long: `Create a node. Without --id a new ID is generated; with an existing ID
the node's labels and data are replaced.

Examples:
  propgraph node create --label Person --data '{"name": "frodo", "age": 50}'
  propgraph node create --id frodo --label Person --label Hobbit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := LoadData(opts.Data)
			if err != nil {
				return WrapExitError(ExitFailure, "invalid data", err)
			}

			g, closeFn, err := opts.openGraph()
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := g.CreateNode(cmd.Context(), store.Node{ID: opts.ID, Labels: opts.Labels, Data: data})
			if err != nil {
				return WrapExitError(ExitFailure, "create node failed", err)
			}
			return opts.formatter(cmd).Success(n, formatNode(n))
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "node ID (generated when empty)")
	cmd.Flags().StringArrayVarP(&opts.Labels, "label", "l", nil, "node label (repeatable)")
	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "node data as a JSON or YAML object")

	return cmd
}

func newNodeGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, closeFn, err := rootOpts.openGraph()
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := g.GetNode(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "get node failed", err)
			}
			return rootOpts.formatter(cmd).Success(n, formatNode(n))
		},
	}
}

func newNodeUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Merge data into a node",
		Long: `Merge a data patch into an existing node. Keys in the patch replace
existing keys; other keys are kept.

Examples:
  propgraph node update frodo --data '{"age": 51}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := LoadData(opts.Data)
			if err != nil {
				return WrapExitError(ExitFailure, "invalid data", err)
			}

			g, closeFn, err := opts.openGraph()
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := g.UpdateNode(cmd.Context(), args[0], patch)
			if err != nil {
				return WrapExitError(ExitFailure, "update node failed", err)
			}
			return opts.formatter(cmd).Success(n, formatNode(n))
		},
	}

	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "data patch as a JSON or YAML object")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func newNodeDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a node and its edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, closeFn, err := rootOpts.openGraph()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := g.DeleteNode(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitFailure, "delete node failed", err)
			}
			return rootOpts.formatter(cmd).Success(map[string]string{"deleted": args[0]}, "deleted "+args[0])
		},
	}
}

// formatNode renders a node as "id [labels] {data}".
func formatNode(n store.Node) string {
	return fmt.Sprintf("%s [%s] %s", n.ID, strings.Join(n.Labels, ","), formatData(n.Data))
}

// formatEdge renders an edge as "id from -[label]-> to {data}".
func formatEdge(e store.Edge) string {
	return fmt.Sprintf("%s %s -[%s]-> %s %s", e.ID, e.From, e.Label, e.To, formatData(e.Data))
}

func formatData(data ir.Object) string {
	if data == nil {
		data = ir.Object{}
	}
	out, err := ir.MarshalCanonical(data)
	if err != nil {
		return "{}"
	}
	return string(out)
}
