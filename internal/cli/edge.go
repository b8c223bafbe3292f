package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/propgraph/internal/store"
)

// EdgeOptions holds flags for the edge subcommands.
type EdgeOptions struct {
	*RootOptions
	ID    string
	Label string
	From  string
	To    string
	Data  string
}

// NewEdgeCommand creates the edge command group.
func NewEdgeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Create, read and delete edges",
	}

	cmd.AddCommand(newEdgeCreateCommand(rootOpts))
	cmd.AddCommand(newEdgeGetCommand(rootOpts))
	cmd.AddCommand(newEdgeDeleteCommand(rootOpts))

	return cmd
}

func newEdgeCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EdgeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create or replace an edge",
		Long: `Create a directed edge between two existing nodes.

Examples:
  propgraph edge create --label KNOWS --from frodo --to sam
  propgraph edge create --id e1 --label VISITED --from sam --to bree --data '{"year": 3018}'`,
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

			e, err := g.CreateEdge(cmd.Context(), store.Edge{
				ID:    opts.ID,
				Label: opts.Label,
				From:  opts.From,
				To:    opts.To,
				Data:  data,
			})
			if err != nil {
				return WrapExitError(ExitFailure, "create edge failed", err)
			}
			return opts.formatter(cmd).Success(e, formatEdge(e))
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "edge ID (generated when empty)")
	cmd.Flags().StringVarP(&opts.Label, "label", "l", "", "edge label")
	cmd.Flags().StringVar(&opts.From, "from", "", "source node ID")
	cmd.Flags().StringVar(&opts.To, "to", "", "target node ID")
	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "edge data as a JSON or YAML object")
	_ = cmd.MarkFlagRequired("label")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newEdgeGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, closeFn, err := rootOpts.openGraph()
			if err != nil {
				return err
			}
			defer closeFn()

			e, err := g.GetEdge(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "get edge failed", err)
			}
			return rootOpts.formatter(cmd).Success(e, formatEdge(e))
		},
	}
}

func newEdgeDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, closeFn, err := rootOpts.openGraph()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := g.DeleteEdge(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitFailure, "delete edge failed", err)
			}
			return rootOpts.formatter(cmd).Success(map[string]string{"deleted": args[0]}, "deleted "+args[0])
		},
	}
}
