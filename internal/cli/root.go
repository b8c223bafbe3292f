package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/propgraph/internal/config"
	"github.com/roach88/propgraph/internal/graph"
	"github.com/roach88/propgraph/internal/store"
)

// RootOptions holds global flags for all commands, and the configuration
// and logger resolved from them before any command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	Config *config.Config
	Logger *slog.Logger

	viper *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = config.ValidFormats

// persistentFlags are bound into the configuration by name.
var persistentFlags = []string{"verbose", "format", "db", "default-limit"}

// NewRootCommand creates the root command for the propgraph CLI.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRootCommand()
	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported on stdout as a JSON response with --format json,
// and on stderr otherwise.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd, opts := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || !exitErr.Silent {
		f := &OutputFormatter{Format: opts.Format, Writer: stdout, ErrWriter: stderr, Verbose: opts.Verbose}
		_ = f.Error(ErrorCode(err), err.Error(), nil)
	}
	return GetExitCode(err)
}

func newRootCommand() (*cobra.Command, *RootOptions) {
	opts := &RootOptions{viper: config.New()}

	cmd := &cobra.Command{
		Use:   "propgraph",
		Short: "propgraph - MongoDB-style filters over a property graph",
		Long: `Compile MongoDB-style filter objects into boolean expressions and
relational query descriptors, and run them against a SQLite-backed
property graph.

Settings come from propgraph.yaml (working directory or user config
directory), PROPGRAPH_* environment variables and flags, in increasing
priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default: propgraph.yaml)")
	flags.String("db", config.GetDefaults().DB, "path to SQLite database")
	flags.Int("default-limit", 0, "limit for queries that pass none (0 = unlimited)")

	// Add subcommands
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewNodeCommand(opts))
	cmd.AddCommand(NewEdgeCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewNeighborsCommand(opts))
	cmd.AddCommand(NewPathCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd, opts
}

// resolve loads the configuration, validates it and sets up logging.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if err := config.BindFlags(o.viper, cmd.Root().PersistentFlags(), persistentFlags...); err != nil {
		return WrapExitError(ExitCommandError, "failed to bind flags", err)
	}
	cfg, err := config.Load(o.viper, o.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Config = cfg
	o.Format = cfg.Format
	o.Verbose = cfg.Verbose

	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if o.Verbose {
		logLevel = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))
	o.Logger.Debug("configuration loaded",
		"db", cfg.DB, "default_limit", cfg.DefaultLimit, "format", cfg.Format)
	return nil
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// openGraph opens the configured database. The returned function closes
// it.
func (o *RootOptions) openGraph() (*graph.Graph, func(), error) {
	st, err := store.Open(o.Config.DB)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	o.Logger.Debug("database ready", "path", o.Config.DB)

	g := graph.New(st,
		graph.WithLogger(o.Logger),
		graph.WithDefaultLimit(o.Config.DefaultLimit),
	)
	closeFn := func() {
		if err := st.Close(); err != nil {
			o.Logger.Error("error closing database", "error", err)
		}
	}
	return g, closeFn, nil
}
