package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/devstage/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config holds backend and lookup settings. Environment values are
	// loaded first and flags override them.
	Config config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the devstage CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	cfg, envErr := config.Load()
	if envErr == nil {
		opts.Config = cfg
	} else {
		opts.Config = config.Config{
			Backend:       config.BackendSQLite,
			DBPath:        config.DefaultDBPath(),
			Format:        "text",
			ComponentsDir: "components",
		}
	}

	cmd := &cobra.Command{
		Use:   "devstage",
		Short: "devstage - component playground state engine",
		Long: `Inspect UI components from the terminal.

Each component has one playground: its props, viewport, theme and
background, plus code view options. Commands change that playground and
the change is stored in the configured backend, so the next command
picks up where the last one left off.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", envErr)
			}
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			opts.Config.Format = opts.Format
			if err := opts.Config.Validate(); err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			return nil
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", opts.Config.Format, "output format (json|text)")
	pf.StringVar((*string)(&opts.Config.Backend), "backend", string(opts.Config.Backend), "persistence backend (sqlite|redis|memory)")
	pf.StringVar(&opts.Config.DBPath, "db", opts.Config.DBPath, "SQLite database path")
	pf.StringVar(&opts.Config.RedisAddr, "redis-addr", opts.Config.RedisAddr, "Redis address")
	pf.StringVarP(&opts.Config.ComponentsDir, "components", "C", opts.Config.ComponentsDir, "directory searched for component configurations")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewReplaceCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewPresetCommand(opts))
	cmd.AddCommand(NewViewCommand(opts))
	cmd.AddCommand(NewCodeCommand(opts))
	cmd.AddCommand(NewEventCommand(opts))
	cmd.AddCommand(NewShareCommand(opts))
	cmd.AddCommand(NewOpenCommand(opts))
	cmd.AddCommand(NewSessionsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// logger returns a text logger on cmd's error stream. Warnings and
// errors only, unless --verbose.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
