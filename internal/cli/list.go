package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/roach88/devstage/internal/component"
	"github.com/roach88/devstage/internal/engine"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the components in the components directory",
		Long: `List every valid component configuration in the components directory.
Invalid files are skipped; run validate to see why.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	reg, errs := opts.loadRegistry()
	for _, err := range errs {
		f.VerboseLog("Skipped: %v", err)
	}
	if reg.Len() == 0 && len(errs) > 0 {
		return f.Fail(ExitCommandError, ErrorCode(errs[0]), errs[0])
	}

	list := reg.List()
	if list == nil {
		list = []component.Metadata{}
	}
	return f.Render("", list, func(w io.Writer) {
		for _, m := range list {
			line := m.ID + "\t" + m.Name
			if m.Category != "" {
				line += "\t[" + m.Category + "]"
			}
			if len(m.Tags) > 0 {
				line += "\t" + strings.Join(m.Tags, ",")
			}
			fmt.Fprintln(w, line)
		}
	})
}

// updatedAtReader is implemented by backends that track write times.
type updatedAtReader interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, bool, error)
}

// SessionInfo describes one stored playground.
type SessionInfo struct {
	ComponentID string     `json:"component_id"`
	Key         string     `json:"key"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List stored playgrounds",
		Long: `List the playgrounds stored in the configured backend. The SQLite
backend also reports when each was last changed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(rootOpts, cmd)
		},
	}
}

func runSessions(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	backend, err := opts.backendConfig().OpenBackend(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeBackend, err)
	}
	defer backend.Close()

	keys, err := backend.Keys(ctx, engine.PersistKeyPrefix)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeBackend, err)
	}

	timed, _ := backend.(updatedAtReader)
	infos := make([]SessionInfo, 0, len(keys))
	for _, key := range keys {
		info := SessionInfo{ComponentID: strings.TrimPrefix(key, engine.PersistKeyPrefix), Key: key}
		if timed != nil {
			if t, ok, err := timed.UpdatedAt(ctx, key); err == nil && ok {
				info.UpdatedAt = &t
			}
		}
		infos = append(infos, info)
	}

	return f.Render("", infos, func(w io.Writer) {
		if len(infos) == 0 {
			fmt.Fprintln(w, "No stored playgrounds.")
			return
		}
		for _, info := range infos {
			if info.UpdatedAt != nil {
				fmt.Fprintf(w, "%s\tupdated %s\n", info.ComponentID, humanize.Time(*info.UpdatedAt))
				continue
			}
			fmt.Fprintln(w, info.ComponentID)
		}
	})
}
