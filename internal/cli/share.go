package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/devstage/internal/session"
	"github.com/roach88/devstage/internal/share"
)

// ShareOptions holds flags for the share command.
type ShareOptions struct {
	*RootOptions
	Base string // URL the query string is appended to
}

// shareView is the JSON payload of the share command.
type shareView struct {
	Link       string           `json:"link"`
	Serialized share.Serialized `json:"serialized"`
}

// NewShareCommand creates the share command.
func NewShareCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShareOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "share <component>",
		Short: "Encode the playground as a shareable link",
		Long: `Encode the props, viewport, theme and background of a playground as a
URL query string. Selections equal to the defaults are left out.

Examples:
  devstage share button
  devstage share button --base https://play.example.com/`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShare(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Base, "base", "", "URL to prefix the query string with")
	return cmd
}

func runShare(opts *ShareOptions, cmd *cobra.Command, ref string) error {
	f := opts.formatter(cmd)
	return opts.withSession(cmd, ref, func(_ context.Context, s *session.Session) error {
		ser, err := s.Share()
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeShare, err)
		}
		link := shareLink(opts.Base, ser)
		return f.Render(s.ComponentID(), shareView{Link: link, Serialized: ser}, func(w io.Writer) {
			fmt.Fprintln(w, link)
		})
	})
}

// shareLink appends the encoded query to base. An empty base yields the
// bare query string.
func shareLink(base string, ser share.Serialized) string {
	q := ser.String()
	switch {
	case base == "":
		return q
	case strings.Contains(base, "?"):
		return base + "&" + q
	}
	return base + "?" + q
}

// NewOpenCommand creates the open command.
func NewOpenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open <link>",
		Short: "Load a shared link into the component's playground",
		Long: `Decode a link made by share and apply it to the playground of the
component it names: props, viewport, theme and background are all
replaced. The link may be a full URL or just its query string.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			ser, err := share.Parse(args[0])
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeShare, err)
			}
			shared, err := share.Decode(ser)
			if err != nil {
				return f.Fail(ExitCommandError, ErrCodeShare, err)
			}

			return rootOpts.withSession(cmd, shared.ComponentID, func(_ context.Context, s *session.Session) error {
				s.UpdateProps(shared.Props)
				s.SetViewport(shared.Viewport)
				s.SetTheme(shared.Theme)
				s.SetBackground(shared.Background)
				return renderState(f, s)
			})
		},
	}
}
