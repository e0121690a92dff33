package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/devstage/internal/component"
	"github.com/roach88/devstage/internal/prop"
	"github.com/roach88/devstage/internal/session"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <component>",
		Short: "Print the current playground of a component",
		Long: `Print the current playground of a component.

<component> is either a configuration file or the id of a component in
the components directory.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return rootOpts.withSession(cmd, args[0], func(_ context.Context, s *session.Session) error {
				return renderState(f, s)
			})
		},
	}
}

// SetOptions holds flags for the set command.
type SetOptions struct {
	*RootOptions
	Raw bool // keep the value as a string even if it parses as JSON
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set <component> <prop> <value>",
		Short: "Set one prop",
		Long: `Set one prop, leaving the others untouched.

The value is read as JSON when it parses (42, true, null, [1,2],
{"a":1}) and as a plain string otherwise. Use --raw to force a string.

Examples:
  devstage set button label "Save changes"
  devstage set button disabled true
  devstage set button count 42 --raw`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(opts, cmd, args[0], args[1], args[2])
		},
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "treat the value as a plain string")
	return cmd
}

func runSet(opts *SetOptions, cmd *cobra.Command, ref, name, text string) error {
	f := opts.formatter(cmd)
	value := prop.Value(prop.String(text))
	if !opts.Raw {
		value = prop.Parse(text)
	}

	return opts.withSession(cmd, ref, func(_ context.Context, s *session.Session) error {
		if _, ok := s.Config().Prop(name); !ok {
			f.VerboseLog("Prop %q is not declared by %s", name, s.ComponentID())
		}
		s.UpdateProp(name, value)
		return renderState(f, s)
	})
}

// NewReplaceCommand creates the replace command.
func NewReplaceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replace <component> <json-object>",
		Short: "Replace every prop",
		Long: `Replace the whole props mapping. Props missing from the object are
removed.

Example:
  devstage replace button '{"label":"OK","variant":"secondary"}'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			v, err := prop.UnmarshalValue([]byte(args[1]))
			if err != nil {
				return usageError(f, fmt.Errorf("props must be a JSON object: %w", err))
			}
			props, ok := v.(prop.Map)
			if !ok {
				return usageError(f, fmt.Errorf("props must be a JSON object, got %s", prop.Kind(v)))
			}
			return rootOpts.withSession(cmd, args[0], func(_ context.Context, s *session.Session) error {
				s.UpdateProps(props)
				return renderState(f, s)
			})
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "reset <component>",
		Short:         "Restore the default props",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return rootOpts.withSession(cmd, args[0], func(_ context.Context, s *session.Session) error {
				s.ResetProps()
				return renderState(f, s)
			})
		},
	}
}

// NewPresetCommand creates the preset command.
func NewPresetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preset <component> [preset-id]",
		Short: "Apply a preset, or list presets",
		Long: `Apply a preset: the props are replaced by the preset's props.
Without a preset id, list the presets the component declares.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return rootOpts.withSession(cmd, args[0], func(_ context.Context, s *session.Session) error {
				if len(args) == 1 {
					return listPresets(f, s)
				}
				if err := s.ApplyPreset(args[1]); err != nil {
					return f.Fail(ExitCommandError, ErrorCode(err), err)
				}
				return renderState(f, s)
			})
		},
	}
}

func listPresets(f *OutputFormatter, s *session.Session) error {
	presets := s.Config().Presets
	if presets == nil {
		presets = []component.Preset{}
	}
	return f.Render(s.ComponentID(), presets, func(w io.Writer) {
		if len(presets) == 0 {
			fmt.Fprintf(w, "%s declares no presets.\n", s.Config().Name)
			return
		}
		for _, p := range presets {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, prop.JSONText(p.Props))
		}
	})
}
