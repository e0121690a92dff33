package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/devstage/internal/engine"
	"github.com/roach88/devstage/internal/eventlog"
	"github.com/roach88/devstage/internal/prop"
	"github.com/roach88/devstage/internal/session"
)

// ViewOptions holds flags for the view command.
type ViewOptions struct {
	*RootOptions
	Viewport   string
	Theme      string
	Background string
}

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "view <component>",
		Short: "Select the viewport, theme or background",
		Long: `Select the viewport, theme or background of a playground. Flags that
are not given leave their selection unchanged.

Viewports:   mobile, tablet, desktop, fullscreen
Themes:      light, dark, system
Backgrounds: transparent, white, black, dots, grid

Example:
  devstage view button --viewport mobile --theme dark`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Viewport, "viewport", "", "viewport to select")
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "theme to select")
	cmd.Flags().StringVar(&opts.Background, "background", "", "background to select")
	return cmd
}

func runView(opts *ViewOptions, cmd *cobra.Command, ref string) error {
	f := opts.formatter(cmd)

	var changes []func(*session.Session)
	if opts.Viewport != "" {
		v, err := engine.ParseViewport(opts.Viewport)
		if err != nil {
			return usageError(f, err)
		}
		changes = append(changes, func(s *session.Session) { s.SetViewport(v) })
	}
	if opts.Theme != "" {
		t, err := engine.ParseTheme(opts.Theme)
		if err != nil {
			return usageError(f, err)
		}
		changes = append(changes, func(s *session.Session) { s.SetTheme(t) })
	}
	if opts.Background != "" {
		b, err := engine.ParseBackground(opts.Background)
		if err != nil {
			return usageError(f, err)
		}
		changes = append(changes, func(s *session.Session) { s.SetBackground(b) })
	}

	return opts.withSession(cmd, ref, func(_ context.Context, s *session.Session) error {
		for _, change := range changes {
			change(s)
		}
		return renderState(f, s)
	})
}

// CodeOptions holds flags for the code command.
type CodeOptions struct {
	*RootOptions
	Snippet     bool
	Language    string
	ShowTypes   bool
	ShowImports bool
}

// NewCodeCommand creates the code command.
func NewCodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "code <component>",
		Short: "Print generated code for the current props",
		Long: `Print the call site for the current props, or with --snippet a small
example module.

--language, --types and --imports change the stored code view options
before printing; they shape the snippet.

Examples:
  devstage code button
  devstage code button --snippet --language jsx --imports=false`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCode(opts, cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Snippet, "snippet", false, "print an example module instead of the call site")
	cmd.Flags().StringVar(&opts.Language, "language", "", "code language (tsx|jsx)")
	cmd.Flags().BoolVar(&opts.ShowTypes, "types", true, "include type annotations (tsx only)")
	cmd.Flags().BoolVar(&opts.ShowImports, "imports", true, "include the import line")
	return cmd
}

// codeView is the JSON payload of the code command.
type codeView struct {
	Code    string          `json:"code"`
	Options engine.CodeView `json:"options"`
	Snippet bool            `json:"snippet"`
}

func runCode(opts *CodeOptions, cmd *cobra.Command, ref string) error {
	f := opts.formatter(cmd)

	var options []engine.CodeViewOption
	if cmd.Flags().Changed("language") {
		l, err := engine.ParseLanguage(opts.Language)
		if err != nil {
			return usageError(f, err)
		}
		options = append(options, engine.Language(l))
	}
	if cmd.Flags().Changed("types") {
		options = append(options, engine.ShowTypes(opts.ShowTypes))
	}
	if cmd.Flags().Changed("imports") {
		options = append(options, engine.ShowImports(opts.ShowImports))
	}

	return opts.withSession(cmd, ref, func(_ context.Context, s *session.Session) error {
		for _, o := range options {
			s.SetCodeViewOption(o)
		}
		code := s.Code()
		if opts.Snippet {
			code = s.Snippet()
		}
		view := codeView{Code: code, Options: s.Snapshot().CodeView, Snippet: opts.Snippet}
		return f.Render(s.ComponentID(), view, func(w io.Writer) {
			fmt.Fprintln(w, code)
		})
	})
}

// EventOptions holds flags for the event command.
type EventOptions struct {
	*RootOptions
	Target string
	Data   string
}

// NewEventCommand creates the event command.
func NewEventCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "event <component> <type>",
		Short: "Log an interaction event and print it",
		Long: `Log an interaction event the way the events panel records it and
print the entry. The event log lives only as long as the playground
process, so it is not stored.

Types: click, hover, focus, blur, change, custom

Example:
  devstage event button click --target submit --data '{"x":10}'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvent(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", "", "element that produced the event")
	cmd.Flags().StringVar(&opts.Data, "data", "", "event payload as a JSON object")
	return cmd
}

func runEvent(opts *EventOptions, cmd *cobra.Command, ref, typ string) error {
	f := opts.formatter(cmd)

	et, err := engine.ParseEventType(typ)
	if err != nil {
		return usageError(f, err)
	}
	in := engine.EventInput{Type: et, Target: opts.Target}
	if opts.Data != "" {
		v, err := prop.UnmarshalValue([]byte(opts.Data))
		if err != nil {
			return usageError(f, fmt.Errorf("data must be a JSON object: %w", err))
		}
		data, ok := v.(prop.Map)
		if !ok {
			return usageError(f, fmt.Errorf("data must be a JSON object, got %s", prop.Kind(v)))
		}
		in.Data = data
	}

	return opts.withSession(cmd, ref, func(_ context.Context, s *session.Session) error {
		ev := s.LogEvent(in)
		return f.Render(s.ComponentID(), ev, func(w io.Writer) {
			fmt.Fprintf(w, "%s  %s  %s", eventlog.FormatTimestamp(ev.Timestamp), ev.Type, ev.ID)
			if ev.Target != "" {
				fmt.Fprintf(w, "  target=%s", ev.Target)
			}
			if !ev.Data.IsZero() {
				fmt.Fprintf(w, "  %s", prop.JSONText(ev.Data))
			}
			fmt.Fprintln(w)
		})
	})
}
