package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/devstage/internal/component"
	"github.com/roach88/devstage/internal/config"
	"github.com/roach88/devstage/internal/engine"
	"github.com/roach88/devstage/internal/prop"
	"github.com/roach88/devstage/internal/session"
)

// loadRegistry loads and validates every configuration in the components
// directory. Files that fail are returned alongside the registry.
func (o *RootOptions) loadRegistry() (*component.Registry, []error) {
	configs, errs := component.LoadDir(o.Config.ComponentsDir)
	reg := component.NewRegistry()
	for _, cfg := range configs {
		if err := component.Validate(cfg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cfg.ID, err))
			continue
		}
		if err := reg.Register(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return reg, errs
}

// resolveComponent loads ref directly when it is a configuration file,
// otherwise looks it up by id in the components directory.
func (o *RootOptions) resolveComponent(ref string) (*component.Config, error) {
	if slices.Contains(component.Extensions, strings.ToLower(filepath.Ext(ref))) {
		if _, err := os.Stat(ref); err == nil {
			cfg, err := component.LoadFile(ref)
			if err != nil {
				return nil, err
			}
			if err := component.Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
	}

	reg, _ := o.loadRegistry()
	cfg, ok := reg.Get(ref)
	if !ok {
		return nil, &component.LoadError{
			Code:    component.ErrCodeNotFound,
			Message: fmt.Sprintf("component %q not found in %s", ref, o.Config.ComponentsDir),
		}
	}
	return cfg, nil
}

// backendConfig returns the configuration used to open the backend,
// with the output format filled in for validation.
func (o *RootOptions) backendConfig() config.Config {
	cfg := o.Config
	cfg.Format = "text"
	if o.Format == "json" {
		cfg.Format = "json"
	}
	if cfg.Backend == "" {
		cfg.Backend = config.BackendSQLite
	}
	if cfg.Backend == config.BackendSQLite && cfg.DBPath == "" {
		cfg.DBPath = config.DefaultDBPath()
	}
	return cfg
}

// withSession resolves ref, opens the backend, runs fn on a session for
// the component, and flushes every state change before returning.
func (o *RootOptions) withSession(cmd *cobra.Command, ref string, fn func(ctx context.Context, s *session.Session) error) error {
	f := o.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := o.resolveComponent(ref)
	if err != nil {
		return f.Fail(ExitCommandError, ErrorCode(err), err)
	}

	backend, err := o.backendConfig().OpenBackend(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeBackend, err)
	}
	defer backend.Close()

	logger := o.logger(cmd)
	f.VerboseLog("Using %s backend for component %s", o.backendConfig().Backend, cfg.ID)

	s, err := session.New(ctx, cfg, engine.WithBackend(backend), engine.WithLogger(logger))
	if err != nil {
		return f.Fail(ExitCommandError, ErrorCode(err), err)
	}

	runErr := fn(ctx, s)
	if err := s.Close(ctx); err != nil && runErr == nil {
		return f.Fail(ExitCommandError, ErrCodeBackend, err)
	}
	return runErr
}

// stateView is the JSON payload of commands that print a playground.
type stateView struct {
	State engine.State `json:"state"`
	Code  string       `json:"code"`
}

// renderState prints the current playground of s.
func renderState(f *OutputFormatter, s *session.Session) error {
	st := s.Snapshot()
	return f.Render(s.ComponentID(), stateView{State: st, Code: s.Code()}, func(w io.Writer) {
		writeState(w, s.Config(), st, s.Code())
	})
}

func writeState(w io.Writer, cfg *component.Config, st engine.State, code string) {
	fmt.Fprintf(w, "%s (%s)\n", cfg.Name, cfg.ID)

	viewport := string(st.Viewport)
	if d, ok := st.Viewport.Dimensions(); ok {
		viewport = fmt.Sprintf("%s %dx%d", viewport, d.Width, d.Height)
	}
	fmt.Fprintf(w, "  %-11s %s\n", "viewport:", viewport)
	fmt.Fprintf(w, "  %-11s %s\n", "theme:", st.Theme)
	fmt.Fprintf(w, "  %-11s %s\n", "background:", st.Background)

	if st.Props.Len() == 0 {
		fmt.Fprintf(w, "  %-11s (none)\n", "props:")
	} else {
		fmt.Fprintf(w, "  props:\n")
		width := 0
		for _, k := range st.Props.Keys() {
			width = max(width, len(k))
		}
		for k, v := range st.Props.All() {
			fmt.Fprintf(w, "    %-*s %s\n", width, k, prop.JSONText(v))
		}
	}

	fmt.Fprintf(w, "  %-11s %s\n", "code:", code)
}

// usageError reports a bad argument value with exit code 2.
func usageError(f *OutputFormatter, err error) error {
	return f.Fail(ExitCommandError, ErrCodeUsage, err)
}
