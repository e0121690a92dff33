// Package session binds one component configuration to one engine and
// hands it to the consumers of a playground.
//
// A Session is carried explicitly or through a context.Context. Looking
// a session up from a context that has none is an error (NO_SESSION);
// it never yields a default state.
//
// Provider keeps at most one live session per process scope: binding
// the same component id again returns the live session, while a new id
// closes it and starts a fresh engine.
package session

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/roach88/devstage/internal/codegen"
	"github.com/roach88/devstage/internal/component"
	"github.com/roach88/devstage/internal/engine"
	"github.com/roach88/devstage/internal/prop"
	"github.com/roach88/devstage/internal/share"
)

// Session is one live playground.
type Session struct {
	cfg    *component.Config
	engine *engine.Engine
	closed atomic.Bool
}

// New starts a session for cfg. opts are passed to engine.New.
func New(ctx context.Context, cfg *component.Config, opts ...engine.Option) (*Session, error) {
	if cfg == nil || cfg.ID == "" {
		return nil, &Error{Code: ErrCodeInvalidConfig, Message: "configuration must have an id"}
	}
	return &Session{
		cfg:    cfg,
		engine: engine.New(ctx, cfg, opts...),
	}, nil
}

// Config returns the bound configuration.
func (s *Session) Config() *component.Config { return s.cfg }

// ComponentID returns the bound configuration id.
func (s *Session) ComponentID() string { return s.cfg.ID }

// Snapshot returns the current state.
func (s *Session) Snapshot() engine.State { return s.engine.Snapshot() }

// Subscribe registers fn for every state change.
func (s *Session) Subscribe(fn func(engine.State)) (cancel func()) {
	return s.engine.Subscribe(fn)
}

// UpdateProp sets one property.
func (s *Session) UpdateProp(name string, value prop.Value) { s.engine.UpdateProp(name, value) }

// UpdateProps replaces all properties.
func (s *Session) UpdateProps(props prop.Map) { s.engine.UpdateProps(props) }

// ResetProps restores the default properties.
func (s *Session) ResetProps() { s.engine.ResetProps() }

// SetViewport selects the viewport.
func (s *Session) SetViewport(v engine.Viewport) { s.engine.SetViewport(v) }

// SetTheme selects the theme.
func (s *Session) SetTheme(t engine.Theme) { s.engine.SetTheme(t) }

// SetBackground selects the background.
func (s *Session) SetBackground(b engine.Background) { s.engine.SetBackground(b) }

// TogglePanel flips a panel's visibility.
func (s *Session) TogglePanel(p engine.Panel) { s.engine.TogglePanel(p) }

// SetPanelSize sets a pane size.
func (s *Session) SetPanelSize(key engine.PanelSizeKey, size float64) {
	s.engine.SetPanelSize(key, size)
}

// LogEvent records an interaction.
func (s *Session) LogEvent(in engine.EventInput) engine.Event { return s.engine.LogEvent(in) }

// ClearEvents empties the event log.
func (s *Session) ClearEvents() { s.engine.ClearEvents() }

// SetCodeViewOption sets one code view option.
func (s *Session) SetCodeViewOption(opt engine.CodeViewOption) { s.engine.SetCodeViewOption(opt) }

// ApplyPreset replaces the props with the preset's props wholesale.
func (s *Session) ApplyPreset(id string) error {
	p, ok := s.cfg.Preset(id)
	if !ok {
		return &Error{
			Code:        ErrCodePresetNotFound,
			Message:     fmt.Sprintf("preset %q not found", id),
			ComponentID: s.cfg.ID,
		}
	}
	s.engine.UpdateProps(p.Props)
	return nil
}

// Code renders the current props as a call site.
func (s *Session) Code() string {
	return codegen.CallSite(s.cfg.Name, s.engine.Snapshot().Props)
}

// Snippet renders the current props as an example module shaped by the
// code view options.
func (s *Session) Snippet() string {
	st := s.engine.Snapshot()
	return codegen.Snippet(s.cfg.Name, st.Props, codegen.Options{
		Language:    codegen.Language(st.CodeView.Language),
		ShowTypes:   st.CodeView.ShowTypes,
		ShowImports: st.CodeView.ShowImports,
	})
}

// Share encodes the current state for a link.
func (s *Session) Share() (share.Serialized, error) {
	return share.Encode(s.engine.Snapshot())
}

// Flush waits for pending persistence writes.
func (s *Session) Flush(ctx context.Context) error { return s.engine.Flush(ctx) }

// Close flushes and stops persistence. A closed session is no longer
// handed out by FromContext; its state is still readable but changes
// are not stored.
func (s *Session) Close(ctx context.Context) error {
	s.closed.Store(true)
	return s.engine.Close(ctx)
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool { return s.closed.Load() }

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx, or a NO_SESSION error
// when ctx carries none or its session was closed.
func FromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	if !ok || s == nil {
		return nil, noSession("FromContext")
	}
	if s.Closed() {
		return nil, &Error{
			Code:        ErrCodeNoSession,
			Message:     "session was closed",
			ComponentID: s.ComponentID(),
		}
	}
	return s, nil
}

// MustFromContext is like FromContext but panics without a session.
func MustFromContext(ctx context.Context) *Session {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
