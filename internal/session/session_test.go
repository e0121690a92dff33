package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/devstage/internal/engine"
	"github.com/roach88/devstage/internal/eventlog"
	"github.com/roach88/devstage/internal/prop"
	"github.com/roach88/devstage/internal/share"
	"github.com/roach88/devstage/internal/store"
	"github.com/roach88/devstage/internal/testutil"
)

func testOptions(extra ...engine.Option) []engine.Option {
	return append([]engine.Option{
		engine.WithIDGenerator(eventlog.NewSequenceGenerator()),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, extra...)
}

func newButtonSession(t *testing.T, extra ...engine.Option) *Session {
	t.Helper()
	s, err := New(context.Background(), testutil.ButtonConfig(), testOptions(extra...)...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestNew_RequiresID(t *testing.T) {
	_, err := New(context.Background(), nil)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrCodeInvalidConfig, se.Code)

	_, err = New(context.Background(), testutil.BareConfig(""))
	assert.Error(t, err)
}

func TestCode_ButtonExample(t *testing.T) {
	s := newButtonSession(t)

	s.UpdateProp("variant", prop.String("outline"))

	assert.Equal(t, `<Button label="Click me" variant="outline" size="medium" disabled={false} />`, s.Code())
}

func TestSnippet_FollowsCodeView(t *testing.T) {
	s := newButtonSession(t)
	s.UpdateProps(prop.NewMap(prop.P("label", prop.String("Go"))))

	assert.Contains(t, s.Snippet(), `import { Button } from "./Button";`)
	assert.Contains(t, s.Snippet(), "ButtonExample(): JSX.Element {")

	s.SetCodeViewOption(engine.ShowImports(false))
	s.SetCodeViewOption(engine.Language(engine.LanguageJSX))

	assert.Equal(t, "export function ButtonExample() {\n  return (\n    <Button\n      label=\"Go\"\n    />\n  );\n}\n", s.Snippet())
}

func TestApplyPreset(t *testing.T) {
	s := newButtonSession(t)

	require.NoError(t, s.ApplyPreset("danger"))
	assert.Equal(t, []string{"label", "variant"}, s.Snapshot().Props.Keys(), "presets replace props wholesale")

	err := s.ApplyPreset("nope")
	assert.True(t, IsPresetNotFound(err))
	assert.Contains(t, err.Error(), "component=button")
}

func TestShare(t *testing.T) {
	s := newButtonSession(t)
	s.SetViewport(engine.ViewportTablet)

	enc, err := s.Share()
	require.NoError(t, err)
	dec, err := share.Decode(enc)
	require.NoError(t, err)

	assert.Equal(t, "button", dec.ComponentID)
	assert.Equal(t, engine.ViewportTablet, dec.Viewport)
	assert.True(t, s.Snapshot().Props.Equal(dec.Props))
}

func TestContext(t *testing.T) {
	s := newButtonSession(t)

	ctx := NewContext(context.Background(), s)
	got, err := FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Same(t, s, MustFromContext(ctx))
}

func TestContext_NoSessionFailsLoudly(t *testing.T) {
	_, err := FromContext(context.Background())
	require.Error(t, err)
	assert.True(t, IsNoSession(err))
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, fmt.Errorf("render controls: %w", err), ErrNoSession)

	_, err = FromContext(NewContext(context.Background(), nil))
	assert.True(t, IsNoSession(err))

	assert.Panics(t, func() { MustFromContext(context.Background()) })
}

func TestContext_ClosedSessionFailsLoudly(t *testing.T) {
	s := newButtonSession(t)
	ctx := NewContext(context.Background(), s)

	require.NoError(t, s.Close(context.Background()))
	assert.True(t, s.Closed())

	_, err := FromContext(ctx)
	require.Error(t, err)
	assert.True(t, IsNoSession(err))
	assert.Contains(t, err.Error(), "component=button")
	assert.Panics(t, func() { MustFromContext(ctx) })
}

func TestError_Is(t *testing.T) {
	preset := &Error{Code: ErrCodePresetNotFound}
	assert.False(t, errors.Is(preset, ErrNoSession))
	assert.False(t, IsNoSession(errors.New("other")))
}

func TestProvider_SameIDReusesSession(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(nil, testOptions()...)
	t.Cleanup(func() { p.Close(ctx) })

	s1, err := p.Bind(ctx, testutil.ButtonConfig(), nil)
	require.NoError(t, err)
	s1.UpdateProp("label", prop.String("Kept"))

	dark := engine.ThemeDark
	s2, err := p.Bind(ctx, testutil.ButtonConfig(), &engine.Partial{Theme: &dark})
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	label, _ := s2.Snapshot().Props.Get("label")
	assert.Equal(t, prop.String("Kept"), label)
	assert.Equal(t, engine.ThemeSystem, s2.Snapshot().Theme, "initial state ignored on rebind")
}

func TestProvider_NewIDStartsFresh(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(nil, testOptions()...)
	t.Cleanup(func() { p.Close(ctx) })

	button, err := p.Bind(ctx, testutil.ButtonConfig(), nil)
	require.NoError(t, err)
	button.UpdateProp("label", prop.String("Dirty"))
	button.TogglePanel(engine.PanelEvents)
	button.LogEvent(engine.EventInput{Type: engine.EventClick})
	button.SetTheme(engine.ThemeDark)
	button.SetViewport(engine.ViewportMobile)
	button.SetBackground(engine.BackgroundGrid)
	button.SetPanelSize(engine.SizeControls, 420)
	button.SetCodeViewOption(engine.Language(engine.LanguageJSX))
	button.SetCodeViewOption(engine.ShowImports(false))

	card, err := p.Bind(ctx, testutil.BareConfig("card"), nil)
	require.NoError(t, err)
	assert.NotSame(t, button, card)

	s := card.Snapshot()
	base := engine.Baseline()
	assert.Equal(t, "card", s.ComponentID)
	assert.Equal(t, 0, s.Props.Len())
	assert.Empty(t, s.Events)
	assert.Equal(t, base.Viewport, s.Viewport)
	assert.Equal(t, base.Theme, s.Theme)
	assert.Equal(t, base.Background, s.Background)
	assert.Equal(t, base.Panels, s.Panels)
	assert.Equal(t, base.PanelSizes, s.PanelSizes)
	assert.Equal(t, base.CodeView, s.CodeView)

	cur, err := p.Current()
	require.NoError(t, err)
	assert.Same(t, card, cur)

	assert.True(t, button.Closed(), "switching components closes the previous session")
	_, err = FromContext(NewContext(ctx, button))
	assert.True(t, IsNoSession(err))
}

func TestProvider_SwitchBackRestoresPersisted(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	p := NewProvider(nil, testOptions(engine.WithBackend(backend))...)
	t.Cleanup(func() { p.Close(ctx) })

	button, err := p.Bind(ctx, testutil.ButtonConfig(), nil)
	require.NoError(t, err)
	button.SetViewport(engine.ViewportMobile)
	button.TogglePanel(engine.PanelEvents)

	_, err = p.Bind(ctx, testutil.BareConfig("card"), nil)
	require.NoError(t, err)

	again, err := p.Bind(ctx, testutil.ButtonConfig(), nil)
	require.NoError(t, err)
	assert.NotSame(t, button, again)

	s := again.Snapshot()
	assert.Equal(t, engine.ViewportMobile, s.Viewport)
	assert.False(t, s.Panels.Events, "panels are not persisted")
}

func TestProvider_InitialState(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(nil, testOptions()...)
	t.Cleanup(func() { p.Close(ctx) })

	grid := engine.BackgroundGrid
	s, err := p.Bind(ctx, testutil.ButtonConfig(), &engine.Partial{Background: &grid})
	require.NoError(t, err)
	assert.Equal(t, engine.BackgroundGrid, s.Snapshot().Background)
}

func TestProvider_NoSession(t *testing.T) {
	p := NewProvider(nil)

	_, err := p.Current()
	assert.True(t, IsNoSession(err))

	_, err = p.Bind(context.Background(), nil, nil)
	assert.Error(t, err)
	assert.NoError(t, p.Close(context.Background()))
}
