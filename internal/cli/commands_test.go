package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/devstage/internal/config"
	"github.com/roach88/devstage/internal/engine"
	"github.com/roach88/devstage/internal/prop"
	"github.com/roach88/devstage/internal/share"
)

// newTestOptions returns options backed by a fresh SQLite database and
// the test components directory.
func newTestOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	return &RootOptions{
		Format: format,
		Config: config.Config{
			Backend:       config.BackendSQLite,
			DBPath:        filepath.Join(t.TempDir(), "state.db"),
			Format:        format,
			ComponentsDir: filepath.Join("testdata", "components"),
		},
	}
}

// execute runs the command built by newCmd and returns its stdout.
func execute(t *testing.T, opts *RootOptions, newCmd func(*RootOptions) *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newCmd(opts)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

type stateResponse struct {
	Status      string    `json:"status"`
	ComponentID string    `json:"component_id"`
	Data        stateView `json:"data"`
	Error       *CLIError `json:"error"`
}

func decodeState(t *testing.T, out string) stateResponse {
	t.Helper()
	var resp stateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestShow_Defaults(t *testing.T) {
	opts := newTestOptions(t, "json")

	out, err := execute(t, opts, NewShowCommand, "button")
	require.NoError(t, err)

	resp := decodeState(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "button", resp.ComponentID)
	assert.Equal(t, []string{"label", "variant", "size", "disabled"}, resp.Data.State.Props.Keys())
	assert.Equal(t, engine.ViewportDesktop, resp.Data.State.Viewport)
	assert.Equal(t, `<Button label="Click me" variant="primary" size="medium" disabled={false} />`, resp.Data.Code)
}

func TestShow_TextOutput(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, err := execute(t, opts, NewShowCommand, "button")
	require.NoError(t, err)
	assert.Contains(t, out, "Button (button)")
	assert.Contains(t, out, "desktop 1440x900")
	assert.Contains(t, out, `label    "Click me"`)
	assert.Contains(t, out, "disabled false")
}

func TestShow_ByFilePath(t *testing.T) {
	opts := newTestOptions(t, "json")
	opts.Config.ComponentsDir = t.TempDir()

	out, err := execute(t, opts, NewShowCommand, filepath.Join("testdata", "components", "card.json"))
	require.NoError(t, err)
	assert.Equal(t, "card", decodeState(t, out).ComponentID)
}

func TestShow_UnknownComponent(t *testing.T) {
	opts := newTestOptions(t, "json")

	out, err := execute(t, opts, NewShowCommand, "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsReported(err))

	resp := decodeState(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E005", resp.Error.Code)
}

func TestSet_PersistsAcrossCommands(t *testing.T) {
	opts := newTestOptions(t, "json")

	_, err := execute(t, opts, NewSetCommand, "button", "label", "Save")
	require.NoError(t, err)
	_, err = execute(t, opts, NewSetCommand, "button", "disabled", "true")
	require.NoError(t, err)

	out, err := execute(t, opts, NewShowCommand, "button")
	require.NoError(t, err)
	st := decodeState(t, out).Data.State

	label, _ := st.Props.Get("label")
	assert.Equal(t, prop.String("Save"), label)
	disabled, _ := st.Props.Get("disabled")
	assert.Equal(t, prop.Bool(true), disabled)
}

func TestSet_RawKeepsString(t *testing.T) {
	opts := newTestOptions(t, "json")

	out, err := execute(t, opts, NewSetCommand, "button", "label", "42", "--raw")
	require.NoError(t, err)
	label, _ := decodeState(t, out).Data.State.Props.Get("label")
	assert.Equal(t, prop.String("42"), label)

	out, err = execute(t, opts, NewSetCommand, "button", "label", "42")
	require.NoError(t, err)
	label, _ = decodeState(t, out).Data.State.Props.Get("label")
	assert.Equal(t, prop.Int(42), label)
}

func TestReplace(t *testing.T) {
	opts := newTestOptions(t, "json")

	out, err := execute(t, opts, NewReplaceCommand, "button", `{"variant":"secondary","label":"OK"}`)
	require.NoError(t, err)
	st := decodeState(t, out).Data.State
	assert.Equal(t, []string{"variant", "label"}, st.Props.Keys())
}

func TestReplace_RejectsNonObject(t *testing.T) {
	opts := newTestOptions(t, "json")

	out, err := execute(t, opts, NewReplaceCommand, "button", `[1,2]`)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decodeState(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUsage, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "got array")
}

func TestReset(t *testing.T) {
	opts := newTestOptions(t, "json")

	_, err := execute(t, opts, NewReplaceCommand, "button", `{}`)
	require.NoError(t, err)

	out, err := execute(t, opts, NewResetCommand, "button")
	require.NoError(t, err)
	assert.Equal(t, 4, decodeState(t, out).Data.State.Props.Len())
}

func TestPreset_Apply(t *testing.T) {
	opts := newTestOptions(t, "json")

	out, err := execute(t, opts, NewPresetCommand, "button", "danger")
	require.NoError(t, err)
	st := decodeState(t, out).Data.State
	assert.True(t, st.Props.Equal(prop.NewMap(
		prop.P("label", prop.String("Delete")),
		prop.P("variant", prop.String("outline")),
	)))
}

func TestPreset_NotFound(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, err := execute(t, opts, NewPresetCommand, "button", "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [PRESET_NOT_FOUND]")
}

func TestPreset_List(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, err := execute(t, opts, NewPresetCommand, "button")
	require.NoError(t, err)
	assert.Contains(t, out, "danger\tDanger\t")

	out, err = execute(t, opts, NewPresetCommand, "card")
	require.NoError(t, err)
	assert.Contains(t, out, "Card declares no presets.")
}

func TestView(t *testing.T) {
	opts := newTestOptions(t, "json")

	_, err := execute(t, opts, NewViewCommand, "button", "--viewport", "mobile", "--theme", "dark")
	require.NoError(t, err)

	out, err := execute(t, opts, NewShowCommand, "button")
	require.NoError(t, err)
	st := decodeState(t, out).Data.State
	assert.Equal(t, engine.ViewportMobile, st.Viewport)
	assert.Equal(t, engine.ThemeDark, st.Theme)
	assert.Equal(t, engine.BackgroundTransparent, st.Background)
}

func TestView_InvalidValue(t *testing.T) {
	opts := newTestOptions(t, "json")

	out, err := execute(t, opts, NewViewCommand, "button", "--background", "plaid")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decodeState(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUsage, resp.Error.Code)
}

func TestCode_CallSite(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, err := execute(t, opts, NewCodeCommand, "button")
	require.NoError(t, err)
	assert.Equal(t, `<Button label="Click me" variant="primary" size="medium" disabled={false} />`+"\n", out)
}

func TestCode_SnippetOptionsPersist(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, err := execute(t, opts, NewCodeCommand, "button", "--snippet", "--language", "jsx", "--imports=false")
	require.NoError(t, err)
	assert.NotContains(t, out, "import")
	assert.NotContains(t, out, "JSX.Element")
	assert.Contains(t, out, "export function ButtonExample()")

	opts.Format = "json"
	out, err = execute(t, opts, NewCodeCommand, "button")
	require.NoError(t, err)
	var resp struct {
		Data codeView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, engine.LanguageJSX, resp.Data.Options.Language)
	assert.False(t, resp.Data.Options.ShowImports)
	assert.True(t, resp.Data.Options.ShowTypes)
}

func TestCode_InvalidLanguage(t *testing.T) {
	opts := newTestOptions(t, "text")

	_, err := execute(t, opts, NewCodeCommand, "button", "--language", "coffee")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestEvent(t *testing.T) {
	opts := newTestOptions(t, "json")

	out, err := execute(t, opts, NewEventCommand, "button", "click", "--target", "submit", "--data", `{"x":10}`)
	require.NoError(t, err)

	var resp struct {
		Data engine.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, engine.EventClick, resp.Data.Type)
	assert.Equal(t, "submit", resp.Data.Target)
	assert.True(t, strings.HasPrefix(resp.Data.ID, "evt_"))
	x, _ := resp.Data.Data.Get("x")
	assert.Equal(t, prop.Int(10), x)
}

func TestEvent_InvalidType(t *testing.T) {
	opts := newTestOptions(t, "text")

	_, err := execute(t, opts, NewEventCommand, "button", "scroll")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestShareAndOpen_RoundTrip(t *testing.T) {
	src := newTestOptions(t, "text")
	_, err := execute(t, src, NewSetCommand, "button", "label", "Shared")
	require.NoError(t, err)
	_, err = execute(t, src, NewViewCommand, "button", "--viewport", "tablet", "--background", "grid")
	require.NoError(t, err)

	link, err := execute(t, src, NewShareCommand, "button", "--base", "https://play.example.com/")
	require.NoError(t, err)
	link = strings.TrimSpace(link)
	assert.True(t, strings.HasPrefix(link, "https://play.example.com/?"), link)
	ser, err := share.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "button", ser.C)
	assert.Empty(t, ser.T, "baseline theme is omitted")

	dst := newTestOptions(t, "json")
	out, err := execute(t, dst, NewOpenCommand, link)
	require.NoError(t, err)
	st := decodeState(t, out).Data.State
	label, _ := st.Props.Get("label")
	assert.Equal(t, prop.String("Shared"), label)
	assert.Equal(t, engine.ViewportTablet, st.Viewport)
	assert.Equal(t, engine.BackgroundGrid, st.Background)
	assert.Equal(t, engine.ThemeSystem, st.Theme)

	// open persisted the shared state
	out, err = execute(t, dst, NewShowCommand, "button")
	require.NoError(t, err)
	assert.Equal(t, engine.ViewportTablet, decodeState(t, out).Data.State.Viewport)
}

func TestOpen_MalformedLink(t *testing.T) {
	opts := newTestOptions(t, "json")

	out, err := execute(t, opts, NewOpenCommand, "c=button&p=***")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decodeState(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeShare, resp.Error.Code)
}

func TestShareLink(t *testing.T) {
	ser := share.Serialized{C: "b", P: "x"}
	assert.Equal(t, "https://x/?a=1&c=b&p=x", shareLink("https://x/?a=1", ser))
	assert.Equal(t, "https://x/?c=b&p=x", shareLink("https://x/", ser))
	assert.Equal(t, "c=b&p=x", shareLink("", ser))
}

func TestList(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, err := execute(t, opts, NewListCommand)
	require.NoError(t, err)
	assert.Contains(t, out, "button\tButton\t[inputs]\taction,form")
	assert.Contains(t, out, "card\tCard\t[layout]")
}

func TestList_MissingDirectory(t *testing.T) {
	opts := newTestOptions(t, "text")
	opts.Config.ComponentsDir = filepath.Join(t.TempDir(), "nope")

	_, err := execute(t, opts, NewListCommand)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSessions(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, err := execute(t, opts, NewSessionsCommand)
	require.NoError(t, err)
	assert.Contains(t, out, "No stored playgrounds.")

	_, err = execute(t, opts, NewSetCommand, "button", "label", "Hi")
	require.NoError(t, err)

	out, err = execute(t, opts, NewSessionsCommand)
	require.NoError(t, err)
	assert.Contains(t, out, "button\tupdated ")

	opts.Format = "json"
	out, err = execute(t, opts, NewSessionsCommand)
	require.NoError(t, err)
	var resp struct {
		Data []SessionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "button", resp.Data[0].ComponentID)
	assert.Equal(t, engine.PersistKey("button"), resp.Data[0].Key)
	assert.NotNil(t, resp.Data[0].UpdatedAt)
}

func TestValidate_ValidDirectory(t *testing.T) {
	opts := newTestOptions(t, "text")

	out, err := execute(t, opts, NewValidateCommand)
	require.NoError(t, err)
	assert.Contains(t, out, "(button)")
	assert.Contains(t, out, "(card)")
	assert.Contains(t, out, "2 of 2 configuration(s) valid")
}

func TestValidate_Failures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"id":"x","name":"X","props":[]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{"id":"x","name":"Again","props":[]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.yaml"), []byte("id: [unclosed"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "d.json"), []byte(`{"id":"d","name":"D","props":[{"name":"p","type":"select"}]}`), 0644))

	opts := newTestOptions(t, "json")
	out, err := execute(t, opts, NewValidateCommand, dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Files, 4)

	assert.True(t, resp.Data.Files[0].Valid)
	assert.False(t, resp.Data.Files[1].Valid)
	assert.Equal(t, "E102", resp.Data.Files[1].Errors[0].Code)
	assert.False(t, resp.Data.Files[2].Valid)
	assert.Equal(t, "E004", resp.Data.Files[2].Errors[0].Code)
	assert.False(t, resp.Data.Files[3].Valid)
	assert.Equal(t, "E101", resp.Data.Files[3].Errors[0].Code)
}

func TestValidate_MissingPath(t *testing.T) {
	opts := newTestOptions(t, "text")

	_, err := execute(t, opts, NewValidateCommand, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
