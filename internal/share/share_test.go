package share

import (
	"encoding/base64"
	"net/url"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	gprop "github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/devstage/internal/engine"
	"github.com/roach88/devstage/internal/prop"
)

func buttonState() engine.State {
	s := engine.Baseline()
	s.ComponentID = "button"
	s.Props = prop.NewMap(
		prop.P("label", prop.String("Click me")),
		prop.P("variant", prop.String("outline")),
		prop.P("count", prop.Int(3)),
		prop.P("style", prop.NewMap(prop.P("z", prop.Float(1.5)), prop.P("a", prop.Null{}))),
	)
	s.Viewport = engine.ViewportMobile
	s.Theme = engine.ThemeDark
	return s
}

func TestRoundTrip(t *testing.T) {
	s := buttonState()

	enc, err := Encode(s)
	require.NoError(t, err)
	assert.Equal(t, "button", enc.C)
	assert.Equal(t, "m", enc.V)
	assert.Equal(t, "d", enc.T)
	assert.Empty(t, enc.B, "baseline background is omitted")

	dec, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, "button", dec.ComponentID)
	assert.True(t, s.Props.Equal(dec.Props), "props must round-trip in order")
	assert.Equal(t, engine.ViewportMobile, dec.Viewport)
	assert.Equal(t, engine.ThemeDark, dec.Theme)
	assert.Equal(t, engine.BackgroundTransparent, dec.Background)
}

func TestRoundTrip_ThroughURL(t *testing.T) {
	s := buttonState()
	s.Background = engine.BackgroundDots

	enc, err := Encode(s)
	require.NoError(t, err)

	link := "https://devstage.dev/playground?" + enc.String() + "#controls"
	parsed, err := Parse(link)
	require.NoError(t, err)
	assert.Equal(t, enc, parsed)

	dec, err := Decode(parsed)
	require.NoError(t, err)
	assert.Equal(t, engine.BackgroundDots, dec.Background)
}

func TestEncode_AllCodes(t *testing.T) {
	for v, code := range viewportCodes {
		s := engine.Baseline()
		s.ComponentID = "x"
		s.Viewport = v
		enc, err := Encode(s)
		require.NoError(t, err)
		if v == engine.ViewportDesktop {
			assert.Empty(t, enc.V)
			continue
		}
		assert.Equal(t, code, enc.V)

		dec, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, v, dec.Viewport)
	}
}

func TestEncode_UnknownSelection(t *testing.T) {
	s := engine.Baseline()
	s.ComponentID = "x"
	s.Theme = engine.Theme("sepia")

	_, err := Encode(s)
	assert.Error(t, err)
}

func TestDecode_ExplicitBaselineCodes(t *testing.T) {
	dec, err := Decode(Serialized{C: "x", V: "d", T: "s", B: "tr"})
	require.NoError(t, err)
	assert.Equal(t, engine.ViewportDesktop, dec.Viewport)
	assert.Equal(t, engine.ThemeSystem, dec.Theme)
	assert.Equal(t, engine.BackgroundTransparent, dec.Background)
	assert.Equal(t, 0, dec.Props.Len())
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		in    Serialized
		field string
	}{
		{"missing id", Serialized{P: ""}, "c"},
		{"bad base64", Serialized{C: "x", P: "!!!"}, "p"},
		{"not deflate", Serialized{C: "x", P: base64.RawURLEncoding.EncodeToString([]byte("plain"))}, "p"},
		{"unknown viewport", Serialized{C: "x", V: "z"}, "v"},
		{"unknown theme", Serialized{C: "x", T: "z"}, "t"},
		{"unknown background", Serialized{C: "x", B: "z"}, "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.in)
			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestDecode_PropsMustBeObject(t *testing.T) {
	p, err := compressProps(prop.Map{})
	require.NoError(t, err)
	_, err = Decode(Serialized{C: "x", P: p})
	require.NoError(t, err)

	arr := compressRaw(t, `[1,2]`)
	_, err = Decode(Serialized{C: "x", P: arr})
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "p", de.Field)
}

func TestParseQuery_MissingComponent(t *testing.T) {
	_, err := ParseQuery(url.Values{"p": {"abc"}})
	assert.Error(t, err)
}

func TestPartial(t *testing.T) {
	sh := Shared{
		ComponentID: "button",
		Props:       prop.NewMap(prop.P("a", prop.Int(1))),
		Viewport:    engine.ViewportTablet,
		Theme:       engine.ThemeLight,
		Background:  engine.BackgroundGrid,
	}

	p := sh.Partial()
	require.NotNil(t, p.Props)
	assert.Equal(t, []string{"a"}, p.Props.Keys())
	assert.Equal(t, engine.ViewportTablet, *p.Viewport)
	assert.Equal(t, engine.ThemeLight, *p.Theme)
	assert.Equal(t, engine.BackgroundGrid, *p.Background)
	assert.Nil(t, p.Panels)
	assert.Nil(t, p.CodeView)
}

// Property: decode(encode(props)) reproduces the props mapping.
func TestProperty_PropsRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("props survive share encoding", gprop.ForAll(
		func(keys []string, strs []string, nums []int64) bool {
			props := prop.Map{}
			for i, k := range keys {
				switch {
				case i < len(strs) && i%2 == 0:
					props.Set(k, prop.String(strs[i]))
				case i < len(nums):
					props.Set(k, prop.Int(nums[i]))
				default:
					props.Set(k, prop.Bool(i%3 == 0))
				}
			}
			s := engine.Baseline()
			s.ComponentID = "c"
			s.Props = props

			enc, err := Encode(s)
			if err != nil {
				return false
			}
			dec, err := Decode(enc)
			if err != nil {
				return false
			}
			return props.Equal(dec.Props)
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.Int64()),
	))

	properties.TestingRun(t)
}

func compressRaw(t *testing.T, doc string) string {
	t.Helper()
	v, err := prop.UnmarshalValue([]byte(doc))
	require.NoError(t, err)
	raw, err := prop.MarshalValue(v)
	require.NoError(t, err)
	return deflate(t, raw)
}
