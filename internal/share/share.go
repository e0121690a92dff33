// Package share encodes a playground into a compact, URL-safe form and
// back.
//
// A Serialized value carries the component id, the props compressed
// with DEFLATE and base64url-encoded, and short codes for the viewport,
// theme and background. Selections equal to the baseline are omitted.
//
//	c=button&p=q1ZKzskszs...&t=d&v=m
package share

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/roach88/devstage/internal/engine"
	"github.com/roach88/devstage/internal/prop"
)

// MaxPropsSize bounds the decompressed props document.
const MaxPropsSize = 1 << 20

var (
	viewportCodes = map[engine.Viewport]string{
		engine.ViewportMobile:     "m",
		engine.ViewportTablet:     "t",
		engine.ViewportDesktop:    "d",
		engine.ViewportFullscreen: "f",
	}
	themeCodes = map[engine.Theme]string{
		engine.ThemeLight:  "l",
		engine.ThemeDark:   "d",
		engine.ThemeSystem: "s",
	}
	backgroundCodes = map[engine.Background]string{
		engine.BackgroundTransparent: "tr",
		engine.BackgroundWhite:       "w",
		engine.BackgroundBlack:       "bk",
		engine.BackgroundDots:        "do",
		engine.BackgroundGrid:        "g",
	}
)

// Serialized is the wire form of a shared playground.
type Serialized struct {
	C string `json:"c"`           // component id
	P string `json:"p"`           // compressed props
	V string `json:"v,omitempty"` // viewport code
	T string `json:"t,omitempty"` // theme code
	B string `json:"b,omitempty"` // background code
}

// Shared is a decoded playground.
type Shared struct {
	ComponentID string
	Props       prop.Map
	Viewport    engine.Viewport
	Theme       engine.Theme
	Background  engine.Background
}

// DecodeError reports a malformed Serialized field.
type DecodeError struct {
	Field  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("share: field %q: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("share: field %q: %s", e.Field, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FromState captures the shareable part of a snapshot.
func FromState(s engine.State) Shared {
	return Shared{
		ComponentID: s.ComponentID,
		Props:       s.Props.Clone(),
		Viewport:    s.Viewport,
		Theme:       s.Theme,
		Background:  s.Background,
	}
}

// Encode serializes the shareable part of a snapshot.
func Encode(s engine.State) (Serialized, error) {
	return FromState(s).Encode()
}

// Encode serializes sh.
func (sh Shared) Encode() (Serialized, error) {
	p, err := compressProps(sh.Props)
	if err != nil {
		return Serialized{}, err
	}

	base := engine.Baseline()
	out := Serialized{C: sh.ComponentID, P: p}
	if out.V, err = encodeCode(viewportCodes, sh.Viewport, base.Viewport, "v"); err != nil {
		return Serialized{}, err
	}
	if out.T, err = encodeCode(themeCodes, sh.Theme, base.Theme, "t"); err != nil {
		return Serialized{}, err
	}
	if out.B, err = encodeCode(backgroundCodes, sh.Background, base.Background, "b"); err != nil {
		return Serialized{}, err
	}
	return out, nil
}

func encodeCode[T ~string](codes map[T]string, v, baseline T, field string) (string, error) {
	if v == baseline {
		return "", nil
	}
	code, ok := codes[v]
	if !ok {
		return "", fmt.Errorf("share: field %q: no code for %q", field, v)
	}
	return code, nil
}

// Decode restores a Shared value. Omitted selections decode to the
// baseline.
func Decode(s Serialized) (Shared, error) {
	if s.C == "" {
		return Shared{}, &DecodeError{Field: "c", Reason: "missing component id"}
	}
	props, err := decompressProps(s.P)
	if err != nil {
		return Shared{}, err
	}

	base := engine.Baseline()
	out := Shared{
		ComponentID: s.C,
		Props:       props,
		Viewport:    base.Viewport,
		Theme:       base.Theme,
		Background:  base.Background,
	}
	if out.Viewport, err = lookupCode(viewportCodes, s.V, "v", base.Viewport); err != nil {
		return Shared{}, err
	}
	if out.Theme, err = lookupCode(themeCodes, s.T, "t", base.Theme); err != nil {
		return Shared{}, err
	}
	if out.Background, err = lookupCode(backgroundCodes, s.B, "b", base.Background); err != nil {
		return Shared{}, err
	}
	return out, nil
}

func lookupCode[T comparable](codes map[T]string, code, field string, fallback T) (T, error) {
	if code == "" {
		return fallback, nil
	}
	for v, c := range codes {
		if c == code {
			return v, nil
		}
	}
	var zero T
	return zero, &DecodeError{Field: field, Reason: fmt.Sprintf("unknown code %q", code)}
}

// Partial converts sh into an initial state for a new session.
func (sh Shared) Partial() engine.Partial {
	props := sh.Props.Clone()
	v, t, b := sh.Viewport, sh.Theme, sh.Background
	return engine.Partial{
		Props:      &props,
		Viewport:   &v,
		Theme:      &t,
		Background: &b,
	}
}

// Query returns s as URL query parameters.
func (s Serialized) Query() url.Values {
	q := url.Values{}
	q.Set("c", s.C)
	q.Set("p", s.P)
	for k, v := range map[string]string{"v": s.V, "t": s.T, "b": s.B} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// String returns s as an encoded query string.
func (s Serialized) String() string {
	return s.Query().Encode()
}

// ParseQuery reads a Serialized value from URL query parameters.
func ParseQuery(q url.Values) (Serialized, error) {
	s := Serialized{
		C: q.Get("c"),
		P: q.Get("p"),
		V: q.Get("v"),
		T: q.Get("t"),
		B: q.Get("b"),
	}
	if s.C == "" {
		return Serialized{}, &DecodeError{Field: "c", Reason: "missing component id"}
	}
	return s, nil
}

// Parse accepts either a bare query string or a full URL.
func Parse(raw string) (Serialized, error) {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return Serialized{}, &DecodeError{Field: "query", Reason: "malformed query", Err: err}
	}
	return ParseQuery(q)
}

func compressProps(props prop.Map) (string, error) {
	doc, err := props.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encode props: %w", err)
	}

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("compress props: %w", err)
	}
	if _, err := w.Write(doc); err != nil {
		return "", fmt.Errorf("compress props: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("compress props: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

func decompressProps(p string) (prop.Map, error) {
	if p == "" {
		return prop.Map{}, nil
	}
	compressed, err := base64.RawURLEncoding.DecodeString(p)
	if err != nil {
		return prop.Map{}, &DecodeError{Field: "p", Reason: "invalid base64", Err: err}
	}

	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	doc, err := io.ReadAll(io.LimitReader(r, MaxPropsSize+1))
	if err != nil {
		return prop.Map{}, &DecodeError{Field: "p", Reason: "invalid compressed data", Err: err}
	}
	if len(doc) > MaxPropsSize {
		return prop.Map{}, &DecodeError{Field: "p", Reason: fmt.Sprintf("props exceed %d bytes", MaxPropsSize)}
	}

	var props prop.Map
	if err := props.UnmarshalJSON(doc); err != nil {
		return prop.Map{}, &DecodeError{Field: "p", Reason: "invalid props document", Err: err}
	}
	return props, nil
}
