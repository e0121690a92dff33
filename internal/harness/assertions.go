package harness

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/roach88/devstage/internal/engine"
	"github.com/roach88/devstage/internal/prop"
)

// evaluate checks one assertion against a finished run.
func evaluate(a Assertion, r *Result) error {
	switch a.Type {
	case AssertProps:
		want, err := expectValue(a)
		if err != nil {
			return err
		}
		wantMap, ok := want.(prop.Map)
		if !ok {
			return fmt.Errorf("expect must be a mapping, got %s", prop.Kind(want))
		}
		if !r.State.Props.Equal(wantMap) {
			return mismatch(prop.JSONText(wantMap), prop.JSONText(r.State.Props))
		}

	case AssertProp:
		want, err := expectValue(a)
		if err != nil {
			return err
		}
		got, ok := r.State.Props.Get(a.Name)
		if !ok {
			return fmt.Errorf("prop %q is not set", a.Name)
		}
		if !prop.Equal(got, want) {
			return mismatch(prop.JSONText(want), prop.JSONText(got))
		}

	case AssertViewport:
		return compareText(a.Expect.Value, string(r.State.Viewport))
	case AssertTheme:
		return compareText(a.Expect.Value, string(r.State.Theme))
	case AssertBackground:
		return compareText(a.Expect.Value, string(r.State.Background))

	case AssertPanel:
		panel, err := engine.ParsePanel(a.Name)
		if err != nil {
			return err
		}
		var want bool
		if err := a.Expect.Decode(&want); err != nil {
			return fmt.Errorf("expect must be a boolean: %w", err)
		}
		if got := r.State.Panels.Visible(panel); got != want {
			return mismatch(fmt.Sprint(want), fmt.Sprint(got))
		}

	case AssertEvents:
		if got := len(r.State.Events); got != *a.Count {
			return mismatch(fmt.Sprintf("%d events", *a.Count), fmt.Sprintf("%d events", got))
		}

	case AssertCode:
		return compareText(a.Expect.Value, r.Code)
	case AssertSnippet:
		return compareText(a.Expect.Value, r.Snippet)

	case AssertPath:
		return assertPath(a, r.State)

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// assertPath resolves a gjson path against the JSON form of the state
// and compares the match with the expected value.
func assertPath(a Assertion, s engine.State) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	res := gjson.GetBytes(doc, a.Path)
	if !res.Exists() {
		return fmt.Errorf("path %q matched nothing", a.Path)
	}
	got, err := prop.UnmarshalValue([]byte(res.Raw))
	if err != nil {
		return fmt.Errorf("path %q: %w", a.Path, err)
	}
	want, err := expectValue(a)
	if err != nil {
		return err
	}
	if !prop.Equal(got, want) {
		return mismatch(prop.JSONText(want), res.Raw)
	}
	return nil
}

func expectValue(a Assertion) (prop.Value, error) {
	v, err := prop.FromYAML(&a.Expect)
	if err != nil {
		return nil, fmt.Errorf("expect: %w", err)
	}
	return v, nil
}

func compareText(want, got string) error {
	if want != got {
		return mismatch(fmt.Sprintf("%q", want), fmt.Sprintf("%q", got))
	}
	return nil
}

func mismatch(want, got string) error {
	return fmt.Errorf("expected %s, got %s", want, got)
}
