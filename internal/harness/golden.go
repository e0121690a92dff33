package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/devstage/internal/engine"
)

// Snapshot is the golden form of a finished run.
type Snapshot struct {
	Scenario string       `json:"scenario"`
	State    engine.State `json:"state"`
	Code     string       `json:"code"`
}

// MarshalSnapshot renders r as indented JSON with HTML escaping off, so
// generated code stays readable in golden files.
func MarshalSnapshot(r *Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Snapshot{Scenario: r.Scenario, State: r.State, Code: r.Code}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden runs scenario, fails t on any step or assertion error,
// and compares the final snapshot with testdata/golden/<name>.golden.
//
// Regenerate with:
//
//	go test ./internal/harness -run <Test> -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...engine.Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	snap, err := MarshalSnapshot(result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snap)
	return result, nil
}
