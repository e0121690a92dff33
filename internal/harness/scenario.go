package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/devstage/internal/engine"
	"github.com/roach88/devstage/internal/prop"
)

// Scenario is one playground session script.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Component is the configuration file to load. Relative paths are
	// resolved against the scenario file's directory by LoadScenario.
	Component string `yaml:"component"`

	// Initial overrides the starting state before any step runs.
	Initial *Initial `yaml:"initial,omitempty"`

	Steps []Step `yaml:"steps"`

	Assertions []Assertion `yaml:"assertions"`
}

// Initial is the YAML form of engine.Partial.
type Initial struct {
	Props      *prop.Map      `yaml:"props,omitempty"`
	Viewport   string         `yaml:"viewport,omitempty"`
	Theme      string         `yaml:"theme,omitempty"`
	Background string         `yaml:"background,omitempty"`
	Panels     *engine.Panels `yaml:"panels,omitempty"`
}

// Step operations.
const (
	OpSet         = "set"
	OpReplace     = "replace"
	OpReset       = "reset"
	OpPreset      = "preset"
	OpViewport    = "viewport"
	OpTheme       = "theme"
	OpBackground  = "background"
	OpToggle      = "toggle"
	OpSize        = "size"
	OpEvent       = "event"
	OpClearEvents = "clear_events"
	OpCodeOption  = "code_option"
)

// Step is a single engine operation. Which fields are read depends on Op:
//
//	set          name, value
//	replace      props
//	reset        -
//	preset       name (preset id)
//	viewport     value
//	theme        value
//	background   value
//	toggle       name (panel)
//	size         name (pane), value
//	event        type, target, data
//	clear_events -
//	code_option  name (language, showTypes, showImports), value
type Step struct {
	Op     string    `yaml:"op"`
	Name   string    `yaml:"name,omitempty"`
	Value  yaml.Node `yaml:"value,omitempty"`
	Props  *prop.Map `yaml:"props,omitempty"`
	Type   string    `yaml:"type,omitempty"`
	Target string    `yaml:"target,omitempty"`
	Data   *prop.Map `yaml:"data,omitempty"`
}

// Assertion types.
const (
	AssertProps      = "props"
	AssertProp       = "prop"
	AssertViewport   = "viewport"
	AssertTheme      = "theme"
	AssertBackground = "background"
	AssertPanel      = "panel"
	AssertEvents     = "events"
	AssertCode       = "code"
	AssertSnippet    = "snippet"
	AssertPath       = "path"
)

// Assertion checks the final state.
//
//	props       expect: exact props mapping, order included
//	prop        name, expect
//	viewport    expect
//	theme       expect
//	background  expect
//	panel       name, expect (bool)
//	events      count
//	code        expect: call site text
//	snippet     expect: example module text
//	path        path (gjson syntax over the state JSON), expect
type Assertion struct {
	Type   string    `yaml:"type"`
	Name   string    `yaml:"name,omitempty"`
	Path   string    `yaml:"path,omitempty"`
	Expect yaml.Node `yaml:"expect,omitempty"`
	Count  *int      `yaml:"count,omitempty"`
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if s.Component != "" && !filepath.IsAbs(s.Component) {
		s.Component = filepath.Join(filepath.Dir(path), s.Component)
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML. Component paths are
// left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, sorted by file
// name. Files that fail to load are reported together.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var (
		out  []*Scenario
		errs []error
	)
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		out = append(out, s)
	}
	return out, errors.Join(errs...)
}

// Validate checks required fields and that every step and assertion is
// well formed.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Component == "" {
		return fmt.Errorf("component is required")
	}
	if _, err := s.Initial.partial(); err != nil {
		return fmt.Errorf("initial: %w", err)
	}
	for i, step := range s.Steps {
		if _, err := step.action(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	for i, a := range s.Assertions {
		if err := a.validate(); err != nil {
			return fmt.Errorf("assertion %d: %w", i+1, err)
		}
	}
	return nil
}

// partial converts the YAML initial state. A nil receiver yields nil.
func (in *Initial) partial() (*engine.Partial, error) {
	if in == nil {
		return nil, nil
	}

	p := &engine.Partial{Props: in.Props, Panels: in.Panels}
	if in.Viewport != "" {
		v, err := engine.ParseViewport(in.Viewport)
		if err != nil {
			return nil, err
		}
		p.Viewport = &v
	}
	if in.Theme != "" {
		t, err := engine.ParseTheme(in.Theme)
		if err != nil {
			return nil, err
		}
		p.Theme = &t
	}
	if in.Background != "" {
		b, err := engine.ParseBackground(in.Background)
		if err != nil {
			return nil, err
		}
		p.Background = &b
	}
	return p, nil
}

// playground is the subset of session.Session a step drives.
type playground interface {
	UpdateProp(name string, value prop.Value)
	UpdateProps(props prop.Map)
	ResetProps()
	ApplyPreset(id string) error
	SetViewport(v engine.Viewport)
	SetTheme(t engine.Theme)
	SetBackground(b engine.Background)
	TogglePanel(p engine.Panel)
	SetPanelSize(key engine.PanelSizeKey, size float64)
	LogEvent(in engine.EventInput) engine.Event
	ClearEvents()
	SetCodeViewOption(opt engine.CodeViewOption)
}

// action parses the step into a function over a playground. Parsing
// happens once at load time so malformed steps fail before anything runs.
func (st Step) action() (func(playground) error, error) {
	switch st.Op {
	case OpSet:
		if st.Name == "" {
			return nil, fmt.Errorf("%s: name is required", st.Op)
		}
		if st.Value.Kind == 0 {
			return nil, fmt.Errorf("%s: value is required", st.Op)
		}
		v, err := prop.FromYAML(&st.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.Op, err)
		}
		return func(p playground) error { p.UpdateProp(st.Name, v); return nil }, nil

	case OpReplace:
		if st.Props == nil {
			return nil, fmt.Errorf("%s: props is required", st.Op)
		}
		props := st.Props.Clone()
		return func(p playground) error { p.UpdateProps(props); return nil }, nil

	case OpReset:
		return func(p playground) error { p.ResetProps(); return nil }, nil

	case OpPreset:
		if st.Name == "" {
			return nil, fmt.Errorf("%s: name is required", st.Op)
		}
		return func(p playground) error { return p.ApplyPreset(st.Name) }, nil

	case OpViewport:
		v, err := engine.ParseViewport(st.Value.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.Op, err)
		}
		return func(p playground) error { p.SetViewport(v); return nil }, nil

	case OpTheme:
		t, err := engine.ParseTheme(st.Value.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.Op, err)
		}
		return func(p playground) error { p.SetTheme(t); return nil }, nil

	case OpBackground:
		b, err := engine.ParseBackground(st.Value.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.Op, err)
		}
		return func(p playground) error { p.SetBackground(b); return nil }, nil

	case OpToggle:
		panel, err := engine.ParsePanel(st.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.Op, err)
		}
		return func(p playground) error { p.TogglePanel(panel); return nil }, nil

	case OpSize:
		key, err := engine.ParsePanelSizeKey(st.Name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.Op, err)
		}
		size, err := strconv.ParseFloat(st.Value.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: value %q is not a number", st.Op, st.Value.Value)
		}
		return func(p playground) error { p.SetPanelSize(key, size); return nil }, nil

	case OpEvent:
		typ, err := engine.ParseEventType(st.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.Op, err)
		}
		in := engine.EventInput{Type: typ, Target: st.Target}
		if st.Data != nil {
			in.Data = st.Data.Clone()
		}
		return func(p playground) error { p.LogEvent(in); return nil }, nil

	case OpClearEvents:
		return func(p playground) error { p.ClearEvents(); return nil }, nil

	case OpCodeOption:
		opt, err := engine.ParseCodeViewOption(st.Name, st.Value.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", st.Op, err)
		}
		return func(p playground) error { p.SetCodeViewOption(opt); return nil }, nil

	case "":
		return nil, fmt.Errorf("op is required")
	}
	return nil, fmt.Errorf("unknown op %q", st.Op)
}

func (a Assertion) validate() error {
	switch a.Type {
	case AssertProps, AssertViewport, AssertTheme, AssertBackground, AssertCode, AssertSnippet:
		if a.Expect.Kind == 0 {
			return fmt.Errorf("%s: expect is required", a.Type)
		}
	case AssertProp, AssertPanel:
		if a.Name == "" {
			return fmt.Errorf("%s: name is required", a.Type)
		}
		if a.Expect.Kind == 0 {
			return fmt.Errorf("%s: expect is required", a.Type)
		}
	case AssertEvents:
		if a.Count == nil {
			return fmt.Errorf("%s: count is required", a.Type)
		}
	case AssertPath:
		if a.Path == "" {
			return fmt.Errorf("%s: path is required", a.Type)
		}
		if a.Expect.Kind == 0 {
			return fmt.Errorf("%s: expect is required", a.Type)
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
