package component

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed component.schema.json
var schemaJSON []byte

const schemaURL = "https://devstage.dev/schema/component.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func componentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add component schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// Violation is a single validation failure. Path is a JSON pointer into
// the configuration document.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports every violation found in a configuration.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		v := e.Violations[0]
		return fmt.Sprintf("%s: %s: %s", ErrCodeSchema, pathOrRoot(v.Path), v.Message)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d violations", ErrCodeSchema, len(e.Violations))
	for _, v := range e.Violations {
		fmt.Fprintf(&b, "\n  %s: %s", pathOrRoot(v.Path), v.Message)
	}
	return b.String()
}

func pathOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// Validate checks cfg against the configuration schema and the rules the
// schema cannot express (unique prop names and preset ids).
func Validate(cfg *Config) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return ValidateDocument(doc)
}

// ValidateDocument validates a raw JSON configuration document.
func ValidateDocument(doc []byte) error {
	sch, err := componentSchema()
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("decode JSON: %v", err)}
	}

	var violations []Violation
	if err := sch.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("validate config: %w", err)
		}
		violations = append(violations, schemaViolations(ve)...)
	}
	violations = append(violations, uniquenessViolations(inst)...)

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// schemaViolations flattens the validator's basic output, keeping only
// leaf errors that carry a message.
func schemaViolations(ve *jsonschema.ValidationError) []Violation {
	var out []Violation
	for _, unit := range ve.BasicOutput().Errors {
		if unit.Error == "" || isWrapperMessage(unit.Error) {
			continue
		}
		out = append(out, Violation{Path: unit.InstanceLocation, Message: unit.Error})
	}
	if len(out) == 0 {
		out = append(out, Violation{Path: ve.InstanceLocation, Message: ve.Message})
	}
	return out
}

func isWrapperMessage(msg string) bool {
	switch msg {
	case "if-then failed", "if-else failed", "allOf failed", "anyOf failed", "oneOf failed":
		return true
	}
	return strings.HasPrefix(msg, "doesn't validate with")
}

func uniquenessViolations(inst any) []Violation {
	root, ok := inst.(map[string]any)
	if !ok {
		return nil
	}
	var out []Violation
	out = append(out, duplicates(root["props"], "props", "name")...)
	out = append(out, duplicates(root["presets"], "presets", "id")...)
	return out
}

func duplicates(list any, field, key string) []Violation {
	items, ok := list.([]any)
	if !ok {
		return nil
	}
	seen := make(map[string]int, len(items))
	var out []Violation
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		k, ok := obj[key].(string)
		if !ok {
			continue
		}
		if first, dup := seen[k]; dup {
			out = append(out, Violation{
				Path:    fmt.Sprintf("/%s/%d/%s", field, i, key),
				Message: fmt.Sprintf("%s %q duplicates /%s/%d", key, k, field, first),
			})
			continue
		}
		seen[k] = i
	}
	return out
}
