package component

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/devstage/internal/prop"
)

// Error codes for configuration loading and validation.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeUnsupported = "E002" // Unsupported file extension
	ErrCodeNoFiles     = "E003" // No configuration files found
	ErrCodeParseFailed = "E004" // YAML/JSON parse failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeSchema      = "E101" // Schema violation
	ErrCodeDuplicate   = "E102" // Duplicate prop name, preset id or component id
)

// CUEField is the top-level CUE field that holds the configuration.
const CUEField = "component"

// LoadError describes a failure to load a configuration file.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Extensions lists the file extensions LoadFile understands.
var Extensions = []string{".yaml", ".yml", ".json", ".cue"}

// LoadFile reads a configuration from path, picking the decoder by extension.
func LoadFile(path string) (*Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(Extensions, ext) {
		return nil, &LoadError{Code: ErrCodeUnsupported, Path: path, Message: fmt.Sprintf("unsupported extension %q", ext)}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "file not found"}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Path: path, Message: err.Error()}
	}

	var cfg *Config
	switch ext {
	case ".yaml", ".yml":
		cfg, err = DecodeYAML(data)
	case ".json":
		cfg, err = DecodeJSON(data)
	case ".cue":
		cfg, err = DecodeCUE(data, path)
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			if le.Path == "" {
				le.Path = path
			}
			return nil, le
		}
		return nil, &LoadError{Code: ErrCodeParseFailed, Path: path, Message: err.Error()}
	}
	return cfg, nil
}

// LoadDir loads every configuration file directly inside dir, sorted by
// file name. Files that fail to load are reported and skipped.
func LoadDir(dir string) ([]*Config, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Path: dir, Message: err.Error()}}
	}

	var (
		configs []*Config
		errs    []error
	)
	for _, entry := range entries {
		if entry.IsDir() || !slices.Contains(Extensions, strings.ToLower(filepath.Ext(entry.Name()))) {
			continue
		}
		cfg, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		configs = append(configs, cfg)
	}

	if len(configs) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoFiles, Path: dir, Message: "no component files found"})
	}
	return configs, errs
}

// DecodeJSON decodes a configuration document. Unknown fields are rejected.
func DecodeJSON(data []byte) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("decode JSON: %v", err)}
	}
	return &cfg, nil
}

// DecodeYAML decodes a YAML configuration. Mapping order is kept, so
// defaultProps and preset props retain their authored order.
func DecodeYAML(data []byte) (*Config, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parse YAML: %v", err)}
	}
	v, err := prop.FromYAML(&node)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("convert YAML: %v", err)}
	}
	doc, err := prop.MarshalValue(v)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: err.Error()}
	}
	return DecodeJSON(doc)
}

// DecodeCUE evaluates CUE source and decodes the value found under the
// top-level "component" field. CUE exports struct fields in declaration
// order, so authored order survives the round trip through JSON.
func DecodeCUE(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}

	cv := v.LookupPath(cue.ParsePath(CUEField))
	if !cv.Exists() {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("missing top-level %q field", CUEField), Pos: v.Pos()}
	}
	if err := cv.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}

	doc, err := cv.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}
	return DecodeJSON(doc)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error, code string) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
