package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/devstage/internal/component"
)

// FileResult is the validation outcome of one configuration file.
type FileResult struct {
	Path   string     `json:"path"`
	ID     string     `json:"id,omitempty"`
	Valid  bool       `json:"valid"`
	Errors []CLIError `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool         `json:"valid"`
	Files []FileResult `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate component configurations",
		Long: `Validate component configuration files (YAML, JSON or CUE) against the
configuration schema.

[path] is a file or a directory; it defaults to the components
directory. Component ids must be unique across a directory.

Exit codes:
  0 - All configurations valid
  1 - One or more configurations invalid
  2 - Command error (path not found, etc.)`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config.ComponentsDir
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	files, err := configFiles(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrorCode(err), err)
	}
	f.VerboseLog("Found %d configuration file(s) in %s", len(files), path)

	result := ValidationResult{Valid: true, Files: make([]FileResult, 0, len(files))}
	reg := component.NewRegistry()
	for _, file := range files {
		fr := validateFile(file, reg)
		if !fr.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fr)
	}

	if f.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: component.ErrCodeSchema, Message: "validation failed"}
		}
		if err := f.encode(resp); err != nil {
			return err
		}
	} else {
		writeValidation(f.Writer, result)
	}

	if !result.Valid {
		return &ExitError{Code: ExitFailure, Message: "validation failed", Reported: true}
	}
	return nil
}

// configFiles lists the configuration files at path: path itself when it
// is a file, else its direct children with a known extension.
func configFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &component.LoadError{Code: component.ErrCodeNotFound, Path: path, Message: "path not found"}
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, &component.LoadError{Code: component.ErrCodeGeneric, Path: path, Message: err.Error()}
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(component.Extensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	if len(files) == 0 {
		return nil, &component.LoadError{Code: component.ErrCodeNoFiles, Path: path, Message: "no component files found"}
	}
	sort.Strings(files)
	return files, nil
}

func validateFile(path string, reg *component.Registry) FileResult {
	fr := FileResult{Path: path}

	cfg, err := component.LoadFile(path)
	if err != nil {
		fr.Errors = []CLIError{loadFailure(err)}
		return fr
	}
	fr.ID = cfg.ID

	if err := component.Validate(cfg); err != nil {
		var ve *component.ValidationError
		if errors.As(err, &ve) {
			for _, v := range ve.Violations {
				p := v.Path
				if p == "" {
					p = "/"
				}
				fr.Errors = append(fr.Errors, CLIError{Code: component.ErrCodeSchema, Message: p + ": " + v.Message})
			}
		} else {
			fr.Errors = []CLIError{loadFailure(err)}
		}
		return fr
	}

	if err := reg.Register(cfg); err != nil {
		fr.Errors = []CLIError{loadFailure(err)}
		return fr
	}
	fr.Valid = true
	return fr
}

// loadFailure converts a load or registration error to a CLIError whose
// message does not repeat the code or path.
func loadFailure(err error) CLIError {
	var le *component.LoadError
	if errors.As(err, &le) {
		msg := le.Message
		if le.Pos.IsValid() {
			msg = fmt.Sprintf("line %d:%d: %s", le.Pos.Line(), le.Pos.Column(), msg)
		}
		return CLIError{Code: le.Code, Message: msg}
	}
	return CLIError{Code: ErrorCode(err), Message: err.Error()}
}

func writeValidation(w io.Writer, result ValidationResult) {
	valid := 0
	for _, fr := range result.Files {
		if fr.Valid {
			valid++
			fmt.Fprintf(w, "✓ %s (%s)\n", fr.Path, fr.ID)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", fr.Path)
		for _, e := range fr.Errors {
			fmt.Fprintf(w, "  %s: %s\n", e.Code, e.Message)
		}
	}
	fmt.Fprintf(w, "\n%d of %d configuration(s) valid\n", valid, len(result.Files))
}
