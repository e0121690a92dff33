package engine

import (
	"fmt"
	"strconv"
)

// CodeViewOption is a single-field update of CodeView, built with
// Language, ShowTypes or ShowImports.
type CodeViewOption interface {
	apply(CodeView) CodeView
	// Key returns the CodeView field name the option sets.
	Key() string
}

type languageOption CodeLanguage

func (o languageOption) apply(v CodeView) CodeView {
	v.Language = CodeLanguage(o)
	return v
}

func (languageOption) Key() string { return "language" }

type showTypesOption bool

func (o showTypesOption) apply(v CodeView) CodeView {
	v.ShowTypes = bool(o)
	return v
}

func (showTypesOption) Key() string { return "showTypes" }

type showImportsOption bool

func (o showImportsOption) apply(v CodeView) CodeView {
	v.ShowImports = bool(o)
	return v
}

func (showImportsOption) Key() string { return "showImports" }

// Language sets CodeView.Language.
func Language(l CodeLanguage) CodeViewOption { return languageOption(l) }

// ShowTypes sets CodeView.ShowTypes.
func ShowTypes(on bool) CodeViewOption { return showTypesOption(on) }

// ShowImports sets CodeView.ShowImports.
func ShowImports(on bool) CodeViewOption { return showImportsOption(on) }

// ParseCodeViewOption builds an option from a field name and a textual
// value, e.g. ("showTypes", "false").
func ParseCodeViewOption(key, value string) (CodeViewOption, error) {
	switch key {
	case "language":
		l, err := ParseLanguage(value)
		if err != nil {
			return nil, err
		}
		return Language(l), nil
	case "showTypes", "showImports":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a boolean", key, value)
		}
		if key == "showTypes" {
			return ShowTypes(on), nil
		}
		return ShowImports(on), nil
	}
	return nil, fmt.Errorf("unknown code view option %q (want language, showTypes or showImports)", key)
}
