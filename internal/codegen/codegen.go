// Package codegen renders playground props as component source code.
//
// CallSite produces the one-line usage shown in the code panel. Snippet
// wraps it in a small example module shaped by the code view options.
// Both are pure functions of their inputs.
package codegen

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/devstage/internal/prop"
)

// CallSite renders `<Name attr attr ... />` in props order:
//   - strings as name="value"
//   - numbers as name={n}
//   - true as a bare name, false as name={false}
//   - anything else as name={<JSON>}
//
// With no props the output keeps both separating spaces: "<Name  />".
func CallSite(name string, props prop.Map) string {
	attrs := make([]string, 0, props.Len())
	for k, v := range props.All() {
		attrs = append(attrs, Attribute(k, v))
	}
	return "<" + name + " " + strings.Join(attrs, " ") + " />"
}

// Attribute renders a single prop as a JSX attribute.
func Attribute(key string, v prop.Value) string {
	switch v := v.(type) {
	case prop.String:
		return key + `="` + string(v) + `"`
	case prop.Int:
		return key + "={" + prop.JSONText(v) + "}"
	case prop.Float:
		return key + "={" + numberLiteral(float64(v)) + "}"
	case prop.Bool:
		if v {
			return key
		}
		return key + "={false}"
	}
	return key + "={" + prop.JSONText(v) + "}"
}

// numberLiteral renders f as a JavaScript number expression. Non-finite
// values have no JSON form, so they use the global identifiers.
func numberLiteral(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return prop.JSONText(prop.Float(f))
}

// Language is the dialect of a snippet.
type Language string

const (
	TSX Language = "tsx"
	JSX Language = "jsx"
)

// Options shapes a snippet.
type Options struct {
	Language    Language
	ShowTypes   bool
	ShowImports bool
}

// Snippet renders a complete example module for the component:
//
//	import { Button } from "./Button";
//
//	export function ButtonExample(): JSX.Element {
//	  return <Button label="Click me" />;
//	}
//
// The import line is present only with ShowImports, and the return type
// only for TSX with ShowTypes. The output ends with a newline.
func Snippet(name string, props prop.Map, opts Options) string {
	ident := Identifier(name)

	var b strings.Builder
	if opts.ShowImports {
		b.WriteString(`import { ` + ident + ` } from "./` + ident + `";` + "\n\n")
	}

	b.WriteString("export function " + ident + "Example()")
	if opts.Language == TSX && opts.ShowTypes {
		b.WriteString(": JSX.Element")
	}
	b.WriteString(" {\n")

	if props.Len() == 0 {
		b.WriteString("  return <" + ident + " />;\n")
	} else {
		b.WriteString("  return (\n")
		b.WriteString("    <" + ident + "\n")
		for k, v := range props.All() {
			b.WriteString("      " + Attribute(k, v) + "\n")
		}
		b.WriteString("    />\n")
		b.WriteString("  );\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// Identifier derives a PascalCase component identifier from a display
// name: "status badge" becomes "StatusBadge". Names that would start
// with a digit get a "Component" prefix; an empty result is "Component".
func Identifier(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	// Casers are stateful; one per call.
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(title.String(w))
	}

	ident := b.String()
	if ident == "" {
		return "Component"
	}
	if unicode.IsDigit([]rune(ident)[0]) {
		return "Component" + ident
	}
	return ident
}
