package testutil

import (
	"github.com/roach88/devstage/internal/component"
	"github.com/roach88/devstage/internal/prop"
)

// ButtonConfig returns a fresh Button configuration with four default
// props in the order label, variant, size, disabled and one preset.
func ButtonConfig() *component.Config {
	defaults := prop.NewMap(
		prop.P("label", prop.String("Click me")),
		prop.P("variant", prop.String("primary")),
		prop.P("size", prop.String("medium")),
		prop.P("disabled", prop.Bool(false)),
	)
	return &component.Config{
		ID:       "button",
		Name:     "Button",
		Category: "inputs",
		Props: []component.PropDef{
			{Name: "label", Type: component.TypeString, DefaultValue: prop.String("Click me"), Required: true},
			{
				Name:         "variant",
				Type:         component.TypeSelect,
				DefaultValue: prop.String("primary"),
				Control: &component.Control{
					Kind:    component.ControlSelect,
					Options: prop.Array{prop.String("primary"), prop.String("secondary"), prop.String("outline")},
				},
			},
			{
				Name:         "size",
				Type:         component.TypeSelect,
				DefaultValue: prop.String("medium"),
				Control: &component.Control{
					Kind:    component.ControlSelect,
					Options: prop.Array{prop.String("small"), prop.String("medium"), prop.String("large")},
				},
			},
			{Name: "disabled", Type: component.TypeBoolean, DefaultValue: prop.Bool(false)},
		},
		DefaultProps: &defaults,
		Presets: []component.Preset{
			{
				ID:   "danger",
				Name: "Danger",
				Props: prop.NewMap(
					prop.P("label", prop.String("Delete")),
					prop.P("variant", prop.String("outline")),
				),
			},
		},
	}
}

// BareConfig returns a configuration with no props, defaults or presets.
func BareConfig(id string) *component.Config {
	return &component.Config{ID: id, Name: id}
}
