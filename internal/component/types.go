package component

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/devstage/internal/prop"
)

// PropType tags the kind of editor a property needs.
type PropType string

// Property types understood by the controls surface.
const (
	TypeString   PropType = "string"
	TypeNumber   PropType = "number"
	TypeBoolean  PropType = "boolean"
	TypeSelect   PropType = "select"
	TypeColor    PropType = "color"
	TypeDate     PropType = "date"
	TypeObject   PropType = "object"
	TypeArray    PropType = "array"
	TypeFunction PropType = "function"
	TypeNode     PropType = "node"
	TypeElement  PropType = "element"
)

// PropTypes lists every PropType in declaration order.
var PropTypes = []PropType{
	TypeString, TypeNumber, TypeBoolean, TypeSelect, TypeColor, TypeDate,
	TypeObject, TypeArray, TypeFunction, TypeNode, TypeElement,
}

// ControlKind selects the control variant of a Control.
type ControlKind string

// Control kinds.
const (
	ControlSelect ControlKind = "select"
	ControlRange  ControlKind = "range"
	ControlColor  ControlKind = "color"
	ControlText   ControlKind = "text"
	ControlJSON   ControlKind = "json"
)

// Control carries control-specific metadata. Which fields are meaningful
// depends on Kind:
//   - select: Options
//   - range:  Min, Max, Step
//   - color:  Format (hex, rgb or hsl)
//   - text:   Multiline
//   - json:   nothing
type Control struct {
	Kind      ControlKind `json:"type"`
	Options   prop.Array  `json:"options,omitempty"`
	Min       *float64    `json:"min,omitempty"`
	Max       *float64    `json:"max,omitempty"`
	Step      *float64    `json:"step,omitempty"`
	Format    string      `json:"format,omitempty"`
	Multiline bool        `json:"multiline,omitempty"`
}

// PropDef declares a single property for controls generation.
type PropDef struct {
	Name         string
	Type         PropType
	DefaultValue prop.Value // nil when not declared
	Description  string
	Required     bool
	Control      *Control
}

type propDefWire struct {
	Name         string          `json:"name"`
	Type         PropType        `json:"type"`
	DefaultValue json.RawMessage `json:"defaultValue,omitempty"`
	Description  string          `json:"description,omitempty"`
	Required     bool            `json:"required,omitempty"`
	Control      *Control        `json:"control,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d PropDef) MarshalJSON() ([]byte, error) {
	w := propDefWire{
		Name:        d.Name,
		Type:        d.Type,
		Description: d.Description,
		Required:    d.Required,
		Control:     d.Control,
	}
	if d.DefaultValue != nil {
		raw, err := prop.MarshalValue(d.DefaultValue)
		if err != nil {
			return nil, fmt.Errorf("prop %q default: %w", d.Name, err)
		}
		w.DefaultValue = raw
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *PropDef) UnmarshalJSON(data []byte) error {
	var w propDefWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = PropDef{
		Name:        w.Name,
		Type:        w.Type,
		Description: w.Description,
		Required:    w.Required,
		Control:     w.Control,
	}
	if len(w.DefaultValue) > 0 {
		v, err := prop.UnmarshalValue(w.DefaultValue)
		if err != nil {
			return fmt.Errorf("prop %q default: %w", w.Name, err)
		}
		d.DefaultValue = v
	}
	return nil
}

// Preset is a named, partial property-value mapping.
type Preset struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Props       prop.Map `json:"props"`
}

// Config is the declarative description of one inspectable component.
type Config struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Author      string   `json:"author,omitempty"`
	Version     string   `json:"version,omitempty"`

	// Component is an opaque handle to the renderable unit. Never
	// interpreted by this module.
	Component any `json:"-"`

	Props []PropDef `json:"props"`

	// DefaultProps is nil when the author declared no defaults.
	DefaultProps *prop.Map `json:"defaultProps,omitempty"`

	Presets []Preset `json:"presets,omitempty"`
}

// MarshalJSON implements json.Marshaler. A nil Props slice encodes as [].
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	if a.Props == nil {
		a.Props = []PropDef{}
	}
	return json.Marshal(a)
}

// DefaultPropsOrEmpty returns a copy of the declared defaults, or an empty
// Map when none were declared.
func (c *Config) DefaultPropsOrEmpty() prop.Map {
	if c == nil || c.DefaultProps == nil {
		return prop.Map{}
	}
	return c.DefaultProps.Clone()
}

// Prop returns the definition named name.
func (c *Config) Prop(name string) (PropDef, bool) {
	i := slices.IndexFunc(c.Props, func(d PropDef) bool { return d.Name == name })
	if i < 0 {
		return PropDef{}, false
	}
	return c.Props[i], true
}

// Preset returns the preset with the given id.
func (c *Config) Preset(id string) (Preset, bool) {
	i := slices.IndexFunc(c.Presets, func(p Preset) bool { return p.ID == id })
	if i < 0 {
		return Preset{}, false
	}
	return c.Presets[i], true
}

// Metadata is the registry view of a Config.
type Metadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Author      string    `json:"author,omitempty"`
	Version     string    `json:"version,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func metadataOf(c *Config, created, updated time.Time) Metadata {
	return Metadata{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Category:    c.Category,
		Tags:        slices.Clone(c.Tags),
		Author:      c.Author,
		Version:     c.Version,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}
