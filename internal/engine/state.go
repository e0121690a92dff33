package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/devstage/internal/prop"
)

// MaxEvents caps the event log. Logging beyond the cap drops the oldest.
const MaxEvents = 100

// Viewport selects the simulated device frame.
type Viewport string

const (
	ViewportMobile     Viewport = "mobile"
	ViewportTablet     Viewport = "tablet"
	ViewportDesktop    Viewport = "desktop"
	ViewportFullscreen Viewport = "fullscreen"
)

// Viewports lists every Viewport in display order.
var Viewports = []Viewport{ViewportMobile, ViewportTablet, ViewportDesktop, ViewportFullscreen}

// Dimensions is a pixel size.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Dimensions returns the frame size for v. Fullscreen has no fixed size
// and reports false.
func (v Viewport) Dimensions() (Dimensions, bool) {
	switch v {
	case ViewportMobile:
		return Dimensions{Width: 375, Height: 667}, true
	case ViewportTablet:
		return Dimensions{Width: 768, Height: 1024}, true
	case ViewportDesktop:
		return Dimensions{Width: 1440, Height: 900}, true
	}
	return Dimensions{}, false
}

// Theme selects the color scheme of the canvas.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Themes lists every Theme.
var Themes = []Theme{ThemeLight, ThemeDark, ThemeSystem}

// Background selects the canvas backdrop.
type Background string

const (
	BackgroundTransparent Background = "transparent"
	BackgroundWhite       Background = "white"
	BackgroundBlack       Background = "black"
	BackgroundDots        Background = "dots"
	BackgroundGrid        Background = "grid"
)

// Backgrounds lists every Background.
var Backgrounds = []Background{BackgroundTransparent, BackgroundWhite, BackgroundBlack, BackgroundDots, BackgroundGrid}

// Panel names a toggleable panel.
type Panel string

const (
	PanelControls Panel = "controls"
	PanelCode     Panel = "code"
	PanelEvents   Panel = "events"
)

// PanelKeys lists every Panel.
var PanelKeys = []Panel{PanelControls, PanelCode, PanelEvents}

// Panels holds panel visibility.
type Panels struct {
	Controls bool `json:"controls"`
	Code     bool `json:"code"`
	Events   bool `json:"events"`
}

// Visible reports whether panel p is open.
func (p Panels) Visible(key Panel) bool {
	switch key {
	case PanelControls:
		return p.Controls
	case PanelCode:
		return p.Code
	case PanelEvents:
		return p.Events
	}
	return false
}

// toggled returns p with key flipped. Unknown keys leave p unchanged.
func (p Panels) toggled(key Panel) Panels {
	switch key {
	case PanelControls:
		p.Controls = !p.Controls
	case PanelCode:
		p.Code = !p.Code
	case PanelEvents:
		p.Events = !p.Events
	}
	return p
}

// PanelSizeKey names a sized pane.
type PanelSizeKey string

const (
	SizeControls PanelSizeKey = "controls"
	SizeCanvas   PanelSizeKey = "canvas"
	SizeCode     PanelSizeKey = "code"
)

// PanelSizeKeys lists every PanelSizeKey.
var PanelSizeKeys = []PanelSizeKey{SizeControls, SizeCanvas, SizeCode}

// FillRemaining is the size sentinel for a pane that takes whatever
// space the others leave.
const FillRemaining = 0

// PanelSizes holds pane sizes in pixels. Sizes are not clamped.
type PanelSizes struct {
	Controls float64 `json:"controls"`
	Canvas   float64 `json:"canvas"`
	Code     float64 `json:"code"`
}

// Size returns the size of pane key.
func (s PanelSizes) Size(key PanelSizeKey) float64 {
	switch key {
	case SizeControls:
		return s.Controls
	case SizeCanvas:
		return s.Canvas
	case SizeCode:
		return s.Code
	}
	return 0
}

func (s PanelSizes) with(key PanelSizeKey, size float64) PanelSizes {
	switch key {
	case SizeControls:
		s.Controls = size
	case SizeCanvas:
		s.Canvas = size
	case SizeCode:
		s.Code = size
	}
	return s
}

// CodeLanguage selects the dialect of generated code.
type CodeLanguage string

const (
	LanguageTSX CodeLanguage = "tsx"
	LanguageJSX CodeLanguage = "jsx"
)

// Languages lists every CodeLanguage.
var Languages = []CodeLanguage{LanguageTSX, LanguageJSX}

// CodeView holds the code panel display options.
type CodeView struct {
	Language    CodeLanguage `json:"language"`
	ShowTypes   bool         `json:"showTypes"`
	ShowImports bool         `json:"showImports"`
}

// EventType classifies a logged interaction.
type EventType string

const (
	EventClick  EventType = "click"
	EventHover  EventType = "hover"
	EventFocus  EventType = "focus"
	EventBlur   EventType = "blur"
	EventChange EventType = "change"
	EventCustom EventType = "custom"
)

// EventTypes lists every EventType.
var EventTypes = []EventType{EventClick, EventHover, EventFocus, EventBlur, EventChange, EventCustom}

// Event is an entry of the event log. Immutable once logged.
type Event struct {
	ID        string    `json:"id"`
	Timestamp int64     `json:"timestamp"` // ms since epoch
	Type      EventType `json:"type"`
	Target    string    `json:"target,omitempty"`
	Data      prop.Map  `json:"data,omitzero"`
}

// EventInput is the caller-supplied part of an Event.
type EventInput struct {
	Type   EventType
	Target string
	Data   prop.Map
}

// State is a snapshot of a playground. Snapshots handed out by the
// engine are copies; nested prop values are shared and must be treated
// as read-only.
type State struct {
	ComponentID string     `json:"componentId,omitempty"`
	Props       prop.Map   `json:"props"`
	Viewport    Viewport   `json:"viewport"`
	Theme       Theme      `json:"theme"`
	Background  Background `json:"background"`
	Panels      Panels     `json:"panels"`
	PanelSizes  PanelSizes `json:"panelSizes"`
	Events      []Event    `json:"events"`
	CodeView    CodeView   `json:"codeView"`
}

// Clone returns a copy of s whose props and events can be modified
// without affecting s.
func (s State) Clone() State {
	out := s
	out.Props = s.Props.Clone()
	out.Events = make([]Event, len(s.Events))
	for i, ev := range s.Events {
		ev.Data = ev.Data.Clone()
		out.Events[i] = ev
	}
	return out
}

// Baseline returns the hard-coded starting state, before any
// configuration defaults are applied.
func Baseline() State {
	return State{
		Props:      prop.Map{},
		Viewport:   ViewportDesktop,
		Theme:      ThemeSystem,
		Background: BackgroundTransparent,
		Panels: Panels{
			Controls: true,
			Code:     true,
			Events:   false,
		},
		PanelSizes: PanelSizes{
			Controls: 300,
			Canvas:   FillRemaining,
			Code:     400,
		},
		Events: []Event{},
		CodeView: CodeView{
			Language:    LanguageTSX,
			ShowTypes:   true,
			ShowImports: true,
		},
	}
}

// Partial is a caller-supplied initial state. Nil fields are left alone.
type Partial struct {
	Props      *prop.Map   `json:"props,omitempty"`
	Viewport   *Viewport   `json:"viewport,omitempty"`
	Theme      *Theme      `json:"theme,omitempty"`
	Background *Background `json:"background,omitempty"`
	Panels     *Panels     `json:"panels,omitempty"`
	PanelSizes *PanelSizes `json:"panelSizes,omitempty"`
	Events     []Event     `json:"events,omitempty"`
	CodeView   *CodeView   `json:"codeView,omitempty"`
}

// apply shallow-overrides s with every field set in p.
func (p *Partial) apply(s State) State {
	if p == nil {
		return s
	}
	if p.Props != nil {
		s.Props = p.Props.Clone()
	}
	if p.Viewport != nil {
		s.Viewport = *p.Viewport
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Background != nil {
		s.Background = *p.Background
	}
	if p.Panels != nil {
		s.Panels = *p.Panels
	}
	if p.PanelSizes != nil {
		s.PanelSizes = *p.PanelSizes
	}
	if p.Events != nil {
		events := p.Events
		if len(events) > MaxEvents {
			events = events[len(events)-MaxEvents:]
		}
		s.Events = make([]Event, len(events))
		for i, ev := range events {
			ev.Data = ev.Data.Clone()
			s.Events[i] = ev
		}
	}
	if p.CodeView != nil {
		s.CodeView = *p.CodeView
	}
	return s
}

// Persisted is the durable subset of State. Only these five fields
// survive a restart.
type Persisted struct {
	Props      *prop.Map   `json:"props,omitempty"`
	Viewport   *Viewport   `json:"viewport,omitempty"`
	Theme      *Theme      `json:"theme,omitempty"`
	Background *Background `json:"background,omitempty"`
	CodeView   *CodeView   `json:"codeView,omitempty"`
}

// PersistedOf extracts the durable subset of s.
func PersistedOf(s State) Persisted {
	props := s.Props.Clone()
	return Persisted{
		Props:      &props,
		Viewport:   &s.Viewport,
		Theme:      &s.Theme,
		Background: &s.Background,
		CodeView:   &s.CodeView,
	}
}

// apply shallow-overrides the durable fields of s.
func (p Persisted) apply(s State) State {
	if p.Props != nil {
		s.Props = p.Props.Clone()
	}
	if p.Viewport != nil {
		s.Viewport = *p.Viewport
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Background != nil {
		s.Background = *p.Background
	}
	if p.CodeView != nil {
		s.CodeView = *p.CodeView
	}
	return s
}

// sanitize drops fields holding values outside their enumerations and
// returns the names of the dropped fields.
func (p *Persisted) sanitize() []string {
	var dropped []string
	if p.Viewport != nil && !slices.Contains(Viewports, *p.Viewport) {
		p.Viewport = nil
		dropped = append(dropped, "viewport")
	}
	if p.Theme != nil && !slices.Contains(Themes, *p.Theme) {
		p.Theme = nil
		dropped = append(dropped, "theme")
	}
	if p.Background != nil && !slices.Contains(Backgrounds, *p.Background) {
		p.Background = nil
		dropped = append(dropped, "background")
	}
	if p.CodeView != nil && !slices.Contains(Languages, p.CodeView.Language) {
		p.CodeView = nil
		dropped = append(dropped, "codeView")
	}
	return dropped
}

// ParseViewport converts user input such as a CLI argument to a Viewport.
func ParseViewport(s string) (Viewport, error) { return parseEnum(s, Viewports, "viewport") }

// ParseTheme converts user input to a Theme.
func ParseTheme(s string) (Theme, error) { return parseEnum(s, Themes, "theme") }

// ParseBackground converts user input to a Background.
func ParseBackground(s string) (Background, error) { return parseEnum(s, Backgrounds, "background") }

// ParsePanel converts user input to a Panel.
func ParsePanel(s string) (Panel, error) { return parseEnum(s, PanelKeys, "panel") }

// ParsePanelSizeKey converts user input to a PanelSizeKey.
func ParsePanelSizeKey(s string) (PanelSizeKey, error) {
	return parseEnum(s, PanelSizeKeys, "panel size")
}

// ParseLanguage converts user input to a CodeLanguage.
func ParseLanguage(s string) (CodeLanguage, error) { return parseEnum(s, Languages, "language") }

// ParseEventType converts user input to an EventType.
func ParseEventType(s string) (EventType, error) { return parseEnum(s, EventTypes, "event type") }

func parseEnum[T ~string](s string, valid []T, what string) (T, error) {
	if slices.Contains(valid, T(s)) {
		return T(s), nil
	}
	return "", fmt.Errorf("unknown %s %q (want one of %v)", what, s, valid)
}
