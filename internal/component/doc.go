// Package component describes the components a playground can inspect.
//
// A Config declares a component's identity, its property schema, default
// property values and optional presets. Configs are produced by an external
// author (YAML, JSON or CUE files, or Go literals) and are immutable once a
// session starts; the engine trusts them and performs no type checking of
// property values against PropDef.Type.
//
// Validate is the one place where authoring mistakes are caught, most
// notably a select property without a non-empty option set. It is a lint
// step for tooling, not something the engine calls.
package component
