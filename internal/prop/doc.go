// Package prop provides the tagged value model for component property values.
//
// Property values flow from component configurations (defaultProps, presets),
// through the playground engine, into persisted documents, share links and
// generated code. Every one of those consumers depends on two properties that
// Go's map[string]any does not provide:
//
//   - Insertion order: generated call-sites list props in the order they were
//     first written, so Map keeps an explicit key order.
//   - Closed set of shapes: Value is sealed; only Null, String, Int, Float,
//     Bool, Array and Map implement it.
//
// Map and Array are mutable. Clone, With and Overlay copy nested values,
// so a value handed to the engine or read from a snapshot shares no
// storage with engine state.
//
// This package imports nothing internal.
package prop
