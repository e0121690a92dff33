// Package harness runs playground scenarios written in YAML.
//
// A scenario names a component configuration file, an optional initial
// state and a list of steps. Each step is one engine operation (set a
// prop, switch the theme, log an event and so on). After the steps run,
// assertions check the resulting state:
//
//	name: danger_preset
//	description: Applying the danger preset replaces every prop.
//	component: ../component/testdata/valid/button.yaml
//	steps:
//	  - op: preset
//	    name: danger
//	assertions:
//	  - type: prop
//	    name: label
//	    expect: Delete
//	  - type: path
//	    path: props.variant
//	    expect: outline
//
// Every run uses a fresh in-memory backend, sequential event ids and a
// deterministic clock, so the final state can be compared byte for byte
// against a golden file with RunWithGolden.
package harness
