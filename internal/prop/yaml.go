package prop

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAML converts a YAML node into a Value, keeping mapping key order.
// Document nodes are unwrapped and aliases are followed.
func FromYAML(node *yaml.Node) (Value, error) {
	if node == nil {
		return Null{}, nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null{}, nil
		}
		return FromYAML(node.Content[0])
	case yaml.AliasNode:
		return FromYAML(node.Alias)
	case yaml.MappingNode:
		m := Map{}
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
			}
			val, err := FromYAML(valNode)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", keyNode.Value, err)
			}
			m.Set(keyNode.Value, val)
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make(Array, 0, len(node.Content))
		for i, elem := range node.Content {
			val, err := FromYAML(elem)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			arr = append(arr, val)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalarFromYAML(node)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
	}
}

func scalarFromYAML(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			var f float64
			if ferr := node.Decode(&f); ferr != nil {
				return nil, err
			}
			return Float(f), nil
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		return Float(f), nil
	default:
		return String(node.Value), nil
	}
}

// UnmarshalYAML implements yaml.Unmarshaler, preserving mapping key order.
func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	v, err := FromYAML(node)
	if err != nil {
		return err
	}
	switch val := v.(type) {
	case Map:
		*m = val
		return nil
	case Null:
		*m = Map{}
		return nil
	default:
		return fmt.Errorf("line %d: expected mapping, got %s", node.Line, Kind(v))
	}
}
