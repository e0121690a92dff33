package prop

import (
	"iter"
	"slices"
)

// Map is an insertion-ordered mapping from property name to Value.
//
// Setting an existing key replaces its value in place; setting a new key
// appends it. This mirrors how object spread behaves in the component
// runtimes the playground targets, which is what code generation relies on.
//
// The zero Map is empty and ready to use.
type Map struct {
	keys []string
	vals map[string]Value
}

// Pair is a key/value entry for ordered Map construction.
type Pair struct {
	Key   string
	Value Value
}

// P is shorthand for Pair.
// Example: NewMap(P("label", String("Click me")), P("disabled", Bool(false)))
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// NewMap builds a Map from pairs in the given order.
func NewMap(pairs ...Pair) Map {
	m := Map{
		keys: make([]string, 0, len(pairs)),
		vals: make(map[string]Value, len(pairs)),
	}
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Len returns the number of entries.
func (m Map) Len() int {
	return len(m.keys)
}

// IsZero reports whether m has no entries.
func (m Map) IsZero() bool {
	return len(m.keys) == 0
}

// Get returns the value stored under key.
func (m Map) Get(key string) (Value, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (m Map) Has(key string) bool {
	_, ok := m.vals[key]
	return ok
}

// Keys returns a copy of the keys in insertion order.
func (m Map) Keys() []string {
	return slices.Clone(m.keys)
}

// All iterates entries in insertion order.
func (m Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range m.keys {
			if !yield(k, m.vals[k]) {
				return
			}
		}
	}
}

// Set stores value under key. A nil value is stored as Null.
func (m *Map) Set(key string, value Value) {
	if value == nil {
		value = Null{}
	}
	if m.vals == nil {
		m.vals = make(map[string]Value)
	}
	if _, exists := m.vals[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = value
}

// Delete removes key. Missing keys are ignored.
func (m *Map) Delete(key string) {
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	i := slices.Index(m.keys, key)
	m.keys = slices.Delete(m.keys, i, i+1)
}

// Clone returns a deep copy of m. Nested maps and arrays are copied too,
// so no mutation of the result is visible through m.
func (m Map) Clone() Map {
	out := Map{
		keys: slices.Clone(m.keys),
		vals: make(map[string]Value, len(m.vals)),
	}
	for k, v := range m.vals {
		out.vals[k] = CloneValue(v)
	}
	return out
}

// With returns a copy of m with key set to a copy of value.
func (m Map) With(key string, value Value) Map {
	out := m.Clone()
	out.Set(key, CloneValue(value))
	return out
}

// Overlay returns a copy of m with every entry of other applied on top.
// Keys already in m keep their position; new keys append in other's order.
func (m Map) Overlay(other Map) Map {
	out := m.Clone()
	for k, v := range other.All() {
		out.Set(k, CloneValue(v))
	}
	return out
}

// Equal reports whether both maps hold the same keys in the same order
// with equal values.
func (m Map) Equal(other Map) bool {
	if len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k {
			return false
		}
		if !Equal(m.vals[k], other.vals[k]) {
			return false
		}
	}
	return true
}
