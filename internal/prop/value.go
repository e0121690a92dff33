package prop

import (
	"fmt"
	"math"
)

// Value is a sealed interface representing a property value.
// Only Null, String, Int, Float, Bool, Array and Map implement it.
type Value interface {
	propValue() // Sealed
}

// Null represents an explicit JSON null.
type Null struct{}

func (Null) propValue() {}

// String is a text property value.
type String string

func (String) propValue() {}

// Int is an integral numeric property value.
type Int int64

func (Int) propValue() {}

// Float is a non-integral numeric property value.
// Integral numbers decode as Int; Float only appears when a fraction or
// exponent is present, or when a caller constructs one explicitly.
type Float float64

func (Float) propValue() {}

// Bool is a boolean property value.
type Bool bool

func (Bool) propValue() {}

// Array is an ordered list of values.
type Array []Value

func (Array) propValue() {}

func (Map) propValue() {}

// Kind names the shape of a value. Used in error messages and by the
// controls surface to pick an editor.
func Kind(v Value) string {
	switch v.(type) {
	case nil, Null:
		return "null"
	case String:
		return "string"
	case Int, Float:
		return "number"
	case Bool:
		return "boolean"
	case Array:
		return "array"
	case Map:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// CloneValue returns a deep copy of v. Scalars are returned as is.
func CloneValue(v Value) Value {
	switch val := v.(type) {
	case Map:
		return val.Clone()
	case Array:
		if val == nil {
			return val
		}
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = CloneValue(elem)
		}
		return out
	default:
		return v
	}
}

// Equal reports whether two values are structurally identical.
// Maps must hold the same keys in the same order. Int and Float compare
// by numeric value so 2 and 2.0 are equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil, Null:
		switch b.(type) {
		case nil, Null:
			return true
		}
		return false
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		switch bv := b.(type) {
		case Int:
			return av == bv
		case Float:
			return float64(av) == float64(bv)
		}
		return false
	case Float:
		switch bv := b.(type) {
		case Float:
			return av == bv || (math.IsNaN(float64(av)) && math.IsNaN(float64(bv)))
		case Int:
			return float64(av) == float64(bv)
		}
		return false
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv, ok := b.(Map)
		return ok && av.Equal(bv)
	default:
		return false
	}
}
