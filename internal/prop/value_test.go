package prop

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Compile-time check via assignment
	var _ Value = Null{}
	var _ Value = String("x")
	var _ Value = Int(1)
	var _ Value = Float(1.5)
	var _ Value = Bool(true)
	var _ Value = Array{String("a")}
	var _ Value = NewMap()
}

func TestKind(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Null{}, "null"},
		{nil, "null"},
		{String("a"), "string"},
		{Int(1), "number"},
		{Float(0.5), "number"},
		{Bool(false), "boolean"},
		{Array{}, "array"},
		{NewMap(), "object"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.v))
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Int(2), Float(2)))
	assert.True(t, Equal(Null{}, nil))
	assert.True(t, Equal(Float(math.NaN()), Float(math.NaN())))
	assert.False(t, Equal(String("1"), Int(1)))
	assert.True(t, Equal(
		Array{Int(1), NewMap(P("a", Bool(true)))},
		Array{Int(1), NewMap(P("a", Bool(true)))},
	))
	assert.False(t, Equal(Array{Int(1)}, Array{Int(1), Int(2)}))
}

func TestUnmarshalValue_PreservesOrder(t *testing.T) {
	v, err := UnmarshalValue([]byte(`{"zebra":1,"apple":{"y":true,"x":null},"mango":[1,2.5,"s"]}`))
	require.NoError(t, err)

	m, ok := v.(Map)
	require.True(t, ok)
	assert.Equal(t, []string{"zebra", "apple", "mango"}, m.Keys())

	apple, _ := m.Get("apple")
	assert.Equal(t, []string{"y", "x"}, apple.(Map).Keys())

	mango, _ := m.Get("mango")
	assert.Equal(t, Array{Int(1), Float(2.5), String("s")}, mango)
}

func TestUnmarshalValue_Numbers(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"42", Int(42)},
		{"-7", Int(-7)},
		{"1.5", Float(1.5)},
		{"1e3", Float(1000)},
		{"9223372036854775808", Float(9223372036854775808)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := UnmarshalValue([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalValue_RejectsTrailingData(t *testing.T) {
	_, err := UnmarshalValue([]byte(`{"a":1} {"b":2}`))
	require.Error(t, err)
}

func TestParse(t *testing.T) {
	assert.Equal(t, Int(3), Parse("3"))
	assert.Equal(t, Bool(true), Parse("true"))
	assert.Equal(t, String("quoted"), Parse(`"quoted"`))
	assert.Equal(t, String("hello world"), Parse("hello world"))
	assert.Equal(t, Array{Int(1), Int(2)}, Parse("[1,2]"))
}

func TestJSONText(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"string no html escape", String("<b>&</b>"), `"<b>&</b>"`},
		{"integral float", Float(3), `3`},
		{"fraction", Float(0.25), `0.25`},
		{"large", Float(1e21), `1e+21`},
		{"small", Float(1.5e-7), `1.5e-7`},
		{"nan", Float(math.NaN()), `null`},
		{"nested", NewMap(P("b", Int(1)), P("a", Array{Bool(true), Null{}})), `{"b":1,"a":[true,null]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JSONText(tt.v))
		})
	}
}

func TestMapJSONRoundTrip(t *testing.T) {
	m := NewMap(
		P("label", String("Click me")),
		P("count", Int(3)),
		P("ratio", Float(0.5)),
		P("style", NewMap(P("color", String("red")))),
	)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"label":"Click me","count":3,"ratio":0.5,"style":{"color":"red"}}`, string(data))

	var decoded Map
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equal(decoded))
}

func TestMapUnmarshalJSON_NullIsEmpty(t *testing.T) {
	var m Map
	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.Equal(t, 0, m.Len())
}

func TestMapUnmarshalJSON_RejectsNonObject(t *testing.T) {
	var m Map
	err := json.Unmarshal([]byte(`[1]`), &m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected JSON object")
}
