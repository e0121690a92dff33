package component

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := base
	r := NewRegistry(WithNow(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))

	require.NoError(t, r.Register(&Config{ID: "button", Name: "Button", Tags: []string{"a"}}))
	require.NoError(t, r.Register(&Config{ID: "card", Name: "Card"}))
	assert.Equal(t, 2, r.Len())

	err := r.Register(&Config{ID: "button", Name: "Other"})
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, ErrCodeDuplicate, le.Code)

	cfg, ok := r.Get("button")
	require.True(t, ok)
	assert.Equal(t, "Button", cfg.Name)

	require.NoError(t, r.Update(&Config{ID: "button", Name: "Big Button"}))
	md, ok := r.Metadata("button")
	require.True(t, ok)
	assert.Equal(t, "Big Button", md.Name)
	assert.Equal(t, base.Add(time.Second), md.CreatedAt)
	assert.Equal(t, base.Add(3*time.Second), md.UpdatedAt)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, "button", list[0].ID)
	assert.Equal(t, "card", list[1].ID)

	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Error(t, r.Update(&Config{ID: "missing"}))
	assert.Error(t, r.Register(&Config{}))
}
