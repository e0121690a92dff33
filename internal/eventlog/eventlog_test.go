package eventlog

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator(t *testing.T) {
	id := UUIDGenerator{}.Generate()
	require.True(t, strings.HasPrefix(id, IDPrefix))

	parsed, err := uuid.Parse(strings.TrimPrefix(id, IDPrefix))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDGenerator_Unique(t *testing.T) {
	gen := UUIDGenerator{}
	seen := make(map[string]bool)
	for range 1000 {
		id := gen.Generate()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator()
	assert.Equal(t, "evt_1", gen.Generate())
	assert.Equal(t, "evt_2", gen.Generate())

	var zero SequenceGenerator
	assert.Equal(t, "evt_1", zero.Generate())
}

func TestSequenceGenerator_Concurrent(t *testing.T) {
	gen := NewSequenceGenerator()

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]bool)
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				id := gen.Generate()
				mu.Lock()
				ids[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 1000)
}

func TestFormatTimestampIn(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"afternoon", time.Date(2024, 3, 9, 14, 5, 9, 0, time.UTC), "02:05:09 PM"},
		{"midnight", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "12:00:00 AM"},
		{"noon", time.Date(2024, 3, 9, 12, 30, 0, 0, time.UTC), "12:30:00 PM"},
		{"morning", time.Date(2024, 3, 9, 9, 59, 59, 999_000_000, time.UTC), "09:59:59 AM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestampIn(tt.at.UnixMilli(), time.UTC))
		})
	}
}

func TestFormatTimestampIn_Zone(t *testing.T) {
	ms := time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC).UnixMilli()
	loc := time.FixedZone("UTC+3", 3*60*60)
	assert.Equal(t, "05:00:00 PM", FormatTimestampIn(ms, loc))
}

func TestClockFunc(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := ClockFunc(func() time.Time { return at })
	assert.Equal(t, at.UnixMilli(), Millis(c.Now()))
}
