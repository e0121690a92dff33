package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant returned by a DeterministicClock:
// 2024-01-15 10:30:00 UTC.
var Epoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// DeterministicClock is a thread-safe fake wall clock for tests. Every
// call to Now advances it by a fixed step, so consecutive events get
// distinct, predictable timestamps.
//
// Implements eventlog.Clock.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	ticks int64
}

// NewDeterministicClock creates a clock starting at Epoch that advances
// one second per call.
func NewDeterministicClock() *DeterministicClock {
	return NewStepClock(Epoch, time.Second)
}

// NewStepClock creates a clock whose first Now returns start and which
// then advances by step.
func NewStepClock(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{start: start, step: step}
}

// Now returns the current instant and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.ticks) * c.step)
	c.ticks++
	return t
}

// Current returns the instant the next Now call will return, without
// advancing.
func (c *DeterministicClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.start.Add(time.Duration(c.ticks) * c.step)
}

// Reset rewinds the clock to its start.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
