package eventlog

import "time"

// Clock supplies the current time for event timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

// Millis converts t to milliseconds since the Unix epoch, the unit of
// event timestamps.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
