package eventlog

import "time"

// TimestampLayout renders 12-hour wall time with two-digit fields,
// e.g. "02:05:09 PM".
const TimestampLayout = "03:04:05 PM"

// FormatTimestamp renders a millisecond timestamp in local time.
func FormatTimestamp(ms int64) string {
	return FormatTimestampIn(ms, time.Local)
}

// FormatTimestampIn renders a millisecond timestamp in loc.
func FormatTimestampIn(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(TimestampLayout)
}
