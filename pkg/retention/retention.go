// Package retention holds the age rule used to decide which entries leave a
// watched folder.
package retention

import (
	"math"
	"time"
)

// Threshold returns the deletion threshold for a sweep started at now.
// Days are subtracted on the calendar, so a threshold taken across a DST
// change keeps the wall-clock time of now.
func Threshold(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}

// IsAged reports whether modTime is strictly earlier than threshold.
func IsAged(modTime, threshold time.Time) bool {
	return modTime.Before(threshold)
}

// MaxDays is the largest frequency whose interval fits in a time.Duration.
const MaxDays = int(math.MaxInt64 / int64(24*time.Hour))

// Interval converts a frequency in days to the wait between sweeps. Values
// above MaxDays saturate at the longest representable duration.
func Interval(days int) time.Duration {
	if days > MaxDays {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(days) * 24 * time.Hour
}
