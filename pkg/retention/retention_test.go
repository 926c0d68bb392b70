package retention

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestThreshold(t *testing.T) {
	now := time.Date(2024, time.March, 3, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, time.February, 25, 12, 0, 0, 0, time.UTC), Threshold(now, 7))
	assert.Equal(t, now, Threshold(now, 0))
}

func TestIsAged(t *testing.T) {
	threshold := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsAged(threshold.Add(-time.Nanosecond), threshold))
	assert.False(t, IsAged(threshold, threshold), "an entry exactly at the threshold is kept")
	assert.False(t, IsAged(threshold.Add(time.Hour), threshold))
}

func TestInterval(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, Interval(7))
	assert.Equal(t, 24*time.Hour, Interval(1))
}

func TestIntervalSaturates(t *testing.T) {
	assert.Equal(t, 106751, MaxDays)
	assert.Positive(t, Interval(MaxDays))
	assert.Equal(t, time.Duration(math.MaxInt64), Interval(MaxDays+1))
	assert.Equal(t, time.Duration(math.MaxInt64), Interval(200000))
}
