package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewDateRange_InvalidOrder(t *testing.T) {
	_, err := NewDateRange(day(2024, 1, 2), day(2024, 1, 1))
	require.Error(t, err)
	var re *RangeError
	require.ErrorAs(t, err, &re)
}

func TestDateRange_SingleDayTotalHours(t *testing.T) {
	r := SingleDay(day(2024, 1, 1))
	assert.Equal(t, 24, r.TotalHours())
	assert.Equal(t, 1, r.TotalDays())

	hours := r.All()
	require.Len(t, hours, 24)
	assert.Equal(t, day(2024, 1, 1), hours[0])
	assert.Equal(t, day(2024, 1, 1).Add(23*time.Hour), hours[len(hours)-1])
}

func TestHourIterator_StrictlyAscendingWholeHours(t *testing.T) {
	r, err := NewDateRange(day(2024, 1, 1), day(2024, 1, 3))
	require.NoError(t, err)
	assert.Equal(t, 72, r.TotalHours())

	hours := r.All()
	require.Len(t, hours, 72)
	for i, h := range hours {
		assert.Zero(t, h.Minute())
		assert.Zero(t, h.Second())
		if i > 0 {
			assert.Equal(t, time.Hour, h.Sub(hours[i-1]))
		}
	}
}

func TestDateRange_Contains(t *testing.T) {
	r, err := NewDateRange(day(2024, 1, 1), day(2024, 1, 10))
	require.NoError(t, err)
	assert.True(t, r.Contains(day(2024, 1, 5)))
	assert.True(t, r.Contains(day(2024, 1, 1)))
	assert.True(t, r.Contains(day(2024, 1, 10)))
	assert.False(t, r.Contains(day(2024, 1, 11)))
}
