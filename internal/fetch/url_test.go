package fetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickURL_S1(t *testing.T) {
	hour := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	got := TickURL("eurusd", hour)
	assert.Equal(t, "https://datafeed.dukascopy.com/datafeed/EURUSD/2024/00/15/12h_ticks.bi5", got)
}

func TestTickURL_S2(t *testing.T) {
	hour := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	got := TickURL("btcusd", hour)
	assert.Equal(t, "https://datafeed.dukascopy.com/datafeed/BTCUSD/2024/11/31/23h_ticks.bi5", got)
}

func TestTickURL_Injective(t *testing.T) {
	seen := map[string]bool{}
	hour := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 48; i++ {
		u := TickURL("eurusd", hour)
		require.False(t, seen[u], "duplicate URL for hour %v", hour)
		seen[u] = true
		hour = hour.Add(time.Hour)
	}
}

func TestHourFromURL_RoundTrip(t *testing.T) {
	hour := time.Date(2024, 6, 7, 9, 0, 0, 0, time.UTC)
	u := TickURL("gbpjpy", hour)
	got, err := HourFromURL(u)
	require.NoError(t, err)
	assert.True(t, hour.Equal(got))
}
