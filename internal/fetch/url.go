package fetch

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BaseURL is the fixed Dukascopy datafeed root.
const BaseURL = "https://datafeed.dukascopy.com/datafeed"

// TickURL builds the deterministic hour-file URL for an instrument and hour.
// The month field is zero-indexed per the provider's convention and MUST be
// preserved bit-exact.
func TickURL(instrumentID string, hour time.Time) string {
	return fmt.Sprintf("%s/%s/%04d/%02d/%02d/%02dh_ticks.bi5",
		BaseURL,
		strings.ToUpper(instrumentID),
		hour.Year(),
		int(hour.Month())-1,
		hour.Day(),
		hour.Hour(),
	)
}

// HourFromURL reverse-parses a tick URL back into its hour-start instant.
// Not required by the core pipeline but useful for log inspection and
// re-deriving a batch's hour from a cached URL.
func HourFromURL(url string) (time.Time, error) {
	parts := strings.Split(strings.TrimSuffix(url, "h_ticks.bi5"), "/")
	if len(parts) < 4 {
		return time.Time{}, fmt.Errorf("malformed tick URL: %s", url)
	}
	hourStr := parts[len(parts)-1]
	dayStr := parts[len(parts)-2]
	monthStr := parts[len(parts)-3]
	yearStr := parts[len(parts)-4]

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed year in tick URL: %s", url)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed month in tick URL: %s", url)
	}
	dayNum, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed day in tick URL: %s", url)
	}
	hourNum, err := strconv.Atoi(hourStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed hour in tick URL: %s", url)
	}

	return time.Date(year, time.Month(month+1), dayNum, hourNum, 0, 0, 0, time.UTC), nil
}
