package aggregate

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe is the closed set of bar durations/alignment policies.
type Timeframe string

const (
	Tick Timeframe = "tick"
	S1   Timeframe = "s1"
	M1   Timeframe = "m1"
	M5   Timeframe = "m5"
	M15  Timeframe = "m15"
	M30  Timeframe = "m30"
	H1   Timeframe = "h1"
	H4   Timeframe = "h4"
	D1   Timeframe = "d1"
)

// All returns every timeframe in canonical order.
func All() []Timeframe {
	return []Timeframe{Tick, S1, M1, M5, M15, M30, H1, H4, D1}
}

// IsTick reports whether the timeframe bypasses aggregation entirely.
func (t Timeframe) IsTick() bool { return t == Tick }

func (t Timeframe) String() string { return string(t) }

// Seconds returns the bar duration in seconds, or (0, false) for Tick.
func (t Timeframe) Seconds() (int, bool) {
	switch t {
	case S1:
		return 1, true
	case M1:
		return 60, true
	case M5:
		return 5 * 60, true
	case M15:
		return 15 * 60, true
	case M30:
		return 30 * 60, true
	case H1:
		return 3600, true
	case H4:
		return 4 * 3600, true
	case D1:
		return 86400, true
	default:
		return 0, false
	}
}

// TimeframeParseError reports an unrecognized timeframe tag.
type TimeframeParseError struct {
	Input string
}

func (e *TimeframeParseError) Error() string {
	return fmt.Sprintf("invalid timeframe '%s', expected one of: tick, s1, m1, m5, m15, m30, h1, h4, d1", e.Input)
}

// ParseTimeframe accepts the canonical tags plus the common aliases the
// original implementation tolerated (1m, minute, minute1, 1h, hour, daily, ...).
func ParseTimeframe(s string) (Timeframe, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tick":
		return Tick, nil
	case "s1", "1s", "second", "second1":
		return S1, nil
	case "m1", "1m", "minute", "minute1":
		return M1, nil
	case "m5", "5m", "minute5":
		return M5, nil
	case "m15", "15m", "minute15":
		return M15, nil
	case "m30", "30m", "minute30":
		return M30, nil
	case "h1", "1h", "hour", "hour1":
		return H1, nil
	case "h4", "4h", "hour4":
		return H4, nil
	case "d1", "1d", "day", "day1", "daily":
		return D1, nil
	default:
		return "", &TimeframeParseError{Input: s}
	}
}

// BarStart computes the bar-start instant for t under this timeframe's
// alignment policy: truncate the relevant calendar field to a multiple of
// the interval, holding higher fields fixed.
func (t Timeframe) BarStart(ts time.Time) time.Time {
	ts = ts.UTC()
	switch t {
	case Tick:
		return ts
	case S1:
		return truncateToSeconds(ts, 1)
	case M1:
		return truncateToMinutes(ts, 1)
	case M5:
		return truncateToMinutes(ts, 5)
	case M15:
		return truncateToMinutes(ts, 15)
	case M30:
		return truncateToMinutes(ts, 30)
	case H1:
		return truncateToHours(ts, 1)
	case H4:
		return truncateToHours(ts, 4)
	case D1:
		return truncateToDay(ts)
	default:
		return ts
	}
}

func truncateToSeconds(t time.Time, interval int) time.Time {
	sec := (t.Second() / interval) * interval
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), sec, 0, time.UTC)
}

func truncateToMinutes(t time.Time, interval int) time.Time {
	min := (t.Minute() / interval) * interval
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), min, 0, 0, time.UTC)
}

func truncateToHours(t time.Time, interval int) time.Time {
	hr := (t.Hour() / interval) * interval
	y, m, d := t.Date()
	return time.Date(y, m, d, hr, 0, 0, 0, time.UTC)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
