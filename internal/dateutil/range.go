// Package dateutil implements the inclusive calendar date range and the
// hour-by-hour iterator derived from it.
package dateutil

import (
	"fmt"
	"time"
)

// DateRange is an inclusive pair of calendar dates (time-of-day truncated).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// RangeError reports an invalid date range (start after end).
type RangeError struct {
	Start time.Time
	End   time.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDateRange constructs a DateRange, rejecting start > end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start, end = truncateToDay(start), truncateToDay(end)
	if start.After(end) {
		return DateRange{}, &RangeError{Start: start, End: end}
	}
	return DateRange{Start: start, End: end}, nil
}

// SingleDay builds a DateRange spanning exactly one calendar day.
func SingleDay(day time.Time) DateRange {
	d := truncateToDay(day)
	return DateRange{Start: d, End: d}
}

// TotalDays returns the number of calendar days spanned, inclusive.
func (r DateRange) TotalDays() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// TotalHours returns the number of hour-start instants the range yields.
func (r DateRange) TotalHours() int {
	return r.TotalDays() * 24
}

// Contains reports whether date falls within the range, inclusive.
func (r DateRange) Contains(date time.Time) bool {
	d := truncateToDay(date)
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s to %s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
}

// HourIterator yields ordered, strictly ascending UTC hour-start instants
// from the first hour of Start through the last hour of End, inclusive.
type HourIterator struct {
	current time.Time
	end     time.Time
	done    bool
}

// Hours builds an iterator over every hour in the range.
func (r DateRange) Hours() *HourIterator {
	return &HourIterator{
		current: r.Start,
		end:     r.End.Add(23 * time.Hour),
	}
}

// Next returns the next hour-start instant and true, or the zero time and
// false once the range is exhausted.
func (it *HourIterator) Next() (time.Time, bool) {
	if it.done || it.current.After(it.end) {
		it.done = true
		return time.Time{}, false
	}
	h := it.current
	it.current = it.current.Add(time.Hour)
	return h, true
}

// All drains the iterator into a slice. Convenience for tests and callers
// that don't need streaming semantics.
func (r DateRange) All() []time.Time {
	it := r.Hours()
	out := make([]time.Time, 0, r.TotalHours())
	for {
		h, ok := it.Next()
		if !ok {
			return out
		}
		out = append(out, h)
	}
}
