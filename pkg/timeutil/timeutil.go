// Package timeutil provides civil-day arithmetic for the learning hub.
// All streak and calendar logic counts whole calendar days in a single
// engine-wide timezone, so day boundaries are computed here and nowhere else.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// DefaultLocation is the engine-wide timezone used to split time into
// calendar days when no explicit location is configured. UTC keeps day
// boundaries identical across server instances and deployments.
var DefaultLocation = time.UTC

// FormatDate is the standard date format (YYYY-MM-DD).
const FormatDate = "2006-01-02"

// Day represents a calendar day: a time.Time normalized to midnight UTC.
// Normalizing to a fixed instant makes Day values comparable with == and
// usable as map keys regardless of the location they were derived in.
type Day struct {
	t time.Time
}

// DayOf returns the calendar day containing t, interpreted in loc.
// A nil loc falls back to DefaultLocation.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = DefaultLocation
	}
	local := t.In(loc)
	return Date(local.Year(), int(local.Month()), local.Day())
}

// Date constructs a Day from year, month, and day numbers.
func Date(year, month, day int) Day {
	return Day{t: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses a YYYY-MM-DD string into a Day.
func ParseDay(value string) (Day, error) {
	t, err := time.Parse(FormatDate, value)
	if err != nil {
		return Day{}, err
	}
	return Day{t: t}, nil
}

// FromTime converts a stored midnight timestamp (e.g. a DATE column read
// back through pgx) into a Day.
func FromTime(t time.Time) Day {
	return Date(t.Year(), int(t.Month()), t.Day())
}

// Time returns the Day as a time.Time at midnight UTC.
// This is the representation stored in DATE columns.
func (d Day) Time() time.Time {
	return d.t
}

// String formats the Day as YYYY-MM-DD.
func (d Day) String() string {
	return d.t.Format(FormatDate)
}

// IsZero reports whether the Day is the zero value.
func (d Day) IsZero() bool {
	return d.t.IsZero()
}

// AddDays returns the Day shifted by n calendar days (n may be negative).
func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

// Before reports whether d is an earlier calendar day than other.
func (d Day) Before(other Day) bool {
	return d.t.Before(other.t)
}

// After reports whether d is a later calendar day than other.
func (d Day) After(other Day) bool {
	return d.t.After(other.t)
}

// Equal reports whether two Days are the same calendar day.
func (d Day) Equal(other Day) bool {
	return d.t.Equal(other.t)
}

// DaysBetween returns the signed number of calendar days from d to other.
// Positive when other is later than d.
func (d Day) DaysBetween(other Day) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// IsNextDay reports whether other is exactly the day after d.
func (d Day) IsNextDay(other Day) bool {
	return d.DaysBetween(other) == 1
}

// Year returns the calendar year.
func (d Day) Year() int { return d.t.Year() }

// Month returns the calendar month (1-12).
func (d Day) Month() int { return int(d.t.Month()) }

// DayOfMonth returns the day of the month (1-31).
func (d Day) DayOfMonth() int { return d.t.Day() }

// MonthRange returns the half-open day range [first of (year, month),
// first of the following month). Month overflow is handled by time.Date,
// so (2025, 12) yields an end of 2026-01-01.
func MonthRange(year, month int) (start, end Day) {
	start = Date(year, month, 1)
	end = Date(year, month+1, 1)
	return start, end
}

// Today returns the current calendar day in loc (DefaultLocation when nil).
func Today(loc *time.Location) Day {
	return DayOf(time.Now(), loc)
}
