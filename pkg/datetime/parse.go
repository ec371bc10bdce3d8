// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/fintools/loancalc/pkg/constants"
)

const (
	// DateTimeLayout is the month format accepted in config files and API
	// payloads and is also the output date format for schedule rows.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// FirstOfMonth returns the given time normalized to the first day of its
// month at midnight, preserving the location. Payment dates are anchored
// here so that month offsets use calendar arithmetic rather than fixed
// 30-day increments.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}
