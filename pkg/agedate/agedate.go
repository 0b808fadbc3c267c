// Package agedate derives a probable capture date from a birth date and an
// estimated age, and compares it against a recorded one.
package agedate

import (
	"fmt"
	"time"
)

// DefaultThresholdDays is the discrepancy (roughly ten years) above which a
// recorded capture date is considered wrong.
const DefaultThresholdDays = 3650

// DateLayout is used for dates in generated descriptions.
const DateLayout = "2006-01-02"

// BirthDate normalizes a birth year to midnight UTC on January 1st.
func BirthDate(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// CaptureDate returns birth advanced by age whole years.
//
// Unlike time.AddDate, a day that does not exist in the target year is
// clamped to the end of the month: Feb 29 + 1 year is Feb 28, not Mar 1.
func CaptureDate(age int, birth time.Time) time.Time {
	return AddYears(birth, age)
}

// AddYears adds n calendar years to t, clamping the day of month.
func AddYears(t time.Time, n int) time.Time {
	year := t.Year() + n
	month := t.Month()
	day := t.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysApart returns the distance between an estimated date a and a recorded
// date b in whole days. The signed difference a-b is floored before taking
// the absolute value, so a partial day counts as a full day when b is later
// than a, and is dropped when b is earlier.
func DaysApart(a, b time.Time) int {
	const day = 24 * time.Hour

	d := a.Sub(b)
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	if days < 0 {
		days = -days
	}
	return days
}

// Exceeds reports whether a and b are more than thresholdDays apart.
// A distance of exactly thresholdDays does not exceed it.
func Exceeds(a, b time.Time, thresholdDays int) bool {
	return DaysApart(a, b) > thresholdDays
}

// Description renders the free-text note written to the image description tag.
func Description(birth, captured time.Time) string {
	return fmt.Sprintf("born on %s and is %d years old.", birth.Format(DateLayout), captured.Year()-birth.Year())
}
