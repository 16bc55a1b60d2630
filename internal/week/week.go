// Package week computes the days of a calendar week and the canonical keys
// tasks are stored under.
package week

import (
	"strings"
	"time"
)

// DateLayout is the layout of date day keys.
const DateLayout = "2006-01-02"

// Dates returns the seven consecutive calendar dates of the week containing
// base, where the week begins on start (0=Sunday .. 6=Saturday). Any start
// value is accepted and reduced modulo 7. Only the calendar date of base
// matters; each result is midnight in base's location.
func Dates(base time.Time, start int) []time.Time {
	start = Normalize(start)
	day := Midnight(base)
	daysAgo := (int(day.Weekday()) - start + 7) % 7
	first := day.AddDate(0, 0, -daysAgo)

	dates := make([]time.Time, 7)
	for i := range dates {
		// AddDate keeps the wall clock at midnight across DST changes.
		dates[i] = first.AddDate(0, 0, i)
	}
	return dates
}

// Weekdays returns the seven weekdays in display order starting at start.
func Weekdays(start time.Weekday) []time.Weekday {
	s := Normalize(int(start))
	days := make([]time.Weekday, 7)
	for i := range days {
		days[i] = time.Weekday((s + i) % 7)
	}
	return days
}

// Normalize reduces any integer to a weekday number in [0,6].
func Normalize(start int) int {
	return ((start % 7) + 7) % 7
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateKey is the storage key of a concrete calendar date.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekdayKey is the storage key of a weekday in the weekday table.
func WeekdayKey(d time.Weekday) string {
	return d.String()
}

// ParseDateKey parses a date key in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, key, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseWeekday accepts English weekday names, three letter abbreviations and
// the digits 0-6.
func ParseWeekday(s string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday", "sun", "0":
		return time.Sunday, true
	case "monday", "mon", "1":
		return time.Monday, true
	case "tuesday", "tue", "tues", "2":
		return time.Tuesday, true
	case "wednesday", "wed", "3":
		return time.Wednesday, true
	case "thursday", "thu", "thur", "thurs", "4":
		return time.Thursday, true
	case "friday", "fri", "5":
		return time.Friday, true
	case "saturday", "sat", "6":
		return time.Saturday, true
	}
	return time.Sunday, false
}

// NormalizeKey maps a day identifier onto its canonical form: weekday names
// become "Monday".."Sunday" and ISO dates stay as they are. Anything else is
// returned trimmed so keys written by older versions remain addressable.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if _, ok := ParseDateKey(key, time.UTC); ok {
		return key
	}
	if len(key) > 1 {
		if d, ok := ParseWeekday(key); ok {
			return WeekdayKey(d)
		}
	}
	return key
}
