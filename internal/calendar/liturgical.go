package calendar

import (
	"fmt"
	"time"
)

// FirstWeekdayOfMonth finds the first given weekday in a month.
func FirstWeekdayOfMonth(year int, month time.Month, weekday time.Weekday) time.Time {
	current := Date(year, month, 1)
	for current.Weekday() != weekday {
		current = current.AddDate(0, 0, 1)
	}
	return current
}

// NthWeekdayOfMonth returns the n-th given weekday of a month, counted from
// its first occurrence in 7-day steps. It fails when the month has no n-th
// occurrence.
func NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) (time.Time, error) {
	if n < 1 || n > 5 {
		return time.Time{}, fmt.Errorf("occurrence %d: %w", n, ErrInvalidRange)
	}

	date := FirstWeekdayOfMonth(year, month, weekday).AddDate(0, 0, 7*(n-1))
	if date.Month() != month {
		return time.Time{}, fmt.Errorf("no %s %s in %s %d: %w", Ordinal(n), weekday, month, year, ErrInvalidRange)
	}
	return date, nil
}

// LastWeekdayOfMonth finds the last given weekday in a month.
func LastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday) time.Time {
	current := Date(year, month+1, 1).AddDate(0, 0, -1)
	for current.Weekday() != weekday {
		current = current.AddDate(0, 0, -1)
	}
	return current
}

// Ordinal returns the ordinal form of a number (1st, 2nd, 3rd, 4th, etc.)
func Ordinal(n int) string {
	switch {
	case n%100 >= 11 && n%100 <= 13:
		return fmt.Sprintf("%dth", n)
	case n%10 == 1:
		return fmt.Sprintf("%dst", n)
	case n%10 == 2:
		return fmt.Sprintf("%dnd", n)
	case n%10 == 3:
		return fmt.Sprintf("%drd", n)
	}
	return fmt.Sprintf("%dth", n)
}
