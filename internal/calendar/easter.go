// Package calendar computes the moveable cycle of the church year according
// to The Lutheran Hymnal: Easter, the feasts derived from it, and the season,
// name, color and rank of any date.
package calendar

import (
	"fmt"
	"time"
)

// MinYear is the first year the Gregorian computus is defined for.
const MinYear = 1583

// CalculateEaster calculates the date of Easter Sunday for a given year
// using the Meeus/Jones/Butcher algorithm for the Gregorian calendar.
func CalculateEaster(year int) (time.Time, error) {
	if year < MinYear {
		return time.Time{}, fmt.Errorf("easter %d: %w: must be %d or later", year, ErrYearOutOfRange, MinYear)
	}

	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return Date(year, time.Month(month), day), nil
}

// MaxEasterRange bounds how many years CalculateEasterRange computes at once.
const MaxEasterRange = 10000

// CalculateEasterRange returns Easter for every year in [start, end].
func CalculateEasterRange(start, end int) (map[int]time.Time, error) {
	if start > end {
		return nil, fmt.Errorf("easter range %d-%d: %w: start after end", start, end, ErrInvalidRange)
	}
	if start < MinYear {
		return nil, fmt.Errorf("easter range %d-%d: %w: must start in %d or later", start, end, ErrYearOutOfRange, MinYear)
	}
	if end-start >= MaxEasterRange {
		return nil, fmt.Errorf("easter range %d-%d: %w: more than %d years", start, end, ErrInvalidRange, MaxEasterRange)
	}

	out := make(map[int]time.Time, end-start+1)
	for year := start; year <= end; year++ {
		easter, err := CalculateEaster(year)
		if err != nil {
			return nil, err
		}
		out[year] = easter
	}
	return out, nil
}

// fromEaster returns Easter of year shifted by offset days.
func fromEaster(year, offset int) (time.Time, error) {
	easter, err := CalculateEaster(year)
	if err != nil {
		return time.Time{}, err
	}
	return easter.AddDate(0, 0, offset), nil
}

// CalculateAshWednesday calculates Ash Wednesday, 46 days before Easter.
func CalculateAshWednesday(year int) (time.Time, error) {
	return fromEaster(year, OffsetAshWednesday)
}

// CalculateGoodFriday calculates Good Friday, two days before Easter.
func CalculateGoodFriday(year int) (time.Time, error) {
	return fromEaster(year, OffsetGoodFriday)
}

// CalculateAscension calculates Ascension Day, 39 days after Easter
// (always a Thursday).
func CalculateAscension(year int) (time.Time, error) {
	return fromEaster(year, OffsetAscension)
}

// CalculatePentecost calculates Pentecost, 49 days after Easter.
func CalculatePentecost(year int) (time.Time, error) {
	return fromEaster(year, OffsetPentecost)
}

// CalculateTrinitySunday calculates Trinity Sunday, one week after Pentecost.
func CalculateTrinitySunday(year int) (time.Time, error) {
	return fromEaster(year, OffsetTrinitySunday)
}
