package calendar

import (
	"time"
)

const dateLayout = "2006-01-02"

// Date returns midnight UTC of the given calendar day. Every date handled by
// this package is in that form.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize drops the clock and zone of t, keeping its calendar day as seen
// in t's own location.
func Normalize(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// DaysBetween returns the number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int((Normalize(b).Unix() - Normalize(a).Unix()) / 86400)
}

// NextSunday returns t if it is a Sunday, otherwise the following Sunday.
func NextSunday(t time.Time) time.Time {
	return t.AddDate(0, 0, (7-int(t.Weekday()))%7)
}

// CalculateAdvent1 calculates the first Sunday in Advent: the Sunday that
// falls between November 27 and December 3.
func CalculateAdvent1(year int) time.Time {
	return NextSunday(Date(year, time.November, 27))
}

// LiturgicalYear returns the civil year in which the liturgical year
// containing date began. A date before Advent 1 belongs to the year that
// started at the previous Advent.
func LiturgicalYear(date time.Time) int {
	date = Normalize(date)
	year := date.Year()
	if date.Before(CalculateAdvent1(year)) {
		return year - 1
	}
	return year
}

// Anchors are the dates that bound the seasons of one liturgical year.
// Easter and everything derived from it belong to the following civil year.
type Anchors struct {
	Year          int
	Advent1       time.Time
	Christmas     time.Time
	Epiphany      time.Time
	Septuagesima  time.Time
	AshWednesday  time.Time
	PalmSunday    time.Time
	Easter        time.Time
	Pentecost     time.Time
	TrinitySunday time.Time
	NextAdvent1   time.Time
}

// AnchorsFor computes the anchors of the liturgical year beginning at
// Advent of litYear.
func AnchorsFor(litYear int) (Anchors, error) {
	easter, err := CalculateEaster(litYear + 1)
	if err != nil {
		return Anchors{}, err
	}

	return Anchors{
		Year:          litYear,
		Advent1:       CalculateAdvent1(litYear),
		Christmas:     Date(litYear, time.December, 25),
		Epiphany:      Date(litYear+1, time.January, 6),
		Septuagesima:  easter.AddDate(0, 0, OffsetSeptuagesima),
		AshWednesday:  easter.AddDate(0, 0, OffsetAshWednesday),
		PalmSunday:    easter.AddDate(0, 0, OffsetPalmSunday),
		Easter:        easter,
		Pentecost:     easter.AddDate(0, 0, OffsetPentecost),
		TrinitySunday: easter.AddDate(0, 0, OffsetTrinitySunday),
		NextAdvent1:   CalculateAdvent1(litYear + 1),
	}, nil
}

// AnchorsForDate resolves the liturgical year of date and its anchors.
func AnchorsForDate(date time.Time) (Anchors, error) {
	return AnchorsFor(LiturgicalYear(date))
}

// Contains reports whether date falls inside this liturgical year.
func (a Anchors) Contains(date time.Time) bool {
	date = Normalize(date)
	return !date.Before(a.Advent1) && date.Before(a.NextAdvent1)
}

// SeasonOf places date in one of the half-open season intervals. The date
// must lie within the liturgical year.
func (a Anchors) SeasonOf(date time.Time) Season {
	date = Normalize(date)
	bounds := []struct {
		end    time.Time
		season Season
	}{
		{a.Christmas, SeasonAdvent},
		{a.Epiphany, SeasonChristmas},
		{a.Septuagesima, SeasonEpiphany},
		{a.AshWednesday, SeasonSeptuagesima},
		{a.PalmSunday, SeasonLent},
		{a.Easter, SeasonHolyWeek},
		{a.Pentecost, SeasonEaster},
	}
	for _, b := range bounds {
		if date.Before(b.end) {
			return b.season
		}
	}
	return SeasonTrinity
}
