package calendar

import (
	"fmt"
	"sort"
	"time"
)

// Offsets from Easter Sunday, in days.
const (
	OffsetSeptuagesima  = -63
	OffsetAshWednesday  = -46
	OffsetPalmSunday    = -7
	OffsetGoodFriday    = -2
	OffsetAscension     = 39
	OffsetPentecost     = 49
	OffsetTrinitySunday = 56
)

// MoveableFeast is a named day at a fixed distance from Easter.
type MoveableFeast struct {
	Name   string
	Offset int
}

// moveableFeasts is kept in liturgical order. Name lookups in the temporal
// resolver walk it front to back.
var moveableFeasts = []MoveableFeast{
	{"Septuagesima Sunday", OffsetSeptuagesima},
	{"Sexagesima Sunday", -56},
	{"Quinquagesima Sunday", -49},
	{"Ash Wednesday", OffsetAshWednesday},
	{"Invocabit (Lent 1)", -42},
	{"Reminiscere (Lent 2)", -35},
	{"Oculi (Lent 3)", -28},
	{"Laetare (Lent 4)", -21},
	{"Judica (Lent 5)", -14},
	{"Palmarum (Palm Sunday)", OffsetPalmSunday},
	{"Maundy Thursday", -3},
	{"Good Friday", OffsetGoodFriday},
	{"Holy Saturday", -1},
	{"Easter Sunday", 0},
	{"Quasimodogeniti (Easter 1)", 7},
	{"Misericordias Domini (Easter 2)", 14},
	{"Jubilate (Easter 3)", 21},
	{"Cantate (Easter 4)", 28},
	{"Rogate (Easter 5)", 35},
	{"Ascension", OffsetAscension},
	{"Exaudi (Easter 6)", 42},
	{"Pentecost (Whitsunday)", OffsetPentecost},
	{"Whit-Monday", 50},
	{"Whit-Tuesday", 51},
	{"Trinity Sunday", OffsetTrinitySunday},
}

// MoveableFeasts returns the table of Easter-relative days in liturgical order.
func MoveableFeasts() []MoveableFeast {
	out := make([]MoveableFeast, len(moveableFeasts))
	copy(out, moveableFeasts)
	return out
}

// moveableName returns the table name for an offset from Easter, if any.
func moveableName(offset int) (string, bool) {
	for _, f := range moveableFeasts {
		if f.Offset == offset {
			return f.Name, true
		}
	}
	return "", false
}

// AllMoveableFeasts maps every moveable feast name to its date in year.
func AllMoveableFeasts(year int) (map[string]time.Time, error) {
	easter, err := CalculateEaster(year)
	if err != nil {
		return nil, err
	}

	out := make(map[string]time.Time, len(moveableFeasts))
	for _, f := range moveableFeasts {
		out[f.Name] = easter.AddDate(0, 0, f.Offset)
	}
	return out, nil
}

// HolyDayType tells whether a holy day is pinned to the civil calendar or
// derived from Easter.
type HolyDayType string

const (
	HolyDayStatic   HolyDayType = "static"
	HolyDayMoveable HolyDayType = "moveable"
)

// HolyDay is one canonical holy day of a given year.
type HolyDay struct {
	Name string      `json:"name"`
	Date time.Time   `json:"date"`
	Type HolyDayType `json:"type"`
}

type holyDayDef struct {
	name   string
	offset int
	month  time.Month
	day    int
}

func (d holyDayDef) static() bool { return d.month != 0 }

var holyDayDefs = []holyDayDef{
	{name: "Easter Sunday", offset: 0},
	{name: "Ash Wednesday", offset: OffsetAshWednesday},
	{name: "Good Friday", offset: OffsetGoodFriday},
	{name: "Ascension Day", offset: OffsetAscension},
	{name: "Pentecost", offset: OffsetPentecost},
	{name: "Trinity Sunday", offset: OffsetTrinitySunday},
	{name: "Annunciation of Mary", month: time.March, day: 25},
	{name: "Christmas", month: time.December, day: 25},
	{name: "Epiphany", month: time.January, day: 6},
	{name: "Reformation Day", month: time.October, day: 31},
	{name: "All Saints' Day", month: time.November, day: 1},
}

// HolyDaysFor returns the canonical holy days of year sorted by date.
func HolyDaysFor(year int) ([]HolyDay, error) {
	easter, err := CalculateEaster(year)
	if err != nil {
		return nil, err
	}

	out := make([]HolyDay, 0, len(holyDayDefs))
	for _, d := range holyDayDefs {
		if d.static() {
			out = append(out, HolyDay{Name: d.name, Date: Date(year, d.month, d.day), Type: HolyDayStatic})
			continue
		}
		out = append(out, HolyDay{Name: d.name, Date: easter.AddDate(0, 0, d.offset), Type: HolyDayMoveable})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// AllHolyDays maps each canonical holy day name to its date in year.
func AllHolyDays(year int) (map[string]time.Time, error) {
	days, err := HolyDaysFor(year)
	if err != nil {
		return nil, err
	}

	out := make(map[string]time.Time, len(days))
	for _, d := range days {
		out[d.Name] = d.Date
	}
	return out, nil
}

// MaxTrinityWeek is the largest possible number of Sundays after Trinity.
const MaxTrinityWeek = 27

// CalculateTrinityWeek returns the date of the given Sunday after Trinity.
func CalculateTrinityWeek(year, week int) (time.Time, error) {
	if week < 1 || week > MaxTrinityWeek {
		return time.Time{}, fmt.Errorf("trinity week %d: %w: must be between 1 and %d", week, ErrInvalidRange, MaxTrinityWeek)
	}

	trinity, err := CalculateTrinitySunday(year)
	if err != nil {
		return time.Time{}, err
	}
	return trinity.AddDate(0, 0, 7*week), nil
}

// TrinitySundayCount returns how many Sundays fall between Trinity Sunday
// and the first Sunday in Advent of the same civil year.
func TrinitySundayCount(year int) (int, error) {
	trinity, err := CalculateTrinitySunday(year)
	if err != nil {
		return 0, err
	}
	return DaysBetween(trinity, CalculateAdvent1(year)) / 7, nil
}

// EpiphanySundayCount returns how many Sundays after January 6 precede
// Septuagesima in year.
func EpiphanySundayCount(year int) (int, error) {
	easter, err := CalculateEaster(year)
	if err != nil {
		return 0, err
	}
	septuagesima := easter.AddDate(0, 0, OffsetSeptuagesima)

	count := 0
	for sunday := NextSunday(Date(year, time.January, 7)); sunday.Before(septuagesima); sunday = sunday.AddDate(0, 0, 7) {
		count++
	}
	return count, nil
}
