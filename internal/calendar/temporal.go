package calendar

import (
	"fmt"
	"strings"
	"time"
)

// TemporalDay is the moveable-cycle answer for a single date.
type TemporalDay struct {
	Date   time.Time `json:"date"`
	Season Season    `json:"season"`
	// WeekOfSeason is set on Sundays in Advent, Epiphany and Trinity only;
	// zero means unset.
	WeekOfSeason int     `json:"week_of_season,omitempty"`
	Name         string  `json:"name,omitempty"`
	Type         DayType `json:"day_type"`
	Color        Color   `json:"color"`
	Rank         Rank    `json:"rank"`
}

// DisplayName returns the day name, or "<Season> - <Weekday>" for days the
// moveable cycle does not name.
func (d TemporalDay) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("%s - %s", d.Season, d.Date.Weekday())
}

// Resolve computes the moveable-cycle day for date.
func Resolve(date time.Time) (TemporalDay, error) {
	date = Normalize(date)
	anchors, err := AnchorsForDate(date)
	if err != nil {
		return TemporalDay{}, fmt.Errorf("resolve %s: %w", FormatDate(date), err)
	}
	return anchors.Resolve(date)
}

// Resolve computes the moveable-cycle day for a date inside a's liturgical
// year. Dates outside it fail with ErrInvalidRange.
func (a Anchors) Resolve(date time.Time) (TemporalDay, error) {
	date = Normalize(date)
	if !a.Contains(date) {
		return TemporalDay{}, fmt.Errorf("%w: %s is outside liturgical year %d", ErrInvalidRange, FormatDate(date), a.Year)
	}

	season := a.SeasonOf(date)
	week := a.weekOfSeason(date, season)
	name := a.dayName(date, season, week)
	dayType := classify(date, name)

	return TemporalDay{
		Date:         date,
		Season:       season,
		WeekOfSeason: week,
		Name:         name,
		Type:         dayType,
		Color:        a.color(date, season, name),
		Rank:         rankOf(name, dayType),
	}, nil
}

func (a Anchors) weekOfSeason(date time.Time, season Season) int {
	if date.Weekday() != time.Sunday {
		return 0
	}

	switch season {
	case SeasonAdvent:
		return DaysBetween(a.Advent1, date)/7 + 1
	case SeasonEpiphany:
		// Whole weeks since January 6; a Sunday less than a week after it
		// has no ordinal.
		if n := DaysBetween(a.Epiphany, date) / 7; n >= 1 && n <= 6 {
			return n
		}
	case SeasonTrinity:
		if date.After(a.TrinitySunday) {
			if n := DaysBetween(a.TrinitySunday, date) / 7; n <= MaxTrinityWeek {
				return n
			}
		}
	}
	return 0
}

const transfiguration = "Transfiguration (Last Sunday after Epiphany)"

func (a Anchors) dayName(date time.Time, season Season, week int) string {
	if name, ok := moveableName(DaysBetween(a.Easter, date)); ok {
		return name
	}

	if date.Weekday() == time.Sunday {
		switch season {
		case SeasonAdvent:
			if week >= 1 && week <= 4 {
				return fmt.Sprintf("Advent %d", week)
			}
		case SeasonChristmas:
			if date.Month() == time.December && date.After(a.Christmas) {
				return "Christmas 1"
			}
			if date.Month() == time.January && date.Day() >= 2 && date.Day() <= 5 {
				return "Christmas 2"
			}
		case SeasonEpiphany:
			if week >= 1 {
				if !date.AddDate(0, 0, 7).Before(a.Septuagesima) {
					return transfiguration
				}
				return fmt.Sprintf("Epiphany %d", week)
			}
		case SeasonTrinity:
			if week >= 1 {
				return fmt.Sprintf("Trinity %d", week)
			}
		}
	}

	switch {
	case date.Month() == time.December && date.Day() == 25:
		return "Christmas Day"
	case date.Month() == time.January && date.Day() == 1:
		return "Circumcision and Name of Jesus"
	case date.Month() == time.January && date.Day() == 6:
		return "Epiphany"
	}
	return ""
}

var (
	principalKeywords = []string{"easter", "christmas", "epiphany", "ascension", "pentecost", "trinity sunday"}
	sundayKeywords    = []string{"sunday", "advent", "lent", "transfiguration"}

	// Lent Sundays and the Holy Week days ranked Feast without a Sunday
	// classification.
	feastKeywords = []string{
		"invocabit", "reminiscere", "oculi", "laetare", "judica", "palmarum",
		"maundy thursday", "good friday", "holy saturday",
	}
)

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func classify(date time.Time, name string) DayType {
	if name == "" {
		if date.Weekday() == time.Sunday {
			return TypeSunday
		}
		return TypeWeekday
	}

	lower := strings.ToLower(name)
	switch {
	case containsAny(lower, principalKeywords):
		return TypePrincipalFeast
	case containsAny(lower, sundayKeywords):
		return TypeSunday
	}
	return TypeLesserFeast
}

// isPentecost matches Pentecost itself but not "Sundays after Pentecost".
func isPentecost(lower string) bool {
	return strings.Contains(lower, "pentecost") && !strings.Contains(lower, "after")
}

func (a Anchors) color(date time.Time, season Season, name string) Color {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "good friday"):
		return ColorBlack
	case isPentecost(lower), strings.Contains(lower, "reformation"):
		return ColorRed
	}

	switch season {
	case SeasonAdvent, SeasonLent, SeasonSeptuagesima, SeasonHolyWeek:
		return ColorViolet
	case SeasonChristmas, SeasonEaster:
		return ColorWhite
	case SeasonEpiphany:
		if date.Equal(a.Epiphany) {
			return ColorWhite
		}
	case SeasonTrinity:
		if date.Equal(a.TrinitySunday) {
			return ColorWhite
		}
	}
	return ColorGreen
}

func rankOf(name string, dayType DayType) Rank {
	if name == "" {
		if dayType == TypeSunday {
			return RankLesserFeast
		}
		return RankCommemoration
	}

	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "easter sunday"),
		strings.Contains(lower, "christmas day"),
		lower == "epiphany",
		strings.Contains(lower, "ascension"),
		isPentecost(lower),
		strings.Contains(lower, "trinity sunday"):
		return RankPrincipalFeast
	case dayType == TypeSunday:
		return RankFeast
	case containsAny(lower, feastKeywords):
		return RankFeast
	}
	return RankLesserFeast
}
