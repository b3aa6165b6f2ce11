package calendar

import (
	"fmt"
	"strings"
)

// Rank orders observances for precedence. Apostle and Evangelist are distinct
// values that share a tier; compare ranks with Tier or AtLeast, never with <.
type Rank int

const (
	RankCommemoration Rank = iota + 1
	RankLesserFeast
	RankApostle
	RankEvangelist
	RankFeast
	RankPrincipalFeast
)

var rankNames = map[Rank][2]string{
	RankCommemoration:  {"Commemoration", "commemoration"},
	RankLesserFeast:    {"Lesser Feast", "lesser_feast"},
	RankApostle:        {"Apostle", "apostle"},
	RankEvangelist:     {"Evangelist", "evangelist"},
	RankFeast:          {"Feast", "feast"},
	RankPrincipalFeast: {"Principal Feast", "principal_feast"},
}

// Tier returns the precedence tier of the rank. Unknown ranks sit below
// every valid rank.
func (r Rank) Tier() int {
	switch r {
	case RankCommemoration:
		return 1
	case RankLesserFeast:
		return 2
	case RankApostle, RankEvangelist:
		return 3
	case RankFeast:
		return 4
	case RankPrincipalFeast:
		return 5
	}
	return 0
}

// AtLeast reports whether r is in the same tier as other or higher.
func (r Rank) AtLeast(other Rank) bool {
	return r.Tier() >= other.Tier()
}

func (r Rank) String() string {
	if n, ok := rankNames[r]; ok {
		return n[0]
	}
	return fmt.Sprintf("Rank(%d)", int(r))
}

func (r Rank) MarshalText() ([]byte, error) {
	n, ok := rankNames[r]
	if !ok {
		return nil, fmt.Errorf("unknown rank %d", int(r))
	}
	return []byte(n[1]), nil
}

func (r *Rank) UnmarshalText(text []byte) error {
	v, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseRank accepts either the key form ("lesser_feast") or the display
// form ("Lesser Feast"), case-insensitively.
func ParseRank(s string) (Rank, error) {
	k := textKey(s)
	for r, n := range rankNames {
		if n[1] == k {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", s)
}

// Color is a liturgical color.
type Color int

const (
	ColorWhite Color = iota + 1
	ColorRed
	ColorViolet
	ColorBlack
	ColorGreen
)

var colorNames = map[Color]string{
	ColorWhite:  "White",
	ColorRed:    "Red",
	ColorViolet: "Violet",
	ColorBlack:  "Black",
	ColorGreen:  "Green",
}

// Valid reports whether c is one of the defined colors.
func (c Color) Valid() bool {
	_, ok := colorNames[c]
	return ok
}

func (c Color) String() string {
	if n, ok := colorNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

func (c Color) MarshalText() ([]byte, error) {
	n, ok := colorNames[c]
	if !ok {
		return nil, fmt.Errorf("unknown color %d", int(c))
	}
	return []byte(strings.ToLower(n)), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	v, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseColor parses a color name case-insensitively. "purple" is accepted
// as a synonym for violet.
func ParseColor(s string) (Color, error) {
	k := textKey(s)
	if k == "purple" {
		return ColorViolet, nil
	}
	for c, n := range colorNames {
		if strings.ToLower(n) == k {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

// Season partitions the liturgical year.
type Season int

const (
	SeasonAdvent Season = iota + 1
	SeasonChristmas
	SeasonEpiphany
	SeasonSeptuagesima
	SeasonLent
	SeasonHolyWeek
	SeasonEaster
	SeasonTrinity
)

// Seasons lists every season in liturgical-year order.
var Seasons = []Season{
	SeasonAdvent,
	SeasonChristmas,
	SeasonEpiphany,
	SeasonSeptuagesima,
	SeasonLent,
	SeasonHolyWeek,
	SeasonEaster,
	SeasonTrinity,
}

var seasonNames = map[Season][2]string{
	SeasonAdvent:       {"Advent", "advent"},
	SeasonChristmas:    {"Christmas", "christmas"},
	SeasonEpiphany:     {"Epiphany", "epiphany"},
	SeasonSeptuagesima: {"Septuagesima", "septuagesima"},
	SeasonLent:         {"Lent", "lent"},
	SeasonHolyWeek:     {"Holy Week", "holy_week"},
	SeasonEaster:       {"Easter", "easter"},
	SeasonTrinity:      {"Trinity", "trinity"},
}

func (s Season) String() string {
	if n, ok := seasonNames[s]; ok {
		return n[0]
	}
	return fmt.Sprintf("Season(%d)", int(s))
}

func (s Season) MarshalText() ([]byte, error) {
	n, ok := seasonNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown season %d", int(s))
	}
	return []byte(n[1]), nil
}

func (s *Season) UnmarshalText(text []byte) error {
	k := textKey(string(text))
	for v, n := range seasonNames {
		if n[1] == k {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("unknown season %q", string(text))
}

// DayType classifies a moveable-cycle day.
type DayType int

const (
	TypeWeekday DayType = iota + 1
	TypeSunday
	TypePrincipalFeast
	TypeLesserFeast
)

var dayTypeNames = map[DayType][2]string{
	TypeWeekday:        {"Weekday", "weekday"},
	TypeSunday:         {"Sunday", "sunday"},
	TypePrincipalFeast: {"Principal Feast", "principal_feast"},
	TypeLesserFeast:    {"Lesser Feast", "lesser_feast"},
}

func (t DayType) String() string {
	if n, ok := dayTypeNames[t]; ok {
		return n[0]
	}
	return fmt.Sprintf("DayType(%d)", int(t))
}

func (t DayType) MarshalText() ([]byte, error) {
	n, ok := dayTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown day type %d", int(t))
	}
	return []byte(n[1]), nil
}

func textKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
