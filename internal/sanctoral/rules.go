package sanctoral

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/zapponejosh/churchyear/internal/calendar"
)

// ErrInvalidRule is returned for moveable rules that cannot be evaluated.
var ErrInvalidRule = errors.New("invalid moveable rule")

// Rule places a moveable fixed-cycle entry within its year.
type Rule interface {
	// Matches reports whether the rule lands on date.
	Matches(date time.Time) bool
	// First returns the first occurrence in year.
	First(year int) (time.Time, bool)
	// Months lists the months the rule can fall in; nil means any.
	Months() []time.Month
}

var (
	ordinalWords = map[string]int{
		"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
		"1st": 1, "2nd": 2, "3rd": 3, "4th": 4, "5th": 5,
		"last": -1,
	}
	weekdayWords = map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
		"saturday": time.Saturday,
	}
	monthWords = map[string]time.Month{}

	// e.g. "fourth Thursday of November", "last Monday in May"
	weekdayRulePattern = regexp.MustCompile(`^(\w+)\s+(\w+)\s+(?:of|in)\s+(\w+)$`)
)

func init() {
	for m := time.January; m <= time.December; m++ {
		monthWords[strings.ToLower(m.String())] = m
	}
}

// ParseRule parses either an "<ordinal> <weekday> of <month>" phrase or an
// RFC 5545 recurrence rule ("FREQ=YEARLY;BYMONTH=11;BYDAY=4TH").
func ParseRule(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidRule)
	}

	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "RRULE:") || strings.HasPrefix(upper, "FREQ=") {
		return parseRRule(s)
	}
	return parseWeekdayRule(s)
}

type weekdayRule struct {
	n       int // -1 for last
	weekday time.Weekday
	month   time.Month
}

func parseWeekdayRule(s string) (Rule, error) {
	m := weekdayRulePattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRule, s)
	}

	n, ok := ordinalWords[m[1]]
	if !ok {
		return nil, fmt.Errorf("%w: unknown ordinal %q", ErrInvalidRule, m[1])
	}
	wd, ok := weekdayWords[m[2]]
	if !ok {
		return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidRule, m[2])
	}
	month, ok := monthWords[m[3]]
	if !ok {
		return nil, fmt.Errorf("%w: unknown month %q", ErrInvalidRule, m[3])
	}
	return weekdayRule{n: n, weekday: wd, month: month}, nil
}

func (r weekdayRule) First(year int) (time.Time, bool) {
	if r.n < 0 {
		return calendar.LastWeekdayOfMonth(year, r.month, r.weekday), true
	}
	date, err := calendar.NthWeekdayOfMonth(year, r.month, r.weekday, r.n)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func (r weekdayRule) Matches(date time.Time) bool {
	date = calendar.Normalize(date)
	if date.Month() != r.month || date.Weekday() != r.weekday {
		return false
	}
	want, ok := r.First(date.Year())
	return ok && want.Equal(date)
}

func (r weekdayRule) Months() []time.Month { return []time.Month{r.month} }

type rruleRule struct {
	text   string
	months []time.Month
}

func parseRRule(s string) (Rule, error) {
	text := strings.TrimPrefix(strings.TrimPrefix(s, "RRULE:"), "rrule:")
	opt, err := rrule.StrToROption(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if _, err := rrule.NewRRule(*opt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	months := make([]time.Month, 0, len(opt.Bymonth))
	for _, m := range opt.Bymonth {
		months = append(months, time.Month(m))
	}
	return rruleRule{text: text, months: months}, nil
}

// occurrences expands the rule over one civil year.
func (r rruleRule) occurrences(year int, from, to time.Time) []time.Time {
	rule, err := rrule.StrToRRule(r.text)
	if err != nil {
		return nil
	}
	rule.DTStart(calendar.Date(year, time.January, 1))
	return rule.Between(from, to, true)
}

func (r rruleRule) Matches(date time.Time) bool {
	date = calendar.Normalize(date)
	return len(r.occurrences(date.Year(), date, date)) > 0
}

func (r rruleRule) First(year int) (time.Time, bool) {
	start := calendar.Date(year, time.January, 1)
	end := calendar.Date(year, time.December, 31)
	occ := r.occurrences(year, start, end)
	if len(occ) == 0 {
		return time.Time{}, false
	}
	return calendar.Normalize(occ[0]), true
}

func (r rruleRule) Months() []time.Month { return r.months }
