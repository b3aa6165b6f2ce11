package sanctoral

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/zapponejosh/churchyear/internal/calendar"
)

// Lookup finds fixed-cycle candidates for a calendar day.
//
// Implementations return the entries stored for month/day in a stable order,
// plus every moveable entry of that month regardless of its placeholder day.
// Callers run the result through FilterMoveable, usually via Candidates.
type Lookup interface {
	LookupFixedByMonthDay(ctx context.Context, month time.Month, day int) ([]Day, error)
}

// FilterMoveable drops moveable entries whose rule does not land on date.
// Entries with a rule that cannot be parsed are kept.
func FilterMoveable(days []Day, date time.Time) []Day {
	date = calendar.Normalize(date)
	out := make([]Day, 0, len(days))
	for _, d := range days {
		if d.IsMoveable() {
			rule, err := ParseRule(d.MoveableRule)
			if err == nil && !rule.Matches(date) {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

// Candidates returns the fixed-cycle candidates observed on date.
func Candidates(ctx context.Context, lookup Lookup, date time.Time) ([]Day, error) {
	date = calendar.Normalize(date)
	days, err := lookup.LookupFixedByMonthDay(ctx, date.Month(), date.Day())
	if err != nil {
		return nil, fmt.Errorf("lookup fixed days for %s: %w", calendar.FormatDate(date), err)
	}
	return FilterMoveable(days, date), nil
}

// Static serves lookups from an in-memory list, such as the built-in TLH
// calendar.
type Static struct {
	days []Day
}

// NewStatic builds a Static lookup. Entries are ordered by name within each
// day, matching the database store.
func NewStatic(days []Day) *Static {
	sorted := make([]Day, len(days))
	copy(sorted, days)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Static{days: sorted}
}

// LookupFixedByMonthDay implements Lookup.
func (s *Static) LookupFixedByMonthDay(_ context.Context, month time.Month, day int) ([]Day, error) {
	var out []Day
	for _, d := range s.days {
		if d.Month != int(month) {
			continue
		}
		if d.Day == day || d.IsMoveable() {
			out = append(out, d)
		}
	}
	return out, nil
}

// All returns every entry in name order.
func (s *Static) All() []Day {
	out := make([]Day, len(s.days))
	copy(out, s.days)
	return out
}
