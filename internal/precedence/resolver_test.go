package precedence

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/zapponejosh/churchyear/internal/calendar"
	"github.com/zapponejosh/churchyear/internal/sanctoral"
)

func testResolver(t *testing.T, lookup sanctoral.Lookup) *Resolver {
	t.Helper()
	if lookup == nil {
		def, err := sanctoral.DefaultLookup()
		if err != nil {
			t.Fatalf("DefaultLookup() error: %v", err)
		}
		lookup = def
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(lookup, Options{Workers: 4, Logger: logger})
}

// mapLookup serves fixed days keyed by "MM-DD".
type mapLookup map[string][]sanctoral.Day

func (m mapLookup) LookupFixedByMonthDay(_ context.Context, month time.Month, day int) ([]sanctoral.Day, error) {
	return m[time.Date(2000, month, day, 0, 0, 0, 0, time.UTC).Format("01-02")], nil
}

type failingLookup struct{ err error }

func (f failingLookup) LookupFixedByMonthDay(context.Context, time.Month, int) ([]sanctoral.Day, error) {
	return nil, f.err
}

// slowLookup answers earlier dates more slowly so that concurrent resolution
// finishes out of order.
type slowLookup struct{}

func (slowLookup) LookupFixedByMonthDay(_ context.Context, _ time.Month, day int) ([]sanctoral.Day, error) {
	time.Sleep(time.Duration(32-day) * time.Millisecond)
	return nil, nil
}

func TestResolveDate(t *testing.T) {
	r := testResolver(t, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		date    time.Time
		primary string
		source  Source
		rank    calendar.Rank
		color   calendar.Color
		rule    string
		comms   []string
	}{
		{
			name:    "Good Friday",
			date:    calendar.Date(2024, time.March, 29),
			primary: "Good Friday",
			source:  SourceTemporal,
			rank:    calendar.RankFeast,
			color:   calendar.ColorBlack,
			rule:    RuleHolyWeek,
			comms:   []string{},
		},
		{
			name:    "Easter Sunday",
			date:    calendar.Date(2024, time.March, 31),
			primary: "Easter Sunday",
			source:  SourceTemporal,
			rank:    calendar.RankPrincipalFeast,
			color:   calendar.ColorWhite,
			rule:    RuleMoveablePrincipal,
			comms:   []string{},
		},
		{
			name:    "St. Andrew on a weekday",
			date:    calendar.Date(2023, time.November, 30),
			primary: "St. Andrew, Apostle",
			source:  SourceSanctoral,
			rank:    calendar.RankApostle,
			color:   calendar.ColorRed,
			rule:    RuleWeekday,
			comms:   []string{"Trinity - Thursday"},
		},
		{
			name:    "Reformation Day on a Trinity Sunday",
			date:    calendar.Date(2021, time.October, 31),
			primary: "Trinity 22",
			source:  SourceTemporal,
			rank:    calendar.RankLesserFeast,
			color:   calendar.ColorGreen,
			rule:    RuleMoveableDefault,
			comms:   []string{"Reformation Day"},
		},
		{
			name:    "Annunciation on a Lent weekday",
			date:    calendar.Date(2025, time.March, 25),
			primary: "The Annunciation",
			source:  SourceSanctoral,
			rank:    calendar.RankFeast,
			color:   calendar.ColorWhite,
			rule:    RuleWeekday,
			comms:   []string{"Lent - Tuesday"},
		},
		{
			name:    "Annunciation in Holy Week",
			date:    calendar.Date(2024, time.March, 25),
			primary: "Holy Week - Monday",
			source:  SourceTemporal,
			rank:    calendar.RankCommemoration,
			color:   calendar.ColorViolet,
			rule:    RuleHolyWeek,
			comms:   []string{},
		},
		{
			name:    "Christmas Day",
			date:    calendar.Date(2024, time.December, 25),
			primary: "Christmas Day",
			source:  SourceTemporal,
			rank:    calendar.RankPrincipalFeast,
			color:   calendar.ColorWhite,
			rule:    RuleBothPrincipal,
			comms:   []string{"The Nativity of Our Lord"},
		},
		{
			name:    "Thanksgiving",
			date:    calendar.Date(2024, time.November, 28),
			primary: "Thanksgiving Day (USA)",
			source:  SourceSanctoral,
			rank:    calendar.RankFeast,
			color:   calendar.ColorWhite,
			rule:    RuleWeekday,
			comms:   []string{"Trinity - Thursday"},
		},
		{
			name:    "ordinary weekday",
			date:    calendar.Date(2024, time.July, 10),
			primary: "Trinity - Wednesday",
			source:  SourceTemporal,
			rank:    calendar.RankCommemoration,
			color:   calendar.ColorGreen,
			rule:    RuleMoveableDefault,
			comms:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveDate(ctx, tt.date)
			if err != nil {
				t.Fatalf("ResolveDate() error: %v", err)
			}
			if got.Primary.Name != tt.primary {
				t.Errorf("primary = %q, want %q", got.Primary.Name, tt.primary)
			}
			if got.Primary.Source != tt.source {
				t.Errorf("source = %s, want %s", got.Primary.Source, tt.source)
			}
			if got.Primary.Rank != tt.rank {
				t.Errorf("rank = %s, want %s", got.Primary.Rank, tt.rank)
			}
			if got.Color != tt.color || got.Color != got.Primary.Color {
				t.Errorf("color = %s (primary %s), want %s", got.Color, got.Primary.Color, tt.color)
			}
			if got.Rule != tt.rule {
				t.Errorf("rule = %s, want %s", got.Rule, tt.rule)
			}
			if !equalNames(got.Commemorations, tt.comms...) {
				t.Errorf("commemorations = %v, want %v", namesOf(got.Commemorations), tt.comms)
			}
			if !got.Date.Equal(tt.date) {
				t.Errorf("date = %s, want %s", got.Date, tt.date)
			}
		})
	}
}

func TestResolveDate_HolyWeekSuppressesFixed(t *testing.T) {
	lookup := mapLookup{
		"03-29": {{Month: 3, Day: 29, Name: "Something Grand", Rank: calendar.RankPrincipalFeast, Color: calendar.ColorWhite}},
	}
	got, err := testResolver(t, lookup).ResolveDate(context.Background(), calendar.Date(2024, time.March, 29))
	if err != nil {
		t.Fatal(err)
	}
	if got.Primary.Name != "Good Friday" || got.Color != calendar.ColorBlack {
		t.Errorf("got %s (%s), want Good Friday (black)", got.Primary.Name, got.Color)
	}
	if got.Commemorations == nil || len(got.Commemorations) != 0 {
		t.Errorf("commemorations = %v, want empty", got.Commemorations)
	}
	if got.Note != "" {
		t.Errorf("note = %q, want empty", got.Note)
	}
}

func TestResolveDate_SeasonFromMoveableCycle(t *testing.T) {
	got, err := testResolver(t, nil).ResolveDate(context.Background(), calendar.Date(2023, time.November, 30))
	if err != nil {
		t.Fatal(err)
	}
	if got.Season != calendar.SeasonTrinity {
		t.Errorf("season = %s, want Trinity", got.Season)
	}
	if got.Note != "Trinity - Thursday is commemorated" {
		t.Errorf("note = %q", got.Note)
	}
}

func TestResolveDate_LookupError(t *testing.T) {
	boom := errors.New("database is gone")
	_, err := testResolver(t, failingLookup{boom}).ResolveDate(context.Background(), calendar.Date(2024, time.June, 1))
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
}

func TestResolveDate_OutOfRange(t *testing.T) {
	_, err := testResolver(t, nil).ResolveDate(context.Background(), calendar.Date(1500, time.June, 1))
	if !errors.Is(err, calendar.ErrYearOutOfRange) {
		t.Errorf("error = %v, want ErrYearOutOfRange", err)
	}
}

func TestResolveRange_HolyWeek(t *testing.T) {
	r := testResolver(t, nil)
	start := calendar.Date(2024, time.March, 24)
	days, err := r.ResolveRange(context.Background(), start, calendar.Date(2024, time.March, 31))
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 8 {
		t.Fatalf("got %d days, want 8", len(days))
	}
	for i, d := range days {
		if want := start.AddDate(0, 0, i); !d.Date.Equal(want) {
			t.Errorf("days[%d] = %s, want %s", i, calendar.FormatDate(d.Date), calendar.FormatDate(want))
		}
	}
	if days[0].Primary.Name != "Palmarum (Palm Sunday)" {
		t.Errorf("first = %q", days[0].Primary.Name)
	}
	if last := days[7]; last.Primary.Name != "Easter Sunday" {
		t.Errorf("last = %q, want Easter Sunday", last.Primary.Name)
	}
}

func TestResolveRange_Christmas(t *testing.T) {
	days, err := testResolver(t, nil).ResolveRange(context.Background(),
		calendar.Date(2024, time.December, 24), calendar.Date(2024, time.December, 27))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Advent - Tuesday", "Christmas Day", "St. Stephen, Martyr", "St. John, Apostle and Evangelist"}
	if len(days) != len(want) {
		t.Fatalf("got %d days, want %d", len(days), len(want))
	}
	for i, d := range days {
		if d.Primary.Name != want[i] {
			t.Errorf("%s primary = %q, want %q", calendar.FormatDate(d.Date), d.Primary.Name, want[i])
		}
	}
}

func TestResolveRange_KeepsOrder(t *testing.T) {
	r := NewResolver(slowLookup{}, Options{Workers: 16, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	start := calendar.Date(2024, time.August, 1)
	days, err := r.ResolveRange(context.Background(), start, calendar.Date(2024, time.August, 31))
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 31 {
		t.Fatalf("got %d days, want 31", len(days))
	}
	for i, d := range days {
		if !d.Date.Equal(start.AddDate(0, 0, i)) {
			t.Fatalf("days[%d] = %s, out of order", i, calendar.FormatDate(d.Date))
		}
	}
}

func TestResolveRange_Errors(t *testing.T) {
	r := testResolver(t, nil)
	ctx := context.Background()

	_, err := r.ResolveRange(ctx, calendar.Date(2024, time.March, 2), calendar.Date(2024, time.March, 1))
	if !errors.Is(err, calendar.ErrInvalidRange) {
		t.Errorf("inverted range error = %v, want ErrInvalidRange", err)
	}

	single, err := r.ResolveRange(ctx, calendar.Date(2024, time.March, 1), calendar.Date(2024, time.March, 1))
	if err != nil || len(single) != 1 {
		t.Errorf("single-day range = %d days, %v", len(single), err)
	}

	boom := errors.New("lookup failed")
	_, err = testResolver(t, failingLookup{boom}).ResolveRange(ctx,
		calendar.Date(2024, time.March, 1), calendar.Date(2024, time.March, 10))
	if !errors.Is(err, boom) {
		t.Errorf("range error = %v, want wrapped %v", err, boom)
	}
}

func TestUpcomingFeasts(t *testing.T) {
	r := testResolver(t, nil)
	days, err := r.UpcomingFeasts(context.Background(), calendar.Date(2024, time.March, 1), 5)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		"Oculi (Lent 3)",
		"Laetare (Lent 4)",
		"Judica (Lent 5)",
		"Palmarum (Palm Sunday)",
		"Maundy Thursday",
	}
	if len(days) != len(want) {
		t.Fatalf("got %d feasts, want %d", len(days), len(want))
	}
	for i, d := range days {
		if d.Primary.Name != want[i] {
			t.Errorf("feasts[%d] = %q, want %q", i, d.Primary.Name, want[i])
		}
		if !d.Primary.Rank.AtLeast(calendar.RankFeast) {
			t.Errorf("%s ranks %s, below Feast", d.Primary.Name, d.Primary.Rank)
		}
		if i > 0 && !d.Date.After(days[i-1].Date) {
			t.Errorf("feasts out of order at %d", i)
		}
	}
}

func TestUpcomingFeasts_Bounds(t *testing.T) {
	r := testResolver(t, nil)
	ctx := context.Background()
	from := calendar.Date(2024, time.January, 1)

	none, err := r.UpcomingFeasts(ctx, from, 0)
	if err != nil || len(none) != 0 {
		t.Errorf("count 0 = %d, %v", len(none), err)
	}

	if _, err := r.UpcomingFeasts(ctx, from, -1); !errors.Is(err, calendar.ErrInvalidRange) {
		t.Errorf("negative count error = %v, want ErrInvalidRange", err)
	}

	all, err := r.UpcomingFeasts(ctx, from, 1000)
	if err != nil {
		t.Fatal(err)
	}
	limit := from.AddDate(0, 0, MaxScanDays)
	for _, d := range all {
		if !d.Date.Before(limit) {
			t.Fatalf("%s is beyond the scan limit", calendar.FormatDate(d.Date))
		}
	}
	if len(all) == 0 || len(all) >= 1000 {
		t.Errorf("got %d feasts in a year", len(all))
	}
}

func TestResolvedDay_MarshalJSON(t *testing.T) {
	day, err := testResolver(t, nil).ResolveDate(context.Background(), calendar.Date(2024, time.December, 26))
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(day)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	for _, want := range []string{
		`"date":"2024-12-26"`,
		`"rank":"lesser_feast"`,
		`"color":"red"`,
		`"season":"christmas"`,
		`"rule":"weekday"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s: %s", want, s)
		}
	}
}
