package ics

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/zapponejosh/churchyear/internal/calendar"
	"github.com/zapponejosh/churchyear/internal/precedence"
	"github.com/zapponejosh/churchyear/internal/sanctoral"
)

func resolveRange(t *testing.T, start, end time.Time) []precedence.ResolvedDay {
	t.Helper()
	lookup, err := sanctoral.DefaultLookup()
	if err != nil {
		t.Fatal(err)
	}
	days, err := precedence.NewResolver(lookup, precedence.Options{}).ResolveRange(context.Background(), start, end)
	if err != nil {
		t.Fatalf("ResolveRange() error: %v", err)
	}
	return days
}

func TestWrite_RoundTrip(t *testing.T) {
	days := resolveRange(t, calendar.Date(2024, time.March, 24), calendar.Date(2024, time.March, 31))
	stamp := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	if err := Write(&buf, days, Options{Name: "Holy Week", Stamp: stamp}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "PRODID:"+DefaultProductID) {
		t.Errorf("feed missing PRODID:\n%s", out)
	}

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseCalendar() error: %v", err)
	}

	events := cal.Events()
	if len(events) != len(days) {
		t.Fatalf("got %d events, want %d", len(events), len(days))
	}

	for i, ev := range events {
		want := days[i]
		if got := ev.GetProperty(ical.ComponentPropertyUniqueId).Value; got != UID(want.Date) {
			t.Errorf("[%d] UID = %q, want %q", i, got, UID(want.Date))
		}
		if got := ev.GetProperty(ical.ComponentPropertySummary).Value; got != want.Primary.Name {
			t.Errorf("[%d] SUMMARY = %q, want %q", i, got, want.Primary.Name)
		}
		start, err := ev.GetAllDayStartAt()
		if err != nil {
			t.Fatalf("[%d] DTSTART: %v", i, err)
		}
		if calendar.FormatDate(start) != calendar.FormatDate(want.Date) {
			t.Errorf("[%d] DTSTART = %s, want %s", i, calendar.FormatDate(start), calendar.FormatDate(want.Date))
		}
	}

	last := events[len(events)-1]
	if got := last.GetProperty(ical.ComponentPropertySummary).Value; got != "Easter Sunday" {
		t.Errorf("last SUMMARY = %q, want Easter Sunday", got)
	}
}

func TestBuild_FeastsOnly(t *testing.T) {
	days := resolveRange(t, calendar.Date(2024, time.March, 1), calendar.Date(2024, time.March, 31))

	cal := Build(days, Options{FeastsOnly: true})
	for _, ev := range cal.Events() {
		name := ev.GetProperty(ical.ComponentPropertySummary).Value
		if strings.Contains(name, " - ") {
			t.Errorf("unnamed weekday %q in feasts-only feed", name)
		}
	}
	if n := len(cal.Events()); n == 0 || n >= len(days) {
		t.Errorf("feasts-only feed has %d of %d days", n, len(days))
	}
}

func TestDescription(t *testing.T) {
	days := resolveRange(t, calendar.Date(2023, time.November, 30), calendar.Date(2023, time.November, 30))
	got := description(days[0])
	want := "Trinity, Apostle. Color: Red. Trinity - Thursday is commemorated."
	if got != want {
		t.Errorf("description = %q, want %q", got, want)
	}
}
