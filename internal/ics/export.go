// Package ics renders resolved days as an iCalendar feed of all-day events.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/zapponejosh/churchyear/internal/calendar"
	"github.com/zapponejosh/churchyear/internal/precedence"
)

// DefaultProductID identifies the generator in PRODID.
const DefaultProductID = "-//churchyear//Liturgical Calendar//EN"

// Options controls feed metadata.
type Options struct {
	Name      string
	ProductID string
	// Stamp is written as DTSTAMP on every event. Zero means now.
	Stamp time.Time
	// FeastsOnly drops days whose primary ranks below Feast.
	FeastsOnly bool
}

// UID returns the stable event identifier for a date, so that re-imported
// feeds update events instead of duplicating them.
func UID(date time.Time) string {
	return calendar.FormatDate(date) + "@churchyear"
}

// Build creates a calendar with one all-day event per resolved day.
func Build(days []precedence.ResolvedDay, opts Options) *ical.Calendar {
	if opts.ProductID == "" {
		opts.ProductID = DefaultProductID
	}
	if opts.Name == "" {
		opts.Name = "Church Year"
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now().UTC()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProductID)
	cal.SetXWRCalName(opts.Name)

	for _, d := range days {
		if opts.FeastsOnly && !d.Primary.Rank.AtLeast(calendar.RankFeast) {
			continue
		}

		event := cal.AddEvent(UID(d.Date))
		event.SetDtStampTime(opts.Stamp)
		event.SetAllDayStartAt(d.Date)
		event.SetAllDayEndAt(d.Date.AddDate(0, 0, 1))
		event.SetSummary(d.Primary.Name)
		event.SetDescription(description(d))
		event.SetProperty(ical.ComponentPropertyCategories, d.Season.String())
	}
	return cal
}

// Write serializes the feed for days to w.
func Write(w io.Writer, days []precedence.ResolvedDay, opts Options) error {
	if err := Build(days, opts).SerializeTo(w); err != nil {
		return fmt.Errorf("serialize calendar: %w", err)
	}
	return nil
}

func description(d precedence.ResolvedDay) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s", d.Season, d.Primary.Rank)
	if d.WeekOfSeason > 0 {
		fmt.Fprintf(&b, ", week %d", d.WeekOfSeason)
	}
	fmt.Fprintf(&b, ". Color: %s.", d.Color)
	if d.Note != "" {
		fmt.Fprintf(&b, " %s.", d.Note)
	}
	return b.String()
}
