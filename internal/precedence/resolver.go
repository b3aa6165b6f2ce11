// Package precedence merges the moveable and fixed cycles into the
// observance actually kept on a day.
package precedence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zapponejosh/churchyear/internal/calendar"
	"github.com/zapponejosh/churchyear/internal/sanctoral"
)

// Source tells which cycle an observance came from.
type Source string

const (
	SourceTemporal  Source = "temporal"
	SourceSanctoral Source = "sanctoral"
)

// Observance is a candidate in the form precedence works with.
type Observance struct {
	Name     string         `json:"name"`
	Source   Source         `json:"source"`
	Rank     calendar.Rank  `json:"rank"`
	Color    calendar.Color `json:"color"`
	ProperID string         `json:"proper_id,omitempty"`
}

// ResolvedDay is the outcome for one date. Color is always the primary's
// color and Season always comes from the moveable cycle.
type ResolvedDay struct {
	Date           time.Time       `json:"date"`
	Primary        Observance      `json:"primary"`
	Commemorations []Observance    `json:"commemorations"`
	Season         calendar.Season `json:"season"`
	WeekOfSeason   int             `json:"week_of_season,omitempty"`
	Color          calendar.Color  `json:"color"`
	Note           string          `json:"note,omitempty"`
	Rule           string          `json:"rule"`
}

// MarshalJSON writes the date as YYYY-MM-DD.
func (d ResolvedDay) MarshalJSON() ([]byte, error) {
	type alias ResolvedDay
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias: alias(d), Date: calendar.FormatDate(d.Date)})
}

// MaxScanDays bounds how far UpcomingFeasts looks ahead.
const MaxScanDays = 365

const scanWindow = 31

// Options configures a Resolver.
type Options struct {
	// Workers bounds concurrent per-date resolution in ranges. Zero means 8.
	Workers int
	Logger  *slog.Logger
}

// Resolver answers "what is observed on this date".
type Resolver struct {
	lookup  sanctoral.Lookup
	workers int
	logger  *slog.Logger
}

// NewResolver creates a resolver over the given fixed-cycle lookup.
func NewResolver(lookup sanctoral.Lookup, opts Options) *Resolver {
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Resolver{lookup: lookup, workers: opts.Workers, logger: opts.Logger}
}

// ResolveDate resolves a single date.
func (r *Resolver) ResolveDate(ctx context.Context, date time.Time) (ResolvedDay, error) {
	date = calendar.Normalize(date)

	temporal, err := calendar.Resolve(date)
	if err != nil {
		return ResolvedDay{}, err
	}

	fixed, err := sanctoral.Candidates(ctx, r.lookup, date)
	if err != nil {
		return ResolvedDay{}, err
	}

	day := Merge(temporal, fixed)
	r.logger.DebugContext(ctx, "resolved day",
		slog.String("date", calendar.FormatDate(date)),
		slog.String("primary", day.Primary.Name),
		slog.String("rule", day.Rule),
		slog.Int("commemorations", len(day.Commemorations)))
	return day, nil
}

// ResolveRange resolves every date in [start, end] in chronological order.
// Dates are resolved concurrently; a lookup failure on any date fails the
// whole range.
func (r *Resolver) ResolveRange(ctx context.Context, start, end time.Time) ([]ResolvedDay, error) {
	start, end = calendar.Normalize(start), calendar.Normalize(end)
	if end.Before(start) {
		return nil, fmt.Errorf("range %s..%s: %w: start after end",
			calendar.FormatDate(start), calendar.FormatDate(end), calendar.ErrInvalidRange)
	}

	n := calendar.DaysBetween(start, end) + 1
	out := make([]ResolvedDay, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			day, err := r.ResolveDate(gctx, start.AddDate(0, 0, i))
			if err != nil {
				return err
			}
			out[i] = day
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpcomingFeasts returns up to count days from from onward whose primary
// observance ranks Feast or higher. It looks at most MaxScanDays days ahead.
func (r *Resolver) UpcomingFeasts(ctx context.Context, from time.Time, count int) ([]ResolvedDay, error) {
	if count < 0 {
		return nil, fmt.Errorf("count %d: %w", count, calendar.ErrInvalidRange)
	}
	from = calendar.Normalize(from)

	out := make([]ResolvedDay, 0, count)
	for offset := 0; offset < MaxScanDays && len(out) < count; offset += scanWindow {
		size := min(scanWindow, MaxScanDays-offset)
		start := from.AddDate(0, 0, offset)
		days, err := r.ResolveRange(ctx, start, start.AddDate(0, 0, size-1))
		if err != nil {
			return nil, err
		}
		for _, d := range days {
			if !d.Primary.Rank.AtLeast(calendar.RankFeast) {
				continue
			}
			out = append(out, d)
			if len(out) == count {
				break
			}
		}
	}
	return out, nil
}

// Merge applies the precedence rules to one date's candidates.
func Merge(temporal calendar.TemporalDay, fixed []sanctoral.Day) ResolvedDay {
	c := candidates{
		temporal: temporal,
		moveable: Observance{
			Name:   temporal.DisplayName(),
			Source: SourceTemporal,
			Rank:   temporal.Rank,
			Color:  temporal.Color,
		},
		fixed: make([]Observance, 0, len(fixed)),
	}
	for _, d := range fixed {
		c.fixed = append(c.fixed, Observance{
			Name:     d.Name,
			Source:   SourceSanctoral,
			Rank:     d.Rank,
			Color:    d.Color,
			ProperID: d.ProperID,
		})
	}

	result, ruleName := decide(c)
	if result.commemorations == nil {
		result.commemorations = []Observance{}
	}

	return ResolvedDay{
		Date:           temporal.Date,
		Primary:        result.primary,
		Commemorations: result.commemorations,
		Season:         temporal.Season,
		WeekOfSeason:   temporal.WeekOfSeason,
		Color:          result.primary.Color,
		Note:           note(result.commemorations),
		Rule:           ruleName,
	}
}

func note(commemorations []Observance) string {
	switch len(commemorations) {
	case 0:
		return ""
	case 1:
		return commemorations[0].Name + " is commemorated"
	}
	names := make([]string, len(commemorations))
	for i, c := range commemorations {
		names[i] = c.Name
	}
	return "Also commemorated: " + strings.Join(names, ", ")
}
