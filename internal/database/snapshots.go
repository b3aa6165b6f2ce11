package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapponejosh/churchyear/internal/calendar"
	"github.com/zapponejosh/churchyear/internal/precedence"
)

// =============================================================================
// Snapshot Queries
// =============================================================================

// SaveHolyDays replaces the stored holy days of year.
func (db *DB) SaveHolyDays(ctx context.Context, year int, days []calendar.HolyDay) error {
	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM holy_days WHERE year = ?`, year); err != nil {
			return fmt.Errorf("clear holy days: %w", err)
		}
		for _, d := range days {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO holy_days (year, name, date, type) VALUES (?, ?, ?, ?)`,
				year, d.Name, calendar.FormatDate(d.Date), string(d.Type),
			)
			if err != nil {
				return fmt.Errorf("insert holy day %q: %w", d.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	db.logger.Debug("holy days saved", slog.Int("year", year), slog.Int("count", len(days)))
	return nil
}

// GetHolyDays returns the stored holy days of year in date order.
// Returns an empty slice if the year has no snapshot.
func (db *DB) GetHolyDays(ctx context.Context, year int) ([]calendar.HolyDay, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, date, type
		FROM holy_days
		WHERE year = ?
		ORDER BY date ASC, name ASC
	`, year)
	if err != nil {
		return nil, fmt.Errorf("query holy days: %w", err)
	}
	defer rows.Close()

	days := []calendar.HolyDay{}
	for rows.Next() {
		var d calendar.HolyDay
		var date, typ string
		if err := rows.Scan(&d.Name, &date, &typ); err != nil {
			return nil, fmt.Errorf("scan holy day row: %w", err)
		}
		if d.Date, err = calendar.ParseDate(date); err != nil {
			return nil, fmt.Errorf("holy day %q: %w", d.Name, err)
		}
		d.Type = calendar.HolyDayType(typ)
		days = append(days, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holy day rows: %w", err)
	}
	return days, nil
}

// SaveResolvedDays upserts resolved days by date in one transaction.
func (db *DB) SaveResolvedDays(ctx context.Context, days []precedence.ResolvedDay) error {
	query := `
		INSERT INTO resolved_days (
			date, primary_name, primary_source, primary_rank, primary_proper_id,
			color, season, week_of_season, rule, note, commemorations
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			primary_name = excluded.primary_name,
			primary_source = excluded.primary_source,
			primary_rank = excluded.primary_rank,
			primary_proper_id = excluded.primary_proper_id,
			color = excluded.color,
			season = excluded.season,
			week_of_season = excluded.week_of_season,
			rule = excluded.rule,
			note = excluded.note,
			commemorations = excluded.commemorations,
			created_at = datetime('now')
	`

	err := db.WithTx(ctx, func(tx *Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare resolved day insert: %w", err)
		}
		defer stmt.Close()

		for _, d := range days {
			row, err := newResolvedRow(d)
			if err != nil {
				return err
			}
			_, err = stmt.ExecContext(ctx,
				row.Date,
				row.PrimaryName,
				row.PrimarySource,
				row.PrimaryRank,
				row.PrimaryProperID,
				row.Color,
				row.Season,
				row.WeekOfSeason,
				row.Rule,
				row.Note,
				row.Commemorations,
			)
			if err != nil {
				return fmt.Errorf("upsert resolved day %s: %w", row.Date, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	db.logger.Debug("resolved days saved", slog.Int("count", len(days)))
	return nil
}

// GetResolvedDays returns stored resolved days in [start, end], ordered by
// date. Dates without a snapshot are absent from the result.
func (db *DB) GetResolvedDays(ctx context.Context, start, end time.Time) ([]precedence.ResolvedDay, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			date, primary_name, primary_source, primary_rank, primary_proper_id,
			color, season, week_of_season, rule, note, commemorations
		FROM resolved_days
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, calendar.FormatDate(start), calendar.FormatDate(end))
	if err != nil {
		return nil, fmt.Errorf("query resolved days: %w", err)
	}
	defer rows.Close()

	days := []precedence.ResolvedDay{}
	for rows.Next() {
		var row resolvedRow
		err := rows.Scan(
			&row.Date,
			&row.PrimaryName,
			&row.PrimarySource,
			&row.PrimaryRank,
			&row.PrimaryProperID,
			&row.Color,
			&row.Season,
			&row.WeekOfSeason,
			&row.Rule,
			&row.Note,
			&row.Commemorations,
		)
		if err != nil {
			return nil, fmt.Errorf("scan resolved day row: %w", err)
		}

		d, err := row.resolvedDay()
		if err != nil {
			return nil, fmt.Errorf("resolved day %s: %w", row.Date, err)
		}
		days = append(days, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolved day rows: %w", err)
	}
	return days, nil
}

func newResolvedRow(d precedence.ResolvedDay) (resolvedRow, error) {
	rank, err := d.Primary.Rank.MarshalText()
	if err != nil {
		return resolvedRow{}, err
	}
	color, err := d.Color.MarshalText()
	if err != nil {
		return resolvedRow{}, err
	}
	season, err := d.Season.MarshalText()
	if err != nil {
		return resolvedRow{}, err
	}
	comms, err := json.Marshal(d.Commemorations)
	if err != nil {
		return resolvedRow{}, fmt.Errorf("marshal commemorations: %w", err)
	}

	return resolvedRow{
		Date:            calendar.FormatDate(d.Date),
		PrimaryName:     d.Primary.Name,
		PrimarySource:   string(d.Primary.Source),
		PrimaryRank:     string(rank),
		PrimaryProperID: d.Primary.ProperID,
		Color:           string(color),
		Season:          string(season),
		WeekOfSeason:    d.WeekOfSeason,
		Rule:            d.Rule,
		Note:            d.Note,
		Commemorations:  string(comms),
	}, nil
}

func (r resolvedRow) resolvedDay() (precedence.ResolvedDay, error) {
	var d precedence.ResolvedDay
	var err error

	if d.Date, err = calendar.ParseDate(r.Date); err != nil {
		return d, err
	}
	if d.Primary.Rank, err = calendar.ParseRank(r.PrimaryRank); err != nil {
		return d, err
	}
	if d.Color, err = calendar.ParseColor(r.Color); err != nil {
		return d, err
	}
	if err = d.Season.UnmarshalText([]byte(r.Season)); err != nil {
		return d, err
	}
	if err = json.Unmarshal([]byte(r.Commemorations), &d.Commemorations); err != nil {
		return d, fmt.Errorf("unmarshal commemorations: %w", err)
	}
	if d.Commemorations == nil {
		d.Commemorations = []precedence.Observance{}
	}

	d.Primary.Name = r.PrimaryName
	d.Primary.Source = precedence.Source(r.PrimarySource)
	d.Primary.Color = d.Color
	d.Primary.ProperID = r.PrimaryProperID
	d.WeekOfSeason = r.WeekOfSeason
	d.Rule = r.Rule
	d.Note = r.Note
	return d, nil
}
