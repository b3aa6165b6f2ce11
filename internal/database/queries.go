package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapponejosh/churchyear/internal/calendar"
	"github.com/zapponejosh/churchyear/internal/sanctoral"
)

// =============================================================================
// Sanctoral Queries
// =============================================================================

const sanctoralColumns = `id, month, day, name, rank, color, moveable_rule, proper_id, is_custom, notes`

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSanctoralDay(s scanner) (sanctoral.Day, error) {
	var d sanctoral.Day
	var rank, color string

	err := s.Scan(
		&d.ID,
		&d.Month,
		&d.Day,
		&d.Name,
		&rank,
		&color,
		&d.MoveableRule,
		&d.ProperID,
		&d.IsCustom,
		&d.Notes,
	)
	if err != nil {
		return sanctoral.Day{}, err
	}

	if d.Rank, err = calendar.ParseRank(rank); err != nil {
		return sanctoral.Day{}, fmt.Errorf("sanctoral day %s: %w", d.ID, err)
	}
	if d.Color, err = calendar.ParseColor(color); err != nil {
		return sanctoral.Day{}, fmt.Errorf("sanctoral day %s: %w", d.ID, err)
	}
	return d, nil
}

func querySanctoralDays(ctx context.Context, q querier, query string, args ...any) ([]sanctoral.Day, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sanctoral days: %w", err)
	}
	defer rows.Close()

	var days []sanctoral.Day
	for rows.Next() {
		d, err := scanSanctoralDay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sanctoral row: %w", err)
		}
		days = append(days, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sanctoral rows: %w", err)
	}
	return days, nil
}

// LookupFixedByMonthDay returns the entries stored for month/day plus every
// moveable entry of the month, ordered by name. It implements
// sanctoral.Lookup.
func (db *DB) LookupFixedByMonthDay(ctx context.Context, month time.Month, day int) ([]sanctoral.Day, error) {
	query := `
		SELECT ` + sanctoralColumns + `
		FROM sanctoral_days
		WHERE month = ? AND (day = ? OR moveable_rule <> '')
		ORDER BY name ASC
	`
	return querySanctoralDays(ctx, db, query, int(month), day)
}

// ListSanctoralDays returns the whole sanctorale in calendar order.
func (db *DB) ListSanctoralDays(ctx context.Context) ([]sanctoral.Day, error) {
	query := `
		SELECT ` + sanctoralColumns + `
		FROM sanctoral_days
		ORDER BY month ASC, day ASC, name ASC
	`
	days, err := querySanctoralDays(ctx, db, query)
	if err != nil {
		return nil, err
	}
	if days == nil {
		days = []sanctoral.Day{}
	}
	return days, nil
}

// GetSanctoralDay retrieves one entry by ID.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) GetSanctoralDay(ctx context.Context, id string) (*sanctoral.Day, error) {
	query := `SELECT ` + sanctoralColumns + ` FROM sanctoral_days WHERE id = ?`

	d, err := scanSanctoralDay(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get sanctoral day: %w", err)
	}
	return &d, nil
}

// CreateSanctoralDay validates and inserts an entry, assigning an ID when
// it has none. Returns ErrDuplicate if the month, day and name are taken.
func (db *DB) CreateSanctoralDay(ctx context.Context, d *sanctoral.Day) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = sanctoral.NewID()
	}

	if err := insertSanctoralDay(ctx, db, d, false); err != nil {
		return err
	}

	db.logger.Info("sanctoral day created",
		slog.String("id", d.ID),
		slog.String("name", d.Name),
	)
	return nil
}

// DeleteSanctoralDay removes an entry by ID.
// Returns ErrNotFound if it doesn't exist.
func (db *DB) DeleteSanctoralDay(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM sanctoral_days WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sanctoral day: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSanctoralDays returns the number of stored entries.
func (db *DB) CountSanctoralDays(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sanctoral_days`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sanctoral days: %w", err)
	}
	return n, nil
}

// SeedSanctoral loads days inside one transaction, skipping any whose
// month, day and name already exist. It is safe to run repeatedly.
//
// Returns the number of rows inserted.
func (db *DB) SeedSanctoral(ctx context.Context, days []sanctoral.Day) (int, error) {
	inserted := 0
	err := db.WithTx(ctx, func(tx *Tx) error {
		for i := range days {
			ok, err := tx.InsertSanctoralDay(ctx, &days[i])
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.logger.Info("sanctorale seeded",
		slog.Int("inserted", inserted),
		slog.Int("skipped", len(days)-inserted),
	)
	return inserted, nil
}

// InsertSanctoralDay validates and inserts d unless an entry with the same
// month, day and name exists. It reports whether a row was written.
func (tx *Tx) InsertSanctoralDay(ctx context.Context, d *sanctoral.Day) (bool, error) {
	if err := d.Validate(); err != nil {
		return false, fmt.Errorf("%s: %w", d.Name, err)
	}
	if d.ID == "" {
		d.ID = sanctoral.StableID(*d)
	}

	err := insertSanctoralDay(ctx, tx, d, true)
	if errors.Is(err, ErrDuplicate) {
		return false, nil
	}
	return err == nil, err
}

func insertSanctoralDay(ctx context.Context, q querier, d *sanctoral.Day, skipExisting bool) error {
	rank, err := d.Rank.MarshalText()
	if err != nil {
		return err
	}
	color, err := d.Color.MarshalText()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sanctoral_days (` + sanctoralColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if skipExisting {
		query += ` ON CONFLICT (month, day, name) DO NOTHING`
	}

	result, err := q.ExecContext(ctx, query,
		d.ID,
		d.Month,
		d.Day,
		d.Name,
		string(rank),
		string(color),
		d.MoveableRule,
		d.ProperID,
		d.IsCustom,
		d.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert sanctoral day: %w", err)
	}

	if skipExisting {
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("check rows affected: %w", err)
		}
		if n == 0 {
			return ErrDuplicate
		}
	}
	return nil
}
